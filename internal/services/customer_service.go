package services

import (
	"context"
	"fmt"

	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
)

type CustomerService struct {
	customers store.CustomerStore
}

func NewCustomerService(customers store.CustomerStore) *CustomerService {
	return &CustomerService{customers: customers}
}

func (s *CustomerService) Get(ctx context.Context, id int) (*models.Customer, error) {
	return s.customers.Get(ctx, id)
}

func (s *CustomerService) List(ctx context.Context) ([]*models.Customer, error) {
	return s.customers.List(ctx)
}

func (s *CustomerService) Create(ctx context.Context, req models.CreateCustomerRequest) (*models.Customer, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("customer name is required")
	}
	dueDay := req.BillDueDay
	if dueDay == 0 {
		dueDay = 15
	}
	if dueDay < 1 || dueDay > 31 {
		return nil, ErrInvalidDueDay
	}

	customer := &models.Customer{
		Name:            req.Name,
		Phone:           req.Phone,
		Area:            req.Area,
		Address:         req.Address,
		CollectorUserID: req.CollectorUserID,
		BillDueDay:      dueDay,
		IsActive:        true,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Update touches identity fields only; outstanding/credit stay with the
// reconciler.
func (s *CustomerService) Update(ctx context.Context, id int, req models.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Phone != "" {
		customer.Phone = req.Phone
	}
	if req.Area != "" {
		customer.Area = req.Area
	}
	if req.Address != "" {
		customer.Address = req.Address
	}
	if req.CollectorUserID != 0 {
		customer.CollectorUserID = req.CollectorUserID
	}
	if req.BillDueDay != 0 {
		if req.BillDueDay < 1 || req.BillDueDay > 31 {
			return nil, ErrInvalidDueDay
		}
		customer.BillDueDay = req.BillDueDay
	}
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}
	if err := s.customers.UpdateIdentity(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}
