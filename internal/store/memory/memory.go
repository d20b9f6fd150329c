// Package memory is the in-memory fixture backend. It is selected with
// backend.driver=memory and backs the test suite; it enforces the same
// uniqueness rules as the postgres schema.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
)

// Store holds every collection behind one mutex. Operations copy records in
// and out so callers never alias stored state.
type Store struct {
	mu sync.Mutex

	customers     map[int]*models.Customer
	subscriptions map[int]*models.Subscription
	packages      map[int]*models.Package
	bills         map[int]*models.MonthlyBill
	payments      map[int]*models.Payment
	settings      map[string]*models.SystemSetting
	users         map[int]*models.User

	nextCustomerID     int
	nextSubscriptionID int
	nextPackageID      int
	nextBillID         int
	nextPaymentID      int
	nextSettingID      int
	nextUserID         int
}

func New() *Store {
	return &Store{
		customers:          map[int]*models.Customer{},
		subscriptions:      map[int]*models.Subscription{},
		packages:           map[int]*models.Package{},
		bills:              map[int]*models.MonthlyBill{},
		payments:           map[int]*models.Payment{},
		settings:           map[string]*models.SystemSetting{},
		users:              map[int]*models.User{},
		nextCustomerID:     1,
		nextSubscriptionID: 1,
		nextPackageID:      1,
		nextBillID:         1,
		nextPaymentID:      1,
		nextSettingID:      1,
		nextUserID:         1,
	}
}

// Backend returns the store wired into every collection interface.
func (s *Store) Backend() *store.Backend {
	return &store.Backend{
		Customers:     (*customerStore)(s),
		Subscriptions: (*subscriptionStore)(s),
		Packages:      (*packageStore)(s),
		Bills:         (*billStore)(s),
		Payments:      (*paymentStore)(s),
		Settings:      (*settingStore)(s),
		Users:         (*userStore)(s),
	}
}

// ---- customers ----

type customerStore Store

func (s *customerStore) Get(_ context.Context, id int) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *customerStore) List(_ context.Context) ([]*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *customerStore) Create(_ context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextCustomerID
	s.nextCustomerID++
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	s.customers[c.ID] = &cp
	return nil
}

func (s *customerStore) UpdateIdentity(_ context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.customers[c.ID]
	if !ok {
		return store.ErrNotFound
	}
	cur.Name = c.Name
	cur.Phone = c.Phone
	cur.Area = c.Area
	cur.Address = c.Address
	cur.CollectorUserID = c.CollectorUserID
	cur.BillDueDay = c.BillDueDay
	cur.IsActive = c.IsActive
	cur.UpdatedAt = time.Now()
	return nil
}

func (s *customerStore) SetOutstanding(_ context.Context, id int, current, credit float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.customers[id]
	if !ok {
		return store.ErrNotFound
	}
	cur.CurrentOutstanding = current
	cur.CreditBalance = credit
	cur.UpdatedAt = time.Now()
	return nil
}

func (s *customerStore) SetBillingSnapshot(_ context.Context, id int, packageAmount, previousOutstanding float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.customers[id]
	if !ok {
		return store.ErrNotFound
	}
	cur.PackageAmount = packageAmount
	cur.PreviousOutstanding = previousOutstanding
	cur.UpdatedAt = time.Now()
	return nil
}

// ---- subscriptions ----

type subscriptionStore Store

func copySubscription(src *models.Subscription) *models.Subscription {
	cp := *src
	cp.StatusHistory = append([]models.StatusChange(nil), src.StatusHistory...)
	cp.OwnershipHistory = make([]models.OwnershipEntry, len(src.OwnershipHistory))
	for i, e := range src.OwnershipHistory {
		cp.OwnershipHistory[i] = e
		if e.EndDate != nil {
			end := *e.EndDate
			cp.OwnershipHistory[i].EndDate = &end
		}
	}
	if src.CustomerID != nil {
		id := *src.CustomerID
		cp.CustomerID = &id
	}
	if src.PackageID != nil {
		id := *src.PackageID
		cp.PackageID = &id
	}
	return &cp
}

func (s *subscriptionStore) Get(_ context.Context, id int) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copySubscription(sub), nil
}

func (s *subscriptionStore) GetByIDs(_ context.Context, ids []int) ([]*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Subscription
	for _, id := range ids {
		sub, ok := s.subscriptions[id]
		if !ok {
			return nil, fmt.Errorf("subscription %d: %w", id, store.ErrNotFound)
		}
		out = append(out, copySubscription(sub))
	}
	return out, nil
}

func (s *subscriptionStore) GetByVCNumbers(_ context.Context, vcNumbers []string) ([]*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byNumber := make(map[string]*models.Subscription, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		byNumber[sub.VCNumber] = sub
	}
	var out []*models.Subscription
	for _, n := range vcNumbers {
		if sub, ok := byNumber[n]; ok {
			out = append(out, copySubscription(sub))
		}
	}
	return out, nil
}

func (s *subscriptionStore) List(_ context.Context) ([]*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Subscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		out = append(out, copySubscription(sub))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *subscriptionStore) ListActiveByCustomer(_ context.Context, customerID int) ([]*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Subscription
	for _, sub := range s.subscriptions {
		if sub.Status == models.VCActive && sub.CustomerID != nil && *sub.CustomerID == customerID {
			out = append(out, copySubscription(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *subscriptionStore) Create(_ context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.subscriptions {
		if existing.VCNumber == sub.VCNumber {
			return fmt.Errorf("vc number %s already exists", sub.VCNumber)
		}
	}
	sub.ID = s.nextSubscriptionID
	s.nextSubscriptionID++
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	s.subscriptions[sub.ID] = copySubscription(sub)
	return nil
}

func (s *subscriptionStore) UpdateBatch(_ context.Context, subs []*models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Verify every row exists before writing anything.
	for _, sub := range subs {
		if _, ok := s.subscriptions[sub.ID]; !ok {
			return fmt.Errorf("subscription %d: %w", sub.ID, store.ErrNotFound)
		}
	}
	now := time.Now()
	for _, sub := range subs {
		sub.UpdatedAt = now
		s.subscriptions[sub.ID] = copySubscription(sub)
	}
	return nil
}

// ---- packages ----

type packageStore Store

func (s *packageStore) Get(_ context.Context, id int) (*models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.packages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	cp.Features = append([]string(nil), p.Features...)
	return &cp, nil
}

func (s *packageStore) List(_ context.Context) ([]*models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Package, 0, len(s.packages))
	for _, p := range s.packages {
		cp := *p
		cp.Features = append([]string(nil), p.Features...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddPackage seeds the catalog; the billing core itself never writes packages.
func (s *Store) AddPackage(p *models.Package) *models.Package {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextPackageID
	s.nextPackageID++
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	s.packages[p.ID] = &cp
	return p
}

// ---- bills ----

type billStore Store

func copyBill(src *models.MonthlyBill) *models.MonthlyBill {
	cp := *src
	cp.VCBreakdown = append([]models.BillLineItem(nil), src.VCBreakdown...)
	return &cp
}

func (s *billStore) Get(_ context.Context, id int) (*models.MonthlyBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyBill(b), nil
}

func (s *billStore) ListByCustomer(_ context.Context, customerID int) ([]*models.MonthlyBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.MonthlyBill
	for _, b := range s.bills {
		if b.CustomerID == customerID {
			out = append(out, copyBill(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (s *billStore) ListByMonth(_ context.Context, month string) ([]*models.MonthlyBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.MonthlyBill
	for _, b := range s.bills {
		if b.Month == month {
			out = append(out, copyBill(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *billStore) CountByMonth(_ context.Context, month string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, b := range s.bills {
		if b.Month == month {
			count++
		}
	}
	return count, nil
}

func (s *billStore) Create(_ context.Context, b *models.MonthlyBill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.bills {
		if existing.CustomerID == b.CustomerID && existing.Month == b.Month {
			return fmt.Errorf("bill for customer %d month %s already exists", b.CustomerID, b.Month)
		}
	}
	b.ID = s.nextBillID
	s.nextBillID++
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	s.bills[b.ID] = copyBill(b)
	return nil
}

func (s *billStore) UpdateStatus(_ context.Context, id int, status models.BillStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok {
		return store.ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	return nil
}

func (s *billStore) DeleteByMonth(_ context.Context, month string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, b := range s.bills {
		if b.Month == month {
			delete(s.bills, id)
			deleted++
		}
	}
	return deleted, nil
}

// ---- payments ----

type paymentStore Store

func (s *paymentStore) Get(_ context.Context, id int) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *paymentStore) GetByGatewayPaymentID(_ context.Context, gatewayPaymentID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gatewayPaymentID == "" {
		return nil, store.ErrNotFound
	}
	for _, p := range s.payments {
		if p.GatewayPaymentID == gatewayPaymentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *paymentStore) List(_ context.Context) ([]*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *paymentStore) ListByCustomer(_ context.Context, customerID int) ([]*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Payment
	for _, p := range s.payments {
		if p.CustomerID == customerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *paymentStore) ListByBill(_ context.Context, billID int) ([]*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Payment
	for _, p := range s.payments {
		if p.BillID != nil && *p.BillID == billID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *paymentStore) Create(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.payments {
		if existing.ReceiptNumber == p.ReceiptNumber {
			return fmt.Errorf("receipt number %s already exists", p.ReceiptNumber)
		}
		if p.GatewayPaymentID != "" && existing.GatewayPaymentID == p.GatewayPaymentID {
			return fmt.Errorf("gateway payment %s already recorded", p.GatewayPaymentID)
		}
	}
	p.ID = s.nextPaymentID
	s.nextPaymentID++
	p.CreatedAt = time.Now()
	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *paymentStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.payments, id)
	return nil
}

// ---- settings ----

type settingStore Store

func (s *settingStore) Get(_ context.Context, key string) (*models.SystemSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	setting, ok := s.settings[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *setting
	return &cp, nil
}

func (s *settingStore) List(_ context.Context) ([]*models.SystemSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.SystemSetting, 0, len(s.settings))
	for _, setting := range s.settings {
		cp := *setting
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SettingKey < out[j].SettingKey })
	return out, nil
}

func (s *settingStore) Upsert(_ context.Context, key, value, description string, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if setting, ok := s.settings[key]; ok {
		setting.SettingValue = value
		if description != "" {
			setting.Description = description
		}
		setting.UpdatedByUserID = userID
		setting.UpdatedAt = time.Now()
		return nil
	}
	s.settings[key] = &models.SystemSetting{
		ID:              s.nextSettingID,
		SettingKey:      key,
		SettingValue:    value,
		Description:     description,
		UpdatedByUserID: userID,
		UpdatedAt:       time.Now(),
	}
	s.nextSettingID++
	return nil
}

// ---- users ----

type userStore Store

func (s *userStore) Get(_ context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *userStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("email %s already exists", u.Email)
		}
	}
	u.ID = s.nextUserID
	s.nextUserID++
	u.CreatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}
