package services

import (
	"context"
	"fmt"
	"time"

	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
	"cabletv-backend/internal/timeutil"
)

// SubscriptionService owns the VC inventory: provisioning, assignment and
// the append-only status/ownership histories. History is never edited in
// place; every transition appends, and multi-VC operations are all-or-nothing.
type SubscriptionService struct {
	subs     store.SubscriptionStore
	packages store.PackageStore
}

func NewSubscriptionService(subs store.SubscriptionStore, packages store.PackageStore) *SubscriptionService {
	return &SubscriptionService{subs: subs, packages: packages}
}

// Provision creates new VCs in available state.
func (s *SubscriptionService) Provision(ctx context.Context, req models.ProvisionSubscriptionsRequest, actorID int) ([]*models.Subscription, error) {
	if len(req.VCNumbers) == 0 {
		return nil, ErrNoSubscriptions
	}

	packageName := ""
	if req.PackageID != nil {
		pkg, err := s.packages.Get(ctx, *req.PackageID)
		if err != nil {
			return nil, fmt.Errorf("resolve package %d: %w", *req.PackageID, err)
		}
		packageName = pkg.Name
	}

	now := timeutil.Now()
	var created []*models.Subscription
	for _, number := range req.VCNumbers {
		sub := &models.Subscription{
			VCNumber:    number,
			Status:      models.VCAvailable,
			PackageID:   req.PackageID,
			PackageName: packageName,
			StatusHistory: []models.StatusChange{{
				Status:    models.VCAvailable,
				ChangedAt: now,
				ChangedBy: actorID,
				Reason:    "provisioned",
			}},
		}
		if err := s.subs.Create(ctx, sub); err != nil {
			return created, fmt.Errorf("provision %s: %w", number, err)
		}
		created = append(created, sub)
	}
	return created, nil
}

// GetActiveForCustomer returns the customer's active VCs. An empty result is
// not an error; bill generation treats it as "skip this customer".
func (s *SubscriptionService) GetActiveForCustomer(ctx context.Context, customerID int) ([]*models.Subscription, error) {
	return s.subs.ListActiveByCustomer(ctx, customerID)
}

func (s *SubscriptionService) Get(ctx context.Context, id int) (*models.Subscription, error) {
	return s.subs.Get(ctx, id)
}

func (s *SubscriptionService) List(ctx context.Context) ([]*models.Subscription, error) {
	return s.subs.List(ctx)
}

// Assign moves the listed VCs to a customer. A VC that is already active
// under a different customer is rejected; transfers must go through Reassign
// so accidental double-assignment cannot silently rewrite ownership.
func (s *SubscriptionService) Assign(ctx context.Context, req models.AssignSubscriptionsRequest, actorID int) error {
	return s.assign(ctx, req, actorID, false)
}

// Reassign is the explicit transfer path: it closes the previous owner's
// open ownership entry and opens one for the new customer.
func (s *SubscriptionService) Reassign(ctx context.Context, req models.AssignSubscriptionsRequest, actorID int) error {
	return s.assign(ctx, req, actorID, true)
}

func (s *SubscriptionService) assign(ctx context.Context, req models.AssignSubscriptionsRequest, actorID int, allowTransfer bool) error {
	if len(req.SubscriptionIDs) == 0 {
		return ErrNoSubscriptions
	}

	subs, err := s.subs.GetByIDs(ctx, req.SubscriptionIDs)
	if err != nil {
		return err
	}

	packageName := req.PackageName
	if req.PackageID != nil && packageName == "" {
		pkg, err := s.packages.Get(ctx, *req.PackageID)
		if err != nil {
			return fmt.Errorf("resolve package %d: %w", *req.PackageID, err)
		}
		packageName = pkg.Name
	}

	// Validate the whole set before mutating anything.
	for _, sub := range subs {
		if sub.Status == models.VCActive && sub.CustomerID != nil && *sub.CustomerID != req.CustomerID && !allowTransfer {
			return fmt.Errorf("vc %s: %w", sub.VCNumber, ErrAlreadyAssigned)
		}
	}

	now := timeutil.Now()
	reason := req.Reason
	if reason == "" {
		reason = "assigned"
	}
	for _, sub := range subs {
		closeOpenOwnership(sub, now)
		customerID := req.CustomerID
		sub.OwnershipHistory = append(sub.OwnershipHistory, models.OwnershipEntry{
			CustomerID:   customerID,
			CustomerName: req.CustomerName,
			StartDate:    now,
		})
		sub.StatusHistory = append(sub.StatusHistory, models.StatusChange{
			Status:    models.VCActive,
			ChangedAt: now,
			ChangedBy: actorID,
			Reason:    reason,
		})
		sub.Status = models.VCActive
		sub.CustomerID = &customerID
		sub.CustomerName = req.CustomerName
		if req.PackageID != nil {
			sub.PackageID = req.PackageID
			sub.PackageName = packageName
		}
	}

	return s.subs.UpdateBatch(ctx, subs)
}

// Unassign releases the listed VCs back to the available pool.
func (s *SubscriptionService) Unassign(ctx context.Context, req models.UnassignSubscriptionsRequest, actorID int) error {
	if len(req.SubscriptionIDs) == 0 {
		return ErrNoSubscriptions
	}

	subs, err := s.subs.GetByIDs(ctx, req.SubscriptionIDs)
	if err != nil {
		return err
	}

	now := timeutil.Now()
	reason := req.Reason
	if reason == "" {
		reason = "unassigned"
	}
	for _, sub := range subs {
		closeOpenOwnership(sub, now)
		sub.StatusHistory = append(sub.StatusHistory, models.StatusChange{
			Status:    models.VCAvailable,
			ChangedAt: now,
			ChangedBy: actorID,
			Reason:    reason,
		})
		sub.Status = models.VCAvailable
		sub.CustomerID = nil
		sub.CustomerName = ""
	}

	return s.subs.UpdateBatch(ctx, subs)
}

// SetStatus records an inactive/maintenance/active transition without
// touching ownership. Moving to available must go through Unassign.
func (s *SubscriptionService) SetStatus(ctx context.Context, id int, req models.SetSubscriptionStatusRequest, actorID int) error {
	if !req.Status.Valid() || req.Status == models.VCAvailable {
		return ErrInvalidStatus
	}

	sub, err := s.subs.Get(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status == req.Status {
		return nil
	}

	sub.StatusHistory = append(sub.StatusHistory, models.StatusChange{
		Status:    req.Status,
		ChangedAt: timeutil.Now(),
		ChangedBy: actorID,
		Reason:    req.Reason,
	})
	sub.Status = req.Status
	return s.subs.UpdateBatch(ctx, []*models.Subscription{sub})
}

// ValidateAvailability classifies the requested VC numbers without mutating
// state; used before bulk assignment to fail fast.
func (s *SubscriptionService) ValidateAvailability(ctx context.Context, vcNumbers []string) (*models.AvailabilityResult, error) {
	found, err := s.subs.GetByVCNumbers(ctx, vcNumbers)
	if err != nil {
		return nil, err
	}

	byNumber := make(map[string]*models.Subscription, len(found))
	for _, sub := range found {
		byNumber[sub.VCNumber] = sub
	}

	result := &models.AvailabilityResult{}
	for _, number := range vcNumbers {
		sub, ok := byNumber[number]
		if !ok {
			result.NotFound = append(result.NotFound, number)
			result.Details = append(result.Details, models.AvailabilityDetail{VCNumber: number, Found: false})
			continue
		}
		detail := models.AvailabilityDetail{
			VCNumber:     number,
			Status:       sub.Status,
			CustomerName: sub.CustomerName,
			Found:        true,
		}
		if sub.Status == models.VCAvailable {
			result.Available = append(result.Available, number)
		} else {
			result.Unavailable = append(result.Unavailable, number)
		}
		result.Details = append(result.Details, detail)
	}
	return result, nil
}

// closeOpenOwnership ends the open ownership entry, if one exists. The
// histories are append-only; closing only fills the end date.
func closeOpenOwnership(sub *models.Subscription, at time.Time) {
	for i := range sub.OwnershipHistory {
		if sub.OwnershipHistory[i].EndDate == nil {
			end := at
			sub.OwnershipHistory[i].EndDate = &end
		}
	}
}
