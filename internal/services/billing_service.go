package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"cabletv-backend/internal/metrics"
	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
	"cabletv-backend/internal/timeutil"
)

// DefaultDueDays is the due-date offset applied when a generation request
// does not specify one: due dates land mid-way into the month that follows
// the billing period.
const DefaultDueDays = 15

// BillingService generates one bill per customer per period from active
// subscriptions and catalog prices. Bills are point-in-time snapshots: a
// later package price change never alters a persisted bill.
type BillingService struct {
	customers  store.CustomerStore
	bills      store.BillStore
	subs       *SubscriptionService
	catalog    *PackageService
	reconciler *ReconcileService
}

func NewBillingService(
	customers store.CustomerStore,
	bills store.BillStore,
	subs *SubscriptionService,
	catalog *PackageService,
	reconciler *ReconcileService,
) *BillingService {
	return &BillingService{
		customers:  customers,
		bills:      bills,
		subs:       subs,
		catalog:    catalog,
		reconciler: reconciler,
	}
}

// GenerateBills runs one billing period. Per-customer failures are isolated:
// one bad record must not block billing everyone else, so failures are
// collected and the batch continues.
func (s *BillingService) GenerateBills(ctx context.Context, req models.GenerateBillsRequest) (*models.GenerateBillsResult, error) {
	if _, err := timeutil.ParsePeriod(req.Month); err != nil {
		return nil, err
	}
	dueDays := req.DueDays
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}

	// The generator never overwrites an existing run. Regeneration requires
	// an explicit DeleteBillsForMonth first.
	existing, err := s.bills.CountByMonth(ctx, req.Month)
	if err != nil {
		return nil, fmt.Errorf("check existing bills for %s: %w", req.Month, err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%s: %w", req.Month, ErrPeriodAlreadyBilled)
	}

	dueDate, err := timeutil.DueDate(req.Month, dueDays)
	if err != nil {
		return nil, err
	}

	targets, err := s.targetCustomers(ctx, req.CustomerIDs)
	if err != nil {
		return nil, err
	}

	// Load catalog prices once for the whole run.
	prices, err := s.catalog.PriceMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("load package catalog: %w", err)
	}

	result := &models.GenerateBillsResult{
		Summary: models.BillRunSummary{Month: req.Month, TotalCustomers: len(targets)},
	}

	for _, customer := range targets {
		bill, err := s.generateForCustomer(ctx, customer, req.Month, dueDate, req.GeneratedBy, prices)
		if err != nil {
			result.Failed = append(result.Failed, models.BillGenerationError{
				CustomerID:   customer.ID,
				CustomerName: customer.Name,
				Error:        err.Error(),
			})
			continue
		}
		if bill == nil {
			// No active subscriptions or nothing billable: skipped, not failed.
			continue
		}
		result.GeneratedCustomerIDs = append(result.GeneratedCustomerIDs, customer.ID)
		result.Summary.BillsGenerated++
		result.Summary.TotalAmount += bill.TotalAmount
	}

	log.Printf("[Billing] %s: %d bills generated for %d customers, total ₹%.2f, %d failed",
		req.Month, result.Summary.BillsGenerated, result.Summary.TotalCustomers,
		result.Summary.TotalAmount, len(result.Failed))
	return result, nil
}

func (s *BillingService) targetCustomers(ctx context.Context, ids []int) ([]*models.Customer, error) {
	if len(ids) == 0 {
		return s.customers.List(ctx)
	}
	var out []*models.Customer
	for _, id := range ids {
		customer, err := s.customers.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load customer %d: %w", id, err)
		}
		out = append(out, customer)
	}
	return out, nil
}

// generateForCustomer returns (nil, nil) when the customer has nothing to
// bill. Subscriptions whose package cannot be priced are dropped from the
// breakdown with a warning rather than failing the customer.
func (s *BillingService) generateForCustomer(
	ctx context.Context,
	customer *models.Customer,
	month string,
	dueDate time.Time,
	generatedBy int,
	prices map[int]*models.Package,
) (*models.MonthlyBill, error) {
	active, err := s.subs.GetActiveForCustomer(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("load active subscriptions: %w", err)
	}
	if len(active) == 0 {
		return nil, nil
	}

	var breakdown []models.BillLineItem
	total := 0.0
	for _, sub := range active {
		if sub.PackageID == nil {
			log.Printf("[Billing] WARN vc %s has no package assigned, dropped from %s bill for customer %d",
				sub.VCNumber, month, customer.ID)
			continue
		}
		pkg, ok := prices[*sub.PackageID]
		if !ok {
			log.Printf("[Billing] WARN vc %s references unknown package %d, dropped from %s bill for customer %d",
				sub.VCNumber, *sub.PackageID, month, customer.ID)
			continue
		}
		breakdown = append(breakdown, models.BillLineItem{
			VCNumber:    sub.VCNumber,
			PackageID:   pkg.ID,
			PackageName: pkg.Name,
			Amount:      pkg.Price,
		})
		total += pkg.Price
	}
	if len(breakdown) == 0 {
		return nil, nil
	}

	bill := &models.MonthlyBill{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Month:        month,
		VCBreakdown:  breakdown,
		TotalAmount:  total,
		BillDueDate:  dueDate,
		Status:       models.BillGenerated,
		GeneratedBy:  generatedBy,
	}
	if err := s.bills.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("persist bill: %w", err)
	}
	metrics.BillsGeneratedTotal.Inc()

	// Carry the pre-bill balance forward and cache the monthly charge. The
	// snapshot is written only for bills that actually persisted.
	if err := s.customers.SetBillingSnapshot(ctx, customer.ID, total, customer.CurrentOutstanding); err != nil {
		log.Printf("[Billing] WARN snapshot balances for customer %d: %v", customer.ID, err)
	}

	// Reconciliation is best-effort here: the bill is already persisted and
	// a later reconciliation run self-heals.
	if err := s.reconciler.ReconcileCustomerOutstanding(ctx, customer.ID); err != nil {
		log.Printf("[Billing] WARN reconcile after bill %d for customer %d: %v", bill.ID, customer.ID, err)
	}
	return bill, nil
}

// DeleteBillsForMonth removes a period's bills so it can be regenerated, and
// re-reconciles every affected customer. Admin only.
func (s *BillingService) DeleteBillsForMonth(ctx context.Context, month string) (int, error) {
	if _, err := timeutil.ParsePeriod(month); err != nil {
		return 0, err
	}

	bills, err := s.bills.ListByMonth(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("list bills for %s: %w", month, err)
	}
	affected := map[int]bool{}
	for _, b := range bills {
		affected[b.CustomerID] = true
	}

	deleted, err := s.bills.DeleteByMonth(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("delete bills for %s: %w", month, err)
	}

	for customerID := range affected {
		if err := s.reconciler.ReconcileCustomerOutstanding(ctx, customerID); err != nil {
			log.Printf("[Billing] WARN reconcile customer %d after deleting %s bills: %v", customerID, month, err)
		}
	}
	return deleted, nil
}

func (s *BillingService) GetBill(ctx context.Context, id int) (*models.MonthlyBill, error) {
	return s.bills.Get(ctx, id)
}

func (s *BillingService) ListBillsByCustomer(ctx context.Context, customerID int) ([]*models.MonthlyBill, error) {
	return s.bills.ListByCustomer(ctx, customerID)
}

func (s *BillingService) ListBillsByMonth(ctx context.Context, month string) ([]*models.MonthlyBill, error) {
	if _, err := timeutil.ParsePeriod(month); err != nil {
		return nil, err
	}
	return s.bills.ListByMonth(ctx, month)
}
