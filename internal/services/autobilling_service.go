package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"cabletv-backend/internal/metrics"
	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
	"cabletv-backend/internal/timeutil"
)

// AutoBillingService is a day-of-month gate over the bill generator, not a
// durable job scheduler. A run that is missed because the server was down on
// the trigger day is not backfilled.
type AutoBillingService struct {
	settings store.SettingStore
	billing  *BillingService

	checkInterval time.Duration
	now           func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

type AutoBillingStatus struct {
	Enabled    bool   `json:"enabled"`
	DayOfMonth int    `json:"day_of_month"`
	LastRun    string `json:"last_run,omitempty"`
}

func NewAutoBillingService(settings store.SettingStore, billing *BillingService) *AutoBillingService {
	return &AutoBillingService{
		settings:      settings,
		billing:       billing,
		checkInterval: time.Hour,
		now:           timeutil.Now,
		stop:          make(chan struct{}),
	}
}

// Start checks once at startup, then every checkInterval. The gate inside
// CheckAndRun makes repeated checks on the trigger day harmless.
func (s *AutoBillingService) Start() {
	go func() {
		if _, err := s.CheckAndRun(context.Background()); err != nil {
			log.Printf("[AutoBilling] startup check failed: %v", err)
		}
		ticker := time.NewTicker(s.checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.CheckAndRun(context.Background()); err != nil {
					log.Printf("[AutoBilling] scheduled check failed: %v", err)
				}
			case <-s.stop:
				return
			}
		}
	}()
	log.Println("[AutoBilling] scheduler started")
}

func (s *AutoBillingService) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *AutoBillingService) Status(ctx context.Context) (*AutoBillingStatus, error) {
	status := &AutoBillingStatus{DayOfMonth: 1}
	if setting, err := s.settings.Get(ctx, models.SettingAutoBillingEnabled); err == nil {
		status.Enabled = setting.SettingValue == "true"
	}
	if setting, err := s.settings.Get(ctx, models.SettingAutoBillingDayOfMonth); err == nil {
		if day, err := strconv.Atoi(setting.SettingValue); err == nil && day >= 1 && day <= 31 {
			status.DayOfMonth = day
		}
	}
	if setting, err := s.settings.Get(ctx, models.SettingAutoBillingLastRun); err == nil {
		status.LastRun = setting.SettingValue
	}
	return status, nil
}

func (s *AutoBillingService) Configure(ctx context.Context, enabled bool, dayOfMonth, userID int) error {
	if dayOfMonth < 1 || dayOfMonth > 31 {
		return ErrInvalidDueDay
	}
	if err := s.settings.Upsert(ctx, models.SettingAutoBillingEnabled, strconv.FormatBool(enabled),
		"Generate monthly bills automatically", userID); err != nil {
		return err
	}
	return s.settings.Upsert(ctx, models.SettingAutoBillingDayOfMonth, strconv.Itoa(dayOfMonth),
		"Day of month the auto-billing run fires", userID)
}

// CheckAndRun fires the generator when enabled, today matches the configured
// day, and no run has happened this calendar month. Returns whether a run
// was triggered.
func (s *AutoBillingService) CheckAndRun(ctx context.Context) (bool, error) {
	status, err := s.Status(ctx)
	if err != nil {
		return false, err
	}
	if !status.Enabled {
		return false, nil
	}

	now := s.now()
	if now.Day() != status.DayOfMonth {
		return false, nil
	}
	if status.LastRun != "" {
		lastRun, err := time.ParseInLocation(timeutil.DateLayout, status.LastRun, timeutil.IST)
		if err == nil && timeutil.SameMonth(lastRun, now) {
			return false, nil
		}
	}

	month := timeutil.PeriodOf(now)
	log.Printf("[AutoBilling] triggering bill generation for %s", month)
	result, err := s.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: month})
	if err != nil {
		// Someone already billed this period by hand; record the run so the
		// gate stops retrying every hour for the rest of the day.
		if errors.Is(err, ErrPeriodAlreadyBilled) {
			s.recordRun(ctx, now)
			return false, nil
		}
		return false, err
	}

	metrics.AutoBillingRunsTotal.Inc()
	s.recordRun(ctx, now)
	log.Printf("[AutoBilling] %s: generated %d bills, total ₹%.2f",
		month, result.Summary.BillsGenerated, result.Summary.TotalAmount)
	return true, nil
}

func (s *AutoBillingService) recordRun(ctx context.Context, at time.Time) {
	if err := s.settings.Upsert(ctx, models.SettingAutoBillingLastRun,
		at.Format(timeutil.DateLayout), "Date of the last auto-billing run", 0); err != nil {
		log.Printf("[AutoBilling] WARN failed to record run date: %v", err)
	}
}
