package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabletv-backend/internal/models"
	"cabletv-backend/internal/timeutil"
)

func TestAutoBillingDisabledByDefault(t *testing.T) {
	env := newTestEnv(t)

	ran, err := env.autoBilling.CheckAndRun(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestAutoBillingRunsOnConfiguredDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)

	require.NoError(t, env.autoBilling.Configure(ctx, true, 5, 1))
	env.autoBilling.now = func() time.Time {
		return time.Date(2024, time.March, 5, 9, 0, 0, 0, timeutil.IST)
	}

	ran, err := env.autoBilling.CheckAndRun(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	bills, err := env.billing.ListBillsByMonth(ctx, "2024-03")
	require.NoError(t, err)
	assert.Len(t, bills, 1)

	status, err := env.autoBilling.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", status.LastRun)
}

func TestAutoBillingSkipsWrongDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.autoBilling.Configure(ctx, true, 5, 1))
	env.autoBilling.now = func() time.Time {
		return time.Date(2024, time.March, 6, 9, 0, 0, 0, timeutil.IST)
	}

	ran, err := env.autoBilling.CheckAndRun(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestAutoBillingRunsOncePerMonth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)

	require.NoError(t, env.autoBilling.Configure(ctx, true, 5, 1))
	env.autoBilling.now = func() time.Time {
		return time.Date(2024, time.March, 5, 9, 0, 0, 0, timeutil.IST)
	}

	ran, err := env.autoBilling.CheckAndRun(ctx)
	require.NoError(t, err)
	require.True(t, ran)

	// Later the same day: the last-run gate holds.
	env.autoBilling.now = func() time.Time {
		return time.Date(2024, time.March, 5, 21, 0, 0, 0, timeutil.IST)
	}
	ran, err = env.autoBilling.CheckAndRun(ctx)
	require.NoError(t, err)
	assert.False(t, ran)

	// Next month's trigger day fires again.
	env.autoBilling.now = func() time.Time {
		return time.Date(2024, time.April, 5, 9, 0, 0, 0, timeutil.IST)
	}
	ran, err = env.autoBilling.CheckAndRun(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestAutoBillingRecordsRunWhenPeriodAlreadyBilled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pkg := env.seedPackage(t, "Silver", 500)
	customer := env.seedCustomer(t, "Ravi")
	env.seedActiveVC(t, "VC1001", customer, pkg)

	// The operator already billed March by hand.
	_, err := env.billing.GenerateBills(ctx, models.GenerateBillsRequest{Month: "2024-03"})
	require.NoError(t, err)

	require.NoError(t, env.autoBilling.Configure(ctx, true, 5, 1))
	env.autoBilling.now = func() time.Time {
		return time.Date(2024, time.March, 5, 9, 0, 0, 0, timeutil.IST)
	}

	ran, err := env.autoBilling.CheckAndRun(ctx)
	require.NoError(t, err)
	assert.False(t, ran)

	// The gate recorded the run so hourly checks stop retrying this month.
	status, err := env.autoBilling.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", status.LastRun)
}

func TestAutoBillingConfigureValidatesDay(t *testing.T) {
	env := newTestEnv(t)

	assert.ErrorIs(t, env.autoBilling.Configure(context.Background(), true, 0, 1), ErrInvalidDueDay)
	assert.ErrorIs(t, env.autoBilling.Configure(context.Background(), true, 32, 1), ErrInvalidDueDay)
}
