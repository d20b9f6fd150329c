package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	got, err := ParsePeriod("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 1, got.Day())
	assert.Equal(t, IST, got.Location())

	for _, period := range []string{"", "2024", "03-2024", "2024-13", "2024-3", "2024-03-01"} {
		_, err := ParsePeriod(period)
		assert.Error(t, err, "period %q", period)
	}
}

func TestPeriodOf(t *testing.T) {
	// 2024-03-31 23:30 UTC is already April 1st in IST.
	utc := time.Date(2024, time.March, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-04", PeriodOf(utc))

	ist := time.Date(2024, time.March, 31, 23, 30, 0, 0, IST)
	assert.Equal(t, "2024-03", PeriodOf(ist))
}

func TestDueDate(t *testing.T) {
	due, err := DueDate("2024-03", 15)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-16", due.Format(DateLayout))

	// Year rollover.
	due, err = DueDate("2024-12", 15)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-16", due.Format(DateLayout))

	_, err = DueDate("garbage", 15)
	assert.Error(t, err)
}

func TestSameMonth(t *testing.T) {
	a := time.Date(2024, time.March, 1, 0, 0, 0, 0, IST)
	b := time.Date(2024, time.March, 31, 23, 59, 0, 0, IST)
	assert.True(t, SameMonth(a, b))

	// Same wall-clock month in UTC, but the IST offset pushes it into April.
	c := time.Date(2024, time.March, 31, 22, 0, 0, 0, time.UTC)
	assert.False(t, SameMonth(a, c))

	d := time.Date(2023, time.March, 15, 0, 0, 0, 0, IST)
	assert.False(t, SameMonth(a, d))
}
