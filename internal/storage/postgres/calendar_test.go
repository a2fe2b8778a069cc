package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forbiddennorth/hexcrawl/internal/game/calendar"
	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
	"github.com/forbiddennorth/hexcrawl/internal/testutil"
)

func TestCalendarRepository_SeedAndLoad(t *testing.T) {
	repo := postgres.NewCalendarRepository(testutil.NewPool(t))
	ctx := context.Background()

	require.NoError(t, repo.SeedIfEmpty(ctx, calendar.DefaultMonths(), calendar.DefaultEra))

	cal, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "P.I.", cal.Era())
	assert.Equal(t, 12, cal.MonthsPerYear())
	assert.Equal(t, "Panagion", cal.MonthName(8))
	assert.Equal(t, calendar.SeasonSummer, cal.SeasonOf(8))

	// Seeding again is a no-op.
	other := []calendar.Month{{Number: 1, Name: "Only", Season: calendar.SeasonWinter, Days: 10}}
	require.NoError(t, repo.SeedIfEmpty(ctx, other, "X"))
	cal, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, cal.MonthsPerYear())
}

func TestCalendarRepository_ReplaceMonths(t *testing.T) {
	repo := postgres.NewCalendarRepository(testutil.NewPool(t))
	ctx := context.Background()

	require.NoError(t, repo.SeedIfEmpty(ctx, calendar.DefaultMonths(), calendar.DefaultEra))

	months := []calendar.Month{
		{Number: 1, Name: "Frost", Season: calendar.SeasonWinter, Days: 40},
		{Number: 2, Name: "Thaw", Season: calendar.SeasonSpring, Days: 50},
	}
	require.NoError(t, repo.ReplaceMonths(ctx, months))

	cal, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cal.MonthsPerYear())
	assert.Equal(t, "Frost", cal.MonthName(1))
	assert.Equal(t, 50, cal.DaysInMonth(2))
}

func TestCalendarRepository_ReplaceMonths_RejectsInvalidSet(t *testing.T) {
	repo := postgres.NewCalendarRepository(testutil.NewPool(t))
	ctx := context.Background()

	require.NoError(t, repo.SeedIfEmpty(ctx, calendar.DefaultMonths(), calendar.DefaultEra))

	// Non-contiguous numbering must leave the stored set untouched.
	bad := []calendar.Month{
		{Number: 2, Name: "Thaw", Season: calendar.SeasonSpring, Days: 50},
	}
	require.Error(t, repo.ReplaceMonths(ctx, bad))

	cal, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, cal.MonthsPerYear())
}

func TestCalendarRepository_UpdateMonth(t *testing.T) {
	repo := postgres.NewCalendarRepository(testutil.NewPool(t))
	ctx := context.Background()

	require.NoError(t, repo.SeedIfEmpty(ctx, calendar.DefaultMonths(), calendar.DefaultEra))

	days := 32
	month, err := repo.UpdateMonth(ctx, 8, postgres.MonthUpdate{Days: &days})
	require.NoError(t, err)
	assert.Equal(t, 32, month.Days)
	assert.Equal(t, "Panagion", month.Name, "untouched fields survive")

	_, err = repo.UpdateMonth(ctx, 99, postgres.MonthUpdate{Days: &days})
	assert.ErrorIs(t, err, postgres.ErrMonthNotFound)
}

func TestCalendarRepository_SetEra(t *testing.T) {
	repo := postgres.NewCalendarRepository(testutil.NewPool(t))
	ctx := context.Background()

	require.NoError(t, repo.SeedIfEmpty(ctx, calendar.DefaultMonths(), calendar.DefaultEra))
	require.NoError(t, repo.SetEra(ctx, "A.R."))

	cal, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A.R.", cal.Era())
}
