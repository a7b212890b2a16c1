package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/jaskrecur/internal/database/repository"
)

func intp(v int) *int { return &v }

func monthlyTemplate() repository.RecurringTemplate {
	return repository.RecurringTemplate{
		ID:          "tpl-1",
		AccountID:   "acct-1",
		Description: "RENT",
		Category:    "Housing",
		AmountCents: -5000,
		Frequency:   repository.FreqMonthly,
		DayOfMonth:  intp(15),
		StartDate:   day(2024, 1, 1),
	}
}

func TestProjectMonthly(t *testing.T) {
	t.Parallel()

	occs, err := Project(monthlyTemplate(), day(2024, 1, 1), day(2024, 4, 30), nil, nil)
	require.NoError(t, err)
	require.Len(t, occs, 4)
	for i, o := range occs {
		require.Equal(t, day(2024, time.Month(i+1), 15), o.Date)
		require.Equal(t, int64(-5000), o.AmountCents)
		require.Equal(t, "tpl-1", o.TemplateID)
		require.True(t, o.Projected)
		require.False(t, o.DynamicAmount)
	}
}

func TestProjectWeeklyRollsForwardToWeekday(t *testing.T) {
	t.Parallel()

	tpl := monthlyTemplate()
	tpl.Frequency = repository.FreqWeekly
	tpl.DayOfMonth = nil
	tpl.DayOfWeek = intp(int(time.Wednesday))

	// window opens on a Monday; first hit is Wednesday the 3rd
	occs, err := Project(tpl, day(2024, 1, 1), day(2024, 1, 31), nil, nil)
	require.NoError(t, err)
	require.Len(t, occs, 5)
	require.Equal(t, day(2024, 1, 3), occs[0].Date)
	for _, o := range occs {
		require.Equal(t, time.Wednesday, o.Date.Weekday())
	}
}

func TestProjectWeeklyDefaultsToStartDateWeekday(t *testing.T) {
	t.Parallel()

	tpl := monthlyTemplate()
	tpl.Frequency = repository.FreqWeekly
	tpl.DayOfMonth = nil
	tpl.StartDate = day(2024, 1, 5) // a Friday

	occs, err := Project(tpl, day(2024, 1, 1), day(2024, 1, 31), nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, occs)
	require.Equal(t, day(2024, 1, 5), occs[0].Date)
	for _, o := range occs {
		require.Equal(t, time.Friday, o.Date.Weekday())
	}
}

func TestProjectBiweeklyEvenWeekParity(t *testing.T) {
	t.Parallel()

	tpl := monthlyTemplate()
	tpl.Frequency = repository.FreqBiweekly
	tpl.DayOfMonth = nil
	tpl.DayOfWeek = intp(int(time.Monday))

	occs, err := Project(tpl, day(2024, 1, 1), day(2024, 2, 29), nil, nil)
	require.NoError(t, err)
	require.Len(t, occs, 4)
	for _, o := range occs {
		require.Equal(t, time.Monday, o.Date.Weekday())
		// approximation, not anchor-based: even ISO weeks only
		_, week := o.Date.ISOWeek()
		require.Zero(t, week%2)
	}
}

func TestProjectQuarterly(t *testing.T) {
	t.Parallel()

	tpl := monthlyTemplate()
	tpl.Frequency = repository.FreqQuarterly
	tpl.DayOfMonth = intp(10)

	occs, err := Project(tpl, day(2024, 1, 1), day(2024, 12, 31), nil, nil)
	require.NoError(t, err)
	require.Len(t, occs, 4)
	require.Equal(t, day(2024, 3, 10), occs[0].Date)
	require.Equal(t, day(2024, 12, 10), occs[3].Date)
}

func TestProjectYearlyUsesStartDateAnniversary(t *testing.T) {
	t.Parallel()

	tpl := monthlyTemplate()
	tpl.Frequency = repository.FreqYearly
	tpl.DayOfMonth = nil
	tpl.StartDate = day(2023, 5, 20)

	occs, err := Project(tpl, day(2024, 1, 1), day(2024, 12, 31), nil, nil)
	require.NoError(t, err)
	require.Len(t, occs, 1)
	require.Equal(t, day(2024, 5, 20), occs[0].Date)
}

func TestProjectBimonthly(t *testing.T) {
	t.Parallel()

	tpl := monthlyTemplate()
	tpl.Frequency = repository.FreqBimonthly
	tpl.DayOfMonth = nil
	tpl.BimonthlyFirstDay = intp(1)
	tpl.BimonthlySecondDay = intp(15)

	occs, err := Project(tpl, day(2024, 1, 1), day(2024, 2, 29), nil, nil)
	require.NoError(t, err)
	require.Len(t, occs, 4)
	require.Equal(t, day(2024, 1, 1), occs[0].Date)
	require.Equal(t, day(2024, 1, 15), occs[1].Date)
	require.Equal(t, day(2024, 2, 1), occs[2].Date)
	require.Equal(t, day(2024, 2, 15), occs[3].Date)
}

func TestProjectDaily(t *testing.T) {
	t.Parallel()

	tpl := monthlyTemplate()
	tpl.Frequency = repository.FreqDaily
	tpl.DayOfMonth = nil

	occs, err := Project(tpl, day(2024, 1, 1), day(2024, 1, 10), nil, nil)
	require.NoError(t, err)
	require.Len(t, occs, 10)
}

func TestProjectWindowBounds(t *testing.T) {
	t.Parallel()

	tpl := monthlyTemplate()
	tpl.StartDate = day(2024, 2, 1)
	end := day(2024, 6, 30)
	endDate := day(2024, 4, 30)
	tpl.EndDate = &endDate

	occs, err := Project(tpl, day(2024, 1, 1), end, nil, nil)
	require.NoError(t, err)
	require.Len(t, occs, 3)
	for _, o := range occs {
		require.False(t, o.Date.Before(tpl.StartDate), "date %s before template start", o.Date)
		require.False(t, o.Date.After(endDate), "date %s after template end", o.Date)
	}
}

func TestProjectInvalidFrequency(t *testing.T) {
	t.Parallel()

	for _, freq := range []repository.Frequency{repository.FreqNone, repository.FreqBiannual, "fortnightly"} {
		tpl := monthlyTemplate()
		tpl.Frequency = freq
		_, err := Project(tpl, day(2024, 1, 1), day(2024, 12, 31), nil, nil)
		require.ErrorIs(t, err, ErrInvalidFrequency, "frequency %q", freq)
	}
}

func TestProjectUsesPostedAmounts(t *testing.T) {
	t.Parallel()

	tpl := monthlyTemplate()
	tplID := tpl.ID
	posted := tx("posted", -5432, day(2024, 2, 15))
	posted.RecurringTemplateID = &tplID
	unrelated := tx("other", -111, day(2024, 3, 15))

	occs, err := Project(tpl, day(2024, 1, 1), day(2024, 3, 31), []repository.Transaction{posted, unrelated}, nil)
	require.NoError(t, err)
	require.Len(t, occs, 3)
	require.Equal(t, int64(-5000), occs[0].AmountCents)
	require.Equal(t, int64(-5432), occs[1].AmountCents)
	require.Equal(t, int64(-5000), occs[2].AmountCents)
}

func TestProjectDynamicAmounts(t *testing.T) {
	t.Parallel()

	tpl := monthlyTemplate()
	tpl.DynamicAmount = true
	ruleset := []repository.RecurringRule{containsRule("woolworths")}
	history := []repository.Transaction{
		tx("1", -4000, day(2023, 12, 1)),
		tx("2", -4200, day(2023, 12, 8)),
	}

	occs, err := Project(tpl, day(2024, 1, 1), day(2024, 2, 29), history, ruleset)
	require.NoError(t, err)
	require.Len(t, occs, 2)
	for _, o := range occs {
		require.Equal(t, int64(-4100), o.AmountCents)
		require.True(t, o.DynamicAmount)
	}
}

func TestProjectDeterministic(t *testing.T) {
	t.Parallel()

	tpl := monthlyTemplate()
	for i := 0; i < 3; i++ {
		occs, err := Project(tpl, day(2024, 1, 1), day(2024, 12, 31), nil, nil)
		require.NoError(t, err)
		require.Len(t, occs, 12, "run %d", i)
	}
}
