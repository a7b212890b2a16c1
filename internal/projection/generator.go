package projection

import (
	"errors"
	"time"

	"github.com/jask/jaskrecur/internal/database/repository"
)

// ErrInvalidFrequency marks a template whose cadence the generator
// cannot walk; callers skip the template rather than aborting a batch.
var ErrInvalidFrequency = errors.New("invalid frequency")

// maxWindowDays bounds the day-walk so a pathological template or
// window can never loop forever (~50 years).
const maxWindowDays = 366 * 50

// Projected is one generated occurrence of a template. It has the
// shape of a transaction but is never persisted.
type Projected struct {
	AccountID     string
	Date          time.Time
	AmountCents   int64
	Description   string
	Category      string
	TemplateID    string
	Projected     bool
	DynamicAmount bool
}

// Project walks [start, end] one day at a time and emits an
// occurrence for each date the template's cadence predicate accepts.
// If a transaction already linked to the template exists on a
// generated date, its real amount is used; otherwise dynamic
// templates use the rule-based estimate and fixed templates their
// static amount.
func Project(tpl repository.RecurringTemplate, start, end time.Time, history []repository.Transaction, ruleset []repository.RecurringRule) ([]Projected, error) {
	if !tpl.Frequency.Valid() {
		return nil, ErrInvalidFrequency
	}

	start = dateOnly(start)
	end = dateOnly(end)
	if tpl.EndDate != nil && tpl.EndDate.Before(end) {
		end = dateOnly(*tpl.EndDate)
	}

	cursor := start
	if s := dateOnly(tpl.StartDate); s.After(cursor) {
		cursor = s
	}
	if tpl.Frequency == repository.FreqWeekly {
		cursor = rollForwardToWeekday(cursor, weeklyDay(tpl))
	}

	posted := postedAmountsByDate(tpl.ID, history)

	var estimate int64
	estimated := false

	var out []Projected
	for steps := 0; !cursor.After(end) && steps < maxWindowDays; steps++ {
		if shouldGenerate(tpl, cursor) {
			amount, real := posted[cursor]
			if !real {
				if tpl.DynamicAmount {
					if !estimated {
						estimate = EstimateDynamicAmount(tpl, ruleset, history)
						estimated = true
					}
					amount = estimate
				} else {
					amount = tpl.AmountCents
				}
			}
			out = append(out, Projected{
				AccountID:     tpl.AccountID,
				Date:          cursor,
				AmountCents:   amount,
				Description:   tpl.Description,
				Category:      tpl.Category,
				TemplateID:    tpl.ID,
				Projected:     true,
				DynamicAmount: tpl.DynamicAmount,
			})
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return out, nil
}

// shouldGenerate is the single per-cadence predicate; the cursor
// always advances one day regardless of frequency, so this is the
// only place cadence semantics live.
func shouldGenerate(tpl repository.RecurringTemplate, cursor time.Time) bool {
	switch tpl.Frequency {
	case repository.FreqDaily:
		return true
	case repository.FreqWeekly:
		return int(cursor.Weekday()) == weeklyDay(tpl)
	case repository.FreqBiweekly:
		// approximation, not anchor-based: even ISO weeks only
		_, week := cursor.ISOWeek()
		return int(cursor.Weekday()) == weeklyDay(tpl) && week%2 == 0
	case repository.FreqMonthly:
		return cursor.Day() == monthlyDay(tpl)
	case repository.FreqQuarterly:
		return cursor.Day() == monthlyDay(tpl) && cursor.Month()%3 == 0
	case repository.FreqYearly:
		return cursor.Month() == tpl.StartDate.Month() && cursor.Day() == tpl.StartDate.Day()
	case repository.FreqBimonthly:
		first, second := bimonthlyDays(tpl)
		return cursor.Day() == first || cursor.Day() == second
	default:
		return false
	}
}

func weeklyDay(tpl repository.RecurringTemplate) int {
	if tpl.DayOfWeek != nil {
		return *tpl.DayOfWeek
	}
	return int(tpl.StartDate.Weekday())
}

func monthlyDay(tpl repository.RecurringTemplate) int {
	if tpl.DayOfMonth != nil {
		return *tpl.DayOfMonth
	}
	return 1
}

func bimonthlyDays(tpl repository.RecurringTemplate) (int, int) {
	first, second := 1, 15
	if tpl.BimonthlyFirstDay != nil {
		first = *tpl.BimonthlyFirstDay
	}
	if tpl.BimonthlySecondDay != nil {
		second = *tpl.BimonthlySecondDay
	}
	return first, second
}

// rollForwardToWeekday moves d forward (never backward) to the next
// date on the wanted weekday.
func rollForwardToWeekday(d time.Time, weekday int) time.Time {
	delta := (weekday - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, delta)
}

// postedAmountsByDate indexes amounts of transactions already linked
// to the template, so projection prefers the real posted amount on
// dates where the recurrence has actually landed.
func postedAmountsByDate(templateID string, history []repository.Transaction) map[time.Time]int64 {
	out := make(map[time.Time]int64)
	for _, tx := range history {
		if tx.RecurringTemplateID == nil || *tx.RecurringTemplateID != templateID {
			continue
		}
		out[dateOnly(tx.Date)] = tx.AmountCents
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
