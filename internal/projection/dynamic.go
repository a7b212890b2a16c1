// Package projection turns recurring templates into projected
// occurrences over a date window, re-estimating dynamic amounts from
// rule-matched history.
package projection

import (
	"math"

	"github.com/jask/jaskrecur/internal/database/repository"
	"github.com/jask/jaskrecur/internal/rules"
)

// EstimateDynamicAmount estimates the per-occurrence amount for a
// dynamic template as the truncated integer mean of rule-matched,
// bound-filtered history. The fallback at every dead end is the
// template's stored average if present, else its static amount.
//
// Deliberately a simple bounded average: trend and outlier
// diagnostics exist for human review (see Diagnose) and never feed
// this estimate.
func EstimateDynamicAmount(tpl repository.RecurringTemplate, ruleset []repository.RecurringRule, history []repository.Transaction) int64 {
	fallback := tpl.AmountCents
	if tpl.AverageAmountCents != nil {
		fallback = *tpl.AverageAmountCents
	}

	if len(rules.ActiveByPriority(ruleset)) == 0 {
		return fallback
	}

	matched := matchingTransactions(ruleset, history)
	if len(matched) == 0 {
		return fallback
	}

	filtered := filterByBounds(matched, tpl.MinAmountCents, tpl.MaxAmountCents)
	if len(filtered) == 0 {
		return fallback
	}

	var sum int64
	for _, tx := range filtered {
		sum += tx.AmountCents
	}
	return sum / int64(len(filtered))
}

func matchingTransactions(ruleset []repository.RecurringRule, history []repository.Transaction) []repository.Transaction {
	var out []repository.Transaction
	for _, tx := range history {
		if rules.MatchesAll(tx, ruleset) {
			out = append(out, tx)
		}
	}
	return out
}

// filterByBounds keeps transactions whose absolute amount falls
// inside the absolute-magnitude window of the bounds. Expense
// templates carry negative bounds; comparing magnitudes makes
// min/max behave identically for both signs.
func filterByBounds(txs []repository.Transaction, minBound, maxBound *int64) []repository.Transaction {
	if minBound == nil && maxBound == nil {
		return txs
	}

	var lo, hi float64
	hasLo, hasHi := false, false
	switch {
	case minBound != nil && maxBound != nil:
		a, b := math.Abs(float64(*minBound)), math.Abs(float64(*maxBound))
		lo, hi = math.Min(a, b), math.Max(a, b)
		hasLo, hasHi = true, true
	case minBound != nil:
		lo, hasLo = math.Abs(float64(*minBound)), true
	default:
		hi, hasHi = math.Abs(float64(*maxBound)), true
	}

	var out []repository.Transaction
	for _, tx := range txs {
		mag := math.Abs(float64(tx.AmountCents))
		if hasLo && mag < lo {
			continue
		}
		if hasHi && mag > hi {
			continue
		}
		out = append(out, tx)
	}
	return out
}
