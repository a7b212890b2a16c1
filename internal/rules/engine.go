// Package rules evaluates recurring-transaction rules against
// transactions. Evaluation fails closed: a rule with an unknown field
// or operator matches nothing rather than erroring out of a batch.
package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jask/jaskrecur/internal/database/repository"
)

// Evaluate applies a single rule to a transaction.
//
// Equality operators compare numerically when both operands parse as
// numbers and as exact strings otherwise. Ordering operators require
// both operands numeric and are false otherwise. Substring operators
// lowercase both sides; the rule's CaseSensitive flag is accepted but
// has no effect, matching the behavior linked transactions were
// created under.
func Evaluate(tx repository.Transaction, rule repository.RecurringRule) bool {
	value, ok := fieldValue(tx, rule.Field)
	if !ok {
		return false
	}

	switch rule.Operator {
	case repository.OpEqual:
		return looseEqual(value, rule.Value)
	case repository.OpNotEqual:
		return !looseEqual(value, rule.Value)
	case repository.OpGreater, repository.OpLess, repository.OpGreaterEqual, repository.OpLessEqual:
		a, aOK := parseNumber(value)
		b, bOK := parseNumber(rule.Value)
		if !aOK || !bOK {
			return false
		}
		switch rule.Operator {
		case repository.OpGreater:
			return a > b
		case repository.OpLess:
			return a < b
		case repository.OpGreaterEqual:
			return a >= b
		default:
			return a <= b
		}
	case repository.OpContains:
		return strings.Contains(lower(value), lower(rule.Value))
	case repository.OpNotContains:
		return !strings.Contains(lower(value), lower(rule.Value))
	case repository.OpStartsWith:
		return strings.HasPrefix(lower(value), lower(rule.Value))
	case repository.OpEndsWith:
		return strings.HasSuffix(lower(value), lower(rule.Value))
	default:
		return false
	}
}

// MatchesAll reports whether the transaction satisfies every active
// rule. Rules are evaluated in priority order (ties broken by ID) so
// diagnostics walk them the same way every run. Inactive rules are
// ignored; an empty active set matches everything.
func MatchesAll(tx repository.Transaction, ruleset []repository.RecurringRule) bool {
	for _, rule := range ActiveByPriority(ruleset) {
		if !Evaluate(tx, rule) {
			return false
		}
	}
	return true
}

// FirstMatch assigns a transaction to the first template whose active
// rule set matches, in the given template order. Used for bulk
// auto-linking: OR across templates, AND within a template.
func FirstMatch(tx repository.Transaction, templates []repository.RecurringTemplate, rulesByTemplate map[string][]repository.RecurringRule) (string, bool) {
	for _, tpl := range templates {
		ruleset := rulesByTemplate[tpl.ID]
		if len(ActiveByPriority(ruleset)) == 0 {
			continue
		}
		if MatchesAll(tx, ruleset) {
			return tpl.ID, true
		}
	}
	return "", false
}

// RuleResult is one line of an Explain report.
type RuleResult struct {
	Rule    repository.RecurringRule
	Matched bool
	Reason  string
}

// Explain evaluates each active rule independently and says why it
// passed or failed, for "why did this rule not match" tooling.
func Explain(tx repository.Transaction, ruleset []repository.RecurringRule) []RuleResult {
	active := ActiveByPriority(ruleset)
	out := make([]RuleResult, 0, len(active))
	for _, rule := range active {
		matched := Evaluate(tx, rule)
		value, ok := fieldValue(tx, rule.Field)
		reason := fmt.Sprintf("%s %q %s %q", rule.Field, value, rule.Operator, rule.Value)
		if !ok {
			reason = fmt.Sprintf("unknown field %q", rule.Field)
		}
		out = append(out, RuleResult{Rule: rule, Matched: matched, Reason: reason})
	}
	return out
}

// ActiveByPriority filters to active rules sorted by priority, then ID.
func ActiveByPriority(ruleset []repository.RecurringRule) []repository.RecurringRule {
	active := make([]repository.RecurringRule, 0, len(ruleset))
	for _, rule := range ruleset {
		if rule.Active {
			active = append(active, rule)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority < active[j].Priority
		}
		return active[i].ID < active[j].ID
	})
	return active
}

func fieldValue(tx repository.Transaction, field repository.RuleField) (string, bool) {
	switch field {
	case repository.FieldDescription:
		return tx.Description, true
	case repository.FieldAmount:
		return strconv.FormatInt(tx.AmountCents, 10), true
	case repository.FieldCategory:
		return tx.Category, true
	case repository.FieldDate:
		return tx.Date.Format(time.DateOnly), true
	case repository.FieldAccountID:
		return tx.AccountID, true
	default:
		return "", false
	}
}

func looseEqual(a, b string) bool {
	na, aOK := parseNumber(a)
	nb, bOK := parseNumber(b)
	if aOK && bOK {
		return na == nb
	}
	return a == b
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

func lower(s string) string { return strings.ToLower(s) }
