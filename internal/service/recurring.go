package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jask/jaskrecur/internal/cache"
	"github.com/jask/jaskrecur/internal/database"
	"github.com/jask/jaskrecur/internal/database/repository"
	"github.com/jask/jaskrecur/internal/recurring"
	"github.com/jask/jaskrecur/internal/rules"
)

// RecurringService turns detected proposals into templates and keeps
// historical transactions linked to them.
type RecurringService struct {
	DB           *sql.DB
	Transactions *repository.TransactionRepo
	Templates    *repository.TemplateRepo
	Rules        *repository.RuleRepo
	Cache        cache.Cache
	Log          *slog.Logger
}

// Overrides are user edits applied to a proposal before the template
// is created. Nil fields keep the proposal's suggestion.
type Overrides struct {
	Description    *string
	Category       *string
	AmountCents    *int64
	DayOfMonth     *int
	DayOfWeek      *int
	StartDate      *time.Time
	EndDate        *time.Time
	DynamicAmount  *bool
	MinAmountCents *int64
	MaxAmountCents *int64
}

// DetectPatterns runs detection over an account's unlinked history
// and returns proposals ordered by confidence. Detector zero values
// fall back to the package defaults.
func (s *RecurringService) DetectPatterns(ctx context.Context, accountID string, det recurring.Detector) ([]recurring.Proposal, error) {
	txs, err := s.Transactions.List(ctx, repository.TransactionFilters{AccountID: accountID, UnlinkedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list unlinked: %w", err)
	}
	proposals := det.Detect(txs)
	s.log().Info("detected recurring patterns", "account", accountID, "candidates", len(txs), "proposals", len(proposals))
	return proposals, nil
}

// ConfirmPattern creates a template from a proposal and links the
// proposal's source transactions to it, atomically: either the
// template exists with all its still-unlinked sources attached, or
// nothing changed. Returns the created template and how many
// transactions were linked (sources grabbed by another confirmation
// in the meantime are skipped, not stolen).
func (s *RecurringService) ConfirmPattern(ctx context.Context, p recurring.Proposal, budgetID, accountID string, ov *Overrides) (repository.RecurringTemplate, int, error) {
	if p.Frequency == repository.FreqNone {
		return repository.RecurringTemplate{}, 0, fmt.Errorf("proposal has no frequency")
	}

	tpl := templateFromProposal(p, budgetID, accountID)
	applyOverrides(&tpl, ov)

	linked := 0
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		if err := repository.InsertTemplateTx(ctx, tx, tpl); err != nil {
			return fmt.Errorf("insert template: %w", err)
		}
		for _, id := range p.SourceTransactionIDs {
			ok, err := repository.LinkToTemplate(ctx, tx, id, tpl.ID)
			if err != nil {
				return fmt.Errorf("link transaction %s: %w", id, err)
			}
			if ok {
				linked++
			}
		}
		return nil
	})
	if err != nil {
		return repository.RecurringTemplate{}, 0, err
	}

	s.invalidate(accountID)
	s.log().Info("confirmed recurring pattern",
		"template", tpl.ID, "description", tpl.Description,
		"frequency", string(tpl.Frequency), "linked", linked)
	return tpl, linked, nil
}

// AutoLink walks an account's unlinked history and assigns each
// transaction to the first template whose active rules all match.
// The whole pass commits atomically.
func (s *RecurringService) AutoLink(ctx context.Context, accountID string) (int, error) {
	templates, err := s.Templates.ListByAccount(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("list templates: %w", err)
	}
	if len(templates) == 0 {
		return 0, nil
	}
	rulesByTemplate, err := s.Rules.ListByAccount(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("list rules: %w", err)
	}
	unlinked, err := s.Transactions.List(ctx, repository.TransactionFilters{AccountID: accountID, UnlinkedOnly: true})
	if err != nil {
		return 0, fmt.Errorf("list unlinked: %w", err)
	}

	type assignment struct{ transactionID, templateID string }
	var assignments []assignment
	for _, tx := range unlinked {
		if templateID, ok := rules.FirstMatch(tx, templates, rulesByTemplate); ok {
			assignments = append(assignments, assignment{tx.ID, templateID})
		}
	}
	if len(assignments) == 0 {
		return 0, nil
	}

	linked := 0
	err = database.WithTx(s.DB, func(tx *sql.Tx) error {
		for _, a := range assignments {
			ok, err := repository.LinkToTemplate(ctx, tx, a.transactionID, a.templateID)
			if err != nil {
				return err
			}
			if ok {
				linked++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.invalidate(accountID)
	s.log().Info("auto-linked transactions", "account", accountID, "linked", linked)
	return linked, nil
}

func templateFromProposal(p recurring.Proposal, budgetID, accountID string) repository.RecurringTemplate {
	tpl := repository.RecurringTemplate{
		ID:                 uuid.NewString(),
		BudgetID:           budgetID,
		AccountID:          accountID,
		Description:        p.NormalizedDescription,
		Category:           p.Category,
		AmountCents:        p.AmountCents,
		Frequency:          p.Frequency,
		DayOfMonth:         p.DayOfMonth,
		DayOfWeek:          p.DayOfWeek,
		BimonthlyFirstDay:  p.BimonthlyFirstDay,
		BimonthlySecondDay: p.BimonthlySecondDay,
		StartDate:          p.SuggestedStartDate,
		DynamicAmount:      p.DynamicAmount,
	}
	if p.DynamicAmount {
		avg := p.AmountCents
		tpl.AverageAmountCents = &avg
	}
	return tpl
}

func applyOverrides(tpl *repository.RecurringTemplate, ov *Overrides) {
	if ov == nil {
		return
	}
	if ov.Description != nil {
		tpl.Description = *ov.Description
	}
	if ov.Category != nil {
		tpl.Category = *ov.Category
	}
	if ov.AmountCents != nil {
		tpl.AmountCents = *ov.AmountCents
	}
	if ov.DayOfMonth != nil {
		tpl.DayOfMonth = ov.DayOfMonth
	}
	if ov.DayOfWeek != nil {
		tpl.DayOfWeek = ov.DayOfWeek
	}
	if ov.StartDate != nil {
		tpl.StartDate = *ov.StartDate
	}
	if ov.EndDate != nil {
		tpl.EndDate = ov.EndDate
	}
	if ov.DynamicAmount != nil {
		tpl.DynamicAmount = *ov.DynamicAmount
	}
	if ov.MinAmountCents != nil {
		tpl.MinAmountCents = ov.MinAmountCents
	}
	if ov.MaxAmountCents != nil {
		tpl.MaxAmountCents = ov.MaxAmountCents
	}
}

func (s *RecurringService) invalidate(accountID string) {
	if s.Cache != nil {
		s.Cache.InvalidatePrefix("proj:" + accountID + ":")
	}
}

func (s *RecurringService) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
