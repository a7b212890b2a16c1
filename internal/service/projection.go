package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jask/jaskrecur/internal/cache"
	"github.com/jask/jaskrecur/internal/database/repository"
	"github.com/jask/jaskrecur/internal/projection"
)

// ProjectionService produces the forward calendar of expected
// occurrences for an account.
type ProjectionService struct {
	Transactions *repository.TransactionRepo
	Templates    *repository.TemplateRepo
	Rules        *repository.RuleRepo
	Cache        cache.Cache
	Log          *slog.Logger
}

// Calendar generates projected occurrences for every template on the
// account over [start, end], merged and date-sorted. A template the
// generator rejects is skipped with a warning; one bad template must
// not blank the whole calendar. Results are cached per account and
// window until a mutation invalidates them.
func (s *ProjectionService) Calendar(ctx context.Context, accountID string, start, end time.Time) ([]projection.Projected, error) {
	key := calendarKey(accountID, start, end)
	if s.Cache != nil {
		if v, ok := s.Cache.Get(key); ok {
			if cached, ok := v.([]projection.Projected); ok {
				return cached, nil
			}
		}
	}

	templates, err := s.Templates.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	rulesByTemplate, err := s.Rules.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	history, err := s.Transactions.List(ctx, repository.TransactionFilters{AccountID: accountID})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	var out []projection.Projected
	for _, tpl := range templates {
		occs, err := projection.Project(tpl, start, end, history, rulesByTemplate[tpl.ID])
		if err != nil {
			if errors.Is(err, projection.ErrInvalidFrequency) {
				s.log().Warn("skipping template with invalid frequency",
					"template", tpl.ID, "frequency", string(tpl.Frequency))
				continue
			}
			return nil, fmt.Errorf("project template %s: %w", tpl.ID, err)
		}
		out = append(out, occs...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TemplateID < out[j].TemplateID
	})

	if s.Cache != nil {
		s.Cache.Set(key, out)
	}
	return out, nil
}

func calendarKey(accountID string, start, end time.Time) string {
	return "proj:" + accountID + ":" + start.Format(time.DateOnly) + ":" + end.Format(time.DateOnly)
}

func (s *ProjectionService) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
