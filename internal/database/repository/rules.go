package repository

import (
	"context"
	"database/sql"
)

// RuleRepo stores per-template rules.
type RuleRepo struct{ db *sql.DB }

func NewRuleRepo(db *sql.DB) *RuleRepo { return &RuleRepo{db: db} }

const ruleColumns = `id, template_id, field, operator, value, is_case_sensitive, priority, is_active, created_at, updated_at`

func (r *RuleRepo) Insert(ctx context.Context, rule RecurringRule) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO recurring_rules(`+ruleColumns+`)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, rule.ID, rule.TemplateID, string(rule.Field), string(rule.Operator), rule.Value,
		rule.CaseSensitive, rule.Priority, rule.Active)
	return err
}

// ListByTemplate returns all rules for one template in priority order.
func (r *RuleRepo) ListByTemplate(ctx context.Context, templateID string) ([]RecurringRule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM recurring_rules WHERE template_id = ? ORDER BY priority ASC, id ASC`, templateID)
}

// ListByAccount returns rules for every template on an account,
// keyed by template, for the bulk auto-link pass.
func (r *RuleRepo) ListByAccount(ctx context.Context, accountID string) (map[string][]RecurringRule, error) {
	all, err := r.list(ctx, `
	SELECT r.id, r.template_id, r.field, r.operator, r.value, r.is_case_sensitive, r.priority, r.is_active, r.created_at, r.updated_at
	FROM recurring_rules r
	JOIN recurring_templates t ON t.id = r.template_id
	WHERE t.account_id = ?
	ORDER BY r.template_id, r.priority ASC, r.id ASC`, accountID)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]RecurringRule)
	for _, rule := range all {
		out[rule.TemplateID] = append(out[rule.TemplateID], rule)
	}
	return out, nil
}

func (r *RuleRepo) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE recurring_rules SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, active, id)
	return err
}

func (r *RuleRepo) list(ctx context.Context, query string, args ...any) ([]RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RecurringRule
	for rows.Next() {
		var rule RecurringRule
		var field, op string
		if err := rows.Scan(&rule.ID, &rule.TemplateID, &field, &op, &rule.Value,
			&rule.CaseSensitive, &rule.Priority, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		rule.Field = RuleField(field)
		rule.Operator = RuleOperator(op)
		out = append(out, rule)
	}
	return out, rows.Err()
}
