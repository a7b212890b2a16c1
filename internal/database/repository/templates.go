package repository

import (
	"context"
	"database/sql"
)

// TemplateRepo stores recurring-transaction templates.
type TemplateRepo struct{ db *sql.DB }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{db: db} }

const templateColumns = `id, budget_id, account_id, description, category, amount, frequency,
 day_of_month, day_of_week, bimonthly_first_day, bimonthly_second_day,
 start_date, end_date, is_dynamic_amount, average_amount, min_amount, max_amount,
 plaid_entity_id, plaid_entity_name, created_at, updated_at`

// InsertTemplateTx inserts inside an existing transaction (pattern
// confirmation creates the template and links history atomically).
func InsertTemplateTx(ctx context.Context, tx *sql.Tx, t RecurringTemplate) error {
	_, err := tx.ExecContext(ctx, `
	INSERT INTO recurring_templates(`+templateColumns+`)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, t.ID, t.BudgetID, t.AccountID, t.Description, t.Category, t.AmountCents, string(t.Frequency),
		t.DayOfMonth, t.DayOfWeek, t.BimonthlyFirstDay, t.BimonthlySecondDay,
		t.StartDate, t.EndDate, t.DynamicAmount, t.AverageAmountCents, t.MinAmountCents, t.MaxAmountCents,
		t.PlaidEntityID, t.PlaidEntityName)
	return err
}

func (r *TemplateRepo) Insert(ctx context.Context, t RecurringTemplate) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO recurring_templates(`+templateColumns+`)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, t.ID, t.BudgetID, t.AccountID, t.Description, t.Category, t.AmountCents, string(t.Frequency),
		t.DayOfMonth, t.DayOfWeek, t.BimonthlyFirstDay, t.BimonthlySecondDay,
		t.StartDate, t.EndDate, t.DynamicAmount, t.AverageAmountCents, t.MinAmountCents, t.MaxAmountCents,
		t.PlaidEntityID, t.PlaidEntityName)
	return err
}

func (r *TemplateRepo) Get(ctx context.Context, id string) (*RecurringTemplate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM recurring_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListByAccount returns templates ordered by creation then ID; the
// auto-link first-match pass depends on this order being stable.
func (r *TemplateRepo) ListByAccount(ctx context.Context, accountID string) ([]RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM recurring_templates WHERE account_id = ? ORDER BY created_at ASC, id ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RecurringTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateAmounts persists changed amount policy fields.
func (r *TemplateRepo) UpdateAmounts(ctx context.Context, id string, dynamic bool, average, min, max *int64) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE recurring_templates
	SET is_dynamic_amount = ?, average_amount = ?, min_amount = ?, max_amount = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`, dynamic, average, min, max, id)
	return err
}

func scanTemplate(row scanner) (RecurringTemplate, error) {
	var t RecurringTemplate
	var freq string
	var dayOfMonth, dayOfWeek, firstDay, secondDay sql.NullInt64
	var endDate sql.NullTime
	var average, minAmount, maxAmount sql.NullInt64
	var plaidID, plaidName sql.NullString
	if err := row.Scan(&t.ID, &t.BudgetID, &t.AccountID, &t.Description, &t.Category, &t.AmountCents, &freq,
		&dayOfMonth, &dayOfWeek, &firstDay, &secondDay,
		&t.StartDate, &endDate, &t.DynamicAmount, &average, &minAmount, &maxAmount,
		&plaidID, &plaidName, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return RecurringTemplate{}, err
	}
	t.Frequency = Frequency(freq)
	t.DayOfMonth = nullableInt(dayOfMonth)
	t.DayOfWeek = nullableInt(dayOfWeek)
	t.BimonthlyFirstDay = nullableInt(firstDay)
	t.BimonthlySecondDay = nullableInt(secondDay)
	if endDate.Valid {
		end := endDate.Time
		t.EndDate = &end
	}
	t.AverageAmountCents = nullableInt64(average)
	t.MinAmountCents = nullableInt64(minAmount)
	t.MaxAmountCents = nullableInt64(maxAmount)
	if plaidID.Valid {
		t.PlaidEntityID = &plaidID.String
	}
	if plaidName.Valid {
		t.PlaidEntityName = &plaidName.String
	}
	return t, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullableInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}
