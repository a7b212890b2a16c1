package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// TransactionFilters defines list filters.
type TransactionFilters struct {
	AccountID    string
	Category     string
	From         time.Time // zero = unbounded
	To           time.Time // zero = unbounded
	UnlinkedOnly bool
	Search       string
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = `id, account_id, date, amount, description, category, recurring_template_id, created_at, updated_at`

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(`+transactionColumns+`)
	VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, t.ID, t.AccountID, t.Date, t.AmountCents, t.Description, t.Category, t.RecurringTemplateID)
	return err
}

// List returns transactions ordered by date then ID so every caller
// sees the same deterministic sequence.
func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]Transaction, error) {
	var where []string
	var args []any

	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}
	if f.UnlinkedOnly {
		where = append(where, "recurring_template_id IS NULL")
	}
	if f.Search != "" {
		where = append(where, "description LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// LinkToTemplate links a transaction to a template, but only if it is
// still unlinked; callers run this inside a confirmation transaction.
func LinkToTemplate(ctx context.Context, tx *sql.Tx, transactionID, templateID string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
	UPDATE transactions SET recurring_template_id = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ? AND recurring_template_id IS NULL`, templateID, transactionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// scanTransaction handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var templateID sql.NullString
	if err := row.Scan(&t.ID, &t.AccountID, &t.Date, &t.AmountCents, &t.Description,
		&t.Category, &templateID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	if templateID.Valid {
		t.RecurringTemplateID = &templateID.String
	}
	return t, nil
}
