package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/neuron_ledger/internal/models"
	"github.com/SscSPs/neuron_ledger/internal/utils/mapping"
	"github.com/SscSPs/neuron_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseColumns = `expense_id, expense_number, expense_date, category_id, company_ref, payee,
	expense_type, payment_channel, booking_ref, currency_code, status,
	prepared_by, prepared_at, noted_by, noted_at, approved_by, approved_at,
	submitted_at, paid_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

func scanExpense(row pgx.Row) (models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.ExpenseNumber,
		&m.ExpenseDate,
		&m.CategoryID,
		&m.CompanyRef,
		&m.Payee,
		&m.ExpenseType,
		&m.PaymentChannel,
		&m.BookingRef,
		&m.CurrencyCode,
		&m.Status,
		&m.PreparedBy,
		&m.PreparedAt,
		&m.NotedBy,
		&m.NotedAt,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.SubmittedAt,
		&m.PaidAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func loadExpenseLines(ctx context.Context, q querier, expenseIDs []string) (map[string][]models.ExpenseLine, error) {
	lines := make(map[string][]models.ExpenseLine, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return lines, nil
	}
	rows, err := q.Query(ctx, `
		SELECT expense_id, line_no, particular, description, amount_minor
		FROM expense_line_items
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, line_no;
	`, expenseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.ExpenseLine
		if err := rows.Scan(&l.ExpenseID, &l.LineNo, &l.Particular, &l.Description, &l.AmountMinor); err != nil {
			return nil, fmt.Errorf("failed to scan expense line item: %w", err)
		}
		lines[l.ExpenseID] = append(lines[l.ExpenseID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense line items: %w", err)
	}
	return lines, nil
}

func queryExpenses(ctx context.Context, q querier, sql string, args ...any) ([]domain.Expense, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	var heads []models.Expense
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		heads = append(heads, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", err)
	}

	ids := make([]string, len(heads))
	for i, h := range heads {
		ids[i] = h.ExpenseID
	}
	lines, err := loadExpenseLines(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	expenses := make([]domain.Expense, len(heads))
	for i, h := range heads {
		expenses[i] = mapping.ToDomainExpense(h, lines[h.ExpenseID])
	}
	return expenses, nil
}

func findExpense(ctx context.Context, q querier, expenseID string, forUpdate bool) (*domain.Expense, error) {
	if !isValidID(expenseID) {
		return nil, apperrors.ErrNotFound
	}
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanExpense(q.QueryRow(ctx, query, expenseID))
	if err != nil {
		return nil, notFoundOr(err, "failed to find expense "+expenseID)
	}
	lines, err := loadExpenseLines(ctx, q, []string{expenseID})
	if err != nil {
		return nil, err
	}
	d := mapping.ToDomainExpense(m, lines[expenseID])
	return &d, nil
}

func queueExpenseLines(batch *pgx.Batch, lines []models.ExpenseLine) {
	for _, l := range lines {
		batch.Queue(`INSERT INTO expense_line_items (expense_id, line_no, particular, description, amount_minor) VALUES ($1, $2, $3, $4, $5);`,
			l.ExpenseID, l.LineNo, l.Particular, l.Description, l.AmountMinor)
	}
}

// FindExpenseByID retrieves an expense with its line items and approval chain.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	return findExpense(ctx, r.Pool, expenseID, false)
}

// ListExpenses retrieves a page of expenses ordered by expense date, newest first.
func (r *PgxExpenseRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, *string, error) {
	limit := pagination.NormalizeLimit(filter.Limit)

	var w whereBuilder
	if filter.CompanyRef != "" {
		w.add("company_ref = ?", filter.CompanyRef)
	}
	if filter.CategoryID != "" {
		if !isValidID(filter.CategoryID) {
			return []domain.Expense{}, nil, nil
		}
		w.add("category_id = ?", filter.CategoryID)
	}
	if filter.Status != "" {
		if !filter.Status.IsValid() {
			return nil, nil, fmt.Errorf("%w: expense status %q", apperrors.ErrInvalidEnum, filter.Status)
		}
		w.add("status = ?", string(filter.Status))
	}
	if !filter.ExpenseDates.From.IsZero() {
		w.add("expense_date >= ?", filter.ExpenseDates.From)
	}
	if !filter.ExpenseDates.To.IsZero() {
		w.add("expense_date <= ?", filter.ExpenseDates.To)
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursor, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil || !isValidID(cursor.ID) {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		w.add("(expense_date, created_at, expense_id) < (?, ?, ?)", cursor.Date, cursor.CreatedAt, cursor.ID)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses ` + w.clause() +
		` ORDER BY expense_date DESC, created_at DESC, expense_id DESC ` + w.limit(limit+1) + `;`

	expenses, err := queryExpenses(ctx, r.Pool, query, w.args...)
	if err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(expenses) > limit {
		expenses = expenses[:limit]
		last := expenses[limit-1]
		token := pagination.EncodeToken(last.ExpenseDate, last.CreatedAt, last.ExpenseID)
		nextToken = &token
	}
	return expenses, nextToken, nil
}

// SaveExpense persists a new expense and its line items in one transaction.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	m, lines := mapping.ToModelExpense(expense)
	return r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO expenses (`+expenseColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);`,
			m.ExpenseID, m.ExpenseNumber, m.ExpenseDate, m.CategoryID, m.CompanyRef, m.Payee,
			m.ExpenseType, m.PaymentChannel, m.BookingRef, m.CurrencyCode, m.Status,
			m.PreparedBy, m.PreparedAt, m.NotedBy, m.NotedAt, m.ApprovedBy, m.ApprovedAt,
			m.SubmittedAt, m.PaidAt,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("expense %s: %w", m.ExpenseID, apperrors.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert expense %s: %w", m.ExpenseID, err)
		}

		batch := &pgx.Batch{}
		queueExpenseLines(batch, lines)
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert line items for expense %s: %w", m.ExpenseID, err)
		}
		return nil
	})
}

// UpdateExpense locks the expense row, applies mutate and writes the mutable columns and line items.
func (r *PgxExpenseRepository) UpdateExpense(ctx context.Context, expenseID string, mutate func(*domain.Expense) error) (*domain.Expense, error) {
	var updated *domain.Expense
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		current, err := findExpense(ctx, tx, expenseID, true)
		if err != nil {
			return err
		}
		if err := mutate(current); err != nil {
			return err
		}

		m, lines := mapping.ToModelExpense(*current)
		_, err = tx.Exec(ctx, `
			UPDATE expenses
			SET status = $2, prepared_by = $3, prepared_at = $4, noted_by = $5, noted_at = $6,
			    approved_by = $7, approved_at = $8, submitted_at = $9, paid_at = $10,
			    last_updated_at = $11, last_updated_by = $12
			WHERE expense_id = $1;`,
			m.ExpenseID, m.Status, m.PreparedBy, m.PreparedAt, m.NotedBy, m.NotedAt,
			m.ApprovedBy, m.ApprovedAt, m.SubmittedAt, m.PaidAt,
			m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense %s: %w", expenseID, err)
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM expense_line_items WHERE expense_id = $1;`, expenseID)
		queueExpenseLines(batch, lines)
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to replace line items for expense %s: %w", expenseID, err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
