package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/neuron_ledger/internal/models"
	"github.com/SscSPs/neuron_ledger/internal/utils/mapping"
	"github.com/SscSPs/neuron_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invoiceColumns = `invoice_id, invoice_number, issue_date, client_ref, company_ref, booking_ref,
	currency_code, stated_minor, collected_minor, posted_at,
	created_at, created_by, last_updated_at, last_updated_by`

// invoiceStatusConditions derives the invoice status in SQL, mirroring domain.DeriveInvoiceStatus.
var invoiceStatusConditions = map[domain.InvoiceStatus]string{
	domain.InvoiceDraft:   "posted_at IS NULL",
	domain.InvoicePosted:  "posted_at IS NOT NULL AND collected_minor = 0",
	domain.InvoicePartial: "posted_at IS NOT NULL AND collected_minor > 0 AND collected_minor < stated_minor",
	domain.InvoicePaid:    "posted_at IS NOT NULL AND collected_minor = stated_minor",
}

type PgxInvoiceRepository struct {
	BaseRepository
}

func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

func scanInvoice(row pgx.Row) (models.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.InvoiceNumber,
		&m.IssueDate,
		&m.ClientRef,
		&m.CompanyRef,
		&m.BookingRef,
		&m.CurrencyCode,
		&m.StatedMinor,
		&m.CollectedMinor,
		&m.PostedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// loadInvoiceLines fetches the line items of the given invoices grouped by invoice id.
func loadInvoiceLines(ctx context.Context, q querier, invoiceIDs []string) (map[string][]models.InvoiceLine, error) {
	lines := make(map[string][]models.InvoiceLine, len(invoiceIDs))
	if len(invoiceIDs) == 0 {
		return lines, nil
	}
	rows, err := q.Query(ctx, `
		SELECT invoice_id, line_no, description, amount_minor
		FROM invoice_line_items
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, line_no;
	`, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.InvoiceLine
		if err := rows.Scan(&l.InvoiceID, &l.LineNo, &l.Description, &l.AmountMinor); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line item: %w", err)
		}
		lines[l.InvoiceID] = append(lines[l.InvoiceID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice line items: %w", err)
	}
	return lines, nil
}

// queryInvoices runs a query selecting invoiceColumns and attaches line items.
func queryInvoices(ctx context.Context, q querier, sql string, args ...any) ([]domain.Invoice, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	var heads []models.Invoice
	for rows.Next() {
		m, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		heads = append(heads, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}

	ids := make([]string, len(heads))
	for i, h := range heads {
		ids[i] = h.InvoiceID
	}
	lines, err := loadInvoiceLines(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	invoices := make([]domain.Invoice, len(heads))
	for i, h := range heads {
		invoices[i] = mapping.ToDomainInvoice(h, lines[h.InvoiceID])
	}
	return invoices, nil
}

func findInvoice(ctx context.Context, q querier, invoiceID string, forUpdate bool) (*domain.Invoice, error) {
	if !isValidID(invoiceID) {
		return nil, apperrors.ErrNotFound
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanInvoice(q.QueryRow(ctx, query, invoiceID))
	if err != nil {
		return nil, notFoundOr(err, "failed to find invoice "+invoiceID)
	}
	lines, err := loadInvoiceLines(ctx, q, []string{invoiceID})
	if err != nil {
		return nil, err
	}
	d := mapping.ToDomainInvoice(m, lines[invoiceID])
	return &d, nil
}

func queueInvoiceLines(batch *pgx.Batch, lines []models.InvoiceLine) {
	for _, l := range lines {
		batch.Queue(`INSERT INTO invoice_line_items (invoice_id, line_no, description, amount_minor) VALUES ($1, $2, $3, $4);`,
			l.InvoiceID, l.LineNo, l.Description, l.AmountMinor)
	}
}

// FindInvoiceByID retrieves an invoice with its line items.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return findInvoice(ctx, r.Pool, invoiceID, false)
}

// ListInvoices retrieves a page of invoices ordered by issue date, newest first.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, *string, error) {
	limit := pagination.NormalizeLimit(filter.Limit)

	var w whereBuilder
	if filter.ClientRef != "" {
		w.add("client_ref = ?", filter.ClientRef)
	}
	if filter.CompanyRef != "" {
		w.add("company_ref = ?", filter.CompanyRef)
	}
	if !filter.IssueDates.From.IsZero() {
		w.add("issue_date >= ?", filter.IssueDates.From)
	}
	if !filter.IssueDates.To.IsZero() {
		w.add("issue_date <= ?", filter.IssueDates.To)
	}
	if filter.Status != "" {
		cond, ok := invoiceStatusConditions[filter.Status]
		if !ok {
			return nil, nil, fmt.Errorf("%w: invoice status %q", apperrors.ErrInvalidEnum, filter.Status)
		}
		w.add(cond)
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursor, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil || !isValidID(cursor.ID) {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		w.add("(issue_date, created_at, invoice_id) < (?, ?, ?)", cursor.Date, cursor.CreatedAt, cursor.ID)
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices ` + w.clause() +
		` ORDER BY issue_date DESC, created_at DESC, invoice_id DESC ` + w.limit(limit+1) + `;`

	invoices, err := queryInvoices(ctx, r.Pool, query, w.args...)
	if err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(invoices) > limit {
		invoices = invoices[:limit]
		last := invoices[limit-1]
		token := pagination.EncodeToken(last.IssueDate, last.CreatedAt, last.InvoiceID)
		nextToken = &token
	}
	return invoices, nextToken, nil
}

// ListOpenInvoicesByClient retrieves Posted and Partial invoices of a client, oldest first.
func (r *PgxInvoiceRepository) ListOpenInvoicesByClient(ctx context.Context, clientRef string, currency string) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE client_ref = $1 AND currency_code = $2
		  AND posted_at IS NOT NULL AND collected_minor < stated_minor
		ORDER BY issue_date ASC, invoice_number ASC;`
	return queryInvoices(ctx, r.Pool, query, clientRef, currency)
}

// ListAllInvoices retrieves every invoice.
func (r *PgxInvoiceRepository) ListAllInvoices(ctx context.Context) ([]domain.Invoice, error) {
	return queryInvoices(ctx, r.Pool, `SELECT `+invoiceColumns+` FROM invoices ORDER BY invoice_id;`)
}

// SaveInvoice persists a new invoice and its line items in one transaction.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	m, lines := mapping.ToModelInvoice(invoice)
	return r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoices (`+invoiceColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`,
			m.InvoiceID, m.InvoiceNumber, m.IssueDate, m.ClientRef, m.CompanyRef, m.BookingRef,
			m.CurrencyCode, m.StatedMinor, m.CollectedMinor, m.PostedAt,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("invoice %s: %w", m.InvoiceID, apperrors.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert invoice %s: %w", m.InvoiceID, err)
		}

		batch := &pgx.Batch{}
		queueInvoiceLines(batch, lines)
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert line items for invoice %s: %w", m.InvoiceID, err)
		}
		return nil
	})
}

// UpdateInvoice locks the invoice row, applies mutate and writes header, posting fields and line items.
func (r *PgxInvoiceRepository) UpdateInvoice(ctx context.Context, invoiceID string, mutate func(*domain.Invoice) error) (*domain.Invoice, error) {
	var updated *domain.Invoice
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		current, err := findInvoice(ctx, tx, invoiceID, true)
		if err != nil {
			return err
		}
		if err := mutate(current); err != nil {
			return err
		}

		m, lines := mapping.ToModelInvoice(*current)
		_, err = tx.Exec(ctx, `
			UPDATE invoices
			SET invoice_number = $2, issue_date = $3, booking_ref = $4, stated_minor = $5, posted_at = $6,
			    last_updated_at = $7, last_updated_by = $8
			WHERE invoice_id = $1;`,
			m.InvoiceID, m.InvoiceNumber, m.IssueDate, m.BookingRef, m.StatedMinor, m.PostedAt,
			m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("invoice number %v: %w", m.InvoiceNumber, apperrors.ErrDuplicate)
			}
			return fmt.Errorf("failed to update invoice %s: %w", invoiceID, err)
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM invoice_line_items WHERE invoice_id = $1;`, invoiceID)
		queueInvoiceLines(batch, lines)
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to replace line items for invoice %s: %w", invoiceID, err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDraftInvoice removes an unposted invoice; its line items cascade.
func (r *PgxInvoiceRepository) DeleteDraftInvoice(ctx context.Context, invoiceID string) error {
	if !isValidID(invoiceID) {
		return apperrors.ErrNotFound
	}
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var postedAt *time.Time
		err := tx.QueryRow(ctx, `SELECT posted_at FROM invoices WHERE invoice_id = $1 FOR UPDATE;`, invoiceID).Scan(&postedAt)
		if err != nil {
			return notFoundOr(err, "failed to lock invoice "+invoiceID)
		}
		if postedAt != nil {
			return apperrors.ErrAlreadyPosted
		}
		if _, err := tx.Exec(ctx, `DELETE FROM invoices WHERE invoice_id = $1;`, invoiceID); err != nil {
			return fmt.Errorf("failed to delete invoice %s: %w", invoiceID, err)
		}
		return nil
	})
}
