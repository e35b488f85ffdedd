package pgsql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/neuron_ledger/internal/models"
	"github.com/SscSPs/neuron_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const allocationColumns = `allocation_id, collection_id, invoice_id, currency_code, amount_minor,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAllocationRepository struct {
	BaseRepository
}

func newPgxAllocationRepository(pool *pgxpool.Pool) portsrepo.AllocationRepositoryFacade {
	return &PgxAllocationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AllocationRepositoryFacade = (*PgxAllocationRepository)(nil)

func scanAllocation(row pgx.Row) (models.PaymentAllocation, error) {
	var m models.PaymentAllocation
	err := row.Scan(
		&m.AllocationID,
		&m.CollectionID,
		&m.InvoiceID,
		&m.CurrencyCode,
		&m.AmountMinor,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func queryAllocations(ctx context.Context, q querier, sql string, args ...any) ([]domain.PaymentAllocation, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var ms []models.PaymentAllocation
	for rows.Next() {
		m, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation rows: %w", err)
	}
	return mapping.ToDomainAllocationSlice(ms), nil
}

// ListAllocationsByCollection retrieves the committed allocations of a collection.
func (r *PgxAllocationRepository) ListAllocationsByCollection(ctx context.Context, collectionID string) ([]domain.PaymentAllocation, error) {
	if !isValidID(collectionID) {
		return nil, nil
	}
	return queryAllocations(ctx, r.Pool,
		`SELECT `+allocationColumns+` FROM payment_allocations WHERE collection_id = $1 ORDER BY invoice_id;`, collectionID)
}

// ListAllocationsByInvoice retrieves the committed allocations against an invoice.
func (r *PgxAllocationRepository) ListAllocationsByInvoice(ctx context.Context, invoiceID string) ([]domain.PaymentAllocation, error) {
	if !isValidID(invoiceID) {
		return nil, nil
	}
	return queryAllocations(ctx, r.Pool,
		`SELECT `+allocationColumns+` FROM payment_allocations WHERE invoice_id = $1 ORDER BY collection_id;`, invoiceID)
}

// ListAllAllocations retrieves every allocation.
func (r *PgxAllocationRepository) ListAllAllocations(ctx context.Context) ([]domain.PaymentAllocation, error) {
	return queryAllocations(ctx, r.Pool,
		`SELECT `+allocationColumns+` FROM payment_allocations ORDER BY collection_id, invoice_id;`)
}

// RunInLedgerTx runs fn in one read-committed transaction. Row locks taken through
// the LedgerTx serialize concurrent engine calls on the same collection or invoice.
func (r *PgxAllocationRepository) RunInLedgerTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, &pgxLedgerTx{tx: tx})
	})
}

// pgxLedgerTx is the LedgerTx view over one pgx transaction.
type pgxLedgerTx struct {
	tx pgx.Tx
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

func (t *pgxLedgerTx) LockCollection(ctx context.Context, collectionID string) (*domain.Collection, error) {
	return findCollection(ctx, t.tx, collectionID, true)
}

// LockInvoices locks rows in ascending id order so two engine calls sharing invoices cannot deadlock.
func (t *pgxLedgerTx) LockInvoices(ctx context.Context, invoiceIDs []string) (map[string]domain.Invoice, error) {
	ids := make([]string, 0, len(invoiceIDs))
	for _, id := range invoiceIDs {
		if isValidID(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[string]domain.Invoice{}, nil
	}
	sort.Strings(ids)

	invoices, err := queryInvoices(ctx, t.tx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id = ANY($1) ORDER BY invoice_id FOR UPDATE;`, ids)
	if err != nil {
		return nil, err
	}
	locked := make(map[string]domain.Invoice, len(invoices))
	for _, inv := range invoices {
		locked[inv.InvoiceID] = inv
	}
	return locked, nil
}

func (t *pgxLedgerTx) FindAllocation(ctx context.Context, collectionID, invoiceID string) (*domain.PaymentAllocation, error) {
	if !isValidID(collectionID) || !isValidID(invoiceID) {
		return nil, apperrors.ErrNotFound
	}
	m, err := scanAllocation(t.tx.QueryRow(ctx,
		`SELECT `+allocationColumns+` FROM payment_allocations WHERE collection_id = $1 AND invoice_id = $2;`,
		collectionID, invoiceID))
	if err != nil {
		return nil, notFoundOr(err, "failed to find allocation")
	}
	d := mapping.ToDomainAllocation(m)
	return &d, nil
}

// UpsertAllocation replaces the amount of an existing pair rather than stacking a second row.
func (t *pgxLedgerTx) UpsertAllocation(ctx context.Context, allocation domain.PaymentAllocation) error {
	m := mapping.ToModelAllocation(allocation)
	_, err := t.tx.Exec(ctx, `
		INSERT INTO payment_allocations (`+allocationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (collection_id, invoice_id) DO UPDATE
		SET amount_minor = EXCLUDED.amount_minor,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;`,
		m.AllocationID, m.CollectionID, m.InvoiceID, m.CurrencyCode, m.AmountMinor,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert allocation %s/%s: %w", m.CollectionID, m.InvoiceID, err)
	}
	return nil
}

func (t *pgxLedgerTx) DeleteAllocation(ctx context.Context, collectionID, invoiceID string) error {
	if !isValidID(collectionID) || !isValidID(invoiceID) {
		return apperrors.ErrNotFound
	}
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM payment_allocations WHERE collection_id = $1 AND invoice_id = $2;`, collectionID, invoiceID)
	if err != nil {
		return notFoundOr(err, fmt.Sprintf("failed to delete allocation %s/%s", collectionID, invoiceID))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *pgxLedgerTx) sum(ctx context.Context, column, id, currency string) (domain.Money, error) {
	var total int64
	err := t.tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_minor), 0)::BIGINT FROM payment_allocations WHERE `+column+` = $1;`, id,
	).Scan(&total)
	if err != nil {
		return domain.Money{}, fmt.Errorf("failed to sum allocations by %s: %w", column, err)
	}
	return domain.NewMoney(total, currency), nil
}

func (t *pgxLedgerTx) SumAllocationsByInvoice(ctx context.Context, invoiceID string, currency string) (domain.Money, error) {
	return t.sum(ctx, "invoice_id", invoiceID, currency)
}

func (t *pgxLedgerTx) SumAllocationsByCollection(ctx context.Context, collectionID string, currency string) (domain.Money, error) {
	return t.sum(ctx, "collection_id", collectionID, currency)
}

func (t *pgxLedgerTx) ListAllocationsByCollection(ctx context.Context, collectionID string) ([]domain.PaymentAllocation, error) {
	return queryAllocations(ctx, t.tx,
		`SELECT `+allocationColumns+` FROM payment_allocations WHERE collection_id = $1 ORDER BY invoice_id;`, collectionID)
}

func (t *pgxLedgerTx) SetInvoiceCollected(ctx context.Context, invoiceID string, collected domain.Money, userID string, now time.Time) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE invoices SET collected_minor = $2, last_updated_at = $3, last_updated_by = $4 WHERE invoice_id = $1;`,
		invoiceID, collected.Minor, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update collected amount of invoice %s: %w", invoiceID, err)
	}
	return nil
}

func (t *pgxLedgerTx) SetCollectionApplied(ctx context.Context, collectionID string, applied domain.Money, userID string, now time.Time) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE collections SET applied_minor = $2, last_updated_at = $3, last_updated_by = $4 WHERE collection_id = $1;`,
		collectionID, applied.Minor, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update applied amount of collection %s: %w", collectionID, err)
	}
	return nil
}
