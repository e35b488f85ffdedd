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

const collectionColumns = `collection_id, receipt_number, collection_date, client_ref, company_ref,
	payment_method, reference_number, currency_code, received_minor, applied_minor,
	created_at, created_by, last_updated_at, last_updated_by`

var collectionStatusConditions = map[domain.CollectionStatus]string{
	domain.CollectionUnapplied:        "applied_minor = 0",
	domain.CollectionPartiallyApplied: "applied_minor > 0 AND applied_minor < received_minor",
	domain.CollectionFullyApplied:     "applied_minor = received_minor",
}

type PgxCollectionRepository struct {
	BaseRepository
}

func newPgxCollectionRepository(pool *pgxpool.Pool) portsrepo.CollectionRepositoryFacade {
	return &PgxCollectionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CollectionRepositoryFacade = (*PgxCollectionRepository)(nil)

func scanCollection(row pgx.Row) (models.Collection, error) {
	var m models.Collection
	err := row.Scan(
		&m.CollectionID,
		&m.ReceiptNumber,
		&m.CollectionDate,
		&m.ClientRef,
		&m.CompanyRef,
		&m.PaymentMethod,
		&m.ReferenceNumber,
		&m.CurrencyCode,
		&m.ReceivedMinor,
		&m.AppliedMinor,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func queryCollections(ctx context.Context, q querier, sql string, args ...any) ([]domain.Collection, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	collections := []domain.Collection{}
	for rows.Next() {
		m, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		collections = append(collections, mapping.ToDomainCollection(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection rows: %w", err)
	}
	return collections, nil
}

func findCollection(ctx context.Context, q querier, collectionID string, forUpdate bool) (*domain.Collection, error) {
	if !isValidID(collectionID) {
		return nil, apperrors.ErrNotFound
	}
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE collection_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanCollection(q.QueryRow(ctx, query, collectionID))
	if err != nil {
		return nil, notFoundOr(err, "failed to find collection "+collectionID)
	}
	d := mapping.ToDomainCollection(m)
	return &d, nil
}

// FindCollectionByID retrieves a collection by id.
func (r *PgxCollectionRepository) FindCollectionByID(ctx context.Context, collectionID string) (*domain.Collection, error) {
	return findCollection(ctx, r.Pool, collectionID, false)
}

// ListCollections retrieves a page of collections ordered by collection date, newest first.
func (r *PgxCollectionRepository) ListCollections(ctx context.Context, filter domain.CollectionFilter) ([]domain.Collection, *string, error) {
	limit := pagination.NormalizeLimit(filter.Limit)

	var w whereBuilder
	if filter.ClientRef != "" {
		w.add("client_ref = ?", filter.ClientRef)
	}
	if filter.CompanyRef != "" {
		w.add("company_ref = ?", filter.CompanyRef)
	}
	if !filter.CollectionDates.From.IsZero() {
		w.add("collection_date >= ?", filter.CollectionDates.From)
	}
	if !filter.CollectionDates.To.IsZero() {
		w.add("collection_date <= ?", filter.CollectionDates.To)
	}
	if filter.Status != "" {
		cond, ok := collectionStatusConditions[filter.Status]
		if !ok {
			return nil, nil, fmt.Errorf("%w: collection status %q", apperrors.ErrInvalidEnum, filter.Status)
		}
		w.add(cond)
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursor, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil || !isValidID(cursor.ID) {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		w.add("(collection_date, created_at, collection_id) < (?, ?, ?)", cursor.Date, cursor.CreatedAt, cursor.ID)
	}

	query := `SELECT ` + collectionColumns + ` FROM collections ` + w.clause() +
		` ORDER BY collection_date DESC, created_at DESC, collection_id DESC ` + w.limit(limit+1) + `;`

	collections, err := queryCollections(ctx, r.Pool, query, w.args...)
	if err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(collections) > limit {
		collections = collections[:limit]
		last := collections[limit-1]
		token := pagination.EncodeToken(last.CollectionDate, last.CreatedAt, last.CollectionID)
		nextToken = &token
	}
	return collections, nextToken, nil
}

// ListAllCollections retrieves every collection.
func (r *PgxCollectionRepository) ListAllCollections(ctx context.Context) ([]domain.Collection, error) {
	return queryCollections(ctx, r.Pool, `SELECT `+collectionColumns+` FROM collections ORDER BY collection_id;`)
}

// SaveCollection persists a new collection.
func (r *PgxCollectionRepository) SaveCollection(ctx context.Context, collection domain.Collection) error {
	m := mapping.ToModelCollection(collection)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO collections (`+collectionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`,
		m.CollectionID, m.ReceiptNumber, m.CollectionDate, m.ClientRef, m.CompanyRef,
		m.PaymentMethod, m.ReferenceNumber, m.CurrencyCode, m.ReceivedMinor, m.AppliedMinor,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("collection %s: %w", m.CollectionID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert collection %s: %w", m.CollectionID, err)
	}
	return nil
}

// DeleteCollection locks the collection and removes it when no allocation references it.
func (r *PgxCollectionRepository) DeleteCollection(ctx context.Context, collectionID string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := findCollection(ctx, tx, collectionID, true); err != nil {
			return err
		}
		var hasAllocations bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM payment_allocations WHERE collection_id = $1);`, collectionID,
		).Scan(&hasAllocations)
		if err != nil {
			return fmt.Errorf("failed to check allocations of collection %s: %w", collectionID, err)
		}
		if hasAllocations {
			return apperrors.ErrHasAllocations
		}
		if _, err := tx.Exec(ctx, `DELETE FROM collections WHERE collection_id = $1;`, collectionID); err != nil {
			return fmt.Errorf("failed to delete collection %s: %w", collectionID, err)
		}
		return nil
	})
}
