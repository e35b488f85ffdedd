package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/neuron_ledger/internal/models"
	"github.com/SscSPs/neuron_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `category_id, name, default_expense_type, default_company_ref,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxCategoryRepository struct {
	BaseRepository
}

func newPgxCategoryRepository(pool *pgxpool.Pool) portsrepo.CategoryRepositoryFacade {
	return &PgxCategoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

func scanCategory(row pgx.Row) (models.ExpenseCategory, error) {
	var m models.ExpenseCategory
	err := row.Scan(
		&m.CategoryID,
		&m.Name,
		&m.DefaultExpenseType,
		&m.DefaultCompanyRef,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindCategoryByID retrieves an expense category by its ID.
func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.ExpenseCategory, error) {
	m, err := scanCategory(r.Pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM expense_categories WHERE category_id = $1;`, categoryID))
	if err != nil {
		return nil, notFoundOr(err, "failed to find category "+categoryID)
	}
	d := mapping.ToDomainCategory(m)
	return &d, nil
}

// ListCategories retrieves all categories ordered by name.
func (r *PgxCategoryRepository) ListCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+categoryColumns+` FROM expense_categories ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.ExpenseCategory{}
	for rows.Next() {
		m, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, mapping.ToDomainCategory(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

// SaveCategory persists a new category.
func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.ExpenseCategory) error {
	m := mapping.ToModelCategory(category)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO expense_categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		m.CategoryID, m.Name, m.DefaultExpenseType, m.DefaultCompanyRef,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", m.Name, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert category %s: %w", m.CategoryID, err)
	}
	return nil
}

// UpdateCategory overwrites the name and defaults of a category.
func (r *PgxCategoryRepository) UpdateCategory(ctx context.Context, category domain.ExpenseCategory) error {
	m := mapping.ToModelCategory(category)
	tag, err := r.Pool.Exec(ctx, `
		UPDATE expense_categories
		SET name = $2, default_expense_type = $3, default_company_ref = $4,
		    last_updated_at = $5, last_updated_by = $6
		WHERE category_id = $1;`,
		m.CategoryID, m.Name, m.DefaultExpenseType, m.DefaultCompanyRef,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", m.Name, apperrors.ErrDuplicate)
		}
		return notFoundOr(err, "failed to update category "+m.CategoryID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category. Expenses that reference it keep their copied values.
func (r *PgxCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM expense_categories WHERE category_id = $1;`, categoryID)
	if err != nil {
		return notFoundOr(err, "failed to delete category "+categoryID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
