//go:build integration

package pgsql

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/neuron_ledger/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const migrationsSource = "file://../../../../migrations"

// newTestPool starts a disposable PostgreSQL container, migrates it and returns a pool.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("neuron_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dsn, migrationsSource, database.MigrateUp))

	pool, err := database.NewPgxPool(ctx, dsn, true)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func php(minor int64) domain.Money { return domain.NewMoney(minor, "PHP") }

func seedPostedInvoice(t *testing.T, repos portsrepo.RepositoryProvider, client string, issued time.Time, amounts ...int64) domain.Invoice {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	inv := domain.Invoice{
		InvoiceID:   uuid.NewString(),
		IssueDate:   issued,
		ClientRef:   client,
		CompanyRef:  "company-1",
		Currency:    "PHP",
		AuditFields: domain.NewAuditFields("user-1", now),
	}
	for _, a := range amounts {
		inv.LineItems = append(inv.LineItems, domain.InvoiceLineItem{Description: "service", Amount: php(a)})
	}
	ctx := context.Background()
	require.NoError(t, repos.InvoiceRepo.SaveInvoice(ctx, inv))

	posted, err := repos.InvoiceRepo.UpdateInvoice(ctx, inv.InvoiceID, func(i *domain.Invoice) error {
		i.InvoiceNumber = "INV-" + inv.InvoiceID[:8]
		i.PostedAt = &now
		return nil
	})
	require.NoError(t, err)
	return *posted
}

func seedCollection(t *testing.T, repos portsrepo.RepositoryProvider, client string, received int64) domain.Collection {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	c := domain.Collection{
		CollectionID:   uuid.NewString(),
		ReceiptNumber:  "OR-" + uuid.NewString()[:8],
		CollectionDate: now.Truncate(24 * time.Hour),
		ClientRef:      client,
		CompanyRef:     "company-1",
		PaymentMethod:  domain.PaymentCash,
		AmountReceived: php(received),
		Applied:        php(0),
		AuditFields:    domain.NewAuditFields("user-1", now),
	}
	require.NoError(t, repos.CollectionRepo.SaveCollection(context.Background(), c))
	return c
}

func TestPgxRepositories(t *testing.T) {
	pool := newTestPool(t)
	repos := NewRepositoryProvider(pool)
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("invoice round trip and draft delete", func(t *testing.T) {
		inv := seedPostedInvoice(t, repos, "client-a", day, 100000, 25000)

		found, err := repos.InvoiceRepo.FindInvoiceByID(ctx, inv.InvoiceID)
		require.NoError(t, err)
		assert.Equal(t, php(125000), found.StatedAmount())
		assert.Equal(t, domain.InvoicePosted, found.Status())
		assert.Len(t, found.LineItems, 2)

		err = repos.InvoiceRepo.DeleteDraftInvoice(ctx, inv.InvoiceID)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyPosted)

		_, err = repos.InvoiceRepo.FindInvoiceByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("ledger tx writes commit together", func(t *testing.T) {
		inv := seedPostedInvoice(t, repos, "client-b", day, 50000)
		col := seedCollection(t, repos, "client-b", 80000)
		now := time.Now().UTC()

		err := repos.AllocationRepo.RunInLedgerTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			_, err := tx.LockCollection(ctx, col.CollectionID)
			require.NoError(t, err)
			locked, err := tx.LockInvoices(ctx, []string{inv.InvoiceID})
			require.NoError(t, err)
			require.Contains(t, locked, inv.InvoiceID)

			require.NoError(t, tx.UpsertAllocation(ctx, domain.PaymentAllocation{
				AllocationID:  uuid.NewString(),
				CollectionID:  col.CollectionID,
				InvoiceID:     inv.InvoiceID,
				AmountApplied: php(30000),
				AuditFields:   domain.NewAuditFields("user-1", now),
			}))
			collected, err := tx.SumAllocationsByInvoice(ctx, inv.InvoiceID, "PHP")
			require.NoError(t, err)
			assert.Equal(t, php(30000), collected)
			require.NoError(t, tx.SetInvoiceCollected(ctx, inv.InvoiceID, collected, "user-1", now))
			return tx.SetCollectionApplied(ctx, col.CollectionID, collected, "user-1", now)
		})
		require.NoError(t, err)

		found, err := repos.InvoiceRepo.FindInvoiceByID(ctx, inv.InvoiceID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoicePartial, found.Status())

		err = repos.CollectionRepo.DeleteCollection(ctx, col.CollectionID)
		assert.ErrorIs(t, err, apperrors.ErrHasAllocations)

		allocs, err := repos.AllocationRepo.ListAllocationsByInvoice(ctx, inv.InvoiceID)
		require.NoError(t, err)
		require.Len(t, allocs, 1)
		assert.Equal(t, php(30000), allocs[0].AmountApplied)
	})

	t.Run("ledger tx rolls back on error", func(t *testing.T) {
		inv := seedPostedInvoice(t, repos, "client-c", day, 50000)
		col := seedCollection(t, repos, "client-c", 50000)
		now := time.Now().UTC()

		err := repos.AllocationRepo.RunInLedgerTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			require.NoError(t, tx.UpsertAllocation(ctx, domain.PaymentAllocation{
				AllocationID:  uuid.NewString(),
				CollectionID:  col.CollectionID,
				InvoiceID:     inv.InvoiceID,
				AmountApplied: php(10000),
				AuditFields:   domain.NewAuditFields("user-1", now),
			}))
			return apperrors.ErrInvariantViolation
		})
		assert.ErrorIs(t, err, apperrors.ErrInvariantViolation)

		allocs, err := repos.AllocationRepo.ListAllocationsByCollection(ctx, col.CollectionID)
		require.NoError(t, err)
		assert.Empty(t, allocs)
		assert.NoError(t, repos.CollectionRepo.DeleteCollection(ctx, col.CollectionID))
	})

	t.Run("sequence values are unique under concurrency", func(t *testing.T) {
		const callers = 20
		var wg sync.WaitGroup
		values := make(chan int64, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := repos.SequenceRepo.NextSequenceValue(ctx, "INV", "202503")
				assert.NoError(t, err)
				values <- v
			}()
		}
		wg.Wait()
		close(values)

		seen := map[int64]bool{}
		for v := range values {
			assert.False(t, seen[v], "duplicate sequence value %d", v)
			seen[v] = true
		}
		assert.Len(t, seen, callers)
	})

	t.Run("category names are unique", func(t *testing.T) {
		now := time.Now().UTC()
		cat := domain.ExpenseCategory{
			CategoryID:         uuid.NewString(),
			Name:               "Fuel",
			DefaultExpenseType: domain.ExpenseOperations,
			AuditFields:        domain.NewAuditFields("user-1", now),
		}
		require.NoError(t, repos.CategoryRepo.SaveCategory(ctx, cat))

		dup := cat
		dup.CategoryID = uuid.NewString()
		assert.ErrorIs(t, repos.CategoryRepo.SaveCategory(ctx, dup), apperrors.ErrDuplicate)

		require.NoError(t, repos.CategoryRepo.DeleteCategory(ctx, cat.CategoryID))
		assert.ErrorIs(t, repos.CategoryRepo.DeleteCategory(ctx, cat.CategoryID), apperrors.ErrNotFound)
	})

	t.Run("malformed ids read as not found", func(t *testing.T) {
		const badID = "not-a-uuid"

		_, err := repos.InvoiceRepo.FindInvoiceByID(ctx, badID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		_, err = repos.CollectionRepo.FindCollectionByID(ctx, badID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		_, err = repos.ExpenseRepo.FindExpenseByID(ctx, badID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		_, err = repos.CategoryRepo.FindCategoryByID(ctx, badID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.ErrorIs(t, repos.CategoryRepo.DeleteCategory(ctx, badID), apperrors.ErrNotFound)
		assert.ErrorIs(t, repos.InvoiceRepo.DeleteDraftInvoice(ctx, badID), apperrors.ErrNotFound)

		allocations, err := repos.AllocationRepo.ListAllocationsByCollection(ctx, badID)
		require.NoError(t, err)
		assert.Empty(t, allocations)

		expenses, _, err := repos.ExpenseRepo.ListExpenses(ctx, domain.ExpenseFilter{CategoryID: badID})
		require.NoError(t, err)
		assert.Empty(t, expenses)

		inv := seedPostedInvoice(t, repos, "client-e", day, 10000)
		err = repos.AllocationRepo.RunInLedgerTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			locked, err := tx.LockInvoices(ctx, []string{badID, inv.InvoiceID})
			require.NoError(t, err)
			assert.Len(t, locked, 1)
			assert.Contains(t, locked, inv.InvoiceID)

			_, err = tx.LockCollection(ctx, badID)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
			_, err = tx.FindAllocation(ctx, badID, inv.InvoiceID)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
			return nil
		})
		require.NoError(t, err)
	})
}
