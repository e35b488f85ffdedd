package pgsql

import (
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		InvoiceRepo:    newPgxInvoiceRepository(dbPool),
		CollectionRepo: newPgxCollectionRepository(dbPool),
		AllocationRepo: newPgxAllocationRepository(dbPool),
		ExpenseRepo:    newPgxExpenseRepository(dbPool),
		CategoryRepo:   newPgxCategoryRepository(dbPool),
		SequenceRepo:   newPgxSequenceRepository(dbPool),
	}
}
