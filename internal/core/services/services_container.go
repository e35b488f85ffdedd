package services

import (
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/SscSPs/neuron_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...ServiceOption) *portssvc.ServiceContainer {
	if cfg != nil && cfg.DefaultCurrency != "" {
		options = append([]ServiceOption{WithDefaultCurrency(cfg.DefaultCurrency)}, options...)
	}

	numberer := NewDocumentNumberer(repos.SequenceRepo, options...)

	return &portssvc.ServiceContainer{
		Invoice:    NewInvoiceService(repos.InvoiceRepo, numberer, options...),
		Collection: NewCollectionService(repos.CollectionRepo, numberer, options...),
		Allocation: NewAllocationService(repos.AllocationRepo, repos.InvoiceRepo, repos.CollectionRepo, options...),
		Expense:    NewExpenseService(repos.ExpenseRepo, repos.CategoryRepo, numberer, options...),
		Category:   NewCategoryService(repos.CategoryRepo, options...),
		Audit:      NewAuditService(repos.InvoiceRepo, repos.CollectionRepo, repos.AllocationRepo, options...),
	}
}
