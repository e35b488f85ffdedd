package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	InvoiceRepo    InvoiceRepositoryFacade
	CollectionRepo CollectionRepositoryFacade
	AllocationRepo AllocationRepositoryFacade
	ExpenseRepo    ExpenseRepositoryFacade
	CategoryRepo   CategoryRepositoryFacade
	SequenceRepo   SequenceRepository
}
