package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Invoice    InvoiceSvcFacade
	Collection CollectionSvcFacade
	Allocation AllocationSvcFacade
	Expense    ExpenseSvcFacade
	Category   CategorySvcFacade
	Audit      LedgerAuditSvc
}
