package domain

// PaymentAllocation applies part of a collection to one invoice.
// There is at most one allocation per (collection, invoice) pair.
type PaymentAllocation struct {
	AllocationID  string `json:"allocationID"`
	CollectionID  string `json:"collectionID"`
	InvoiceID     string `json:"invoiceID"`
	AmountApplied Money  `json:"amountApplied"` // Always > 0
	AuditFields
}

// AllocationTarget is one requested (invoice, amount) pair in an allocate call.
type AllocationTarget struct {
	InvoiceID string
	Amount    Money
}

// PartialAllocationWarning reports a target that was applied for less than requested.
type PartialAllocationWarning struct {
	InvoiceID string `json:"invoiceID"`
	Requested Money  `json:"requested"`
	Applied   Money  `json:"applied"`
	Shortfall Money  `json:"shortfall"`
}

// AllocationResult is the committed state after an allocate, deallocate or auto-allocate call.
type AllocationResult struct {
	Collection  Collection                 `json:"collection"`
	Invoices    []Invoice                  `json:"invoices"`    // Every invoice touched by the call
	Allocations []PaymentAllocation        `json:"allocations"` // All allocations of the collection after commit
	Warnings    []PartialAllocationWarning `json:"warnings"`
}
