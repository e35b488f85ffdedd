package domain

import "time"

// PaymentMethod is how a collection was received.
type PaymentMethod string

const (
	PaymentCash           PaymentMethod = "Cash"
	PaymentCheck          PaymentMethod = "Check"
	PaymentBankTransfer   PaymentMethod = "Bank Transfer"
	PaymentOnlineTransfer PaymentMethod = "Online Transfer"
	PaymentCreditCard     PaymentMethod = "Credit Card"
	PaymentOther          PaymentMethod = "Other"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCheck, PaymentBankTransfer, PaymentOnlineTransfer,
		PaymentCreditCard, PaymentOther:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

// CollectionStatus is the derived application state of a collection.
type CollectionStatus string

const (
	CollectionUnapplied        CollectionStatus = "Unapplied"
	CollectionPartiallyApplied CollectionStatus = "Partially Applied"
	CollectionFullyApplied     CollectionStatus = "Fully Applied"
)

// IsValid checks if the status is a known CollectionStatus
func (s CollectionStatus) IsValid() bool {
	switch s {
	case CollectionUnapplied, CollectionPartiallyApplied, CollectionFullyApplied:
		return true
	}
	return false
}

func (s CollectionStatus) String() string {
	return string(s)
}

// Collection is an amount received from a client, to be applied against invoices.
type Collection struct {
	CollectionID    string        `json:"collectionID"`
	ReceiptNumber   string        `json:"receiptNumber"`
	CollectionDate  time.Time     `json:"collectionDate"`
	ClientRef       string        `json:"clientRef"`
	CompanyRef      string        `json:"companyRef"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	ReferenceNumber *string       `json:"referenceNumber,omitempty"`
	AmountReceived  Money         `json:"amountReceived"` // Immutable once created
	Applied         Money         `json:"applied"`        // Sum of allocations; written only by the allocation engine
	AuditFields
}

// Currency is the currency of the amount received.
func (c Collection) Currency() string {
	return c.AmountReceived.Currency
}

// AppliedAmount returns Applied, defaulting to zero in the collection currency.
func (c Collection) AppliedAmount() Money {
	if c.Applied.Currency == "" {
		return Zero(c.Currency())
	}
	return c.Applied
}

// UnappliedBalance is the part of the amount received not yet allocated.
func (c Collection) UnappliedBalance() Money {
	balance, _ := c.AmountReceived.Subtract(c.AppliedAmount())
	return balance
}

// Status derives the collection status from its stored amounts.
func (c Collection) Status() CollectionStatus {
	return DeriveCollectionStatus(c.AppliedAmount(), c.AmountReceived)
}

// DeriveCollectionStatus is the single rule mapping amounts to a collection status.
func DeriveCollectionStatus(applied, received Money) CollectionStatus {
	if applied.IsZero() {
		return CollectionUnapplied
	}
	if cmp, err := applied.Compare(received); err == nil && cmp < 0 {
		return CollectionPartiallyApplied
	}
	return CollectionFullyApplied
}

// CollectionFilter narrows collection list queries. Empty fields are ignored.
type CollectionFilter struct {
	ClientRef       string
	CompanyRef      string
	Status          CollectionStatus
	CollectionDates DateRange
	Limit           int
	NextToken       *string
}
