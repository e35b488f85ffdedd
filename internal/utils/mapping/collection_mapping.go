package mapping

import (
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"github.com/SscSPs/neuron_ledger/internal/models"
)

// ToModelCollection converts a domain Collection to a model Collection
func ToModelCollection(d domain.Collection) models.Collection {
	return models.Collection{
		CollectionID:    d.CollectionID,
		ReceiptNumber:   d.ReceiptNumber,
		CollectionDate:  d.CollectionDate,
		ClientRef:       d.ClientRef,
		CompanyRef:      d.CompanyRef,
		PaymentMethod:   string(d.PaymentMethod),
		ReferenceNumber: d.ReferenceNumber,
		CurrencyCode:    d.Currency(),
		ReceivedMinor:   d.AmountReceived.Minor,
		AppliedMinor:    d.AppliedAmount().Minor,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCollection converts a model Collection to a domain Collection
func ToDomainCollection(m models.Collection) domain.Collection {
	return domain.Collection{
		CollectionID:    m.CollectionID,
		ReceiptNumber:   m.ReceiptNumber,
		CollectionDate:  m.CollectionDate,
		ClientRef:       m.ClientRef,
		CompanyRef:      m.CompanyRef,
		PaymentMethod:   domain.PaymentMethod(m.PaymentMethod),
		ReferenceNumber: m.ReferenceNumber,
		AmountReceived:  domain.NewMoney(m.ReceivedMinor, m.CurrencyCode),
		Applied:         domain.NewMoney(m.AppliedMinor, m.CurrencyCode),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAllocation converts a domain PaymentAllocation to a model PaymentAllocation
func ToModelAllocation(d domain.PaymentAllocation) models.PaymentAllocation {
	return models.PaymentAllocation{
		AllocationID: d.AllocationID,
		CollectionID: d.CollectionID,
		InvoiceID:    d.InvoiceID,
		CurrencyCode: d.AmountApplied.Currency,
		AmountMinor:  d.AmountApplied.Minor,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAllocation converts a model PaymentAllocation to a domain PaymentAllocation
func ToDomainAllocation(m models.PaymentAllocation) domain.PaymentAllocation {
	return domain.PaymentAllocation{
		AllocationID:  m.AllocationID,
		CollectionID:  m.CollectionID,
		InvoiceID:     m.InvoiceID,
		AmountApplied: domain.NewMoney(m.AmountMinor, m.CurrencyCode),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAllocationSlice converts a slice of model allocations to domain allocations
func ToDomainAllocationSlice(ms []models.PaymentAllocation) []domain.PaymentAllocation {
	if ms == nil {
		return []domain.PaymentAllocation{}
	}
	ds := make([]domain.PaymentAllocation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAllocation(m)
	}
	return ds
}
