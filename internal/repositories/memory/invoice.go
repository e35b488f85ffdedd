package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
)

func (s *Store) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := cloneInvoice(inv)
	return &cp, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, *string, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, nil, fmt.Errorf("%w: invoice status %q", apperrors.ErrInvalidEnum, filter.Status)
	}

	s.mu.RLock()
	matched := make([]domain.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if filter.ClientRef != "" && inv.ClientRef != filter.ClientRef {
			continue
		}
		if filter.CompanyRef != "" && inv.CompanyRef != filter.CompanyRef {
			continue
		}
		if filter.Status != "" && inv.Status() != filter.Status {
			continue
		}
		if !filter.IssueDates.Contains(inv.IssueDate) {
			continue
		}
		matched = append(matched, cloneInvoice(inv))
	}
	s.mu.RUnlock()

	return paginate(matched, func(inv domain.Invoice) sortKey {
		return sortKey{date: inv.IssueDate, createdAt: inv.CreatedAt, id: inv.InvoiceID}
	}, filter.Limit, filter.NextToken)
}

// ListOpenInvoicesByClient returns Posted and Partial invoices oldest first.
func (s *Store) ListOpenInvoicesByClient(ctx context.Context, clientRef string, currency string) ([]domain.Invoice, error) {
	s.mu.RLock()
	var open []domain.Invoice
	for _, inv := range s.invoices {
		if inv.ClientRef == clientRef && inv.Currency == currency && inv.Status().IsOpen() {
			open = append(open, cloneInvoice(inv))
		}
	}
	s.mu.RUnlock()

	sort.Slice(open, func(i, j int) bool {
		if !open[i].IssueDate.Equal(open[j].IssueDate) {
			return open[i].IssueDate.Before(open[j].IssueDate)
		}
		return open[i].InvoiceNumber < open[j].InvoiceNumber
	})
	return open, nil
}

func (s *Store) ListAllInvoices(ctx context.Context) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		all = append(all, cloneInvoice(inv))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].InvoiceID < all[j].InvoiceID })
	return all, nil
}

func (s *Store) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[invoice.InvoiceID]; exists {
		return fmt.Errorf("invoice %s: %w", invoice.InvoiceID, apperrors.ErrDuplicate)
	}
	if invoice.Collected.Currency == "" {
		invoice.Collected = domain.Zero(invoice.Currency)
	}
	s.invoices[invoice.InvoiceID] = cloneInvoice(invoice)
	return nil
}

// UpdateInvoice writes everything mutate changed except Collected, which only the
// allocation engine maintains.
func (s *Store) UpdateInvoice(ctx context.Context, invoiceID string, mutate func(*domain.Invoice) error) (*domain.Invoice, error) {
	unlock := s.locks.lock(invoiceLockKey(invoiceID))
	defer unlock()

	current, err := s.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := mutate(current); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current.InvoiceNumber != "" {
		for id, other := range s.invoices {
			if id != invoiceID && other.InvoiceNumber == current.InvoiceNumber {
				return nil, fmt.Errorf("invoice number %s: %w", current.InvoiceNumber, apperrors.ErrDuplicate)
			}
		}
	}
	current.Collected = s.invoices[invoiceID].Collected
	s.invoices[invoiceID] = cloneInvoice(*current)

	updated := cloneInvoice(*current)
	return &updated, nil
}

func (s *Store) DeleteDraftInvoice(ctx context.Context, invoiceID string) error {
	unlock := s.locks.lock(invoiceLockKey(invoiceID))
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if inv.IsPosted() {
		return apperrors.ErrAlreadyPosted
	}
	delete(s.invoices, invoiceID)
	return nil
}
