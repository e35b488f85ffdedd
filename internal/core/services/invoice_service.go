package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

type invoiceService struct {
	BaseService
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	numberer    portssvc.DocumentNumberer
}

// NewInvoiceService creates the invoice ledger.
func NewInvoiceService(repo portsrepo.InvoiceRepositoryFacade, numberer portssvc.DocumentNumberer, options ...ServiceOption) portssvc.InvoiceSvcFacade {
	return &invoiceService{
		BaseService: newBaseService(options),
		invoiceRepo: repo,
		numberer:    numberer,
	}
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

func (s *invoiceService) CreateDraft(ctx context.Context, input portssvc.NewInvoiceInput, userID string) (*domain.Invoice, error) {
	if err := requireRef("userID", userID); err != nil {
		return nil, err
	}
	if err := requireRef("clientRef", input.ClientRef); err != nil {
		return nil, err
	}
	if err := requireRef("companyRef", input.CompanyRef); err != nil {
		return nil, err
	}
	currency, err := s.currencyOrDefault(input.Currency)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateInvoiceLines(currency, input.LineItems); err != nil {
		return nil, err
	}

	now := s.Now()
	issueDate := input.IssueDate
	if issueDate.IsZero() {
		issueDate = now.Truncate(24 * time.Hour)
	}

	invoice := domain.Invoice{
		InvoiceID:   uuid.NewString(),
		IssueDate:   issueDate,
		ClientRef:   input.ClientRef,
		CompanyRef:  input.CompanyRef,
		BookingRef:  input.BookingRef,
		Currency:    currency,
		LineItems:   append([]domain.InvoiceLineItem(nil), input.LineItems...),
		Collected:   domain.Zero(currency),
		AuditFields: domain.NewAuditFields(userID, now),
	}

	if err := s.invoiceRepo.SaveInvoice(ctx, invoice); err != nil {
		s.LogError(ctx, err, "Failed to save draft invoice",
			slog.String("invoice_id", invoice.InvoiceID))
		return nil, err
	}

	s.LogInfo(ctx, "Draft invoice created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("client_ref", invoice.ClientRef),
		slog.String("stated", invoice.StatedAmount().String()))
	return &invoice, nil
}

func (s *invoiceService) UpdateDraftLines(ctx context.Context, invoiceID string, lines []domain.InvoiceLineItem, userID string) (*domain.Invoice, error) {
	if err := requireRef("userID", userID); err != nil {
		return nil, err
	}
	updated, err := s.invoiceRepo.UpdateInvoice(ctx, invoiceID, func(inv *domain.Invoice) error {
		if inv.IsPosted() {
			return apperrors.ErrAlreadyPosted
		}
		if err := domain.ValidateInvoiceLines(inv.Currency, lines); err != nil {
			return err
		}
		inv.LineItems = append([]domain.InvoiceLineItem(nil), lines...)
		inv.Touch(userID, s.Now())
		return nil
	})
	if err != nil {
		err = notFoundAs(err, apperrors.ErrUnknownInvoice)
		s.logUnexpected(ctx, err, "Failed to update draft invoice lines", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	return updated, nil
}

// Post moves a Draft invoice to Posted. The number is drawn while the row is locked,
// so two concurrent posts of one invoice cannot both succeed.
func (s *invoiceService) Post(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error) {
	if err := requireRef("userID", userID); err != nil {
		return nil, err
	}
	posted, err := s.invoiceRepo.UpdateInvoice(ctx, invoiceID, func(inv *domain.Invoice) error {
		if inv.IsPosted() {
			return apperrors.ErrAlreadyPosted
		}
		if err := domain.ValidateInvoiceLines(inv.Currency, inv.LineItems); err != nil {
			return err
		}
		number, err := s.numberer.NextNumber(ctx, domain.SeriesInvoice, inv.IssueDate)
		if err != nil {
			return err
		}
		now := s.Now()
		inv.InvoiceNumber = number
		inv.PostedAt = &now
		inv.Touch(userID, now)
		return nil
	})
	if err != nil {
		err = notFoundAs(err, apperrors.ErrUnknownInvoice)
		s.logUnexpected(ctx, err, "Failed to post invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}

	s.LogInfo(ctx, "Invoice posted",
		slog.String("invoice_id", posted.InvoiceID),
		slog.String("invoice_number", posted.InvoiceNumber))
	return posted, nil
}

func (s *invoiceService) DiscardDraft(ctx context.Context, invoiceID string, userID string) error {
	if err := requireRef("userID", userID); err != nil {
		return err
	}
	if err := s.invoiceRepo.DeleteDraftInvoice(ctx, invoiceID); err != nil {
		err = notFoundAs(err, apperrors.ErrUnknownInvoice)
		s.logUnexpected(ctx, err, "Failed to discard draft invoice", slog.String("invoice_id", invoiceID))
		return err
	}
	s.LogInfo(ctx, "Draft invoice discarded",
		slog.String("invoice_id", invoiceID),
		slog.String("user_id", userID))
	return nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		err = notFoundAs(err, apperrors.ErrUnknownInvoice)
		s.logUnexpected(ctx, err, "Failed to find invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, *string, error) {
	invoices, next, err := s.invoiceRepo.ListInvoices(ctx, filter)
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to list invoices")
		return nil, nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	return invoices, next, nil
}
