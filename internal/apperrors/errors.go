package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrState indicates that an operation is not valid for the current lifecycle state of a record.
var ErrState = errors.New("invalid state for operation")

// ErrInternal indicates an unexpected failure, typically in the storage layer.
var ErrInternal = errors.New("internal error")

// AppError is a named business error. It matches both itself and its Kind
// under errors.Is, so callers may test for the specific condition
// (ErrAlreadyPosted) or the whole class (ErrState).
type AppError struct {
	Kind    error  `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// NewAppError creates a new AppError of the given kind.
func NewAppError(kind error, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is reports whether target is this error's kind or another AppError with the same code.
func (e *AppError) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	var other *AppError
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap returns a copy of e carrying cause, so the original storage error stays inspectable.
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.Err = cause
	return &cp
}

// Validation errors: always the caller's fault, rejected before any mutation.
var (
	ErrEmptyLineItems    = NewAppError(ErrValidation, "EMPTY_LINE_ITEMS", "at least one line item with a positive amount is required")
	ErrNonPositiveAmount = NewAppError(ErrValidation, "NON_POSITIVE_AMOUNT", "amount must be greater than zero")
	ErrCurrencyMismatch  = NewAppError(ErrValidation, "CURRENCY_MISMATCH", "currencies do not match")
	ErrNegativeAmount    = NewAppError(ErrValidation, "NEGATIVE_AMOUNT", "amount would fall below zero")
	ErrInvalidCurrency   = NewAppError(ErrValidation, "INVALID_CURRENCY", "currency code is not a valid ISO 4217 code")
	ErrAmountPrecision   = NewAppError(ErrValidation, "AMOUNT_PRECISION", "amount has more decimal places than the currency allows")
	ErrAmountOutOfRange  = NewAppError(ErrValidation, "AMOUNT_OUT_OF_RANGE", "amount is outside the supported range")
	ErrDuplicateTarget   = NewAppError(ErrValidation, "DUPLICATE_TARGET", "an invoice may appear only once per allocation request")
	ErrClientMismatch    = NewAppError(ErrValidation, "CLIENT_MISMATCH", "invoice and collection belong to different clients")
	ErrMissingReference  = NewAppError(ErrValidation, "MISSING_REFERENCE", "a required reference is missing")
	ErrInvalidEnum       = NewAppError(ErrValidation, "INVALID_VALUE", "value is not one of the allowed options")
)

// Not-found errors: a reference to a nonexistent id.
var (
	ErrUnknownInvoice   = NewAppError(ErrNotFound, "UNKNOWN_INVOICE", "invoice not found")
	ErrUnknownPayment   = NewAppError(ErrNotFound, "UNKNOWN_PAYMENT", "collection not found")
	ErrNoSuchAllocation = NewAppError(ErrNotFound, "NO_SUCH_ALLOCATION", "no allocation exists for this collection and invoice")
	ErrUnknownExpense   = NewAppError(ErrNotFound, "UNKNOWN_EXPENSE", "expense not found")
	ErrUnknownCategory  = NewAppError(ErrNotFound, "UNKNOWN_CATEGORY", "expense category not found")
)

// State errors: the operation is invalid for the record's current lifecycle state.
var (
	ErrAlreadyPosted         = NewAppError(ErrState, "ALREADY_POSTED", "invoice is no longer a draft")
	ErrInvoiceNotPosted      = NewAppError(ErrState, "INVOICE_NOT_POSTED", "draft invoices cannot receive allocations")
	ErrOutOfOrderApproval    = NewAppError(ErrState, "OUT_OF_ORDER_APPROVAL", "an earlier approval stage is still pending")
	ErrStageAlreadyCompleted = NewAppError(ErrState, "STAGE_ALREADY_COMPLETED", "approval stage is already completed")
	ErrAlreadyPaid           = NewAppError(ErrState, "ALREADY_PAID", "expense is already paid")
	ErrApprovalIncomplete    = NewAppError(ErrState, "APPROVAL_INCOMPLETE", "expense must be approved before it is paid")
	ErrAlreadySubmitted      = NewAppError(ErrState, "ALREADY_SUBMITTED", "expense is no longer a draft")
	ErrNotSubmitted          = NewAppError(ErrState, "NOT_SUBMITTED", "expense must be submitted before it is paid")
	ErrHasAllocations        = NewAppError(ErrState, "HAS_ALLOCATIONS", "collection still has allocations against invoices")
)

// ErrInvariantViolation is returned when a recomputed total falls outside its bounds.
// It aborts the surrounding transaction.
var ErrInvariantViolation = NewAppError(ErrInternal, "INVARIANT_VIOLATION", "ledger invariant violated")

// KindOf returns the kind sentinel for err, or ErrInternal when err is not classified.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrState, ErrDuplicate} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// CodeOf returns the AppError code carried by err, if any.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
