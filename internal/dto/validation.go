package dto

import (
	"time"

	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

// RegisterValidators adds the custom binding tags used by the request DTOs.
//   - currency: an ISO 4217 code known to golang.org/x/text
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		_, err := domain.MinorUnitScale(fl.Field().String())
		return err == nil
	})
}

// parseDate reads an optional YYYY-MM-DD value; empty means "not set".
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, value, time.UTC)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}

func dateRange(from, to string) (domain.DateRange, error) {
	var (
		r   domain.DateRange
		err error
	)
	if r.From, err = parseDate(from); err != nil {
		return r, err
	}
	r.To, err = parseDate(to)
	return r, err
}
