package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/SscSPs/neuron_ledger/internal/core/domain"
	"github.com/SscSPs/neuron_ledger/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	clock           func() time.Time
	defaultCurrency string
}

// ServiceOption is a functional option shared by every service constructor
type ServiceOption func(*BaseService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.clock = clock
	}
}

// WithDefaultCurrency sets the currency used when an input leaves it empty.
func WithDefaultCurrency(code string) ServiceOption {
	return func(s *BaseService) {
		s.defaultCurrency = strings.ToUpper(code)
	}
}

func newBaseService(options []ServiceOption) BaseService {
	base := BaseService{defaultCurrency: domain.DefaultCurrency}
	for _, option := range options {
		option(&base)
	}
	return base
}

// Now returns the current time in UTC.
func (s *BaseService) Now() time.Time {
	if s.clock != nil {
		return s.clock().UTC()
	}
	return time.Now().UTC()
}

// currencyOrDefault validates code, falling back to the configured default when empty.
func (s *BaseService) currencyOrDefault(code string) (string, error) {
	if code == "" {
		code = s.defaultCurrency
		if code == "" {
			code = domain.DefaultCurrency
		}
	}
	code = strings.ToUpper(code)
	if _, err := domain.MinorUnitScale(code); err != nil {
		return "", err
	}
	return code, nil
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// logUnexpected logs err unless it is a classified business error the caller will report.
func (s *BaseService) logUnexpected(ctx context.Context, err error, msg string, keyvals ...any) {
	if apperrors.KindOf(err) == apperrors.ErrInternal {
		s.LogError(ctx, err, msg, keyvals...)
	}
}

// requireRef rejects an empty identity or reference field.
func requireRef(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s: %w", field, apperrors.ErrMissingReference)
	}
	return nil
}

// notFoundAs turns a bare repository ErrNotFound into the named error for the entity.
func notFoundAs(err error, named *apperrors.AppError) error {
	if errors.Is(err, apperrors.ErrNotFound) && apperrors.CodeOf(err) == "" {
		return named
	}
	return err
}
