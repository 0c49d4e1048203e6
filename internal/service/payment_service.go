package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/platform/payment"
	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/google/uuid"
)

// PaymentServiceError is a custom error type for payment service errors.
type PaymentServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for PaymentServiceError.
func (e *PaymentServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("payment service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PaymentServiceError) Unwrap() error {
	return e.Err
}

// NewPaymentServiceError creates a new PaymentServiceError.
func NewPaymentServiceError(operation, message string, err error) *PaymentServiceError {
	return &PaymentServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// StatusInvalidator drops cached payment status after a refresh.
// Satisfied by redcache.PaymentStatusCache.
type StatusInvalidator interface {
	Invalidate(ctx context.Context, identityID uuid.UUID)
}

// PaymentService refreshes an identity's payment status from the external
// verifier.
type PaymentService interface {
	// RefreshPaymentStatus calls the verifier and stores its answer.
	// Concurrent refreshes for one identity serialize on a row lock; the
	// last verifier result wins. When the verifier fails, a previously
	// active status is kept if it was verified within the policy window,
	// and the identity drops to unpaid otherwise.
	RefreshPaymentStatus(ctx context.Context, identityID uuid.UUID) (domain.PaymentStatus, error)
}

// paymentServiceImpl implements the PaymentService interface
type paymentServiceImpl struct {
	db           *sql.DB
	identities   store.IdentityStore
	verifier     payment.Verifier
	cache        StatusInvalidator
	policyWindow time.Duration
	now          func() time.Time // Injectable for testing
	logger       *slog.Logger
}

// NewPaymentService creates a new PaymentService. cache may be nil when
// caching is disabled.
// It returns an error if any of the required dependencies are nil.
func NewPaymentService(
	db *sql.DB,
	identities store.IdentityStore,
	verifier payment.Verifier,
	cache StatusInvalidator,
	policyWindowDays int,
	logger *slog.Logger,
) (PaymentService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if identities == nil {
		return nil, domain.NewValidationError("identities", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}
	if policyWindowDays <= 0 {
		return nil, domain.NewValidationError("policyWindowDays", "must be positive", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &paymentServiceImpl{
		db:           db,
		identities:   identities,
		verifier:     verifier,
		cache:        cache,
		policyWindow: time.Duration(policyWindowDays) * 24 * time.Hour,
		now:          time.Now,
		logger:       logger.With(slog.String("component", "payment_service")),
	}, nil
}

// RefreshPaymentStatus implements PaymentService.RefreshPaymentStatus
func (s *paymentServiceImpl) RefreshPaymentStatus(ctx context.Context, identityID uuid.UUID) (domain.PaymentStatus, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var result domain.PaymentStatus

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txIdentities := s.identities.WithTx(tx)

		// The row lock serializes concurrent refreshes for this identity.
		identity, err := txIdentities.GetByIDForUpdate(ctx, identityID)
		if err != nil {
			return err
		}

		now := s.now().UTC()

		status, verifyErr := s.verifier.Check(ctx, identity.Login)
		if verifyErr != nil {
			status = s.fallbackStatus(identity, now)
			log.Warn("payment verifier failed, applying fallback status",
				slog.String("identity_id", identityID.String()),
				slog.String("fallback_status", string(status)),
				slog.String("error", verifyErr.Error()))

			// A trusted prior status is kept without touching the
			// verification timestamp, so the policy window keeps counting
			// from the last real verification.
			if status == identity.PaymentStatus {
				result = status
				return nil
			}
			if err := txIdentities.UpdatePaymentStatus(ctx, identityID, status, identity.LastVerifiedAt); err != nil {
				return NewPaymentServiceError("refresh", "failed to store fallback status", err)
			}
			result = status
			return nil
		}

		if err := txIdentities.UpdatePaymentStatus(ctx, identityID, status, now); err != nil {
			return NewPaymentServiceError("refresh", "failed to store payment status", err)
		}
		result = status
		return nil
	})
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, identityID)
	}

	log.Debug("payment status refreshed",
		slog.String("identity_id", identityID.String()),
		slog.String("status", string(result)))
	return result, nil
}

// fallbackStatus decides what a failed verification means. An active status
// verified within the policy window is trusted; everything else drops to
// unpaid.
func (s *paymentServiceImpl) fallbackStatus(identity *domain.Identity, now time.Time) domain.PaymentStatus {
	if identity.PaymentStatus == domain.PaymentStatusActive &&
		!identity.LastVerifiedAt.IsZero() &&
		now.Sub(identity.LastVerifiedAt) <= s.policyWindow {
		return domain.PaymentStatusActive
	}
	return domain.PaymentStatusUnpaid
}
