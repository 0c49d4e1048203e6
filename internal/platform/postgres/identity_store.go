package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/google/uuid"
)

// PostgresIdentityStore implements the store.IdentityStore interface
// using a PostgreSQL database as the storage backend.
type PostgresIdentityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresIdentityStore creates a new PostgreSQL implementation of the
// IdentityStore interface. If logger is nil, a default logger will be used.
func NewPostgresIdentityStore(db store.DBTX, logger *slog.Logger) *PostgresIdentityStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresIdentityStore{
		db:     db,
		logger: logger.With(slog.String("component", "identity_store")),
	}
}

// Ensure PostgresIdentityStore implements store.IdentityStore interface
var _ store.IdentityStore = (*PostgresIdentityStore)(nil)

// WithTx implements store.IdentityStore.WithTx
func (s *PostgresIdentityStore) WithTx(tx store.DBTX) store.IdentityStore {
	return &PostgresIdentityStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.IdentityStore.Create
func (s *PostgresIdentityStore) Create(ctx context.Context, identity *domain.Identity) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := identity.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO identities (id, login, key_hash, key_fingerprint, payment_status, last_verified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		identity.ID,
		identity.Login,
		identity.KeyHash,
		identity.KeyFingerprint,
		identity.PaymentStatus,
		identity.LastVerifiedAt,
		identity.CreatedAt,
	)
	if err != nil {
		// Do not log the fingerprint; it identifies the credential.
		log.Error("failed to create identity",
			"identity_id", identity.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.IdentityStore.GetByID
func (s *PostgresIdentityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	query := identitySelect + ` WHERE id = $1`
	return s.getIdentity(ctx, query, id)
}

// GetByIDForUpdate implements store.IdentityStore.GetByIDForUpdate
func (s *PostgresIdentityStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	query := identitySelect + ` WHERE id = $1 FOR UPDATE`
	return s.getIdentity(ctx, query, id)
}

// GetByFingerprint implements store.IdentityStore.GetByFingerprint
func (s *PostgresIdentityStore) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.Identity, error) {
	query := identitySelect + ` WHERE key_fingerprint = $1`
	return s.getIdentity(ctx, query, fingerprint)
}

// GetByLogin implements store.IdentityStore.GetByLogin
func (s *PostgresIdentityStore) GetByLogin(ctx context.Context, login string) (*domain.Identity, error) {
	query := identitySelect + ` WHERE login = $1`
	return s.getIdentity(ctx, query, login)
}

// UpdatePaymentStatus implements store.IdentityStore.UpdatePaymentStatus
func (s *PostgresIdentityStore) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, verifiedAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE identities
		SET payment_status = $1, last_verified_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, verifiedAt, id)
	if err != nil {
		log.Error("failed to update payment status",
			"identity_id", id,
			"status", status,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "identity"); err != nil {
		return store.ErrIdentityNotFound
	}

	return nil
}

const identitySelect = `
	SELECT id, login, key_hash, key_fingerprint, payment_status, last_verified_at, created_at
	FROM identities`

func (s *PostgresIdentityStore) getIdentity(ctx context.Context, query string, arg any) (*domain.Identity, error) {
	var (
		identity       domain.Identity
		lastVerifiedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&identity.ID,
		&identity.Login,
		&identity.KeyHash,
		&identity.KeyFingerprint,
		&identity.PaymentStatus,
		&lastVerifiedAt,
		&identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrIdentityNotFound
		}
		return nil, MapError(err)
	}
	if lastVerifiedAt.Valid {
		identity.LastVerifiedAt = lastVerifiedAt.Time
	}

	return &identity, nil
}
