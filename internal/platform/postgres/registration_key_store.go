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

// PostgresRegistrationKeyStore implements the store.RegistrationKeyStore
// interface using a PostgreSQL database as the storage backend.
type PostgresRegistrationKeyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRegistrationKeyStore creates a new PostgreSQL implementation
// of the RegistrationKeyStore interface. If logger is nil, a default
// logger will be used.
func NewPostgresRegistrationKeyStore(db store.DBTX, logger *slog.Logger) *PostgresRegistrationKeyStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRegistrationKeyStore{
		db:     db,
		logger: logger.With(slog.String("component", "registration_key_store")),
	}
}

// Ensure PostgresRegistrationKeyStore implements store.RegistrationKeyStore
var _ store.RegistrationKeyStore = (*PostgresRegistrationKeyStore)(nil)

// WithTx implements store.RegistrationKeyStore.WithTx
func (s *PostgresRegistrationKeyStore) WithTx(tx store.DBTX) store.RegistrationKeyStore {
	return &PostgresRegistrationKeyStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.RegistrationKeyStore.Create
func (s *PostgresRegistrationKeyStore) Create(ctx context.Context, key *domain.RegistrationKey) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := key.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO registration_keys (id, key_hash, key_fingerprint, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		key.ID,
		key.KeyHash,
		key.KeyFingerprint,
		key.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create registration key",
			"key_id", key.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByFingerprint implements store.RegistrationKeyStore.GetByFingerprint
// Only unconsumed keys are considered; a consumed key is indistinguishable
// from an unknown one.
func (s *PostgresRegistrationKeyStore) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.RegistrationKey, error) {
	query := `
		SELECT id, key_hash, key_fingerprint, consumed_by, consumed_at, created_at
		FROM registration_keys
		WHERE key_fingerprint = $1 AND consumed_by IS NULL
	`

	var (
		key        domain.RegistrationKey
		consumedBy uuid.NullUUID
		consumedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, fingerprint).Scan(
		&key.ID,
		&key.KeyHash,
		&key.KeyFingerprint,
		&consumedBy,
		&consumedAt,
		&key.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRegistrationKeyNotFound
		}
		return nil, MapError(err)
	}
	if consumedBy.Valid {
		key.ConsumedBy = &consumedBy.UUID
	}
	if consumedAt.Valid {
		t := consumedAt.Time
		key.ConsumedAt = &t
	}

	return &key, nil
}

// Consume implements store.RegistrationKeyStore.Consume
// The consumed_by IS NULL guard makes consumption atomic: two concurrent
// sign-ups with the same key cannot both succeed.
func (s *PostgresRegistrationKeyStore) Consume(ctx context.Context, id uuid.UUID, identityID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE registration_keys
		SET consumed_by = $1, consumed_at = $2
		WHERE id = $3 AND consumed_by IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, identityID, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to consume registration key",
			"key_id", id,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "registration key"); err != nil {
		return store.ErrRegistrationKeyNotFound
	}

	return nil
}
