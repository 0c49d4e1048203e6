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

// PostgresTimeEntryStore implements the store.TimeEntryStore interface
// using a PostgreSQL database as the storage backend.
//
// Two invariants live in the schema rather than in application code: the
// partial unique index time_entries_one_open_per_task guarantees at most
// one open entry per task, and the exclusion constraint
// time_entries_owner_no_overlap rejects closed entries that overlap
// another closed entry of the same owner. owner_id is denormalized onto
// the table so the exclusion constraint can see it.
type PostgresTimeEntryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTimeEntryStore creates a new PostgreSQL implementation of the
// TimeEntryStore interface. If logger is nil, a default logger will be used.
func NewPostgresTimeEntryStore(db store.DBTX, logger *slog.Logger) *PostgresTimeEntryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTimeEntryStore{
		db:     db,
		logger: logger.With(slog.String("component", "time_entry_store")),
	}
}

// Ensure PostgresTimeEntryStore implements store.TimeEntryStore interface
var _ store.TimeEntryStore = (*PostgresTimeEntryStore)(nil)

// WithTx implements store.TimeEntryStore.WithTx
func (s *PostgresTimeEntryStore) WithTx(tx store.DBTX) store.TimeEntryStore {
	return &PostgresTimeEntryStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TimeEntryStore.Create
func (s *PostgresTimeEntryStore) Create(ctx context.Context, entry *domain.TimeEntry, ownerID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO time_entries (id, task_id, owner_id, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.TaskID,
		ownerID,
		entry.StartedAt,
		entry.EndedAt,
	)
	if err != nil {
		log.Error("failed to create time entry",
			"entry_id", entry.ID,
			"task_id", entry.TaskID,
			"error", err)
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrInvalidEntity) {
			return store.ErrTaskNotFound
		}
		return mapped
	}

	return nil
}

// GetByID implements store.TimeEntryStore.GetByID
func (s *PostgresTimeEntryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TimeEntry, error) {
	query := `
		SELECT id, task_id, started_at, ended_at
		FROM time_entries
		WHERE id = $1
	`

	entry, err := scanTimeEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTimeEntryNotFound
		}
		return nil, MapError(err)
	}

	return entry, nil
}

// GetOpenByTask implements store.TimeEntryStore.GetOpenByTask
func (s *PostgresTimeEntryStore) GetOpenByTask(ctx context.Context, taskID uuid.UUID) (*domain.TimeEntry, error) {
	query := `
		SELECT id, task_id, started_at, ended_at
		FROM time_entries
		WHERE task_id = $1 AND ended_at IS NULL
	`

	entry, err := scanTimeEntry(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTimeEntryNotFound
		}
		return nil, MapError(err)
	}

	return entry, nil
}

// Close implements store.TimeEntryStore.Close
func (s *PostgresTimeEntryStore) Close(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE time_entries
		SET ended_at = $1
		WHERE id = $2 AND ended_at IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, endedAt, id)
	if err != nil {
		log.Error("failed to close time entry",
			"entry_id", id,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "time entry"); err != nil {
		// Zero rows means the entry is gone or already has an end time.
		// Re-read to tell the two apart.
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: time entry already closed", domain.ErrInvalidState)
	}

	return nil
}

// ListByTask implements store.TimeEntryStore.ListByTask
func (s *PostgresTimeEntryStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TimeEntry, error) {
	query := `
		SELECT id, task_id, started_at, ended_at
		FROM time_entries
		WHERE task_id = $1
		ORDER BY started_at ASC, id ASC
	`
	return s.listEntries(ctx, query, taskID)
}

// ListByBoard implements store.TimeEntryStore.ListByBoard
func (s *PostgresTimeEntryStore) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.TimeEntry, error) {
	query := `
		SELECT e.id, e.task_id, e.started_at, e.ended_at
		FROM time_entries e
		JOIN tasks t ON t.id = e.task_id
		WHERE t.board_id = $1
		ORDER BY e.started_at ASC, e.id ASC
	`
	return s.listEntries(ctx, query, boardID)
}

func (s *PostgresTimeEntryStore) listEntries(ctx context.Context, query string, args ...any) ([]*domain.TimeEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query time entries", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entries, nil
}

func scanTimeEntry(row rowScanner) (*domain.TimeEntry, error) {
	var (
		entry   domain.TimeEntry
		endedAt sql.NullTime
	)
	err := row.Scan(
		&entry.ID,
		&entry.TaskID,
		&entry.StartedAt,
		&endedAt,
	)
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		entry.EndedAt = &t
	}
	return &entry, nil
}
