package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/google/uuid"
)

// PostgresBoardStore implements the store.BoardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBoardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBoardStore creates a new PostgreSQL implementation of the
// BoardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresBoardStore(db store.DBTX, logger *slog.Logger) *PostgresBoardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBoardStore{
		db:     db,
		logger: logger.With(slog.String("component", "board_store")),
	}
}

// Ensure PostgresBoardStore implements store.BoardStore interface
var _ store.BoardStore = (*PostgresBoardStore)(nil)

// WithTx implements store.BoardStore.WithTx
func (s *PostgresBoardStore) WithTx(tx store.DBTX) store.BoardStore {
	return &PostgresBoardStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.BoardStore.Create
func (s *PostgresBoardStore) Create(ctx context.Context, board *domain.Board) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := board.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO boards (id, owner_id, title, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		board.ID,
		board.OwnerID,
		board.Title,
		board.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create board",
			"board_id", board.ID,
			"owner_id", board.OwnerID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.BoardStore.GetByID
func (s *PostgresBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	query := `
		SELECT id, owner_id, title, created_at
		FROM boards
		WHERE id = $1
	`

	var board domain.Board
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&board.ID,
		&board.OwnerID,
		&board.Title,
		&board.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBoardNotFound
		}
		return nil, MapError(err)
	}

	return &board, nil
}

// ListByOwner implements store.BoardStore.ListByOwner
func (s *PostgresBoardStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, owner_id, title, created_at
		FROM boards
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to list boards",
			"owner_id", ownerID,
			"error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var boards []*domain.Board
	for rows.Next() {
		var board domain.Board
		if err := rows.Scan(&board.ID, &board.OwnerID, &board.Title, &board.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan board row: %w", err)
		}
		boards = append(boards, &board)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return boards, nil
}

// Update implements store.BoardStore.Update
func (s *PostgresBoardStore) Update(ctx context.Context, board *domain.Board) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := board.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE boards
		SET title = $1
		WHERE id = $2
	`

	result, err := s.db.ExecContext(ctx, query, board.Title, board.ID)
	if err != nil {
		log.Error("failed to update board",
			"board_id", board.ID,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "board"); err != nil {
		return store.ErrBoardNotFound
	}

	return nil
}

// CountByOwner implements store.BoardStore.CountByOwner
func (s *PostgresBoardStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM boards WHERE owner_id = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// Delete implements store.BoardStore.Delete
// Tasks and time entries under the board are removed by the schema's
// ON DELETE CASCADE rules.
func (s *PostgresBoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM boards WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete board",
			"board_id", id,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "board"); err != nil {
		return store.ErrBoardNotFound
	}

	log.Debug("board deleted", "board_id", id)
	return nil
}
