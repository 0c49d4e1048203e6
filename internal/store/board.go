package store

import (
	"context"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/google/uuid"
)

// BoardStore defines the interface for board data persistence.
type BoardStore interface {
	// Create saves a new board to the store.
	Create(ctx context.Context, board *domain.Board) error

	// GetByID retrieves a board by its unique ID.
	// Returns ErrBoardNotFound if the board does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)

	// ListByOwner retrieves all boards owned by the given identity,
	// ordered by creation time.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Board, error)

	// Update persists changes to an existing board.
	// Returns ErrBoardNotFound if the board does not exist.
	Update(ctx context.Context, board *domain.Board) error

	// CountByOwner returns the number of boards owned by the given identity.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)

	// Delete removes a board and, through the schema's cascade rules, all of
	// its tasks and their time entries.
	// Returns ErrBoardNotFound if the board does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a copy of the store bound to an existing transaction,
	// so multi-store operations share one unit of work.
	WithTx(tx DBTX) BoardStore
}
