package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/google/uuid"
)

// BoardServiceError is a custom error type for board service errors.
type BoardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for BoardServiceError.
func (e *BoardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("board service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("board service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *BoardServiceError) Unwrap() error {
	return e.Err
}

// NewBoardServiceError creates a new BoardServiceError.
func NewBoardServiceError(operation, message string, err error) *BoardServiceError {
	return &BoardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// BoardService provides board-related operations. All operations take the
// already-authorized identity; authorization itself happens in the guard
// before any service call.
type BoardService interface {
	// CreateBoard creates a new board owned by the identity.
	CreateBoard(ctx context.Context, owner *domain.Identity, title string) (*domain.Board, error)

	// GetBoard retrieves one of the identity's boards.
	// A board owned by someone else is reported as not found.
	GetBoard(ctx context.Context, owner *domain.Identity, boardID uuid.UUID) (*domain.Board, error)

	// ListBoards retrieves all boards owned by the identity.
	ListBoards(ctx context.Context, owner *domain.Identity) ([]*domain.Board, error)

	// RenameBoard changes the title of one of the identity's boards.
	RenameBoard(ctx context.Context, owner *domain.Identity, boardID uuid.UUID, title string) (*domain.Board, error)

	// DeleteBoard removes a board with all of its tasks and time entries.
	DeleteBoard(ctx context.Context, owner *domain.Identity, boardID uuid.UUID) error
}

// boardServiceImpl implements the BoardService interface
type boardServiceImpl struct {
	db     *sql.DB
	boards store.BoardStore
	logger *slog.Logger
}

// NewBoardService creates a new BoardService.
// It returns an error if any of the required dependencies are nil.
func NewBoardService(db *sql.DB, boards store.BoardStore, logger *slog.Logger) (BoardService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if boards == nil {
		return nil, domain.NewValidationError("boards", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &boardServiceImpl{
		db:     db,
		boards: boards,
		logger: logger.With(slog.String("component", "board_service")),
	}, nil
}

// CreateBoard implements BoardService.CreateBoard
// The per-plan board cap is checked inside the same transaction as the
// insert so two concurrent creates cannot both slip under the limit.
func (s *boardServiceImpl) CreateBoard(ctx context.Context, owner *domain.Identity, title string) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board, err := domain.NewBoard(owner.ID, title)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txBoards := s.boards.WithTx(tx)

		if owner.PaymentStatus != domain.PaymentStatusActive {
			count, err := txBoards.CountByOwner(ctx, owner.ID)
			if err != nil {
				return NewBoardServiceError("create_board", "failed to count boards", err)
			}
			if count >= 1 {
				return ErrBoardLimitReached
			}
		}

		if err := txBoards.Create(ctx, board); err != nil {
			return NewBoardServiceError("create_board", "failed to save board", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("board created",
		slog.String("board_id", board.ID.String()),
		slog.String("owner_id", owner.ID.String()))
	return board, nil
}

// GetBoard implements BoardService.GetBoard
func (s *boardServiceImpl) GetBoard(ctx context.Context, owner *domain.Identity, boardID uuid.UUID) (*domain.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board.OwnerID != owner.ID {
		// Another owner's board is indistinguishable from a missing one.
		return nil, store.ErrBoardNotFound
	}
	return board, nil
}

// ListBoards implements BoardService.ListBoards
func (s *boardServiceImpl) ListBoards(ctx context.Context, owner *domain.Identity) ([]*domain.Board, error) {
	boards, err := s.boards.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, NewBoardServiceError("list_boards", "failed to list boards", err)
	}
	return boards, nil
}

// RenameBoard implements BoardService.RenameBoard
func (s *boardServiceImpl) RenameBoard(ctx context.Context, owner *domain.Identity, boardID uuid.UUID, title string) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var board *domain.Board
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txBoards := s.boards.WithTx(tx)

		var err error
		board, err = txBoards.GetByID(ctx, boardID)
		if err != nil {
			return err
		}
		if board.OwnerID != owner.ID {
			return store.ErrBoardNotFound
		}

		if err := board.Rename(title); err != nil {
			return domain.NewValidationError("title", err.Error(), domain.ErrValidation)
		}

		if err := txBoards.Update(ctx, board); err != nil {
			return NewBoardServiceError("rename_board", "failed to save board", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("board renamed", slog.String("board_id", boardID.String()))
	return board, nil
}

// DeleteBoard implements BoardService.DeleteBoard
func (s *boardServiceImpl) DeleteBoard(ctx context.Context, owner *domain.Identity, boardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txBoards := s.boards.WithTx(tx)

		board, err := txBoards.GetByID(ctx, boardID)
		if err != nil {
			return err
		}
		if board.OwnerID != owner.ID {
			return store.ErrBoardNotFound
		}

		if err := txBoards.Delete(ctx, boardID); err != nil {
			return NewBoardServiceError("delete_board", "failed to delete board", err)
		}

		log.Debug("board deleted", slog.String("board_id", boardID.String()))
		return nil
	})
}
