package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Board-specific validation errors
var (
	// ErrBoardIDEmpty is returned when a board ID is empty or nil.
	ErrBoardIDEmpty = errors.New("board ID cannot be empty")

	// ErrBoardOwnerEmpty is returned when a board's owner ID is empty or nil.
	ErrBoardOwnerEmpty = errors.New("board owner ID cannot be empty")

	// ErrBoardTitleEmpty is returned when a board's title is empty.
	ErrBoardTitleEmpty = errors.New("board title cannot be empty")
)

// Board is a named collection of tasks owned by a single identity.
// Tasks reference their board by ID; the board never embeds them.
type Board struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBoard creates a new Board owned by the given identity.
// It generates a new UUID for the board ID and sets the creation timestamp.
// Returns an error if validation fails.
func NewBoard(ownerID uuid.UUID, title string) (*Board, error) {
	board := &Board{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}

	if err := board.Validate(); err != nil {
		return nil, err
	}

	return board, nil
}

// Rename changes the board's title.
// Returns an error if the new title fails validation.
func (b *Board) Rename(title string) error {
	if title == "" {
		return ErrBoardTitleEmpty
	}

	b.Title = title
	return nil
}

// Validate checks if the Board has valid data.
// Returns an error if any field fails validation.
func (b *Board) Validate() error {
	if b.ID == uuid.Nil {
		return ErrBoardIDEmpty
	}

	if b.OwnerID == uuid.Nil {
		return ErrBoardOwnerEmpty
	}

	if b.Title == "" {
		return ErrBoardTitleEmpty
	}

	return nil
}
