// Package testutils provides database helpers for integration tests.
// Tests that need PostgreSQL call GetTestDB, which skips the test unless
// DATABASE_URL points at a reachable instance.
package testutils

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/platform/postgres"
	"github.com/dayplan-app/dayplan-api/internal/service/auth"
	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"
)

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return os.Getenv("DATABASE_URL") != ""
}

// GetTestDB opens the configured test database with migrations applied.
// The test is skipped when no database is configured.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("skipping integration test - DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "test database unreachable")
	require.NoError(t, postgres.MigrateUp(ctx, db), "failed to migrate test database")

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// never leak rows into the shared test database.
func WithTx(t *testing.T, db *sql.DB, fn func(tx store.DBTX)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin test transaction")
	defer func() { _ = tx.Rollback() }()

	fn(tx)
}

// MustInsertIdentity creates an identity with a fresh access key and
// returns it together with the raw key.
func MustInsertIdentity(ctx context.Context, t *testing.T, db store.DBTX, status domain.PaymentStatus) (*domain.Identity, string) {
	t.Helper()

	key, err := auth.GenerateKey(auth.MinKeyLength)
	require.NoError(t, err)
	hash, err := auth.HashKey(key)
	require.NoError(t, err)

	identity, err := domain.NewIdentity("it-"+uuid.NewString()[:13], hash, auth.Fingerprint(key))
	require.NoError(t, err)
	identity.PaymentStatus = status
	if status != domain.PaymentStatusUnpaid {
		identity.LastVerifiedAt = time.Now().UTC()
	}

	require.NoError(t, postgres.NewPostgresIdentityStore(db, nil).Create(ctx, identity))
	return identity, key
}

// MustInsertBoard creates a board for the identity.
func MustInsertBoard(ctx context.Context, t *testing.T, db store.DBTX, ownerID uuid.UUID, title string) *domain.Board {
	t.Helper()

	board, err := domain.NewBoard(ownerID, title)
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresBoardStore(db, nil).Create(ctx, board))
	return board
}

// MustInsertTask creates a task on the board.
func MustInsertTask(ctx context.Context, t *testing.T, db store.DBTX, boardID uuid.UUID, title string, estimate time.Duration, priority int) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(boardID, title, estimate, priority)
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresTaskStore(db, nil).Create(ctx, task))
	return task
}
