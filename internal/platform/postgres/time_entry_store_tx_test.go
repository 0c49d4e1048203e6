package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/platform/postgres"
	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/dayplan-app/dayplan-api/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Closing an entry that is already closed must not look like a missing
// entry. The service maps the two to different failures, so the store
// has to tell them apart.
func TestCloseDistinguishesMissingFromClosed(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)
	ctx := context.Background()

	testutils.WithTx(t, db, func(tx store.DBTX) {
		identity, _ := testutils.MustInsertIdentity(ctx, t, tx, domain.PaymentStatusActive)
		board := testutils.MustInsertBoard(ctx, t, tx, identity.ID, "Deep Work")
		task := testutils.MustInsertTask(ctx, t, tx, board.ID, "Write report", 2*time.Hour, 1)

		entryStore := postgres.NewPostgresTimeEntryStore(tx, nil)

		startedAt := time.Now().UTC().Add(-time.Hour)
		entry, err := domain.NewTimeEntry(task.ID, startedAt)
		require.NoError(t, err)
		require.NoError(t, entryStore.Create(ctx, entry, identity.ID))

		require.NoError(t, entryStore.Close(ctx, entry.ID, startedAt.Add(30*time.Minute)))

		err = entryStore.Close(ctx, entry.ID, startedAt.Add(45*time.Minute))
		assert.ErrorIs(t, err, domain.ErrInvalidState,
			"closing an already closed entry should fail as an invalid state")

		err = entryStore.Close(ctx, uuid.New(), time.Now().UTC())
		assert.ErrorIs(t, err, store.ErrTimeEntryNotFound,
			"closing an unknown entry should report not found")
	})
}
