package persistence_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"smartdeals/internal/domain/entity"
	"smartdeals/internal/infrastructure/persistence"
	"smartdeals/pkg/application/connectors"
	"smartdeals/pkg/dbtest"
)

// TEST_PG_DSN points at a disposable database; the test is skipped without it.
func openDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN is not set")
	}

	ctx := context.Background()
	pg := &connectors.Postgres{DSN: dsn, MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: time.Minute}

	db, err := pg.Client(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close(ctx) })

	require.NoError(t, dbtest.Migrate(ctx, db, "../../../migrations"))

	_, err = db.Exec(`TRUNCATE console_actions`)
	require.NoError(t, err)

	return db
}

func TestActionJournal(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	journal := persistence.NewActionJournal(openDB(t))

	base := time.Now().UTC().Truncate(time.Second)

	rq.NoError(journal.Record(ctx, entity.Outcome{Action: entity.ActionLogin, Operator: "tui", At: base}))
	rq.NoError(journal.Record(ctx, entity.Outcome{
		Action: entity.ActionApprove,
		Target: "5",
		Err:    errors.New("NotFound"),
		At:     base.Add(time.Second),
	}))

	outcomes, err := journal.List(ctx, 10)
	rq.NoError(err)
	rq.Len(outcomes, 2)

	rq.Equal(entity.ActionApprove, outcomes[0].Action)
	rq.False(outcomes[0].OK())
	rq.EqualError(outcomes[0].Err, "NotFound")

	rq.Equal(entity.ActionLogin, outcomes[1].Action)
	rq.True(outcomes[1].OK())
	rq.Equal("tui", outcomes[1].Operator)

	outcomes, err = journal.List(ctx, 1)
	rq.NoError(err)
	rq.Len(outcomes, 1)
}
