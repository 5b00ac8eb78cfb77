package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/warp/tip-engine/roster"
	"github.com/warp/tip-engine/store/postgres"
	"github.com/warp/tip-engine/store/storetest"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	storetest.Run(t, func(t *testing.T) roster.Store {
		ctx := context.Background()
		db, err := sql.Open("pgx", dsn)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		store, err := postgres.New(ctx, db)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, "DELETE FROM templates")
		require.NoError(t, err)
		return store
	})
}
