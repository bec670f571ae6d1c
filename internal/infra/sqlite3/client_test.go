package sqlite3

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesMigrations(t *testing.T) {
	db, err := New(context.Background())
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM products"))
	assert.Equal(t, 13, count)

	// a second run is a no-op
	require.NoError(t, Migrate(db.DB.DB))
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM products"))
	assert.Equal(t, 13, count)
}

func TestRunInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := New(ctx)
	require.NoError(t, err)
	defer db.Close()

	err = RunInTx(ctx, db.DB, nil, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM products"))
	assert.Equal(t, 13, count)
}

func TestMemoryDSNForcesSingleConnection(t *testing.T) {
	cfg := newConfig(WithDSN(":memory:"), WithMaxOpenConns(10))
	assert.Equal(t, 1, cfg.MaxOpenConns)

	cfg = newConfig(WithDSN("./data/x.db"), WithMaxOpenConns(10))
	assert.Equal(t, 10, cfg.MaxOpenConns)
}
