package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_RollbackNestedNoOp(t *testing.T) {
	// A context whose status is "open" belongs to an outer owner; rollback
	// from a nested caller must leave the transaction untouched.
	tx := &Transaction{}
	ctx := context.WithValue(context.Background(), txStatusKey, "open")
	ctx = context.WithValue(ctx, txKey, Tx(tx))

	require.NoError(t, tx.Rollback(ctx))
	assert.True(t, tx.IsOpen())
}

func TestTransaction_RollbackAfterClose(t *testing.T) {
	tx := &Transaction{isClosed: true}

	// Rolling back a committed or rolled-back transaction is a no-op, which
	// is what lets the owner defer Rollback against the pre-transaction
	// context and still commit normally.
	assert.NoError(t, tx.Rollback(context.Background()))
	assert.False(t, tx.IsOpen())
}

func TestTxFromContext(t *testing.T) {
	t.Run("empty context carries no transaction", func(t *testing.T) {
		_, ok := TxFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("open transaction is returned", func(t *testing.T) {
		tx := &Transaction{}
		ctx := context.WithValue(context.Background(), txStatusKey, "open")
		ctx = context.WithValue(ctx, txKey, Tx(tx))

		got, ok := TxFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, Tx(tx), got)
	})

	t.Run("closed transaction is ignored", func(t *testing.T) {
		tx := &Transaction{isClosed: true}
		ctx := context.WithValue(context.Background(), txStatusKey, "open")
		ctx = context.WithValue(ctx, txKey, Tx(tx))

		_, ok := TxFromContext(ctx)
		assert.False(t, ok)
	})
}
