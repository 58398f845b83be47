package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"careerconnect/internal/database"
	"careerconnect/internal/domain/cart"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// scriptedTx answers Exec calls in order with the scripted results and
// records how the transaction ended.
type scriptedTx struct {
	results    []execResult
	queries    []string
	committed  bool
	rolledBack bool
}

type execResult struct {
	n   int64
	err error
}

func (t *scriptedTx) Exec(_ context.Context, query string, _ ...any) (int64, error) {
	t.queries = append(t.queries, strings.TrimSpace(query))
	if len(t.results) == 0 {
		return 1, nil
	}
	r := t.results[0]
	t.results = t.results[1:]
	return r.n, r.err
}

func (t *scriptedTx) QueryRow(context.Context, string, ...any) database.Row { return nil }

func (t *scriptedTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *scriptedTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type txOnlyDB struct {
	database.DB
	tx       *scriptedTx
	beginErr error
}

func (d *txOnlyDB) Begin(context.Context) (database.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return d.tx, nil
}

func TestMarkPaid_CommitsStatusAndCartTogether(t *testing.T) {
	tx := &scriptedTx{}
	repo := NewPostgresOrderRepository(&txOnlyDB{tx: tx})

	moved, err := repo.MarkPaid(context.Background(), uuid.New())
	require.NoError(t, err)
	require.True(t, moved)
	require.True(t, tx.committed)
	require.False(t, tx.rolledBack)
	require.Len(t, tx.queries, 3)
	require.True(t, strings.HasPrefix(tx.queries[0], "UPDATE orders"))
	require.True(t, strings.HasPrefix(tx.queries[1], "DELETE FROM cart_items"))
	require.True(t, strings.HasPrefix(tx.queries[2], "UPDATE cart_items"))
}

func TestMarkPaid_CartFailureRollsBackStatus(t *testing.T) {
	tx := &scriptedTx{results: []execResult{{n: 1}, {err: errors.New("connection reset")}}}
	repo := NewPostgresOrderRepository(&txOnlyDB{tx: tx})

	moved, err := repo.MarkPaid(context.Background(), uuid.New())
	require.Error(t, err)
	require.False(t, moved)
	require.True(t, tx.rolledBack)
	require.False(t, tx.committed)
}

func TestMarkPaid_NotPendingTouchesNoCart(t *testing.T) {
	tx := &scriptedTx{results: []execResult{{n: 0}}}
	repo := NewPostgresOrderRepository(&txOnlyDB{tx: tx})

	moved, err := repo.MarkPaid(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, moved)
	require.Len(t, tx.queries, 1)
}

func TestCreate_WritesOrderAndLines(t *testing.T) {
	tx := &scriptedTx{}
	repo := NewPostgresOrderRepository(&txOnlyDB{tx: tx})

	err := repo.Create(context.Background(), cart.Order{
		ID:     uuid.New(),
		UserID: "u1",
		Status: cart.OrderPending,
		Lines: []cart.Line{
			{ProductID: "resume-review", Quantity: 1, UnitAmount: 2500},
			{ProductID: "mock-interview", Quantity: 2, UnitAmount: 4000},
		},
	})
	require.NoError(t, err)
	require.True(t, tx.committed)
	require.Len(t, tx.queries, 3)
	require.True(t, strings.HasPrefix(tx.queries[0], "INSERT INTO orders"))
	require.True(t, strings.HasPrefix(tx.queries[2], "INSERT INTO order_lines"))
}

func TestCreate_LineFailureRollsBack(t *testing.T) {
	tx := &scriptedTx{results: []execResult{{n: 1}, {err: errors.New("duplicate key")}}}
	repo := NewPostgresOrderRepository(&txOnlyDB{tx: tx})

	err := repo.Create(context.Background(), cart.Order{ID: uuid.New(), Lines: []cart.Line{{ProductID: "p", Quantity: 1, UnitAmount: 1}}})
	require.Error(t, err)
	require.True(t, tx.rolledBack)
	require.False(t, tx.committed)
}

func TestInTx_BeginFailure(t *testing.T) {
	repo := NewPostgresOrderRepository(&txOnlyDB{beginErr: database.ErrNotConnected})
	_, err := repo.MarkPaid(context.Background(), uuid.New())
	require.ErrorIs(t, err, database.ErrNotConnected)
}
