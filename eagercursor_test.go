package mongoqx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/mgo.v2/bson"
)

func TestEagerCursorDrainsOnConstruction(t *testing.T) {
	docs := []interface{}{bson.M{"n": 1}, bson.M{"n": 2}}

	base := &CursorMock{
		ToArrayFunc: func(ctx context.Context) ([]interface{}, error) {
			return docs, nil
		},
	}

	eager, err := NewEagerCursor(context.Background(), base)
	require.NoError(t, err)
	require.Equal(t, []string{"toArray", "close"}, base.Ops)

	// reads come from the buffer, not the drained cursor
	all, err := eager.ToArray(context.Background())
	require.NoError(t, err)
	require.Equal(t, docs, all)

	one, err := eager.One(context.Background())
	require.NoError(t, err)
	require.Equal(t, bson.M{"n": 1}, one)

	// late configuration is inert
	eager.SetLimit(1)
	eager.SetSort(bson.D{{Name: "n", Value: -1}})
	require.Equal(t, []string{"toArray", "close"}, base.Ops)
}

func TestEagerCursorPropagatesDrainError(t *testing.T) {
	drainErr := errors.New("cursor died")

	base := &CursorMock{
		ToArrayFunc: func(ctx context.Context) ([]interface{}, error) {
			return nil, drainErr
		},
	}

	_, err := NewEagerCursor(context.Background(), base)
	require.ErrorIs(t, err, drainErr)

	// the failed cursor still gets released
	require.Equal(t, []string{"toArray", "close"}, base.Ops)
}

func TestEagerCursorCloseReleasesBase(t *testing.T) {
	base := &CursorMock{
		ToArrayFunc: func(ctx context.Context) ([]interface{}, error) {
			return []interface{}{bson.M{"n": 1}}, nil
		},
		CountFunc: func(ctx context.Context, foundOnly bool) (int64, error) {
			return 9, nil
		},
	}

	eager, err := NewEagerCursor(context.Background(), base)
	require.NoError(t, err)

	// a full count re-engages the drained base cursor, so the wrapper's
	// Close must reach it to release whatever the count re-acquired
	_, err = eager.Count(context.Background(), false)
	require.NoError(t, err)

	require.NoError(t, eager.Close())
	require.Equal(t, []string{"toArray", "close", "count(false)", "close"}, base.Ops)
}

func TestEagerCursorFoundOnlyCount(t *testing.T) {
	base := &CursorMock{
		ToArrayFunc: func(ctx context.Context) ([]interface{}, error) {
			return []interface{}{bson.M{"n": 1}}, nil
		},
		CountFunc: func(ctx context.Context, foundOnly bool) (int64, error) {
			require.False(t, foundOnly)
			return 100, nil
		},
	}

	eager, err := NewEagerCursor(context.Background(), base)
	require.NoError(t, err)

	// foundOnly counts the buffer
	n, err := eager.Count(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	// a full count still ignores the limit the buffer was built with
	n, err = eager.Count(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, int64(100), n)
}
