package mongoqx

import (
	"context"

	"gopkg.in/mgo.v2/bson"
)

// EagerCursor drains a fully-configured cursor into memory at construction
// time and serves every read from the buffer, trading laziness for a
// stable in-memory snapshot.
type EagerCursor struct {
	base Cursor
	data *ArrayIterator
}

var _ Cursor = (*EagerCursor)(nil)

// NewEagerCursor exhausts cursor immediately.  The cursor must already be
// fully configured; the buffer captures whatever the configuration
// produced.
func NewEagerCursor(ctx context.Context, cursor Cursor) (*EagerCursor, error) {
	values, err := cursor.ToArray(ctx)
	if err != nil {
		_ = cursor.Close()
		return nil, err
	}

	if err := cursor.Close(); err != nil {
		return nil, err
	}

	return &EagerCursor{
		base: cursor,
		data: NewArrayIterator(values),
	}, nil
}

func (c *EagerCursor) Next(result interface{}) bool { return c.data.Next(result) }

func (c *EagerCursor) Err() error { return c.data.Err() }

// Close releases the base cursor.  The drain-time close already ran, but a
// full count re-engages the base, which may re-acquire resources that only
// another close releases.
func (c *EagerCursor) Close() error { return c.base.Close() }

// Count delegates to the drained cursor so that foundOnly=false can still
// ignore the limit and skip the buffer was built with.
func (c *EagerCursor) Count(ctx context.Context, foundOnly bool) (int64, error) {
	if foundOnly {
		return c.data.Count(ctx, foundOnly)
	}
	return c.base.Count(ctx, foundOnly)
}

func (c *EagerCursor) ToArray(ctx context.Context) ([]interface{}, error) {
	return c.data.ToArray(ctx)
}

func (c *EagerCursor) One(ctx context.Context) (interface{}, error) {
	return c.data.One(ctx)
}

// The query behind an eager cursor has already run, so late configuration
// is deliberately inert.

func (c *EagerCursor) SetReadPreference(rp ReadPref) {}

func (c *EagerCursor) SetHint(hint interface{}) {}

func (c *EagerCursor) SetImmortal(immortal bool) {}

func (c *EagerCursor) SetLimit(limit int64) {}

func (c *EagerCursor) SetSkip(skip int64) {}

func (c *EagerCursor) SetSlaveOK(slaveOk bool) {}

func (c *EagerCursor) SetSort(sort bson.D) {}

func (c *EagerCursor) SetSnapshot(snapshot bool) {}
