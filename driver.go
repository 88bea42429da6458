package mongoqx

import (
	"context"

	"gopkg.in/mgo.v2/bson"
)

// ReadPreferenceHolder is anything carrying a mutable read preference.
// Setting a read preference cannot fail; restoration of a saved preference
// is therefore infallible as well.
type ReadPreferenceHolder interface {
	ReadPreference() ReadPref
	SetReadPreference(rp ReadPref)
}

// Database is the owning database of a collection, as far as this layer is
// concerned: the target of read-preference overrides for the command-style
// query kinds.
type Database interface {
	ReadPreferenceHolder
}

// WriteResult describes the outcome of a write-style query kind.
type WriteResult struct {
	Inserted   int
	Matched    int
	Updated    int
	Removed    int
	UpsertedId interface{}
}

// Collection is the driver surface this layer dispatches to.  All blocking
// calls take a context; cancellation and timeout semantics belong to the
// driver, not to the dispatcher.
type Collection interface {
	Find(ctx context.Context, query bson.M, sel bson.M) (Cursor, error)
	FindAndUpdate(ctx context.Context, query bson.M, update bson.M, opts Options) (bson.M, error)
	FindAndRemove(ctx context.Context, query bson.M, opts Options) (bson.M, error)
	Insert(ctx context.Context, doc interface{}, opts Options) (*WriteResult, error)
	Update(ctx context.Context, query bson.M, update bson.M, opts Options) (*WriteResult, error)
	Remove(ctx context.Context, query bson.M, opts Options) (*WriteResult, error)
	Group(ctx context.Context, keys interface{}, initial bson.M, reduce string, opts Options) ([]interface{}, error)
	MapReduce(ctx context.Context, mapFn string, reduceFn string, out interface{}, query bson.M, opts Options) (interface{}, error)
	Distinct(ctx context.Context, field string, query bson.M, opts Options) ([]interface{}, error)
	Near(ctx context.Context, near interface{}, query bson.M, opts Options) ([]interface{}, error)
	Count(ctx context.Context, query bson.M) (int64, error)

	Database() Database
	ReadPreference() ReadPref
	SetReadPreference(rp ReadPref)
}

// Iterator is the uniform iteration surface over a query result.
type Iterator interface {
	// Next decodes the next result into the value pointed at by result and
	// reports whether one was available.
	Next(result interface{}) bool
	Err() error
	Close() error

	// Count reports the size of the result.  When foundOnly is false any
	// limit and skip applied to the underlying query are ignored.
	Count(ctx context.Context, foundOnly bool) (int64, error)
	ToArray(ctx context.Context) ([]interface{}, error)
	One(ctx context.Context) (interface{}, error)
}

// Cursor is a lazy, server-backed Iterator that accepts configuration
// before the driver issues the query.  Configuration applied after
// iteration has begun has no effect.
type Cursor interface {
	Iterator

	SetReadPreference(rp ReadPref)
	SetHint(hint interface{})
	SetImmortal(immortal bool)
	SetLimit(limit int64)
	SetSkip(skip int64)
	SetSlaveOK(slaveOk bool)
	SetSort(sort bson.D)
	SetSnapshot(snapshot bool)
}
