package mongoqx

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mongoqx/mongoqx/zaputils"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"gopkg.in/mgo.v2/bson"
)

var iterableQueryTypes = []QueryType{
	QueryTypeFind,
	QueryTypeGroup,
	QueryTypeMapReduce,
	QueryTypeDistinct,
	QueryTypeGeoNear,
}

type QueryExecutorOptions struct {
	Logger *zap.Logger
}

// QueryExecutor dispatches a single query descriptor against a collection.
// One executor serves one descriptor; the iterator-producing path executes
// once and memoizes, so a fresh descriptor needs a fresh executor.
type QueryExecutor struct {
	logger *zap.Logger
	coll   Collection
	desc   Descriptor
	opts   Options

	iterFast atomic.Pointer[Iterator]
	iterLock sync.Mutex
}

func NewQueryExecutor(
	coll Collection,
	desc Descriptor,
	opts Options,
	execOpts *QueryExecutorOptions,
) (*QueryExecutor, error) {
	if execOpts == nil {
		execOpts = &QueryExecutorOptions{}
	}

	if coll == nil {
		return nil, errors.New("collection must be non-nil")
	}
	if desc == nil {
		return nil, invalidDescriptorError{}
	}
	if desc.Type() < QueryTypeFind || desc.Type() > QueryTypeCount {
		return nil, invalidDescriptorError{QueryType: desc.Type()}
	}

	logger := loggerOrNop(execOpts.Logger).With(
		zap.String("queryExecutorId", uuid.NewString()[:8]),
		zaputils.QueryKind("queryType", desc.Type()))

	return &QueryExecutor{
		logger: logger,
		coll:   coll,
		desc:   desc,
		opts:   opts,
	}, nil
}

// Query returns the stored descriptor.
func (qe *QueryExecutor) Query() Descriptor { return qe.desc }

// Type returns the stored descriptor's kind.
func (qe *QueryExecutor) Type() QueryType { return qe.desc.Type() }

// Debug renders the stored descriptor's populated fields.
func (qe *QueryExecutor) Debug() bson.M { return qe.desc.debugFields() }

// DebugField looks up a single rendered descriptor field, mirroring a
// plain map lookup.
func (qe *QueryExecutor) DebugField(name string) (interface{}, bool) {
	val, ok := qe.desc.debugFields()[name]
	return val, ok
}

// Execute dispatches the descriptor to the matching driver operation and
// returns the raw result: a Cursor for finds, an Iterator for the
// command-style kinds, a document for the findAnd* kinds, a *WriteResult
// for writes, or an int64 for counts.
func (qe *QueryExecutor) Execute(ctx context.Context) (interface{}, error) {
	ctx, telemOp := beginQueryTelem(ctx, qe.desc.Type())

	res, err := qe.execute(ctx)
	telemOp.End(err)

	if err != nil {
		qe.logger.Debug("query execution failed", zap.Error(err))
		return nil, err
	}

	return res, nil
}

func (qe *QueryExecutor) execute(ctx context.Context) (interface{}, error) {
	switch desc := qe.desc.(type) {
	case *FindQuery:
		sel := desc.Select
		if sel == nil {
			sel = bson.M{}
		}

		cursor, err := qe.coll.Find(ctx, desc.Query, sel)
		if err != nil {
			return nil, err
		}

		return qe.prepareCursor(ctx, cursor, desc.cursorConfig())

	case *FindAndUpdateQuery:
		opts := mergeOptions(qe.opts, desc.callOptions())
		return qe.coll.FindAndUpdate(ctx, desc.Query, desc.NewObj, opts)

	case *FindAndRemoveQuery:
		opts := mergeOptions(qe.opts, desc.callOptions())
		return qe.coll.FindAndRemove(ctx, desc.Query, opts)

	case *InsertQuery:
		return qe.coll.Insert(ctx, desc.NewObj, qe.opts)

	case *UpdateQuery:
		opts := mergeOptions(qe.opts, desc.callOptions())
		return qe.coll.Update(ctx, desc.Query, desc.NewObj, opts)

	case *RemoveQuery:
		return qe.coll.Remove(ctx, desc.Query, qe.opts)

	case *GroupQuery:
		opts := mergeOptions(qe.opts, desc.Options)
		if len(desc.Query) > 0 {
			opts = mergeOptions(opts, Options{"cond": desc.Query})
		}

		return OrchestrateReadPreference(qe.coll.Database(), desc.ReadPref, func() (interface{}, error) {
			values, err := qe.coll.Group(ctx, desc.Keys, desc.Initial, desc.Reduce, opts)
			if err != nil {
				return nil, err
			}
			return NewArrayIterator(values), nil
		})

	case *MapReduceQuery:
		opts := mergeOptions(qe.opts, desc.Options)
		if desc.Limit != nil {
			opts = mergeOptions(opts, Options{"limit": *desc.Limit})
		}

		res, err := OrchestrateReadPreference(qe.coll.Database(), desc.ReadPref, func() (interface{}, error) {
			return qe.coll.MapReduce(ctx, desc.Map, desc.Reduce, desc.Out, desc.Query, opts)
		})
		if err != nil {
			return nil, err
		}

		// An output collection yields a cursor, which gets the same
		// treatment as a find result.  Inline results pass through as-is.
		if cursor, ok := res.(Cursor); ok {
			return qe.prepareCursor(ctx, cursor, desc.cursorConfig())
		}
		return res, nil

	case *DistinctQuery:
		return OrchestrateReadPreference(qe.coll.Database(), desc.ReadPref, func() (interface{}, error) {
			values, err := qe.coll.Distinct(ctx, desc.Field, desc.Query, qe.opts)
			if err != nil {
				return nil, err
			}
			return NewArrayIterator(values), nil
		})

	case *GeoNearQuery:
		opts := mergeOptions(qe.opts, desc.Options)
		if desc.Limit != nil {
			opts = mergeOptions(opts, Options{"num": *desc.Limit})
		}

		return OrchestrateReadPreference(qe.coll.Database(), desc.ReadPref, func() (interface{}, error) {
			values, err := qe.coll.Near(ctx, desc.Near, desc.Query, opts)
			if err != nil {
				return nil, err
			}
			return NewArrayIterator(values), nil
		})

	case *CountQuery:
		// Counts scope the override to the collection itself, not to the
		// owning database, and ignore the caller's options bag.
		return OrchestrateReadPreference(qe.coll, desc.ReadPref, func() (interface{}, error) {
			return qe.coll.Count(ctx, desc.Query)
		})
	}

	return nil, invalidDescriptorError{QueryType: qe.desc.Type()}
}

// prepareCursor applies the descriptor's cursor configuration to a raw
// cursor.  The read preference goes first so it is in place before the
// driver issues the query, and eager wrapping goes last so the buffer
// captures all prior configuration.
func (qe *QueryExecutor) prepareCursor(ctx context.Context, cursor Cursor, cfg cursorConfig) (Cursor, error) {
	if cfg.ReadPref != nil {
		cursor.SetReadPreference(*cfg.ReadPref)
	}

	if cfg.Hint != nil {
		cursor.SetHint(cfg.Hint)
	}
	if cfg.Immortal != nil {
		cursor.SetImmortal(*cfg.Immortal)
	}
	if cfg.Limit != nil {
		cursor.SetLimit(*cfg.Limit)
	}
	if cfg.Skip != nil {
		cursor.SetSkip(*cfg.Skip)
	}
	if cfg.SlaveOK != nil {
		cursor.SetSlaveOK(*cfg.SlaveOK)
	}
	if cfg.Sort != nil {
		cursor.SetSort(cfg.Sort)
	}

	if cfg.Snapshot {
		cursor.SetSnapshot(true)
	}

	if cfg.EagerCursor {
		return NewEagerCursor(ctx, cursor)
	}

	return cursor, nil
}

// Iter returns the query's result iterator, executing the query on first
// call and memoizing the outcome.  Only the find and command-style kinds
// produce an iterable result; the write kinds and counts fail with
// ErrUnsupportedOperation before any execution occurs.
func (qe *QueryExecutor) Iter(ctx context.Context) (Iterator, error) {
	if !slices.Contains(iterableQueryTypes, qe.desc.Type()) {
		return nil, unsupportedOperationError{
			QueryType: qe.desc.Type(),
			Operation: "Iter",
		}
	}

	if it := qe.iterFast.Load(); it != nil {
		return *it, nil
	}

	qe.iterLock.Lock()
	defer qe.iterLock.Unlock()

	if it := qe.iterFast.Load(); it != nil {
		return *it, nil
	}

	res, err := qe.Execute(ctx)
	if err != nil {
		// not memoized, the next call re-executes
		return nil, err
	}

	it, ok := res.(Iterator)
	if !ok {
		return nil, unexpectedResultError{
			QueryType: qe.desc.Type(),
			Result:    res,
		}
	}

	qe.iterFast.Store(&it)
	return it, nil
}

// Count reports the size of the query result.  The foundOnly semantics
// belong to the cursor: when false, any limit and skip are ignored.
func (qe *QueryExecutor) Count(ctx context.Context, foundOnly bool) (int64, error) {
	it, err := qe.Iter(ctx)
	if err != nil {
		return 0, err
	}
	return it.Count(ctx, foundOnly)
}

// ToArray drains the query result into an ordered slice.
func (qe *QueryExecutor) ToArray(ctx context.Context) ([]interface{}, error) {
	it, err := qe.Iter(ctx)
	if err != nil {
		return nil, err
	}
	return it.ToArray(ctx)
}

// One returns the single result of the query, or nil when the result is
// empty.
func (qe *QueryExecutor) One(ctx context.Context) (interface{}, error) {
	it, err := qe.Iter(ctx)
	if err != nil {
		return nil, err
	}
	return it.One(ctx)
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
