package mongoqx

import (
	"context"
	"fmt"

	"gopkg.in/mgo.v2/bson"
)

// Test doubles for the driver surface.  Operation methods panic when their
// Func is unset so a test fails loudly on an unexpected driver call;
// read-preference state is tracked directly so the scoped-override tests
// can assert on the set/restore sequence.

type DatabaseMock struct {
	Pref     ReadPref
	PrefSets []ReadPref
}

var _ Database = (*DatabaseMock)(nil)

func (m *DatabaseMock) ReadPreference() ReadPref { return m.Pref }

func (m *DatabaseMock) SetReadPreference(rp ReadPref) {
	m.Pref = rp
	m.PrefSets = append(m.PrefSets, rp)
}

type CollectionMock struct {
	FindFunc          func(ctx context.Context, query bson.M, sel bson.M) (Cursor, error)
	FindAndUpdateFunc func(ctx context.Context, query bson.M, update bson.M, opts Options) (bson.M, error)
	FindAndRemoveFunc func(ctx context.Context, query bson.M, opts Options) (bson.M, error)
	InsertFunc        func(ctx context.Context, doc interface{}, opts Options) (*WriteResult, error)
	UpdateFunc        func(ctx context.Context, query bson.M, update bson.M, opts Options) (*WriteResult, error)
	RemoveFunc        func(ctx context.Context, query bson.M, opts Options) (*WriteResult, error)
	GroupFunc         func(ctx context.Context, keys interface{}, initial bson.M, reduce string, opts Options) ([]interface{}, error)
	MapReduceFunc     func(ctx context.Context, mapFn string, reduceFn string, out interface{}, query bson.M, opts Options) (interface{}, error)
	DistinctFunc      func(ctx context.Context, field string, query bson.M, opts Options) ([]interface{}, error)
	NearFunc          func(ctx context.Context, near interface{}, query bson.M, opts Options) ([]interface{}, error)
	CountFunc         func(ctx context.Context, query bson.M) (int64, error)

	Db       *DatabaseMock
	Pref     ReadPref
	PrefSets []ReadPref

	FindCalls  int
	CountCalls int
}

var _ Collection = (*CollectionMock)(nil)

func newCollectionMock() *CollectionMock {
	return &CollectionMock{
		Db: &DatabaseMock{},
	}
}

func (m *CollectionMock) Database() Database { return m.Db }

func (m *CollectionMock) ReadPreference() ReadPref { return m.Pref }

func (m *CollectionMock) SetReadPreference(rp ReadPref) {
	m.Pref = rp
	m.PrefSets = append(m.PrefSets, rp)
}

func (m *CollectionMock) Find(ctx context.Context, query bson.M, sel bson.M) (Cursor, error) {
	if m.FindFunc == nil {
		panic("unexpected call to Find")
	}
	m.FindCalls++
	return m.FindFunc(ctx, query, sel)
}

func (m *CollectionMock) FindAndUpdate(ctx context.Context, query bson.M, update bson.M, opts Options) (bson.M, error) {
	if m.FindAndUpdateFunc == nil {
		panic("unexpected call to FindAndUpdate")
	}
	return m.FindAndUpdateFunc(ctx, query, update, opts)
}

func (m *CollectionMock) FindAndRemove(ctx context.Context, query bson.M, opts Options) (bson.M, error) {
	if m.FindAndRemoveFunc == nil {
		panic("unexpected call to FindAndRemove")
	}
	return m.FindAndRemoveFunc(ctx, query, opts)
}

func (m *CollectionMock) Insert(ctx context.Context, doc interface{}, opts Options) (*WriteResult, error) {
	if m.InsertFunc == nil {
		panic("unexpected call to Insert")
	}
	return m.InsertFunc(ctx, doc, opts)
}

func (m *CollectionMock) Update(ctx context.Context, query bson.M, update bson.M, opts Options) (*WriteResult, error) {
	if m.UpdateFunc == nil {
		panic("unexpected call to Update")
	}
	return m.UpdateFunc(ctx, query, update, opts)
}

func (m *CollectionMock) Remove(ctx context.Context, query bson.M, opts Options) (*WriteResult, error) {
	if m.RemoveFunc == nil {
		panic("unexpected call to Remove")
	}
	return m.RemoveFunc(ctx, query, opts)
}

func (m *CollectionMock) Group(ctx context.Context, keys interface{}, initial bson.M, reduce string, opts Options) ([]interface{}, error) {
	if m.GroupFunc == nil {
		panic("unexpected call to Group")
	}
	return m.GroupFunc(ctx, keys, initial, reduce, opts)
}

func (m *CollectionMock) MapReduce(ctx context.Context, mapFn string, reduceFn string, out interface{}, query bson.M, opts Options) (interface{}, error) {
	if m.MapReduceFunc == nil {
		panic("unexpected call to MapReduce")
	}
	return m.MapReduceFunc(ctx, mapFn, reduceFn, out, query, opts)
}

func (m *CollectionMock) Distinct(ctx context.Context, field string, query bson.M, opts Options) ([]interface{}, error) {
	if m.DistinctFunc == nil {
		panic("unexpected call to Distinct")
	}
	return m.DistinctFunc(ctx, field, query, opts)
}

func (m *CollectionMock) Near(ctx context.Context, near interface{}, query bson.M, opts Options) ([]interface{}, error) {
	if m.NearFunc == nil {
		panic("unexpected call to Near")
	}
	return m.NearFunc(ctx, near, query, opts)
}

func (m *CollectionMock) Count(ctx context.Context, query bson.M) (int64, error) {
	if m.CountFunc == nil {
		panic("unexpected call to Count")
	}
	m.CountCalls++
	return m.CountFunc(ctx, query)
}

// CursorMock records every configuration and read call, in order, so tests
// can assert on the cursor preparation sequence.
type CursorMock struct {
	Ops []string

	NextFunc    func(result interface{}) bool
	CountFunc   func(ctx context.Context, foundOnly bool) (int64, error)
	ToArrayFunc func(ctx context.Context) ([]interface{}, error)
	OneFunc     func(ctx context.Context) (interface{}, error)
	CloseErr    error
}

var _ Cursor = (*CursorMock)(nil)

func (m *CursorMock) record(op string) {
	m.Ops = append(m.Ops, op)
}

func (m *CursorMock) SetReadPreference(rp ReadPref) {
	m.record(fmt.Sprintf("setReadPreference(%s)", rp.Mode))
}

func (m *CursorMock) SetHint(hint interface{}) {
	m.record(fmt.Sprintf("setHint(%v)", hint))
}

func (m *CursorMock) SetImmortal(immortal bool) {
	m.record(fmt.Sprintf("setImmortal(%v)", immortal))
}

func (m *CursorMock) SetLimit(limit int64) {
	m.record(fmt.Sprintf("setLimit(%d)", limit))
}

func (m *CursorMock) SetSkip(skip int64) {
	m.record(fmt.Sprintf("setSkip(%d)", skip))
}

func (m *CursorMock) SetSlaveOK(slaveOk bool) {
	m.record(fmt.Sprintf("setSlaveOk(%v)", slaveOk))
}

func (m *CursorMock) SetSort(sort bson.D) {
	m.record("setSort")
}

func (m *CursorMock) SetSnapshot(snapshot bool) {
	m.record(fmt.Sprintf("setSnapshot(%v)", snapshot))
}

func (m *CursorMock) Next(result interface{}) bool {
	if m.NextFunc == nil {
		panic("unexpected call to Next")
	}
	m.record("next")
	return m.NextFunc(result)
}

func (m *CursorMock) Err() error { return nil }

func (m *CursorMock) Close() error {
	m.record("close")
	return m.CloseErr
}

func (m *CursorMock) Count(ctx context.Context, foundOnly bool) (int64, error) {
	if m.CountFunc == nil {
		panic("unexpected call to Count")
	}
	m.record(fmt.Sprintf("count(%v)", foundOnly))
	return m.CountFunc(ctx, foundOnly)
}

func (m *CursorMock) ToArray(ctx context.Context) ([]interface{}, error) {
	if m.ToArrayFunc == nil {
		panic("unexpected call to ToArray")
	}
	m.record("toArray")
	return m.ToArrayFunc(ctx)
}

func (m *CursorMock) One(ctx context.Context) (interface{}, error) {
	if m.OneFunc == nil {
		panic("unexpected call to One")
	}
	m.record("one")
	return m.OneFunc(ctx)
}
