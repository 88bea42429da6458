package mgox

import (
	"context"

	"github.com/mongoqx/mongoqx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// Collection wraps one mgo collection handle on a private session copy.
// Command-style operations (group, mapReduce, distinct, geoNear) issue
// through the owning database's session instead, so that database-scoped
// read-preference overrides take effect for exactly those operations.
type Collection struct {
	logger *zap.Logger
	coll   *mgo.Collection
	db     *Database
	rp     mongoqx.ReadPref
}

var _ mongoqx.Collection = (*Collection)(nil)

func (c *Collection) Name() string { return c.coll.Name }

func (c *Collection) Database() mongoqx.Database { return c.db }

func (c *Collection) ReadPreference() mongoqx.ReadPref { return c.rp }

func (c *Collection) SetReadPreference(rp mongoqx.ReadPref) {
	c.logger.Debug("switching collection read preference",
		zap.String("mode", string(rp.Mode)))

	applyReadPref(c.coll.Database.Session, rp)
	c.rp = rp
}

// Close releases the collection's session copy.
func (c *Collection) Close() {
	c.coll.Database.Session.Close()
}

// dbColl returns a handle for this collection bound to the database's
// session.
func (c *Collection) dbColl() *mgo.Collection {
	return c.db.db.C(c.coll.Name)
}

func (c *Collection) Find(ctx context.Context, query bson.M, sel bson.M) (mongoqx.Cursor, error) {
	return &Cursor{
		coll:  c.coll,
		query: query,
		sel:   sel,
	}, nil
}

func (c *Collection) FindAndUpdate(ctx context.Context, query bson.M, update bson.M, opts mongoqx.Options) (bson.M, error) {
	change := mgo.Change{Update: update}
	if upsert, ok := optBool(opts, "upsert"); ok {
		change.Upsert = upsert
	}
	if returnNew, ok := optBool(opts, "new"); ok {
		change.ReturnNew = returnNew
	}

	q := c.findAndModifyQuery(query, opts)

	var doc bson.M
	_, err := q.Apply(change, &doc)
	if err == mgo.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "findAndModify update failed")
	}

	return doc, nil
}

func (c *Collection) FindAndRemove(ctx context.Context, query bson.M, opts mongoqx.Options) (bson.M, error) {
	q := c.findAndModifyQuery(query, opts)

	var doc bson.M
	_, err := q.Apply(mgo.Change{Remove: true}, &doc)
	if err == mgo.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "findAndModify remove failed")
	}

	return doc, nil
}

func (c *Collection) findAndModifyQuery(query bson.M, opts mongoqx.Options) *mgo.Query {
	q := c.coll.Find(query)
	if sel, ok := opts["select"]; ok {
		q = q.Select(sel)
	}
	if sortVal, ok := opts["sort"]; ok {
		if fields, ok := sortFieldsAny(sortVal); ok {
			q = q.Sort(fields...)
		}
	}
	return q
}

func (c *Collection) Insert(ctx context.Context, doc interface{}, opts mongoqx.Options) (*mongoqx.WriteResult, error) {
	docs := []interface{}{doc}
	if multi, ok := doc.([]interface{}); ok {
		docs = multi
	}

	if err := c.coll.Insert(docs...); err != nil {
		return nil, errors.Wrap(err, "insert failed")
	}

	return &mongoqx.WriteResult{Inserted: len(docs)}, nil
}

func (c *Collection) Update(ctx context.Context, query bson.M, update bson.M, opts mongoqx.Options) (*mongoqx.WriteResult, error) {
	multiple, _ := optBool(opts, "multiple")
	upsert, _ := optBool(opts, "upsert")

	switch {
	case multiple:
		info, err := c.coll.UpdateAll(query, update)
		if err != nil {
			return nil, errors.Wrap(err, "update failed")
		}
		return changeResult(info), nil

	case upsert:
		info, err := c.coll.Upsert(query, update)
		if err != nil {
			return nil, errors.Wrap(err, "upsert failed")
		}
		return changeResult(info), nil

	default:
		err := c.coll.Update(query, update)
		if err == mgo.ErrNotFound {
			return &mongoqx.WriteResult{}, nil
		} else if err != nil {
			return nil, errors.Wrap(err, "update failed")
		}
		return &mongoqx.WriteResult{Matched: 1, Updated: 1}, nil
	}
}

func (c *Collection) Remove(ctx context.Context, query bson.M, opts mongoqx.Options) (*mongoqx.WriteResult, error) {
	if justOne, _ := optBool(opts, "justOne"); justOne {
		err := c.coll.Remove(query)
		if err == mgo.ErrNotFound {
			return &mongoqx.WriteResult{}, nil
		} else if err != nil {
			return nil, errors.Wrap(err, "remove failed")
		}
		return &mongoqx.WriteResult{Matched: 1, Removed: 1}, nil
	}

	info, err := c.coll.RemoveAll(query)
	if err != nil {
		return nil, errors.Wrap(err, "remove failed")
	}
	return changeResult(info), nil
}

func (c *Collection) Group(ctx context.Context, keys interface{}, initial bson.M, reduce string, opts mongoqx.Options) ([]interface{}, error) {
	group := bson.D{{Name: "ns", Value: c.coll.Name}}

	// a string key is a javascript key function
	if keyFn, ok := keys.(string); ok {
		group = append(group, bson.DocElem{Name: "$keyf", Value: keyFn})
	} else {
		group = append(group, bson.DocElem{Name: "key", Value: keys})
	}

	group = append(group,
		bson.DocElem{Name: "initial", Value: initial},
		bson.DocElem{Name: "$reduce", Value: reduce})

	if cond, ok := opts["cond"]; ok {
		group = append(group, bson.DocElem{Name: "cond", Value: cond})
	}
	if finalize, ok := opts["finalize"].(string); ok {
		group = append(group, bson.DocElem{Name: "finalize", Value: finalize})
	}

	var res struct {
		Retval []interface{} `bson:"retval"`
		Count  int           `bson:"count"`
		Keys   int           `bson:"keys"`
	}
	err := c.db.db.Run(bson.D{{Name: "group", Value: group}}, &res)
	if err != nil {
		return nil, errors.Wrap(err, "group failed")
	}

	return res.Retval, nil
}

func (c *Collection) MapReduce(ctx context.Context, mapFn string, reduceFn string, out interface{}, query bson.M, opts mongoqx.Options) (interface{}, error) {
	job := &mgo.MapReduce{
		Map:    mapFn,
		Reduce: reduceFn,
		Out:    out,
	}
	if finalize, ok := opts["finalize"].(string); ok {
		job.Finalize = finalize
	}
	if scope, ok := opts["scope"]; ok {
		job.Scope = scope
	}

	q := c.dbColl().Find(query)
	if limit, ok := optInt(opts, "limit"); ok {
		q = q.Limit(limit)
	}

	var results []interface{}
	info, err := q.MapReduce(job, &results)
	if err != nil {
		return nil, errors.Wrap(err, "mapReduce failed")
	}

	// results written to an output collection come back as a cursor over
	// that collection, inline results as an in-memory iterator
	if info != nil && info.Collection != "" {
		outDb := c.db.db
		if info.Database != "" && info.Database != c.db.db.Name {
			outDb = c.db.db.Session.DB(info.Database)
		}

		return &Cursor{
			coll:  outDb.C(info.Collection),
			query: bson.M{},
		}, nil
	}

	return mongoqx.NewArrayIterator(results), nil
}

func (c *Collection) Distinct(ctx context.Context, field string, query bson.M, opts mongoqx.Options) ([]interface{}, error) {
	var values []interface{}
	err := c.dbColl().Find(query).Distinct(field, &values)
	if err != nil {
		return nil, errors.Wrap(err, "distinct failed")
	}

	return values, nil
}

func (c *Collection) Near(ctx context.Context, near interface{}, query bson.M, opts mongoqx.Options) ([]interface{}, error) {
	cmd := bson.D{
		{Name: "geoNear", Value: c.coll.Name},
		{Name: "near", Value: near},
	}
	if len(query) > 0 {
		cmd = append(cmd, bson.DocElem{Name: "query", Value: query})
	}

	optKeys := maps.Keys(opts)
	slices.Sort(optKeys)
	for _, k := range optKeys {
		cmd = append(cmd, bson.DocElem{Name: k, Value: opts[k]})
	}

	var res struct {
		Results []interface{} `bson:"results"`
	}
	if err := c.db.db.Run(cmd, &res); err != nil {
		return nil, errors.Wrap(err, "geoNear failed")
	}

	return res.Results, nil
}

func (c *Collection) Count(ctx context.Context, query bson.M) (int64, error) {
	n, err := c.coll.Find(query).Count()
	if err != nil {
		return 0, errors.Wrap(err, "count failed")
	}

	return int64(n), nil
}

func changeResult(info *mgo.ChangeInfo) *mongoqx.WriteResult {
	if info == nil {
		return &mongoqx.WriteResult{}
	}
	return &mongoqx.WriteResult{
		Matched:    info.Matched,
		Updated:    info.Updated,
		Removed:    info.Removed,
		UpsertedId: info.UpsertedId,
	}
}

func optBool(opts mongoqx.Options, name string) (bool, bool) {
	val, ok := opts[name].(bool)
	return val, ok
}

func optInt(opts mongoqx.Options, name string) (int, bool) {
	switch val := opts[name].(type) {
	case int:
		return val, true
	case int32:
		return int(val), true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	}
	return 0, false
}
