package mgox

import (
	"context"

	"github.com/mongoqx/mongoqx"
	"github.com/pkg/errors"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// Cursor is a deferred find: it records configuration and only builds the
// mgo query when iteration (or a terminal read) begins.  Configuration
// applied after that has no effect, matching the Cursor contract.
type Cursor struct {
	coll  *mgo.Collection
	query bson.M
	sel   bson.M

	rp       *mongoqx.ReadPref
	hint     interface{}
	immortal bool
	limit    int64
	skip     int64
	slaveOK  bool
	sort     bson.D
	snapshot bool

	ownedSess *mgo.Session
	iter      *mgo.Iter
}

var _ mongoqx.Cursor = (*Cursor)(nil)

func (c *Cursor) SetReadPreference(rp mongoqx.ReadPref) { c.rp = &rp }

func (c *Cursor) SetHint(hint interface{}) { c.hint = hint }

func (c *Cursor) SetImmortal(immortal bool) { c.immortal = immortal }

func (c *Cursor) SetLimit(limit int64) { c.limit = limit }

func (c *Cursor) SetSkip(skip int64) { c.skip = skip }

func (c *Cursor) SetSlaveOK(slaveOk bool) { c.slaveOK = slaveOk }

func (c *Cursor) SetSort(sort bson.D) { c.sort = sort }

func (c *Cursor) SetSnapshot(snapshot bool) { c.snapshot = snapshot }

// target returns the collection handle queries issue on.  Read preference,
// slaveOk and cursor-timeout settings are session level in mgo, so any of
// them forces a private session copy, released on Close.
func (c *Cursor) target() *mgo.Collection {
	if c.rp == nil && !c.slaveOK && !c.immortal {
		return c.coll
	}

	if c.ownedSess == nil {
		sess := c.coll.Database.Session.Copy()
		if c.rp != nil {
			applyReadPref(sess, *c.rp)
		} else if c.slaveOK {
			sess.SetMode(mgo.SecondaryPreferred, true)
		}
		if c.immortal {
			sess.SetCursorTimeout(0)
		}
		c.ownedSess = sess
	}

	return c.ownedSess.DB(c.coll.Database.Name).C(c.coll.Name)
}

func (c *Cursor) buildQuery(applyRange bool) *mgo.Query {
	q := c.target().Find(c.query)

	if len(c.sel) > 0 {
		q = q.Select(c.sel)
	}
	if c.sort != nil {
		if fields, ok := sortFields(c.sort); ok {
			q = q.Sort(fields...)
		}
	}
	if c.hint != nil {
		if fields, ok := hintFields(c.hint); ok {
			q = q.Hint(fields...)
		}
	}

	if applyRange {
		if c.limit > 0 {
			q = q.Limit(int(c.limit))
		}
		if c.skip > 0 {
			q = q.Skip(int(c.skip))
		}
	}

	if c.snapshot {
		q = q.Snapshot()
	}

	return q
}

func (c *Cursor) Next(result interface{}) bool {
	if c.iter == nil {
		c.iter = c.buildQuery(true).Iter()
	}
	return c.iter.Next(result)
}

func (c *Cursor) Err() error {
	if c.iter == nil {
		return nil
	}
	return c.iter.Err()
}

func (c *Cursor) Close() error {
	var err error
	if c.iter != nil {
		err = c.iter.Close()
		c.iter = nil
	}
	if c.ownedSess != nil {
		c.ownedSess.Close()
		c.ownedSess = nil
	}
	return err
}

// Count re-issues the recorded filter as a count.  With foundOnly the
// recorded limit and skip participate; without it they are ignored.
func (c *Cursor) Count(ctx context.Context, foundOnly bool) (int64, error) {
	n, err := c.buildQuery(foundOnly).Count()
	if err != nil {
		return 0, errors.Wrap(err, "count failed")
	}
	return int64(n), nil
}

func (c *Cursor) ToArray(ctx context.Context) ([]interface{}, error) {
	var results []interface{}
	if err := c.buildQuery(true).All(&results); err != nil {
		return nil, errors.Wrap(err, "find failed")
	}
	return results, nil
}

func (c *Cursor) One(ctx context.Context) (interface{}, error) {
	var doc bson.M
	err := c.buildQuery(true).One(&doc)
	if err == mgo.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "find failed")
	}
	return doc, nil
}

// sortFields renders an ordered sort document into mgo's field-name form,
// "-field" marking descending order.
func sortFields(sort bson.D) ([]string, bool) {
	var fields []string
	for _, elem := range sort {
		if dir, ok := sortDirection(elem.Value); ok && dir < 0 {
			fields = append(fields, "-"+elem.Name)
		} else {
			fields = append(fields, elem.Name)
		}
	}
	return fields, len(fields) > 0
}

func sortFieldsAny(sort interface{}) ([]string, bool) {
	switch val := sort.(type) {
	case bson.D:
		return sortFields(val)
	case []string:
		return val, len(val) > 0
	case string:
		return []string{val}, true
	}
	return nil, false
}

func hintFields(hint interface{}) ([]string, bool) {
	return sortFieldsAny(hint)
}

func sortDirection(val interface{}) (int, bool) {
	switch dir := val.(type) {
	case int:
		return dir, true
	case int32:
		return int(dir), true
	case int64:
		return int(dir), true
	case float64:
		return int(dir), true
	case string:
		if dir == "desc" {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}
