package mongoqx

import (
	"fmt"

	"gopkg.in/mgo.v2/bson"
)

// QueryType identifies which driver operation a descriptor dispatches to.
type QueryType int

const (
	QueryTypeFind QueryType = iota + 1
	QueryTypeFindAndUpdate
	QueryTypeFindAndRemove
	QueryTypeInsert
	QueryTypeUpdate
	QueryTypeRemove
	QueryTypeGroup
	QueryTypeMapReduce
	QueryTypeDistinct
	QueryTypeGeoNear
	QueryTypeCount
)

func (qt QueryType) String() string {
	switch qt {
	case QueryTypeFind:
		return "find"
	case QueryTypeFindAndUpdate:
		return "findAndUpdate"
	case QueryTypeFindAndRemove:
		return "findAndRemove"
	case QueryTypeInsert:
		return "insert"
	case QueryTypeUpdate:
		return "update"
	case QueryTypeRemove:
		return "remove"
	case QueryTypeGroup:
		return "group"
	case QueryTypeMapReduce:
		return "mapReduce"
	case QueryTypeDistinct:
		return "distinct"
	case QueryTypeGeoNear:
		return "geoNear"
	case QueryTypeCount:
		return "count"
	}
	return fmt.Sprintf("unknown(%d)", int(qt))
}

// Descriptor is the typed query specification produced by an upstream
// builder.  Each concrete descriptor carries exactly the fields its kind
// needs; optional fields are nil-able and a nil field is omitted from the
// driver call entirely.
type Descriptor interface {
	Type() QueryType
	debugFields() bson.M
}

// cursorConfig is the subset of descriptor fields that gets applied to a
// cursor before iteration begins.
type cursorConfig struct {
	ReadPref    *ReadPref
	Hint        interface{}
	Immortal    *bool
	Limit       *int64
	Skip        *int64
	SlaveOK     *bool
	Sort        bson.D
	Snapshot    bool
	EagerCursor bool
}

// FindQuery selects documents and yields a configurable cursor.
type FindQuery struct {
	Query  bson.M
	Select bson.M

	ReadPref    *ReadPref
	Hint        interface{}
	Immortal    *bool
	Limit       *int64
	Skip        *int64
	SlaveOK     *bool
	Sort        bson.D
	Snapshot    bool
	EagerCursor bool
}

func (q *FindQuery) Type() QueryType { return QueryTypeFind }

func (q *FindQuery) cursorConfig() cursorConfig {
	return cursorConfig{
		ReadPref:    q.ReadPref,
		Hint:        q.Hint,
		Immortal:    q.Immortal,
		Limit:       q.Limit,
		Skip:        q.Skip,
		SlaveOK:     q.SlaveOK,
		Sort:        q.Sort,
		Snapshot:    q.Snapshot,
		EagerCursor: q.EagerCursor,
	}
}

func (q *FindQuery) debugFields() bson.M {
	fields := bson.M{"type": q.Type()}
	putDoc(fields, "query", q.Query)
	putDoc(fields, "select", q.Select)
	putReadPref(fields, q.ReadPref)
	putVal(fields, "hint", q.Hint)
	putBool(fields, "immortal", q.Immortal)
	putInt(fields, "limit", q.Limit)
	putInt(fields, "skip", q.Skip)
	putBool(fields, "slaveOkay", q.SlaveOK)
	if q.Sort != nil {
		fields["sort"] = q.Sort
	}
	if q.Snapshot {
		fields["snapshot"] = true
	}
	if q.EagerCursor {
		fields["eagerCursor"] = true
	}
	return fields
}

// FindAndUpdateQuery atomically updates the first matching document and
// returns it.
type FindAndUpdateQuery struct {
	Query  bson.M
	NewObj bson.M

	New    *bool
	Select bson.M
	Sort   bson.D
	Upsert *bool
}

func (q *FindAndUpdateQuery) Type() QueryType { return QueryTypeFindAndUpdate }

func (q *FindAndUpdateQuery) callOptions() Options {
	opts := Options{}
	if q.New != nil {
		opts["new"] = *q.New
	}
	if q.Select != nil {
		opts["select"] = q.Select
	}
	if q.Sort != nil {
		opts["sort"] = q.Sort
	}
	if q.Upsert != nil {
		opts["upsert"] = *q.Upsert
	}
	return opts
}

func (q *FindAndUpdateQuery) debugFields() bson.M {
	fields := bson.M{"type": q.Type()}
	putDoc(fields, "query", q.Query)
	putDoc(fields, "newObj", q.NewObj)
	putBool(fields, "new", q.New)
	putDoc(fields, "select", q.Select)
	if q.Sort != nil {
		fields["sort"] = q.Sort
	}
	putBool(fields, "upsert", q.Upsert)
	return fields
}

// FindAndRemoveQuery atomically removes the first matching document and
// returns it.
type FindAndRemoveQuery struct {
	Query bson.M

	Select bson.M
	Sort   bson.D
}

func (q *FindAndRemoveQuery) Type() QueryType { return QueryTypeFindAndRemove }

func (q *FindAndRemoveQuery) callOptions() Options {
	opts := Options{}
	if q.Select != nil {
		opts["select"] = q.Select
	}
	if q.Sort != nil {
		opts["sort"] = q.Sort
	}
	return opts
}

func (q *FindAndRemoveQuery) debugFields() bson.M {
	fields := bson.M{"type": q.Type()}
	putDoc(fields, "query", q.Query)
	putDoc(fields, "select", q.Select)
	if q.Sort != nil {
		fields["sort"] = q.Sort
	}
	return fields
}

// InsertQuery inserts a document, or a slice of documents.
type InsertQuery struct {
	NewObj interface{}
}

func (q *InsertQuery) Type() QueryType { return QueryTypeInsert }

func (q *InsertQuery) debugFields() bson.M {
	fields := bson.M{"type": q.Type()}
	putVal(fields, "newObj", q.NewObj)
	return fields
}

// UpdateQuery applies an update document to matching documents.
type UpdateQuery struct {
	Query  bson.M
	NewObj bson.M

	Multiple *bool
	Upsert   *bool
}

func (q *UpdateQuery) Type() QueryType { return QueryTypeUpdate }

func (q *UpdateQuery) callOptions() Options {
	opts := Options{}
	if q.Multiple != nil {
		opts["multiple"] = *q.Multiple
	}
	if q.Upsert != nil {
		opts["upsert"] = *q.Upsert
	}
	return opts
}

func (q *UpdateQuery) debugFields() bson.M {
	fields := bson.M{"type": q.Type()}
	putDoc(fields, "query", q.Query)
	putDoc(fields, "newObj", q.NewObj)
	putBool(fields, "multiple", q.Multiple)
	putBool(fields, "upsert", q.Upsert)
	return fields
}

// RemoveQuery deletes matching documents.
type RemoveQuery struct {
	Query bson.M
}

func (q *RemoveQuery) Type() QueryType { return QueryTypeRemove }

func (q *RemoveQuery) debugFields() bson.M {
	fields := bson.M{"type": q.Type()}
	putDoc(fields, "query", q.Query)
	return fields
}

// GroupQuery runs a group command.  Keys may be a key document or a
// javascript key function; Reduce is a javascript reduce function.
type GroupQuery struct {
	Keys    interface{}
	Initial bson.M
	Reduce  string
	Options Options

	Query    bson.M
	ReadPref *ReadPref
}

func (q *GroupQuery) Type() QueryType { return QueryTypeGroup }

func (q *GroupQuery) debugFields() bson.M {
	fields := bson.M{"type": q.Type()}
	fields["group"] = bson.M{
		"keys":    q.Keys,
		"initial": q.Initial,
		"reduce":  q.Reduce,
		"options": q.Options,
	}
	putDoc(fields, "query", q.Query)
	putReadPref(fields, q.ReadPref)
	return fields
}

// MapReduceQuery runs a mapReduce command.  Out selects the output target;
// a nil Out requests inline results.
type MapReduceQuery struct {
	Map     string
	Reduce  string
	Out     interface{}
	Options Options

	Query    bson.M
	Limit    *int64
	ReadPref *ReadPref
}

func (q *MapReduceQuery) Type() QueryType { return QueryTypeMapReduce }

func (q *MapReduceQuery) cursorConfig() cursorConfig {
	return cursorConfig{
		ReadPref: q.ReadPref,
		Limit:    q.Limit,
	}
}

func (q *MapReduceQuery) debugFields() bson.M {
	fields := bson.M{"type": q.Type()}
	fields["mapReduce"] = bson.M{
		"map":     q.Map,
		"reduce":  q.Reduce,
		"out":     q.Out,
		"options": q.Options,
	}
	putDoc(fields, "query", q.Query)
	putInt(fields, "limit", q.Limit)
	putReadPref(fields, q.ReadPref)
	return fields
}

// DistinctQuery collects the distinct values of a field.
type DistinctQuery struct {
	Field string
	Query bson.M

	ReadPref *ReadPref
}

func (q *DistinctQuery) Type() QueryType { return QueryTypeDistinct }

func (q *DistinctQuery) debugFields() bson.M {
	fields := bson.M{"type": q.Type()}
	fields["distinct"] = q.Field
	putDoc(fields, "query", q.Query)
	putReadPref(fields, q.ReadPref)
	return fields
}

// GeoNearQuery runs a geoNear command around a point.
type GeoNearQuery struct {
	Near    interface{}
	Query   bson.M
	Options Options

	Limit    *int64
	ReadPref *ReadPref
}

func (q *GeoNearQuery) Type() QueryType { return QueryTypeGeoNear }

func (q *GeoNearQuery) debugFields() bson.M {
	fields := bson.M{"type": q.Type()}
	fields["geoNear"] = bson.M{
		"near":    q.Near,
		"options": q.Options,
	}
	putDoc(fields, "query", q.Query)
	putInt(fields, "limit", q.Limit)
	putReadPref(fields, q.ReadPref)
	return fields
}

// CountQuery counts matching documents.  The caller's options bag is not
// forwarded for counts.
type CountQuery struct {
	Query bson.M

	ReadPref *ReadPref
}

func (q *CountQuery) Type() QueryType { return QueryTypeCount }

func (q *CountQuery) debugFields() bson.M {
	fields := bson.M{"type": q.Type()}
	putDoc(fields, "query", q.Query)
	putReadPref(fields, q.ReadPref)
	return fields
}

func putDoc(fields bson.M, name string, doc bson.M) {
	if doc != nil {
		fields[name] = doc
	}
}

func putVal(fields bson.M, name string, val interface{}) {
	if val != nil {
		fields[name] = val
	}
}

func putBool(fields bson.M, name string, val *bool) {
	if val != nil {
		fields[name] = *val
	}
}

func putInt(fields bson.M, name string, val *int64) {
	if val != nil {
		fields[name] = *val
	}
}

func putReadPref(fields bson.M, rp *ReadPref) {
	if rp != nil {
		fields["readPreference"] = rp.Mode
		if len(rp.Tags) > 0 {
			fields["readPreferenceTags"] = rp.Tags
		}
	}
}
