package mongoqx

import (
	"context"
	"fmt"
	"reflect"
)

// ArrayIterator is an Iterator over an in-memory slice of values.  The
// command-style query kinds produce one, and the eager cursor serves from
// one.
type ArrayIterator struct {
	values []interface{}
	pos    int
	err    error
}

var _ Iterator = (*ArrayIterator)(nil)

func NewArrayIterator(values []interface{}) *ArrayIterator {
	return &ArrayIterator{values: values}
}

func (it *ArrayIterator) Next(result interface{}) bool {
	if it.err != nil || it.pos >= len(it.values) {
		return false
	}

	val := it.values[it.pos]
	it.pos++

	if err := assignResult(result, val); err != nil {
		it.err = err
		return false
	}
	return true
}

func (it *ArrayIterator) Err() error { return it.err }

func (it *ArrayIterator) Close() error { return nil }

func (it *ArrayIterator) Count(ctx context.Context, foundOnly bool) (int64, error) {
	return int64(len(it.values)), nil
}

func (it *ArrayIterator) ToArray(ctx context.Context) ([]interface{}, error) {
	return it.values, nil
}

func (it *ArrayIterator) One(ctx context.Context) (interface{}, error) {
	if len(it.values) == 0 {
		return nil, nil
	}
	return it.values[0], nil
}

// assignResult stores val through the pointer in result, the way a driver
// decode would.  result must be a non-nil pointer to a type val is
// assignable to; anything else is a decode error.
func assignResult(result interface{}, val interface{}) error {
	dst := reflect.ValueOf(result)
	if dst.Kind() != reflect.Ptr || dst.IsNil() {
		return fmt.Errorf("result must be a non-nil pointer, got %T", result)
	}

	elem := dst.Elem()
	if val == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}

	src := reflect.ValueOf(val)
	if !src.Type().AssignableTo(elem.Type()) {
		return fmt.Errorf("cannot decode %T into %T", val, result)
	}

	elem.Set(src)
	return nil
}
