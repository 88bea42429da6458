package mongoqx

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDescriptor    = errors.New("invalid query descriptor")
	ErrUnsupportedOperation = errors.New("operation not supported for this query type")
	ErrUnexpectedResult     = errors.New("unexpected result from driver")
)

type invalidDescriptorError struct {
	QueryType QueryType
}

func (e invalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid query descriptor type (%s)", e.QueryType)
}

func (e invalidDescriptorError) Unwrap() error {
	return ErrInvalidDescriptor
}

type unsupportedOperationError struct {
	QueryType QueryType
	Operation string
}

func (e unsupportedOperationError) Error() string {
	return fmt.Sprintf("%s is not supported for %s queries", e.Operation, e.QueryType)
}

func (e unsupportedOperationError) Unwrap() error {
	return ErrUnsupportedOperation
}

type unexpectedResultError struct {
	QueryType QueryType
	Result    interface{}
}

func (e unexpectedResultError) Error() string {
	return fmt.Sprintf("%s query returned a non-iterable result (%T)", e.QueryType, e.Result)
}

func (e unexpectedResultError) Unwrap() error {
	return ErrUnexpectedResult
}
