package mgox

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/mgo.v2/bson"
)

func TestSortFields(t *testing.T) {
	fields, ok := sortFields(bson.D{
		{Name: "ts", Value: -1},
		{Name: "name", Value: 1},
		{Name: "rank", Value: "desc"},
	})
	require.True(t, ok)
	require.Equal(t, []string{"-ts", "name", "-rank"}, fields)

	_, ok = sortFields(bson.D{})
	require.False(t, ok)
}

func TestSortFieldsAny(t *testing.T) {
	fields, ok := sortFieldsAny("name")
	require.True(t, ok)
	require.Equal(t, []string{"name"}, fields)

	fields, ok = sortFieldsAny([]string{"-ts", "name"})
	require.True(t, ok)
	require.Equal(t, []string{"-ts", "name"}, fields)

	fields, ok = sortFieldsAny(bson.D{{Name: "ts", Value: int64(-1)}})
	require.True(t, ok)
	require.Equal(t, []string{"-ts"}, fields)

	_, ok = sortFieldsAny(42)
	require.False(t, ok)
}

func TestHintFields(t *testing.T) {
	fields, ok := hintFields("status_idx")
	require.True(t, ok)
	require.Equal(t, []string{"status_idx"}, fields)

	fields, ok = hintFields(bson.D{
		{Name: "status", Value: 1},
		{Name: "ts", Value: -1},
	})
	require.True(t, ok)
	require.Equal(t, []string{"status", "-ts"}, fields)
}
