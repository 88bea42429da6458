package zaputils

import (
	"fmt"

	"go.uber.org/zap"
)

func DatabaseName(key string, val string) zap.Field {
	return zap.String(key, val)
}

func CollectionName(key string, val string) zap.Field {
	return zap.String(key, val)
}

// QueryKind logs a query type by its string form.
func QueryKind(key string, val fmt.Stringer) zap.Field {
	return zap.Stringer(key, val)
}

type LoggableNamespace struct {
	DatabaseName   string
	CollectionName string
}

func (e LoggableNamespace) String() string {
	return fmt.Sprintf("%s.%s", e.DatabaseName, e.CollectionName)
}

// Namespace logs a fully-qualified collection name.
func Namespace(key string, database, collection string) zap.Field {
	return zap.Stringer(key, LoggableNamespace{
		DatabaseName:   database,
		CollectionName: collection,
	})
}
