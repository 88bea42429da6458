// Package mgox adapts an mgo session to the collection, database and
// cursor interfaces consumed by the query executor.
package mgox

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2"
)

type DialOptions struct {
	Logger  *zap.Logger
	Timeout time.Duration
}

// Dial connects to the deployment named by a mongodb:// connection string
// and returns the master session.  Callers own the session and close it
// when done.
func Dial(uri string, opts *DialOptions) (*mgo.Session, error) {
	if opts == nil {
		opts = &DialOptions{}
	}

	logger := loggerOrNop(opts.Logger)

	info, err := mgo.ParseURL(uri)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse connection string")
	}

	if opts.Timeout > 0 {
		info.Timeout = opts.Timeout
	}

	sess, err := mgo.DialWithInfo(info)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial server")
	}

	logger.Debug("connected",
		zap.Strings("addrs", info.Addrs),
		zap.String("database", info.Database))

	return sess, nil
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
