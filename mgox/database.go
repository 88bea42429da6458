package mgox

import (
	"github.com/mongoqx/mongoqx"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2"
)

type DatabaseOptions struct {
	Logger *zap.Logger
}

// Database wraps one mgo database handle on a private session copy, so
// that read-preference changes scoped to this database never leak into the
// caller's session.
type Database struct {
	logger *zap.Logger
	db     *mgo.Database
	rp     mongoqx.ReadPref
}

var _ mongoqx.Database = (*Database)(nil)

// NewDatabase copies sess and binds the named database to the copy.  Close
// releases the copy.
func NewDatabase(sess *mgo.Session, name string, opts *DatabaseOptions) *Database {
	if opts == nil {
		opts = &DatabaseOptions{}
	}

	dbSess := sess.Copy()

	return &Database{
		logger: loggerOrNop(opts.Logger).With(
			zap.String("database", name)),
		db: dbSess.DB(name),
		rp: readPrefForMode(dbSess.Mode()),
	}
}

// C binds the named collection on its own session copy.  The collection's
// read preference is independent of the database's, which counts rely on.
func (d *Database) C(name string) *Collection {
	collSess := d.db.Session.Copy()

	return &Collection{
		logger: d.logger.With(
			zap.String("collection", name)),
		coll: collSess.DB(d.db.Name).C(name),
		db:   d,
		rp:   readPrefForMode(collSess.Mode()),
	}
}

func (d *Database) Name() string { return d.db.Name }

func (d *Database) ReadPreference() mongoqx.ReadPref { return d.rp }

func (d *Database) SetReadPreference(rp mongoqx.ReadPref) {
	d.logger.Debug("switching database read preference",
		zap.String("mode", string(rp.Mode)))

	applyReadPref(d.db.Session, rp)
	d.rp = rp
}

// Close releases the database's session copy.  Collections created from it
// hold their own copies and close independently.
func (d *Database) Close() {
	d.db.Session.Close()
}
