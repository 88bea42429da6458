package mgox

import (
	"github.com/mongoqx/mongoqx"
	"gopkg.in/mgo.v2"
)

func modeForReadPref(mode mongoqx.ReadPrefMode) mgo.Mode {
	switch mode {
	case mongoqx.ReadPrefPrimary:
		return mgo.Primary
	case mongoqx.ReadPrefPrimaryPreferred:
		return mgo.PrimaryPreferred
	case mongoqx.ReadPrefSecondary:
		return mgo.Secondary
	case mongoqx.ReadPrefSecondaryPreferred:
		return mgo.SecondaryPreferred
	case mongoqx.ReadPrefNearest:
		return mgo.Nearest
	}
	return mgo.Primary
}

func readPrefForMode(mode mgo.Mode) mongoqx.ReadPref {
	switch mode {
	case mgo.Primary:
		return mongoqx.ReadPref{Mode: mongoqx.ReadPrefPrimary}
	case mgo.PrimaryPreferred:
		return mongoqx.ReadPref{Mode: mongoqx.ReadPrefPrimaryPreferred}
	case mgo.Secondary:
		return mongoqx.ReadPref{Mode: mongoqx.ReadPrefSecondary}
	case mgo.SecondaryPreferred, mgo.Eventual, mgo.Monotonic:
		return mongoqx.ReadPref{Mode: mongoqx.ReadPrefSecondaryPreferred}
	case mgo.Nearest:
		return mongoqx.ReadPref{Mode: mongoqx.ReadPrefNearest}
	}
	return mongoqx.ReadPref{Mode: mongoqx.ReadPrefPrimary}
}

func applyReadPref(sess *mgo.Session, rp mongoqx.ReadPref) {
	sess.SetMode(modeForReadPref(rp.Mode), true)
	if len(rp.Tags) > 0 {
		sess.SelectServers(rp.Tags...)
	}
}
