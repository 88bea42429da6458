package mgox

import (
	"testing"

	"github.com/mongoqx/mongoqx"
	"github.com/stretchr/testify/require"
	"gopkg.in/mgo.v2"
)

func TestReadPrefModeRoundTrip(t *testing.T) {
	modes := []mongoqx.ReadPrefMode{
		mongoqx.ReadPrefPrimary,
		mongoqx.ReadPrefPrimaryPreferred,
		mongoqx.ReadPrefSecondary,
		mongoqx.ReadPrefSecondaryPreferred,
		mongoqx.ReadPrefNearest,
	}

	for _, mode := range modes {
		rp := readPrefForMode(modeForReadPref(mode))
		require.Equal(t, mode, rp.Mode)
	}
}

func TestLegacyModesMapToSecondaryPreferred(t *testing.T) {
	for _, mode := range []mgo.Mode{mgo.Eventual, mgo.Monotonic} {
		rp := readPrefForMode(mode)
		require.Equal(t, mongoqx.ReadPrefSecondaryPreferred, rp.Mode)
	}
}

func TestUnknownModeDefaultsToPrimary(t *testing.T) {
	require.Equal(t, mgo.Primary, modeForReadPref(mongoqx.ReadPrefMode("bogus")))
}
