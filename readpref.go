package mongoqx

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/mgo.v2/bson"
)

// ReadPrefMode names a replica selection policy.
type ReadPrefMode string

const (
	ReadPrefPrimary            ReadPrefMode = "primary"
	ReadPrefPrimaryPreferred   ReadPrefMode = "primaryPreferred"
	ReadPrefSecondary          ReadPrefMode = "secondary"
	ReadPrefSecondaryPreferred ReadPrefMode = "secondaryPreferred"
	ReadPrefNearest            ReadPrefMode = "nearest"
)

// ReadPref is a read preference: a mode plus optional tag sets constraining
// which replicas may serve the read.
type ReadPref struct {
	Mode ReadPrefMode
	Tags []bson.D
}

func validReadPrefMode(mode ReadPrefMode) bool {
	return slices.Contains([]ReadPrefMode{
		ReadPrefPrimary,
		ReadPrefPrimaryPreferred,
		ReadPrefSecondary,
		ReadPrefSecondaryPreferred,
		ReadPrefNearest,
	}, mode)
}

type readPrefDoc struct {
	Mode ReadPrefMode        `json:"mode"`
	Tags []map[string]string `json:"tags"`
}

// ParseReadPreference parses either a bare mode name ("secondaryPreferred")
// or a JSON document of the form {"mode": ..., "tags": [{...}, ...]}.  An
// empty string yields the nearest mode.
func ParseReadPreference(rp string) (ReadPref, error) {
	if rp == "" {
		return ReadPref{Mode: ReadPrefNearest}, nil
	}

	var doc readPrefDoc
	if rp[0] == '{' {
		if err := json.Unmarshal([]byte(rp), &doc); err != nil {
			return ReadPref{}, fmt.Errorf("invalid read preference document: %v", err)
		}
	} else {
		doc.Mode = ReadPrefMode(rp)
	}

	if !validReadPrefMode(doc.Mode) {
		return ReadPref{}, fmt.Errorf("invalid read preference mode '%v'", doc.Mode)
	}

	var tags []bson.D
	for _, tagSet := range doc.Tags {
		keys := maps.Keys(tagSet)
		slices.Sort(keys)

		var tagDoc bson.D
		for _, k := range keys {
			tagDoc = append(tagDoc, bson.DocElem{Name: k, Value: tagSet[k]})
		}
		tags = append(tags, tagDoc)
	}

	return ReadPref{Mode: doc.Mode, Tags: tags}, nil
}

// OrchestrateReadPreference runs fn with the descriptor's read preference
// applied to target, restoring the previous preference on every exit path.
// A nil rp runs fn unmodified.  An error from fn surfaces after the
// restoration has completed.
func OrchestrateReadPreference[RespT any](
	target ReadPreferenceHolder,
	rp *ReadPref,
	fn func() (RespT, error),
) (RespT, error) {
	if rp == nil {
		return fn()
	}

	prevPref := target.ReadPreference()
	target.SetReadPreference(*rp)
	defer target.SetReadPreference(prevPref)

	return fn()
}
