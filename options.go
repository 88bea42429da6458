package mongoqx

// Options is the bag of driver-call options supplied by the caller.  The
// bag itself is never mutated; every dispatch works on a derived copy.
type Options map[string]interface{}

// mergeOptions copies base and lays extra over it.  A nil value in extra is
// treated the same as an absent key, matching the descriptor merge rule
// that only present, non-nil fields participate.
func mergeOptions(base Options, extra Options) Options {
	merged := make(Options, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		if v != nil {
			merged[k] = v
		}
	}
	return merged
}
