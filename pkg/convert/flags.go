package convert

// FlagSet is the set of flag names enabled for one invocation of a rule.
//
// A nil FlagSet means "no flag context": the rule runs unconditionally, as
// happens for queue-level application. A non-nil FlagSet, even an empty
// one, engages the positive/negative flag gates of the invoked rule; this
// is how content and concluding replacements inherit the flags matched by
// the invoking rule's flags group.
type FlagSet map[string]struct{}

// NewFlagSet returns a non-nil FlagSet containing the given names.
func NewFlagSet(names ...string) FlagSet {
	set := make(FlagSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Has reports whether name is enabled.
func (s FlagSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}
