package convert

// Position describes where a rule is placed in the cascade queue when
// committed to a registry.
type Position int

const (
	// PositionNone registers the rule without queueing it; it can still
	// be invoked as a content, concluding, or sequence replacement.
	PositionNone Position = iota

	// PositionRoot queues the rule first. At most one rule per registry
	// may be root.
	PositionRoot

	// PositionBefore queues the rule immediately before its reference.
	PositionBefore

	// PositionAfter queues the rule immediately after its reference.
	PositionAfter
)

// Rule is a replacement rule: one whole-text transformation in the
// cascade. Apply sees the output of the previous rule in the queue, not
// the original source.
type Rule interface {
	ID() string

	// Apply transforms text. A nil FlagSet applies the rule
	// unconditionally; a non-nil FlagSet engages the rule's positive
	// and negative flag gates.
	Apply(text string, flags FlagSet) (string, error)

	// commit validates mandatory attributes and compiles patterns.
	// A rule is applied only after a successful commit.
	commit() error

	base() *ruleBase
}

// ruleBase carries the identity, queue placement, and flag gates common
// to every rule class, plus the conversion environment.
type ruleBase struct {
	env          *environment
	id           string
	position     Position
	referenceID  string
	positiveFlag string
	negativeFlag string
}

func (b *ruleBase) ID() string {
	return b.id
}

func (b *ruleBase) base() *ruleBase {
	return b
}

// skip reports whether flag gating suppresses this application. Gates
// only engage when a flag context is present.
func (b *ruleBase) skip(flags FlagSet) bool {
	if flags == nil {
		return false
	}
	if b.positiveFlag != "" && !flags.Has(b.positiveFlag) {
		return true
	}
	if b.negativeFlag != "" && flags.Has(b.negativeFlag) {
		return true
	}
	return false
}

// applyAll folds a list of rules over text, used for content,
// concluding, and sequence replacements.
func applyAll(rules []Rule, text string, flags FlagSet) (string, error) {
	var err error
	for _, rule := range rules {
		text, err = rule.Apply(text, flags)
		if err != nil {
			return text, err
		}
	}
	return text, nil
}
