package convert

import "reflect"

// Registry holds the committed rules of a conversion: every rule by
// id, plus the ordered queue of rules applied to the whole text.
type Registry struct {
	byID   map[string]Rule
	queue  []Rule
	rootID string
}

func newRegistry() *Registry {
	return &Registry{byID: map[string]Rule{}}
}

// lookup returns the registered rule with the given id.
func (reg *Registry) lookup(id string) (Rule, bool) {
	rule, ok := reg.byID[id]
	return rule, ok
}

// register commits a rule into the registry and places it in the
// queue. Redeclaring an id with the same rule class replaces the
// earlier rule, keeping its queue slot unless the earlier rule was
// unqueued; redeclaring with a different class corrupts the cascade
// and is fatal. A declarationError is returned for bad queue
// references, which spoils only the rule itself.
func (reg *Registry) register(rule Rule) error {
	id := rule.ID()
	b := rule.base()

	existing, exists := reg.byID[id]
	if exists && reflect.TypeOf(existing) != reflect.TypeOf(rule) {
		return &RegistryError{
			RuleID:  id,
			Message: "already declared with a different rule class",
		}
	}

	if b.position == PositionRoot {
		if reg.rootID != "" && reg.rootID != id {
			return &RegistryError{
				RuleID:  id,
				Message: "root position already taken by #" + reg.rootID,
			}
		}
	}

	if b.position == PositionBefore || b.position == PositionAfter {
		if b.referenceID == id {
			return declarationErrorf("queue_position: rule #%s cannot be queued relative to itself", id)
		}
		if _, ok := reg.byID[b.referenceID]; !ok {
			return declarationErrorf("queue_position: no rule #%s", b.referenceID)
		}
		if reg.queueIndex(b.referenceID) < 0 {
			return declarationErrorf("queue_position: rule #%s is not queued", b.referenceID)
		}
	}

	if exists {
		if slot := reg.queueIndex(id); slot >= 0 {
			reg.byID[id] = rule
			reg.queue[slot] = rule
			return nil
		}
	}
	reg.byID[id] = rule

	switch b.position {
	case PositionNone:
	case PositionRoot:
		reg.rootID = id
		reg.queue = append(reg.queue, rule)
	case PositionBefore:
		reg.insertAt(reg.queueIndex(b.referenceID), rule)
	case PositionAfter:
		reg.insertAt(reg.queueIndex(b.referenceID)+1, rule)
	}
	return nil
}

func (reg *Registry) queueIndex(id string) int {
	for i, rule := range reg.queue {
		if rule.ID() == id {
			return i
		}
	}
	return -1
}

func (reg *Registry) insertAt(index int, rule Rule) {
	reg.queue = append(reg.queue, nil)
	copy(reg.queue[index+1:], reg.queue[index:])
	reg.queue[index] = rule
}
