package convert

import "strings"

// referenceDefinition holds what a reference-style definition supplies
// for later referenced images and links.
type referenceDefinition struct {
	attributeSpecifications string
	uri                     string
	title                   string
	hasTitle                bool
}

// ReferenceMap stores reference definitions by label. Labels are
// case-insensitive, and a later definition for a label overwrites an
// earlier one.
type ReferenceMap struct {
	byLabel map[string]referenceDefinition
}

func NewReferenceMap() *ReferenceMap {
	return &ReferenceMap{byLabel: map[string]referenceDefinition{}}
}

func (r *ReferenceMap) Store(label, attributeSpecifications, uri, title string, hasTitle bool) {
	r.byLabel[normalizeLabel(label)] = referenceDefinition{
		attributeSpecifications: attributeSpecifications,
		uri:                     uri,
		title:                   title,
		hasTitle:                hasTitle,
	}
}

func (r *ReferenceMap) Load(label string) (referenceDefinition, bool) {
	definition, ok := r.byLabel[normalizeLabel(label)]
	return definition, ok
}

func normalizeLabel(label string) string {
	return strings.ToLower(label)
}
