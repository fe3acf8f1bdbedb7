package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full includes all overridable properties with documentation.
	// If false, generates a minimal template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// PropertyInfo documents one overridable boilerplate property.
type PropertyInfo struct {
	Name        string
	Default     string
	Description string
}

// StandardProperties returns the boilerplate properties that a
// configuration file may override, in display order.
func StandardProperties() []PropertyInfo {
	return []PropertyInfo{
		{"lang", "en", "Value of the <html> lang attribute"},
		{"title", "Title", "Content of the <title> element"},
		{"viewport-content", "width=device-width, initial-scale=1", "Content of the viewport <meta> element"},
		{"head-elements-before-viewport", "", "Extra markup inserted before the viewport <meta>"},
		{"head-elements-after-viewport", "", "Extra markup inserted after the viewport <meta>"},
		{"styles", "", "CSS placed inside a <style> element in <head>"},
	}
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return generateJSONTemplate()
	}
	if opts.Full {
		return generateFullTemplate(), nil
	}
	return generateMinimalTemplate(), nil
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(`# conwaymd configuration
# See: https://github.com/conwaymd/conwaymd

# Boilerplate property overrides applied to every converted document
# properties:
#   lang: en
#   title: My Site

# Record rule traces for each converted document
# verbose: false

# Bound on placeholder resolution passes (0 = default)
# max_iterations: 0

# File patterns to ignore (glob patterns)
# ignore:
#   - "drafts/**"
#   - "vendor/**"
`)

	return buf.Bytes()
}

// generateFullTemplate creates a full template with every overridable
// property documented.
func generateFullTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(`# conwaymd configuration - Full Template
# See: https://github.com/conwaymd/conwaymd
#
# This template documents every overridable boilerplate property.
# Uncomment and modify settings as needed.

# Record rule traces for each converted document
verbose: false

# Bound on placeholder resolution passes (0 = default)
max_iterations: 0

# File patterns to ignore (glob patterns)
ignore:
  - "drafts/**"
  - "vendor/**"
  - ".git/**"

# Boilerplate property overrides
properties:
`)

	for _, prop := range StandardProperties() {
		buf.WriteString(fmt.Sprintf("\n  # %s\n", prop.Description))
		if prop.Default != "" {
			buf.WriteString(fmt.Sprintf("  # Default: %q\n", prop.Default))
		}
		buf.WriteString(fmt.Sprintf("  # %s: %q\n", prop.Name, prop.Default))
	}

	return buf.Bytes()
}

// generateJSONTemplate emits the template as JSON.
func generateJSONTemplate() ([]byte, error) {
	properties := make(map[string]string)
	infos := StandardProperties()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	for _, prop := range infos {
		properties[prop.Name] = prop.Default
	}

	cfg := map[string]any{
		"properties":     properties,
		"verbose":        false,
		"max_iterations": 0,
		"ignore":         []string{"drafts/**", "vendor/**", ".git/**"},
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal template: %w", err)
	}

	return append(data, '\n'), nil
}
