package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/conwaymd/conwaymd/pkg/config"
)

// envVarPrefix is the prefix for all conwaymd environment variables.
const envVarPrefix = "CONWAYMD_"

// envPropertyPrefix marks environment variables that override
// boilerplate properties, e.g. CONWAYMD_PROPERTY_TITLE.
const envPropertyPrefix = envVarPrefix + "PROPERTY_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"VERBOSE":        {field: "verbose", typ: envTypeBool},
	"DRY_RUN":        {field: "dry_run", typ: envTypeBool},
	"JOBS":           {field: "jobs", typ: envTypeInt},
	"MAX_ITERATIONS": {field: "max_iterations", typ: envTypeInt},
	"FORMAT":         {field: "format", typ: envTypeString},
	"IGNORE":         {field: "ignore", typ: envTypeSlice},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with CONWAYMD_ (e.g., CONWAYMD_JOBS).
// Variables of the form CONWAYMD_PROPERTY_<NAME> override the boilerplate
// property <name>, with underscores mapped to hyphens.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	loadPropertiesFromEnv(cfg)

	return nil
}

// loadPropertiesFromEnv collects CONWAYMD_PROPERTY_* overrides.
func loadPropertiesFromEnv(cfg *config.Config) {
	for _, entry := range os.Environ() {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, envPropertyPrefix) {
			continue
		}

		property := strings.TrimPrefix(name, envPropertyPrefix)
		if property == "" {
			continue
		}

		// TITLE_SUFFIX becomes title-suffix
		property = strings.ReplaceAll(strings.ToLower(property), "_", "-")
		cfg.SetProperty(property, value)
	}
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		parts := parseSliceValue(value)
		return setSliceField(cfg, mapping.field, parts)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "format":
		cfg.Format = config.OutputFormat(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "verbose":
		cfg.Verbose = value
	case "dry_run":
		cfg.DryRun = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	case "max_iterations":
		cfg.MaxIterations = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// setSliceField sets a slice field on the config by field path.
func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "ignore":
		cfg.Ignore = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns a list of all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	return map[string]string{
		"CONWAYMD_VERBOSE":        "Record rule traces: true or false",
		"CONWAYMD_DRY_RUN":        "Convert without writing output: true or false",
		"CONWAYMD_JOBS":           "Number of parallel workers (0 = auto)",
		"CONWAYMD_MAX_ITERATIONS": "Bound on placeholder resolution passes (0 = default)",
		"CONWAYMD_FORMAT":         "Output format: text or json",
		"CONWAYMD_IGNORE":         "Comma-separated list of ignore patterns",
		"CONWAYMD_PROPERTY_*":     "Boilerplate property override, e.g. CONWAYMD_PROPERTY_TITLE",
	}
}
