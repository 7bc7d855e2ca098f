package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/slatebar/slate/logging"
)

// GenerateSchema generates the JSON Schema for the slate configuration.
// It reflects the Config struct from types.go but excludes the 'Extensions'
// field, which by definition accepts arbitrary keys.
func GenerateSchema() ([]byte, error) {
	schema := reflectSchema()
	return json.MarshalIndent(schema, "", "  ")
}

func reflectSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		// Extensions are arbitrary top-level keys, so additional properties
		// must stay allowed.
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	type BaseConfig struct {
		Version    string            `yaml:"version,omitempty" jsonschema:"description=Configuration version (e.g. '1.0')"`
		RuntimeDir string            `yaml:"runtime_dir,omitempty" jsonschema:"description=Directory for daemon sockets and lock files"`
		Sockets    map[string]string `yaml:"sockets,omitempty" jsonschema:"description=Per-daemon unix socket path overrides"`
		Display    *DisplayConfig    `yaml:"display,omitempty" jsonschema:"description=Settings for the display (window/workspace) daemon"`
		Metrics    *MetricsConfig    `yaml:"metrics,omitempty" jsonschema:"description=Settings for the combined metrics daemon"`
		Logging    *logging.Config   `yaml:"logging,omitempty" jsonschema:"description=Logging configuration shared by all daemons"`
	}

	schema := r.Reflect(&BaseConfig{})
	schema.Title = "Slate Configuration"
	schema.Description = "Schema for slate.yml / slate.toml."
	schema.Version = "http://json-schema.org/draft-07/schema#"
	return schema
}
