package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/slatebar/slate/errors"
	"github.com/slatebar/slate/pkg/paths"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads and parses a slate configuration file. The format is chosen by
// file extension: .toml is parsed as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	if strings.HasSuffix(path, ".toml") {
		return LoadFromTOML(data)
	}
	return LoadFromBytes(data)
}

// LoadDefault loads the configuration from the XDG config directory
// (~/.config/slate/slate.yml or slate.toml). A missing file is not an error:
// the daemons run fine on defaults.
func LoadDefault() (*Config, error) {
	path, err := FindConfigFile()
	if err != nil {
		cfg := &Config{}
		cfg.SetDefaults()
		return cfg, nil
	}
	return Load(path)
}

// FindConfigFile locates the slate configuration file in the XDG config dir.
func FindConfigFile() (string, error) {
	dir := paths.ConfigDir()
	if dir == "" {
		return "", errors.ConfigNotFound("slate.yml")
	}
	for _, name := range []string{"slate.yml", "slate.yaml", "slate.toml"} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.ConfigNotFound(filepath.Join(dir, "slate.yml"))
}

// LoadFromBytes parses a YAML configuration document.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
	}

	return finalize(&config)
}

// LoadFromTOML parses a TOML configuration document.
func LoadFromTOML(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var config Config
	if err := toml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
	}

	return finalize(&config)
}

func finalize(config *Config) (*Config, error) {
	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.Validate(config); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
	}

	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "semantic validation failed")
	}

	return config, nil
}

// SocketPath returns the socket path for a daemon, honoring per-daemon
// overrides and the runtime dir override.
func (c *Config) SocketPath(daemon string) string {
	if path, ok := c.Sockets[daemon]; ok && path != "" {
		return path
	}
	if c.RuntimeDir != "" {
		return filepath.Join(c.RuntimeDir, daemon+".sock")
	}
	return paths.SocketPath(daemon)
}

// LockPath returns the advisory lock path for a daemon.
func (c *Config) LockPath(daemon string) string {
	if c.RuntimeDir != "" {
		return filepath.Join(c.RuntimeDir, daemon+".lock")
	}
	return paths.LockPath(daemon)
}

// expandEnvVars replaces ${VAR} references with environment values.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		name := envVarRegex.FindStringSubmatch(match)[1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})
}
