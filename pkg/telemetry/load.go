package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvDebugLevel  = "VITALS_DEBUG_LEVEL"
	EnvServiceName = "VITALS_SERVICE_NAME"
)

// LoadConfig reads a configuration file on top of DefaultConfig and validates
// it. The decoder is chosen by extension: .yaml, .yml, .json or .cue.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := DecodeConfig(cfg, filepath.Ext(path), data); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeConfig decodes data into cfg. Fields missing from data keep their
// current values.
func DecodeConfig(cfg *Config, ext string, data []byte) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".json":
		return json.Unmarshal(data, cfg)
	case ".cue":
		return decodeCUE(cfg, data)
	default:
		return fmt.Errorf("unsupported config format: %q", ext)
	}
}

func decodeCUE(cfg *Config, data []byte) error {
	v := cuecontext.New().CompileBytes(data, cue.Filename("config.cue"))
	if err := v.Err(); err != nil {
		return fmt.Errorf("cue compile: %s", errors.Details(err, nil))
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("cue validate: %s", errors.Details(err, nil))
	}
	return v.Decode(cfg)
}

// ApplyEnv overrides the debug level and service name from the environment.
// A nil lookup uses os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvDebugLevel); ok && v != "" {
		c.DebugLevel = strings.ToLower(v)
	}
	if v, ok := lookup(EnvServiceName); ok && v != "" {
		c.ServiceName = v
	}
}
