// Package config loads per-check configuration files and environment
// defaults for the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for configuration files that are not a mapping of
// check ids to mappings.
var ErrInvalid = errors.New("invalid configuration")

// Environment variable names.
const (
	EnvProfile     = "FONTCRITIC_PROFILE"
	EnvTimeout     = "FONTCRITIC_TIMEOUT"
	EnvSkipNetwork = "FONTCRITIC_SKIP_NETWORK"
	EnvPlugins     = "FONTCRITIC_PLUGINS"
)

// Configuration maps a check id to its settings.
type Configuration map[string]map[string]any

// Load reads a YAML or JSON configuration file. An empty path yields an
// empty configuration.
func Load(path string) (Configuration, error) {
	if path == "" {
		return Configuration{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config.Load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document. JSON documents parse as YAML.
func Parse(data []byte) (Configuration, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg := make(Configuration, len(raw))
	for id, v := range raw {
		if v == nil {
			cfg[id] = map[string]any{}
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: want a mapping, got %T", ErrInvalid, id, v)
		}
		cfg[id] = m
	}
	return cfg, nil
}

// Env holds defaults taken from the environment and .env files. The Has
// fields record which values were present.
type Env struct {
	Profile        string
	Plugins        []string
	Timeout        time.Duration
	HasTimeout     bool
	SkipNetwork    bool
	HasSkipNetwork bool
}

// LoadEnv reads the given .env files, in order, and then the process
// environment, which wins. Missing files are ignored.
func LoadEnv(files ...string) (Env, error) {
	vals := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Env{}, fmt.Errorf("config.LoadEnv %s: %w", f, err)
		}
		for k, v := range m {
			vals[k] = v
		}
	}
	for _, k := range []string{EnvProfile, EnvTimeout, EnvSkipNetwork, EnvPlugins} {
		if v, ok := os.LookupEnv(k); ok {
			vals[k] = v
		}
	}
	return parseEnv(vals)
}

func parseEnv(vals map[string]string) (Env, error) {
	var env Env
	env.Profile = strings.TrimSpace(vals[EnvProfile])
	if v := strings.TrimSpace(vals[EnvPlugins]); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				env.Plugins = append(env.Plugins, p)
			}
		}
	}
	if v := strings.TrimSpace(vals[EnvTimeout]); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return Env{}, fmt.Errorf("config: %s: %w", EnvTimeout, err)
		}
		env.Timeout, env.HasTimeout = d, true
	}
	if v := strings.TrimSpace(vals[EnvSkipNetwork]); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Env{}, fmt.Errorf("config: %s: %w", EnvSkipNetwork, err)
		}
		env.SkipNetwork, env.HasSkipNetwork = b, true
	}
	return env, nil
}

// parseTimeout accepts Go durations ("1m30s") and bare seconds ("90").
func parseTimeout(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative timeout %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %s", v)
	}
	return d, nil
}
