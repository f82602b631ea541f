package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = ".walkplan.yaml"

// config holds the settings that may come from the config file, the
// environment or flags.
type config struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature *float64      `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries"`
	Concurrency int           `yaml:"concurrency"`
	History     string        `yaml:"history"`
}

func defaultConfig() config {
	return config{
		Timeout:     2 * time.Minute,
		Concurrency: 4,
	}
}

// loadConfig reads path over the defaults. A missing file is only an error
// when the path was given explicitly.
func loadConfig(path string, explicit bool) (config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return cfg, nil
	default:
		return config{}, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overrides cfg with WALKPLAN_* variables.
func applyEnv(cfg *config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("WALKPLAN_PROVIDER"); ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := lookup("WALKPLAN_MODEL"); ok && v != "" {
		cfg.Model = v
	}
	if v, ok := lookup("WALKPLAN_HISTORY"); ok && v != "" {
		cfg.History = v
	}
	if v, ok := lookup("WALKPLAN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WALKPLAN_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	for name, dst := range map[string]*int{
		"WALKPLAN_RETRIES":     &cfg.Retries,
		"WALKPLAN_CONCURRENCY": &cfg.Concurrency,
		"WALKPLAN_MAX_TOKENS":  &cfg.MaxTokens,
	} {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
	}
	return nil
}

func (c config) validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	return nil
}
