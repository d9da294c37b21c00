// Package config loads mosparo connection settings from a YAML file and
// the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/vitalvas/mosparo/client"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvHost       = "MOSPARO_HOST"
	EnvPublicKey  = "MOSPARO_PUBLIC_KEY"
	EnvPrivateKey = "MOSPARO_PRIVATE_KEY"
	EnvVerifySSL  = "MOSPARO_VERIFY_SSL"
)

// Config holds the settings needed to reach a mosparo project.
type Config struct {
	Host       string   `yaml:"host"`
	PublicKey  string   `yaml:"public_key"`
	PrivateKey string   `yaml:"private_key"`
	VerifySSL  bool     `yaml:"verify_ssl"`
	Timeout    Duration `yaml:"timeout,omitempty"`
}

// Duration is a time.Duration written as a Go duration string, e.g. "5s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: timeout must be a duration string", ErrInvalidValue)
	}

	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("%w: timeout: %w", ErrInvalidValue, err)
	}

	*d = Duration(v)

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Default returns a Config with TLS verification enabled.
func Default() *Config {
	return &Config{VerifySSL: true}
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if err := cfg.Decode(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Decode merges the YAML document read from r into c. Keys absent from
// the document keep their current values.
func (c *Config) Decode(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// ApplyEnv overrides fields with the MOSPARO_* variables returned by
// lookup. os.LookupEnv is the usual lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHost); ok {
		c.Host = v
	}

	if v, ok := lookup(EnvPublicKey); ok {
		c.PublicKey = v
	}

	if v, ok := lookup(EnvPrivateKey); ok {
		c.PrivateKey = v
	}

	if v, ok := lookup(EnvVerifySSL); ok {
		verify, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidValue, EnvVerifySSL, err)
		}

		c.VerifySSL = verify
	}

	return nil
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	if c.Host == "" {
		return ErrMissingHost
	}

	if c.PublicKey == "" || c.PrivateKey == "" {
		return ErrMissingKeys
	}

	return nil
}

// ClientConfig converts c into a client.Config.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		Host:               c.Host,
		PublicKey:          c.PublicKey,
		PrivateKey:         c.PrivateKey,
		InsecureSkipVerify: !c.VerifySSL,
		Timeout:            time.Duration(c.Timeout),
	}
}
