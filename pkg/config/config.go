// Package config loads the YAML session file of a conformance run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"

	"github.com/gregLibert/piv-conformance/pkg/dataobject"
	"github.com/gregLibert/piv-conformance/pkg/piv"
)

type Config struct {
	Reader      ReaderConfig      `yaml:"reader"`
	Log         LogConfig         `yaml:"log"`
	Application ApplicationConfig `yaml:"application"`
	Objects     []string          `yaml:"objects"`
	Simulation  SimulationConfig  `yaml:"simulation"`
}

// ReaderConfig selects the PC/SC reader. Name wins over Index when set.
type ReaderConfig struct {
	Index int    `yaml:"index"`
	Name  string `yaml:"name"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ApplicationConfig struct {
	AID string `yaml:"aid"`
}

// SimulationConfig replaces the reader with a simulated PIV card.
type SimulationConfig struct {
	Enabled   bool `yaml:"enabled"`
	ChunkSize int  `yaml:"chunk_size"`
	VerifyPIN bool `yaml:"verify_pin"`
}

// Default returns the built-in session: first reader, PIV application, every
// catalog object.
func Default() *Config {
	return &Config{
		Log:         LogConfig{Level: "info", Format: "text"},
		Application: ApplicationConfig{AID: piv.PIVApplicationID.String()},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(content)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(content []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Reader.Index < 0 {
		return fmt.Errorf("config.reader.index must be >= 0")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config.log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config.log.format must be text or json, got %q", c.Log.Format)
	}

	if strings.TrimSpace(c.Application.AID) == "" {
		return fmt.Errorf("config.application.aid is required")
	}
	if _, err := piv.ParseApplicationID(c.Application.AID); err != nil {
		return fmt.Errorf("config.application.aid: %w", err)
	}

	for i, oid := range c.Objects {
		if _, ok := dataobject.Lookup(oid); !ok {
			return fmt.Errorf("config.objects[%d]: %w: %s", i, dataobject.ErrUnknownObjectIdentifier, oid)
		}
	}

	if c.Simulation.ChunkSize < 0 {
		return fmt.Errorf("config.simulation.chunk_size must be >= 0")
	}
	return nil
}

// ApplicationID returns the validated AID.
func (c *Config) ApplicationID() piv.ApplicationID {
	aid, _ := piv.ParseApplicationID(c.Application.AID)
	return aid
}

// ObjectIDs returns the configured OIDs, or the whole catalog when none is set.
func (c *Config) ObjectIDs() []string {
	if len(c.Objects) > 0 {
		return append([]string(nil), c.Objects...)
	}

	var oids []string
	for _, e := range dataobject.Catalog() {
		oids = append(oids, e.OID)
	}
	return oids
}
