// Package yaml loads cmtharvest configuration files.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/cmtharvest"
	"gopkg.in/yaml.v3"
)

// DefaultPath returns ~/.cmtharvest/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", cmtharvest.Wrap(cmtharvest.EINTERNAL, err, "locating home directory")
	}
	return filepath.Join(home, ".cmtharvest", "config.yaml"), nil
}

// LoadConfig reads the configuration file at path. A missing file returns a
// nil config and no error. Unknown keys are rejected so that typos surface.
func LoadConfig(path string) (*cmtharvest.Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, cmtharvest.Wrap(cmtharvest.EIO, err, "reading config file %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a configuration document. Fields left out stay zero
// so that the result can be merged over defaults; the merged result must
// be valid.
func ParseConfig(data []byte) (*cmtharvest.Config, error) {
	var cfg cmtharvest.Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, cmtharvest.Wrap(cmtharvest.EINVALID, err, "invalid config file: %v", err)
	}
	if err := cfg.Merge(cmtharvest.DefaultConfig()).Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
