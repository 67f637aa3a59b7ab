// Package config loads optional merge parameter files.
//
// The merge tool is flag-first; a params file only supplies defaults that
// flags may still override. Both YAML (the historical format of the floor
// export toolchain) and TOML are accepted, detected by file extension.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/osmag/agmerge/pkg/errors"
)

// Params are the tunables a params file may set. Zero values mean "not set";
// the pipeline applies its own defaults afterwards.
type Params struct {
	Precision      int     `yaml:"precision" toml:"precision"`
	ElevatorWeight float64 `yaml:"elevator_weight" toml:"elevator_weight"`
	StairsWeight   float64 `yaml:"stairs_weight" toml:"stairs_weight"`
	MinMatches     int     `yaml:"min_matches" toml:"min_matches"`
	KeepTargetRoot bool    `yaml:"keep_target_root" toml:"keep_target_root"`
	Seed           int64   `yaml:"seed" toml:"seed"`
}

// Load reads a params file, detecting the format from the extension.
// Supported: .yaml, .yml, .toml.
func Load(path string) (Params, error) {
	var p Params

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, errors.Wrap(errors.ErrCodeFileNotFound, err, "params file %s", path)
		}
		return p, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return p, errors.Wrap(errors.ErrCodeParse, err, "params file %s", path)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &p); err != nil {
			return p, errors.Wrap(errors.ErrCodeParse, err, "params file %s", path)
		}
	default:
		return p, errors.New(errors.ErrCodeInvalidFormat,
			"params file %s: unsupported extension %q (want .yaml, .yml, or .toml)", path, filepath.Ext(path))
	}

	if err := p.validate(); err != nil {
		return Params{}, fmt.Errorf("params file %s: %w", path, err)
	}
	return p, nil
}

func (p Params) validate() error {
	if p.Precision < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "precision must not be negative")
	}
	if p.ElevatorWeight < 0 || p.StairsWeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "anchor weights must not be negative")
	}
	if p.MinMatches < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "min_matches must not be negative")
	}
	return nil
}
