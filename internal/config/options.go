package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// MatchSeverity selects how a non-exhaustive match is reported.
type MatchSeverity string

const (
	MatchError   MatchSeverity = "error"
	MatchWarning MatchSeverity = "warning"
	MatchOff     MatchSeverity = "off"
)

// Options are the checker settings for one run.
type Options struct {
	// StrictNullChecks keeps nil out of non-optional types.
	StrictNullChecks bool
	// NoImplicitUnknown warns on declarations whose type could not be inferred.
	NoImplicitUnknown bool
	// FunctionBivariance compares function parameters in both directions.
	FunctionBivariance bool
	// EnableOOP allows class declarations.
	EnableOOP bool
	// EnableDecorators allows decorators on classes and class members.
	EnableDecorators bool
	// ExhaustiveMatch is the severity of NonExhaustiveMatch.
	ExhaustiveMatch MatchSeverity
	// WarningsAsErrors promotes every warning to an error.
	WarningsAsErrors bool
}

// DefaultOptions returns the settings used when no config file is given.
func DefaultOptions() Options {
	return Options{
		StrictNullChecks: true,
		EnableOOP:        true,
		EnableDecorators: true,
		ExhaustiveMatch:  MatchError,
	}
}

// fileOptions mirrors Options with optional fields so absent keys keep defaults.
type fileOptions struct {
	StrictNullChecks   *bool   `yaml:"strictNullChecks" toml:"strictNullChecks"`
	NoImplicitUnknown  *bool   `yaml:"noImplicitUnknown" toml:"noImplicitUnknown"`
	FunctionBivariance *bool   `yaml:"functionBivariance" toml:"functionBivariance"`
	EnableOOP          *bool   `yaml:"enableOOP" toml:"enableOOP"`
	EnableDecorators   *bool   `yaml:"enableDecorators" toml:"enableDecorators"`
	ExhaustiveMatch    *string `yaml:"exhaustiveMatch" toml:"exhaustiveMatch"`
	WarningsAsErrors   *bool   `yaml:"warningsAsErrors" toml:"warningsAsErrors"`
}

// LoadConfig reads a YAML (.yaml/.yml) or TOML (.toml) options file.
func LoadConfig(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses options content; the format is chosen by path's extension.
// The path argument is otherwise used only for error messages.
func ParseConfig(data []byte, path string) (*Options, error) {
	var fo fileOptions
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &fo); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &fo); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config format %q", path, filepath.Ext(path))
	}

	opts := DefaultOptions()
	if err := fo.apply(&opts, path); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (fo fileOptions) apply(opts *Options, path string) error {
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&opts.StrictNullChecks, fo.StrictNullChecks)
	setBool(&opts.NoImplicitUnknown, fo.NoImplicitUnknown)
	setBool(&opts.FunctionBivariance, fo.FunctionBivariance)
	setBool(&opts.EnableOOP, fo.EnableOOP)
	setBool(&opts.EnableDecorators, fo.EnableDecorators)
	setBool(&opts.WarningsAsErrors, fo.WarningsAsErrors)

	if fo.ExhaustiveMatch != nil {
		switch sev := MatchSeverity(*fo.ExhaustiveMatch); sev {
		case MatchError, MatchWarning, MatchOff:
			opts.ExhaustiveMatch = sev
		default:
			return fmt.Errorf("%s: exhaustiveMatch must be one of error, warning, off (got %q)", path, *fo.ExhaustiveMatch)
		}
	}
	return nil
}
