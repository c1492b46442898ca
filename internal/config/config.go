// Package config resolves the threshold snapshot consumed by the visitors.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Setting keys, shared by flags, environment variables and config files.
const (
	KeyMaxModuleMembers = "max-module-members"
	KeyMaxMethods       = "max-methods"
)

// Section is the ini section read from setup.cfg-style config files.
const Section = "flake8"

// EnvPrefix prefixes environment overrides, e.g. PYCOUNTS_MAX_METHODS.
const EnvPrefix = "pycounts"

// Defaults for every threshold.
const (
	DefaultMaxModuleMembers = 7
	DefaultMaxMethods       = 7
)

// ErrInvalidThreshold is returned for negative or non-integer thresholds.
var ErrInvalidThreshold = errors.New("invalid threshold")

// Options is the resolved, read-only threshold snapshot for a run.
// It is passed by value and safe to share between goroutines.
type Options struct {
	MaxModuleMembers int
	MaxMethods       int
}

// Default returns the built-in thresholds.
func Default() Options {
	return Options{
		MaxModuleMembers: DefaultMaxModuleMembers,
		MaxMethods:       DefaultMaxMethods,
	}
}

// Validate rejects negative thresholds.
func (o Options) Validate() error {
	if o.MaxModuleMembers < 0 {
		return fmt.Errorf("%s = %d: %w", KeyMaxModuleMembers, o.MaxModuleMembers, ErrInvalidThreshold)
	}
	if o.MaxMethods < 0 {
		return fmt.Errorf("%s = %d: %w", KeyMaxMethods, o.MaxMethods, ErrInvalidThreshold)
	}
	return nil
}

// LogValue implements [slog.LogValuer].
func (o Options) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int(KeyMaxModuleMembers, o.MaxModuleMembers),
		slog.Int(KeyMaxMethods, o.MaxMethods),
	)
}

// Load resolves Options from v. For each key, a value set directly on v
// (flag, environment or top-level config key) wins over the same key in the
// [flake8] section, which wins over the default.
func Load(v *viper.Viper) (Options, error) {
	o := Default()

	var err error
	if o.MaxModuleMembers, err = intSetting(v, KeyMaxModuleMembers, o.MaxModuleMembers); err != nil {
		return Options{}, err
	}
	if o.MaxMethods, err = intSetting(v, KeyMaxMethods, o.MaxMethods); err != nil {
		return Options{}, err
	}

	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

func intSetting(v *viper.Viper, key string, def int) (int, error) {
	for _, k := range []string{key, Section + "." + key} {
		if !v.IsSet(k) {
			continue
		}
		n, err := cast.ToIntE(v.Get(k))
		if err != nil {
			return 0, fmt.Errorf("%s: %w: %w", key, ErrInvalidThreshold, err)
		}
		return n, nil
	}
	return def, nil
}
