// Package config builds this program's configuration from flags and
// environment variables, following the same flagset/viper/config triad
// the teacher's own cmd/simulator entry point calls through
// (config.BuildFlagSet -> config.BuildViper -> config.BuildConfig in
// cmd/simulator/main/main.go): build a pflag.FlagSet, bind it into a
// viper.Viper alongside environment variables, then materialize a typed
// Config from the viper instance with spf13/cast doing the coercion.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	LogLevelKey        = "log-level"
	JournalCapacityKey = "journal-capacity"
	JournalRolloutKey  = "journal-rollout"
	MetricsAddrKey     = "metrics-addr"

	envPrefix = "PAYMENTS"

	// DefaultJournalRollout and DefaultJournalCapacity reproduce the
	// reference constants ROLLOUT = 1_000 and MAX = 1_000_000.
	DefaultJournalRollout  = 1_000
	DefaultJournalCapacity = 1_000_000
)

// BuildFlagSet declares every flag this program accepts. Each flag has a
// matching PAYMENTS_* environment variable bound in BuildViper, so either
// form satisfies "the logging verbosity environment variable is honored".
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("paymentsengine", pflag.ContinueOnError)
	fs.String(LogLevelKey, "info", "log verbosity (trace|debug|info|warn|error|crit)")
	fs.Int(JournalCapacityKey, DefaultJournalCapacity, "maximum live journal entries before eviction")
	fs.Int(JournalRolloutKey, DefaultJournalRollout, "journal size at which terminal entries are swept")
	fs.String(MetricsAddrKey, "", "address to serve Prometheus metrics on (disabled if empty)")
	return fs
}

// BuildViper parses args against fs and layers in PAYMENTS_*-prefixed
// environment variables, environment losing to an explicitly passed flag.
func BuildViper(fs *pflag.FlagSet, args []string) (*viper.Viper, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: binding flags: %w", err)
	}
	return v, nil
}

// Config is the fully resolved, typed configuration for one run.
type Config struct {
	LogLevel        string
	JournalCapacity int
	JournalRollout  int
	MetricsAddr     string
}

// BuildConfig materializes a Config from a bound viper instance, using
// spf13/cast for the coercions viper's own Get* accessors already do, kept
// here so every numeric bound is checked in one place.
func BuildConfig(v *viper.Viper) (Config, error) {
	capacity, err := cast.ToIntE(v.Get(JournalCapacityKey))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", JournalCapacityKey, err)
	}
	if capacity <= 0 {
		return Config{}, fmt.Errorf("config: %s must be greater than zero, got %d", JournalCapacityKey, capacity)
	}

	rollout, err := cast.ToIntE(v.Get(JournalRolloutKey))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", JournalRolloutKey, err)
	}
	if rollout <= 0 {
		return Config{}, fmt.Errorf("config: %s must be greater than zero, got %d", JournalRolloutKey, rollout)
	}

	return Config{
		LogLevel:        cast.ToString(v.Get(LogLevelKey)),
		JournalCapacity: capacity,
		JournalRollout:  rollout,
		MetricsAddr:     cast.ToString(v.Get(MetricsAddrKey)),
	}, nil
}
