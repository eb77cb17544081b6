package arena

import (
	"errors"
	"flag"
	"fmt"

	"github.com/grafana/dskit/flagext"
)

const (
	// DefaultMaxDepth bounds how many regions a single stack may hold at once.
	DefaultMaxDepth = 10

	// DefaultRegionSize is used when a scope is opened with a size <= 0 (64 KiB).
	DefaultRegionSize = 1 << 16
)

// Config controls the shape of a Stack.
type Config struct {
	// MaxDepth is the maximum number of nested regions.
	MaxDepth int `yaml:"max_depth"`

	// DefaultRegionSize is the capacity of regions opened without an explicit size.
	DefaultRegionSize flagext.Bytes `yaml:"default_region_size"`

	// Debug makes allocating with no open scope fatal instead of returning
	// ErrNoActiveRegion.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the configuration used by NewStack when none is given.
func DefaultConfig() Config {
	return Config{
		MaxDepth:          DefaultMaxDepth,
		DefaultRegionSize: flagext.Bytes(DefaultRegionSize),
	}
}

// RegisterFlags registers the arena flags on f.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("arena.", f)
}

// RegisterFlagsWithPrefix registers flags with the given prefix.
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	_ = cfg.DefaultRegionSize.Set("64KiB")

	f.IntVar(&cfg.MaxDepth, prefix+"max-depth", DefaultMaxDepth, "Maximum number of nested arena scopes per stack.")
	f.Var(&cfg.DefaultRegionSize, prefix+"default-region-size", "Capacity of a region opened without an explicit size.")
	f.BoolVar(&cfg.Debug, prefix+"debug", false, "Treat allocation with no open scope as a fatal error.")
}

// Validate validates the Config.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("MaxDepth must be greater than 0, got %d", cfg.MaxDepth))
	}
	if cfg.DefaultRegionSize == 0 {
		errs = append(errs, errors.New("DefaultRegionSize must be greater than 0"))
	}
	if uint64(cfg.DefaultRegionSize) > uint64(maxInt) {
		errs = append(errs, fmt.Errorf("DefaultRegionSize %d overflows int", uint64(cfg.DefaultRegionSize)))
	}
	return errors.Join(errs...)
}

const maxInt = int(^uint(0) >> 1)
