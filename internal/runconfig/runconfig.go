// Package runconfig loads simulation run settings from a TOML file and
// maps them onto the engine configuration.
package runconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/smallworldnet/darksim"
)

// RunConfig is the on-disk shape of a simulation run. Zero values fall
// back to the engine defaults.
type RunConfig struct {
	Run      Run      `toml:"run"`
	Routing  Routing  `toml:"routing"`
	Swap     Swap     `toml:"swap"`
	Delivery Delivery `toml:"delivery"`
	Cleanup  Cleanup  `toml:"cleanup"`
	Output   Output   `toml:"output"`
}

// Run holds what to simulate and for how long.
type Run struct {
	// DatasetPath is the comma-separated edge list defining the overlay.
	DatasetPath string `toml:"dataset_path"`

	// Cycles is the number of virtual-time cycles to run.
	Cycles int `toml:"cycles"`

	// Seed drives every randomness source of the run.
	Seed int64 `toml:"seed"`
}

// Routing holds the GET/PUT routing knobs.
type Routing struct {
	MaxHTL            int     `toml:"max_htl"`
	ReplicationFactor int     `toml:"replication_factor"`
	BiasFactor        float64 `toml:"bias_factor"`
}

// Swap holds the topology-optimization knobs.
type Swap struct {
	MaxSwapHTL int   `toml:"max_swap_htl"`
	Period     int64 `toml:"period"`
}

// Delivery holds the virtual-time delivery model.
type Delivery struct {
	MinDelay  int64 `toml:"min_delay"`
	MaxDelay  int64 `toml:"max_delay"`
	CycleStep int64 `toml:"cycle_step"`
}

// Cleanup holds the routing-record eviction knobs.
type Cleanup struct {
	Period        int64 `toml:"period"`
	IdleThreshold int64 `toml:"idle_threshold"`
}

// Output holds where run results land.
type Output struct {
	// StatsPath is the per-request outcome file. Empty disables it.
	StatsPath string `toml:"stats_path"`

	// MetricsAddr is the listen address of the Prometheus endpoint.
	// Empty disables it.
	MetricsAddr string `toml:"metrics_addr"`

	// GraphReport requests a structural report of the overlay before the
	// run; expensive on large overlays.
	GraphReport bool `toml:"graph_report"`
}

// Default returns the run configuration used when no file is given.
func Default() *RunConfig {
	return &RunConfig{
		Run:     Run{Cycles: 1000},
		Routing: Routing{BiasFactor: darksim.DefaultBiasFactor},
	}
}

// Load reads a TOML run configuration from path over the defaults.
func Load(path string) (*RunConfig, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run config %q not found: %w", path, err)
		}
		return nil, fmt.Errorf("parse run config %q: %w", path, err)
	}
	return cfg, nil
}

// EngineOptions converts the run configuration to engine options. Only
// explicitly set knobs are emitted; the rest stay on engine defaults.
func (c *RunConfig) EngineOptions() []darksim.ConfigOption {
	opts := []darksim.ConfigOption{
		darksim.WithSeed(c.Run.Seed),
		darksim.WithBiasFactor(c.Routing.BiasFactor),
	}
	if c.Routing.MaxHTL > 0 {
		opts = append(opts, darksim.WithMaxHTL(c.Routing.MaxHTL))
	}
	if c.Routing.ReplicationFactor > 0 {
		opts = append(opts, darksim.WithReplicationFactor(c.Routing.ReplicationFactor))
	}
	if c.Swap.MaxSwapHTL > 0 {
		opts = append(opts, darksim.WithMaxSwapHTL(c.Swap.MaxSwapHTL))
	}
	if c.Swap.Period > 0 {
		opts = append(opts, darksim.WithSwapPeriod(c.Swap.Period))
	}
	if c.Delivery.MinDelay > 0 || c.Delivery.MaxDelay > 0 {
		opts = append(opts, darksim.WithDelayRange(c.Delivery.MinDelay, c.Delivery.MaxDelay))
	}
	if c.Delivery.CycleStep > 0 {
		opts = append(opts, darksim.WithCycleStep(c.Delivery.CycleStep))
	}
	if c.Cleanup.Period > 0 {
		opts = append(opts, darksim.WithCleanupPeriod(c.Cleanup.Period))
	}
	if c.Cleanup.IdleThreshold > 0 {
		opts = append(opts, darksim.WithRecordIdleThreshold(c.Cleanup.IdleThreshold))
	}
	return opts
}

// Validate checks the run configuration beyond what the engine validates
// itself.
func (c *RunConfig) Validate() error {
	if c.Run.DatasetPath == "" {
		return fmt.Errorf("dataset_path is required")
	}
	if c.Run.Cycles <= 0 {
		return fmt.Errorf("cycles must be positive, got %d", c.Run.Cycles)
	}
	return nil
}
