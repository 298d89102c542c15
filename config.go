package darksim

import "fmt"

// Default configuration values.
const (
	DefaultMaxHTL              = 10
	DefaultMaxSwapHTL          = 6
	DefaultReplicationFactor   = 3
	DefaultBiasFactor          = 0.5
	DefaultSwapPeriod          = 10
	DefaultCleanupPeriod       = 50
	DefaultRecordIdleThreshold = 500
	DefaultMinDelay            = 1
	DefaultMaxDelay            = 10
	DefaultCycleStep           = 10
)

// Config holds the configuration for a simulation run.
type Config struct {
	// MaxHTL is the hop-to-live budget for GET and PUT routing. The budget
	// is refreshed whenever a message reaches a peer closer to its target
	// than any peer seen before on its path.
	MaxHTL int

	// MaxSwapHTL is the hop budget for the random walk carrying a SWAP
	// proposal away from its initiator.
	MaxSwapHTL int

	// ReplicationFactor is the number of nearest neighbors a freshly
	// stored content key is replicated toward.
	ReplicationFactor int

	// BiasFactor is the probability, each cycle, that a peer issues a GET
	// rather than a PUT. Must be in [0, 1].
	BiasFactor float64

	// SwapPeriod is the cycle-clock period between swap attempts.
	SwapPeriod int64

	// CleanupPeriod is the cycle-clock period between idle-record sweeps.
	CleanupPeriod int64

	// RecordIdleThreshold is the virtual-time age past which an untouched
	// routing record is evicted by the cleanup sweep.
	RecordIdleThreshold int64

	// MinDelay and MaxDelay bound the uniform random virtual-time delay
	// applied to every message delivery.
	MinDelay int64
	MaxDelay int64

	// CycleStep is the virtual-time interval between cycle ticks.
	CycleStep int64

	// Seed drives every randomness source of the run: key allocation,
	// delivery delays, per-peer coins and neighbor picks, tick shuffling.
	// Runs with equal seeds and configs are identical.
	Seed int64

	// Logger is the logger for the run. If nil, a NopLogger is used.
	Logger Logger

	// Metrics is the metrics collector for the run. If nil, a NopMetrics
	// is used.
	Metrics Metrics

	// Recorder receives one record per completed routing operation.
	// If nil, a NopRecorder is used.
	Recorder Recorder
}

// Validate checks that the configuration is valid and returns an error
// describing any problems found.
func (c *Config) Validate() error {
	if c.BiasFactor < 0 || c.BiasFactor > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidBiasFactor, c.BiasFactor)
	}
	if c.MaxHTL < 0 {
		return fmt.Errorf("%w: max HTL cannot be negative", ErrInvalidConfig)
	}
	if c.MaxSwapHTL < 0 {
		return fmt.Errorf("%w: max swap HTL cannot be negative", ErrInvalidConfig)
	}
	if c.ReplicationFactor < 0 {
		return fmt.Errorf("%w: replication factor cannot be negative", ErrInvalidConfig)
	}
	if c.SwapPeriod < 0 || c.CleanupPeriod < 0 {
		return fmt.Errorf("%w: periods cannot be negative", ErrInvalidConfig)
	}
	if c.RecordIdleThreshold < 0 {
		return fmt.Errorf("%w: record idle threshold cannot be negative", ErrInvalidConfig)
	}
	if c.MinDelay < 0 {
		return fmt.Errorf("%w: min delay cannot be negative", ErrInvalidConfig)
	}
	if c.MaxDelay > 0 && c.MaxDelay < c.MinDelay {
		return fmt.Errorf("%w: max delay cannot be less than min delay", ErrInvalidConfig)
	}
	if c.CycleStep < 0 {
		return fmt.Errorf("%w: cycle step cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// applyDefaults sets default values for any unset optional fields.
func (c *Config) applyDefaults() {
	if c.MaxHTL == 0 {
		c.MaxHTL = DefaultMaxHTL
	}
	if c.MaxSwapHTL == 0 {
		c.MaxSwapHTL = DefaultMaxSwapHTL
	}
	if c.ReplicationFactor == 0 {
		c.ReplicationFactor = DefaultReplicationFactor
	}
	if c.SwapPeriod == 0 {
		c.SwapPeriod = DefaultSwapPeriod
	}
	if c.CleanupPeriod == 0 {
		c.CleanupPeriod = DefaultCleanupPeriod
	}
	if c.RecordIdleThreshold == 0 {
		c.RecordIdleThreshold = DefaultRecordIdleThreshold
	}
	if c.MinDelay == 0 {
		c.MinDelay = DefaultMinDelay
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.CycleStep == 0 {
		c.CycleStep = DefaultCycleStep
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics{}
	}
	if c.Recorder == nil {
		c.Recorder = NopRecorder{}
	}
}

// ConfigOption customizes a Config created by NewConfig.
type ConfigOption func(*Config)

// WithMaxHTL sets the GET/PUT hop-to-live budget.
func WithMaxHTL(n int) ConfigOption {
	return func(c *Config) { c.MaxHTL = n }
}

// WithMaxSwapHTL sets the swap-walk hop budget.
func WithMaxSwapHTL(n int) ConfigOption {
	return func(c *Config) { c.MaxSwapHTL = n }
}

// WithReplicationFactor sets the post-insert replication fan-out.
func WithReplicationFactor(n int) ConfigOption {
	return func(c *Config) { c.ReplicationFactor = n }
}

// WithBiasFactor sets the per-cycle GET probability.
func WithBiasFactor(b float64) ConfigOption {
	return func(c *Config) { c.BiasFactor = b }
}

// WithSwapPeriod sets the cycle period between swap attempts.
func WithSwapPeriod(p int64) ConfigOption {
	return func(c *Config) { c.SwapPeriod = p }
}

// WithCleanupPeriod sets the cycle period between idle-record sweeps.
func WithCleanupPeriod(p int64) ConfigOption {
	return func(c *Config) { c.CleanupPeriod = p }
}

// WithRecordIdleThreshold sets the idle age before record eviction.
func WithRecordIdleThreshold(t int64) ConfigOption {
	return func(c *Config) { c.RecordIdleThreshold = t }
}

// WithDelayRange sets the virtual-time delivery delay bounds.
func WithDelayRange(min, max int64) ConfigOption {
	return func(c *Config) {
		c.MinDelay = min
		c.MaxDelay = max
	}
}

// WithCycleStep sets the virtual-time interval between cycle ticks.
func WithCycleStep(s int64) ConfigOption {
	return func(c *Config) { c.CycleStep = s }
}

// WithSeed sets the run seed.
func WithSeed(seed int64) ConfigOption {
	return func(c *Config) { c.Seed = seed }
}

// WithLogger sets the logger for the run.
func WithLogger(l Logger) ConfigOption {
	return func(c *Config) { c.Logger = l }
}

// WithMetrics sets the metrics collector for the run.
func WithMetrics(m Metrics) ConfigOption {
	return func(c *Config) { c.Metrics = m }
}

// WithRecorder sets the completion recorder for the run.
func WithRecorder(r Recorder) ConfigOption {
	return func(c *Config) { c.Recorder = r }
}

// NewConfig creates a configuration with the given options applied over
// the defaults.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{BiasFactor: DefaultBiasFactor}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
