// Package config carries the audit's tunable surface: degree ceilings,
// soundness targets, hardware envelopes and real-time budgets. Options are
// loaded from YAML with layered precedence and validated before a pipeline
// is built; absent options take the audited defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full recognized option surface.
type Config struct {
	// DegreeCeiling bounds the total degree of any single transition
	// constraint.
	DegreeCeiling int `yaml:"degree_ceiling"`

	// CompositionCeiling bounds the degree after Fiat-Shamir composition
	// and recursive folding.
	CompositionCeiling int `yaml:"composition_ceiling"`

	// TargetSoundnessBits is the required soundness of the low-degree test.
	TargetSoundnessBits int `yaml:"target_soundness_bits"`

	// BlowupFactors is the set of blow-up factors to sweep; the last one
	// is the primary operating point later stages consume.
	BlowupFactors []int `yaml:"blowup_factors"`

	// TraceLength is the number of trace rows the audit simulates.
	TraceLength int `yaml:"trace_length"`

	// MemoryCeilingBytes is the safe memory envelope for one codeword.
	MemoryCeilingBytes uint64 `yaml:"memory_ceiling_bytes"`

	// TargetFrameRateHz is the real-time rate one proof per frame must meet.
	TargetFrameRateHz float64 `yaml:"target_frame_rate_hz"`

	// ContractionRho is the audited contraction coefficient; must be < 1.
	ContractionRho float64 `yaml:"contraction_rho"`

	// ContractionSigma is the additive noise bound of the error recurrence.
	ContractionSigma float64 `yaml:"contraction_sigma"`

	// EnergyDriftTolerance bounds per-step energy drift in the
	// dissipative-dynamics check.
	EnergyDriftTolerance float64 `yaml:"energy_drift_tolerance"`

	// DriftSteps is the length of the dissipative simulation.
	DriftSteps int `yaml:"drift_steps"`

	// FramesPerEpoch is the number of per-frame proofs folded per epoch.
	FramesPerEpoch int `yaml:"frames_per_epoch"`

	// EpochInterval is the aggregation window as a duration string ("1s",
	// "500ms").
	EpochInterval string `yaml:"epoch_interval"`

	// AmortizationFactor is the usable share of the epoch interval.
	AmortizationFactor float64 `yaml:"amortization_factor"`

	// AngularTolerance bounds the orientation proxy's approximation error
	// in radians.
	AngularTolerance float64 `yaml:"angular_tolerance"`

	// SpectralDim is the hypercube dimension the routing substrate uses.
	SpectralDim int `yaml:"spectral_dim"`

	// SpectralGapFloor is the minimum acceptable gap for augmented graphs.
	SpectralGapFloor float64 `yaml:"spectral_gap_floor"`

	// Horizon is the recursion target: total frames to aggregate.
	Horizon int `yaml:"horizon"`

	// TraceSeed seeds the deterministic trace generator.
	TraceSeed uint64 `yaml:"trace_seed"`

	// AssumedWatts is the sustained power assumption for energy estimates.
	AssumedWatts float64 `yaml:"assumed_watts"`
}

// DefaultConfig returns the audited defaults for consumer hardware.
func DefaultConfig() *Config {
	return &Config{
		DegreeCeiling:        2,
		CompositionCeiling:   4,
		TargetSoundnessBits:  128,
		BlowupFactors:        []int{2, 4, 8},
		TraceLength:          1024,
		MemoryCeilingBytes:   6<<30 + 1<<29, // 6.5 GiB
		TargetFrameRateHz:    120,
		ContractionRho:       0.95,
		ContractionSigma:     0.01,
		EnergyDriftTolerance: 0.1,
		DriftSteps:           200_000,
		FramesPerEpoch:       120,
		EpochInterval:        "1s",
		AmortizationFactor:   0.70,
		AngularTolerance:     1e-3,
		SpectralDim:          8,
		SpectralGapFloor:     2.0,
		Horizon:              1 << 20,
		TraceSeed:            0x7e7a_c1e1,
		AssumedWatts:         160,
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.DegreeCeiling <= 0 {
		return fmt.Errorf("degree ceiling must be positive, got %d", c.DegreeCeiling)
	}
	if c.CompositionCeiling < c.DegreeCeiling {
		return fmt.Errorf("composition ceiling (%d) must be at least the degree ceiling (%d)",
			c.CompositionCeiling, c.DegreeCeiling)
	}
	if c.TargetSoundnessBits <= 0 {
		return fmt.Errorf("target soundness bits must be positive, got %d", c.TargetSoundnessBits)
	}
	if len(c.BlowupFactors) == 0 {
		return fmt.Errorf("at least one blow-up factor is required")
	}
	for _, b := range c.BlowupFactors {
		if b < 2 {
			return fmt.Errorf("blow-up factors must be at least 2, got %d", b)
		}
	}
	if c.TraceLength <= 0 {
		return fmt.Errorf("trace length must be positive, got %d", c.TraceLength)
	}
	if c.MemoryCeilingBytes == 0 {
		return fmt.Errorf("memory ceiling must be positive")
	}
	if c.TargetFrameRateHz <= 0 {
		return fmt.Errorf("target frame rate must be positive, got %v", c.TargetFrameRateHz)
	}
	if c.ContractionRho < 0 || c.ContractionRho >= 1 {
		return fmt.Errorf("contraction coefficient must be in [0, 1), got %v", c.ContractionRho)
	}
	if c.ContractionSigma < 0 {
		return fmt.Errorf("contraction noise bound must be non-negative, got %v", c.ContractionSigma)
	}
	if c.EnergyDriftTolerance <= 0 {
		return fmt.Errorf("energy drift tolerance must be positive, got %v", c.EnergyDriftTolerance)
	}
	if c.DriftSteps <= 0 {
		return fmt.Errorf("drift steps must be positive, got %d", c.DriftSteps)
	}
	if c.FramesPerEpoch <= 0 {
		return fmt.Errorf("frames per epoch must be positive, got %d", c.FramesPerEpoch)
	}
	if d, err := time.ParseDuration(c.EpochInterval); err != nil {
		return fmt.Errorf("invalid epoch interval %q: %w", c.EpochInterval, err)
	} else if d <= 0 {
		return fmt.Errorf("epoch interval must be positive, got %v", d)
	}
	if c.AmortizationFactor <= 0 || c.AmortizationFactor > 1 {
		return fmt.Errorf("amortization factor must be in (0, 1], got %v", c.AmortizationFactor)
	}
	if c.AngularTolerance <= 0 {
		return fmt.Errorf("angular tolerance must be positive, got %v", c.AngularTolerance)
	}
	if c.SpectralDim < 1 {
		return fmt.Errorf("spectral dimension must be positive, got %d", c.SpectralDim)
	}
	if c.Horizon < 1 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	if c.AssumedWatts <= 0 {
		return fmt.Errorf("assumed watts must be positive, got %v", c.AssumedWatts)
	}
	return nil
}

// GetEpochInterval parses the aggregation window, falling back to one
// second when the string is absent or malformed. Validate reports the
// malformed case; runtime consumers always get a usable window.
func (c *Config) GetEpochInterval() time.Duration {
	if c.EpochInterval == "" {
		return time.Second
	}
	d, err := time.ParseDuration(c.EpochInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// PrimaryBlowup returns the blow-up factor later stages operate at: the
// largest of the configured set.
func (c *Config) PrimaryBlowup() int {
	max := c.BlowupFactors[0]
	for _, b := range c.BlowupFactors[1:] {
		if b > max {
			max = b
		}
	}
	return max
}

// LoadFromFile reads a YAML config file over the defaults: options the
// file omits keep their default values.
func LoadFromFile(path string) (*Config, error) {
	c := DefaultConfig()
	if err := c.MergeFile(path); err != nil {
		return nil, err
	}
	return c, nil
}

// MergeFile overlays the options present in the YAML file onto c.
// Unmarshalling into the populated struct touches only the keys the file
// sets, so an explicit zero (contraction_sigma: 0, trace_seed: 0)
// overrides the earlier layer like any other value. The read error is
// returned unwrapped for the loader's IsNotExist check.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}
