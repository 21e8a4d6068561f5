// Package stability solves the closed-form error recurrence
//
//	e_{t+1} = ρ·e_t + σ
//
// and verifies contractivity (ρ < 1), the fixed-point bound σ/(1-ρ), and
// bounded drift of an energy-like quantity under repeated noisy updates.
// The recursion bound checker delegates here: a folding schedule is
// horizon-independent exactly when its cost recurrence is a contraction.
package stability

import (
	"fmt"
	"math"
)

// DivergenceError reports a contraction coefficient at or above 1: the
// recurrence diverges and no horizon-independent bound exists.
type DivergenceError struct {
	Rho float64
}

// Error returns the error message.
func (e *DivergenceError) Error() string {
	return fmt.Sprintf("contraction coefficient %v >= 1: recurrence diverges", e.Rho)
}

// StabilityVerdict is the result of a successful contraction check.
type StabilityVerdict struct {
	Rho             float64
	Sigma           float64
	FixedPointBound float64 // σ / (1 - ρ), the limit of e_t
}

// RateAt returns the residual convergence factor ρ^t after t steps.
func (v StabilityVerdict) RateAt(t int) float64 {
	return math.Pow(v.Rho, float64(t))
}

// StepsToResidual returns the number of steps until the transient term
// decays below the given residual, i.e. the smallest t with ρ^t <= r.
func (v StabilityVerdict) StepsToResidual(r float64) int {
	if r <= 0 || r >= 1 || v.Rho == 0 {
		return 0
	}
	return int(math.Ceil(math.Log(r) / math.Log(v.Rho)))
}

// CheckContraction verifies ρ ∈ [0, 1) and returns the fixed-point bound
// σ/(1-ρ). ρ >= 1 is a hard failure: the error term grows without bound.
func CheckContraction(rho, sigma float64) (StabilityVerdict, error) {
	if math.IsNaN(rho) || math.IsNaN(sigma) {
		return StabilityVerdict{}, fmt.Errorf("contraction inputs must be numeric, got rho=%v sigma=%v", rho, sigma)
	}
	if rho < 0 {
		return StabilityVerdict{}, fmt.Errorf("contraction coefficient must be non-negative, got %v", rho)
	}
	if sigma < 0 {
		return StabilityVerdict{}, fmt.Errorf("noise bound must be non-negative, got %v", sigma)
	}
	if rho >= 1 {
		return StabilityVerdict{}, &DivergenceError{Rho: rho}
	}

	return StabilityVerdict{
		Rho:             rho,
		Sigma:           sigma,
		FixedPointBound: sigma / (1 - rho),
	}, nil
}

// DriftVerdict is the result of the dissipative-dynamics check.
type DriftVerdict struct {
	Steps       int
	MaxDrift    float64 // max |e_{t+1} - e_t| observed
	FinalEnergy float64
	Tolerance   float64
	Bounded     bool
}

// CheckDrift simulates the noisy contraction
//
//	e_{t+1} = ρ·e_t + σ·sin(13.37·e_t)
//
// from e_0 = 1 for the given number of steps and verifies the maximum
// per-step energy drift stays under the tolerance. The sinusoidal noise
// term is deterministic and bounded by σ, so every rerun reproduces the
// same drift profile.
func CheckDrift(rho, sigma float64, steps int, tolerance float64) (DriftVerdict, error) {
	if steps <= 0 {
		return DriftVerdict{}, fmt.Errorf("drift check needs a positive step count, got %d", steps)
	}
	if _, err := CheckContraction(rho, sigma); err != nil {
		return DriftVerdict{}, err
	}

	energy := 1.0
	maxDrift := 0.0
	for t := 0; t < steps; t++ {
		next := rho*energy + sigma*math.Sin(13.37*energy)
		if d := math.Abs(next - energy); d > maxDrift {
			maxDrift = d
		}
		energy = next
	}

	return DriftVerdict{
		Steps:       steps,
		MaxDrift:    maxDrift,
		FinalEnergy: energy,
		Tolerance:   tolerance,
		Bounded:     maxDrift <= tolerance,
	}, nil
}
