// Package ivc checks that a recursive proof-aggregation schedule stays
// bounded: constant proof size across folds, composed constraint degree
// under the family ceiling, and verifier work logarithmic in the fold
// index. Horizon independence reduces to a contraction check on the
// per-fold state recurrence, delegated to the stability package.
package ivc

import (
	"fmt"
	"math"

	"github.com/tetraklein/tkaudit/internal/tkaudit/stability"
)

// FoldStep is one step of a folding schedule.
type FoldStep struct {
	Index       int
	InputProofs int
	OutputBytes int // proof size after this fold
	Degree      int // composed constraint degree after this fold
	VerifierOps int // verifier work this fold performs
}

// FoldingSchedule is an ordered list of fold steps plus the recurrence
// parameters of the verifier-state growth model.
type FoldingSchedule struct {
	Steps []FoldStep

	// StateBaseBytes is the verifier state size before any fold.
	StateBaseBytes int

	// StateContraction is the contraction coefficient ρ of the per-fold
	// residual recurrence. Horizon independence requires ρ < 1.
	StateContraction float64

	// StateNoise is the additive per-fold residual bound σ.
	StateNoise float64
}

// UnboundedGrowthError reports a schedule step that violates one of the
// boundedness invariants. Recursion built on such a schedule blows up with
// the horizon, so this is a hard failure.
type UnboundedGrowthError struct {
	Step   int
	Reason string
}

// Error returns the error message.
func (e *UnboundedGrowthError) Error() string {
	return fmt.Sprintf("folding schedule unbounded at step %d: %s", e.Step, e.Reason)
}

// FoldingVerdict is the result of a successful schedule check.
type FoldingVerdict struct {
	Steps           int
	MaxOutputBytes  int
	MaxDegree       int
	MaxVerifierOps  int
	RecursionLevels int     // folds needed to reach the horizon
	StateBound      float64 // fixed-point bound of the state recurrence
}

// Checker validates folding schedules under fixed ceilings.
type Checker struct {
	// ByteCeiling is the hard proof-size ceiling.
	ByteCeiling int

	// ByteTolerance is the allowed deviation from the first step's output
	// size; constant-size recursion means every fold stays within it.
	ByteTolerance int

	// DegreeCeiling bounds the composed constraint degree.
	DegreeCeiling int

	// OpsSlack is the multiplicative slack allowed over the logarithmic
	// verifier-work envelope calibrated on the first step.
	OpsSlack float64
}

// NewChecker returns a checker with the audited defaults: 64 KiB proof
// ceiling, 256-byte constancy tolerance, composed degree ceiling 4, and
// 1.5x slack on the logarithmic work envelope.
func NewChecker() *Checker {
	return &Checker{
		ByteCeiling:   64 << 10,
		ByteTolerance: 256,
		DegreeCeiling: 4,
		OpsSlack:      1.5,
	}
}

// CheckFolding walks the schedule and asserts, per step: constant output
// size within tolerance, composed degree under the ceiling, and verifier
// work under the logarithmic envelope. It then verifies the per-fold state
// recurrence is a contraction, which makes the per-fold cost independent
// of the horizon, and computes the recursion levels needed to reach it.
func (c *Checker) CheckFolding(schedule FoldingSchedule, horizon int) (FoldingVerdict, error) {
	if len(schedule.Steps) == 0 {
		return FoldingVerdict{}, fmt.Errorf("folding schedule has no steps")
	}
	if horizon < 1 {
		return FoldingVerdict{}, fmt.Errorf("horizon must be positive, got %d", horizon)
	}

	first := schedule.Steps[0]
	if first.InputProofs < 2 {
		return FoldingVerdict{}, fmt.Errorf("fold arity must be at least 2, got %d", first.InputProofs)
	}

	// Work envelope: ops(step) <= c0 * log2(step+1) * slack, with c0
	// calibrated on the first step. A linear-growth schedule escapes the
	// envelope within a few steps.
	c0 := float64(first.VerifierOps) / math.Log2(float64(first.Index)+2)

	verdict := FoldingVerdict{Steps: len(schedule.Steps)}
	for _, step := range schedule.Steps {
		if step.OutputBytes > c.ByteCeiling {
			return FoldingVerdict{}, &UnboundedGrowthError{
				Step:   step.Index,
				Reason: fmt.Sprintf("output size %d bytes exceeds ceiling %d", step.OutputBytes, c.ByteCeiling),
			}
		}
		if delta := abs(step.OutputBytes - first.OutputBytes); delta > c.ByteTolerance {
			return FoldingVerdict{}, &UnboundedGrowthError{
				Step:   step.Index,
				Reason: fmt.Sprintf("output size drifts %d bytes from step %d, tolerance %d", delta, first.Index, c.ByteTolerance),
			}
		}
		if step.Degree > c.DegreeCeiling {
			return FoldingVerdict{}, &UnboundedGrowthError{
				Step:   step.Index,
				Reason: fmt.Sprintf("composed degree %d exceeds ceiling %d", step.Degree, c.DegreeCeiling),
			}
		}

		envelope := c0 * math.Log2(float64(step.Index)+2) * c.OpsSlack
		if float64(step.VerifierOps) > envelope {
			return FoldingVerdict{}, &UnboundedGrowthError{
				Step:   step.Index,
				Reason: fmt.Sprintf("verifier work %d exceeds logarithmic envelope %.0f", step.VerifierOps, envelope),
			}
		}

		if step.OutputBytes > verdict.MaxOutputBytes {
			verdict.MaxOutputBytes = step.OutputBytes
		}
		if step.Degree > verdict.MaxDegree {
			verdict.MaxDegree = step.Degree
		}
		if step.VerifierOps > verdict.MaxVerifierOps {
			verdict.MaxVerifierOps = step.VerifierOps
		}
	}

	sv, err := stability.CheckContraction(schedule.StateContraction, schedule.StateNoise)
	if err != nil {
		return FoldingVerdict{}, fmt.Errorf("state recurrence: %w", err)
	}
	verdict.StateBound = sv.FixedPointBound
	verdict.RecursionLevels = RecursionLevels(horizon, first.InputProofs)

	return verdict, nil
}

// RecursionLevels returns the number of folding levels needed to aggregate
// horizon leaves with the given fold arity: ceil(log_arity(horizon)).
func RecursionLevels(horizon, arity int) int {
	if horizon <= 1 || arity < 2 {
		return 0
	}
	levels := 0
	n := horizon
	for n > 1 {
		n = (n + arity - 1) / arity
		levels++
	}
	return levels
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
