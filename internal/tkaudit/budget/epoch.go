package budget

import (
	"fmt"
	"time"
)

// DefaultAmortizationFactor is the share of an epoch interval the prover
// may consume; the remainder is safety margin for aggregation overhead and
// scheduling jitter.
const DefaultAmortizationFactor = 0.70

// EpochVerdict is the feasibility result for one epoch configuration.
type EpochVerdict struct {
	FramesPerEpoch int
	PerFrameCost   time.Duration
	EpochInterval  time.Duration
	TotalCost      time.Duration
	UsableBudget   time.Duration // interval scaled by the amortization factor
	Utilization    float64       // TotalCost / EpochInterval
	Headroom       float64       // 1 - Utilization
	Feasible       bool
}

// CheckEpoch verifies that folding framesPerEpoch per-frame proofs into
// one epoch proof keeps total prover cost within the amortized real-time
// budget:
//
//	frames × perFrameCost <= epochInterval × amortizationFactor
//
// An epoch that does not fit is a soft shortfall, not an abort.
func CheckEpoch(framesPerEpoch int, perFrameCost, epochInterval time.Duration, amortizationFactor float64) (EpochVerdict, error) {
	if framesPerEpoch <= 0 {
		return EpochVerdict{}, fmt.Errorf("frames per epoch must be positive, got %d", framesPerEpoch)
	}
	if perFrameCost <= 0 {
		return EpochVerdict{}, fmt.Errorf("per-frame cost must be positive, got %v", perFrameCost)
	}
	if epochInterval <= 0 {
		return EpochVerdict{}, fmt.Errorf("epoch interval must be positive, got %v", epochInterval)
	}
	if amortizationFactor <= 0 || amortizationFactor > 1 {
		return EpochVerdict{}, fmt.Errorf("amortization factor must be in (0, 1], got %v", amortizationFactor)
	}

	total := time.Duration(framesPerEpoch) * perFrameCost
	usable := time.Duration(float64(epochInterval) * amortizationFactor)
	utilization := durationSeconds(total) / durationSeconds(epochInterval)

	return EpochVerdict{
		FramesPerEpoch: framesPerEpoch,
		PerFrameCost:   perFrameCost,
		EpochInterval:  epochInterval,
		TotalCost:      total,
		UsableBudget:   usable,
		Utilization:    utilization,
		Headroom:       1 - utilization,
		Feasible:       total <= usable,
	}, nil
}

// String summarizes the verdict for audit detail lines.
func (v EpochVerdict) String() string {
	status := "epoch fits"
	if !v.Feasible {
		status = "epoch shortfall"
	}
	return fmt.Sprintf("%s: %d frames × %v = %v against %v usable of %v, headroom %.2f",
		status, v.FramesPerEpoch, v.PerFrameCost, v.TotalCost, v.UsableBudget, v.EpochInterval, v.Headroom)
}

// OperatingPoint is one frame-rate / epoch-window combination.
type OperatingPoint struct {
	FrameRateHz   int
	EpochInterval time.Duration
	Verdict       EpochVerdict
}

// SweepOperatingPoints evaluates every frame-rate and epoch-window
// combination, returning the viability table. Each point derives its frame
// count from the rate and window; individual shortfalls stay in the table.
func SweepOperatingPoints(frameRates []int, windows []time.Duration, perFrameCost time.Duration, amortizationFactor float64) ([]OperatingPoint, error) {
	var points []OperatingPoint
	for _, fps := range frameRates {
		if fps <= 0 {
			return nil, fmt.Errorf("frame rate must be positive, got %d", fps)
		}
		for _, window := range windows {
			frames := int(float64(fps) * durationSeconds(window))
			if frames < 1 {
				frames = 1
			}
			v, err := CheckEpoch(frames, perFrameCost, window, amortizationFactor)
			if err != nil {
				return nil, fmt.Errorf("operating point %d Hz / %v: %w", fps, window, err)
			}
			points = append(points, OperatingPoint{FrameRateHz: fps, EpochInterval: window, Verdict: v})
		}
	}
	return points, nil
}
