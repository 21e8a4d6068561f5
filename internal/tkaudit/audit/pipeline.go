package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tetraklein/tkaudit/internal/tkaudit/budget"
	"github.com/tetraklein/tkaudit/internal/tkaudit/envprobe"
	"github.com/tetraklein/tkaudit/internal/tkaudit/fri"
	"github.com/tetraklein/tkaudit/internal/tkaudit/ivc"
	"github.com/tetraklein/tkaudit/internal/tkaudit/spectral"
	"github.com/tetraklein/tkaudit/internal/tkaudit/stability"
	"github.com/tetraklein/tkaudit/internal/tkaudit/trace"
)

// RunState carries each goal's numeric outputs to the goals after it.
// Goals own their slot exclusively and never mutate earlier slots, so the
// sequential pipeline needs no locking.
type RunState struct {
	Snapshot *envprobe.Snapshot
	Trace    *trace.Trace

	MaxDegree      int
	ComposedDegree int
	ProxyError     float64

	Sweep   []fri.DomainParameters
	Primary fri.DomainParameters

	Folding      ivc.FoldingVerdict
	MaxSafeDepth int

	Spectrum  *spectral.SpectrumReport
	Augmented *spectral.SpectrumReport

	Stability stability.StabilityVerdict
	Drift     stability.DriftVerdict

	Bench  budget.BenchResult
	Budget budget.BudgetVerdict
	Epoch  budget.EpochVerdict
}

// GoalResult is what a goal hands back for recording. A soft failure is
// recorded as a FAIL verdict but does not halt the run; a returned error
// is a hard failure and aborts the pipeline at this goal.
type GoalResult struct {
	Inputs   map[string]any
	Outputs  map[string]any
	SoftFail bool
	Detail   string
}

// Goal is one audit stage: an ID and a closure over the run state.
type Goal struct {
	ID  string
	Run func(ctx context.Context, st *RunState) (GoalResult, error)
}

// Pipeline executes goals strictly sequentially against one audit record.
// Goal k+1 never starts before goal k's verdict is recorded; the first
// hard failure halts the run with no downstream goal executing.
type Pipeline struct {
	goals   []Goal
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics registers pipeline metrics on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Pipeline) { p.metrics = NewMetrics(reg) }
}

// NewPipeline builds a pipeline over the ordered goal list.
func NewPipeline(goals []Goal, opts ...Option) (*Pipeline, error) {
	if len(goals) == 0 {
		return nil, fmt.Errorf("pipeline needs at least one goal")
	}
	seen := map[string]bool{}
	for _, g := range goals {
		if g.ID == "" || g.Run == nil {
			return nil, fmt.Errorf("every goal needs an id and a run function")
		}
		if seen[g.ID] {
			return nil, fmt.Errorf("duplicate goal id %q", g.ID)
		}
		seen[g.ID] = true
	}

	p := &Pipeline{goals: goals, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes the pipeline and returns the sealed record. On a hard
// failure the record contains the failing goal's FAIL entry as its last
// line, the returned error wraps the goal's error, and the returned abort
// name identifies the goal; soft shortfalls are recorded and the run
// continues.
func (p *Pipeline) Run(ctx context.Context) (*Record, string, error) {
	record := NewRecord()
	p.logger.Info("audit run starting",
		slog.String("run_id", record.RunID),
		slog.Int("goals", len(p.goals)),
	)

	state := &RunState{}
	for _, goal := range p.goals {
		if err := ctx.Err(); err != nil {
			p.seal(record)
			return record, goal.ID, fmt.Errorf("audit cancelled before goal %s: %w", goal.ID, err)
		}

		var result GoalResult
		var goalErr error
		usage, _ := envprobe.ProfileFunc(p.logger, goal.ID, func() error {
			result, goalErr = goal.Run(ctx, state)
			return goalErr
		})

		entry := Entry{
			GoalID:  goal.ID,
			Inputs:  result.Inputs,
			Outputs: result.Outputs,
			Verdict: VerdictOK,
			Detail:  result.Detail,
			Elapsed: usage.Elapsed,
		}

		if goalErr != nil {
			entry.Verdict = VerdictFail
			entry.Detail = goalErr.Error()
			p.append(record, entry)
			p.observe(goal.ID, usage.Elapsed, VerdictFail)
			p.logger.Error("goal failed hard, aborting run",
				slog.String("goal", goal.ID),
				slog.String("error", goalErr.Error()),
			)
			p.seal(record)
			return record, goal.ID, fmt.Errorf("goal %s: %w", goal.ID, goalErr)
		}

		if result.SoftFail {
			entry.Verdict = VerdictFail
			p.append(record, entry)
			p.observe(goal.ID, usage.Elapsed, VerdictFail)
			p.logger.Warn("goal reported shortfall, continuing",
				slog.String("goal", goal.ID),
				slog.String("detail", result.Detail),
			)
			continue
		}

		p.append(record, entry)
		p.observe(goal.ID, usage.Elapsed, VerdictOK)
		p.logger.Info("goal passed",
			slog.String("goal", goal.ID),
			slog.Duration("elapsed", usage.Elapsed),
		)
	}

	p.seal(record)
	p.logger.Info("audit run finished",
		slog.String("run_id", record.RunID),
		slog.String("terminal", record.TerminalLine("")),
		slog.String("digest", record.Digest()),
	)
	return record, "", nil
}

func (p *Pipeline) append(record *Record, entry Entry) {
	// Append can only fail on a sealed record, which Run never produces
	// mid-flight; treat it as a programming error.
	if err := record.Append(entry); err != nil {
		panic(fmt.Sprintf("audit: append to sealed record: %v", err))
	}
}

func (p *Pipeline) observe(goal string, elapsed time.Duration, verdict Verdict) {
	p.metrics.observe(goal, elapsed.Seconds(), verdict)
}

func (p *Pipeline) seal(record *Record) {
	if _, err := record.Seal(); err != nil {
		p.logger.Error("failed to seal audit record", slog.String("error", err.Error()))
	}
}
