package tkaudit

import (
	"context"
	"testing"
)

// TestFacadeTraceGeneration exercises the re-exported trace API.
func TestFacadeTraceGeneration(t *testing.T) {
	tr, err := Generate(7, NewDampedKinematic(), 64)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if tr.Len() != 64 {
		t.Errorf("Len() = %d, expected 64", tr.Len())
	}
}

// TestFacadeDomainSizing exercises the re-exported sizer with the audited
// operating point.
func TestFacadeDomainSizing(t *testing.T) {
	dp, err := NewSizer().SizeDomain(1024, 8, 128)
	if err != nil {
		t.Fatalf("SizeDomain failed: %v", err)
	}
	if dp.DomainSize != 8192 {
		t.Errorf("DomainSize = %d, expected 8192", dp.DomainSize)
	}
	if dp.Queries != 43 {
		t.Errorf("Queries = %d, expected 43", dp.Queries)
	}
}

// TestFacadeSpectrum exercises the closed-form spectrum re-export.
func TestFacadeSpectrum(t *testing.T) {
	report, err := Spectrum(8)
	if err != nil {
		t.Fatalf("Spectrum failed: %v", err)
	}
	if report.Gap != 2 {
		t.Errorf("Gap = %g, expected 2", report.Gap)
	}
}

// TestFacadeStability exercises the contraction check re-export.
func TestFacadeStability(t *testing.T) {
	v, err := CheckContraction(0.95, 0.01)
	if err != nil {
		t.Fatalf("CheckContraction failed: %v", err)
	}
	if v.FixedPointBound <= 0 {
		t.Errorf("FixedPointBound = %g, expected positive", v.FixedPointBound)
	}
}

// TestFacadePipeline assembles and runs a pipeline through the facade.
func TestFacadePipeline(t *testing.T) {
	goals := []Goal{
		{ID: "noop", Run: func(ctx context.Context, st *RunState) (GoalResult, error) {
			return GoalResult{Detail: "ok"}, nil
		}},
	}

	p, err := NewPipeline(goals)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	record, aborted, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if aborted != "" {
		t.Errorf("aborted = %q, expected empty", aborted)
	}
	if !record.Sealed() {
		t.Error("record must be sealed after the run")
	}
	if len(record.Entries()) != 1 {
		t.Errorf("got %d entries, expected 1", len(record.Entries()))
	}
}

// TestFacadeDefaults verifies DefaultConfig and DefaultGoals wire together.
func TestFacadeDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	goals := DefaultGoals(cfg)
	if len(goals) != 9 {
		t.Errorf("got %d default goals, expected 9", len(goals))
	}
}
