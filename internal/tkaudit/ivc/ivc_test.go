package ivc

import (
	"errors"
	"math"
	"testing"
)

// boundedSchedule builds a constant-size schedule with verifier work on the
// logarithmic envelope.
func boundedSchedule(steps int) FoldingSchedule {
	s := FoldingSchedule{
		StateBaseBytes:   1024,
		StateContraction: 0.95,
		StateNoise:       0.01,
	}
	for i := 0; i < steps; i++ {
		s.Steps = append(s.Steps, FoldStep{
			Index:       i,
			InputProofs: 2,
			OutputBytes: 48 << 10,
			Degree:      4,
			VerifierOps: int(24 * math.Log2(float64(i)+2)),
		})
	}
	return s
}

// TestCheckFolding verifies a bounded schedule passes with the expected
// verdict fields.
func TestCheckFolding(t *testing.T) {
	checker := NewChecker()
	schedule := boundedSchedule(32)

	verdict, err := checker.CheckFolding(schedule, 1<<20)
	if err != nil {
		t.Fatalf("CheckFolding failed: %v", err)
	}
	if verdict.Steps != 32 {
		t.Errorf("Steps = %d, expected 32", verdict.Steps)
	}
	if verdict.MaxOutputBytes != 48<<10 {
		t.Errorf("MaxOutputBytes = %d, expected %d", verdict.MaxOutputBytes, 48<<10)
	}
	if verdict.MaxDegree != 4 {
		t.Errorf("MaxDegree = %d, expected 4", verdict.MaxDegree)
	}
	if verdict.RecursionLevels != 20 {
		t.Errorf("RecursionLevels = %d, expected 20", verdict.RecursionLevels)
	}
	want := 0.01 / (1 - 0.95)
	if math.Abs(verdict.StateBound-want) > 1e-12 {
		t.Errorf("StateBound = %g, expected %g", verdict.StateBound, want)
	}
}

// TestCheckFoldingSizeDrift verifies a growing proof size fails constancy.
func TestCheckFoldingSizeDrift(t *testing.T) {
	checker := NewChecker()
	schedule := boundedSchedule(8)
	schedule.Steps[5].OutputBytes += checker.ByteTolerance + 1

	_, err := checker.CheckFolding(schedule, 1024)
	var growErr *UnboundedGrowthError
	if !errors.As(err, &growErr) {
		t.Fatalf("expected *UnboundedGrowthError, got %v", err)
	}
	if growErr.Step != 5 {
		t.Errorf("error at step %d, expected 5", growErr.Step)
	}
}

// TestCheckFoldingByteCeiling verifies the absolute size ceiling.
func TestCheckFoldingByteCeiling(t *testing.T) {
	checker := NewChecker()
	schedule := boundedSchedule(4)
	for i := range schedule.Steps {
		schedule.Steps[i].OutputBytes = checker.ByteCeiling + 1
	}

	var growErr *UnboundedGrowthError
	_, err := checker.CheckFolding(schedule, 1024)
	if !errors.As(err, &growErr) {
		t.Fatalf("expected *UnboundedGrowthError, got %v", err)
	}
}

// TestCheckFoldingDegree verifies the composed-degree ceiling.
func TestCheckFoldingDegree(t *testing.T) {
	checker := NewChecker()
	schedule := boundedSchedule(4)
	schedule.Steps[2].Degree = checker.DegreeCeiling + 1

	var growErr *UnboundedGrowthError
	_, err := checker.CheckFolding(schedule, 1024)
	if !errors.As(err, &growErr) {
		t.Fatalf("expected *UnboundedGrowthError, got %v", err)
	}
	if growErr.Step != 2 {
		t.Errorf("error at step %d, expected 2", growErr.Step)
	}
}

// TestCheckFoldingLinearWork verifies linearly growing verifier work
// escapes the logarithmic envelope.
func TestCheckFoldingLinearWork(t *testing.T) {
	checker := NewChecker()
	schedule := boundedSchedule(32)
	for i := range schedule.Steps {
		schedule.Steps[i].VerifierOps = 24 * (i + 1)
	}

	var growErr *UnboundedGrowthError
	_, err := checker.CheckFolding(schedule, 1024)
	if !errors.As(err, &growErr) {
		t.Fatalf("expected *UnboundedGrowthError, got %v", err)
	}
}

// TestCheckFoldingDivergentState verifies a non-contractive state
// recurrence fails the horizon-independence check.
func TestCheckFoldingDivergentState(t *testing.T) {
	checker := NewChecker()
	schedule := boundedSchedule(4)
	schedule.StateContraction = 1.0

	if _, err := checker.CheckFolding(schedule, 1024); err == nil {
		t.Fatal("expected divergence error, got nil")
	}
}

// TestCheckFoldingValidation tests schedule-level validation.
func TestCheckFoldingValidation(t *testing.T) {
	checker := NewChecker()

	if _, err := checker.CheckFolding(FoldingSchedule{}, 1024); err == nil {
		t.Error("expected error for empty schedule")
	}
	if _, err := checker.CheckFolding(boundedSchedule(4), 0); err == nil {
		t.Error("expected error for non-positive horizon")
	}

	schedule := boundedSchedule(4)
	schedule.Steps[0].InputProofs = 1
	if _, err := checker.CheckFolding(schedule, 1024); err == nil {
		t.Error("expected error for fold arity below 2")
	}
}

// TestRecursionLevels tests the level count for binary and wider folds.
func TestRecursionLevels(t *testing.T) {
	tests := []struct {
		name     string
		horizon  int
		arity    int
		expected int
	}{
		{"single leaf", 1, 2, 0},
		{"two leaves binary", 2, 2, 1},
		{"1M binary", 1 << 20, 2, 20},
		{"1000 binary", 1000, 2, 10},
		{"81 quaternary", 81, 4, 4},
		{"invalid arity", 8, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecursionLevels(tt.horizon, tt.arity); got != tt.expected {
				t.Errorf("RecursionLevels(%d, %d) = %d, expected %d", tt.horizon, tt.arity, got, tt.expected)
			}
		})
	}
}

// TestGrowthModelStateBytes tests the geometric state projection.
func TestGrowthModelStateBytes(t *testing.T) {
	m := NewGrowthModel()

	if got := m.StateBytes(0); got != 1024 {
		t.Errorf("StateBytes(0) = %d, expected 1024", got)
	}
	wantLevel1 := float64(1024) * 1.15
	if got := m.StateBytes(1); got != uint64(wantLevel1) {
		t.Errorf("StateBytes(1) = %d, expected %d", got, uint64(wantLevel1))
	}
	if m.StateBytes(10) <= m.StateBytes(9) {
		t.Error("state projection must grow with depth for overhead > 1")
	}
}

// TestMaxSafeDepth verifies the deepest level fitting the envelope.
func TestMaxSafeDepth(t *testing.T) {
	m := NewGrowthModel()

	// 1024 * 1.15^d <= 6.5 GiB holds for every d up to the audited cap.
	depth, err := m.MaxSafeDepth(64)
	if err != nil {
		t.Fatalf("MaxSafeDepth failed: %v", err)
	}
	if depth != 64 {
		t.Errorf("MaxSafeDepth = %d, expected 64", depth)
	}

	// A tight envelope cuts the scan short.
	m.MemoryEnvelope = 2048
	depth, err = m.MaxSafeDepth(64)
	if err != nil {
		t.Fatalf("MaxSafeDepth failed: %v", err)
	}
	// 1024 * 1.15^d <= 2048 up to d = 4 (1.15^5 = 2.011).
	if depth != 4 {
		t.Errorf("MaxSafeDepth = %d, expected 4", depth)
	}

	// An envelope below the first fold is a hard failure.
	m.MemoryEnvelope = 1024
	_, err = m.MaxSafeDepth(64)
	var growErr *UnboundedGrowthError
	if !errors.As(err, &growErr) {
		t.Fatalf("expected *UnboundedGrowthError, got %v", err)
	}

	if _, err := m.MaxSafeDepth(0); err == nil {
		t.Error("expected error for non-positive max depth")
	}
}
