package fri

import (
	"errors"
	"math"
	"testing"
)

// TestSizeDomain tests domain sizing across trace lengths and blow-ups.
func TestSizeDomain(t *testing.T) {
	tests := []struct {
		name        string
		traceLength int
		blowup      int
		wantDomain  int
		wantDepth   int
		wantQueries int
	}{
		{"canonical 1024x8", 1024, 8, 8192, 12, 43},
		{"1024x4", 1024, 4, 4096, 11, 64},
		{"1024x2", 1024, 2, 2048, 10, 128},
		{"non-power trace", 1000, 8, 8192, 12, 43},
		{"tiny", 1, 2, 2, 0, 128},
	}

	s := NewSizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dp, err := s.SizeDomain(tt.traceLength, tt.blowup, 128)
			if err != nil {
				t.Fatalf("SizeDomain failed: %v", err)
			}
			if dp.DomainSize != tt.wantDomain {
				t.Errorf("DomainSize = %d, expected %d", dp.DomainSize, tt.wantDomain)
			}
			if !IsPowerOfTwo(dp.DomainSize) {
				t.Errorf("DomainSize %d is not a power of two", dp.DomainSize)
			}
			if dp.DomainSize < tt.blowup*tt.traceLength {
				t.Errorf("DomainSize %d smaller than blowup*length %d", dp.DomainSize, tt.blowup*tt.traceLength)
			}
			if dp.FoldingDepth != tt.wantDepth {
				t.Errorf("FoldingDepth = %d, expected %d", dp.FoldingDepth, tt.wantDepth)
			}
			if dp.Queries != tt.wantQueries {
				t.Errorf("Queries = %d, expected %d", dp.Queries, tt.wantQueries)
			}
			if dp.MemoryBytes != uint64(dp.DomainSize)*BytesPerElement {
				t.Errorf("MemoryBytes = %d, expected %d", dp.MemoryBytes, uint64(dp.DomainSize)*BytesPerElement)
			}
		})
	}
}

// TestSizeDomainValidation tests input validation.
func TestSizeDomainValidation(t *testing.T) {
	s := NewSizer()

	if _, err := s.SizeDomain(0, 8, 128); err == nil {
		t.Error("expected error for zero trace length")
	}
	if _, err := s.SizeDomain(1024, 1, 128); err == nil {
		t.Error("expected error for blow-up below 2")
	}
	if _, err := s.SizeDomain(1024, 8, 0); err == nil {
		t.Error("expected error for zero soundness target")
	}
}

// TestSizeDomainMemoryCeiling verifies the memory envelope is enforced and
// surfaces as InfeasibleDomainError.
func TestSizeDomainMemoryCeiling(t *testing.T) {
	s := NewSizer()
	s.MemoryCeilingBytes = 1 << 20 // 1 MiB
	s.MaxFoldingDepth = 64

	_, err := s.SizeDomain(1<<20, 8, 128)
	if err == nil {
		t.Fatal("expected InfeasibleDomainError, got nil")
	}
	var infErr *InfeasibleDomainError
	if !errors.As(err, &infErr) {
		t.Fatalf("expected *InfeasibleDomainError, got %T", err)
	}
	if infErr.RequiredBytes <= infErr.CeilingBytes {
		t.Errorf("error reports required %d <= ceiling %d", infErr.RequiredBytes, infErr.CeilingBytes)
	}
}

// TestSizeDomainOverflowGuard verifies that a trace length whose domain
// product would overflow int still fails the memory check instead of
// wrapping around and passing vacuously.
func TestSizeDomainOverflowGuard(t *testing.T) {
	s := NewSizer()

	for _, traceLength := range []int{math.MaxInt / 2, math.MaxInt} {
		_, err := s.SizeDomain(traceLength, 8, 128)
		if err == nil {
			t.Fatalf("expected InfeasibleDomainError for trace length %d, got nil", traceLength)
		}
		var infErr *InfeasibleDomainError
		if !errors.As(err, &infErr) {
			t.Fatalf("expected *InfeasibleDomainError, got %T", err)
		}
		if infErr.RequiredBytes <= infErr.CeilingBytes {
			t.Errorf("error reports required %d <= ceiling %d", infErr.RequiredBytes, infErr.CeilingBytes)
		}
		if infErr.DomainSize <= 0 {
			t.Errorf("error reports non-positive domain size %d", infErr.DomainSize)
		}
	}

	// The guard holds even with the ceiling maxed out.
	s.MemoryCeilingBytes = math.MaxUint64
	if _, err := s.SizeDomain(math.MaxInt/2, 8, 128); err == nil {
		t.Error("expected error with saturated ceiling, got nil")
	}
}

// TestSizeDomainDepthCap verifies the folding sanity cap.
func TestSizeDomainDepthCap(t *testing.T) {
	s := NewSizer()
	s.MaxFoldingDepth = 4

	if _, err := s.SizeDomain(1024, 8, 128); err == nil {
		t.Error("expected folding depth error, got nil")
	}
}

// TestSweepBlowups verifies the sweep produces one row per factor in order.
func TestSweepBlowups(t *testing.T) {
	s := NewSizer()
	rows, err := s.SweepBlowups(1024, []int{2, 4, 8}, 128)
	if err != nil {
		t.Fatalf("SweepBlowups failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, expected 3", len(rows))
	}
	for i, want := range []int{2048, 4096, 8192} {
		if rows[i].DomainSize != want {
			t.Errorf("row %d: DomainSize = %d, expected %d", i, rows[i].DomainSize, want)
		}
	}

	if _, err := s.SweepBlowups(1024, []int{2, 3}, 128); err == nil {
		t.Error("expected error for non-power-of-two blow-up")
	}
}

// TestRequiredQueries tests both soundness models.
func TestRequiredQueries(t *testing.T) {
	tests := []struct {
		name       string
		model      QueryModel
		blowup     int
		domainSize int
		targetBits int
		expected   int
	}{
		{"blowup 8 for 128 bits", QueryModelBlowup, 8, 8192, 128, 43},
		{"blowup 4 for 128 bits", QueryModelBlowup, 4, 4096, 128, 64},
		{"blowup 2 for 100 bits", QueryModelBlowup, 2, 2048, 100, 100},
		{"conservative 8192 domain", QueryModelConservative, 8, 8192, 128, 12}, // 11 bits/query
		{"conservative small target", QueryModelConservative, 8, 8192, 11, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSizer()
			s.Model = tt.model
			q, err := s.RequiredQueries(tt.blowup, tt.domainSize, tt.targetBits)
			if err != nil {
				t.Fatalf("RequiredQueries failed: %v", err)
			}
			if q != tt.expected {
				t.Errorf("RequiredQueries = %d, expected %d", q, tt.expected)
			}

			// The returned count must actually reach the target.
			bits, err := s.SoundnessBits(q, tt.blowup, tt.domainSize)
			if err != nil {
				t.Fatalf("SoundnessBits failed: %v", err)
			}
			if bits < tt.targetBits {
				t.Errorf("%d queries give %d bits, below target %d", q, bits, tt.targetBits)
			}
		})
	}
}

// TestConservativeFieldCap verifies the field size caps per-query credit
// under the conservative model.
func TestConservativeFieldCap(t *testing.T) {
	s := NewSizer()
	s.Model = QueryModelConservative
	s.FieldBits = 8
	s.MaxFoldingDepth = 64

	// log2(8192) - 2 = 11 would exceed the 8-bit field cap.
	bits, err := s.SoundnessBits(1, 8, 8192)
	if err != nil {
		t.Fatalf("SoundnessBits failed: %v", err)
	}
	if bits != 8 {
		t.Errorf("per-query bits = %d, expected field cap 8", bits)
	}
}

// TestQueryModelString tests model names in audit records.
func TestQueryModelString(t *testing.T) {
	if QueryModelBlowup.String() != "blowup-rate" {
		t.Errorf("QueryModelBlowup.String() = %q", QueryModelBlowup.String())
	}
	if QueryModelConservative.String() != "conservative-entropy" {
		t.Errorf("QueryModelConservative.String() = %q", QueryModelConservative.String())
	}
}
