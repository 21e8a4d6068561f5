package spectral

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestSpectrumQ8 checks the full closed-form spectrum of the 8-cube.
func TestSpectrumQ8(t *testing.T) {
	report, err := Spectrum(8)
	if err != nil {
		t.Fatalf("Spectrum failed: %v", err)
	}

	wantEigen := []float64{8, 6, 4, 2, 0, -2, -4, -6, -8}
	wantMult := []int{1, 8, 28, 56, 70, 56, 28, 8, 1}

	if len(report.Eigenvalues) != len(wantEigen) {
		t.Fatalf("got %d eigenvalues, expected %d", len(report.Eigenvalues), len(wantEigen))
	}
	for i := range wantEigen {
		if report.Eigenvalues[i] != wantEigen[i] {
			t.Errorf("eigenvalue %d = %g, expected %g", i, report.Eigenvalues[i], wantEigen[i])
		}
		if report.Multiplicities[i] != wantMult[i] {
			t.Errorf("multiplicity %d = %d, expected %d", i, report.Multiplicities[i], wantMult[i])
		}
	}

	if report.Vertices != 256 {
		t.Errorf("Vertices = %d, expected 256", report.Vertices)
	}
	if report.Gap != 2 {
		t.Errorf("Gap = %g, expected 2", report.Gap)
	}
	if report.NormalizedGap != 0.25 {
		t.Errorf("NormalizedGap = %g, expected 0.25", report.NormalizedGap)
	}
}

// TestSpectrumGapInvariant verifies gap 2 and normalized gap 2/N across
// dimensions, and that multiplicities sum to 2^N.
func TestSpectrumGapInvariant(t *testing.T) {
	for n := 1; n <= 20; n++ {
		report, err := Spectrum(n)
		if err != nil {
			t.Fatalf("Spectrum(%d) failed: %v", n, err)
		}
		if report.Gap != 2 {
			t.Errorf("Spectrum(%d).Gap = %g, expected 2", n, report.Gap)
		}
		if report.NormalizedGap != 2.0/float64(n) {
			t.Errorf("Spectrum(%d).NormalizedGap = %g, expected %g", n, report.NormalizedGap, 2.0/float64(n))
		}

		total := 0
		for _, m := range report.Multiplicities {
			total += m
		}
		if total != 1<<n {
			t.Errorf("Spectrum(%d) multiplicities sum to %d, expected %d", n, total, 1<<n)
		}
	}
}

// TestSpectrumValidation tests dimension bounds.
func TestSpectrumValidation(t *testing.T) {
	if _, err := Spectrum(0); err == nil {
		t.Error("expected error for dimension 0")
	}
	if _, err := Spectrum(MaxClosedFormDim + 1); err == nil {
		t.Error("expected error above the closed-form limit")
	}
}

// TestHammingNeighbors verifies the neighbor set of a vertex.
func TestHammingNeighbors(t *testing.T) {
	neighbors := HammingNeighbors(0b101, 3)
	want := map[int]bool{0b100: true, 0b111: true, 0b001: true}
	if len(neighbors) != 3 {
		t.Fatalf("got %d neighbors, expected 3", len(neighbors))
	}
	for _, w := range neighbors {
		if !want[w] {
			t.Errorf("unexpected neighbor %b", w)
		}
	}
}

// TestGapCurve verifies the 2/N series.
func TestGapCurve(t *testing.T) {
	points, err := GapCurve(16)
	if err != nil {
		t.Fatalf("GapCurve failed: %v", err)
	}
	if len(points) != 16 {
		t.Fatalf("got %d points, expected 16", len(points))
	}
	for _, p := range points {
		if p.NormalizedGap != 2.0/float64(p.N) {
			t.Errorf("point N=%d gap %g, expected %g", p.N, p.NormalizedGap, 2.0/float64(p.N))
		}
	}

	if _, err := GapCurve(0); err == nil {
		t.Error("expected error for empty curve")
	}
}

// TestAdjacencyMatrix verifies the dense matrix is N-regular and symmetric.
func TestAdjacencyMatrix(t *testing.T) {
	n := 4
	adj, err := AdjacencyMatrix(n)
	if err != nil {
		t.Fatalf("AdjacencyMatrix failed: %v", err)
	}

	size := 1 << n
	for v := 0; v < size; v++ {
		degree := 0.0
		for w := 0; w < size; w++ {
			degree += adj.At(v, w)
			if adj.At(v, w) != adj.At(w, v) {
				t.Fatalf("adjacency not symmetric at (%d, %d)", v, w)
			}
		}
		if degree != float64(n) {
			t.Errorf("vertex %d has degree %g, expected %d", v, degree, n)
		}
	}

	if _, err := AdjacencyMatrix(0); err == nil {
		t.Error("expected error for dimension 0")
	}
	if _, err := AdjacencyMatrix(MaxDenseDim + 1); err == nil {
		t.Error("expected error above the dense limit")
	}
}

// TestDenseSpectrumMatchesClosedForm cross-checks the eigensolver against
// the closed form on the plain cube via a no-op augmentation.
func TestDenseSpectrumMatchesClosedForm(t *testing.T) {
	report, err := AugmentedSpectrum(5, noopAugmenter{}, 1.9)
	if err != nil {
		t.Fatalf("AugmentedSpectrum failed: %v", err)
	}

	if math.Abs(report.Gap-2) > 1e-9 {
		t.Errorf("dense gap = %g, expected 2", report.Gap)
	}
	if math.Abs(report.Eigenvalues[0]-5) > 1e-9 {
		t.Errorf("largest eigenvalue = %g, expected 5", report.Eigenvalues[0])
	}
}

type noopAugmenter struct{}

func (noopAugmenter) Name() string               { return "noop" }
func (noopAugmenter) Augment(int, *mat.SymDense) {}

// TestAntipodalShortcuts verifies the shipped augmentation widens the gap
// to 4 and never drops below the audited floor.
func TestAntipodalShortcuts(t *testing.T) {
	report, err := AugmentedSpectrum(8, AntipodalShortcuts{}, 2.0)
	if err != nil {
		t.Fatalf("AugmentedSpectrum failed: %v", err)
	}

	// Eigenvalues become (N-2k) + (-1)^k: top is N+1, runner-up N-3.
	if math.Abs(report.Eigenvalues[0]-9) > 1e-9 {
		t.Errorf("largest eigenvalue = %g, expected 9", report.Eigenvalues[0])
	}
	if math.Abs(report.Gap-4) > 1e-9 {
		t.Errorf("Gap = %g, expected 4", report.Gap)
	}
	if report.Augmented != "antipodal-shortcuts" {
		t.Errorf("Augmented = %q", report.Augmented)
	}
}

// TestAugmentedGapFloor verifies a gap below the floor is rejected.
func TestAugmentedGapFloor(t *testing.T) {
	if _, err := AugmentedSpectrum(5, noopAugmenter{}, 3.0); err == nil {
		t.Error("expected gap-floor rejection, got nil")
	}
}
