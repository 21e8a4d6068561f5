package spectral

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// MaxDenseDim caps the numeric path: the dense adjacency matrix has
// 4^N entries, so N=12 (4096 vertices, 128 MiB of float64) is the
// practical ceiling on commodity hardware.
const MaxDenseDim = 12

// Augmenter adds shortcut edges to a hypercube adjacency matrix. The
// exact edge-selection rule is deliberately pluggable: the analyzer only
// asserts what the augmentation must not do to the gap.
type Augmenter interface {
	// Name identifies the rule in audit records.
	Name() string

	// Augment mutates the adjacency matrix of the n-cube in place.
	Augment(n int, adj *mat.SymDense)
}

// AntipodalShortcuts is the shipped augmentation rule: one extra edge
// from every vertex to its antipode (v XOR (2^n - 1)), halving the graph
// diameter.
type AntipodalShortcuts struct{}

// Name implements Augmenter.
func (AntipodalShortcuts) Name() string { return "antipodal-shortcuts" }

// Augment implements Augmenter.
func (AntipodalShortcuts) Augment(n int, adj *mat.SymDense) {
	mask := (1 << n) - 1
	for v := 0; v < 1<<n; v++ {
		adj.SetSym(v, v^mask, 1)
	}
}

// AdjacencyMatrix builds the dense adjacency matrix of the n-cube.
func AdjacencyMatrix(n int) (*mat.SymDense, error) {
	if n < 1 {
		return nil, fmt.Errorf("hypercube dimension must be positive, got %d", n)
	}
	if n > MaxDenseDim {
		return nil, fmt.Errorf("hypercube dimension %d exceeds dense-matrix limit %d", n, MaxDenseDim)
	}

	size := 1 << n
	adj := mat.NewSymDense(size, nil)
	for v := 0; v < size; v++ {
		for _, w := range HammingNeighbors(v, n) {
			if w > v {
				adj.SetSym(v, w, 1)
			}
		}
	}
	return adj, nil
}

// AugmentedSpectrum computes the spectrum of the n-cube after applying the
// augmenter, using a dense symmetric eigendecomposition, and asserts the
// spectral gap did not shrink below the floor. Shortcut edges are supposed
// to speed mixing up; an augmentation that narrows the gap is rejected.
func AugmentedSpectrum(n int, aug Augmenter, gapFloor float64) (*SpectrumReport, error) {
	adj, err := AdjacencyMatrix(n)
	if err != nil {
		return nil, err
	}
	aug.Augment(n, adj)

	var eig mat.EigenSym
	if ok := eig.Factorize(adj, false); !ok {
		return nil, fmt.Errorf("eigendecomposition failed for augmented %d-cube", n)
	}

	values := eig.Values(nil)
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	gap := values[0] - values[1]
	if gap < gapFloor {
		return nil, fmt.Errorf("augmented %d-cube gap %.6f below floor %.6f (rule %q)",
			n, gap, gapFloor, aug.Name())
	}

	multiplicities := make([]int, len(values))
	for i := range multiplicities {
		multiplicities[i] = 1
	}

	return &SpectrumReport{
		N:               n,
		Vertices:        1 << n,
		Eigenvalues:     values,
		Multiplicities:  multiplicities,
		Gap:             gap,
		NormalizedGap:   gap / float64(n),
		MixingTimeBound: MixingTimeBound(n),
		Augmented:       aug.Name(),
	}, nil
}
