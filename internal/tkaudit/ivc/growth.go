package ivc

import "fmt"

// GrowthModel projects verifier-state size across recursion depth:
// stateBytes(depth) = base * overhead^depth. Overhead above 1 eventually
// breaches any memory envelope; the model reports the deepest level that
// still fits.
type GrowthModel struct {
	BaseFields     int // verifier state in field elements at depth 0
	BytesPerField  int
	OverheadFactor float64 // amortized per-fold inflation
	MemoryEnvelope uint64  // safe memory in bytes
}

// NewGrowthModel returns the audited consumer-hardware defaults: 128 field
// elements of verifier state, 8-byte fields, 1.15x per-fold overhead and a
// 6.5 GiB envelope.
func NewGrowthModel() *GrowthModel {
	return &GrowthModel{
		BaseFields:     128,
		BytesPerField:  8,
		OverheadFactor: 1.15,
		MemoryEnvelope: 6<<30 + 1<<29,
	}
}

// StateBytes returns the projected verifier-state size after depth folds.
func (m *GrowthModel) StateBytes(depth int) uint64 {
	size := float64(m.BaseFields * m.BytesPerField)
	for i := 0; i < depth; i++ {
		size *= m.OverheadFactor
	}
	return uint64(size)
}

// MaxSafeDepth returns the deepest recursion level whose projected state
// still fits the memory envelope, scanning up to maxDepth.
func (m *GrowthModel) MaxSafeDepth(maxDepth int) (int, error) {
	if maxDepth < 1 {
		return 0, fmt.Errorf("max depth must be positive, got %d", maxDepth)
	}

	safe := 0
	for depth := 1; depth <= maxDepth; depth++ {
		if m.StateBytes(depth) > m.MemoryEnvelope {
			break
		}
		safe = depth
	}
	if safe == 0 {
		return 0, &UnboundedGrowthError{
			Step:   1,
			Reason: fmt.Sprintf("verifier state %d bytes exceeds envelope %d at the first fold", m.StateBytes(1), m.MemoryEnvelope),
		}
	}
	return safe, nil
}
