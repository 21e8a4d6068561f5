// Package fri sizes the low-degree-test evaluation domain and query budget
// for a given trace length, blow-up factor and target soundness. It decides
// feasibility only: whether the domain fits the hardware memory envelope
// and how many queries the soundness target costs. No codeword is ever
// materialized.
package fri

import (
	"fmt"
	"math"
	"math/bits"
)

// BytesPerElement is the in-memory size of one evaluation-domain element
// (uint64 field representation).
const BytesPerElement = 8

// DomainParameters is the output of domain sizing: the full low-degree-test
// parameter set one blow-up factor induces.
type DomainParameters struct {
	TraceLength   int
	Blowup        int
	DomainSize    int // next power of two >= Blowup * TraceLength
	FoldingDepth  int // log2(DomainSize) - log2(final domain floor)
	Queries       int
	SoundnessBits int // target the query count was sized for
	MemoryBytes   uint64
}

// InfeasibleDomainError reports an evaluation domain that exceeds the
// configured memory ceiling. It is a hard failure: the parameter set is
// structurally infeasible on the target hardware.
type InfeasibleDomainError struct {
	DomainSize    int
	RequiredBytes uint64
	CeilingBytes  uint64
}

// Error returns the error message.
func (e *InfeasibleDomainError) Error() string {
	return fmt.Sprintf("evaluation domain of %d elements requires %d bytes, memory ceiling is %d bytes",
		e.DomainSize, e.RequiredBytes, e.CeilingBytes)
}

// Sizer computes domain parameters under a fixed hardware and protocol
// envelope.
type Sizer struct {
	// MemoryCeilingBytes is the safe memory envelope one codeword must fit in.
	MemoryCeilingBytes uint64

	// FinalDomainFloor is the domain size folding stops at. Must be a
	// power of two >= 1.
	FinalDomainFloor int

	// MaxFoldingDepth is a sanity cap on folding rounds.
	MaxFoldingDepth int

	// Model selects the per-query soundness formula.
	Model QueryModel

	// FieldBits caps the soundness contribution of a single query under
	// the conservative model.
	FieldBits int
}

// NewSizer returns a sizer with the audited default envelope: 6.5 GiB safe
// memory, folding down to a 2-element final domain, at most 24 folding
// rounds, and the blow-up-rate query model over a 64-bit field.
func NewSizer() *Sizer {
	return &Sizer{
		MemoryCeilingBytes: 6<<30 + 1<<29, // 6.5 GiB
		FinalDomainFloor:   2,
		MaxFoldingDepth:    24,
		Model:              QueryModelBlowup,
		FieldBits:          64,
	}
}

// SizeDomain computes the domain parameters for one blow-up factor.
// The domain is the next power of two >= blowup * traceLength; folding
// depth is the number of halvings down to the final domain floor; the
// query count is the minimum achieving the soundness target under the
// sizer's model.
func (s *Sizer) SizeDomain(traceLength, blowup, targetSoundnessBits int) (DomainParameters, error) {
	if traceLength <= 0 {
		return DomainParameters{}, fmt.Errorf("trace length must be positive, got %d", traceLength)
	}
	if blowup < 2 {
		return DomainParameters{}, fmt.Errorf("blow-up factor must be at least 2, got %d", blowup)
	}
	if targetSoundnessBits <= 0 {
		return DomainParameters{}, fmt.Errorf("target soundness must be positive, got %d bits", targetSoundnessBits)
	}
	if !IsPowerOfTwo(s.FinalDomainFloor) {
		return DomainParameters{}, fmt.Errorf("final domain floor must be a power of two, got %d", s.FinalDomainFloor)
	}

	// The minimal domain is blowup * traceLength elements. Bound the trace
	// length against the envelope first: past this bound the product can
	// overflow int and slip through the memory check below.
	if maxTrace := s.MemoryCeilingBytes / BytesPerElement / uint64(blowup); uint64(traceLength) > maxTrace {
		elements := mulSat64(uint64(blowup), uint64(traceLength))
		return DomainParameters{}, &InfeasibleDomainError{
			DomainSize:    clampInt(elements),
			RequiredBytes: mulSat64(elements, BytesPerElement),
			CeilingBytes:  s.MemoryCeilingBytes,
		}
	}

	domainSize := NextPowerOfTwo(blowup * traceLength)
	memory := uint64(domainSize) * BytesPerElement
	if memory > s.MemoryCeilingBytes {
		return DomainParameters{}, &InfeasibleDomainError{
			DomainSize:    domainSize,
			RequiredBytes: memory,
			CeilingBytes:  s.MemoryCeilingBytes,
		}
	}

	depth := Log2(domainSize) - Log2(s.FinalDomainFloor)
	if depth < 0 {
		return DomainParameters{}, fmt.Errorf("final domain floor %d exceeds domain size %d", s.FinalDomainFloor, domainSize)
	}
	if depth > s.MaxFoldingDepth {
		return DomainParameters{}, fmt.Errorf("folding depth %d exceeds sanity cap %d", depth, s.MaxFoldingDepth)
	}

	queries, err := s.RequiredQueries(blowup, domainSize, targetSoundnessBits)
	if err != nil {
		return DomainParameters{}, err
	}

	return DomainParameters{
		TraceLength:   traceLength,
		Blowup:        blowup,
		DomainSize:    domainSize,
		FoldingDepth:  depth,
		Queries:       queries,
		SoundnessBits: targetSoundnessBits,
		MemoryBytes:   memory,
	}, nil
}

// mulSat64 multiplies saturating at the top of uint64. The sizer only
// needs the product to compare against the memory ceiling, so the exact
// value past saturation does not matter.
func mulSat64(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

func clampInt(v uint64) int {
	if v > math.MaxInt {
		return math.MaxInt
	}
	return int(v)
}

// SweepBlowups sizes the domain for every blow-up factor in the set,
// returning one parameter row per factor. The first infeasible factor
// aborts the sweep.
func (s *Sizer) SweepBlowups(traceLength int, blowups []int, targetSoundnessBits int) ([]DomainParameters, error) {
	out := make([]DomainParameters, 0, len(blowups))
	for _, b := range blowups {
		dp, err := s.SizeDomain(traceLength, b, targetSoundnessBits)
		if err != nil {
			return nil, fmt.Errorf("blowup %d: %w", b, err)
		}
		out = append(out, dp)
	}
	return out, nil
}
