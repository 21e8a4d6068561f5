package fri

import "fmt"

// QueryModel selects the soundness formula mapping query count to
// accumulated soundness bits. The audit's pass/fail threshold is sensitive
// to this choice, so the formula in force is always recorded alongside the
// query count.
type QueryModel int

const (
	// QueryModelBlowup is the textbook proximity bound: one query catches
	// a cheating codeword with probability 1 - 1/blowup, so q queries give
	// soundness error (1/blowup)^q, i.e. log2(blowup) bits per query.
	QueryModelBlowup QueryModel = iota

	// QueryModelConservative credits each query with
	// min(FieldBits, log2(domain) - 2) bits: the per-query entropy of the
	// queried position, capped by field size, with two bits of slack.
	QueryModelConservative
)

// String returns the model name for audit records.
func (m QueryModel) String() string {
	switch m {
	case QueryModelBlowup:
		return "blowup-rate"
	case QueryModelConservative:
		return "conservative-entropy"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// RequiredQueries returns the minimum q such that q queries reach the
// soundness target under the sizer's model.
func (s *Sizer) RequiredQueries(blowup, domainSize, targetBits int) (int, error) {
	perQuery, err := s.bitsPerQuery(blowup, domainSize)
	if err != nil {
		return 0, err
	}

	// Minimum integer q with q * perQuery >= targetBits.
	q := (targetBits + perQuery - 1) / perQuery
	if q < 1 {
		q = 1
	}
	return q, nil
}

// SoundnessBits returns the soundness achieved by q queries under the
// sizer's model.
func (s *Sizer) SoundnessBits(queries, blowup, domainSize int) (int, error) {
	perQuery, err := s.bitsPerQuery(blowup, domainSize)
	if err != nil {
		return 0, err
	}
	return queries * perQuery, nil
}

func (s *Sizer) bitsPerQuery(blowup, domainSize int) (int, error) {
	switch s.Model {
	case QueryModelBlowup:
		bits := Log2(blowup)
		if bits < 1 {
			return 0, fmt.Errorf("blow-up factor must be a power of two >= 2, got %d", blowup)
		}
		return bits, nil
	case QueryModelConservative:
		logDomain := Log2(domainSize)
		if logDomain < 0 {
			return 0, fmt.Errorf("domain size must be a power of two, got %d", domainSize)
		}
		bits := logDomain - 2
		if bits > s.FieldBits {
			bits = s.FieldBits
		}
		if bits < 1 {
			return 0, fmt.Errorf("domain size %d too small for the conservative query model", domainSize)
		}
		return bits, nil
	default:
		return 0, fmt.Errorf("unknown query model %d", int(s.Model))
	}
}
