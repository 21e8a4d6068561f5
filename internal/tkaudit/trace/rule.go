package trace

import "math"

// Physical constants of the simulated session. The clipping envelope
// matches the safety constants the constraint families are declared
// against: linear acceleration capped at 1 g, angular velocity at 450°/s,
// latency jitter at 0.5 ms.
const (
	DefaultDT      = 1.0 / 120.0 // 120 Hz tick
	DefaultDamping = 0.98

	MaxLinVel = 9.81
	MaxAngVel = 450.0 * math.Pi / 180.0
	MaxJitter = 5e-4
)

// Rule is a pure state-transition function. Step must depend only on the
// previous state, the seed and the step index; it must never read the
// clock, the environment or shared mutable state.
type Rule interface {
	// Name identifies the rule in trace metadata and audit records.
	Name() string

	// Step computes the state at the given step from its predecessor.
	Step(prev State, seed uint64, step int) State
}

// DampedKinematic is the default update rule: a degree-1 kinematic
// integration step with velocity damping and hard envelope clipping.
// Every relation it induces between consecutive rows is affine, which is
// what keeps the transition constraint family at total degree 1.
type DampedKinematic struct {
	DT      float64
	Damping float64

	// NoiseBound, when positive, adds bounded deterministic noise to the
	// velocity channels. The noise term is a pure function of (seed, step).
	NoiseBound float64
}

// NewDampedKinematic returns the rule with the audited default constants.
func NewDampedKinematic() *DampedKinematic {
	return &DampedKinematic{DT: DefaultDT, Damping: DefaultDamping}
}

// Name implements Rule.
func (r *DampedKinematic) Name() string {
	return "damped-kinematic"
}

// Step implements Rule.
func (r *DampedKinematic) Step(prev State, seed uint64, step int) State {
	next := State{
		Jitter: prev.Jitter,
	}

	for i := 0; i < 3; i++ {
		next.Pos[i] = prev.Pos[i] + prev.VLin[i]*r.DT
		next.Rot[i] = prev.Rot[i] + prev.VAng[i]*r.DT
		next.VLin[i] = prev.VLin[i] * r.Damping
		next.VAng[i] = prev.VAng[i] * r.Damping
	}

	if r.NoiseBound > 0 {
		for i := 0; i < 3; i++ {
			next.VLin[i] += r.NoiseBound * Noise(seed, step, uint64(i))
			next.VAng[i] += r.NoiseBound * Noise(seed, step, 3+uint64(i))
		}
	}

	clip(&next)
	next.Energy = dot(next.VLin, next.VLin) + dot(next.VAng, next.VAng)
	return next
}

// clip applies the hard safety envelope component-wise.
func clip(s *State) {
	for i := 0; i < 3; i++ {
		s.VLin[i] = clamp(s.VLin[i], -MaxLinVel, MaxLinVel)
		s.VAng[i] = clamp(s.VAng[i], -MaxAngVel, MaxAngVel)
	}
	if s.Jitter > MaxJitter {
		s.Jitter = MaxJitter
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
