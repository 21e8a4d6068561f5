// Package trace generates deterministic execution traces for the
// feasibility audit. A trace is the ordered sequence of pose states one
// simulated XR session would emit at a fixed tick rate; the constraint
// checker consumes its column schema, the budget estimator its row count.
package trace

import (
	"fmt"
)

// Columns is the fixed width of a trace row: three position components,
// three orientation components (so(3) local chart), three linear and three
// angular velocity components, jitter and an energy accumulator.
const Columns = 14

// State is one row of the execution trace.
type State struct {
	Pos    [3]float64 // position (m)
	Rot    [3]float64 // orientation, so(3) local chart (rad)
	VLin   [3]float64 // linear velocity (m/s)
	VAng   [3]float64 // angular velocity (rad/s)
	Jitter float64    // frame latency jitter (s)
	Energy float64    // Lyapunov energy accumulator
}

// Row returns the state as a flat column vector in schema order.
func (s State) Row() [Columns]float64 {
	return [Columns]float64{
		s.Pos[0], s.Pos[1], s.Pos[2],
		s.Rot[0], s.Rot[1], s.Rot[2],
		s.VLin[0], s.VLin[1], s.VLin[2],
		s.VAng[0], s.VAng[1], s.VAng[2],
		s.Jitter, s.Energy,
	}
}

// Trace is an immutable, deterministic sequence of states. Two calls to
// Generate with identical seed, rule and length produce bit-identical
// traces.
type Trace struct {
	Seed   uint64
	Rule   string
	states []State
}

// InvalidLengthError is returned when a trace of non-positive length is
// requested.
type InvalidLengthError struct {
	Length int
}

// Error returns the error message.
func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("trace length must be positive, got %d", e.Length)
}

// Generate produces a trace of the given length by iterating the update
// rule from the seeded initial state. The rule must be pure: any noise it
// injects has to be a function of (seed, step) only.
func Generate(seed uint64, rule Rule, length int) (*Trace, error) {
	if length <= 0 {
		return nil, &InvalidLengthError{Length: length}
	}

	states := make([]State, length)
	states[0] = initialState(seed)
	for i := 1; i < length; i++ {
		states[i] = rule.Step(states[i-1], seed, i)
	}

	return &Trace{Seed: seed, Rule: rule.Name(), states: states}, nil
}

// GenerateBatch generates independent traces for each seed concurrently.
// The batch is embarrassingly parallel and fully awaited: the returned
// slice is complete and ordered by seed index. Any per-trace error aborts
// the batch.
func GenerateBatch(seeds []uint64, rule Rule, length int) ([]*Trace, error) {
	traces := make([]*Trace, len(seeds))
	errs := make([]error, len(seeds))

	done := make(chan int, len(seeds))
	for i, seed := range seeds {
		go func(i int, seed uint64) {
			traces[i], errs[i] = Generate(seed, rule, length)
			done <- i
		}(i, seed)
	}
	for range seeds {
		<-done
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("trace %d (seed %d): %w", i, seeds[i], err)
		}
	}
	return traces, nil
}

// Len returns the number of states in the trace.
func (t *Trace) Len() int {
	return len(t.states)
}

// At returns the state at step i.
func (t *Trace) At(i int) State {
	return t.states[i]
}

// States returns a copy of the state sequence.
func (t *Trace) States() []State {
	out := make([]State, len(t.states))
	copy(out, t.states)
	return out
}

// Column returns one column of the trace as a flat series.
func (t *Trace) Column(i int) ([]float64, error) {
	if i < 0 || i >= Columns {
		return nil, fmt.Errorf("column index %d out of range [0, %d)", i, Columns)
	}
	out := make([]float64, len(t.states))
	for j, s := range t.states {
		out[j] = s.Row()[i]
	}
	return out, nil
}

// Schema returns the ordered column names of the trace table.
func Schema() []string {
	return []string{
		"pos_x", "pos_y", "pos_z",
		"rot_x", "rot_y", "rot_z",
		"v_lin_x", "v_lin_y", "v_lin_z",
		"v_ang_x", "v_ang_y", "v_ang_z",
		"jitter", "energy",
	}
}

// initialState derives a bounded starting pose from the seed. All fields
// stay well inside the clipping envelope so the first transition is never a
// boundary case.
func initialState(seed uint64) State {
	var s State
	for i := 0; i < 3; i++ {
		s.Pos[i] = unitInterval(seed, uint64(i)) - 0.5
		s.VLin[i] = 2.0 * (unitInterval(seed, 8+uint64(i)) - 0.5)
	}
	s.Jitter = 1e-4
	s.Energy = dot(s.VLin, s.VLin) + dot(s.VAng, s.VAng)
	return s
}

// unitInterval maps (seed, stream) to a deterministic value in [0, 1).
func unitInterval(seed, stream uint64) float64 {
	return float64(mix(seed^(stream*0x9e3779b97f4a7c15))>>11) / float64(uint64(1)<<53)
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}
