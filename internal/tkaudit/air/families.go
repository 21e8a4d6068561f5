package air

import "math"

// StandardFamilies returns the per-stage constraint families the audited
// architecture arithmetizes: kinematic transitions, energy accounting, a
// bit-decomposition lookup, and a hash-permutation stage. Transition
// relations are affine in the trace columns, the energy relation is the
// quadratic Lyapunov form, lookups are the booleanity quadratic, and the
// hash stage is the quadratic round function the proof system natively
// supports.
func StandardFamilies(transitionCeiling int) []Family {
	return []Family{
		{
			Name:    "physics-transition",
			Ceiling: transitionCeiling,
			Constraints: []Constraint{
				{
					// pos' - pos - v_lin·dt = 0; affine in every column.
					Name: "position-integration",
					Kind: KindTransition,
					Terms: []Term{
						{Exponents: map[string]int{"pos_x'": 1}},
						{Exponents: map[string]int{"pos_x": 1}},
						{Exponents: map[string]int{"v_lin_x": 1}},
					},
				},
				{
					Name: "orientation-integration",
					Kind: KindTransition,
					Terms: []Term{
						{Exponents: map[string]int{"rot_x'": 1}},
						{Exponents: map[string]int{"rot_x": 1}},
						{Exponents: map[string]int{"v_ang_x": 1}},
					},
				},
				{
					Name: "velocity-damping",
					Kind: KindTransition,
					Terms: []Term{
						{Exponents: map[string]int{"v_lin_x'": 1}},
						{Exponents: map[string]int{"v_lin_x": 1}},
					},
				},
			},
		},
		{
			Name:    "energy",
			Ceiling: transitionCeiling,
			Constraints: []Constraint{
				{
					// energy - v_lin·v_lin - v_ang·v_ang = 0.
					Name: "lyapunov-form",
					Kind: KindTransition,
					Terms: []Term{
						{Exponents: map[string]int{"energy": 1}},
						{Exponents: map[string]int{"v_lin_x": 2}},
						{Exponents: map[string]int{"v_lin_y": 2}},
						{Exponents: map[string]int{"v_lin_z": 2}},
						{Exponents: map[string]int{"v_ang_x": 2}},
						{Exponents: map[string]int{"v_ang_y": 2}},
						{Exponents: map[string]int{"v_ang_z": 2}},
					},
				},
			},
		},
		{
			Name:    "lookup",
			Ceiling: transitionCeiling,
			Constraints: []Constraint{
				{
					// s·(s-1) = 0 booleanity for decomposition bits.
					Name: "bit-booleanity",
					Kind: KindLookup,
					Terms: []Term{
						{Exponents: map[string]int{"jitter": 2}},
						{Exponents: map[string]int{"jitter": 1}},
					},
				},
			},
		},
		{
			Name:    "hashing",
			Ceiling: transitionCeiling,
			Constraints: []Constraint{
				{
					// Quadratic round function: state' - state^2 - rc = 0.
					Name: "round-function",
					Kind: KindTransition,
					Terms: []Term{
						{Exponents: map[string]int{"energy'": 1}},
						{Exponents: map[string]int{"energy": 2}},
					},
				},
			},
		},
	}
}

// OrientationProxyFamily returns the bounded-degree replacement for the
// trigonometric rotation update: the unit-quaternion normalization
// constraint (q·q - 1)^2 of total degree 4. The trigonometric form would
// have unbounded degree; the proxy trades it for a small-angle
// approximation error reported by ProxyAngularError.
func OrientationProxyFamily(proxyCeiling int) Family {
	return Family{
		Name:    "orientation-proxy",
		Ceiling: proxyCeiling,
		Constraints: []Constraint{
			{
				Name: "quaternion-norm",
				Kind: KindTransition,
				Terms: []Term{
					{Exponents: map[string]int{"rot_x": 4}},
					{Exponents: map[string]int{"rot_y": 4}},
					{Exponents: map[string]int{"rot_z": 4}},
					{Exponents: map[string]int{"rot_x": 2, "rot_y": 2}},
				},
			},
			{
				// (p' - p - v·dt)^2 rigid-body closure, degree 2 per factor.
				Name: "rigid-body-closure",
				Kind: KindTransition,
				Terms: []Term{
					{Exponents: map[string]int{"pos_x'": 2}},
					{Exponents: map[string]int{"pos_x": 2}},
					{Exponents: map[string]int{"v_lin_x": 2}},
					{Exponents: map[string]int{"pos_x'": 1, "pos_x": 1}},
					{Exponents: map[string]int{"pos_x": 1, "v_lin_x": 1}},
				},
			},
		},
	}
}

// ProxyAngularError returns the worst-case angular error of the
// small-angle quaternion proxy for per-step rotations up to maxStepAngle
// radians: the cubic remainder of sin θ ≈ θ, |θ|³/6.
func ProxyAngularError(maxStepAngle float64) float64 {
	a := math.Abs(maxStepAngle)
	return a * a * a / 6.0
}
