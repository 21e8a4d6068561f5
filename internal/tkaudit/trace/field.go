package trace

import (
	"math"
	"math/bits"
)

// FieldModulus is the STARK-friendly prime trace rows are reduced into
// when exported for commitment (2^64 - 59).
const FieldModulus uint64 = 18446744073709551557

// FieldScale is the fixed-point quantization factor for the float
// columns. 2^20 keeps sub-microradian orientation resolution while every
// scaled magnitude the clipping envelope admits stays far below the
// modulus.
const FieldScale = 1 << 20

// ToField quantizes one trace value into the prime field: fixed-point at
// FieldScale, negatives mapped into the field's upper half.
func ToField(v float64) uint64 {
	x := int64(math.Round(v * FieldScale))
	if x < 0 {
		return FieldModulus - uint64(-x)
	}
	return uint64(x)
}

// FieldRows exports the trace as rows over the prime field, the form the
// constraint system commits to.
func (t *Trace) FieldRows() [][]uint64 {
	rows := make([][]uint64, len(t.states))
	for i, s := range t.states {
		row := s.Row()
		frow := make([]uint64, Columns)
		for j, v := range row {
			frow[j] = ToField(v)
		}
		rows[i] = frow
	}
	return rows
}

// EvolveFieldRows applies the affine evolution kernel
// x <- (3x + 7) mod FieldModulus to every cell, steps times, in place.
// The map is degree 1, so repeated application never pushes the
// transition constraint family past its ceiling.
func EvolveFieldRows(rows [][]uint64, steps int) {
	for s := 0; s < steps; s++ {
		for _, row := range rows {
			for j, x := range row {
				row[j] = evolveCell(x)
			}
		}
	}
}

// evolveCell computes (3x + 7) mod FieldModulus without overflow. The
// 128-bit intermediate keeps hi well below the modulus, so the single
// hardware division never faults.
func evolveCell(x uint64) uint64 {
	hi, lo := bits.Mul64(x, 3)
	lo, carry := bits.Add64(lo, 7, 0)
	hi += carry
	_, rem := bits.Div64(hi, lo, FieldModulus)
	return rem
}

// FieldChecksum folds the rows into a single field element, the value the
// audit record carries as the trace commitment stand-in.
func FieldChecksum(rows [][]uint64) uint64 {
	var sum uint64
	for _, row := range rows {
		for _, x := range row {
			sum = addMod(sum, x%FieldModulus)
		}
	}
	return sum
}

// addMod adds two reduced field elements. On 64-bit carry the true sum is
// 2^64 + s, and 2^64 mod FieldModulus is 59.
func addMod(a, b uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	if carry == 1 {
		return s + 59
	}
	if s >= FieldModulus {
		return s - FieldModulus
	}
	return s
}
