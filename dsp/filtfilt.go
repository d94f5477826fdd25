package dsp

import (
	"fmt"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
)

// normalize pads b and a to a common length and divides both by a[0].
func normalize(b, a []float64) (nb, na []float64, err error) {
	if len(a) == 0 || len(b) == 0 || a[0] == 0 {
		return nil, nil, fmt.Errorf("%w: empty or zero-leading coefficients", ErrUnstable)
	}
	n := max(len(a), len(b))
	nb = make([]float64, n)
	na = make([]float64, n)
	copy(nb, b)
	copy(na, a)
	a0 := na[0]
	floats.Scale(1/a0, nb)
	floats.Scale(1/a0, na)
	return nb, na, nil
}

// LFilter applies the filter (b, a) to x in transposed direct form II,
// starting from state zi (nil for zero state). It returns the output and final state.
func LFilter(b, a, x, zi []float64) (y, zf []float64, err error) {
	b, a, err = normalize(b, a)
	if err != nil {
		return nil, nil, err
	}
	n := len(a)
	z := make([]float64, n-1)
	if zi != nil {
		if len(zi) != n-1 {
			return nil, nil, fmt.Errorf("initial state length %d, want %d", len(zi), n-1)
		}
		copy(z, zi)
	}
	y = make([]float64, len(x))
	for i, xi := range x {
		yi := b[0]*xi + z0(z)
		for j := 0; j < n-2; j++ {
			z[j] = b[j+1]*xi + z[j+1] - a[j+1]*yi
		}
		if n > 1 {
			z[n-2] = b[n-1]*xi - a[n-1]*yi
		}
		y[i] = yi
	}
	return y, z, nil
}

func z0(z []float64) float64 {
	if len(z) == 0 {
		return 0
	}
	return z[0]
}

// LFilterZi returns the steady-state initial condition of LFilter for a unit step input.
func LFilterZi(b, a []float64) ([]float64, error) {
	b, a, err := normalize(b, a)
	if err != nil {
		return nil, err
	}
	n := len(a)
	if n < 2 {
		return []float64{}, nil
	}
	m := n - 1
	// (I - companion(a)^T) zi = b[1:] - a[1:]*b[0]
	iMinusA := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		iMinusA.Set(i, i, 1)
	}
	for i := 0; i < m; i++ {
		iMinusA.Set(i, 0, iMinusA.At(i, 0)+a[i+1])
	}
	for i := 1; i < m; i++ {
		iMinusA.Set(i-1, i, iMinusA.At(i-1, i)-1)
	}
	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		rhs.SetVec(i, b[i+1]-a[i+1]*b[0])
	}
	var zi mat.VecDense
	if err := zi.SolveVec(iMinusA, rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnstable, err)
	}
	return mat.Col(nil, 0, &zi), nil
}

// FiltFilt applies the filter forward and backward for zero phase distortion,
// padding both ends with an odd extension of 3*max(len(a), len(b)) samples.
// The signal must be longer than the padding.
func FiltFilt(b, a, x []float64) ([]float64, error) {
	edge := 3 * max(len(a), len(b))
	if len(x) <= edge {
		return nil, fmt.Errorf("%w: length %d must be greater than padlen %d", ErrSignalTooShort, len(x), edge)
	}
	ext := oddExtend(x, edge)
	zi, err := LFilterZi(b, a)
	if err != nil {
		return nil, err
	}

	scaled := func(v float64) []float64 {
		out := make([]float64, len(zi))
		copy(out, zi)
		floats.Scale(v, out)
		return out
	}

	y, _, err := LFilter(b, a, ext, scaled(ext[0]))
	if err != nil {
		return nil, err
	}
	reverse(y)
	y, _, err = LFilter(b, a, y, scaled(y[0]))
	if err != nil {
		return nil, err
	}
	reverse(y)
	out := y[edge : len(y)-edge]
	for _, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrUnstable
		}
	}
	return out, nil
}

// oddExtend reflects n samples about each endpoint: 2*x[0]-x[n..1] and 2*x[-1]-x[-2..-n-1].
func oddExtend(x []float64, n int) []float64 {
	last := len(x) - 1
	out := make([]float64, 0, len(x)+2*n)
	for i := n; i >= 1; i-- {
		out = append(out, 2*x[0]-x[i])
	}
	out = append(out, x...)
	for i := 1; i <= n; i++ {
		out = append(out, 2*x[last]-x[last-i])
	}
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
