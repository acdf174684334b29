// Package cmat collects the complex dense-matrix helpers that gonum's mat
// package does not provide: real/imaginary splitting, the real embedding of
// a complex matrix, row scaling and products with plain slices.
package cmat

import (
	"gonum.org/v1/gonum/mat"
)

// IsReal reports whether every entry of A has an exactly zero imaginary part.
func IsReal(A mat.CMatrix) bool {
	r, c := A.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if imag(A.At(i, j)) != 0 {
				return false
			}
		}
	}
	return true
}

// IsRealVec is IsReal for a slice.
func IsRealVec(v []complex128) bool {
	for _, z := range v {
		if imag(z) != 0 {
			return false
		}
	}
	return true
}

// FromReal copies a real matrix into a complex one.
func FromReal(A mat.Matrix) *mat.CDense {
	r, c := A.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, complex(A.At(i, j), 0))
		}
	}
	return out
}

// FromRealSlice builds an r×c complex matrix from row-major real data.
func FromRealSlice(r, c int, data []float64) *mat.CDense {
	return FromReal(mat.NewDense(r, c, data))
}

// Column builds an n×1 complex matrix from v.
func Column(v []complex128) *mat.CDense {
	return mat.NewCDense(len(v), 1, append([]complex128(nil), v...))
}

// Parts splits A into its real and imaginary parts.
func Parts(A mat.CMatrix) (re, im *mat.Dense) {
	r, c := A.Dims()
	re = mat.NewDense(r, c, nil)
	im = mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			z := A.At(i, j)
			re.Set(i, j, real(z))
			im.Set(i, j, imag(z))
		}
	}
	return re, im
}

// RealPart returns the real part of A.
func RealPart(A mat.CMatrix) *mat.Dense {
	re, _ := Parts(A)
	return re
}

// Embed returns the 2r×2c real matrix [[Ar, -Ai], [Ai, Ar]]. Its singular
// values are those of A, each repeated twice, and for y = A x it maps
// [Re x; Im x] to [Re y; Im y].
func Embed(A mat.CMatrix) *mat.Dense {
	r, c := A.Dims()
	out := mat.NewDense(2*r, 2*c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			z := A.At(i, j)
			out.Set(i, j, real(z))
			out.Set(i, j+c, -imag(z))
			out.Set(i+r, j, imag(z))
			out.Set(i+r, j+c, real(z))
		}
	}
	return out
}

// Clone returns a dense copy of A.
func Clone(A mat.CMatrix) *mat.CDense {
	r, c := A.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, A.At(i, j))
		}
	}
	return out
}

// Col returns a copy of column j of A.
func Col(A mat.CMatrix, j int) []complex128 {
	r, _ := A.Dims()
	out := make([]complex128, r)
	for i := range out {
		out[i] = A.At(i, j)
	}
	return out
}

// MulVec returns A x.
func MulVec(A mat.CMatrix, x []complex128) []complex128 {
	r, c := A.Dims()
	if len(x) != c {
		panic(mat.ErrShape)
	}
	out := make([]complex128, r)
	for i := 0; i < r; i++ {
		var s complex128
		for j := 0; j < c; j++ {
			s += A.At(i, j) * x[j]
		}
		out[i] = s
	}
	return out
}

// ScaleRows returns diag(w) A.
func ScaleRows(w []complex128, A mat.CMatrix) *mat.CDense {
	r, c := A.Dims()
	if len(w) != r {
		panic(mat.ErrShape)
	}
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, w[i]*A.At(i, j))
		}
	}
	return out
}

// HStack returns [A | B].
func HStack(A, B mat.CMatrix) *mat.CDense {
	ra, ca := A.Dims()
	rb, cb := B.Dims()
	if ra != rb {
		panic(mat.ErrShape)
	}
	out := mat.NewCDense(ra, ca+cb, nil)
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			out.Set(i, j, A.At(i, j))
		}
		for j := 0; j < cb; j++ {
			out.Set(i, ca+j, B.At(i, j))
		}
	}
	return out
}

// SliceCols returns a copy of columns [from, to) of A.
func SliceCols(A mat.CMatrix, from, to int) *mat.CDense {
	r, _ := A.Dims()
	out := mat.NewCDense(r, to-from, nil)
	for i := 0; i < r; i++ {
		for j := from; j < to; j++ {
			out.Set(i, j-from, A.At(i, j))
		}
	}
	return out
}

// Divide returns the elementwise quotient p / q.
func Divide(p, q []complex128) []complex128 {
	if len(p) != len(q) {
		panic(mat.ErrShape)
	}
	out := make([]complex128, len(p))
	for i := range p {
		out[i] = p[i] / q[i]
	}
	return out
}
