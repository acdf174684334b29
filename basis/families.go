package basis

// recurrence holds the coefficients of the three-term recurrence
//
//	x φ_j = α_j φ_{j+1} + β_j φ_j + γ_j φ_{j-1},  φ_0 = 1.
type recurrence interface {
	coef(j int) (alpha, beta, gamma float64)
}

type monomialRecurrence struct{}

func (monomialRecurrence) coef(j int) (float64, float64, float64) { return 1, 0, 0 }

type legendreRecurrence struct{}

func (legendreRecurrence) coef(j int) (float64, float64, float64) {
	fj := float64(j)
	return (fj + 1) / (2*fj + 1), 0, fj / (2*fj + 1)
}

type chebyshevRecurrence struct{}

func (chebyshevRecurrence) coef(j int) (float64, float64, float64) {
	if j == 0 {
		return 1, 0, 0
	}
	return 0.5, 0, 0.5
}

// physicists' Hermite polynomials
type hermiteRecurrence struct{}

func (hermiteRecurrence) coef(j int) (float64, float64, float64) {
	return 0.5, 0, float64(j)
}

type laguerreRecurrence struct{}

func (laguerreRecurrence) coef(j int) (float64, float64, float64) {
	fj := float64(j)
	return -(fj + 1), 2*fj + 1, -fj
}

func recurrenceFor(k Kind) recurrence {
	switch k {
	case Legendre:
		return legendreRecurrence{}
	case Chebyshev:
		return chebyshevRecurrence{}
	case Hermite:
		return hermiteRecurrence{}
	case Laguerre:
		return laguerreRecurrence{}
	default:
		return monomialRecurrence{}
	}
}

// eval1D fills vals[k] = φ_k(x) and, when ders is non-nil, ders[k] = φ_k'(x)
// for k = 0..len(vals)-1.
func eval1D(r recurrence, x complex128, vals, ders []complex128) {
	n := len(vals)
	if n == 0 {
		return
	}
	vals[0] = 1
	if ders != nil {
		ders[0] = 0
	}
	for j := 0; j+1 < n; j++ {
		alpha, beta, gamma := r.coef(j)
		a := complex(alpha, 0)
		xb := x - complex(beta, 0)
		next := xb * vals[j]
		if j > 0 {
			next -= complex(gamma, 0) * vals[j-1]
		}
		vals[j+1] = next / a
		if ders != nil {
			d := vals[j] + xb*ders[j]
			if j > 0 {
				d -= complex(gamma, 0) * ders[j-1]
			}
			ders[j+1] = d / a
		}
	}
}

// hessenberg returns the (d+1)×d matrix H with x φ_j = Σ_i H[i][j] φ_i for
// j < d, in row-major order.
func hessenberg(r recurrence, d int) [][]complex128 {
	H := make([][]complex128, d+1)
	for i := range H {
		H[i] = make([]complex128, d)
	}
	for j := 0; j < d; j++ {
		alpha, beta, gamma := r.coef(j)
		H[j+1][j] = complex(alpha, 0)
		H[j][j] = complex(beta, 0)
		if j > 0 {
			H[j-1][j] = complex(gamma, 0)
		}
	}
	return H
}
