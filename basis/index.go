package basis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// Degree describes the multi-index set of a polynomial space: either all
// monomials of total degree at most Total, or the tensor product of
// per-dimension maximum degrees Max.
type Degree struct {
	Total int   `json:"total,omitempty"`
	Max   []int `json:"max,omitempty"`
}

// TotalDegree returns the total-degree set of degree d.
func TotalDegree(d int) Degree {
	return Degree{Total: d}
}

// MaxDegree returns the tensor-product set with the given per-dimension
// maximum degrees.
func MaxDegree(d ...int) Degree {
	return Degree{Max: append([]int(nil), d...)}
}

// IsTotal reports whether d is a total-degree set.
func (d Degree) IsTotal() bool {
	return d.Max == nil
}

func (d Degree) String() string {
	if d.IsTotal() {
		return fmt.Sprintf("%d", d.Total)
	}
	parts := make([]string, len(d.Max))
	for i, m := range d.Max {
		parts[i] = fmt.Sprintf("%d", m)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// ParseDegree parses the String form of a Degree: "3" is a total degree,
// "2,3" or "(2,3)" a per-dimension maximum degree.
func ParseDegree(s string) (Degree, error) {
	t := strings.TrimSpace(s)
	tensor := strings.HasPrefix(t, "(") || strings.Contains(t, ",")
	t = strings.TrimSuffix(strings.TrimPrefix(t, "("), ")")
	fields := strings.Split(t, ",")
	vals := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || v < 0 {
			return Degree{}, errors.NewValidationError("degree", "must be a non-negative integer or a comma separated list of them", s)
		}
		vals[i] = v
	}
	if tensor {
		return MaxDegree(vals...), nil
	}
	return TotalDegree(vals[0]), nil
}

// Indices returns the multi-indices of d for inputs of dimension dim.
func (d Degree) Indices(dim int) ([][]int, error) {
	if dim <= 0 {
		return nil, errors.NewValidationError("dim", "must be positive", dim)
	}
	if d.IsTotal() {
		if d.Total < 0 {
			return nil, errors.NewValidationError("degree", "must be non-negative", d.Total)
		}
		return TotalDegreeIndex(dim, d.Total), nil
	}
	if len(d.Max) != dim {
		return nil, errors.NewDimensionError("Degree.Indices", dim, len(d.Max), 1)
	}
	for _, m := range d.Max {
		if m < 0 {
			return nil, errors.NewValidationError("degree", "must be non-negative", d.Max)
		}
	}
	return MaxDegreeIndex(d.Max), nil
}

// TotalDegreeIndex returns every multi-index of length dim whose entries sum
// to at most degree, ordered by total degree.
func TotalDegreeIndex(dim, degree int) [][]int {
	max := make([]int, dim)
	for i := range max {
		max[i] = degree
	}
	var out [][]int
	for _, idx := range MaxDegreeIndex(max) {
		if sum(idx) <= degree {
			out = append(out, idx)
		}
	}
	return out
}

// MaxDegreeIndex returns every multi-index bounded entrywise by max, ordered
// by total degree. Within one total degree, indices with a larger leading
// entry come first.
func MaxDegreeIndex(max []int) [][]int {
	var out [][]int
	idx := make([]int, len(max))
	for {
		out = append(out, append([]int(nil), idx...))
		// odometer increment
		k := len(idx) - 1
		for k >= 0 && idx[k] == max[k] {
			idx[k] = 0
			k--
		}
		if k < 0 {
			break
		}
		idx[k]++
	}
	sort.SliceStable(out, func(a, b int) bool {
		sa, sb := sum(out[a]), sum(out[b])
		if sa != sb {
			return sa < sb
		}
		for j := range out[a] {
			if out[a][j] != out[b][j] {
				return out[a][j] > out[b][j]
			}
		}
		return false
	})
	return out
}

func sum(idx []int) int {
	s := 0
	for _, v := range idx {
		s += v
	}
	return s
}

func maxPerDim(indices [][]int, dim int) []int {
	out := make([]int, dim)
	for _, idx := range indices {
		for j, v := range idx {
			if v > out[j] {
				out[j] = v
			}
		}
	}
	return out
}

// parentOf returns, for multi-index k > 0, an earlier index p and the
// highest dimension j with indices[p] + e_j == indices[k]. The set must be
// downward closed and ordered either by total degree or by lexOrder.
func parentOf(indices [][]int) (parent, dir []int) {
	pos := make(map[string]int, len(indices))
	for k, idx := range indices {
		pos[key(idx)] = k
	}
	parent = make([]int, len(indices))
	dir = make([]int, len(indices))
	parent[0], dir[0] = -1, -1
	for k := 1; k < len(indices); k++ {
		idx := append([]int(nil), indices[k]...)
		for j := len(idx) - 1; j >= 0; j-- {
			if idx[j] == 0 {
				continue
			}
			idx[j]--
			if p, ok := pos[key(idx)]; ok && p < k {
				parent[k], dir[k] = p, j
				break
			}
			idx[j]++
		}
	}
	return parent, dir
}

// lexOrder sorts a copy of indices lexicographically with the last
// dimension most significant. For a max-degree set in this order, every
// index l up to the parent of k satisfies l[dir[k]] < max[dir[k]], so
// multiplying the first parent+1 Arnoldi columns by x_dir never leaves the
// set.
func lexOrder(indices [][]int) [][]int {
	out := cloneIndices(indices)
	sort.SliceStable(out, func(a, b int) bool {
		for j := len(out[a]) - 1; j >= 0; j-- {
			if out[a][j] != out[b][j] {
				return out[a][j] < out[b][j]
			}
		}
		return false
	})
	return out
}

func key(idx []int) string {
	return fmt.Sprint(idx)
}
