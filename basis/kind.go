package basis

import (
	"strings"

	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// Kind selects a basis family.
type Kind int

const (
	Monomial Kind = iota
	Legendre
	Chebyshev
	Hermite
	Laguerre
	// Arnoldi is the weight-orthogonalized Vandermonde-with-Arnoldi basis.
	Arnoldi
)

var kindNames = map[Kind]string{
	Monomial:  "monomial",
	Legendre:  "legendre",
	Chebyshev: "chebyshev",
	Hermite:   "hermite",
	Laguerre:  "laguerre",
	Arnoldi:   "arnoldi",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind parses a basis family name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, errors.NewValidationError("basis", "unknown basis kind", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, errors.NewValidationError("basis", "unknown basis kind", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
