package crispr

import (
	"errors"
	"fmt"

	"github.com/inodb/crispr-scan/internal/dna"
)

// Wildcard marks a motif position that matches any symbol.
const Wildcard byte = 'N'

// ErrInvalidMotif is returned when a PAM pattern contains unsupported symbols.
var ErrInvalidMotif = errors.New("invalid motif")

// Motif is a fixed-length PAM pattern. Each position is either a literal
// base or Wildcard.
type Motif struct {
	symbols []byte
}

// ParseMotif compiles a PAM pattern such as "NGG". Only A, C, G, T and N are accepted.
func ParseMotif(pattern string) (Motif, error) {
	if pattern == "" {
		return Motif{}, fmt.Errorf("%w: empty pattern", ErrInvalidMotif)
	}
	symbols := make([]byte, len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c != Wildcard && !dna.IsBase(c) {
			return Motif{}, fmt.Errorf("%w: %q has unsupported symbol %q at %d", ErrInvalidMotif, pattern, pattern[i], i)
		}
		symbols[i] = c
	}
	return Motif{symbols: symbols}, nil
}

// MustParseMotif is like ParseMotif but panics on error.
func MustParseMotif(pattern string) Motif {
	m, err := ParseMotif(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Len returns the pattern length.
func (m Motif) Len() int {
	return len(m.symbols)
}

// String returns the pattern text.
func (m Motif) String() string {
	return string(m.symbols)
}

// Matches reports whether window satisfies the pattern. A window of the
// wrong length, or one holding the dna.Unknown sentinel anywhere, never matches.
func (m Motif) Matches(window []byte) bool {
	if len(m.symbols) == 0 || len(window) != len(m.symbols) {
		return false
	}
	for i, p := range m.symbols {
		b := window[i]
		if b == dna.Unknown {
			return false
		}
		if p != Wildcard && b != p {
			return false
		}
	}
	return true
}
