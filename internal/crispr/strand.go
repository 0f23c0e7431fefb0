package crispr

import "fmt"

// Strand is the orientation a site is reported on.
type Strand int

const (
	// Forward is the reference (top) strand, read 5' to 3'.
	Forward Strand = iota
	// Reverse is the complementary (bottom) strand, reported in its own 5' to 3' order.
	Reverse
)

// Strands lists both orientations in scan order.
var Strands = []Strand{Forward, Reverse}

// String returns the lowercase name used in reports and storage.
func (s Strand) String() string {
	switch s {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("Strand(%d)", int(s))
	}
}

// Label returns the report heading for the orientation.
func (s Strand) Label() string {
	switch s {
	case Forward:
		return "FORWARD : 5'(+) -- 3'"
	case Reverse:
		return "REVERSE : 3'(-) -- 5'"
	default:
		return s.String()
	}
}

// ParseStrand parses "forward"/"fwd"/"+" or "reverse"/"rev"/"-".
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "forward", "fwd", "+":
		return Forward, nil
	case "reverse", "rev", "-":
		return Reverse, nil
	}
	return 0, fmt.Errorf("unknown strand %q", s)
}

// ParseStrands expands a strand selector ("both", "forward", "reverse") into orientations.
func ParseStrands(s string) ([]Strand, error) {
	if s == "" || s == "both" {
		return Strands, nil
	}
	st, err := ParseStrand(s)
	if err != nil {
		return nil, err
	}
	return []Strand{st}, nil
}
