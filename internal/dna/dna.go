// Package dna provides nucleotide alphabet transforms.
package dna

// Unknown is returned by Complement for any byte outside {A,C,G,T}.
// It never equals a real base, so it cannot complete a motif match.
const Unknown byte = 0

// Complement returns the Watson-Crick complement of a single base.
// Lowercase and ambiguity codes are not recognized and map to Unknown.
func Complement(base byte) byte {
	switch base {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'G':
		return 'C'
	case 'C':
		return 'G'
	default:
		return Unknown
	}
}

// Reverse returns a reversed copy of seq.
func Reverse(seq []byte) []byte {
	n := len(seq)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = seq[n-1-i]
	}
	return out
}

// ReverseComplement returns the reverse complement of seq as a new slice,
// i.e. the complementary strand read 5' to 3'.
func ReverseComplement(seq []byte) []byte {
	n := len(seq)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = Complement(seq[n-1-i])
	}
	return out
}

// IsBase reports whether b is one of A, C, G or T.
func IsBase(b byte) bool {
	return b == 'A' || b == 'C' || b == 'G' || b == 'T'
}
