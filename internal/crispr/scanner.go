// Package crispr finds CRISPR target sites: PAM occurrences on either strand
// with enough flanking sequence to extract a guide.
package crispr

import "github.com/inodb/crispr-scan/internal/dna"

// Site is a single predicted target.
type Site struct {
	CutPosition int
	PAM         string
	Guide       string
	Strand      Strand
	ScanIndex   int // index in the forward sequence where the PAM window starts
}

// Scanner extracts sites for one nuclease. It holds no per-scan state and is
// safe for concurrent use.
type Scanner struct {
	params Params
}

// NewScanner creates a scanner for the given parameters.
func NewScanner(p Params) *Scanner {
	return &Scanner{params: p}
}

// Params returns the scanner's nuclease parameters.
func (s *Scanner) Params() Params {
	return s.params
}

// Scan returns every site on the given strand in ascending scan-index order.
// seq is never modified.
func (s *Scanner) Scan(seq []byte, strand Strand) []Site {
	switch strand {
	case Forward:
		return s.scanForward(seq)
	case Reverse:
		return s.scanReverse(seq)
	default:
		return nil
	}
}

func (s *Scanner) scanForward(seq []byte) []Site {
	p := s.params
	n := len(seq)
	pamLen := p.PAMLen()

	var sites []Site
	for i := p.GuideLen + p.CutOffset; i < n; i++ {
		if !p.HasContext(i, n, Forward) {
			continue
		}
		window := seq[i : i+pamLen]
		if !p.PAM.Matches(window) {
			continue
		}
		sites = append(sites, Site{
			CutPosition: i - p.CutOffset,
			PAM:         string(window),
			Guide:       string(seq[i-p.GuideLen : i]),
			Strand:      Forward,
			ScanIndex:   i,
		})
	}
	return sites
}

// scanReverse walks the forward sequence but tests the complementary strand:
// each window is complemented in scan order, then reversed into 5'->3' order
// before matching. The guide is the reverse complement of the bases that
// follow the window, which lie upstream of the PAM on the bottom strand.
func (s *Scanner) scanReverse(seq []byte) []Site {
	p := s.params
	n := len(seq)
	pamLen := p.PAMLen()

	var sites []Site
	window := make([]byte, pamLen)
	for i := 0; i < n; i++ {
		if !p.HasContext(i, n, Reverse) {
			continue
		}
		for j := 0; j < pamLen; j++ {
			window[j] = dna.Complement(seq[i+j])
		}
		pam := dna.Reverse(window)
		if !p.PAM.Matches(pam) {
			continue
		}
		guideStart := i + pamLen
		sites = append(sites, Site{
			CutPosition: i + pamLen + p.CutOffset,
			PAM:         string(pam),
			Guide:       string(dna.ReverseComplement(seq[guideStart : guideStart+p.GuideLen])),
			Strand:      Reverse,
			ScanIndex:   i,
		})
	}
	return sites
}
