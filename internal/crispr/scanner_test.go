package crispr

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/crispr-scan/internal/dna"
)

func randomSequence(r *rand.Rand, n int) []byte {
	const bases = "ACGT"
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = bases[r.Intn(len(bases))]
	}
	return seq
}

func TestScan_ForwardSingleSite(t *testing.T) {
	seq := []byte(strings.Repeat("A", 23) + "AGG" + strings.Repeat("A", 20))
	require.Len(t, seq, 46)

	s := NewScanner(DefaultParams())
	sites := s.Scan(seq, Forward)

	require.Len(t, sites, 1)
	site := sites[0]
	assert.Equal(t, "AGG", site.PAM)
	assert.Equal(t, strings.Repeat("A", 20), site.Guide)
	assert.Equal(t, 23, site.ScanIndex)
	assert.Equal(t, 20, site.CutPosition)
	assert.Equal(t, Forward, site.Strand)

	assert.Empty(t, s.Scan(seq, Reverse), "no CCN window on the top strand")
}

func TestScan_ReverseSingleSite(t *testing.T) {
	seq := []byte("CCT" + strings.Repeat("A", 21))

	sites := NewScanner(DefaultParams()).Scan(seq, Reverse)

	require.Len(t, sites, 1)
	site := sites[0]
	assert.Equal(t, "AGG", site.PAM)
	assert.Equal(t, strings.Repeat("T", 20), site.Guide)
	assert.Equal(t, 0, site.ScanIndex)
	assert.Equal(t, 6, site.CutPosition)
	assert.Equal(t, Reverse, site.Strand)
}

func TestScan_ReverseGuideOrientation(t *testing.T) {
	// Guide region ACGT... must come back reverse complemented.
	guide := "ACGTTGCAAACCCGGGTTTA"
	seq := []byte("CCA" + guide + "A")

	sites := NewScanner(DefaultParams()).Scan(seq, Reverse)

	require.Len(t, sites, 1)
	assert.Equal(t, "TGG", sites[0].PAM)
	assert.Equal(t, string(dna.ReverseComplement([]byte(guide))), sites[0].Guide)
}

func TestScan_EmptySequence(t *testing.T) {
	s := NewScanner(DefaultParams())
	assert.Empty(t, s.Scan(nil, Forward))
	assert.Empty(t, s.Scan(nil, Reverse))
	assert.Empty(t, s.Scan([]byte{}, Forward))
}

func TestScan_ShortSequence(t *testing.T) {
	s := NewScanner(DefaultParams())

	// Forward needs GuideLen+CutOffset+PAMLen bases.
	fwd := []byte(strings.Repeat("A", 23) + "AG")
	assert.Empty(t, s.Scan(fwd, Forward))

	// Reverse needs PAMLen+GuideLen+1 bases.
	rev := []byte("CCT" + strings.Repeat("A", 20))
	assert.Empty(t, s.Scan(rev, Reverse))
}

func TestScan_UnknownStrand(t *testing.T) {
	assert.Nil(t, NewScanner(DefaultParams()).Scan([]byte("AGG"), Strand(9)))
}

func TestScan_NonACGT(t *testing.T) {
	s := NewScanner(DefaultParams())

	// A stray symbol in the wildcard slot is kept verbatim on the forward strand.
	fwd := []byte(strings.Repeat("A", 23) + "XGG" + strings.Repeat("A", 20))
	sites := s.Scan(fwd, Forward)
	require.Len(t, sites, 1)
	assert.Equal(t, "XGG", sites[0].PAM)

	// On the reverse strand it complements to the sentinel and never matches.
	rev := []byte("CCX" + strings.Repeat("A", 21))
	assert.Empty(t, s.Scan(rev, Reverse))

	// Lowercase is not a recognized base.
	assert.Empty(t, s.Scan([]byte(strings.Repeat("a", 23)+"agg"+strings.Repeat("a", 20)), Forward))
}

func TestScan_TrailingNewlineNeverMatches(t *testing.T) {
	seq := []byte(strings.Repeat("A", 23) + "AGG\n")
	sites := NewScanner(DefaultParams()).Scan(seq, Forward)
	require.Len(t, sites, 1)
	assert.Equal(t, "AGG", sites[0].PAM)
}

func TestScan_DoesNotModifyInput(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	seq := randomSequence(r, 500)
	orig := append([]byte(nil), seq...)

	s := NewScanner(DefaultParams())
	s.Scan(seq, Forward)
	s.Scan(seq, Reverse)

	assert.Equal(t, orig, seq)
}

func TestScan_Deterministic(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	seq := randomSequence(r, 5000)
	s := NewScanner(DefaultParams())

	for _, strand := range Strands {
		first := s.Scan(seq, strand)
		second := s.Scan(seq, strand)
		assert.Equal(t, first, second, strand.String())
	}
}

func TestScan_ForwardProperties(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	seq := randomSequence(r, 5000)
	p := DefaultParams()

	sites := NewScanner(p).Scan(seq, Forward)
	require.NotEmpty(t, sites)

	prevCut := -1
	for _, site := range sites {
		i := site.ScanIndex
		assert.Equal(t, i-p.CutOffset, site.CutPosition)
		assert.Len(t, site.PAM, p.PAMLen())
		assert.Len(t, site.Guide, p.GuideLen)
		assert.True(t, p.PAM.Matches([]byte(site.PAM)))
		assert.Equal(t, string(seq[i-p.GuideLen:i+p.PAMLen()]), site.Guide+site.PAM)
		assert.Greater(t, site.CutPosition, prevCut)
		prevCut = site.CutPosition
	}
}

func TestScan_ReverseProperties(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	seq := randomSequence(r, 5000)
	p := DefaultParams()

	sites := NewScanner(p).Scan(seq, Reverse)
	require.NotEmpty(t, sites)

	prevIdx := -1
	for _, site := range sites {
		i := site.ScanIndex
		pamLen := p.PAMLen()
		assert.Equal(t, i+pamLen+p.CutOffset, site.CutPosition)
		assert.True(t, p.PAM.Matches([]byte(site.PAM)))
		assert.Equal(t, string(seq[i:i+pamLen]), string(dna.ReverseComplement([]byte(site.PAM))))
		assert.Equal(t,
			string(dna.ReverseComplement(seq[i+pamLen:i+pamLen+p.GuideLen])),
			site.Guide)
		assert.Greater(t, i, prevIdx)
		prevIdx = i
	}
}

func TestScan_CustomParams(t *testing.T) {
	p, err := NewParams("NAG", 5, 1)
	require.NoError(t, err)

	seq := []byte("CCCCCCTAGCC")
	sites := NewScanner(p).Scan(seq, Forward)

	require.Len(t, sites, 1)
	assert.Equal(t, "TAG", sites[0].PAM)
	assert.Equal(t, "CCCCC", sites[0].Guide)
	assert.Equal(t, 5, sites[0].CutPosition)
}

func TestScanRecord(t *testing.T) {
	seq := []byte(strings.Repeat("A", 23) + "AGG" + strings.Repeat("A", 20))
	s := NewScanner(DefaultParams())

	res := s.ScanRecord("chr1", seq, Forward)
	assert.Equal(t, "chr1", res.RecordID)
	assert.Equal(t, Forward, res.Strand)
	assert.Equal(t, len(seq), res.GenomeLength)
	assert.Equal(t, DefaultParams(), res.Params)
	assert.Equal(t, s.Scan(seq, Forward), res.Sites)
}
