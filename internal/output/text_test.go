package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/crispr-scan/internal/crispr"
)

func forwardResult() crispr.Result {
	return crispr.Result{
		RecordID:     "seq",
		Strand:       crispr.Forward,
		GenomeLength: 46,
		Params:       crispr.DefaultParams(),
		Sites: []crispr.Site{{
			CutPosition: 20,
			PAM:         "AGG",
			Guide:       strings.Repeat("A", 20),
			Strand:      crispr.Forward,
			ScanIndex:   23,
		}},
	}
}

func TestTextWriter_Forward(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf)

	require.NoError(t, w.Write(forwardResult()))
	require.NoError(t, w.Flush())

	want := "Programming the genome with CRISPR\n\n" +
		"FORWARD : 5'(+) -- 3'\n\n" +
		"Pam Length   : 3\n" +
		"Guide Length : 20\n" +
		"Cut Diff     : 3\n\n" +
		"Genome Length : 46\n" +
		"Total Cut     : 1\n\n" +
		"Cut-Pos    : 20\n" +
		"PAM-Seq    : AGG\n" +
		"Target-Seq : AAAAAAAAAAAAAAAAAAAA\n" +
		"Strand     : forward\n\n"
	assert.Equal(t, want, buf.String())
}

func TestTextWriter_ReverseNoSites(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf)

	res := crispr.Result{
		RecordID: "seq",
		Strand:   crispr.Reverse,
		Params:   crispr.DefaultParams(),
	}
	require.NoError(t, w.Write(res))
	require.NoError(t, w.Flush())

	out := buf.String()
	assert.Contains(t, out, "REVERSE : 3'(-) -- 5'\n")
	assert.Contains(t, out, "Genome Length : 0\n")
	assert.True(t, strings.HasSuffix(out, "Total Cut     : 0\n\n"))
	assert.NotContains(t, out, "Cut-Pos")
}

func TestTextWriter_MultipleSites(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf)

	res := crispr.Result{
		Strand: crispr.Reverse,
		Params: crispr.DefaultParams(),
		Sites: []crispr.Site{
			{CutPosition: 6, PAM: "AGG", Guide: strings.Repeat("T", 20), Strand: crispr.Reverse},
			{CutPosition: 9, PAM: "TGG", Guide: strings.Repeat("C", 20), Strand: crispr.Reverse},
		},
	}
	require.NoError(t, w.Write(res))
	require.NoError(t, w.Flush())

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "Strand     : reverse\n\n"))
	assert.Less(t, strings.Index(out, "Cut-Pos    : 6"), strings.Index(out, "Cut-Pos    : 9"))
	assert.Contains(t, out, "Total Cut     : 2\n")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestTextWriter_ErrorOnFlush(t *testing.T) {
	w := NewTextWriter(failingWriter{})

	res := forwardResult()
	for range 200 {
		res.Sites = append(res.Sites, res.Sites[0])
	}
	require.NoError(t, w.Write(res))
	assert.EqualError(t, w.Flush(), "disk full")
}
