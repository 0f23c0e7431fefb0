package crispr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/crispr-scan/internal/dna"
)

func TestMotif_MatchesNGG(t *testing.T) {
	m := MustParseMotif("NGG")

	tests := []struct {
		window string
		want   bool
	}{
		{"AGG", true},
		{"TGG", true},
		{"CGG", true},
		{"GGG", true},
		{"XGG", true}, // wildcard accepts any symbol
		{"AGC", false},
		{"ACG", false},
		{"AG", false},
		{"AGGG", false},
		{"", false},
		{"agg", false},
	}

	for _, tt := range tests {
		t.Run(tt.window, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Matches([]byte(tt.window)))
		})
	}
}

func TestMotif_RejectsUnknownSentinel(t *testing.T) {
	m := MustParseMotif("NGG")
	assert.False(t, m.Matches([]byte{dna.Unknown, 'G', 'G'}))
	assert.False(t, m.Matches([]byte{'A', dna.Unknown, 'G'}))
}

func TestParseMotif(t *testing.T) {
	m, err := ParseMotif("nag")
	require.NoError(t, err)
	assert.Equal(t, "NAG", m.String())
	assert.Equal(t, 3, m.Len())
	assert.True(t, m.Matches([]byte("TAG")))

	m, err = ParseMotif("NNGRRT")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMotif)
	assert.Zero(t, m.Len())

	_, err = ParseMotif("")
	assert.ErrorIs(t, err, ErrInvalidMotif)
}

func TestMotif_OtherNuclease(t *testing.T) {
	// SaCas9-like pattern with literal and wildcard positions interleaved.
	m := MustParseMotif("NNGAAT")
	assert.True(t, m.Matches([]byte("ACGAAT")))
	assert.False(t, m.Matches([]byte("ACGAAG")))
}

func TestMotif_ZeroValueNeverMatches(t *testing.T) {
	var m Motif
	assert.False(t, m.Matches(nil))
	assert.False(t, m.Matches([]byte("AGG")))
}
