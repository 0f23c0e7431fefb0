package crispr

import (
	"errors"
	"fmt"
)

// SpCas9 defaults.
const (
	DefaultPAM       = "NGG"
	DefaultGuideLen  = 20
	DefaultCutOffset = 3
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid nuclease parameters")

// Params describes the nuclease being targeted.
type Params struct {
	PAM       Motif
	GuideLen  int
	CutOffset int // distance from the PAM to the predicted cut site
}

// DefaultParams returns the parameters for Streptococcus pyogenes Cas9.
func DefaultParams() Params {
	return Params{
		PAM:       MustParseMotif(DefaultPAM),
		GuideLen:  DefaultGuideLen,
		CutOffset: DefaultCutOffset,
	}
}

// NewParams builds and validates parameters from configuration values.
func NewParams(pam string, guideLen, cutOffset int) (Params, error) {
	m, err := ParseMotif(pam)
	if err != nil {
		return Params{}, err
	}
	p := Params{PAM: m, GuideLen: guideLen, CutOffset: cutOffset}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// PAMLen returns the length of the PAM pattern.
func (p Params) PAMLen() int {
	return p.PAM.Len()
}

// Validate checks that the parameters describe a usable nuclease.
func (p Params) Validate() error {
	if p.PAM.Len() == 0 {
		return fmt.Errorf("%w: empty PAM", ErrInvalidParams)
	}
	if p.GuideLen <= 0 {
		return fmt.Errorf("%w: guide length must be positive, got %d", ErrInvalidParams, p.GuideLen)
	}
	if p.CutOffset < 0 {
		return fmt.Errorf("%w: cut offset must not be negative, got %d", ErrInvalidParams, p.CutOffset)
	}
	return nil
}
