package crispr

// HasContext reports whether a PAM starting at index leaves room for a full
// guide inside a sequence of the given length.
//
// Forward guides sit upstream of the PAM; the lower bound is strict, so the
// first usable index is GuideLen+1. Reverse guides sit downstream of the PAM
// window in scan order and must end before the last base.
func (p Params) HasContext(index, length int, strand Strand) bool {
	pamLen := p.PAMLen()
	switch strand {
	case Forward:
		return index > p.GuideLen && index+pamLen <= length
	case Reverse:
		return index >= 0 && index+pamLen+p.GuideLen < length
	default:
		return false
	}
}
