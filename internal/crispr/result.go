package crispr

// Result is the site collection of one record on one strand, with the context
// a report needs.
type Result struct {
	RecordID     string
	Strand       Strand
	GenomeLength int
	Params       Params
	Sites        []Site
}

// ScanRecord scans seq on strand and labels the sites with the record ID.
func (s *Scanner) ScanRecord(id string, seq []byte, strand Strand) Result {
	return Result{
		RecordID:     id,
		Strand:       strand,
		GenomeLength: len(seq),
		Params:       s.params,
		Sites:        s.Scan(seq, strand),
	}
}
