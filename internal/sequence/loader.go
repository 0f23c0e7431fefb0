// Package sequence loads nucleotide sequences from raw text or FASTA files.
package sequence

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// RawID is the record ID given to a headerless raw-text sequence.
const RawID = "seq"

// ErrInputMissing is returned when the input cannot be opened.
var ErrInputMissing = errors.New("input missing")

// ErrDuplicateRecord is returned when two FASTA entries share an ID.
var ErrDuplicateRecord = errors.New("duplicate record ID")

// Record is a named, immutable sequence buffer.
type Record struct {
	ID  string
	Seq []byte
}

// Len returns the sequence length.
func (r Record) Len() int {
	return len(r.Seq)
}

// Load reads all records from path. A path of "-" reads stdin and a ".gz"
// suffix is decompressed transparently.
func Load(path string) ([]Record, error) {
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInputMissing, err)
		}
		defer f.Close()
	}

	var reader io.Reader = f

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return Parse(reader, RawID)
}

// Parse reads records from r. Content whose first non-blank byte is '>' is
// parsed as FASTA; anything else is a single raw record named id with
// trailing whitespace removed and every other byte kept verbatim.
func Parse(r io.Reader, id string) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read sequence: %w", err)
	}

	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte(">")) {
		return parseFASTA(bytes.NewReader(data))
	}
	return []Record{{ID: id, Seq: bytes.TrimRight(data, " \t\r\n")}}, nil
}

// parseFASTA reads every FASTA entry. Entries with no sequence are skipped;
// record IDs must be unique.
func parseFASTA(r io.Reader) ([]Record, error) {
	fr := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA))

	var records []Record
	seen := make(map[string]bool)
	for {
		s, err := fr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse FASTA: %w", err)
		}

		ls, ok := s.(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("parse FASTA: unexpected sequence type %T", s)
		}
		if len(ls.Seq) == 0 {
			continue
		}
		id := ls.Name()
		if seen[id] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRecord, id)
		}
		seen[id] = true

		buf := make([]byte, len(ls.Seq))
		for i, l := range ls.Seq {
			buf[i] = byte(l)
		}
		records = append(records, Record{ID: id, Seq: buf})
	}
	return records, nil
}
