package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/crispr-scan/internal/crispr"
)

// TSVWriter writes sites in tab-delimited format.
type TSVWriter struct {
	w             *bufio.Writer
	columns       []string
	headerWritten bool
}

// NewTSVWriter creates a new tab-delimited writer.
func NewTSVWriter(w io.Writer) *TSVWriter {
	return &TSVWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#record",
			"strand",
			"cut_pos",
			"pam",
			"guide",
			"scan_index",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TSVWriter) WriteHeader() error {
	tw.headerWritten = true
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes one row per site, preceded by the header on first use.
func (tw *TSVWriter) Write(res crispr.Result) error {
	if !tw.headerWritten {
		if err := tw.WriteHeader(); err != nil {
			return err
		}
	}
	for _, s := range res.Sites {
		values := []string{
			res.RecordID,
			s.Strand.String(),
			strconv.Itoa(s.CutPosition),
			s.PAM,
			s.Guide,
			strconv.Itoa(s.ScanIndex),
		}
		if _, err := tw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TSVWriter) Flush() error {
	return tw.w.Flush()
}
