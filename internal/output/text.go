// Package output provides site report formatters.
package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/inodb/crispr-scan/internal/crispr"
)

// ReportTitle is the first line of every text report.
const ReportTitle = "Programming the genome with CRISPR"

// TextWriter writes the human-readable site report.
type TextWriter struct {
	w *bufio.Writer
}

// NewTextWriter creates a new text report writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// Write writes the header block and every site of one scan result.
// Write errors are sticky in the buffer and returned by Flush.
func (tw *TextWriter) Write(res crispr.Result) error {
	p := res.Params
	fmt.Fprintf(tw.w, "%s\n\n", ReportTitle)
	fmt.Fprintf(tw.w, "%s\n\n", res.Strand.Label())
	fmt.Fprintf(tw.w, "Pam Length   : %d\n", p.PAMLen())
	fmt.Fprintf(tw.w, "Guide Length : %d\n", p.GuideLen)
	fmt.Fprintf(tw.w, "Cut Diff     : %d\n\n", p.CutOffset)
	fmt.Fprintf(tw.w, "Genome Length : %d\n", res.GenomeLength)
	fmt.Fprintf(tw.w, "Total Cut     : %d\n\n", len(res.Sites))

	for _, s := range res.Sites {
		fmt.Fprintf(tw.w, "Cut-Pos    : %d\n", s.CutPosition)
		fmt.Fprintf(tw.w, "PAM-Seq    : %s\n", s.PAM)
		fmt.Fprintf(tw.w, "Target-Seq : %s\n", s.Guide)
		fmt.Fprintf(tw.w, "Strand     : %s\n\n", s.Strand)
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TextWriter) Flush() error {
	return tw.w.Flush()
}
