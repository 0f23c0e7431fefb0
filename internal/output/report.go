package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"net/url"
	"path/filepath"

	"github.com/inodb/crispr-scan/internal/crispr"
)

// ErrOutputUnwritable is returned when a report destination cannot be written.
var ErrOutputUnwritable = errors.New("output unwritable")

// ErrPathCollision is returned when two results would share a report file.
var ErrPathCollision = errors.New("report path collision")

// Report formats.
const (
	FormatText = "text"
	FormatTSV  = "tsv"
)

// ReportWriter renders scan results.
type ReportWriter interface {
	Write(res crispr.Result) error
	Flush() error
}

// NewWriter returns the writer for a format name.
func NewWriter(format string, w io.Writer) (ReportWriter, error) {
	switch format {
	case FormatText, "":
		return NewTextWriter(w), nil
	case FormatTSV:
		return NewTSVWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// ReportPath returns <dir>/<strand>_<record>.<ext>. Raw input therefore
// produces forward_seq.txt and reverse_seq.txt.
func ReportPath(dir, format string, res crispr.Result) string {
	ext := "txt"
	if format == FormatTSV {
		ext = "tsv"
	}
	name := fmt.Sprintf("%s_%s.%s", res.Strand, safeName(res.RecordID), ext)
	return filepath.Join(dir, name)
}

// PlanReports returns the report path of every record on every strand,
// record-major. It fails with ErrPathCollision if two of them would write the
// same file.
func PlanReports(dir, format string, ids []string, strands []crispr.Strand) ([]string, error) {
	paths := make([]string, 0, len(ids)*len(strands))
	owner := make(map[string]string)
	for _, id := range ids {
		for _, strand := range strands {
			path := ReportPath(dir, format, crispr.Result{RecordID: id, Strand: strand})
			if prev, ok := owner[path]; ok {
				return nil, fmt.Errorf("%w: records %q and %q both write %s", ErrPathCollision, prev, id, path)
			}
			owner[path] = id
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// safeName escapes record IDs so they stay inside the output directory and
// distinct IDs never share a file name.
func safeName(id string) string {
	if id == "" {
		return "unnamed"
	}
	return url.PathEscape(id)
}

// WriteReport writes one scan result to path. On failure the returned error
// wraps ErrOutputUnwritable and says how many sites were not written.
func WriteReport(path, format string, res crispr.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return unwritable(path, res, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = unwritable(path, res, cerr)
		}
	}()

	w, err := NewWriter(format, f)
	if err != nil {
		return err
	}
	if err := w.Write(res); err != nil {
		return unwritable(path, res, err)
	}
	if err := w.Flush(); err != nil {
		return unwritable(path, res, err)
	}
	return nil
}

func unwritable(path string, res crispr.Result, err error) error {
	return fmt.Errorf("%w: %s (%d %s sites for %s not written): %w",
		ErrOutputUnwritable, path, len(res.Sites), res.Strand, res.RecordID, err)
}
