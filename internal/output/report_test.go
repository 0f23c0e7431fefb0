package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/crispr-scan/internal/crispr"
)

func TestReportPath(t *testing.T) {
	tests := []struct {
		name   string
		format string
		res    crispr.Result
		want   string
	}{
		{"raw forward", FormatText, crispr.Result{RecordID: "seq", Strand: crispr.Forward}, "out/forward_seq.txt"},
		{"raw reverse", FormatText, crispr.Result{RecordID: "seq", Strand: crispr.Reverse}, "out/reverse_seq.txt"},
		{"tsv", FormatTSV, crispr.Result{RecordID: "chr1", Strand: crispr.Forward}, "out/forward_chr1.tsv"},
		{"unsafe id", FormatText, crispr.Result{RecordID: "../chr 2", Strand: crispr.Forward}, "out/forward_..%2Fchr%202.txt"},
		{"escaped separator", FormatText, crispr.Result{RecordID: "a/b", Strand: crispr.Forward}, "out/forward_a%2Fb.txt"},
		{"underscore kept", FormatText, crispr.Result{RecordID: "a_b", Strand: crispr.Forward}, "out/forward_a_b.txt"},
		{"empty id", FormatText, crispr.Result{Strand: crispr.Reverse}, "out/reverse_unnamed.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), ReportPath("out", tt.format, tt.res))
		})
	}
}

func TestPlanReports(t *testing.T) {
	paths, err := PlanReports("out", FormatTSV, []string{"chr1", "chr2"}, crispr.Strands)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("out", "forward_chr1.tsv"),
		filepath.Join("out", "reverse_chr1.tsv"),
		filepath.Join("out", "forward_chr2.tsv"),
		filepath.Join("out", "reverse_chr2.tsv"),
	}, paths)

	_, err = PlanReports("out", FormatText, []string{"chr1", "chr1"}, crispr.Strands)
	assert.ErrorIs(t, err, ErrPathCollision)

	_, err = PlanReports("out", FormatText, []string{"", "unnamed"}, []crispr.Strand{crispr.Forward})
	assert.ErrorIs(t, err, ErrPathCollision)
}

func TestNewWriter(t *testing.T) {
	w, err := NewWriter(FormatText, os.Stdout)
	require.NoError(t, err)
	assert.IsType(t, &TextWriter{}, w)

	w, err = NewWriter(FormatTSV, os.Stdout)
	require.NoError(t, err)
	assert.IsType(t, &TSVWriter{}, w)

	_, err = NewWriter("xml", os.Stdout)
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forward_seq.txt")

	require.NoError(t, WriteReport(path, FormatText, forwardResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total Cut     : 1\n")
	assert.Contains(t, string(data), "PAM-Seq    : AGG\n")
}

func TestWriteReport_Unwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "forward_seq.txt")

	err := WriteReport(path, FormatText, forwardResult())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutputUnwritable)
	assert.Contains(t, err.Error(), "1 forward sites for seq not written")
}

func TestPublish(t *testing.T) {
	src := filepath.Join(t.TempDir(), "reverse_seq.txt")
	require.NoError(t, os.WriteFile(src, []byte("report"), 0644))
	dstDir := filepath.Join(t.TempDir(), "published")

	dst, err := Publish(src, dstDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dstDir, "reverse_seq.txt"), dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "report", string(data))

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestPublish_MissingSource(t *testing.T) {
	_, err := Publish(filepath.Join(t.TempDir(), "nope.txt"), t.TempDir())
	assert.ErrorIs(t, err, ErrOutputUnwritable)
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(src, []byte("AGG"), 0644))

	require.NoError(t, copyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "AGG", string(data))
	_, err = os.Stat(dst + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
