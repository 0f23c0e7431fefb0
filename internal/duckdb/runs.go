package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inodb/crispr-scan/internal/crispr"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// Run describes one invocation of the scanner. A run is Completed once all
// of its sites have been stored.
type Run struct {
	ID        string
	Input     FileFingerprint
	PAM       string
	GuideLen  int
	CutOffset int
	Strands   []crispr.Strand
	StartedAt time.Time
	Elapsed   time.Duration
	Completed bool
}

// NewRun creates a run with a fresh ID for the given input, parameters and
// scanned strands.
func NewRun(input FileFingerprint, p crispr.Params, strands []crispr.Strand) Run {
	return Run{
		ID:        uuid.NewString(),
		Input:     input,
		PAM:       p.PAM.String(),
		GuideLen:  p.GuideLen,
		CutOffset: p.CutOffset,
		Strands:   strands,
		StartedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// Covers reports whether the run scanned every strand in strands.
func (r Run) Covers(strands []crispr.Strand) bool {
	for _, want := range strands {
		found := false
		for _, have := range r.Strands {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Params rebuilds the nuclease parameters the run was scanned with.
func (r Run) Params() (crispr.Params, error) {
	return crispr.NewParams(r.PAM, r.GuideLen, r.CutOffset)
}

// RecordRun inserts run metadata.
func (s *Store) RecordRun(r Run) error {
	_, err := s.db.Exec(`INSERT INTO scan_runs
		(run_id, input_path, input_size, input_mtime, pam, guide_length, cut_offset, strands,
		 started_at, elapsed_ms, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Input.Path, r.Input.Size, nullTime(r.Input.ModTime),
		r.PAM, r.GuideLen, r.CutOffset, joinStrands(r.Strands),
		r.StartedAt, r.Elapsed.Milliseconds(), r.Completed)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun records the total elapsed time of a run and marks it completed.
func (s *Store) FinishRun(runID string, elapsed time.Duration) error {
	res, err := s.db.Exec(`UPDATE scan_runs SET elapsed_ms = ?, completed = true WHERE run_id = ?`,
		elapsed.Milliseconds(), runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// GetRun returns a single run.
func (s *Store) GetRun(runID string) (Run, error) {
	rows, err := s.db.Query(runSelect+` WHERE run_id = ?`, runID)
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return runs[0], nil
}

// Runs lists all runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(runSelect + ` ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// FindRun returns the newest completed run that scanned the same input file
// with the same parameters and at least the given strands, or ErrRunNotFound.
// Input without a modification time (stdin) never matches.
func (s *Store) FindRun(input FileFingerprint, p crispr.Params, strands []crispr.Strand) (Run, error) {
	if input.ModTime.IsZero() {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, input.Path)
	}

	rows, err := s.db.Query(runSelect+` WHERE completed
		AND input_path = ? AND input_size = ? AND epoch_us(input_mtime) = ?
		AND pam = ? AND guide_length = ? AND cut_offset = ?
		ORDER BY started_at DESC`,
		input.Path, input.Size, input.ModTime.UnixMicro(),
		p.PAM.String(), p.GuideLen, p.CutOffset)
	if err != nil {
		return Run{}, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return Run{}, err
	}
	for _, r := range runs {
		if r.Covers(strands) {
			return r, nil
		}
	}
	return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, input.Path)
}

const runSelect = `SELECT
	run_id, input_path, input_size, input_mtime, pam, guide_length, cut_offset, strands,
	started_at, elapsed_ms, completed
	FROM scan_runs`

// scanRuns scans rows into Run slices.
func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var r Run
		var mtime sql.NullTime
		var strands string
		var elapsedMS int64
		if err := rows.Scan(
			&r.ID, &r.Input.Path, &r.Input.Size, &mtime,
			&r.PAM, &r.GuideLen, &r.CutOffset, &strands,
			&r.StartedAt, &elapsedMS, &r.Completed,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		parsed, err := splitStrands(strands)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		r.Strands = parsed
		if mtime.Valid {
			r.Input.ModTime = mtime.Time.UTC()
		}
		r.StartedAt = r.StartedAt.UTC()
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// joinStrands stores strands as a comma-separated list.
func joinStrands(strands []crispr.Strand) string {
	names := make([]string, len(strands))
	for i, s := range strands {
		names[i] = s.String()
	}
	return strings.Join(names, ",")
}

func splitStrands(v string) ([]crispr.Strand, error) {
	if v == "" {
		return nil, nil
	}
	var strands []crispr.Strand
	for _, name := range strings.Split(v, ",") {
		s, err := crispr.ParseStrand(name)
		if err != nil {
			return nil, err
		}
		strands = append(strands, s)
	}
	return strands, nil
}

// nullTime returns nil for the zero time, otherwise t.
func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
