package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/crispr-scan/internal/crispr"
)

// StoredSite is a site together with the run and record it came from.
type StoredSite struct {
	RunID  string
	Record string
	crispr.Site
}

// SiteQuery filters stored sites. Empty fields match everything.
type SiteQuery struct {
	RunID  string
	Record string
	Strand string
	Guide  string
	Limit  int
}

// WriteSites batch-inserts the sites of one record using the Appender API.
func (s *Store) WriteSites(runID, record string, sites []crispr.Site) error {
	if len(sites) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "sites")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, site := range sites {
		if err := appender.AppendRow(
			runID, record, site.Strand.String(), int64(site.ScanIndex),
			int64(site.CutPosition), site.PAM, site.Guide,
		); err != nil {
			return fmt.Errorf("append site: %w", err)
		}
	}

	return appender.Flush()
}

// LookupSites returns the sites of one record and strand of a run in scan order.
func (s *Store) LookupSites(runID, record string, strand crispr.Strand) ([]StoredSite, error) {
	return s.QuerySites(SiteQuery{RunID: runID, Record: record, Strand: strand.String()})
}

// SearchByGuide finds every stored site with the given guide sequence.
func (s *Store) SearchByGuide(guide string) ([]StoredSite, error) {
	return s.QuerySites(SiteQuery{Guide: guide})
}

// QuerySites returns matching sites ordered by run, record, strand and scan index.
func (s *Store) QuerySites(q SiteQuery) ([]StoredSite, error) {
	var where []string
	var args []any
	add := func(col, val string) {
		if val != "" {
			where = append(where, col+"=?")
			args = append(args, val)
		}
	}
	add("run_id", q.RunID)
	add("record", q.Record)
	add("strand", q.Strand)
	add("guide", q.Guide)

	query := `SELECT run_id, record, strand, scan_index, cut_pos, pam, guide FROM sites`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY run_id, record, strand, scan_index"
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sites: %w", err)
	}
	defer rows.Close()

	var sites []StoredSite
	for rows.Next() {
		var ss StoredSite
		var strand string
		var scanIndex, cutPos int64
		if err := rows.Scan(&ss.RunID, &ss.Record, &strand, &scanIndex, &cutPos, &ss.PAM, &ss.Guide); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		st, err := crispr.ParseStrand(strand)
		if err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		ss.Strand = st
		ss.ScanIndex = int(scanIndex)
		ss.CutPosition = int(cutPos)
		sites = append(sites, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	return sites, nil
}

// Sites strips run and record information.
func Sites(stored []StoredSite) []crispr.Site {
	out := make([]crispr.Site, len(stored))
	for i, ss := range stored {
		out[i] = ss.Site
	}
	return out
}
