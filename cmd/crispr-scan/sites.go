package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inodb/crispr-scan/internal/crispr"
	"github.com/inodb/crispr-scan/internal/duckdb"
)

type sitesOptions struct {
	DBPath   string
	RunID    string
	Record   string
	Strand   string
	Guide    string
	Limit    int
	ListRuns bool
}

func newSitesCmd() *cobra.Command {
	var opts sitesOptions

	cmd := &cobra.Command{
		Use:   "sites --db <path> [filters]",
		Short: "Query sites stored by earlier scans",
		Example: `  crispr-scan sites --db sites.duckdb --runs
  crispr-scan sites --db sites.duckdb --run <run-id> --strand reverse
  crispr-scan sites --db sites.duckdb --guide GACGTTACCGGAAGGCTTAC`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.DBPath == "" {
				return usageError{fmt.Errorf("--db is required")}
			}
			if opts.Strand != "" {
				st, err := crispr.ParseStrand(opts.Strand)
				if err != nil {
					return usageError{err}
				}
				opts.Strand = st.String()
			}
			return runSites(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.DBPath, "db", "", "DuckDB file written by scan --db")
	f.StringVar(&opts.RunID, "run", "", "Only sites from this run")
	f.StringVar(&opts.Record, "record", "", "Only sites from this record")
	f.StringVar(&opts.Strand, "strand", "", "Only sites on this strand: forward, reverse")
	f.StringVar(&opts.Guide, "guide", "", "Only sites with this guide sequence")
	f.IntVar(&opts.Limit, "limit", 0, "Maximum number of sites (0 = no limit)")
	f.BoolVar(&opts.ListRuns, "runs", false, "List runs instead of sites")

	return cmd
}

func runSites(out io.Writer, opts sitesOptions) error {
	store, err := duckdb.Open(opts.DBPath)
	if err != nil {
		return fmt.Errorf("open site store: %w", err)
	}
	defer store.Close()

	w := bufio.NewWriter(out)

	if opts.ListRuns {
		runs, err := store.Runs()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "#run_id\tstarted_at\tinput\tpam\tguide_length\tcut_offset\tstrands\tcompleted\telapsed")
		for _, r := range runs {
			strands := make([]string, len(r.Strands))
			for i, s := range r.Strands {
				strands[i] = s.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%t\t%s\n",
				r.ID, r.StartedAt.Format("2006-01-02T15:04:05Z"), r.Input.Path,
				r.PAM, r.GuideLen, r.CutOffset, strings.Join(strands, ","), r.Completed, r.Elapsed)
		}
		return w.Flush()
	}

	sites, err := store.QuerySites(duckdb.SiteQuery{
		RunID:  opts.RunID,
		Record: opts.Record,
		Strand: opts.Strand,
		Guide:  opts.Guide,
		Limit:  opts.Limit,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "#run_id\trecord\tstrand\tcut_pos\tpam\tguide\tscan_index")
	for _, s := range sites {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%d\n",
			s.RunID, s.Record, s.Strand, s.CutPosition, s.PAM, s.Guide, s.ScanIndex)
	}
	return w.Flush()
}
