package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/crispr-scan/internal/crispr"
	"github.com/inodb/crispr-scan/internal/duckdb"
	"github.com/inodb/crispr-scan/internal/output"
	"github.com/inodb/crispr-scan/internal/runner"
	"github.com/inodb/crispr-scan/internal/sequence"
)

// scanOptions holds the resolved settings for one scan.
type scanOptions struct {
	Input      string
	OutputDir  string
	Format     string
	Strands    string
	Workers    int
	PAM        string
	GuideLen   int
	CutOffset  int
	DBPath     string
	PublishDir string
	Reuse      bool
}

// scanSummary describes what a scan produced.
type scanSummary struct {
	Records int
	Sites   map[crispr.Strand]int
	Reports []string
	RunID   string
	Reused  bool
	Elapsed time.Duration
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [options] <input-file>",
		Short: "Scan a sequence for CRISPR target sites",
		Long: `Scan a raw sequence or FASTA file for PAM sites on both strands.

One report is written per record and strand, named <strand>_<record>.<ext>.
A raw (headerless) sequence is named "seq", so the default run writes
forward_seq.txt and reverse_seq.txt.`,
		Example: `  crispr-scan scan strand.txt
  crispr-scan scan -o results -f tsv genome.fa.gz
  crispr-scan scan --strand reverse --db sites.duckdb strand.txt
  cat strand.txt | crispr-scan scan -`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(viper.GetBool("verbose"))
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			opts := scanOptionsFromConfig(args[0])
			summary, err := runScan(cmd.Context(), opts, logger)
			printSummary(cmd.ErrOrStderr(), summary)
			return err
		},
	}

	f := cmd.Flags()
	f.StringP("output-dir", "o", ".", "Directory for report files")
	f.StringP("format", "f", output.FormatText, "Report format: text, tsv")
	f.String("strand", "both", "Strands to scan: both, forward, reverse")
	f.Int("workers", runner.DefaultWorkers, "Concurrent scan jobs (0 = number of CPUs)")
	f.String("pam", crispr.DefaultPAM, "PAM pattern (A, C, G, T, N wildcard)")
	f.Int("guide-length", crispr.DefaultGuideLen, "Guide sequence length")
	f.Int("cut-offset", crispr.DefaultCutOffset, "Distance from PAM to cut site")
	f.String("db", "", "DuckDB file to store runs and sites (optional)")
	f.String("publish-dir", "", "Move finished reports into this directory (optional)")
	f.Bool("reuse", false, "With --db, reuse sites from an earlier run of the same input")

	viper.BindPFlag("scan.output_dir", f.Lookup("output-dir"))
	viper.BindPFlag("scan.format", f.Lookup("format"))
	viper.BindPFlag("scan.strand", f.Lookup("strand"))
	viper.BindPFlag("scan.workers", f.Lookup("workers"))
	viper.BindPFlag("nuclease.pam", f.Lookup("pam"))
	viper.BindPFlag("nuclease.guide_length", f.Lookup("guide-length"))
	viper.BindPFlag("nuclease.cut_offset", f.Lookup("cut-offset"))
	viper.BindPFlag("store.path", f.Lookup("db"))
	viper.BindPFlag("scan.publish_dir", f.Lookup("publish-dir"))
	viper.BindPFlag("store.reuse", f.Lookup("reuse"))

	return cmd
}

func scanOptionsFromConfig(input string) scanOptions {
	return scanOptions{
		Input:      input,
		OutputDir:  viper.GetString("scan.output_dir"),
		Format:     viper.GetString("scan.format"),
		Strands:    viper.GetString("scan.strand"),
		Workers:    viper.GetInt("scan.workers"),
		PAM:        viper.GetString("nuclease.pam"),
		GuideLen:   viper.GetInt("nuclease.guide_length"),
		CutOffset:  viper.GetInt("nuclease.cut_offset"),
		DBPath:     viper.GetString("store.path"),
		PublishDir: viper.GetString("scan.publish_dir"),
		Reuse:      viper.GetBool("store.reuse"),
	}
}

// runScan loads the input, scans every record on the selected strands and
// writes one report per result. Sites are stored before their report is
// written so a failed report does not lose them. Report failures do not stop
// the remaining reports; they are returned together at the end. A stored run
// is marked completed only after every site has been stored, and only
// completed runs covering the requested strands are reused.
func runScan(ctx context.Context, opts scanOptions, logger *zap.Logger) (scanSummary, error) {
	start := time.Now()
	summary := scanSummary{Sites: make(map[crispr.Strand]int)}

	params, err := crispr.NewParams(opts.PAM, opts.GuideLen, opts.CutOffset)
	if err != nil {
		return summary, usageError{err}
	}
	strands, err := crispr.ParseStrands(opts.Strands)
	if err != nil {
		return summary, usageError{err}
	}
	if _, err := output.NewWriter(opts.Format, io.Discard); err != nil {
		return summary, usageError{err}
	}

	records, err := sequence.Load(opts.Input)
	if err != nil {
		return summary, err
	}
	summary.Records = len(records)
	logger.Info("loaded input",
		zap.String("path", opts.Input),
		zap.Int("records", len(records)))

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	if _, err := output.PlanReports(opts.OutputDir, opts.Format, ids, strands); err != nil {
		return summary, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return summary, fmt.Errorf("%w: create output directory: %w", output.ErrOutputUnwritable, err)
	}

	var store *duckdb.Store
	var run duckdb.Run
	if opts.DBPath != "" {
		store, err = duckdb.Open(opts.DBPath)
		if err != nil {
			return summary, fmt.Errorf("open site store: %w", err)
		}
		defer store.Close()

		fp := fingerprint(opts.Input)
		if opts.Reuse {
			prev, err := store.FindRun(fp, params, strands)
			if err == nil {
				logger.Info("reusing stored run", zap.String("run_id", prev.ID))
				summary.RunID = prev.ID
				summary.Reused = true
				err = reuseRun(store, prev, records, strands, opts, &summary)
				summary.Elapsed = time.Since(start)
				return summary, err
			}
			if !errors.Is(err, duckdb.ErrRunNotFound) {
				return summary, err
			}
		}

		run = duckdb.NewRun(fp, params, strands)
		if err := store.RecordRun(run); err != nil {
			return summary, err
		}
		summary.RunID = run.ID
		logger.Info("recording run", zap.String("run_id", run.ID), zap.String("db", opts.DBPath))
	}

	r := runner.New(crispr.NewScanner(params), opts.Workers)
	r.SetLogger(logger)

	var reportErrs []error
	err = r.Run(ctx, runner.Partition(records, strands), func(res runner.Result) error {
		summary.Sites[res.Strand] += len(res.Sites)
		if store != nil {
			if err := store.WriteSites(run.ID, res.RecordID, res.Sites); err != nil {
				return err
			}
		}
		if err := writeReport(opts, res.Result, &summary); err != nil {
			logger.Error("report not written", zap.Error(err))
			reportErrs = append(reportErrs, err)
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	if err := publishReports(opts, &summary, logger); err != nil {
		reportErrs = append(reportErrs, err)
	}

	summary.Elapsed = time.Since(start)
	if store != nil {
		if err := store.FinishRun(run.ID, summary.Elapsed); err != nil {
			return summary, err
		}
	}

	return summary, errors.Join(reportErrs...)
}

// reuseRun writes reports from the sites stored by an earlier run.
func reuseRun(store *duckdb.Store, prev duckdb.Run, records []sequence.Record, strands []crispr.Strand, opts scanOptions, summary *scanSummary) error {
	params, err := prev.Params()
	if err != nil {
		return err
	}

	var reportErrs []error
	for _, job := range runner.Partition(records, strands) {
		stored, err := store.LookupSites(prev.ID, job.Record.ID, job.Strand)
		if err != nil {
			return err
		}
		res := crispr.Result{
			RecordID:     job.Record.ID,
			Strand:       job.Strand,
			GenomeLength: job.Record.Len(),
			Params:       params,
			Sites:        duckdb.Sites(stored),
		}
		summary.Sites[res.Strand] += len(res.Sites)
		if err := writeReport(opts, res, summary); err != nil {
			reportErrs = append(reportErrs, err)
		}
	}
	return errors.Join(reportErrs...)
}

func writeReport(opts scanOptions, res crispr.Result, summary *scanSummary) error {
	path := output.ReportPath(opts.OutputDir, opts.Format, res)
	if err := output.WriteReport(path, opts.Format, res); err != nil {
		return err
	}
	summary.Reports = append(summary.Reports, path)
	return nil
}

// publishReports relocates every written report when a publish directory is set.
func publishReports(opts scanOptions, summary *scanSummary, logger *zap.Logger) error {
	if opts.PublishDir == "" {
		return nil
	}
	var errs []error
	for i, path := range summary.Reports {
		dst, err := output.Publish(path, opts.PublishDir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Debug("published report", zap.String("from", path), zap.String("to", dst))
		summary.Reports[i] = dst
	}
	return errors.Join(errs...)
}

// fingerprint identifies the input for the run table; stdin has no mtime.
func fingerprint(path string) duckdb.FileFingerprint {
	if path == "-" {
		return duckdb.FileFingerprint{Path: path}
	}
	fp, err := duckdb.StatFile(path)
	if err != nil {
		return duckdb.FileFingerprint{Path: path}
	}
	return fp
}

func printSummary(w io.Writer, s scanSummary) {
	if s.Records == 0 && len(s.Reports) == 0 {
		return
	}
	fmt.Fprintf(w, "Scanned %d record(s)\n", s.Records)
	for _, strand := range crispr.Strands {
		if n, ok := s.Sites[strand]; ok {
			fmt.Fprintf(w, "  %-8s %d sites\n", strand.String()+":", n)
		}
	}
	for _, path := range s.Reports {
		fmt.Fprintf(w, "  Report: %s\n", path)
	}
	if s.RunID != "" {
		label := "Run ID"
		if s.Reused {
			label = "Reused run"
		}
		fmt.Fprintf(w, "  %s: %s\n", label, s.RunID)
	}
	fmt.Fprintf(w, "TOTAL RUNTIME = %f\n", s.Elapsed.Seconds())
}
