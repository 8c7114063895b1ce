package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/certrep/internal/domain/analysis"
	"github.com/okian/certrep/internal/domain/refdata"
)

const stdinArg = "-"

// Output formats for analyze.
const (
	formatJSON  = "json"
	formatTable = "table"
)

// Image and PDF inputs need OCR, which certrep does not do.
var binaryExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

type analyzeOptions struct {
	format   string
	saveJSON string
	refPath  string
	jobs     int
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Analyze plain text certificates",
		Long: `Analyzes one or more plain text certificates and prints the results.

Each file becomes one analysis whose id is the file name without its
extension. Use "-" (or no arguments) to read a single certificate from stdin.

Examples:
  # Analyze two certificates and print a table
  certrep analyze --format table aws.txt coursera.txt

  # Analyze from stdin and keep the JSON
  cat cert.txt | certrep analyze --save-json results.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.refPath, _ = cmd.Flags().GetString("reference-data")
			return runAnalyze(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", formatJSON, "output format: json or table")
	cmd.Flags().StringVar(&opts.saveJSON, "save-json", "", "also write the results as JSON to this file")
	cmd.Flags().IntVar(&opts.jobs, "jobs", runtime.NumCPU(), "maximum files analyzed at once")
	return cmd
}

func runAnalyze(ctx context.Context, stdin io.Reader, out io.Writer, args []string, opts *analyzeOptions) error {
	if opts.format != formatJSON && opts.format != formatTable {
		return fmt.Errorf("%w: format %q", errUnsupportedInput, opts.format)
	}
	if len(args) == 0 {
		args = []string{stdinArg}
	}
	stdinCount := 0
	for _, arg := range args {
		if arg == stdinArg {
			if stdinCount++; stdinCount > 1 {
				return fmt.Errorf("%w: stdin given more than once", errUnsupportedInput)
			}
			continue
		}
		if binaryExtensions[strings.ToLower(filepath.Ext(arg))] {
			return fmt.Errorf("%w: %s: only plain text is accepted", errUnsupportedInput, arg)
		}
	}

	tables, err := loadTables(opts.refPath)
	if err != nil {
		return err
	}
	results, err := analyzeAll(ctx, analysis.NewEngine(tables), stdin, args, opts.jobs)
	if err != nil {
		return err
	}

	if opts.saveJSON != "" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
		if err := os.WriteFile(opts.saveJSON, append(data, '\n'), 0o600); err != nil {
			return fmt.Errorf("save results: %w", err)
		}
	}

	if opts.format == formatTable {
		return renderTable(out, results)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// analyzeAll reads and analyzes every input concurrently. Results keep the
// order of args.
func analyzeAll(ctx context.Context, engine *analysis.Engine, stdin io.Reader, args []string, jobs int) ([]analysis.Result, error) {
	results := make([]analysis.Result, len(args))

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, arg := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := readDocument(stdin, arg)
			if err != nil {
				return err
			}
			results[i] = engine.Analyze(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readDocument(stdin io.Reader, arg string) (analysis.Document, error) {
	if arg == stdinArg {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return analysis.Document{}, fmt.Errorf("read stdin: %w", err)
		}
		return analysis.Document{ID: "stdin", Source: stdinArg, Text: string(data)}, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return analysis.Document{}, fmt.Errorf("read %s: %w", arg, err)
	}
	base := filepath.Base(arg)
	return analysis.Document{
		ID:     strings.TrimSuffix(base, filepath.Ext(base)),
		Source: arg,
		Text:   string(data),
	}, nil
}

func loadTables(path string) (*refdata.Tables, error) {
	if path == "" {
		return refdata.Default(), nil
	}
	return refdata.LoadFile(path)
}

func renderTable(out io.Writer, results []analysis.Result) error {
	data := pterm.TableData{
		{"ID", "Issuer", "Score", "Tier", "Verified", "Skills"},
	}
	for _, r := range results {
		data = append(data, []string{
			r.ID,
			r.Resolution.Name(),
			strconv.FormatFloat(r.Result.Score, 'f', 2, 64),
			strconv.Itoa(r.Result.Tier),
			strconv.FormatBool(r.Features.Verified),
			strings.Join(r.Skills, ", "),
		})
	}

	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	_, err = fmt.Fprintln(out, table)
	return err
}
