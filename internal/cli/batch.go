package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redpenlabs/redpen/internal/config"
	"github.com/redpenlabs/redpen/internal/proof"
	"github.com/redpenlabs/redpen/internal/providers"
	"github.com/redpenlabs/redpen/internal/sheet"
)

var (
	flagSpreadsheetID   string
	flagWorksheet       string
	flagCredentialsFile string
	flagLimit           int
	flagDryRun          bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process the spreadsheet batch queue",
	Long:  "Fetch rows whose status requests a review, proofread each row's content and translation, and write scores, reports, and the completed status back to the sheet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := buildOverrides()
		if flagSpreadsheetID != "" {
			overrides["spreadsheetId"] = flagSpreadsheetID
		}
		if flagWorksheet != "" {
			overrides["worksheet"] = flagWorksheet
		}
		if flagCredentialsFile != "" {
			overrides["credentialsFile"] = flagCredentialsFile
		}

		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}
		runBatch(cfg)
		return nil
	},
}

func runBatch(cfg config.Config) {
	ctx := context.Background()

	client, err := sheet.New(ctx, cfg.Sheet.SpreadsheetID, cfg.Sheet.Worksheet, cfg.Sheet.CredentialsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitAuthError
		return
	}

	rows, err := client.FetchRows(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	requested := sheet.Requested(rows, cfg.Sheet.RequestedStatus)
	if flagLimit > 0 && len(requested) > flagLimit {
		requested = requested[:flagLimit]
	}
	if len(requested) == 0 {
		fmt.Fprintln(os.Stdout, "No rows requested a review.")
		return
	}

	if flagDryRun {
		fmt.Fprintf(os.Stdout, "Would process %d row(s):\n", len(requested))
		for _, r := range requested {
			fmt.Fprintf(os.Stdout, "  row %d (%d bytes content, %d bytes translated)\n",
				r.Index, len(r.Content), len(r.ContentTranslated))
		}
		return
	}

	inv, sink, err := buildInvoker(cfg)
	if err != nil {
		if providers.IsAuthError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	defer sink.Close()

	opts := buildOptions(cfg)

	var results []sheet.RowResult
	partial := 0
	for _, row := range requested {
		res := processRow(ctx, row, inv, opts, cfg.Sheet.CompletedStatus)
		if res.Partial {
			partial++
		}
		results = append(results, res)
		fmt.Fprintf(os.Stderr, "row %d: score %d\n", row.Index, res.Score)
	}

	if err := client.WriteResults(ctx, results); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	status := "complete"
	if partial > 0 {
		status = "partial"
	}
	fmt.Fprintf(os.Stdout, "Processed %d row(s), %d partial. Batch status: %s.\n",
		len(results), partial, status)
}

// processRow proofreads one queue row. A failing row is written back
// with the maximum suspicion score and an explicit failure marker; it
// never aborts its siblings.
func processRow(ctx context.Context, row sheet.Row, inv *proof.Invoker, opts proof.Options, completedStatus string) sheet.RowResult {
	source, err := proof.Run(ctx, proof.Document{
		Plain:     row.Content,
		Formatted: row.ContentMarkdown,
	}, inv, opts)
	if err != nil {
		return failedRow(row, completedStatus, err)
	}

	var translated *proof.Result
	if row.ContentTranslated != "" || row.ContentMarkdownTranslated != "" {
		translated, err = proof.Run(ctx, proof.Document{
			Plain:     row.ContentTranslated,
			Formatted: row.ContentMarkdownTranslated,
		}, inv, opts)
		if err != nil {
			return failedRow(row, completedStatus, err)
		}
	}

	return sheet.BuildResult(row, source, translated, completedStatus)
}

func failedRow(row sheet.Row, completedStatus string, err error) sheet.RowResult {
	marker := fmt.Sprintf("[검수 실패: %v]", err)
	return sheet.RowResult{
		Index:            row.Index,
		Score:            5,
		SourceReport:     marker,
		TranslatedReport: marker,
		MarkdownReport:   marker,
		Status:           completedStatus,
		Partial:          true,
	}
}

func init() {
	addCheckFlags(batchCmd)
	batchCmd.Flags().StringVar(&flagSpreadsheetID, "spreadsheet-id", "", "Spreadsheet ID of the batch queue")
	batchCmd.Flags().StringVar(&flagWorksheet, "worksheet", "", "Worksheet (tab) name")
	batchCmd.Flags().StringVar(&flagCredentialsFile, "credentials", "", "Service account credentials file")
	batchCmd.Flags().IntVar(&flagLimit, "limit", 0, "Maximum number of rows to process")
	batchCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "List matching rows without processing them")
}
