package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	xlsxexport "github.com/custodia-labs/rfqx/internal/adapters/driven/export/xlsx"
	"github.com/custodia-labs/rfqx/internal/connectors/filesystem"
	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
	"github.com/custodia-labs/rfqx/internal/core/services"
)

// DefaultWorkers is the number of documents processed at once.
const DefaultWorkers = 2

var extractCmd = &cobra.Command{
	Use:   "extract <path>...",
	Short: "Extract line items from documents",
	Long: `Run the extraction cascade on one or more files. Directories are scanned
recursively for supported documents.

Results are stored in the result database unless --no-store is given.

Examples:
  rfqx extract rfq.pdf
  rfqx extract --json --no-store inbox/
  rfqx extract --threshold 0.7 --export items.xlsx a.docx b.xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	flags := extractCmd.Flags()
	flags.IntP("workers", "w", DefaultWorkers, "documents processed concurrently")
	flags.Bool("json", false, "print results as JSON")
	flags.Bool("no-store", false, "do not persist results")
	flags.String("export", "", "also write the results to an XLSX workbook")
	flags.Float64("threshold", domain.DefaultThreshold, "confidence at which the cascade stops")
	flags.Int("char-budget", domain.DefaultCharBudget, "maximum runes sent to the analyzer")
	flags.Int("page-cap", domain.DefaultVisionPageCap, "maximum PDF pages sent to the vision model")
	flags.Bool("no-fallback", false, "disable the analyzer-only fallback")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings service not configured")
	}

	cfg, err := extractionConfig(cmd)
	if err != nil {
		return err
	}
	workers, _ := cmd.Flags().GetInt("workers")
	asJSON, _ := cmd.Flags().GetBool("json")
	noStore, _ := cmd.Flags().GetBool("no-store")
	exportPath, _ := cmd.Flags().GetString("export")

	paths, err := expandPaths(cmd, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: no supported documents found", domain.ErrInvalidInput)
	}

	docs, cleanup, err := openDocuments(runOptions{cfg: cfg, noStore: noStore})
	if err != nil {
		return err
	}
	defer cleanup()

	outcomes, err := docs.ProcessBatch(cmd.Context(), paths, workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	var rows []resultJSON
	var entries []xlsxexport.Entry
	for _, o := range outcomes {
		if services.IsHardFailure(o.Err) {
			failed++
		}
		if exportPath != "" && o.Document != nil {
			entry := xlsxexport.Entry{Document: *o.Document}
			if o.Result != nil {
				entry.Result = &domain.StoredResult{DocumentID: o.Document.ID, Result: *o.Result}
			}
			entries = append(entries, entry)
		}

		if asJSON {
			rows = append(rows, toResultJSON(o, cfg.Threshold))
			continue
		}
		if o.Err != nil {
			fmt.Fprintf(out, "%s\n  Error: %v\n\n", o.Path, o.Err)
			continue
		}
		printResult(out, o.Path, o.Result, cfg.Threshold)
	}

	if asJSON {
		if err := writeJSON(out, rows); err != nil {
			return err
		}
	}
	if exportPath != "" {
		if err := xlsxexport.Export(exportPath, entries); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if !asJSON {
			fmt.Fprintf(out, "Exported %d document(s) to %s\n", len(entries), exportPath)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed", failed, len(outcomes))
	}
	return nil
}

func toResultJSON(o driving.ProcessOutcome, threshold float64) resultJSON {
	row := resultJSON{Path: o.Path, Result: o.Result}
	if o.Document != nil {
		row.DocumentID = o.Document.ID
		row.Name = o.Document.Name
		row.Status = string(o.Document.Status)
	}
	if o.Err != nil {
		row.Error = o.Err.Error()
	}
	row.Accepted = o.Result.Accepted(threshold)
	return row
}

// expandPaths resolves arguments to document paths. Directories contribute
// every supported document beneath them.
func expandPaths(cmd *cobra.Command, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		path := filesystem.ResolvePath(arg)
		info, err := os.Stat(path)
		if err != nil {
			// Reported per document by the service.
			paths = append(paths, path)
			continue
		}
		if !info.IsDir() {
			paths = append(paths, path)
			continue
		}
		found, err := filesystem.New(path).Scan(cmd.Context())
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}
