package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	xlsxexport "github.com/custodia-labs/rfqx/internal/adapters/driven/export/xlsx"
	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
)

var resultCmd = &cobra.Command{
	Use:     "result",
	Aliases: []string{"results"},
	Short:   "Inspect stored extraction results",
}

var resultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed documents",
	Args:  cobra.NoArgs,
	RunE:  runResultList,
}

var resultGetCmd = &cobra.Command{
	Use:   "get <document-id>",
	Short: "Show the result of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultGet,
}

var resultExportCmd = &cobra.Command{
	Use:   "export <file.xlsx> [document-id]...",
	Short: "Export results to an XLSX workbook",
	Long: `Write stored results to an XLSX workbook with one row per line item.
Without document IDs every processed document is exported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResultExport,
}

func init() {
	resultListCmd.Flags().Bool("json", false, "print as JSON")
	resultGetCmd.Flags().Bool("json", false, "print as JSON")
	resultCmd.AddCommand(resultListCmd)
	resultCmd.AddCommand(resultGetCmd)
	resultCmd.AddCommand(resultExportCmd)
	rootCmd.AddCommand(resultCmd)
}

// openResults opens the document service for reading stored results.
func openResults() (driving.DocumentService, func(), error) {
	if settingsService == nil {
		return nil, nil, errors.New("settings service not configured")
	}
	cfg, err := settingsService.ExtractionConfig()
	if err != nil {
		return nil, nil, err
	}
	return openDocuments(runOptions{cfg: cfg, readOnly: true})
}

func runResultList(cmd *cobra.Command, _ []string) error {
	docs, cleanup, err := openResults()
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := docs.List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if list == nil {
			list = []domain.Document{}
		}
		return writeJSON(out, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No documents processed yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tUPDATED")
	for _, d := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Status, d.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runResultGet(cmd *cobra.Command, args []string) error {
	docs, cleanup, err := openResults()
	if err != nil {
		return err
	}
	defer cleanup()

	doc, err := docs.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")

	if doc.Status != domain.DocumentCompleted {
		if asJSON {
			return writeJSON(out, resultJSON{DocumentID: doc.ID, Name: doc.Name, Status: string(doc.Status),
				Error: doc.Error})
		}
		fmt.Fprintf(out, "%s (%s)\n", doc.Name, doc.Status)
		if doc.Error != "" {
			fmt.Fprintf(out, "  Error: %s\n", doc.Error)
		}
		return nil
	}

	stored, err := docs.GetResult(cmd.Context(), doc.ID)
	if err != nil {
		return err
	}
	cfg, err := settingsService.ExtractionConfig()
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(out, resultJSON{
			DocumentID: doc.ID,
			Name:       doc.Name,
			Status:     string(doc.Status),
			Accepted:   stored.Result.Accepted(cfg.Threshold),
			Result:     &stored.Result,
		})
	}
	printResult(out, doc.Name, &stored.Result, cfg.Threshold)
	return nil
}

func runResultExport(cmd *cobra.Command, args []string) error {
	docs, cleanup, err := openResults()
	if err != nil {
		return err
	}
	defer cleanup()

	var selected []domain.Document
	if len(args) > 1 {
		for _, id := range args[1:] {
			doc, err := docs.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			selected = append(selected, *doc)
		}
	} else {
		selected, err = docs.List(cmd.Context())
		if err != nil {
			return err
		}
	}

	entries := make([]xlsxexport.Entry, 0, len(selected))
	for _, doc := range selected {
		entry := xlsxexport.Entry{Document: doc}
		if doc.Status == domain.DocumentCompleted {
			stored, err := docs.GetResult(cmd.Context(), doc.ID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			entry.Result = stored
		}
		entries = append(entries, entry)
	}

	if err := xlsxexport.Export(args[0], entries); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d document(s) to %s\n", len(entries), args[0])
	return nil
}
