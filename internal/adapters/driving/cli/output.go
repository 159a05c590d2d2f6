package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
)

// resultJSON is the machine-readable form of one processed document.
type resultJSON struct {
	Path       string                   `json:"path,omitempty"`
	DocumentID string                   `json:"document_id,omitempty"`
	Name       string                   `json:"name,omitempty"`
	Status     string                   `json:"status,omitempty"`
	Accepted   bool                     `json:"accepted"`
	Error      string                   `json:"error,omitempty"`
	Result     *domain.ExtractionResult `json:"result,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult writes a human-readable summary and the item table.
func printResult(w io.Writer, name string, r *domain.ExtractionResult, threshold float64) {
	verdict := "accepted"
	if !r.Accepted(threshold) {
		verdict = "below threshold"
	}
	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "  Method:     %s\n", r.ExtractionMethod)
	fmt.Fprintf(w, "  Confidence: %.2f (%s)\n", r.Confidence, verdict)
	fmt.Fprintf(w, "  Time:       %s\n", (time.Duration(r.ProcessingTimeMS) * time.Millisecond).String())

	req := r.Requirements
	if req == nil {
		req = domain.NewRequirementSet()
	}
	if req.CustomerName != "" {
		fmt.Fprintf(w, "  Customer:   %s\n", req.CustomerName)
	}
	if req.ProjectName != "" {
		fmt.Fprintf(w, "  Project:    %s\n", req.ProjectName)
	}
	if req.Deadline != "" {
		fmt.Fprintf(w, "  Deadline:   %s\n", req.Deadline)
	}

	if len(req.Items) == 0 {
		fmt.Fprintln(w, "  No items found.")
	} else {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  #\tDESCRIPTION\tQTY\tUNIT\tSPECIFICATIONS")
		for i, item := range req.Items {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", i+1, item.Description, formatQuantity(item.Quantity),
				item.Unit, item.Specifications)
		}
		_ = tw.Flush()
	}

	if len(r.Attempts) > 1 || verbose {
		fmt.Fprintln(w, "\n  Attempts:")
		for _, a := range r.Attempts {
			line := fmt.Sprintf("    %-14s %-14s %.2f  %d items  %s", a.Strategy, a.Method, a.Confidence,
				a.ItemCount, a.Elapsed.Round(time.Millisecond))
			if a.Error != "" {
				line += "  error: " + a.Error
			}
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w)
}

func formatQuantity(q *float64) string {
	if q == nil {
		return "-"
	}
	return strconv.FormatFloat(*q, 'f', -1, 64)
}

// printOutcome writes a one-line status for a processed file.
func printOutcome(w io.Writer, o driving.ProcessOutcome, threshold float64) {
	if o.Err != nil {
		fmt.Fprintf(w, "FAIL  %s: %v\n", o.Path, o.Err)
		return
	}
	mark := "OK  "
	if !o.Result.Accepted(threshold) {
		mark = "LOW "
	}
	id := ""
	if o.Document != nil {
		id = o.Document.ID
	}
	items := 0
	if o.Result.Requirements != nil {
		items = len(o.Result.Requirements.Items)
	}
	fmt.Fprintf(w, "%s  %s: %d items via %s (%.2f) %s\n", mark, o.Path, items,
		o.Result.ExtractionMethod, o.Result.Confidence, id)
}
