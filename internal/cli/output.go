package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOutcome(w io.Writer, format string, o *entity.SyncOutcome) error {
	if format == "json" {
		return printJSON(w, o)
	}
	line := fmt.Sprintf("page %d: %s", o.PageID, o.Status)
	if o.Reason != "" {
		line += " (" + o.Reason + ")"
	}
	if o.Message != "" {
		line += ": " + o.Message
	}
	if o.Retryable {
		line += " [retryable]"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func printSummary(w io.Writer, format string, s *entity.BatchSummary) error {
	if format == "json" {
		return printJSON(w, s)
	}
	for _, o := range s.Results {
		if o.Status == entity.OutcomeSynced {
			continue
		}
		if err := printOutcome(w, format, o); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "processed %d: %d synced, %d failed, %d skipped (next offset %d of %d)\n",
		s.Processed, s.Succeeded, s.Failed, s.Skipped, s.NextOffset, s.Total)
	return err
}
