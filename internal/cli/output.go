package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/stockii/event-skill-for-openclaw/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	FetchedAt  time.Time      `json:"fetched_at"`
	RangeStart time.Time      `json:"range_start"`
	RangeEnd   time.Time      `json:"range_end"`
	Events     []*event.Event `json:"events"`
	EventCount int            `json:"event_count"`
	FromCache  bool           `json:"from_cache,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text grouped by day. The
// events arrive sorted (dated ascending, undated last), so grouping is a
// single pass.
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.EventCount == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	currentDay := ""
	for _, evt := range result.Events {
		day := "Date unknown"
		if evt.Start != nil {
			day = evt.Start.Format("Mon 02.01.2006")
		}
		if day != currentDay {
			fmt.Fprintf(w, "\n%s:\n", day)
			currentDay = day
		}

		line := evt.Name
		if evt.Start != nil {
			line = evt.Start.Format("15:04") + "  " + line
		}
		if evt.Venue != "" {
			line += " @ " + evt.Venue
		}
		fmt.Fprintf(w, "  %s\n", line)

		if verbose {
			if evt.Category != "" {
				fmt.Fprintf(w, "       Category: %s\n", evt.Category)
			}
			if evt.Price != "" {
				fmt.Fprintf(w, "       Price: %s\n", evt.Price)
			}
			if evt.Address != "" {
				fmt.Fprintf(w, "       Address: %s\n", evt.Address)
			}
			if evt.URL != "" {
				fmt.Fprintf(w, "       URL: %s\n", evt.URL)
			}
			fmt.Fprintf(w, "       Sources: %s\n", evt.SourceList())
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events (%s to %s)\n",
		result.EventCount,
		result.RangeStart.Format("2006-01-02"),
		result.RangeEnd.Format("2006-01-02"))
	return nil
}
