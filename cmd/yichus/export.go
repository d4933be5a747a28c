package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
)

type exportFlags struct {
	format     string
	output     string
	sliceIndex int
	limit      int
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a tree's events to JSON, CSV, or Markdown",
		Long: `Exports the recorded event log in slice order. JSON and CSV exports
round-trip through the import command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVarP(&flags.sliceIndex, "slice", "s", -1, "Only this slice (default: all)")
	cmd.Flags().IntVar(&flags.limit, "limit", DefaultExportLimit, "Maximum events to export")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !contains(validFormats, flags.format) {
		return errors.Newf("invalid format %q (valid: %s)", flags.format, strings.Join(validFormats, ", "))
	}

	ctx := cmd.Context()

	return withInternalDeps(func(d *internalDeps) error {
		graph, err := d.treeService.LoadGraph(ctx, d.TreeID)
		if err != nil {
			return errors.Wrap(err, "loading tree")
		}
		if flags.sliceIndex >= graph.SliceCount() {
			return errors.Newf("slice %d is out of range (latest is %d)", flags.sliceIndex, graph.LatestSlice())
		}

		e := &exporter{flags: flags}
		events := e.collect(graph)
		if err := e.export(events); err != nil {
			return err
		}

		if flags.output != "" {
			fmt.Printf("Exported %d events to %s\n", len(events), flags.output)
		}
		return nil
	})
}

// exporter writes raw events in the configured format.
type exporter struct {
	flags exportFlags
}

// collect flattens the timeline into raw events in append order, applying
// the slice filter and limit.
func (e *exporter) collect(graph *entities.TemporalGraph) []entities.RawEvent {
	var events []entities.RawEvent
	for si := range graph.Slices {
		if e.flags.sliceIndex >= 0 && si != e.flags.sliceIndex {
			continue
		}
		for _, ev := range graph.Slices[si].Events {
			if len(events) >= e.flags.limit {
				return events
			}
			events = append(events, entities.NewRawEvent(si, ev))
		}
	}
	return events
}

func (e *exporter) export(events []entities.RawEvent) (err error) {
	var w io.Writer = os.Stdout

	if e.flags.output != "" {
		file, ferr := os.Create(e.flags.output)
		if ferr != nil {
			return errors.Wrap(ferr, "creating output file")
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil && err == nil {
				err = errors.Wrap(closeErr, "closing output file")
			}
		}()
		w = file
	}

	switch e.flags.format {
	case "json":
		return formatJSON(w, events)
	case "csv":
		return formatCSV(w, events)
	case "markdown":
		return formatMarkdown(w, events)
	}
	return errors.Newf("unsupported format: %s", e.flags.format)
}

func formatJSON(w io.Writer, events []entities.RawEvent) error {
	if events == nil {
		events = []entities.RawEvent{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(events); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

// formatCSV writes the same columns the CSV parser reads, so an exported
// file can be imported into another tree unchanged.
func formatCSV(w io.Writer, events []entities.RawEvent) error {
	writer := csv.NewWriter(w)

	header := []string{"slice", "type", "person_id", "name", "sex", "relation_id", "relation_type", "source_id", "target_id", "child_ids", "hidden"}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "writing CSV header")
	}

	for _, ev := range events {
		slice := ""
		if ev.Slice != nil {
			slice = strconv.Itoa(*ev.Slice)
		}
		hidden := ""
		if ev.Hidden != nil {
			hidden = strconv.FormatBool(*ev.Hidden)
		}
		row := []string{
			slice,
			ev.Type,
			ev.PersonID,
			ev.Name,
			ev.Sex,
			ev.RelationID,
			ev.RelationType,
			ev.SourceID,
			ev.TargetID,
			strings.Join(ev.ChildIDs, ";"),
			hidden,
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "writing CSV row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "flushing CSV")
	}
	return nil
}

func formatMarkdown(w io.Writer, events []entities.RawEvent) error {
	var b strings.Builder

	b.WriteString("| Slice | Type | ID | Detail |\n")
	b.WriteString("|-------|------|-----|--------|\n")

	for _, ev := range events {
		slice := ""
		if ev.Slice != nil {
			slice = strconv.Itoa(*ev.Slice)
		}

		id := ev.PersonID
		if id == "" {
			id = ev.RelationID
		}

		var detail string
		switch entities.EventType(ev.Type) {
		case entities.EventAddPerson:
			detail = fmt.Sprintf("%s (%s)", ev.Name, ev.Sex)
		case entities.EventAddRelation:
			detail = fmt.Sprintf("%s -[%s]-> %s", ev.SourceID, ev.RelationType, ev.TargetID)
			if len(ev.ChildIDs) > 0 {
				detail += " children: " + strings.Join(ev.ChildIDs, ", ")
			}
		case entities.EventUpdateRelation:
			var parts []string
			if ev.RelationType != "" {
				parts = append(parts, "type="+ev.RelationType)
			}
			if len(ev.ChildIDs) > 0 {
				parts = append(parts, "add_children="+strings.Join(ev.ChildIDs, ","))
			}
			if ev.Hidden != nil {
				parts = append(parts, fmt.Sprintf("hidden=%v", *ev.Hidden))
			}
			detail = strings.Join(parts, " ")
		}

		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			slice,
			escapeMarkdown(ev.Type),
			escapeMarkdown(id),
			escapeMarkdown(detail),
		))
	}

	if _, err := w.Write([]byte(b.String())); err != nil {
		return errors.Wrap(err, "writing markdown")
	}
	return nil
}

// escapeMarkdown escapes characters that would break a markdown table.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// contains checks if a string slice contains a value.
func contains(slice []string, value string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}
