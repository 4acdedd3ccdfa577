// Package formatting renders component listings and check results for the
// CLI in table, JSON, or YAML form.
package formatting

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"loom/internal/component"
	"loom/internal/conformance"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --output flag value. Empty selects table.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatYAML:
		return Format(s), nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown output format %q (valid: table, json, yaml)", s)
}

// Row is one component in a listing.
type Row struct {
	Category    string `json:"category" yaml:"category"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Module      string `json:"module,omitempty" yaml:"module,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Rows flattens a registry snapshot in category load order.
func Rows(snapshot map[component.Category][]*component.Record) []Row {
	var rows []Row
	for _, category := range component.Categories() {
		for _, rec := range snapshot[category] {
			rows = append(rows, Row{
				Category:    string(category),
				Name:        rec.Name,
				Description: rec.Description,
				Module:      rec.ModuleID,
				Source:      rec.SourcePath,
			})
		}
	}
	return rows
}

// WriteComponents renders a component listing to w.
func WriteComponents(w io.Writer, format Format, rows []Row) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatYAML:
		return writeYAML(w, rows)
	default:
		writeComponentTable(w, rows)
		return nil
	}
}

func writeComponentTable(w io.Writer, rows []Row) {
	if len(rows) == 0 {
		fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No components registered"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("CATEGORY"),
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("DESCRIPTION"),
		text.FgHiCyan.Sprint("MODULE"),
	})
	for _, row := range rows {
		t.AppendRow(table.Row{row.Category, row.Name, truncate(row.Description, 60), row.Module})
	}
	t.Render()
	fmt.Fprintf(w, "%s %d\n", text.FgHiBlue.Sprint("Total:"), len(rows))
}

// WriteCheckResults renders conformance results to w and reports whether
// every check passed.
func WriteCheckResults(w io.Writer, format Format, results []conformance.Result) (bool, error) {
	passed := 0
	for _, result := range results {
		if result.Passed() {
			passed++
		}
	}
	allPassed := passed == len(results)

	if format == FormatJSON || format == FormatYAML {
		type checkReport struct {
			Target   string   `json:"target" yaml:"target"`
			File     string   `json:"file" yaml:"file"`
			Passed   bool     `json:"passed" yaml:"passed"`
			Failures []string `json:"failures,omitempty" yaml:"failures,omitempty"`
		}
		reports := make([]checkReport, 0, len(results))
		for _, result := range results {
			reports = append(reports, checkReport{
				Target:   result.Target,
				File:     result.File,
				Passed:   result.Passed(),
				Failures: result.Failures,
			})
		}
		if format == FormatJSON {
			return allPassed, writeJSON(w, reports)
		}
		return allPassed, writeYAML(w, reports)
	}

	for _, result := range results {
		if result.Passed() {
			fmt.Fprintf(w, "%s %s\n", text.FgGreen.Sprint("PASS"), result.Target)
			continue
		}
		fmt.Fprintf(w, "%s %s (%s)\n", text.FgRed.Sprint("FAIL"), result.Target, result.File)
		for _, failure := range result.Failures {
			fmt.Fprintf(w, "     - %s\n", failure)
		}
	}
	fmt.Fprintf(w, "\n%d/%d checks passed\n", passed, len(results))
	return allPassed, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
