// Package ui, fluentdb komut satırı aracının terminal çıktısını biçimlendirir.
package ui

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/biyonik/fluentdb"
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

// Out ve Err, çıktı hedefleridir; testlerde değiştirilebilir.
var (
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

var errorPrinter = color.New(color.FgRed, color.Bold)

// PrintTitle prints a section title.
func PrintTitle(title string) {
	fmt.Fprintln(Out, TitleStyle.Render(title))
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	fmt.Fprintln(Out, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	fmt.Fprintln(Out, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message using fatih/color.
func PrintError(format string, args ...any) {
	errorPrinter.Fprintln(Err, "✗ "+fmt.Sprintf(format, args...))
}

// PrintKeyValues prints aligned "key: value" pairs in the given order.
func PrintKeyValues(pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		key := SecondaryStyle.Render(fmt.Sprintf("%-*s", width, p[0]))
		fmt.Fprintf(Out, "%s  %s\n", key, p[1])
	}
}

// PrintTable prints a table using pterm
func PrintTable(headers []string, rows [][]string) error {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithWriter(Out).WithData(data).Render()
}

// PrintResult, sonuç kümesini tablo olarak yazar.
func PrintResult(res fluentdb.Result) error {
	headers, rows := ResultTable(res)
	if len(rows) == 0 {
		PrintWarning("no rows")
		return nil
	}
	if err := PrintTable(headers, rows); err != nil {
		return err
	}
	fmt.Fprintln(Out, SecondaryStyle.Render(fmt.Sprintf("%d row(s)", len(rows))))
	return nil
}

// ResultTable, sonucu başlık ve string satırlara çevirir. NULL değerler "NULL" yazılır.
func ResultTable(res fluentdb.Result) ([]string, [][]string) {
	if res == nil || res.Len() == 0 {
		return nil, nil
	}

	records := res.Records()
	headers := columnsOf(records)

	rows := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, len(headers))
		for j, h := range headers {
			if r.IsNull(h) {
				row[j] = "NULL"
				continue
			}
			row[j] = formatValue(r.Get(h))
		}
		rows[i] = row
	}
	return headers, rows
}

func columnsOf(records []fluentdb.Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range records {
		for _, c := range r.Columns() {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []byte:
		return fmt.Sprintf("0x%x", val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
