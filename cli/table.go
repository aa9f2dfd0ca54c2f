package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"helpsync/orchestrator"
)

// Table collects rows and renders them without borders
type Table struct {
	table  *tablewriter.Table
	header []string
	rows   [][]string
}

// NewTable creates a table writing to w
func NewTable(w io.Writer, headers []string) *Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	return &Table{table: table, header: headers}
}

// AddRow adds a row to the table
func (t *Table) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

// Render outputs the table
func (t *Table) Render() {
	t.table.Header(t.header)
	t.table.Bulk(t.rows)
	t.table.Render()
}

func section(w io.Writer, title string, count int) {
	fmt.Fprintf(w, "\n%s (%d)\n", title, count)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printCalls(w io.Writer, a *orchestrator.App) {
	entries := a.Calls.Entries()
	section(w, "Remote calls", len(entries))

	t := NewTable(w, []string{"TIME", "METHOD", "STATUS", "DURATION", "DETAILS"})
	for _, e := range entries {
		status := fmt.Sprint(e.StatusCode)
		if e.StatusCode == 0 {
			status = "-"
		}
		t.AddRow(e.Timestamp.Format("15:04:05"), e.Method, status, e.Duration.Round(time.Millisecond).String(), truncate(e.Details, 60))
	}
	t.Render()
}
