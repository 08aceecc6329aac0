package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// column describes one table column. Path columns wrap instead of
// stretching the table past the terminal.
type column struct {
	Title string
	Right bool
	Path  bool
}

// pathColumnWidth caps source and destination columns on a terminal.
const pathColumnWidth = 60

func cols(titles ...string) []column {
	out := make([]column, len(titles))
	for i, title := range titles {
		out[i] = column{Title: title}
	}
	return out
}

func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.Title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if c.Right {
			configs[i].Align = text.AlignRight
		}
		if c.Path {
			configs[i].WidthMax = pathColumnWidth
			configs[i].WidthMaxEnforcer = text.WrapHard
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

// renderRows prints a table on a terminal and tab-separated lines otherwise,
// so file names can be piped into cut or awk unchanged.
func renderRows(out io.Writer, columns []column, rows [][]string) {
	if isTerminal(out) {
		fmt.Fprintln(out, renderTable(columns, rows))
		return
	}
	for _, row := range rows {
		fmt.Fprintln(out, strings.Join(row, "\t"))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
