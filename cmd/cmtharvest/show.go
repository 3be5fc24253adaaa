package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/cmtharvest"
	"github.com/fwojciec/cmtharvest/csv"
	"github.com/mattn/go-runewidth"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	table, err := readTableFile(c.Table)
	if err != nil {
		return report(deps.Stderr, err)
	}

	if len(table.Columns) == 0 {
		fmt.Fprintln(deps.Stdout, "Table is empty.")
		return nil
	}

	rows := table.Rows
	if c.Limit > 0 && len(rows) > c.Limit {
		rows = rows[:c.Limit]
	}
	writeAligned(deps.Stdout, table.Columns, rows)

	if more := len(table.Rows) - len(rows); more > 0 {
		fmt.Fprintf(deps.Stdout, "... %d more rows\n", more)
	}
	return nil
}

// writeAligned prints rows under header with every column padded to its
// widest cell.
func writeAligned(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	line := func(cells []string) {
		out := make([]string, len(widths))
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			out[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(out, "  "), " "))
	}

	line(header)
	for _, row := range rows {
		line(row)
	}
}

func readTableFile(path string) (*csv.Table, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, cmtharvest.Errorf(cmtharvest.ENOTFOUND, "table %s not found", path)
	} else if err != nil {
		return nil, cmtharvest.Wrap(cmtharvest.EIO, err, "opening table %s", path)
	}
	defer f.Close()
	return csv.ReadTable(f)
}
