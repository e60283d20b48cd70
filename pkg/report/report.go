// Package report renders table contents for people: a fixed-width console
// listing and an Excel workbook.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// MaxCellWidth is the longest value printed as is; longer values are cut
// to this many characters followed by "...".
const MaxCellWidth = 20

// Table is a rendered snapshot: columns in table order and one text cell
// per column per row.
type Table struct {
	Name    string
	Columns []schema.Column
	Rows    [][]string
}

// Render prints t as a fixed-width listing:
//
//	Data retrieved from table [product] (2 records)
//	| num                      | name                     |
//	| 1                        | Widget                   |
func Render(w io.Writer, t *Table) error {
	if t == nil || len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "There are no records in this table")
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Data retrieved from table [%s] (%d records)\n", t.Name, len(t.Rows))

	for _, col := range t.Columns {
		fmt.Fprintf(&sb, "| %-25s", col.Name)
	}
	sb.WriteString("|\n")

	for _, row := range t.Rows {
		for i := range t.Columns {
			cell := ""
			if i < len(row) {
				cell = Truncate(row[i])
			}
			fmt.Fprintf(&sb, "| %-25s", cell)
		}
		sb.WriteString("|\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Truncate cuts s to MaxCellWidth characters plus "..." when it is longer.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxCellWidth {
		return s
	}
	return string(r[:MaxCellWidth]) + "..."
}
