package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/andri/pocs/pkg/tui/format"
	"golang.org/x/term"
)

// TableWriter writes data as a formatted ASCII table
type TableWriter struct {
	w     io.Writer
	color bool
	width int
}

// NewTableWriter creates a new table writer
func NewTableWriter(w io.Writer) *TableWriter {
	tw := &TableWriter{
		w:     w,
		color: isTerminal(w),
		width: 100,
	}

	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			tw.width = width
		}
	}

	return tw
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Write writes the data as a formatted table
func (tw *TableWriter) Write(data *Data) error {
	if data.Products != nil {
		tw.writeSectionHeader("PRODUCTS", data.Products.Count)
		tw.writeFilterErrors(data.Products.Errors)
		tw.writeProductsTable(data.Products)
		_, _ = fmt.Fprintln(tw.w)
	}

	for _, section := range data.Posts {
		tw.writeSectionHeader(strings.ToUpper(section.Model), len(section.Items))
		tw.writePostsTable(section.Items)
		_, _ = fmt.Fprintln(tw.w)
	}

	if len(data.Migrations) > 0 {
		tw.writeSectionHeader("MIGRATIONS", len(data.Migrations))
		tw.writeMigrationsTable(data)
		_, _ = fmt.Fprintln(tw.w)
	}

	return nil
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func (tw *TableWriter) writeSectionHeader(title string, count int) {
	header := fmt.Sprintf("=== %s (%d) ===", title, count)
	_, _ = fmt.Fprintln(tw.w, tw.colorize(header, colorBold+colorCyan))
}

func (tw *TableWriter) writeFilterErrors(errs map[string][]string) {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, msg := range errs[name] {
			_, _ = fmt.Fprintf(tw.w, "%s: %s\n", name, tw.colorize(msg, colorRed))
		}
	}
}

func (tw *TableWriter) writeProductsTable(section *ProductSection) {
	cols := []column{
		{header: "ID", width: 6},
		{header: "NAME", width: 30},
		{header: "RELEASE DATE", width: 12},
	}
	used := 0
	for _, c := range cols {
		used += c.width + 1
	}
	cols = append(cols, column{header: "DESCRIPTION", width: max(20, tw.width-used)})

	tw.writeTableHeader(cols)
	tw.writeTableSeparator(cols)

	for _, p := range section.Items {
		description := strings.Join(strings.Fields(p.Description), " ")
		row := []cell{
			{value: strconv.FormatInt(p.ID, 10)},
			{value: format.Ellipsize(p.Name, cols[1].width)},
			{value: p.ReleaseDate.String(), color: colorGreen},
			{value: format.Ellipsize(description, cols[3].width)},
		}
		tw.writeTableRow(cols, row)
	}

	pageColor := ""
	if section.NumPages > 1 {
		pageColor = colorYellow
	}
	_, _ = fmt.Fprintln(tw.w, tw.colorize(fmt.Sprintf("Page %d of %d", section.Page, section.NumPages), pageColor))
}

func (tw *TableWriter) writePostsTable(rows []PostRow) {
	cols := []column{
		{header: "ID", width: 6},
		{header: "DATETIME", width: 35},
	}

	tw.writeTableHeader(cols)
	tw.writeTableSeparator(cols)

	for _, p := range rows {
		tw.writeTableRow(cols, []cell{
			{value: strconv.FormatInt(p.ID, 10)},
			{value: p.DateTime.Format("2006-01-02 15:04:05 MST")},
		})
	}
}

func (tw *TableWriter) writeMigrationsTable(data *Data) {
	cols := []column{
		{header: "VERSION", width: 8},
		{header: "NAME", width: 45},
		{header: "APPLIED", width: 30},
	}

	tw.writeTableHeader(cols)
	tw.writeTableSeparator(cols)

	for _, m := range data.Migrations {
		tw.writeTableRow(cols, []cell{
			{value: strconv.Itoa(m.Version)},
			{value: m.Name},
			{value: m.Applied, color: colorGreen},
		})
	}
}

// column defines a table column
type column struct {
	header string
	width  int
}

// cell defines a table cell
type cell struct {
	value string
	color string
}

// writeTableHeader writes the table header row
func (tw *TableWriter) writeTableHeader(cols []column) {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = format.PadRight(col.header, col.width)
	}
	_, _ = fmt.Fprintln(tw.w, tw.colorize(strings.TrimRight(strings.Join(parts, " "), " "), colorBold))
}

// writeTableSeparator writes a separator line
func (tw *TableWriter) writeTableSeparator(cols []column) {
	totalWidth := 0
	for _, col := range cols {
		totalWidth += col.width + 1
	}
	_, _ = fmt.Fprintln(tw.w, strings.Repeat("-", totalWidth-1))
}

// writeTableRow writes a table row
func (tw *TableWriter) writeTableRow(cols []column, cells []cell) {
	parts := make([]string, len(cols))
	for i, col := range cols {
		value := ""
		color := ""
		if i < len(cells) {
			value = cells[i].value
			color = cells[i].color
		}
		padded := format.PadRight(value, col.width)
		if color != "" {
			padded = tw.colorize(padded, color)
		}
		parts[i] = padded
	}
	_, _ = fmt.Fprintln(tw.w, strings.TrimRight(strings.Join(parts, " "), " "))
}

// colorize adds ANSI color codes if color is enabled
func (tw *TableWriter) colorize(s, color string) string {
	if !tw.color || color == "" {
		return s
	}
	return color + s + colorReset
}

// RenderTable renders data to a table and writes to the given writer
func RenderTable(w io.Writer, data *Data) error {
	tw := NewTableWriter(w)
	return tw.Write(data)
}
