// Package components holds the widgets the product browser is built from.
package components

import (
	"strings"

	"github.com/andri/pocs/pkg/tui/format"
	"github.com/andri/pocs/pkg/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a column in the table
type TableColumn struct {
	// Title is the column header
	Title string

	// Width is the column width in characters (0 = auto)
	Width int

	// Align specifies text alignment
	Align lipgloss.Position

	// Style is applied to all cells in this column
	Style lipgloss.Style
}

// Table is a table with a movable cursor row
type Table struct {
	// Columns defines the table structure
	Columns []TableColumn

	// Rows contains the cell values of each row
	Rows [][]string

	// ShowHeader determines if column headers are displayed
	ShowHeader bool

	// Width is the total table width (0 = auto)
	Width int

	// Empty is shown instead of rows when there are none
	Empty string

	cursor int

	// styles
	headerStyle   lipgloss.Style
	cellStyle     lipgloss.Style
	selectedStyle lipgloss.Style
	borderStyle   lipgloss.Style
}

// NewTable creates a new table with the given columns
func NewTable(columns []TableColumn) *Table {
	return &Table{
		Columns:    columns,
		ShowHeader: true,
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorPrimary),
		cellStyle:     styles.StyleNormal,
		selectedStyle: styles.StyleSelected,
		borderStyle: lipgloss.NewStyle().
			Foreground(styles.ColorBorder),
	}
}

// View renders the table
func (t *Table) View() string {
	if len(t.Columns) == 0 {
		return ""
	}

	widths := t.calculateWidths()

	var lines []string
	if t.ShowHeader {
		lines = append(lines, t.renderRow(t.headerCells(), widths, t.headerStyle, false))
		lines = append(lines, t.renderSeparator(widths))
	}

	if len(t.Rows) == 0 && t.Empty != "" {
		lines = append(lines, styles.StyleSubtle.Render(t.Empty))
	}

	for i, row := range t.Rows {
		style := t.cellStyle
		selected := i == t.cursor
		if selected {
			style = t.selectedStyle
		}
		lines = append(lines, t.renderRow(row, widths, style, selected))
	}

	return strings.Join(lines, "\n")
}

func (t *Table) headerCells() []string {
	cells := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cells[i] = col.Title
	}
	return cells
}

// calculateWidths determines the width for each column
func (t *Table) calculateWidths() []int {
	widths := make([]int, len(t.Columns))

	for i, col := range t.Columns {
		if col.Width > 0 {
			widths[i] = col.Width
		} else {
			widths[i] = format.DisplayWidth(col.Title)
		}
	}

	// Expand to fit content only for auto-width columns (Width == 0)
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && t.Columns[i].Width == 0 {
				widths[i] = max(widths[i], format.DisplayWidth(cell))
			}
		}
	}

	if t.Width > 0 {
		totalWidth := (len(widths) - 1) * 2
		for _, w := range widths {
			totalWidth += w
		}

		if totalWidth > t.Width {
			// Proportionally reduce column widths
			ratio := float64(t.Width) / float64(totalWidth)
			for i := range widths {
				widths[i] = max(3, int(float64(widths[i])*ratio))
			}
		}
	}

	return widths
}

// renderRow renders a single row with the given widths
func (t *Table) renderRow(cells []string, widths []int, style lipgloss.Style, selected bool) string {
	paddedCells := make([]string, len(t.Columns))

	for i := range t.Columns {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}

		width := widths[i]
		cell = format.Ellipsize(cell, width)
		padding := width - format.DisplayWidth(cell)

		switch t.Columns[i].Align { //nolint:exhaustive // Left, Center and Right are the only distinct positions
		case lipgloss.Right:
			cell = strings.Repeat(" ", padding) + cell
		case lipgloss.Center:
			leftPad := padding / 2
			cell = strings.Repeat(" ", leftPad) + cell + strings.Repeat(" ", padding-leftPad)
		default:
			cell += strings.Repeat(" ", padding)
		}

		if !selected && t.Columns[i].Style.Value() != "" {
			paddedCells[i] = t.Columns[i].Style.Render(cell)
		} else {
			paddedCells[i] = style.Render(cell)
		}
	}

	sep := "  "
	if selected {
		sep = style.Render(sep)
	}
	return strings.Join(paddedCells, sep)
}

// renderSeparator renders a horizontal separator line
func (t *Table) renderSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return t.borderStyle.Render(strings.Join(parts, "──"))
}

// SetRows replaces all rows and keeps the cursor in range
func (t *Table) SetRows(rows [][]string) {
	t.Rows = rows
	t.cursor = min(t.cursor, max(0, len(rows)-1))
}

// Cursor returns the index of the selected row
func (t *Table) Cursor() int {
	return t.cursor
}

// SetCursor moves the cursor, clamped to the rows
func (t *Table) SetCursor(i int) {
	t.cursor = max(0, min(i, len(t.Rows)-1))
}

// MoveUp moves the cursor one row up
func (t *Table) MoveUp() {
	t.SetCursor(t.cursor - 1)
}

// MoveDown moves the cursor one row down
func (t *Table) MoveDown() {
	t.SetCursor(t.cursor + 1)
}

// SetWidth sets the total table width
func (t *Table) SetWidth(width int) {
	t.Width = width
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// KeyValueTable renders aligned "key: value" lines
type KeyValueTable struct {
	items []keyValueItem
}

type keyValueItem struct {
	key   string
	value string
	style lipgloss.Style
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable() *KeyValueTable {
	return &KeyValueTable{}
}

// Add adds a key-value pair
func (kv *KeyValueTable) Add(key, value string) {
	kv.AddStyled(key, value, styles.StyleNormal)
}

// AddStyled adds a key-value pair rendered with style
func (kv *KeyValueTable) AddStyled(key, value string, style lipgloss.Style) {
	kv.items = append(kv.items, keyValueItem{key: key, value: value, style: style})
}

// View renders the pairs
func (kv *KeyValueTable) View() string {
	if len(kv.items) == 0 {
		return ""
	}

	maxKeyLen := 0
	for _, item := range kv.items {
		maxKeyLen = max(maxKeyLen, format.DisplayWidth(item.key))
	}

	lines := make([]string, len(kv.items))
	for i, item := range kv.items {
		lines[i] = styles.StyleSubtle.Render(format.PadRight(item.key+":", maxKeyLen+1)) +
			"  " + item.style.Render(item.value)
	}

	return strings.Join(lines, "\n")
}

// Clear removes all items
func (kv *KeyValueTable) Clear() {
	kv.items = nil
}
