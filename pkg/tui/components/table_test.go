package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func productTable() *Table {
	table := NewTable([]TableColumn{
		{Title: "ID", Width: 4},
		{Title: "NAME"},
		{Title: "RELEASE DATE", Width: 12},
	})
	table.SetRows([][]string{
		{"1", "Alpha", "2021-06-01"},
		{"2", "Beta", "2021-06-20"},
		{"3", "Gamma", "2021-07-04"},
	})
	return table
}

func TestNewTable(t *testing.T) {
	table := NewTable([]TableColumn{{Title: "Name", Width: 20}})

	if !table.ShowHeader {
		t.Error("ShowHeader should be true by default")
	}
	if table.RowCount() != 0 {
		t.Errorf("RowCount() = %d, want 0", table.RowCount())
	}
	if table.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0", table.Cursor())
	}
}

func TestTable_View(t *testing.T) {
	view := ansi.Strip(productTable().View())
	lines := strings.Split(view, "\n")

	if len(lines) != 5 {
		t.Fatalf("got %d lines, want header + separator + 3 rows:\n%s", len(lines), view)
	}
	if !strings.HasPrefix(lines[0], "ID    NAME   RELEASE DATE") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "Alpha") || !strings.Contains(lines[4], "2021-07-04") {
		t.Errorf("rows not rendered:\n%s", view)
	}
}

func TestTable_Empty(t *testing.T) {
	table := NewTable([]TableColumn{{Title: "NAME"}})
	table.Empty = "No products."

	if !strings.Contains(ansi.Strip(table.View()), "No products.") {
		t.Errorf("expected empty message, got %q", table.View())
	}

	if NewTable(nil).View() != "" {
		t.Error("table without columns should render nothing")
	}
}

func TestTable_Cursor(t *testing.T) {
	table := productTable()

	table.MoveUp()
	if table.Cursor() != 0 {
		t.Errorf("cursor moved above first row: %d", table.Cursor())
	}

	table.MoveDown()
	table.MoveDown()
	table.MoveDown()
	if table.Cursor() != 2 {
		t.Errorf("Cursor() = %d, want 2", table.Cursor())
	}

	table.SetRows([][]string{{"4", "Delta", "2022-01-01"}})
	if table.Cursor() != 0 {
		t.Errorf("cursor not clamped after SetRows: %d", table.Cursor())
	}
}

func TestTable_Truncation(t *testing.T) {
	table := NewTable([]TableColumn{{Title: "NAME", Width: 8}})
	table.SetRows([][]string{{"Alpha Centauri"}})

	view := ansi.Strip(table.View())
	if !strings.Contains(view, "Alpha...") {
		t.Errorf("expected ellipsis, got:\n%s", view)
	}
}

func TestTable_WidthConstraint(t *testing.T) {
	table := productTable()
	table.SetWidth(20)

	widths := table.calculateWidths()
	for i, w := range widths {
		if w < 3 {
			t.Errorf("column %d width %d below minimum", i, w)
		}
	}
	total := 0
	for _, w := range widths {
		total += w
	}
	if total > 20 {
		t.Errorf("total width %d exceeds 20", total)
	}
}

func TestKeyValueTable(t *testing.T) {
	kv := NewKeyValueTable()
	if kv.View() != "" {
		t.Error("empty table should render nothing")
	}

	kv.Add("Name", "Alpha")
	kv.Add("Release date", "2021-06-01")

	lines := strings.Split(ansi.Strip(kv.View()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "Name:          Alpha" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "Release date:  2021-06-01" {
		t.Errorf("line 1 = %q", lines[1])
	}

	kv.Clear()
	if kv.View() != "" {
		t.Error("Clear should remove items")
	}
}
