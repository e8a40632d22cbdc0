package models

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/paginate"
	"github.com/andri/pocs/pkg/store"
	"github.com/andri/pocs/pkg/tui/components"
	"github.com/andri/pocs/pkg/tui/terminal"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, store.Options{Path: store.MemoryPath})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })

	products := []model.Product{
		{Name: "Alpha", Description: "a", ReleaseDate: model.NewDate(2021, time.June, 1)},
		{Name: "Beta", Description: "b", ReleaseDate: model.NewDate(2021, time.June, 20)},
		{Name: "Gamma", Description: "c", ReleaseDate: model.NewDate(2021, time.July, 4)},
		{Name: "Delta", Description: "d", ReleaseDate: model.NewDate(2022, time.June, 9)},
		{Name: "Epsilon", Description: "e", ReleaseDate: model.NewDate(2020, time.January, 15)},
	}
	for i := range products {
		if err := s.Products().Create(ctx, &products[i]); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func newTestModel(t *testing.T, values url.Values) *BrowseModel {
	t.Helper()
	return NewBrowseModel(BrowseModelConfig{
		Context:    context.Background(),
		Store:      newTestStore(t),
		PerPage:    2,
		Values:     values,
		Capability: &terminal.Capability{HasNoColors: true},
	})
}

// run executes cmd and feeds its message back into the model, the way the
// bubbletea runtime would.
func run(t *testing.T, m *BrowseModel, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if _, ok := msg.(tea.QuitMsg); ok {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func press(t *testing.T, m *BrowseModel, k string) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	run(t, m, cmd)
}

func names(m *BrowseModel) []string {
	var out []string
	for _, p := range m.Page().Products {
		out = append(out, p.Name)
	}
	return out
}

func TestBrowseModel_Init(t *testing.T) {
	m := newTestModel(t, nil)

	if !strings.Contains(m.View(), "Loading...") {
		t.Errorf("expected loading view, got %q", m.View())
	}

	run(t, m, m.Init())

	if m.Page() == nil {
		t.Fatal("page not loaded")
	}
	if got := names(m); strings.Join(got, ",") != "Alpha,Beta" {
		t.Errorf("first page = %v", got)
	}
	if m.Page().Page.NumPages != 3 {
		t.Errorf("NumPages = %d, want 3", m.Page().Page.NumPages)
	}

	view := ansi.Strip(m.View())
	for _, want := range []string{"Products", "Alpha", "Page 1 of 3", "5 products"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBrowseModel_Paging(t *testing.T) {
	m := newTestModel(t, nil)
	run(t, m, m.Init())

	press(t, m, "n")
	if m.Page().Page.Number != 2 || strings.Join(names(m), ",") != "Gamma,Delta" {
		t.Errorf("after next: page %d %v", m.Page().Page.Number, names(m))
	}

	press(t, m, "G")
	if m.Page().Page.Number != 3 || strings.Join(names(m), ",") != "Epsilon" {
		t.Errorf("after last: page %d %v", m.Page().Page.Number, names(m))
	}

	press(t, m, "p")
	if m.Page().Page.Number != 2 {
		t.Errorf("after prev: page %d", m.Page().Page.Number)
	}

	press(t, m, "g")
	if m.Page().Page.Number != 1 {
		t.Errorf("after first: page %d", m.Page().Page.Number)
	}
}

func TestBrowseModel_NoPreviousOnFirstPage(t *testing.T) {
	m := newTestModel(t, nil)
	run(t, m, m.Init())

	press(t, m, "p")
	if m.Page().Page.Number != 1 {
		t.Errorf("page = %d, want 1", m.Page().Page.Number)
	}
	if m.Err() != nil {
		t.Errorf("unexpected error %v", m.Err())
	}
}

func TestBrowseModel_Cursor(t *testing.T) {
	m := newTestModel(t, nil)
	run(t, m, m.Init())

	press(t, m, "j")
	if p := m.Selected(); p == nil || p.Name != "Beta" {
		t.Errorf("Selected() = %v, want Beta", p)
	}
	if !strings.Contains(ansi.Strip(m.View()), "2021-06-20") {
		t.Error("detail box should show the selected release date")
	}

	press(t, m, "n")
	if p := m.Selected(); p == nil || p.Name != "Gamma" {
		t.Errorf("cursor should reset on a new page, got %v", p)
	}
}

func TestBrowseModel_Filter(t *testing.T) {
	m := newTestModel(t, nil)
	run(t, m, m.Init())

	press(t, m, "/")
	for _, r := range "2021-06" {
		press(t, m, string(r))
	}
	if !strings.Contains(m.View(), "/ 2021-06") {
		t.Errorf("filter bar not shown:\n%s", m.View())
	}
	press(t, m, "enter")

	if got := strings.Join(names(m), ","); got != "Alpha,Beta" {
		t.Errorf("filtered = %v", got)
	}
	if m.Page().Page.Count != 2 || m.Page().Page.NumPages != 1 {
		t.Errorf("count=%d pages=%d", m.Page().Page.Count, m.Page().Page.NumPages)
	}
	if !strings.Contains(ansi.Strip(m.View()), `Filter: "month=06 year=2021"`) {
		t.Errorf("filter status missing:\n%s", ansi.Strip(m.View()))
	}

	press(t, m, "x")
	if m.Page().Page.Count != 5 {
		t.Errorf("clear filter: count = %d, want 5", m.Page().Page.Count)
	}
}

func TestBrowseModel_InvalidFilter(t *testing.T) {
	m := newTestModel(t, url.Values{"release_date__year": {"abc"}})
	run(t, m, m.Init())

	if m.Page().Page.Count != 0 {
		t.Errorf("invalid filter should match nothing, count = %d", m.Page().Page.Count)
	}
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "Release date year: Enter a number.") {
		t.Errorf("filter error missing:\n%s", view)
	}
	if !strings.Contains(view, "No products.") {
		t.Errorf("empty table message missing:\n%s", view)
	}
}

func TestBrowseModel_UnparseableFilter(t *testing.T) {
	m := newTestModel(t, nil)
	run(t, m, m.Init())

	_, cmd := m.Update(components.FilterAppliedMsg{Query: "day=3"})
	run(t, m, cmd)

	if m.Err() == nil || !strings.Contains(m.Err().Error(), `unknown filter "day"`) {
		t.Errorf("Err() = %v", m.Err())
	}
	if m.Page().Page.Count != 5 {
		t.Error("previous page should stay on screen")
	}
}

func TestBrowseModel_BadInitialPage(t *testing.T) {
	m := newTestModel(t, url.Values{"page": {"9"}})
	run(t, m, m.Init())

	if !errors.Is(m.Err(), paginate.ErrEmptyPage) {
		t.Fatalf("Err() = %v, want ErrEmptyPage", m.Err())
	}
	if m.Page() != nil {
		t.Error("no page should be loaded")
	}
	if !strings.Contains(ansi.Strip(m.View()), "That page contains no results") {
		t.Errorf("view:\n%s", ansi.Strip(m.View()))
	}
}

func TestBrowseModel_RecoversFromBadInitialPage(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		wantCount int
	}{
		{"first page", []string{"g"}, 5},
		{"last page", []string{"G"}, 5},
		{"clear filter", []string{"x"}, 5},
		{"filter", []string{"/", "2", "0", "2", "1", "-", "0", "6", "enter"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, url.Values{"page": {"99"}})
			run(t, m, m.Init())
			if m.Page() != nil {
				t.Fatal("page 99 should not load")
			}

			for _, k := range tt.keys {
				press(t, m, k)
			}

			if m.Page() == nil {
				t.Fatalf("no page after %v, Err() = %v", tt.keys, m.Err())
			}
			if m.Err() != nil {
				t.Errorf("Err() = %v", m.Err())
			}
			if m.Page().Page.Count != tt.wantCount {
				t.Errorf("count = %d, want %d", m.Page().Page.Count, tt.wantCount)
			}
		})
	}
}

func TestBrowseModel_FilterBarWithoutPage(t *testing.T) {
	m := newTestModel(t, url.Values{"page": {"99"}})
	run(t, m, m.Init())

	press(t, m, "/")
	press(t, m, "2")

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "/ 2") {
		t.Errorf("filter bar not shown:\n%s", view)
	}
	if !strings.Contains(view, "That page contains no results") {
		t.Errorf("load error not shown:\n%s", view)
	}
}

func TestBrowseModel_RefreshWithoutPage(t *testing.T) {
	m := newTestModel(t, url.Values{"page": {"99"}})
	run(t, m, m.Init())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("refresh should reload the requested page")
	}
	msg, ok := cmd().(pageLoadedMsg)
	if !ok {
		t.Fatalf("unexpected message %T", msg)
	}
	if got := msg.values.Get("page"); got != "99" {
		t.Errorf("reloaded page = %q, want 99", got)
	}
	m.Update(msg)
	if !errors.Is(m.Err(), paginate.ErrEmptyPage) {
		t.Errorf("Err() = %v, want ErrEmptyPage", m.Err())
	}
}

func TestBrowseModel_WindowSizeAndQuit(t *testing.T) {
	m := newTestModel(t, nil)
	run(t, m, m.Init())

	m.Update(tea.WindowSizeMsg{Width: 60, Height: 40})
	if m.width != 60 || m.height != 40 {
		t.Errorf("size = %dx%d", m.width, m.height)
	}
	if !strings.Contains(ansi.Strip(m.View()), "Terminal too narrow") {
		t.Error("expected size warning")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBrowseModel_Help(t *testing.T) {
	m := newTestModel(t, nil)
	run(t, m, m.Init())

	if strings.Contains(m.View(), "last page") {
		t.Error("short help should not list last page")
	}
	press(t, m, "?")
	if !strings.Contains(m.View(), "last page") {
		t.Errorf("full help missing:\n%s", m.View())
	}
}
