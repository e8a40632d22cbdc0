// Package models provides Bubble Tea models for the TUI interface.
package models

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/andri/pocs/pkg/filters"
	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/paginate"
	"github.com/andri/pocs/pkg/store"
	"github.com/andri/pocs/pkg/tui/components"
	"github.com/andri/pocs/pkg/tui/format"
	"github.com/andri/pocs/pkg/tui/keys"
	"github.com/andri/pocs/pkg/tui/styles"
	"github.com/andri/pocs/pkg/tui/terminal"
	"github.com/andri/pocs/pkg/views"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BrowseModelConfig holds configuration for the product browser
type BrowseModelConfig struct {
	// Context bounds every store query
	Context context.Context

	// Store is the database to browse
	Store *store.Store

	// PerPage is the page size, views.DefaultProductsPerPage when zero
	PerPage int

	// Values holds the initial filter and page parameters
	Values url.Values

	// Capability selects icons; detected from the environment when nil
	Capability *terminal.Capability
}

// pageLoadedMsg carries the result of a page load
type pageLoadedMsg struct {
	values url.Values
	page   *views.ProductListPage
	err    error
}

// BrowseModel pages through products the way the product list view does,
// with the filter typed into a filter bar.
type BrowseModel struct {
	ctx    context.Context
	list   *views.ProductList
	values url.Values
	page   *views.ProductListPage
	err    error

	loading  bool
	showHelp bool
	width    int
	height   int

	table     *components.Table
	filterBar *components.FilterBar
	keys      keys.BrowseKeyMap
	help      help.Model
	icons     terminal.Icons
}

// NewBrowseModel creates a browser that loads its first page on Init
func NewBrowseModel(cfg BrowseModelConfig) *BrowseModel {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cap := terminal.DetectCapabilities()
	if cfg.Capability != nil {
		cap = *cfg.Capability
	}

	values := url.Values{}
	for k, v := range cfg.Values {
		values[k] = append([]string(nil), v...)
	}

	table := components.NewTable([]components.TableColumn{
		{Title: "ID", Width: 5, Align: lipgloss.Right},
		{Title: "NAME", Width: 30},
		{Title: "RELEASE DATE", Width: 12, Style: lipgloss.NewStyle().Foreground(styles.ColorDate)},
	})
	table.Empty = "No products."

	filterBar := components.NewFilterBar()
	filterBar.SetQuery(queryFromValues(values))

	return &BrowseModel{
		ctx:       ctx,
		list:      &views.ProductList{Store: cfg.Store, PerPage: cfg.PerPage},
		values:    values,
		loading:   true,
		table:     table,
		filterBar: filterBar,
		keys:      keys.DefaultBrowseKeyMap(),
		help:      help.New(),
		icons:     terminal.GetIcons(cap),
	}
}

// queryFromValues renders filter parameters back into filter bar text
func queryFromValues(values url.Values) string {
	var parts []string
	if v := values.Get(filters.ParamMonth); v != "" {
		parts = append(parts, "month="+v)
	}
	if v := values.Get(filters.ParamYear); v != "" {
		parts = append(parts, "year="+v)
	}
	return strings.Join(parts, " ")
}

// Init implements tea.Model
func (m *BrowseModel) Init() tea.Cmd {
	return m.load(m.values)
}

// load fetches the page described by values
func (m *BrowseModel) load(values url.Values) tea.Cmd {
	m.loading = true
	ctx, list := m.ctx, m.list
	return func() tea.Msg {
		page, err := list.Load(ctx, values)
		return pageLoadedMsg{values: values, page: page, err: err}
	}
}

// gotoPage loads page n (or "last") with the current filter
func (m *BrowseModel) gotoPage(n string) tea.Cmd {
	values := url.Values{}
	for _, k := range []string{filters.ParamMonth, filters.ParamYear} {
		if v, ok := m.values[k]; ok {
			values[k] = v
		}
	}
	values.Set("page", n)
	return m.load(values)
}

// Update implements tea.Model
func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			// keep showing the previous page
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.values = msg.values
		m.setPage(msg.page)
		return m, nil

	case components.FilterAppliedMsg:
		values, err := components.ParseQuery(msg.Query)
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, m.load(values)

	case components.FilterClearedMsg:
		return m, m.load(url.Values{})

	case tea.KeyMsg:
		if m.filterBar.IsActive() {
			return m, m.filterBar.Update(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Up):
		m.table.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.table.MoveDown()
	case m.loading:
		// paging and filtering wait for the current load
	case key.Matches(msg, m.keys.FirstPage):
		return m, m.gotoPage("1")
	case key.Matches(msg, m.keys.LastPage):
		return m, m.gotoPage(paginate.LastPage)
	case key.Matches(msg, m.keys.Filter):
		m.filterBar.Activate()
	case key.Matches(msg, m.keys.ClearFilter):
		m.filterBar.Clear()
		return m, m.load(url.Values{})
	case key.Matches(msg, m.keys.Refresh):
		if m.page == nil {
			return m, m.load(m.values)
		}
		return m, m.gotoPage(strconv.Itoa(m.page.Page.Number))
	case m.page == nil:
		// next and previous are relative to a loaded page
	case key.Matches(msg, m.keys.NextPage):
		return m, m.gotoPage(strconv.Itoa(m.page.Page.NextPageNumber))
	case key.Matches(msg, m.keys.PrevPage):
		return m, m.gotoPage(strconv.Itoa(m.page.Page.PreviousPageNumber))
	}
	return m, nil
}

func (m *BrowseModel) setPage(page *views.ProductListPage) {
	m.page = page

	rows := make([][]string, len(page.Products))
	for i, p := range page.Products {
		rows[i] = []string{strconv.FormatInt(p.ID, 10), p.Name, p.ReleaseDate.String()}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)

	filtered := len(page.Filter.Values()) > 0
	m.filterBar.SetQuery(queryFromValues(m.values))
	m.keys.SetContext(page.Page.HasPrevious, page.Page.HasNext, filtered)
}

// View implements tea.Model
func (m *BrowseModel) View() string {
	var b strings.Builder

	title := "Products"
	if status := m.filterBar.ViewStatus(); status != "" {
		title = styles.StyleHeading.Render(title) + "  " + status
	} else {
		title = styles.StyleHeading.Render(title)
	}
	b.WriteString(title + "\n")

	if m.page == nil {
		if m.err != nil {
			b.WriteString(m.renderError() + "\n")
		} else {
			b.WriteString(styles.StyleSubtle.Render("Loading...") + "\n")
		}
	} else {
		b.WriteString(m.viewPage())
		if m.err != nil {
			b.WriteString(m.renderError() + "\n")
		}
	}

	if bar := m.filterBar.View(); bar != "" {
		b.WriteString(bar + "\n")
	}
	if warning := terminal.SizeWarning(m.width, m.height); warning != "" {
		b.WriteString(styles.StyleWarning.Render(m.icons.Warning+" "+warning) + "\n")
	}

	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return b.String()
}

// viewPage renders filter errors, the product table, the pager and the
// selected product.
func (m *BrowseModel) viewPage() string {
	var b strings.Builder

	for _, f := range m.page.Filter.Fields() {
		for _, e := range f.Errors {
			b.WriteString(styles.StyleError.Render(fmt.Sprintf("%s %s: %s", m.icons.Warning, f.Label, e)) + "\n")
		}
	}

	b.WriteString(m.table.View() + "\n\n")
	b.WriteString(m.renderPager() + "\n")

	if p := m.Selected(); p != nil {
		detail := components.NewKeyValueTable()
		detail.Add("Name", p.Name)
		detail.AddStyled("Release date", p.ReleaseDate.String(), lipgloss.NewStyle().Foreground(styles.ColorDate))
		detail.Add("Description", format.Ellipsize(strings.Join(strings.Fields(p.Description), " "), max(20, m.width-20)))
		b.WriteString(styles.StyleBox.Render(detail.View()) + "\n")
	}

	return b.String()
}

func (m *BrowseModel) renderPager() string {
	pg := m.page.Page
	prev, next := " ", " "
	if pg.HasPrevious {
		prev = m.icons.Prev
	}
	if pg.HasNext {
		next = m.icons.Next
	}
	pager := fmt.Sprintf("%s Page %d of %d %s", prev, pg.Number, pg.NumPages, next)
	return styles.StylePager.Render(pager) + "  " +
		styles.StyleSubtle.Render(format.Count(pg.Count, "product", "products"))
}

func (m *BrowseModel) renderError() string {
	msg := m.err.Error()
	switch {
	case errors.Is(m.err, paginate.ErrEmptyPage):
		msg = "That page contains no results"
	case errors.Is(m.err, paginate.ErrPageNotAnInteger):
		msg = "That page number is not an integer"
	}
	return styles.StyleError.Render(m.icons.Cross + " " + msg)
}

// Page returns the page on screen, nil before the first load
func (m *BrowseModel) Page() *views.ProductListPage {
	return m.page
}

// Err returns the last load or filter error
func (m *BrowseModel) Err() error {
	return m.err
}

// Selected returns the product under the cursor
func (m *BrowseModel) Selected() *model.Product {
	if m.page == nil || len(m.page.Products) == 0 {
		return nil
	}
	return &m.page.Products[m.table.Cursor()]
}
