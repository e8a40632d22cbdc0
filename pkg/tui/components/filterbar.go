package components

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/andri/pocs/pkg/filters"
	"github.com/andri/pocs/pkg/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FilterBar is a one-line input for release date filters such as
// "month=6 year=2021" or "2021-06".
type FilterBar struct {
	// query is the current filter text
	query []rune

	// cursorPos is the cursor position in the query
	cursorPos int

	// active indicates if the filter bar is accepting input
	active bool

	// applied indicates a filter has been applied (even if not active)
	applied bool
}

// NewFilterBar creates a new filter bar
func NewFilterBar() *FilterBar {
	return &FilterBar{}
}

// FilterAppliedMsg is sent when filter is applied (Enter pressed)
type FilterAppliedMsg struct {
	Query string
}

// FilterClearedMsg is sent when filter is cleared (Esc pressed)
type FilterClearedMsg struct{}

// Update handles key events while the bar is active
func (f *FilterBar) Update(msg tea.Msg) tea.Cmd {
	if !f.active {
		return nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		return f.handleKey(msg)
	}
	return nil
}

// handleKey processes key events when filter is active
func (f *FilterBar) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type { //nolint:exhaustive // Only handling specific filter-mode keys
	case tea.KeyEsc:
		f.Clear()
		f.active = false
		return func() tea.Msg { return FilterClearedMsg{} }

	case tea.KeyEnter:
		f.active = false
		f.applied = len(f.query) > 0
		query := string(f.query)
		return func() tea.Msg { return FilterAppliedMsg{Query: query} }

	case tea.KeyBackspace:
		if f.cursorPos > 0 {
			f.query = append(f.query[:f.cursorPos-1], f.query[f.cursorPos:]...)
			f.cursorPos--
		}

	case tea.KeyDelete:
		if f.cursorPos < len(f.query) {
			f.query = append(f.query[:f.cursorPos], f.query[f.cursorPos+1:]...)
		}

	case tea.KeyLeft:
		if f.cursorPos > 0 {
			f.cursorPos--
		}

	case tea.KeyRight:
		if f.cursorPos < len(f.query) {
			f.cursorPos++
		}

	case tea.KeyHome, tea.KeyCtrlA:
		f.cursorPos = 0

	case tea.KeyEnd, tea.KeyCtrlE:
		f.cursorPos = len(f.query)

	case tea.KeyCtrlU:
		f.query = nil
		f.cursorPos = 0

	case tea.KeyCtrlW:
		// Delete word before cursor
		i := f.cursorPos
		for i > 0 && f.query[i-1] == ' ' {
			i--
		}
		for i > 0 && f.query[i-1] != ' ' {
			i--
		}
		f.query = append(f.query[:i], f.query[f.cursorPos:]...)
		f.cursorPos = i

	case tea.KeyRunes:
		f.insert(msg.Runes)

	case tea.KeySpace:
		f.insert([]rune{' '})
	}

	return nil
}

func (f *FilterBar) insert(chars []rune) {
	rest := append([]rune(nil), f.query[f.cursorPos:]...)
	f.query = append(append(f.query[:f.cursorPos], chars...), rest...)
	f.cursorPos += len(chars)
}

// View renders the active input bar, or nothing when inactive
func (f *FilterBar) View() string {
	if !f.active {
		return ""
	}

	promptStyle := lipgloss.NewStyle().
		Foreground(styles.ColorPrimary).
		Bold(true)

	inputStyle := lipgloss.NewStyle().
		Foreground(styles.ColorHighlight)

	input := string(f.query[:f.cursorPos]) + "█" + string(f.query[f.cursorPos:])

	return promptStyle.Render("/") + inputStyle.Render(" "+input)
}

// ViewStatus renders the status when filter is applied but not active
func (f *FilterBar) ViewStatus() string {
	if !f.HasFilter() {
		return ""
	}
	return styles.StyleStatus.Render("Filter: \"" + string(f.query) + "\"")
}

// Activate enables filter input mode
func (f *FilterBar) Activate() {
	f.active = true
	f.cursorPos = len(f.query)
}

// IsActive returns whether the filter bar is accepting input
func (f *FilterBar) IsActive() bool {
	return f.active
}

// Query returns the current filter query
func (f *FilterBar) Query() string {
	return string(f.query)
}

// SetQuery sets the filter query
func (f *FilterBar) SetQuery(query string) {
	f.query = []rune(query)
	f.cursorPos = len(f.query)
	f.applied = query != ""
}

// Clear clears the filter
func (f *FilterBar) Clear() {
	f.query = nil
	f.cursorPos = 0
	f.applied = false
}

// HasFilter returns true if a filter is applied
func (f *FilterBar) HasFilter() bool {
	return f.applied && len(f.query) > 0
}

var yearMonth = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)

// ParseQuery turns filter bar text into product filter parameters.
// Values are passed through unchecked so that ProductFilter reports bad
// numbers the same way the HTTP list does.
func ParseQuery(query string) (url.Values, error) {
	values := url.Values{}
	for _, tok := range strings.Fields(query) {
		if m := yearMonth.FindStringSubmatch(tok); m != nil {
			values.Set(filters.ParamYear, m[1])
			values.Set(filters.ParamMonth, m[2])
			continue
		}

		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			k, v, ok = strings.Cut(tok, ":")
		}
		if !ok {
			return nil, fmt.Errorf("cannot parse %q: use month=N, year=N or YYYY-MM", tok)
		}
		switch strings.ToLower(k) {
		case "month", filters.ParamMonth:
			values.Set(filters.ParamMonth, v)
		case "year", filters.ParamYear:
			values.Set(filters.ParamYear, v)
		default:
			return nil, fmt.Errorf("unknown filter %q: use month or year", k)
		}
	}
	return values, nil
}
