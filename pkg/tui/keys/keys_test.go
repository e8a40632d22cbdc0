package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func helpKeys(bindings []key.Binding) []string {
	out := make([]string, len(bindings))
	for i, b := range bindings {
		out[i] = b.Help().Desc
	}
	return out
}

func TestShortHelpFollowsContext(t *testing.T) {
	k := DefaultBrowseKeyMap()

	k.SetContext(false, true, false)
	got := helpKeys(k.ShortHelp())
	want := []string{"down", "up", "next page", "filter", "quit"}
	if len(got) != len(want) {
		t.Fatalf("ShortHelp() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ShortHelp()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	k.SetContext(true, false, true)
	got = helpKeys(k.ShortHelp())
	want = []string{"down", "up", "prev page", "filter", "clear filter", "quit"}
	if len(got) != len(want) {
		t.Fatalf("ShortHelp() = %v, want %v", got, want)
	}
	if k.LastPage.Enabled() {
		t.Error("last page should be disabled without a next page")
	}
}

func TestFullHelp(t *testing.T) {
	groups := DefaultBrowseKeyMap().FullHelp()
	if len(groups) != 4 {
		t.Fatalf("FullHelp() has %d groups, want 4", len(groups))
	}
}
