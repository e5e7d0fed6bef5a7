package views

import (
	"fmt"
	"strings"

	"github.com/gigtune/gigtune/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	_, _ = fmt.Fprint(hv, hv.render())
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Global", [][2]string{
		{"1 2 3 4", "Musicians, conversations, gigs, notifications"},
		{"/", "Search musicians by name"},
		{":", "Command mode"},
		{"r", "Retry loading data"},
		{"Esc", "Back"},
		{"q", "Quit"},
	}},
	{"Musicians", [][2]string{
		{"Enter", "Open profile"},
		{"f", "Follow or unfollow"},
		{"c", "Chat with musician"},
	}},
	{"Conversations", [][2]string{
		{"Enter", "Open conversation"},
		{"i", "Focus composer"},
	}},
	{"Notifications", [][2]string{
		{"Enter", "Mark as read"},
		{"a", "Mark all as read"},
	}},
	{"Commands", [][2]string{
		{":inst <name>", "Toggle instrument filter"},
		{":genre <name>", "Toggle genre filter"},
		{":clear", "Clear search and filters"},
		{":review <1-5> <text>", "Review the open profile"},
		{":react <item> <emoji>", "React to a portfolio item"},
		{":comment <item> <text>", "Comment on a portfolio item"},
		{":gig <instrument> <title>", "Post a gig"},
		{":logout", "Log out"},
		{":quit", "Quit"},
	}},
}

func (hv *HelpView) render() string {
	kc := ui.ColorTag(hv.theme.MenuKeyColor)
	var b strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, k := range s.keys {
			fmt.Fprintf(&b, "  [%s]%-26s[-:-:-] %s\n", kc, tview.Escape(k[0]), k[1])
		}
	}
	return b.String()
}
