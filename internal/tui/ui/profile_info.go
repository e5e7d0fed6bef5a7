package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// ProfileData is what the header shows about the logged-in musician.
type ProfileData struct {
	Profile             string
	Name                string
	Realtime            string
	Load                string
	UnreadMessages      int
	UnreadNotifications int
}

// ProfileInfo displays session metadata in the header.
type ProfileInfo struct {
	*tview.TextView
	theme *Theme
}

// NewProfileInfo creates a new profile info panel.
func NewProfileInfo(theme *Theme) *ProfileInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ProfileInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the profile info. A nil data clears the panel.
func (pi *ProfileInfo) Update(data *ProfileData) {
	pi.Clear()
	if data == nil {
		return
	}

	fg := ColorTag(pi.theme.FgColor)
	ct := ColorTag(pi.theme.CounterColor)

	name := data.Name
	if name == "" {
		name = "-"
	}
	unread := func(n int) string {
		if n == 0 {
			return fmt.Sprintf("[%s]0[-]", ct)
		}
		return fmt.Sprintf("[%s::b]%d[-:-:-]", ColorTag(pi.theme.UnreadColor), n)
	}

	text := fmt.Sprintf(
		"[%s::b]Profile:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Musician:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Data:[-:-:-]     [%s]%s[-]\n"+
			"[%s::b]Live:[-:-:-]     [%s]%s[-]\n"+
			"[%s::b]Unread:[-:-:-]   %s msgs, %s alerts",
		fg, ct, tview.Escape(data.Profile),
		fg, ct, tview.Escape(name),
		fg, ct, data.Load,
		fg, ct, data.Realtime,
		fg, unread(data.UnreadMessages), unread(data.UnreadNotifications),
	)

	_, _ = fmt.Fprint(pi, text)
}
