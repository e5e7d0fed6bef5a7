package views

import (
	"fmt"
	"slices"
	"strings"
	"time"

	domain "github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/tui/model"
	"github.com/gigtune/gigtune/internal/tui/ui"
	"github.com/rivo/tview"
)

// MusicianDetail shows one musician's profile, reviews and portfolio.
type MusicianDetail struct {
	*tview.TextView
	theme *ui.Theme
	name  string
}

func NewMusicianDetail(theme *ui.Theme) *MusicianDetail {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitleColor(theme.TitleColor)

	return &MusicianDetail{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (md *MusicianDetail) Name() string {
	if md.name != "" {
		return md.name
	}
	return "Profile"
}

// Hints implements Component.
func (md *MusicianDetail) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "f", Description: "Follow"},
		{Key: "c", Description: "Chat"},
		{Key: ":review", Description: "Review"},
		{Key: ":react", Description: "React"},
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders m as seen by the musician me.
func (md *MusicianDetail) Update(m domain.Musician, me domain.Musician) {
	md.Clear()
	md.name = m.Name
	md.SetTitle(fmt.Sprintf(" %s ", tview.Escape(m.Name)))
	_, _ = fmt.Fprint(md, md.render(m, me))
	md.ScrollToBeginning()
}

func (md *MusicianDetail) render(m domain.Musician, me domain.Musician) string {
	fg := ui.ColorTag(md.theme.FgColor)
	ct := ui.ColorTag(md.theme.CounterColor)
	muted := ui.ColorTag(md.theme.MutedColor)
	esc := func(s string) string { return tview.Escape(sanitizeForTerminal(s)) }

	var b strings.Builder
	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, " [%s::b]%-11s[-:-:-] [%s]%s[-]\n", fg, label+":", ct, esc(value))
	}

	genres := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		genres[i] = string(g)
	}
	relation := ""
	switch {
	case m.ID == me.ID:
		relation = "this is you"
	case me.IsFollowing(m.ID) && m.IsFollowing(me.ID):
		relation = "you follow each other"
	case me.IsFollowing(m.ID):
		relation = "you follow them"
	case m.IsFollowing(me.ID):
		relation = "follows you"
	}

	b.WriteString("\n")
	field("Instrument", string(m.Instrument))
	field("Genres", strings.Join(genres, ", "))
	field("Location", m.Location)
	field("Level", string(m.ExperienceLevel))
	field("Rating", model.AverageRating(m.Reviews))
	field("Followers", fmt.Sprintf("%d followers, following %d", len(m.Followers), len(m.Following)))
	field("Relation", relation)
	if m.Bio != "" {
		fmt.Fprintf(&b, "\n %s\n", esc(m.Bio))
	}

	fmt.Fprintf(&b, "\n [%s::b]Portfolio[-:-:-]\n", fg)
	if len(m.Portfolio) == 0 {
		fmt.Fprintf(&b, " [%s]nothing yet[-]\n", muted)
	}
	for _, p := range m.Portfolio {
		fmt.Fprintf(&b, " [%s]#%d[-] %s [%s](%s)[-]\n", ct, p.ID, esc(p.Title), muted, p.Type)
		if r := reactionSummary(p.Reactions); r != "" {
			fmt.Fprintf(&b, "     %s\n", esc(r))
		}
		for _, c := range p.Comments {
			fmt.Fprintf(&b, "     [%s]%s:[-] %s\n", muted, esc(c.AuthorName), esc(c.Text))
		}
	}

	fmt.Fprintf(&b, "\n [%s::b]Reviews[-:-:-]\n", fg)
	if len(m.Reviews) == 0 {
		fmt.Fprintf(&b, " [%s]no reviews yet[-]\n", muted)
	}
	for _, r := range m.Reviews {
		fmt.Fprintf(&b, " [%s]%s[-] %s [%s]%s[-]\n     %s\n",
			ct, strings.Repeat("★", r.Rating), esc(r.ReviewerName),
			muted, r.Date.Local().Format(time.DateOnly), esc(r.Comment))
	}
	return b.String()
}

// reactionSummary renders "🔥 2  👏 1" in a stable order.
func reactionSummary(reactions map[string][]int) string {
	emojis := make([]string, 0, len(reactions))
	for e, users := range reactions {
		if len(users) > 0 {
			emojis = append(emojis, e)
		}
	}
	slices.Sort(emojis)
	parts := make([]string, len(emojis))
	for i, e := range emojis {
		parts[i] = fmt.Sprintf("%s %d", e, len(reactions[e]))
	}
	return strings.Join(parts, "  ")
}
