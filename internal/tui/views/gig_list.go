package views

import (
	"fmt"
	"time"

	domain "github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/tui/ui"
	"github.com/rivo/tview"
)

// GigList is the gig board, newest listing first.
type GigList struct {
	*tview.Table
	theme *ui.Theme
	gigs  []domain.Gig
	now   func() time.Time
}

func NewGigList(theme *ui.Theme) *GigList {
	return &GigList{
		Table: newTable(theme, " Gigs "),
		theme: theme,
		now:   time.Now,
	}
}

// Name implements Component.
func (gl *GigList) Name() string { return "Gigs" }

// Hints implements Component.
func (gl *GigList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: ":gig", Description: "Post gig"},
	}
}

func (gl *GigList) Update(gigs []domain.Gig, me int) {
	gl.gigs = gigs
	gl.Clear()

	setHeader(gl.Table, gl.theme, []column{
		{" TITLE", 2},
		{" BAND", 1},
		{" NEEDS", 1},
		{" GENRE", 1},
		{" LOCATION", 1},
		{" STATUS", 0},
		{" POSTED", 0},
	})

	now := gl.now()
	for i, g := range gigs {
		row := i + 1
		title := cell(gl.theme, g.Title).SetExpansion(2)
		if g.PostedByUserID == me {
			title.SetTextColor(gl.theme.MenuKeyColor)
		}
		status := cell(gl.theme, string(g.Status))
		if g.Status == domain.GigOpen {
			status.SetTextColor(gl.theme.UnreadColor)
		}
		gl.SetCell(row, 0, title)
		gl.SetCell(row, 1, cell(gl.theme, g.BandName).SetExpansion(1))
		gl.SetCell(row, 2, cell(gl.theme, string(g.InstrumentNeeded)).SetExpansion(1))
		gl.SetCell(row, 3, cell(gl.theme, string(g.Genre)).SetExpansion(1))
		gl.SetCell(row, 4, cell(gl.theme, g.Location).SetExpansion(1))
		gl.SetCell(row, 5, status)
		gl.SetCell(row, 6, cell(gl.theme, formatTimestamp(g.PostedDate, now)).SetAlign(tview.AlignRight))
	}
	gl.SetTitle(fmt.Sprintf(" Gigs (%d) ", len(gigs)))
}
