package views

import (
	"fmt"

	"github.com/gigtune/gigtune/internal/tui/model"
	"github.com/gigtune/gigtune/internal/tui/ui"
	"github.com/rivo/tview"
)

// MusicianList is the musician directory table.
type MusicianList struct {
	*tview.Table
	theme *ui.Theme
	rows  []model.MusicianRow
}

func NewMusicianList(theme *ui.Theme) *MusicianList {
	return &MusicianList{
		Table: newTable(theme, " Musicians "),
		theme: theme,
	}
}

// Name implements Component.
func (ml *MusicianList) Name() string { return "Musicians" }

// Hints implements Component.
func (ml *MusicianList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Profile"},
		{Key: "/", Description: "Search"},
		{Key: "f", Description: "Follow"},
		{Key: "c", Description: "Chat"},
	}
}

// Update re-renders the table. filter describes the active filters, if any.
func (ml *MusicianList) Update(rows []model.MusicianRow, filter string) {
	ml.rows = rows
	ml.Clear()

	setHeader(ml.Table, ml.theme, []column{
		{" NAME", 2},
		{" INSTRUMENT", 1},
		{" GENRES", 2},
		{" LOCATION", 1},
		{" LEVEL", 1},
		{" RATING", 0},
		{" ", 0},
	})

	for i, r := range rows {
		row := i + 1
		mark := ""
		if r.Following {
			mark = "★"
		}
		ml.SetCell(row, 0, cell(ml.theme, r.Name).SetExpansion(2))
		ml.SetCell(row, 1, cell(ml.theme, r.Instrument).SetExpansion(1))
		ml.SetCell(row, 2, cell(ml.theme, r.Genres).SetExpansion(2))
		ml.SetCell(row, 3, cell(ml.theme, r.Location).SetExpansion(1))
		ml.SetCell(row, 4, cell(ml.theme, r.Level).SetExpansion(1))
		ml.SetCell(row, 5, cell(ml.theme, r.Rating).SetAlign(tview.AlignRight))
		ml.SetCell(row, 6, cell(ml.theme, mark).SetTextColor(ml.theme.UnreadColor))
	}

	if filter != "" {
		ml.SetTitle(fmt.Sprintf(" Musicians (%d) %s ", len(rows), tview.Escape(filter)))
	} else {
		ml.SetTitle(fmt.Sprintf(" Musicians (%d) ", len(rows)))
	}
}

// SelectedMusician returns the id under the cursor, or 0.
func (ml *MusicianList) SelectedMusician() int {
	if i, ok := selectedIndex(ml.Table, len(ml.rows)); ok {
		return ml.rows[i].ID
	}
	return 0
}
