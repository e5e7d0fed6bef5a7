package views

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gigtune/gigtune/internal/tui/ui"
	"github.com/rivo/tview"
)

// formatTimestamp shows the clock for today and the date otherwise.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.Local()
	now = now.Local()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

func newTable(theme *ui.Theme, title string) *tview.Table {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(title)
	table.SetTitleColor(theme.TitleColor)
	return table
}

type column struct {
	text string
	exp  int
}

func setHeader(table *tview.Table, theme *ui.Theme, cols []column) {
	for i, c := range cols {
		table.SetCell(0, i, tview.NewTableCell(c.text).
			SetSelectable(false).
			SetTextColor(theme.TableHeaderFg).
			SetBackgroundColor(theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(c.exp))
	}
}

func cell(theme *ui.Theme, text string) *tview.TableCell {
	return tview.NewTableCell(" " + tview.Escape(sanitizeForTerminal(text))).
		SetTextColor(theme.FgColor)
}

// selectedIndex maps the table cursor to a data index, accounting for the header.
func selectedIndex(table *tview.Table, n int) (int, bool) {
	row, _ := table.GetSelection()
	idx := row - 1
	return idx, idx >= 0 && idx < n
}
