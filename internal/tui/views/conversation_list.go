package views

import (
	"fmt"
	"time"

	"github.com/gigtune/gigtune/internal/tui/model"
	"github.com/gigtune/gigtune/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationList is the chat list, most recent conversation first.
type ConversationList struct {
	*tview.Table
	theme *ui.Theme
	rows  []model.ConversationRow
	now   func() time.Time
}

// NewConversationList creates a new conversation list table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	return &ConversationList{
		Table: newTable(theme, " Conversations "),
		theme: theme,
		now:   time.Now,
	}
}

// Name implements Component.
func (cl *ConversationList) Name() string { return "Conversations" }

// Hints implements Component.
func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
	}
}

// Update refreshes the chat list with new data.
func (cl *ConversationList) Update(rows []model.ConversationRow) {
	cl.rows = rows
	cl.Clear()

	setHeader(cl.Table, cl.theme, []column{
		{" WITH", 1},
		{" LAST MESSAGE", 3},
		{" TIME", 0},
	})

	unread := 0
	for i, r := range rows {
		row := i + 1
		name := cell(cl.theme, r.Peer).SetExpansion(1)
		if r.Unread {
			unread++
			name.SetText(" ● " + tview.Escape(sanitizeForTerminal(r.Peer))).
				SetTextColor(cl.theme.UnreadColor)
		}
		preview := r.Preview
		if preview == "" {
			preview = "no messages yet"
		}
		cl.SetCell(row, 0, name)
		cl.SetCell(row, 1, cell(cl.theme, preview).SetExpansion(3).SetMaxWidth(60))
		cl.SetCell(row, 2, cell(cl.theme, formatTimestamp(r.At, cl.now())).SetAlign(tview.AlignRight))
	}

	cl.SetTitle(fmt.Sprintf(" Conversations (%d, %d unread) ", len(rows), unread))
}

// SelectedConversation returns the id under the cursor, or empty.
func (cl *ConversationList) SelectedConversation() string {
	if i, ok := selectedIndex(cl.Table, len(cl.rows)); ok {
		return cl.rows[i].ID
	}
	return ""
}
