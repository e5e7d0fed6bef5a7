package views

import (
	"fmt"
	"time"

	domain "github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/tui/ui"
	"github.com/rivo/tview"
)

// NotificationList shows notifications with unread ones highlighted.
type NotificationList struct {
	*tview.Table
	theme         *ui.Theme
	notifications []domain.Notification
	now           func() time.Time
}

func NewNotificationList(theme *ui.Theme) *NotificationList {
	return &NotificationList{
		Table: newTable(theme, " Notifications "),
		theme: theme,
		now:   time.Now,
	}
}

// Name implements Component.
func (nl *NotificationList) Name() string { return "Notifications" }

// Hints implements Component.
func (nl *NotificationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Mark read"},
		{Key: "a", Description: "Mark all read"},
	}
}

func (nl *NotificationList) Update(list []domain.Notification, unread int) {
	nl.notifications = list
	nl.Clear()

	setHeader(nl.Table, nl.theme, []column{
		{" ", 0},
		{" TYPE", 1},
		{" TITLE", 2},
		{" SUMMARY", 3},
		{" DATE", 0},
	})

	now := nl.now()
	for i, n := range list {
		row := i + 1
		mark := cell(nl.theme, "")
		title := cell(nl.theme, n.Title).SetExpansion(2)
		if !n.Read {
			mark.SetText(" ●").SetTextColor(nl.theme.UnreadColor)
			title.SetTextColor(nl.theme.UnreadColor)
		}
		nl.SetCell(row, 0, mark)
		nl.SetCell(row, 1, cell(nl.theme, string(n.Type)).SetExpansion(1))
		nl.SetCell(row, 2, title)
		nl.SetCell(row, 3, cell(nl.theme, n.Summary).SetExpansion(3).SetMaxWidth(60))
		nl.SetCell(row, 4, cell(nl.theme, formatTimestamp(n.Date, now)).SetAlign(tview.AlignRight))
	}
	nl.SetTitle(fmt.Sprintf(" Notifications (%d, %d unread) ", len(list), unread))
}

// SelectedNotification returns the id under the cursor and whether it is unread.
func (nl *NotificationList) SelectedNotification() (int, bool) {
	if i, ok := selectedIndex(nl.Table, len(nl.notifications)); ok {
		n := nl.notifications[i]
		return n.ID, !n.Read
	}
	return 0, false
}
