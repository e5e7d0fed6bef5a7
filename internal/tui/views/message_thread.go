package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gigtune/gigtune/internal/tui/model"
	"github.com/gigtune/gigtune/internal/tui/ui"
	"github.com/rivo/tview"
)

// MessageThread displays messages and a composer for a single conversation.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	composer *tview.InputField
	peer     string
	onSend   func(text string)
	now      func() time.Time
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
		now:      time.Now,
	}

	// The composer is cleared only once the send is accepted; the message
	// itself shows up when the backend broadcasts it back.
	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			mt.submit()
		}
	})

	return mt
}

func (mt *MessageThread) submit() {
	if mt.onSend == nil {
		return
	}
	if text := mt.composer.GetText(); text != "" {
		mt.onSend(text)
	}
}

// Name implements Component.
func (mt *MessageThread) Name() string {
	if mt.peer != "" {
		return mt.peer
	}
	return "Messages"
}

// Hints implements Component.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnSend sets the callback when a message is submitted.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// ClearComposer empties the input after a successful send.
func (mt *MessageThread) ClearComposer() {
	mt.composer.SetText("")
}

// Update refreshes the thread. lines are oldest first.
func (mt *MessageThread) Update(peer string, lines []model.ThreadLine) {
	mt.peer = peer
	mt.messages.SetTitle(fmt.Sprintf(" %s ", tview.Escape(peer)))
	mt.messages.Clear()

	now := mt.now()
	for _, l := range lines {
		color := ui.ColorTag(mt.theme.TitleColor)
		if l.FromMe {
			color = ui.ColorTag(mt.theme.MenuKeyColor)
		}
		_, _ = fmt.Fprintf(mt.messages, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n",
			color, tview.Escape(sanitizeForTerminal(l.Sender)),
			formatTimestamp(l.At, now),
			tview.Escape(sanitizeForTerminal(l.Text)))
	}
	if len(lines) == 0 {
		_, _ = fmt.Fprintf(mt.messages, "[%s]Say hi to %s.[-]", ui.ColorTag(mt.theme.MutedColor), tview.Escape(peer))
	}

	mt.messages.ScrollToEnd()
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}
