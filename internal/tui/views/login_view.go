package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/gigtune/gigtune/internal/tui/ui"
	"github.com/rivo/tview"
)

// LoginView asks for the email of an existing musician.
type LoginView struct {
	*tview.Flex
	theme   *ui.Theme
	email   *tview.InputField
	message *tview.TextView
	onLogin func(email string)
}

func NewLoginView(theme *ui.Theme) *LoginView {
	email := tview.NewInputField().
		SetLabel(" Email: ").
		SetFieldWidth(40)
	email.SetBackgroundColor(theme.BgColor)
	email.SetFieldBackgroundColor(theme.BgColor)
	email.SetFieldTextColor(theme.FgColor)
	email.SetLabelColor(theme.MenuKeyColor)

	message := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	message.SetBackgroundColor(theme.BgColor)

	form := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(message, 0, 1, false).
		AddItem(email, 1, 0, true)
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitle(" Log in ")
	form.SetTitleColor(theme.TitleColor)

	// Center the form.
	flex := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(form, 7, 0, true).
			AddItem(nil, 0, 1, false), 60, 0, true).
		AddItem(nil, 0, 1, false)

	lv := &LoginView{
		Flex:    flex,
		theme:   theme,
		email:   email,
		message: message,
	}

	email.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && lv.onLogin != nil {
			if text := email.GetText(); text != "" {
				lv.onLogin(text)
			}
		}
	})
	lv.ShowMessage("Enter the email you registered with.", false)
	return lv
}

// Name implements Component.
func (lv *LoginView) Name() string { return "Login" }

// Hints implements Component.
func (lv *LoginView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Log in"},
		{Key: "Ctrl-C", Description: "Quit"},
	}
}

func (lv *LoginView) SetOnLogin(fn func(email string)) {
	lv.onLogin = fn
}

// ShowMessage replaces the text above the input.
func (lv *LoginView) ShowMessage(msg string, isErr bool) {
	lv.message.Clear()
	color := ui.ColorTag(lv.theme.FgColor)
	if isErr {
		color = ui.ColorTag(lv.theme.FlashErrColor)
	}
	_, _ = fmt.Fprintf(lv.message, "\n[%s]%s[-]", color, tview.Escape(msg))
}

// Input returns the email field (for focus management).
func (lv *LoginView) Input() *tview.InputField {
	return lv.email
}

// Reset clears the field for the next login.
func (lv *LoginView) Reset() {
	lv.email.SetText("")
	lv.ShowMessage("Enter the email you registered with.", false)
}
