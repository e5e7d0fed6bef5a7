package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// PromptMode selects what the input bar is collecting.
type PromptMode int

const (
	PromptCommand PromptMode = iota
	PromptSearch
)

const historySize = 50

type promptStyle struct {
	label       string
	title       string
	placeholder string
}

var promptStyles = map[PromptMode]promptStyle{
	PromptCommand: {":", " Command ", "follow, chat, review <1-5> <text>, react <item> <emoji>, help"},
	PromptSearch:  {"/", " Search musicians ", "name, instrument or location"},
}

// history is a bounded list of submitted entries with a recall cursor.
// pos == len(entries) means the cursor is past the newest entry.
type history struct {
	entries []string
	pos     int
}

func (h *history) push(s string) {
	if s != "" && (len(h.entries) == 0 || h.entries[len(h.entries)-1] != s) {
		h.entries = append(h.entries, s)
		if len(h.entries) > historySize {
			h.entries = h.entries[len(h.entries)-historySize:]
		}
	}
	h.pos = len(h.entries)
}

func (h *history) older() (string, bool) {
	if h.pos == 0 {
		return "", false
	}
	h.pos--
	return h.entries[h.pos], true
}

func (h *history) newer() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return "", true
	}
	return h.entries[h.pos], true
}

// Prompt is the command and musician search bar. Search edits are reported
// as they are typed; Escape hands back the text the prompt opened with so
// the caller can restore it.
type Prompt struct {
	*tview.InputField
	mode    PromptMode
	active  bool
	initial string
	past    map[PromptMode]*history

	onSubmit func(mode PromptMode, text string)
	onChange func(mode PromptMode, text string)
	onCancel func(mode PromptMode, initial string)
}

func NewPrompt(theme *Theme) *Prompt {
	p := &Prompt{
		InputField: tview.NewInputField(),
		past: map[PromptMode]*history{
			PromptCommand: {},
			PromptSearch:  {},
		},
	}
	p.SetBorder(true).
		SetBorderColor(theme.PromptBorderColor).
		SetBackgroundColor(theme.BgColor)
	p.SetFieldBackgroundColor(theme.BgColor).
		SetFieldTextColor(theme.FgColor).
		SetLabelColor(theme.MenuKeyColor).
		SetPlaceholderTextColor(theme.MutedColor)

	p.SetChangedFunc(func(text string) {
		if p.active && p.onChange != nil {
			p.onChange(p.mode, text)
		}
	})
	p.SetInputCapture(func(evt *tcell.EventKey) *tcell.EventKey {
		switch evt.Key() {
		case tcell.KeyUp:
			p.Recall(-1)
			return nil
		case tcell.KeyDown:
			p.Recall(1)
			return nil
		}
		return evt
	})
	p.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			p.Submit()
		case tcell.KeyEscape:
			p.Cancel()
		}
	})
	return p
}

func (p *Prompt) SetOnSubmit(fn func(mode PromptMode, text string)) {
	p.onSubmit = fn
}

// SetOnChange is called on every edit while the prompt is active.
func (p *Prompt) SetOnChange(fn func(mode PromptMode, text string)) {
	p.onChange = fn
}

func (p *Prompt) SetOnCancel(fn func(mode PromptMode, initial string)) {
	p.onCancel = fn
}

// Activate opens the prompt in mode with text already entered.
func (p *Prompt) Activate(mode PromptMode, text string) {
	style := promptStyles[mode]
	p.active = false
	p.mode = mode
	p.initial = text
	p.past[mode].pos = len(p.past[mode].entries)
	p.SetLabel(style.label)
	p.SetTitle(style.title)
	p.SetPlaceholder(style.placeholder)
	p.SetText(text)
	p.active = true
}

// Deactivate clears the field without reporting the edit.
func (p *Prompt) Deactivate() {
	p.active = false
	p.SetText("")
}

func (p *Prompt) Active() bool {
	return p.active
}

func (p *Prompt) Mode() PromptMode {
	return p.mode
}

// Submit records the entry in the mode's history and reports it. Empty
// commands are dropped; an empty search clears the query.
func (p *Prompt) Submit() {
	if !p.active {
		return
	}
	mode, text := p.mode, p.GetText()
	p.past[mode].push(text)
	p.Deactivate()
	if p.onSubmit != nil && (text != "" || mode == PromptSearch) {
		p.onSubmit(mode, text)
	}
}

func (p *Prompt) Cancel() {
	if !p.active {
		return
	}
	mode, initial := p.mode, p.initial
	p.Deactivate()
	if p.onCancel != nil {
		p.onCancel(mode, initial)
	}
}

// Recall moves through the current mode's history: negative steps go to
// older entries, positive to newer. Stepping past the newest entry empties
// the field.
func (p *Prompt) Recall(step int) {
	if !p.active {
		return
	}
	h := p.past[p.mode]
	move := h.newer
	if step < 0 {
		move = h.older
	}
	if text, ok := move(); ok {
		p.SetText(text)
	}
}
