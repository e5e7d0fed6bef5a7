package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gigtune/gigtune/internal/bus"
	domain "github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/session"
	"github.com/gigtune/gigtune/internal/status"
	"github.com/gigtune/gigtune/internal/syncstore"
	"github.com/gigtune/gigtune/internal/tui/keys"
	"github.com/gigtune/gigtune/internal/tui/model"
	"github.com/gigtune/gigtune/internal/tui/ui"
	"github.com/gigtune/gigtune/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const (
	pageLogin         = "login"
	pageMusicians     = "musicians"
	pageDetail        = "detail"
	pageConversations = "conversations"
	pageThread        = "thread"
	pageGigs          = "gigs"
	pageNotifications = "notifications"
	pageHelp          = "help"
)

const promptHeight = 3

// StateReader reports the realtime connection state for the header.
type StateReader interface {
	State() status.State
}

// Options wires the TUI to a running client.
type Options struct {
	Sessions *session.Manager
	Bus      *bus.Bus
	Realtime StateReader
	Profile  string
	Email    string // log in immediately when set
	Logger   *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	root     *tview.Flex
	pages    *ui.Pages
	theme    *ui.Theme
	vm       *model.ViewModel
	bus      *bus.Bus
	realtime StateReader
	logger   *zap.Logger
	registry *keys.Registry
	profile  string
	email    string

	flash       *ui.FlashModel
	flashBar    *ui.FlashBar
	profileInfo *ui.ProfileInfo
	menu        *ui.Menu
	crumbs      *ui.Crumbs
	prompt      *ui.Prompt

	login         *views.LoginView
	musicians     *views.MusicianList
	detail        *views.MusicianDetail
	conversations *views.ConversationList
	thread        *views.MessageThread
	gigs          *views.GigList
	notifications *views.NotificationList
	help          *views.HelpView

	components map[string]ui.Component
	primitives map[string]tview.Primitive
	lastLoad   status.State

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		app:           tview.NewApplication(),
		pages:         ui.NewPages(),
		theme:         theme,
		vm:            model.NewViewModel(opts.Sessions),
		bus:           opts.Bus,
		realtime:      opts.Realtime,
		logger:        logger.Named("tui"),
		registry:      keys.NewRegistry(),
		profile:       opts.Profile,
		email:         opts.Email,
		flash:         ui.NewFlashModel(),
		flashBar:      ui.NewFlashBar(theme),
		profileInfo:   ui.NewProfileInfo(theme),
		menu:          ui.NewMenu(theme),
		crumbs:        ui.NewCrumbs(theme),
		prompt:        ui.NewPrompt(theme),
		login:         views.NewLoginView(theme),
		musicians:     views.NewMusicianList(theme),
		detail:        views.NewMusicianDetail(theme),
		conversations: views.NewConversationList(theme),
		thread:        views.NewMessageThread(theme),
		gigs:          views.NewGigList(theme),
		notifications: views.NewNotificationList(theme),
		help:          views.NewHelpView(theme),
		ctx:           ctx,
		cancel:        cancel,
	}

	a.components = map[string]ui.Component{
		pageLogin:         a.login,
		pageMusicians:     a.musicians,
		pageDetail:        a.detail,
		pageConversations: a.conversations,
		pageThread:        a.thread,
		pageGigs:          a.gigs,
		pageNotifications: a.notifications,
		pageHelp:          a.help,
	}
	a.primitives = map[string]tview.Primitive{
		pageLogin:         a.login.Input(),
		pageMusicians:     a.musicians,
		pageDetail:        a.detail,
		pageConversations: a.conversations,
		pageThread:        a.thread.Messages(),
		pageGigs:          a.gigs,
		pageNotifications: a.notifications,
		pageHelp:          a.help,
	}

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	page := func(r rune, name, desc string) {
		a.registry.AddGlobal(&keys.Action{
			Key: tcell.KeyRune, Rune: r,
			Description: desc, Visible: true,
			Handler: func() { a.switchTo(name) },
		})
	}
	page('1', pageMusicians, "Musicians")
	page('2', pageConversations, "Chats")
	page('3', pageGigs, "Gigs")
	page('4', pageNotifications, "Alerts")

	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: '/',
		Description: "Search", Visible: true,
		Handler: func() {
			q := ""
			if st := a.vm.Store(); st != nil {
				q = st.Filters().Query
			}
			a.showPrompt(ui.PromptSearch, q)
		},
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: ':',
		Description: "Command", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptCommand, "") },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'r',
		Description: "Retry", Visible: true,
		Handler: a.retry,
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: '?',
		Description: "Help", Visible: true,
		Handler: func() {
			a.pages.Push(pageHelp)
			a.focusCurrent()
		},
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'q',
		Description: "Quit", Visible: true,
		Handler: a.Stop,
	})
	a.registry.AddGlobal(&keys.Action{
		Key:     tcell.KeyEscape,
		Handler: a.back,
	})

	selected := map[string]func() int{
		pageMusicians: a.musicians.SelectedMusician,
		pageDetail:    a.vm.SelectedMusician,
	}
	for view, id := range selected {
		a.registry.AddView(view, &keys.Action{
			Key: tcell.KeyRune, Rune: 'f',
			Handler: func() { a.toggleFollow(id()) },
		})
		a.registry.AddView(view, &keys.Action{
			Key: tcell.KeyRune, Rune: 'c',
			Handler: func() { a.chatWith(id()) },
		})
	}
	a.registry.AddView(pageThread, &keys.Action{
		Key: tcell.KeyRune, Rune: 'i',
		Handler: func() { a.app.SetFocus(a.thread.Composer()) },
	})
	a.registry.AddView(pageNotifications, &keys.Action{
		Key: tcell.KeyRune, Rune: 'a',
		Handler: a.markAllRead,
	})
}

func (a *App) setupCallbacks() {
	a.login.SetOnLogin(a.doLogin)

	a.musicians.SetSelectedFunc(func(_, _ int) {
		if id := a.musicians.SelectedMusician(); id != 0 {
			a.openMusician(id)
		}
	})
	a.conversations.SetSelectedFunc(func(_, _ int) {
		if id := a.conversations.SelectedConversation(); id != "" {
			a.openConversation(id)
		}
	})
	a.notifications.SetSelectedFunc(func(_, _ int) {
		if id, unread := a.notifications.SelectedNotification(); unread {
			a.run("mark read", func(ctx context.Context, st *syncstore.Store) error {
				return st.MarkNotificationRead(ctx, id)
			})
		}
	})

	a.thread.SetOnSend(func(text string) {
		id := a.vm.ActiveConversation()
		st := a.vm.Store()
		if st == nil || id == "" {
			return
		}
		go func() {
			err := st.SendMessage(id, text)
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					a.flash.Err(fmt.Errorf("send: %w", err))
					a.updateChrome()
					return
				}
				a.thread.ClearComposer()
			})
		}()
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptSearch:
			if st := a.vm.Store(); st != nil {
				st.SetSearchQuery(text)
				a.switchTo(pageMusicians)
			}
		case ui.PromptCommand:
			a.execute(ParseCommand(text))
		}
	})
	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		if st := a.vm.Store(); st != nil && mode == ui.PromptSearch {
			st.SetSearchQuery(text)
		}
	})
	a.prompt.SetOnCancel(func(mode ui.PromptMode, initial string) {
		if st := a.vm.Store(); st != nil && mode == ui.PromptSearch {
			st.SetSearchQuery(initial)
		}
		a.hidePrompt()
	})

	a.pages.SetOnChange(func(stack []string) {
		titles := make([]string, 0, len(stack))
		for _, name := range stack {
			titles = append(titles, a.components[name].Name())
		}
		a.crumbs.Update(titles)
		a.updateMenu()
	})
}

func (a *App) setupLayout() {
	a.pages.AddPage(pageLogin, a.login, true, false)
	a.pages.AddPage(pageMusicians, a.musicians, true, false)
	a.pages.AddPage(pageDetail, a.detail, true, false)
	a.pages.AddPage(pageConversations, a.conversations, true, false)
	a.pages.AddPage(pageThread, a.thread, true, false)
	a.pages.AddPage(pageGigs, a.gigs, true, false)
	a.pages.AddPage(pageNotifications, a.notifications, true, false)
	a.pages.AddPage(pageHelp, a.help, true, false)

	header := tview.NewFlex().
		AddItem(a.profileInfo, 0, 1, false).
		AddItem(a.menu, 0, 2, false).
		AddItem(ui.NewLogo(a.theme), 28, 0, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 6, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)
	a.root.SetBackgroundColor(a.theme.BgColor)

	a.app.SetRoot(a.root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		focused := a.app.GetFocus()
		if focused == a.thread.Composer() && event.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.thread.Messages())
			return nil
		}
		// Text input widgets handle all keys themselves.
		if _, ok := focused.(*tview.InputField); ok || focused == a.prompt {
			return event
		}
		if a.pages.Current() == pageLogin {
			return event
		}
		if a.registry.HandleEvent(a.pages.Current(), event) {
			return nil
		}
		return event
	})
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	events, unsub := a.bus.Subscribe("", 64)
	defer unsub()
	go a.watch(events)

	if a.vm.Store() != nil {
		a.pages.Reset(pageMusicians)
	} else {
		a.pages.Reset(pageLogin)
		if a.email != "" {
			a.doLogin(a.email)
		}
	}
	a.focusCurrent()
	a.refresh()

	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// watch redraws on store and connection events. The ticker expires flash
// messages.
func (a *App) watch(events <-chan bus.Event) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case evt := <-events:
			a.logger.Debug("event", zap.String("kind", evt.Kind))
			a.app.QueueUpdateDraw(a.refresh)
		case <-ticker.C:
			a.app.QueueUpdateDraw(a.updateChrome)
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) refresh() {
	st := a.vm.Store()
	if st == nil {
		a.updateChrome()
		return
	}

	state, msg := st.Status()
	if state == status.Error && a.lastLoad != status.Error {
		a.flash.Warn(msg + " (r to retry)")
	}
	a.lastLoad = state

	me := st.CurrentUser()
	a.musicians.Update(a.vm.Musicians(), filterLabel(st.Filters()))
	if id := a.vm.SelectedMusician(); id != 0 {
		if m, ok := st.Musician(id); ok {
			a.detail.Update(m, me)
		}
	}
	a.conversations.Update(a.vm.Conversations())
	if peer, lines := a.vm.Thread(); peer != "" {
		a.thread.Update(peer, lines)
	}
	a.gigs.Update(st.Gigs(), st.UserID())
	a.notifications.Update(st.Notifications(), st.UnreadNotificationCount())
	a.updateChrome()
}

func (a *App) updateChrome() {
	data := &ui.ProfileData{Profile: a.profile, Realtime: string(status.Disconnected), Load: "-"}
	if a.realtime != nil {
		data.Realtime = string(a.realtime.State())
	}
	if st := a.vm.Store(); st != nil {
		state, _ := st.Status()
		data.Name = st.CurrentUser().Name
		data.Load = string(state)
		data.UnreadMessages = st.UnreadMessageCount()
		data.UnreadNotifications = st.UnreadNotificationCount()
	}
	a.profileInfo.Update(data)
	a.flashBar.Update(a.flash.Current())
}

func (a *App) updateMenu() {
	var hints []ui.MenuHint
	if c, ok := a.components[a.pages.Current()]; ok {
		hints = append(hints, c.Hints()...)
	}
	if a.pages.Current() != pageLogin {
		for _, h := range a.registry.Hints(a.pages.Current()) {
			h.Numeric = h.Key >= "1" && h.Key <= "4"
			hints = append(hints, h)
		}
	}
	a.menu.Update(hints)
}

func (a *App) focusCurrent() {
	if p, ok := a.primitives[a.pages.Current()]; ok {
		a.app.SetFocus(p)
	}
}

func (a *App) switchTo(name string) {
	if a.vm.Store() == nil {
		return
	}
	if a.pages.Depth() > 1 || a.pages.Current() != name {
		a.pages.Reset(name)
	}
	a.focusCurrent()
}

func (a *App) back() {
	if a.pages.Pop() == pageThread {
		a.vm.SetActiveConversation("")
	}
	a.focusCurrent()
}

func (a *App) showPrompt(mode ui.PromptMode, text string) {
	if a.vm.Store() == nil {
		return
	}
	a.prompt.Activate(mode, text)
	a.root.ResizeItem(a.prompt, promptHeight, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.root.ResizeItem(a.prompt, 0, 0)
	a.focusCurrent()
}

// run performs a store command off the UI goroutine and reports failures in
// the flash bar. Successful commands redraw through the bus.
func (a *App) run(label string, fn func(ctx context.Context, st *syncstore.Store) error) {
	st := a.vm.Store()
	if st == nil {
		return
	}
	go func() {
		if err := fn(a.ctx, st); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("command failed", zap.String("command", label), zap.Error(err))
			a.app.QueueUpdateDraw(func() {
				a.flash.Err(fmt.Errorf("%s: %w", label, err))
				a.updateChrome()
			})
		}
	}()
}

func (a *App) doLogin(email string) {
	a.login.ShowMessage("Logging in...", false)
	go func() {
		err := a.vm.Login(a.ctx, email)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.login.ShowMessage(loginError(err), true)
				return
			}
			a.login.Reset()
			a.lastLoad = ""
			a.pages.Reset(pageMusicians)
			a.focusCurrent()
			a.flash.Info("Welcome, " + a.vm.Store().CurrentUser().Name)
			a.refresh()
		})
	}()
}

func loginError(err error) string {
	switch {
	case errors.Is(err, session.ErrUnknownEmail):
		return "No musician is registered with that email."
	case errors.Is(err, session.ErrRosterUnavailable):
		return "Could not reach GigTune. Try again in a moment."
	case errors.Is(err, domain.ErrInvalidInput):
		return "Please enter your email."
	default:
		return err.Error()
	}
}

func (a *App) doLogout() {
	a.vm.Logout()
	a.lastLoad = ""
	a.pages.Reset(pageLogin)
	a.focusCurrent()
	a.flash.Info("Logged out")
	a.updateChrome()
}

func (a *App) retry() {
	a.run("retry", func(ctx context.Context, st *syncstore.Store) error {
		return st.Retry(ctx)
	})
}

func (a *App) openMusician(id int) {
	a.vm.SetSelectedMusician(id)
	a.pages.Push(pageDetail)
	a.refresh()
	a.focusCurrent()
}

func (a *App) openConversation(id string) {
	a.vm.SetActiveConversation(id)
	a.pages.Push(pageThread)
	a.refresh()
	a.focusCurrent()
}

func (a *App) toggleFollow(id int) {
	if id == 0 {
		return
	}
	a.run("follow", func(ctx context.Context, st *syncstore.Store) error {
		_, err := st.ToggleFollow(ctx, id)
		return err
	})
}

func (a *App) chatWith(id int) {
	st := a.vm.Store()
	if st == nil || id == 0 {
		return
	}
	go func() {
		conv, err := st.OpenConversation(a.ctx, id)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.flash.Err(fmt.Errorf("chat: %w", err))
				a.updateChrome()
				return
			}
			a.openConversation(conv.ID)
			a.app.SetFocus(a.thread.Composer())
		})
	}()
}

func (a *App) markAllRead() {
	a.run("mark all read", func(ctx context.Context, st *syncstore.Store) error {
		return st.MarkAllNotificationsRead(ctx)
	})
}

func (a *App) execute(cmd Command) {
	st := a.vm.Store()
	if st == nil {
		return
	}
	fail := func(err error) {
		a.flash.Err(err)
		a.updateChrome()
	}

	switch cmd.Name {
	case "":
	case "q", "quit":
		a.Stop()
	case "logout":
		a.doLogout()
	case "retry":
		a.retry()
	case "h", "help":
		a.pages.Push(pageHelp)
		a.focusCurrent()
	case "read-all":
		a.markAllRead()
	case "inst":
		inst, ok := domain.ParseInstrument(cmd.Args)
		if !ok {
			fail(fmt.Errorf("unknown instrument %q", cmd.Args))
			return
		}
		st.ToggleInstrument(inst)
		a.switchTo(pageMusicians)
	case "genre":
		genre, ok := domain.ParseGenre(cmd.Args)
		if !ok {
			fail(fmt.Errorf("unknown genre %q", cmd.Args))
			return
		}
		st.ToggleGenre(genre)
		a.switchTo(pageMusicians)
	case "clear":
		st.ClearFilters()
		a.switchTo(pageMusicians)
	case "follow":
		a.toggleFollow(a.vm.SelectedMusician())
	case "chat":
		a.chatWith(a.vm.SelectedMusician())
	case "review":
		target := a.vm.SelectedMusician()
		if target == 0 {
			fail(errors.New("open a profile to review it"))
			return
		}
		rating, comment, err := cmd.IntArg()
		if err != nil {
			fail(err)
			return
		}
		a.run("review", func(ctx context.Context, st *syncstore.Store) error {
			_, err := st.AddReview(ctx, target, rating, comment)
			return err
		})
	case "react":
		item, emoji, err := cmd.Emoji()
		if err != nil {
			fail(err)
			return
		}
		a.run("react", func(ctx context.Context, st *syncstore.Store) error {
			_, err := st.AddReaction(ctx, item, emoji)
			return err
		})
	case "comment":
		item, text, err := cmd.IntArg()
		if err != nil {
			fail(err)
			return
		}
		a.run("comment", func(ctx context.Context, st *syncstore.Store) error {
			_, err := st.AddComment(ctx, item, text)
			return err
		})
	case "gig":
		word, title, err := cmd.WordArg()
		if err != nil {
			fail(err)
			return
		}
		inst, ok := domain.ParseInstrument(word)
		if !ok {
			fail(fmt.Errorf("unknown instrument %q", word))
			return
		}
		me := st.CurrentUser()
		draft := domain.GigDraft{
			Title:            title,
			BandName:         me.Name,
			Location:         me.Location,
			InstrumentNeeded: inst,
			PostedByUserID:   me.ID,
		}
		if len(me.Genres) > 0 {
			draft.Genre = me.Genres[0]
		}
		a.run("post gig", func(ctx context.Context, st *syncstore.Store) error {
			_, err := st.CreateGig(ctx, draft)
			return err
		})
		a.switchTo(pageGigs)
	default:
		fail(fmt.Errorf("unknown command :%s", cmd.Name))
	}
}

// filterLabel summarizes active musician filters for the table title.
func filterLabel(f syncstore.FilterState) string {
	if f.Empty() {
		return ""
	}
	var parts []string
	if q := strings.TrimSpace(f.Query); q != "" {
		parts = append(parts, "/"+q)
	}
	for _, i := range f.Instruments {
		parts = append(parts, string(i))
	}
	for _, g := range f.Genres {
		parts = append(parts, string(g))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
