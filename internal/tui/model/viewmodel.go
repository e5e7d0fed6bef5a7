package model

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	domain "github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/session"
	"github.com/gigtune/gigtune/internal/syncstore"
)

// MusicianRow is one line of the musicians table.
type MusicianRow struct {
	ID         int
	Name       string
	Instrument string
	Genres     string
	Location   string
	Level      string
	Rating     string
	Following  bool
}

// ConversationRow is one line of the conversations table.
type ConversationRow struct {
	ID      string
	Peer    string
	Preview string
	At      time.Time
	Unread  bool
}

// ThreadLine is one rendered message.
type ThreadLine struct {
	Sender string
	FromMe bool
	Text   string
	At     time.Time
}

// ViewModel is the TUI's window onto the session. It holds navigation
// state only; entity data is always read from the active store.
type ViewModel struct {
	sessions *session.Manager

	mu                 sync.RWMutex
	activeConversation string
	selectedMusician   int
}

func NewViewModel(m *session.Manager) *ViewModel {
	return &ViewModel{sessions: m}
}

// Store returns the active store, or nil before login.
func (vm *ViewModel) Store() *syncstore.Store {
	return vm.sessions.Store()
}

func (vm *ViewModel) Login(ctx context.Context, email string) error {
	_, err := vm.sessions.Login(ctx, email)
	return err
}

func (vm *ViewModel) Logout() {
	vm.sessions.Logout()
	vm.mu.Lock()
	vm.activeConversation, vm.selectedMusician = "", 0
	vm.mu.Unlock()
}

func (vm *ViewModel) SetActiveConversation(id string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.activeConversation = id
}

func (vm *ViewModel) ActiveConversation() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.activeConversation
}

func (vm *ViewModel) SetSelectedMusician(id int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.selectedMusician = id
}

func (vm *ViewModel) SelectedMusician() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.selectedMusician
}

// Musicians returns the filtered directory rows.
func (vm *ViewModel) Musicians() []MusicianRow {
	st := vm.Store()
	if st == nil {
		return nil
	}
	return BuildMusicianRows(st.FilteredMusicians(), st.CurrentUser())
}

// Conversations returns the conversation rows, most recent first.
func (vm *ViewModel) Conversations() []ConversationRow {
	st := vm.Store()
	if st == nil {
		return nil
	}
	return BuildConversationRows(st.SortedConversations(), st.Musicians(), st.UserID())
}

// Thread returns the title and lines of the active conversation.
func (vm *ViewModel) Thread() (string, []ThreadLine) {
	st := vm.Store()
	id := vm.ActiveConversation()
	if st == nil || id == "" {
		return "", nil
	}
	conv, ok := st.Conversation(id)
	if !ok {
		return "", nil
	}
	musicians := st.Musicians()
	title := nameOf(musicians, conv.Peer(st.UserID()))
	return title, BuildThread(conv, musicians, st.UserID())
}

// BuildMusicianRows renders musicians for the directory table.
func BuildMusicianRows(list []domain.Musician, me domain.Musician) []MusicianRow {
	rows := make([]MusicianRow, 0, len(list))
	for _, m := range list {
		genres := make([]string, len(m.Genres))
		for i, g := range m.Genres {
			genres[i] = string(g)
		}
		rows = append(rows, MusicianRow{
			ID:         m.ID,
			Name:       m.Name,
			Instrument: string(m.Instrument),
			Genres:     strings.Join(genres, ", "),
			Location:   m.Location,
			Level:      string(m.ExperienceLevel),
			Rating:     AverageRating(m.Reviews),
			Following:  me.IsFollowing(m.ID),
		})
	}
	return rows
}

// AverageRating formats the mean review rating, or "-" without reviews.
func AverageRating(reviews []domain.Review) string {
	if len(reviews) == 0 {
		return "-"
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return fmt.Sprintf("%.1f (%d)", float64(sum)/float64(len(reviews)), len(reviews))
}

// BuildConversationRows resolves peers by name and marks conversations whose
// last message came from the other side as unread.
func BuildConversationRows(convs []domain.Conversation, musicians []domain.Musician, me int) []ConversationRow {
	rows := make([]ConversationRow, 0, len(convs))
	for _, c := range convs {
		row := ConversationRow{ID: c.ID, Peer: nameOf(musicians, c.Peer(me))}
		if last, ok := c.LastMessage(); ok {
			row.Preview = last.Text
			row.At = last.Timestamp
			row.Unread = last.SenderID != me
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildThread renders the messages of conv oldest first.
func BuildThread(conv domain.Conversation, musicians []domain.Musician, me int) []ThreadLine {
	lines := make([]ThreadLine, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		line := ThreadLine{Text: m.Text, At: m.Timestamp, FromMe: m.SenderID == me}
		if line.FromMe {
			line.Sender = "You"
		} else {
			line.Sender = nameOf(musicians, m.SenderID)
		}
		lines = append(lines, line)
	}
	return lines
}

func nameOf(musicians []domain.Musician, id int) string {
	if i := slices.IndexFunc(musicians, func(m domain.Musician) bool { return m.ID == id }); i >= 0 {
		return musicians[i].Name
	}
	return fmt.Sprintf("musician #%d", id)
}
