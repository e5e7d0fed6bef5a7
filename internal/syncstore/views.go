package syncstore

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/status"
)

// FilterState is the musician search state. Selections within a category are
// ORed; categories are ANDed.
type FilterState struct {
	Query       string
	Instruments []model.Instrument
	Genres      []model.Genre
}

// Empty reports whether no filter is active.
func (f FilterState) Empty() bool {
	return strings.TrimSpace(f.Query) == "" && len(f.Instruments) == 0 && len(f.Genres) == 0
}

// Match reports whether m passes every active filter.
func (f FilterState) Match(m model.Musician) bool {
	if q := strings.TrimSpace(f.Query); q != "" &&
		!strings.Contains(strings.ToLower(m.Name), strings.ToLower(q)) {
		return false
	}
	if len(f.Instruments) > 0 && !slices.Contains(f.Instruments, m.Instrument) {
		return false
	}
	if len(f.Genres) > 0 && !slices.ContainsFunc(m.Genres, func(g model.Genre) bool {
		return slices.Contains(f.Genres, g)
	}) {
		return false
	}
	return true
}

// FilterMusicians returns the musicians other than self that pass f.
func FilterMusicians(musicians []model.Musician, self int, f FilterState) []model.Musician {
	out := make([]model.Musician, 0, len(musicians))
	for _, m := range musicians {
		if m.ID != self && f.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// ready reports whether derived views may expose data. Callers hold s.mu.
func (s *Store) ready() bool {
	return !s.closed && s.machine.Is(status.Ready)
}

func (s *Store) currentUserLocked() model.Musician {
	if m, ok := s.findMusician(s.userID); ok {
		return m
	}
	return s.self
}

// CurrentUser returns the freshest known copy of the logged-in musician.
func (s *Store) CurrentUser() model.Musician {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUserLocked()
}

// FilteredMusicians is the musician list minus the logged-in user, narrowed
// by the current filters. Empty until the store is READY.
func (s *Store) FilteredMusicians() []model.Musician {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready() {
		return nil
	}
	return FilterMusicians(s.musicians, s.userID, s.filters)
}

// UnreadMessageCount counts conversations whose last message came from
// someone else.
func (s *Store) UnreadMessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready() {
		return 0
	}
	count := 0
	for i := range s.conversations {
		if last, ok := s.conversations[i].LastMessage(); ok && last.SenderID != s.userID {
			count++
		}
	}
	return count
}

func (s *Store) UnreadNotificationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready() {
		return 0
	}
	count := 0
	for _, n := range s.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// SortedConversations orders conversations by last message time, newest
// first. Conversations without messages go last.
func (s *Store) SortedConversations() []model.Conversation {
	s.mu.RLock()
	if !s.ready() {
		s.mu.RUnlock()
		return nil
	}
	out := slices.Clone(s.conversations)
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.Conversation) int {
		la, oka := a.LastMessage()
		lb, okb := b.LastMessage()
		switch {
		case !oka && !okb:
			return 0
		case !oka:
			return 1
		case !okb:
			return -1
		}
		return lb.Timestamp.Compare(la.Timestamp)
	})
	return out
}

func (s *Store) Musicians() []model.Musician {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready() {
		return nil
	}
	return slices.Clone(s.musicians)
}

func (s *Store) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready() {
		return nil
	}
	return slices.Clone(s.notifications)
}

func (s *Store) Conversations() []model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready() {
		return nil
	}
	return slices.Clone(s.conversations)
}

func (s *Store) Gigs() []model.Gig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready() {
		return nil
	}
	return slices.Clone(s.gigs)
}

// Musician looks a musician up by id.
func (s *Store) Musician(id int) (model.Musician, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready() {
		return model.Musician{}, false
	}
	return s.findMusician(id)
}

// Conversation looks a conversation up by id.
func (s *Store) Conversation(id string) (model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready() {
		return model.Conversation{}, false
	}
	i := slices.IndexFunc(s.conversations, func(c model.Conversation) bool { return c.ID == id })
	if i < 0 {
		return model.Conversation{}, false
	}
	return s.conversations[i], true
}

// ConversationWith returns the conversation between the logged-in musician
// and other, if one exists.
func (s *Store) ConversationWith(other int) (model.Conversation, bool) {
	return s.Conversation(model.ConversationID(s.userID, other))
}

// Filters returns the current filter state.
func (s *Store) Filters() FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterState{
		Query:       s.filters.Query,
		Instruments: slices.Clone(s.filters.Instruments),
		Genres:      slices.Clone(s.filters.Genres),
	}
}

func (s *Store) SetSearchQuery(q string) {
	s.updateFilters(func(f *FilterState) { f.Query = q })
}

func (s *Store) SetInstrumentFilter(instruments []model.Instrument) {
	s.updateFilters(func(f *FilterState) { f.Instruments = dedupe(instruments) })
}

func (s *Store) SetGenreFilter(genres []model.Genre) {
	s.updateFilters(func(f *FilterState) { f.Genres = dedupe(genres) })
}

// ToggleInstrument adds or removes one instrument from the filter.
func (s *Store) ToggleInstrument(i model.Instrument) {
	s.updateFilters(func(f *FilterState) { f.Instruments = toggle(f.Instruments, i) })
}

// ToggleGenre adds or removes one genre from the filter.
func (s *Store) ToggleGenre(g model.Genre) {
	s.updateFilters(func(f *FilterState) { f.Genres = toggle(f.Genres, g) })
}

func (s *Store) ClearFilters() {
	s.updateFilters(func(f *FilterState) { *f = FilterState{} })
}

func (s *Store) updateFilters(fn func(*FilterState)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn(&s.filters)
	s.mu.Unlock()
	s.changed(Filters)
}

func toggle[T comparable](list []T, v T) []T {
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(slices.Clone(list), i, i+1)
	}
	return append(slices.Clone(list), v)
}

func dedupe[T cmp.Ordered](list []T) []T {
	out := slices.Clone(list)
	slices.Sort(out)
	return slices.Compact(out)
}
