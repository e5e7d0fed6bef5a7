package syncstore

import (
	"slices"

	"github.com/gigtune/gigtune/internal/model"
)

// Collection names a top-level collection in change events.
type Collection string

const (
	Musicians     Collection = "musicians"
	Notifications Collection = "notifications"
	Conversations Collection = "conversations"
	Gigs          Collection = "gigs"
	Filters       Collection = "filters"
)

var allCollections = []Collection{Musicians, Notifications, Conversations, Gigs}

// Change is the payload of store.changed events.
type Change struct {
	Collections []Collection
}

// upsert returns a copy of list with item substituted for the entry sharing
// its key, or added at the end (or front) when no entry matches. The input
// slice is never written to, so views handed out earlier stay stable.
func upsert[T any, K comparable](list []T, item T, key func(T) K, front bool) []T {
	k := key(item)
	out := slices.Clone(list)
	for i := range out {
		if key(out[i]) == k {
			out[i] = item
			return out
		}
	}
	if front {
		return append([]T{item}, out...)
	}
	return append(out, item)
}

func musicianID(m model.Musician) int { return m.ID }

func notificationID(n model.Notification) int { return n.ID }

func gigID(g model.Gig) int { return g.ID }

func conversationID(c model.Conversation) string { return c.ID }

// keepRead carries local read flags onto incoming notifications; read never
// reverts to unread.
func keepRead(local, incoming []model.Notification) []model.Notification {
	read := make(map[int]bool, len(local))
	for _, n := range local {
		if n.Read {
			read[n.ID] = true
		}
	}
	out := slices.Clone(incoming)
	for i := range out {
		if read[out[i].ID] {
			out[i].Read = true
		}
	}
	return out
}

// unionMessages merges a fetched conversation with the local copy. The
// fetched message order wins; local messages the fetch does not carry yet are
// appended after it in their local order.
func unionMessages(local, fetched model.Conversation) model.Conversation {
	if len(local.Messages) == 0 {
		return fetched
	}
	missing := make([]model.Message, 0)
	for _, m := range local.Messages {
		if !fetched.HasMessage(m.ID) {
			missing = append(missing, m)
		}
	}
	if len(missing) == 0 {
		return fetched
	}
	fetched.Messages = append(slices.Clip(fetched.Messages), missing...)
	return fetched
}

// reconcileConversations replaces the local collection with fetched while
// keeping realtime messages that arrived after the server took its snapshot.
func reconcileConversations(local, fetched []model.Conversation) []model.Conversation {
	byID := make(map[string]model.Conversation, len(local))
	for _, c := range local {
		byID[c.ID] = c
	}
	out := slices.Clone(fetched)
	for i := range out {
		if prev, ok := byID[out[i].ID]; ok {
			out[i] = unionMessages(prev, out[i])
		}
	}
	return out
}

// appendMessage appends msg to the conversation with the given id unless a
// message with the same id is already there. It reports whether the
// conversation exists and whether anything changed.
func appendMessage(list []model.Conversation, id string, msg model.Message) (out []model.Conversation, known, changed bool) {
	i := slices.IndexFunc(list, func(c model.Conversation) bool { return c.ID == id })
	if i < 0 {
		return list, false, false
	}
	if list[i].HasMessage(msg.ID) {
		return list, true, false
	}
	out = slices.Clone(list)
	out[i].Messages = append(slices.Clip(out[i].Messages), msg)
	return out, true, true
}

func conversationIDs(list []model.Conversation) []string {
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return ids
}
