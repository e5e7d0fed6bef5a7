package realtime

import (
	"encoding/json"

	"github.com/gigtune/gigtune/internal/model"
)

// Wire event names.
const (
	EventJoinConversations = "join_conversations"
	EventSendMessage       = "send_message"
	EventReceiveMessage    = "receive_message"
	EventDataUpdated       = "data_updated"
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Incoming is the payload of receive_message.
type Incoming struct {
	ConversationID string        `json:"conversationId"`
	Message        model.Message `json:"message"`
}

// Outgoing is the payload of send_message.
type Outgoing struct {
	ConversationID string             `json:"conversationId"`
	Message        model.MessageDraft `json:"message"`
}

func encode(event string, data any) (Envelope, error) {
	if data == nil {
		return Envelope{Event: event}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}
