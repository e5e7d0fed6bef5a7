package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ConversationID returns the order-independent id of the conversation
// between a and b, e.g. "1-2" for both (1, 2) and (2, 1).
func ConversationID(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return strconv.Itoa(a) + "-" + strconv.Itoa(b)
}

// ParseConversationID splits a conversation id into its two participant ids.
func ParseConversationID(id string) (int, int, error) {
	left, right, ok := strings.Cut(id, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: conversation id %q", ErrInvalidInput, id)
	}
	a, err := strconv.Atoi(left)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: conversation id %q", ErrInvalidInput, id)
	}
	b, err := strconv.Atoi(right)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: conversation id %q", ErrInvalidInput, id)
	}
	if a == b || a > b {
		return 0, 0, fmt.Errorf("%w: conversation id %q is not canonical", ErrInvalidInput, id)
	}
	return a, b, nil
}
