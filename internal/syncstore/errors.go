package syncstore

import "errors"

var (
	ErrClosed              = errors.New("store is closed")
	ErrSelfReview          = errors.New("cannot review yourself")
	ErrDuplicateReview     = errors.New("you already reviewed this musician")
	ErrSelfFollow          = errors.New("cannot follow yourself")
	ErrNotOwner            = errors.New("can only modify your own profile")
	ErrUnknownMusician     = errors.New("unknown musician")
	ErrUnknownConversation = errors.New("unknown conversation")
)

// LoadFailedMessage is the user-facing text of the ERROR load state.
const LoadFailedMessage = "Failed to load GigTune data. Please try refreshing."
