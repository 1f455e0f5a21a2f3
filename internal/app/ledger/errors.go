package ledger

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrInvalidHostToken    = errors.New("invalid host token")
	ErrAllocationExhausted = errors.New("room code space exhausted")
)
