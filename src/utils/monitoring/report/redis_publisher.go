package report

import (
	"go.uber.org/atomic"
)

// History records forwarded to Redis
type RedisPublisherErrors struct {
	Publish           atomic.Uint64 `json:"publish"`
	PersistentFailure atomic.Uint64 `json:"persistent"`

	// Records that couldn't be encoded, never retried
	Encode atomic.Uint64 `json:"encode"`
}

type RedisPublisherState struct {
	LastSuccessfulMessageTimestamp atomic.Int64  `json:"last_successful_message_timestamp"`
	MessagesPublished              atomic.Uint64 `json:"messages_published"`
	BytesPublished                 atomic.Uint64 `json:"bytes_published"`
}

type RedisPublisherReport struct {
	State  RedisPublisherState  `json:"state"`
	Errors RedisPublisherErrors `json:"errors"`
}
