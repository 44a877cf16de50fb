package report

import (
	"go.uber.org/atomic"
)

type GatewayErrors struct {
	Unauthenticated atomic.Uint64 `json:"unauthenticated"`
	RateLimited     atomic.Uint64 `json:"rate_limited"`
	DbError         atomic.Uint64 `json:"db_error"`
}

type GatewayState struct {
	RequestsHandled   atomic.Uint64 `json:"requests_handled"`
	StreamSubscribers atomic.Int64  `json:"stream_subscribers"`
}

type GatewayReport struct {
	State  GatewayState  `json:"state"`
	Errors GatewayErrors `json:"errors"`
}
