package report

import (
	"go.uber.org/atomic"
)

type ClockErrors struct {
	PollFailures          atomic.Uint64 `json:"poll_failures"`
	SaveLastStateFailures atomic.Uint64 `json:"save_last_state_failures"`
}

type ClockState struct {
	CurrentHeight atomic.Int64 `json:"current_height"`
	SavedHeight   atomic.Int64 `json:"saved_height"`
}

type ClockReport struct {
	State  ClockState  `json:"state"`
	Errors ClockErrors `json:"errors"`
}
