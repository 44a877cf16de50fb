package report

import (
	"go.uber.org/atomic"
)

type SynchronizerErrors struct {
	NotAuthorized    atomic.Uint64 `json:"not_authorized"`
	InvalidInput     atomic.Uint64 `json:"invalid_input"`
	SyncFailed       atomic.Uint64 `json:"sync_failed"`
	SyncInProgress   atomic.Uint64 `json:"sync_in_progress"`
	AdapterFailures  atomic.Uint64 `json:"adapter_failures"`
	RegistryFailures atomic.Uint64 `json:"registry_failures"`
	DbError          atomic.Uint64 `json:"db_error"`
	SweepFailures    atomic.Uint64 `json:"sweep_failures"`
	HistoryDropped   atomic.Uint64 `json:"history_dropped"`
}

type SynchronizerState struct {
	TokensRegistered  atomic.Uint64 `json:"tokens_registered"`
	PairsConfigured   atomic.Uint64 `json:"pairs_configured"`
	SyncsInitiated    atomic.Uint64 `json:"syncs_initiated"`
	SyncsCompleted    atomic.Uint64 `json:"syncs_completed"`
	SyncsCancelled    atomic.Uint64 `json:"syncs_cancelled"`
	SyncsExpired      atomic.Uint64 `json:"syncs_expired"`
	SyncsInFlight     atomic.Int64  `json:"syncs_in_flight"`
	LastResolvedBlock atomic.Int64  `json:"last_resolved_block"`

	AverageSyncsCompletedPerMinute atomic.Float64 `json:"average_syncs_completed_per_minute"`
}

type SynchronizerReport struct {
	State  SynchronizerState  `json:"state"`
	Errors SynchronizerErrors `json:"errors"`
}
