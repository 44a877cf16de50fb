package monitor_synchronizer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Errors
	NotAuthorized       *prometheus.Desc
	InvalidInput        *prometheus.Desc
	SyncFailed          *prometheus.Desc
	SyncInProgress      *prometheus.Desc
	AdapterFailures     *prometheus.Desc
	RegistryFailures    *prometheus.Desc
	DbError             *prometheus.Desc
	SweepFailures       *prometheus.Desc
	HistoryDropped      *prometheus.Desc
	ClockPollFailures   *prometheus.Desc
	ClockSaveFailures   *prometheus.Desc
	GatewayRateLimited  *prometheus.Desc
	PublisherFailures   *prometheus.Desc
	PublisherPersistent *prometheus.Desc
	PublisherEncode     *prometheus.Desc

	// State
	TokensRegistered               *prometheus.Desc
	PairsConfigured                *prometheus.Desc
	SyncsInitiated                 *prometheus.Desc
	SyncsCompleted                 *prometheus.Desc
	SyncsCancelled                 *prometheus.Desc
	SyncsExpired                   *prometheus.Desc
	SyncsInFlight                  *prometheus.Desc
	LastResolvedBlock              *prometheus.Desc
	AverageSyncsCompletedPerMinute *prometheus.Desc
	ClockCurrentHeight             *prometheus.Desc
	GatewayRequestsHandled         *prometheus.Desc
	GatewayStreamSubscribers       *prometheus.Desc
	PublisherMessagesPublished     *prometheus.Desc
	PublisherBytesPublished        *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "token-syncer",
	}

	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, labels),

		// Errors
		NotAuthorized:       prometheus.NewDesc("synchronizer_not_authorized", "", nil, labels),
		InvalidInput:        prometheus.NewDesc("synchronizer_invalid_input", "", nil, labels),
		SyncFailed:          prometheus.NewDesc("synchronizer_sync_failed", "", nil, labels),
		SyncInProgress:      prometheus.NewDesc("synchronizer_sync_in_progress", "", nil, labels),
		AdapterFailures:     prometheus.NewDesc("synchronizer_adapter_failures", "", nil, labels),
		RegistryFailures:    prometheus.NewDesc("synchronizer_registry_failures", "", nil, labels),
		DbError:             prometheus.NewDesc("synchronizer_db_error", "", nil, labels),
		SweepFailures:       prometheus.NewDesc("synchronizer_sweep_failures", "", nil, labels),
		HistoryDropped:      prometheus.NewDesc("synchronizer_history_dropped", "", nil, labels),
		ClockPollFailures:   prometheus.NewDesc("clock_poll_failures", "", nil, labels),
		ClockSaveFailures:   prometheus.NewDesc("clock_save_last_state_failures", "", nil, labels),
		GatewayRateLimited:  prometheus.NewDesc("gateway_rate_limited", "", nil, labels),
		PublisherFailures:   prometheus.NewDesc("redis_publisher_failures", "", nil, labels),
		PublisherPersistent: prometheus.NewDesc("redis_publisher_persistent_failures", "", nil, labels),
		PublisherEncode:     prometheus.NewDesc("redis_publisher_encode_failures", "", nil, labels),

		// State
		TokensRegistered:               prometheus.NewDesc("synchronizer_tokens_registered", "", nil, labels),
		PairsConfigured:                prometheus.NewDesc("synchronizer_pairs_configured", "", nil, labels),
		SyncsInitiated:                 prometheus.NewDesc("synchronizer_syncs_initiated", "", nil, labels),
		SyncsCompleted:                 prometheus.NewDesc("synchronizer_syncs_completed", "", nil, labels),
		SyncsCancelled:                 prometheus.NewDesc("synchronizer_syncs_cancelled", "", nil, labels),
		SyncsExpired:                   prometheus.NewDesc("synchronizer_syncs_expired", "", nil, labels),
		SyncsInFlight:                  prometheus.NewDesc("synchronizer_syncs_in_flight", "", nil, labels),
		LastResolvedBlock:              prometheus.NewDesc("synchronizer_last_resolved_block", "", nil, labels),
		AverageSyncsCompletedPerMinute: prometheus.NewDesc("synchronizer_average_syncs_completed_per_minute", "", nil, labels),
		ClockCurrentHeight:             prometheus.NewDesc("clock_current_height", "", nil, labels),
		GatewayRequestsHandled:         prometheus.NewDesc("gateway_requests_handled", "", nil, labels),
		GatewayStreamSubscribers:       prometheus.NewDesc("gateway_stream_subscribers", "", nil, labels),
		PublisherMessagesPublished:     prometheus.NewDesc("redis_publisher_messages_published", "", nil, labels),
		PublisherBytesPublished:        prometheus.NewDesc("redis_publisher_bytes_published", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.UpForSeconds

	// Errors
	ch <- self.NotAuthorized
	ch <- self.InvalidInput
	ch <- self.SyncFailed
	ch <- self.SyncInProgress
	ch <- self.AdapterFailures
	ch <- self.RegistryFailures
	ch <- self.DbError
	ch <- self.SweepFailures
	ch <- self.HistoryDropped
	ch <- self.ClockPollFailures
	ch <- self.ClockSaveFailures
	ch <- self.GatewayRateLimited
	ch <- self.PublisherFailures
	ch <- self.PublisherPersistent
	ch <- self.PublisherEncode

	// State
	ch <- self.TokensRegistered
	ch <- self.PairsConfigured
	ch <- self.SyncsInitiated
	ch <- self.SyncsCompleted
	ch <- self.SyncsCancelled
	ch <- self.SyncsExpired
	ch <- self.SyncsInFlight
	ch <- self.LastResolvedBlock
	ch <- self.AverageSyncsCompletedPerMinute
	ch <- self.ClockCurrentHeight
	ch <- self.GatewayRequestsHandled
	ch <- self.GatewayStreamSubscribers
	ch <- self.PublisherMessagesPublished
	ch <- self.PublisherBytesPublished
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	r := &self.monitor.Report

	// Run
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(r.Run.State.UpForSeconds.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.NotAuthorized, prometheus.CounterValue, float64(r.Synchronizer.Errors.NotAuthorized.Load()))
	ch <- prometheus.MustNewConstMetric(self.InvalidInput, prometheus.CounterValue, float64(r.Synchronizer.Errors.InvalidInput.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncFailed, prometheus.CounterValue, float64(r.Synchronizer.Errors.SyncFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncInProgress, prometheus.CounterValue, float64(r.Synchronizer.Errors.SyncInProgress.Load()))
	ch <- prometheus.MustNewConstMetric(self.AdapterFailures, prometheus.CounterValue, float64(r.Synchronizer.Errors.AdapterFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.RegistryFailures, prometheus.CounterValue, float64(r.Synchronizer.Errors.RegistryFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbError, prometheus.CounterValue, float64(r.Synchronizer.Errors.DbError.Load()))
	ch <- prometheus.MustNewConstMetric(self.SweepFailures, prometheus.CounterValue, float64(r.Synchronizer.Errors.SweepFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.HistoryDropped, prometheus.CounterValue, float64(r.Synchronizer.Errors.HistoryDropped.Load()))
	ch <- prometheus.MustNewConstMetric(self.ClockPollFailures, prometheus.CounterValue, float64(r.Clock.Errors.PollFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ClockSaveFailures, prometheus.CounterValue, float64(r.Clock.Errors.SaveLastStateFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.GatewayRateLimited, prometheus.CounterValue, float64(r.Gateway.Errors.RateLimited.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublisherFailures, prometheus.CounterValue, float64(r.RedisPublisher.Errors.Publish.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublisherPersistent, prometheus.CounterValue, float64(r.RedisPublisher.Errors.PersistentFailure.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublisherEncode, prometheus.CounterValue, float64(r.RedisPublisher.Errors.Encode.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.TokensRegistered, prometheus.CounterValue, float64(r.Synchronizer.State.TokensRegistered.Load()))
	ch <- prometheus.MustNewConstMetric(self.PairsConfigured, prometheus.CounterValue, float64(r.Synchronizer.State.PairsConfigured.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncsInitiated, prometheus.CounterValue, float64(r.Synchronizer.State.SyncsInitiated.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncsCompleted, prometheus.CounterValue, float64(r.Synchronizer.State.SyncsCompleted.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncsCancelled, prometheus.CounterValue, float64(r.Synchronizer.State.SyncsCancelled.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncsExpired, prometheus.CounterValue, float64(r.Synchronizer.State.SyncsExpired.Load()))
	ch <- prometheus.MustNewConstMetric(self.SyncsInFlight, prometheus.GaugeValue, float64(r.Synchronizer.State.SyncsInFlight.Load()))
	ch <- prometheus.MustNewConstMetric(self.LastResolvedBlock, prometheus.GaugeValue, float64(r.Synchronizer.State.LastResolvedBlock.Load()))
	ch <- prometheus.MustNewConstMetric(self.AverageSyncsCompletedPerMinute, prometheus.GaugeValue, r.Synchronizer.State.AverageSyncsCompletedPerMinute.Load())
	ch <- prometheus.MustNewConstMetric(self.ClockCurrentHeight, prometheus.GaugeValue, float64(r.Clock.State.CurrentHeight.Load()))
	ch <- prometheus.MustNewConstMetric(self.GatewayRequestsHandled, prometheus.CounterValue, float64(r.Gateway.State.RequestsHandled.Load()))
	ch <- prometheus.MustNewConstMetric(self.GatewayStreamSubscribers, prometheus.GaugeValue, float64(r.Gateway.State.StreamSubscribers.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublisherMessagesPublished, prometheus.CounterValue, float64(r.RedisPublisher.State.MessagesPublished.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublisherBytesPublished, prometheus.CounterValue, float64(r.RedisPublisher.State.BytesPublished.Load()))
}
