package monitor_synchronizer

import (
	"math"
	"net/http"
	"time"

	"github.com/warp-contracts/token-syncer/src/utils/monitoring/report"
	"github.com/warp-contracts/token-syncer/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Sync completion speed
	SyncsCompleted *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:            &report.RunReport{},
		Synchronizer:   &report.SynchronizerReport{},
		Clock:          &report.ClockReport{},
		Gateway:        &report.GatewayReport{},
		RedisPublisher: &report.RedisPublisherReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Second*10, self.monitorUptime).
		WithPeriodicSubtaskFunc(time.Minute, self.monitorSyncs)

	return self.WithMaxHistorySize(30)
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	self.SyncsCompleted = deque.New[uint64](self.historySize)
	return self
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

func (self *Monitor) monitorUptime() (err error) {
	upFor := time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()
	self.Report.Run.State.UpForSeconds.Store(uint64(upFor))
	return
}

// Measure sync completion speed
func (self *Monitor) monitorSyncs() (err error) {
	self.SyncsCompleted.PushBack(self.Report.Synchronizer.State.SyncsCompleted.Load())
	if self.SyncsCompleted.Len() > self.historySize {
		self.SyncsCompleted.PopFront()
	}
	value := float64(self.SyncsCompleted.Back()-self.SyncsCompleted.Front()) / float64(self.SyncsCompleted.Len())

	self.Report.Synchronizer.State.AverageSyncsCompletedPerMinute.Store(round(value))
	return
}

func (self *Monitor) IsOK() bool {
	// Clock has to move, otherwise every sync is stamped with the same height
	return self.Report.Clock.Errors.PollFailures.Load() == 0 ||
		self.Report.Clock.State.CurrentHeight.Load() > 0
}

func (self *Monitor) OnGetState(c *gin.Context) {
	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
