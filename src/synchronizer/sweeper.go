package synchronizer

import (
	"context"

	"github.com/warp-contracts/token-syncer/src/utils/config"
	"github.com/warp-contracts/token-syncer/src/utils/monitoring"
	"github.com/warp-contracts/token-syncer/src/utils/task"

	"github.com/robfig/cron"
)

// Periodically cancels expired operations
type Sweeper struct {
	*task.Task

	synchronizer *Synchronizer
	monitor      monitoring.Monitor
	cron         *cron.Cron
}

func NewSweeper(config *config.Config) (self *Sweeper) {
	self = new(Sweeper)

	self.Task = task.NewTask(config, "sweeper").
		WithOnBeforeStart(self.schedule).
		WithSubtaskFunc(self.run)

	return
}

func (self *Sweeper) WithSynchronizer(v *Synchronizer) *Sweeper {
	self.synchronizer = v
	return self
}

func (self *Sweeper) WithMonitor(v monitoring.Monitor) *Sweeper {
	self.monitor = v
	return self
}

func (self *Sweeper) schedule() (err error) {
	self.cron = cron.New()
	err = self.cron.AddFunc(self.Config.Synchronizer.SweepSchedule, self.sweep)
	if err != nil {
		self.Log.WithError(err).Error("Invalid sweep schedule")
		return
	}
	return
}

func (self *Sweeper) run() error {
	self.cron.Start()
	<-self.StopChannel
	self.cron.Stop()
	return nil
}

func (self *Sweeper) sweep() {
	if self.IsStopping.Load() {
		return
	}

	ctx, cancel := context.WithTimeout(self.Ctx, self.Config.Synchronizer.SweepTimeout)
	defer cancel()

	expired, err := self.synchronizer.ExpireSyncs(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to expire operations")
		if self.monitor != nil {
			self.monitor.GetReport().Synchronizer.Errors.SweepFailures.Inc()
		}
		return
	}

	if len(expired) > 0 {
		self.Log.WithField("count", len(expired)).Info("Expired operations cancelled")
	}
}
