package synchronizer

import (
	"github.com/warp-contracts/token-syncer/src/utils/config"
	"github.com/warp-contracts/token-syncer/src/utils/model"
	"github.com/warp-contracts/token-syncer/src/utils/monitoring"
	"github.com/warp-contracts/token-syncer/src/utils/task"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClockStore is responsible for saving the clock height in sync_state table
// It updates the table periodically to not overload database with updates done on every tick
type ClockStore struct {
	*task.Processor[int64, int64]

	db      *gorm.DB
	monitor monitoring.Monitor

	savedHeight int64
	lastHeight  int64
}

func NewClockStore(config *config.Config) (self *ClockStore) {
	self = new(ClockStore)

	self.Processor = task.NewProcessor[int64, int64](config, "clock-store").
		WithBatchSize(100).
		WithOnFlush(config.Clock.PollInterval, self.flush).
		WithOnProcess(self.process).
		WithBackoff(0, config.Clock.BackoffMaxInterval)

	return
}

func (self *ClockStore) WithMonitor(v monitoring.Monitor) *ClockStore {
	self.monitor = v
	return self
}

func (self *ClockStore) WithInputChannel(v chan int64) *ClockStore {
	self.Processor = self.Processor.WithInputChannel(v)
	return self
}

func (self *ClockStore) WithDb(v *gorm.DB) *ClockStore {
	self.db = v
	return self
}

func (self *ClockStore) process(height int64) (out []int64, err error) {
	if height > self.lastHeight {
		self.lastHeight = height
	}
	return
}

func (self *ClockStore) flush([]int64) (out []int64, err error) {
	if self.savedHeight == self.lastHeight {
		// No need to flush, nothing changed
		return
	}

	self.Log.WithField("height", self.lastHeight).Trace("Updating sync_state with clock height")

	// Last flush happens while stopping, Ctx is already cancelled then
	err = self.db.WithContext(self.CtxRunning).
		Transaction(func(tx *gorm.DB) error {
			return self.save(tx)
		}, model.WriteTxOptions(self.db)...)
	if err != nil {
		if self.monitor != nil {
			self.monitor.GetReport().Clock.Errors.SaveLastStateFailures.Inc()
		}
		return
	}

	self.savedHeight = self.lastHeight
	if self.monitor != nil {
		self.monitor.GetReport().Clock.State.SavedHeight.Store(self.savedHeight)
	}

	// Processing stops here, no need to return anything
	return
}

func (self *ClockStore) save(tx *gorm.DB) (err error) {
	state := model.SyncState{
		Name:                model.SyncedComponentClock,
		FinishedBlockHeight: self.lastHeight,
	}

	// Replace the saved height only if it's newer
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Set{{
			Column: clause.Column{Name: "finished_block_height"},
			Value:  gorm.Expr("CASE WHEN sync_state.finished_block_height < ? THEN ? ELSE sync_state.finished_block_height END", self.lastHeight, self.lastHeight),
		}},
	}).Create(&state).Error
}
