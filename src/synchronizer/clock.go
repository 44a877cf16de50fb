package synchronizer

import (
	"context"
	"errors"

	"github.com/warp-contracts/token-syncer/src/utils/model"

	"go.uber.org/atomic"
	"gorm.io/gorm"
)

var ErrClockNotSynced = errors.New("clock has no block height yet")

// Clock is the logical clock used as a timestamp. Heights never decrease.
type Clock interface {
	Height(ctx context.Context) (int64, error)
}

// Height set explicitly by the caller
type ManualClock struct {
	height atomic.Int64
}

func NewManualClock(height int64) (self *ManualClock) {
	self = new(ManualClock)
	self.height.Store(height)
	return
}

func (self *ManualClock) Height(ctx context.Context) (int64, error) {
	return self.height.Load(), nil
}

// Moves the clock forward, lower values are ignored
func (self *ManualClock) Set(height int64) {
	for {
		current := self.height.Load()
		if height <= current || self.height.CompareAndSwap(current, height) {
			return
		}
	}
}

func (self *ManualClock) Advance(delta int64) int64 {
	return self.height.Add(delta)
}

// Local counter advanced on every read, one tick per mutating operation.
// Used when there's no chain to follow.
type CounterClock struct {
	height atomic.Int64

	// Every new height is sent here, if there's room
	Output chan int64
}

func NewCounterClock(start int64) (self *CounterClock) {
	self = new(CounterClock)
	self.height.Store(start)
	self.Output = make(chan int64, 1)
	return
}

func (self *CounterClock) Height(ctx context.Context) (int64, error) {
	height := self.height.Inc()
	select {
	case self.Output <- height:
	default:
		// Store only needs the latest value, it'll get the next one
	}
	return height, nil
}

// Reads the last persisted clock height, 0 if it was never saved
func LoadClockHeight(ctx context.Context, db *gorm.DB) (height int64, err error) {
	var state model.SyncState
	err = db.WithContext(ctx).
		Where("name = ?", model.SyncedComponentClock).
		First(&state).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return state.FinishedBlockHeight, err
}
