package synchronizer

import (
	"context"
	"errors"

	"github.com/warp-contracts/token-syncer/src/utils/config"
	"github.com/warp-contracts/token-syncer/src/utils/monitoring"
	"github.com/warp-contracts/token-syncer/src/utils/task"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/atomic"
)

// Source of the current block number
type BlockNumberer interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Follows the block number of an EVM chain
type EthClock struct {
	*task.Task

	monitor monitoring.Monitor
	client  BlockNumberer
	height  atomic.Int64

	// Every new height is sent here, if there's room
	Output chan int64
}

func NewEthClock(config *config.Config) (self *EthClock) {
	self = new(EthClock)
	self.Output = make(chan int64, 1)

	self.Task = task.NewTask(config, "eth-clock").
		WithOnBeforeStart(self.connect).
		WithPeriodicSubtaskFunc(config.Clock.PollInterval, self.poll).
		WithOnAfterStop(func() {
			close(self.Output)
		})

	return
}

func (self *EthClock) WithMonitor(monitor monitoring.Monitor) *EthClock {
	self.monitor = monitor
	return self
}

// Overrides the JSON-RPC client
func (self *EthClock) WithClient(client BlockNumberer) *EthClock {
	self.client = client
	return self
}

// Starts from the persisted height, so the clock never goes back after a restart
func (self *EthClock) WithStartHeight(height int64) *EthClock {
	self.height.Store(height)
	return self
}

func (self *EthClock) connect() (err error) {
	if self.client != nil {
		return
	}
	self.client, err = ethclient.DialContext(self.Ctx, self.Config.Clock.EthRpcUrl)
	if err != nil {
		self.Log.WithError(err).Error("Failed to connect to the node")
	}
	return
}

func (self *EthClock) Height(ctx context.Context) (int64, error) {
	height := self.height.Load()
	if height == 0 {
		return 0, ErrClockNotSynced
	}
	return height, nil
}

func (self *EthClock) poll() (err error) {
	var blockNumber uint64
	err = task.NewRetry().
		WithContext(self.Ctx).
		WithMaxElapsedTime(0).
		WithMaxInterval(self.Config.Clock.BackoffMaxInterval).
		WithAcceptableDuration(self.Config.Clock.PollInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			if errors.Is(err, context.Canceled) && self.IsStopping.Load() {
				return backoff.Permanent(err)
			}
			if isDurationAcceptable {
				// Single hiccups of the node are common
				self.Log.WithError(err).Debug("Failed to get block number, retrying")
			} else {
				self.Log.WithError(err).Warn("Failed to get block number, retrying")
			}
			if self.monitor != nil {
				self.monitor.GetReport().Clock.Errors.PollFailures.Inc()
			}
			return err
		}).
		Run(func() (err error) {
			blockNumber, err = self.client.BlockNumber(self.Ctx)
			return
		})
	if err != nil {
		if self.IsStopping.Load() {
			// Stopping, not an error
			return nil
		}
		return
	}

	self.advance(int64(blockNumber))
	return
}

func (self *EthClock) advance(height int64) {
	for {
		current := self.height.Load()
		if height <= current {
			// Node behind the one used before, keep the higher height
			return
		}
		if self.height.CompareAndSwap(current, height) {
			break
		}
	}

	if self.monitor != nil {
		self.monitor.GetReport().Clock.State.CurrentHeight.Store(height)
	}

	select {
	case self.Output <- height:
	default:
	}
}
