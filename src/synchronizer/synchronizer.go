package synchronizer

import (
	"context"
	"math/big"
	"sync"

	"github.com/warp-contracts/token-syncer/src/utils/config"
	"github.com/warp-contracts/token-syncer/src/utils/logger"
	"github.com/warp-contracts/token-syncer/src/utils/model"
	"github.com/warp-contracts/token-syncer/src/utils/monitoring"
	monitor_synchronizer "github.com/warp-contracts/token-syncer/src/utils/monitoring/synchronizer"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Gate that can be administered by its owner
type ManagedGate interface {
	Gate
	AddOperator(ctx context.Context, caller, operator string) error
	RemoveOperator(ctx context.Context, caller, operator string) error
	TransferOwnership(ctx context.Context, caller, newOwner string) error
}

// Synchronizer keeps token representations in parity.
// Mutations are serialized and each one commits in a single transaction or not at all.
type Synchronizer struct {
	config *config.Synchronizer
	log    *logrus.Entry
	db     *gorm.DB

	gate     ManagedGate
	adapter  Adapter
	registry Registry
	clock    Clock
	monitor  monitoring.Monitor

	// Single writer
	mtx sync.Mutex

	// Ids of operations being executed or cancelled
	inFlightMtx sync.Mutex
	inFlight    map[string]struct{}

	// Receivers of resolved history records
	subscribersMtx sync.RWMutex
	subscribers    map[chan *model.SyncHistory]struct{}
}

func NewSynchronizer(config *config.Config, db *gorm.DB) (self *Synchronizer) {
	self = new(Synchronizer)
	self.config = &config.Synchronizer
	self.log = logger.NewSublogger("synchronizer")
	self.db = db

	self.gate = NewOwnership(db)
	self.adapter = NewNopAdapter()
	self.registry = AllowAllRegistry{}
	self.clock = NewCounterClock(0)
	self.monitor = monitor_synchronizer.NewMonitor()

	self.inFlight = make(map[string]struct{})
	self.subscribers = make(map[chan *model.SyncHistory]struct{})
	return
}

func (self *Synchronizer) WithGate(v ManagedGate) *Synchronizer {
	self.gate = v
	return self
}

func (self *Synchronizer) WithAdapter(v Adapter) *Synchronizer {
	self.adapter = v
	return self
}

func (self *Synchronizer) WithRegistry(v Registry) *Synchronizer {
	self.registry = v
	return self
}

func (self *Synchronizer) WithClock(v Clock) *Synchronizer {
	self.clock = v
	return self
}

func (self *Synchronizer) WithMonitor(v monitoring.Monitor) *Synchronizer {
	self.monitor = v
	return self
}

// Returns a channel receiving every history record written from now on.
// Records are dropped when the receiver doesn't keep up.
func (self *Synchronizer) Subscribe() chan *model.SyncHistory {
	size := self.config.HistoryChannelSize
	if size <= 0 {
		size = 1
	}
	ch := make(chan *model.SyncHistory, size)

	self.subscribersMtx.Lock()
	defer self.subscribersMtx.Unlock()
	self.subscribers[ch] = struct{}{}
	return ch
}

// Stops delivery and closes the channel
func (self *Synchronizer) Unsubscribe(ch chan *model.SyncHistory) {
	self.subscribersMtx.Lock()
	defer self.subscribersMtx.Unlock()
	if _, ok := self.subscribers[ch]; !ok {
		return
	}
	delete(self.subscribers, ch)
	close(ch)
}

// Stops delivery to all subscribers
func (self *Synchronizer) Close() {
	self.subscribersMtx.Lock()
	defer self.subscribersMtx.Unlock()
	for ch := range self.subscribers {
		delete(self.subscribers, ch)
		close(ch)
	}
}

func (self *Synchronizer) emit(history *model.SyncHistory) {
	self.subscribersMtx.RLock()
	defer self.subscribersMtx.RUnlock()
	for ch := range self.subscribers {
		select {
		case ch <- history:
		default:
			self.monitor.GetReport().Synchronizer.Errors.HistoryDropped.Inc()
			self.log.WithField("sync_id", history.SyncId).Warn("Subscriber too slow, history record dropped")
		}
	}
}

// Marks the operation as being resolved. False if someone else is already resolving it.
func (self *Synchronizer) claim(syncId string) bool {
	self.inFlightMtx.Lock()
	defer self.inFlightMtx.Unlock()
	if _, ok := self.inFlight[syncId]; ok {
		return false
	}
	self.inFlight[syncId] = struct{}{}
	self.monitor.GetReport().Synchronizer.State.SyncsInFlight.Inc()
	return true
}

func (self *Synchronizer) release(syncId string) {
	self.inFlightMtx.Lock()
	defer self.inFlightMtx.Unlock()
	delete(self.inFlight, syncId)
	self.monitor.GetReport().Synchronizer.State.SyncsInFlight.Dec()
}

// Runs f in one transaction. Nothing is committed if f fails.
func (self *Synchronizer) transaction(ctx context.Context, f func(tx *gorm.DB) error) error {
	return self.db.WithContext(ctx).Transaction(f, model.WriteTxOptions(self.db)...)
}

// Caller has to be the owner or an operator.
// Never call it inside a transaction, SQLite has only one connection.
func (self *Synchronizer) authorize(ctx context.Context, caller string) error {
	ok, err := self.gate.CheckAuthorized(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return newError(CodeNotAuthorized, "%q is neither the owner nor an operator", caller)
	}
	return nil
}

// Updates error counters
func (self *Synchronizer) onError(err error) {
	if err == nil {
		return
	}

	errs := &self.monitor.GetReport().Synchronizer.Errors
	switch CodeOf(err) {
	case CodeNotAuthorized:
		errs.NotAuthorized.Inc()
	case CodeSyncFailed:
		errs.SyncFailed.Inc()
	case CodeSyncInProgress:
		errs.SyncInProgress.Inc()
	case "":
		errs.DbError.Inc()
	default:
		errs.InvalidInput.Inc()
	}
}

// Amount of the secondary token received for amount of the primary token
func (self *Synchronizer) convert(amount, rate int64) (out int64, err error) {
	scale := self.config.ConversionRateScale
	if scale <= 0 {
		scale = 1
	}

	v := new(big.Int).Mul(big.NewInt(amount), big.NewInt(rate))
	v.Quo(v, big.NewInt(scale))

	if v.Sign() <= 0 {
		err = newError(CodeInvalidAmount, "amount %d converts to nothing at rate %d/%d", amount, rate, scale)
		return
	}
	if !v.IsInt64() {
		err = newError(CodeInvalidAmount, "amount %d overflows at rate %d/%d", amount, rate, scale)
		return
	}
	return v.Int64(), nil
}
