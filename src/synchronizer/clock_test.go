package synchronizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/warp-contracts/token-syncer/src/utils/config"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"
	"gorm.io/gorm"
)

func TestManualClock(t *testing.T) {
	clock := NewManualClock(10)

	clock.Set(5)
	height, err := clock.Height(context.Background())
	require.Nil(t, err)
	require.Equal(t, int64(10), height)

	clock.Set(12)
	require.Equal(t, int64(15), clock.Advance(3))
}

func TestCounterClock(t *testing.T) {
	clock := NewCounterClock(41)

	height, err := clock.Height(context.Background())
	require.Nil(t, err)
	require.Equal(t, int64(42), height)
	require.Equal(t, int64(42), <-clock.Output)

	// Full output doesn't block
	_, err = clock.Height(context.Background())
	require.Nil(t, err)
	height, err = clock.Height(context.Background())
	require.Nil(t, err)
	require.Equal(t, int64(44), height)
	require.Equal(t, int64(43), <-clock.Output)
}

type fakeBlockNumberer struct {
	height atomic.Uint64

	// Number of calls that fail before the node answers
	failures atomic.Int64
	calls    atomic.Int64
}

func (self *fakeBlockNumberer) BlockNumber(ctx context.Context) (uint64, error) {
	self.calls.Inc()
	if self.failures.Dec() >= 0 {
		return 0, errors.New("node unavailable")
	}
	return self.height.Load(), nil
}

func TestClockTestSuite(t *testing.T) {
	suite.Run(t, new(ClockTestSuite))
}

type ClockTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config
	db     *gorm.DB
}

func (s *ClockTestSuite) SetupTest() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.config = newTestConfig()
	s.db = newTestDb(s.T(), s.ctx, s.config)
}

func (s *ClockTestSuite) TearDownTest() {
	s.cancel()
	db, err := s.db.DB()
	require.Nil(s.T(), err)
	require.Nil(s.T(), db.Close())
}

func (s *ClockTestSuite) TestEthClockFollowsNode() {
	node := &fakeBlockNumberer{}
	clock := NewEthClock(s.config).WithClient(node)

	_, err := clock.Height(s.ctx)
	require.ErrorIs(s.T(), err, ErrClockNotSynced)

	node.height.Store(100)
	require.Nil(s.T(), clock.poll())

	height, err := clock.Height(s.ctx)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(100), height)
	require.Equal(s.T(), int64(100), <-clock.Output)

	// Lagging node doesn't move the clock back
	node.height.Store(90)
	require.Nil(s.T(), clock.poll())
	height, err = clock.Height(s.ctx)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(100), height)
}

func (s *ClockTestSuite) TestEthClockRetriesNode() {
	s.config.Clock.BackoffMaxInterval = 10 * time.Millisecond

	node := &fakeBlockNumberer{}
	node.height.Store(7)
	node.failures.Store(2)
	clock := NewEthClock(s.config).WithClient(node)

	require.Nil(s.T(), clock.poll())
	require.Equal(s.T(), int64(3), node.calls.Load())

	height, err := clock.Height(s.ctx)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(7), height)
}

func (s *ClockTestSuite) TestEthClockStartHeight() {
	node := &fakeBlockNumberer{}
	node.height.Store(5)
	clock := NewEthClock(s.config).
		WithClient(node).
		WithStartHeight(50)

	require.Nil(s.T(), clock.poll())
	height, err := clock.Height(s.ctx)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(50), height)
}

func (s *ClockTestSuite) TestClockStorePersistsHeight() {
	height, err := LoadClockHeight(s.ctx, s.db)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(0), height)

	input := make(chan int64)
	store := NewClockStore(s.config).
		WithInputChannel(input).
		WithDb(s.db)
	require.Nil(s.T(), store.Start())

	input <- 5
	input <- 7
	input <- 6

	store.StopWait()

	height, err = LoadClockHeight(s.ctx, s.db)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(7), height)

	// Saved height never decreases
	store = NewClockStore(s.config).WithDb(s.db)
	store.lastHeight = 3
	_, err = store.flush(nil)
	require.Nil(s.T(), err)

	height, err = LoadClockHeight(s.ctx, s.db)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(7), height)
}
