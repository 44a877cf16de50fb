package sync

import (
	"github.com/warp-contracts/token-syncer/src/gateway"
	"github.com/warp-contracts/token-syncer/src/synchronizer"
	"github.com/warp-contracts/token-syncer/src/utils/config"
	"github.com/warp-contracts/token-syncer/src/utils/model"
	"github.com/warp-contracts/token-syncer/src/utils/monitoring"
	monitor_synchronizer "github.com/warp-contracts/token-syncer/src/utils/monitoring/synchronizer"
	"github.com/warp-contracts/token-syncer/src/utils/publisher"
	"github.com/warp-contracts/token-syncer/src/utils/task"
)

type Controller struct {
	*task.Task

	Synchronizer *synchronizer.Synchronizer
}

// Main class that orchestrates the token synchronizer
// Setups the database, the clock, the REST API and history publishing
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller")

	// SQL database
	db, err := model.NewConnection(self.Ctx, config, "token-syncer")
	if err != nil {
		return
	}

	// Monitoring
	monitor := monitor_synchronizer.NewMonitor().
		WithMaxHistorySize(30)

	server := monitoring.NewServer(config).
		WithMonitor(monitor)

	// Owner from the configuration is used only on the first run
	ownership := synchronizer.NewOwnership(db)
	err = ownership.EnsureOwner(self.Ctx, config.Synchronizer.InitialOwner)
	if err != nil {
		self.Log.WithError(err).Error("Failed to set the initial owner")
		return
	}

	// Clock starts where it stopped last time
	startHeight, err := synchronizer.LoadClockHeight(self.Ctx, db)
	if err != nil {
		self.Log.WithError(err).Error("Failed to load clock height")
		return
	}

	var (
		clock       synchronizer.Clock
		clockTask   *task.Task
		clockOutput chan int64
	)
	if config.Clock.EthRpcUrl != "" {
		ethClock := synchronizer.NewEthClock(config).
			WithMonitor(monitor).
			WithStartHeight(startHeight)
		clock = ethClock
		clockTask = ethClock.Task
		clockOutput = ethClock.Output
	} else {
		counterClock := synchronizer.NewCounterClock(startHeight)
		clock = counterClock
		clockOutput = counterClock.Output
	}

	clockStore := synchronizer.NewClockStore(config).
		WithInputChannel(clockOutput).
		WithMonitor(monitor).
		WithDb(db)

	// External collaborators
	var adapter synchronizer.Adapter = synchronizer.NewNopAdapter()
	if config.Adapter.Url != "" {
		adapter = synchronizer.NewHttpAdapter(&config.Adapter)
	}

	var registry synchronizer.Registry = synchronizer.AllowAllRegistry{}
	if config.Registry.Url != "" {
		registry = synchronizer.NewHttpRegistry(&config.Registry)
	}

	self.Synchronizer = synchronizer.NewSynchronizer(config, db).
		WithGate(ownership).
		WithAdapter(adapter).
		WithRegistry(registry).
		WithClock(clock).
		WithMonitor(monitor)

	// Cancels expired operations
	sweeper := synchronizer.NewSweeper(config).
		WithSynchronizer(self.Synchronizer).
		WithMonitor(monitor)

	// REST API
	api := gateway.NewServer(config).
		WithSynchronizer(self.Synchronizer).
		WithMonitor(monitor)

	// Forwards history to Redis
	var publisherTask *task.Task
	if config.Redis.Enabled {
		redisPublisher := publisher.NewRedisPublisher[*model.SyncHistory](config, "redis-publisher").
			WithInputChannel(self.Synchronizer.Subscribe()).
			WithMonitor(monitor)
		publisherTask = redisPublisher.Task
	}

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(clockTask).
		WithSubtask(clockStore.Task).
		WithSubtask(sweeper.Task).
		WithConditionalSubtask(config.Redis.Enabled, publisherTask).
		WithSubtask(api.Task).
		WithOnAfterStop(self.Synchronizer.Close)

	return
}
