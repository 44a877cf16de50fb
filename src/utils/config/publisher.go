package config

import (
	"time"

	"github.com/spf13/viper"
)

// Forwarding of resolved history records to Redis
type Publisher struct {
	// Redis pub/sub channel name
	ChannelName string

	// Publish backoff configuration, 0 is no limit
	MaxElapsedTime time.Duration
	MaxInterval    time.Duration

	// Num of workers that publish messages
	MaxWorkers int

	// Max num of requests in worker's queue
	MaxQueueSize int
}

func setPublisherDefaults() {
	viper.SetDefault("Publisher.ChannelName", "token-syncer.history")
	viper.SetDefault("Publisher.MaxElapsedTime", "10m")
	viper.SetDefault("Publisher.MaxInterval", "60s")
	viper.SetDefault("Publisher.MaxWorkers", "5")
	viper.SetDefault("Publisher.MaxQueueSize", "100")
}
