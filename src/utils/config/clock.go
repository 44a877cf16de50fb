package config

import (
	"time"

	"github.com/spf13/viper"
)

// Source of the logical clock (block height)
type Clock struct {
	// JSON-RPC url of an EVM node. Empty means a local counter advanced on every operation.
	EthRpcUrl string

	// How often the block number is polled
	PollInterval time.Duration

	// Max time between failed retries to fetch the block number
	BackoffMaxInterval time.Duration
}

func setClockDefaults() {
	viper.SetDefault("Clock.EthRpcUrl", "")
	viper.SetDefault("Clock.PollInterval", "3s")
	viper.SetDefault("Clock.BackoffMaxInterval", "10s")
}
