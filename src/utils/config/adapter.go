package config

import (
	"time"

	"github.com/spf13/viper"
)

// Token adapter that moves value once a sync is approved
type Adapter struct {
	// Transfer endpoint. Empty means transfers are only logged.
	Url string

	// Bearer token sent to the adapter
	ApiKey string

	// Timeout of a single HTTP request
	RequestTimeout time.Duration

	// Max requests per second sent to the adapter
	MaxRequestsPerSecond int

	// Retry configuration, 0 elapsed time means no limit
	BackoffMaxElapsedTime time.Duration
	BackoffMaxInterval    time.Duration
}

func setAdapterDefaults() {
	viper.SetDefault("Adapter.Url", "")
	viper.SetDefault("Adapter.ApiKey", "")
	viper.SetDefault("Adapter.RequestTimeout", "10s")
	viper.SetDefault("Adapter.MaxRequestsPerSecond", "20")
	viper.SetDefault("Adapter.BackoffMaxElapsedTime", "20s")
	viper.SetDefault("Adapter.BackoffMaxInterval", "5s")
}
