package config

import (
	"time"

	"github.com/spf13/viper"
)

// Read only token registry used to validate token ids
type Registry struct {
	// Base url of the registry. Empty accepts every token.
	Url string

	// Timeout of a single HTTP request
	RequestTimeout time.Duration

	// How long lookups are cached
	CacheTTL time.Duration

	// Retry configuration
	BackoffMaxElapsedTime time.Duration
	BackoffMaxInterval    time.Duration
}

func setRegistryDefaults() {
	viper.SetDefault("Registry.Url", "")
	viper.SetDefault("Registry.RequestTimeout", "5s")
	viper.SetDefault("Registry.CacheTTL", "5m")
	viper.SetDefault("Registry.BackoffMaxElapsedTime", "10s")
	viper.SetDefault("Registry.BackoffMaxInterval", "2s")
}
