package config

import (
	"time"

	"github.com/spf13/viper"
)

type Gateway struct {
	// REST API address of the synchronizer operations
	RESTListenAddress string

	// HMAC secret of caller JWTs. Empty means callers are identified by the X-Caller header.
	JwtSecret string

	// Max time a request may take
	ServerRequestTimeout time.Duration

	// Requests per second accepted by the API, burst allows short spikes
	RateLimit float64
	RateBurst int

	// How often websocket subscribers are pinged
	StreamPingInterval time.Duration
}

func setGatewayDefaults() {
	viper.SetDefault("Gateway.RESTListenAddress", "0.0.0.0:4000")
	viper.SetDefault("Gateway.JwtSecret", "")
	viper.SetDefault("Gateway.ServerRequestTimeout", "30s")
	viper.SetDefault("Gateway.RateLimit", "100")
	viper.SetDefault("Gateway.RateBurst", "200")
	viper.SetDefault("Gateway.StreamPingInterval", "30s")
}
