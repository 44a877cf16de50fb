package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Synchronizer struct {
	// Identity that owns the synchronizer when the database has no owner yet
	InitialOwner string

	// Divisor applied to amount * conversion rate
	ConversionRateScale int64

	// Number of blocks after which a pending operation expires, 0 disables expiry
	OperationTTL int64

	// Cron spec of the expiry sweep
	SweepSchedule string

	// Max time a single sweep may take
	SweepTimeout time.Duration

	// Capacity of the channel with resolved history records
	HistoryChannelSize int
}

func setSynchronizerDefaults() {
	viper.SetDefault("Synchronizer.InitialOwner", "")
	viper.SetDefault("Synchronizer.ConversionRateScale", "1")
	viper.SetDefault("Synchronizer.OperationTTL", "0")
	viper.SetDefault("Synchronizer.SweepSchedule", "@every 1m")
	viper.SetDefault("Synchronizer.SweepTimeout", "30s")
	viper.SetDefault("Synchronizer.HistoryChannelSize", "100")
}

func (self *Synchronizer) validate() error {
	if self.ConversionRateScale <= 0 {
		return errors.New("Synchronizer.ConversionRateScale must be positive")
	}
	if self.OperationTTL < 0 {
		return errors.New("Synchronizer.OperationTTL can't be negative")
	}
	return nil
}
