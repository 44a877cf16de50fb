package config

import (
	"github.com/spf13/viper"
)

// Runtime profiling exposed by the monitoring server
type Profiler struct {
	// Are /debug/pprof endpoints registered
	Enabled bool

	// Passed to runtime.SetBlockProfileRate, 0 disables block profiling
	BlockProfileRate int

	// Passed to runtime.SetMutexProfileFraction, 0 disables contention profiling.
	// Shows contention on the synchronizer's writer mutex.
	MutexProfileFraction int
}

func setProfilerDefaults() {
	viper.SetDefault("Profiler.Enabled", "true")
	viper.SetDefault("Profiler.BlockProfileRate", "50")
	viper.SetDefault("Profiler.MutexProfileFraction", "10")
}
