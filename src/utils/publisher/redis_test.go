package publisher

import (
	"errors"
	"testing"

	"github.com/warp-contracts/token-syncer/src/utils/config"
	monitor_synchronizer "github.com/warp-contracts/token-syncer/src/utils/monitoring/synchronizer"

	"github.com/stretchr/testify/require"
)

type brokenPayload struct{}

func (brokenPayload) MarshalBinary() ([]byte, error) {
	return nil, errors.New("unsupported value")
}

func TestPublishSkipsUnencodableMessage(t *testing.T) {
	monitor := monitor_synchronizer.NewMonitor()
	publisher := NewRedisPublisher[brokenPayload](config.Default(), "redis-publisher").
		WithMonitor(monitor)

	// Never reaches the client
	publisher.publish(brokenPayload{})

	report := monitor.GetReport().RedisPublisher
	require.Equal(t, uint64(1), report.Errors.Encode.Load())
	require.Equal(t, uint64(0), report.Errors.Publish.Load())
	require.Equal(t, uint64(0), report.State.MessagesPublished.Load())
}
