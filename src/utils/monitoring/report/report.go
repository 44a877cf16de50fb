package report

type Report struct {
	Run            *RunReport            `json:"run,omitempty"`
	Synchronizer   *SynchronizerReport   `json:"synchronizer,omitempty"`
	Clock          *ClockReport          `json:"clock,omitempty"`
	Gateway        *GatewayReport        `json:"gateway,omitempty"`
	RedisPublisher *RedisPublisherReport `json:"redis_publisher,omitempty"`
}
