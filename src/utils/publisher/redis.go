package publisher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding"
	"errors"
	"fmt"
	"time"

	"github.com/warp-contracts/token-syncer/src/utils/config"
	"github.com/warp-contracts/token-syncer/src/utils/monitoring"
	"github.com/warp-contracts/token-syncer/src/utils/task"

	"github.com/redis/go-redis/v9"
)

// Forwards messages to a Redis pub/sub channel
type RedisPublisher[In encoding.BinaryMarshaler] struct {
	*task.Task

	redisConfig     config.Redis
	publisherConfig config.Publisher

	monitor monitoring.Monitor

	client      *redis.Client
	channelName string
	input       chan In
}

func NewRedisPublisher[In encoding.BinaryMarshaler](config *config.Config, name string) (self *RedisPublisher[In]) {
	self = new(RedisPublisher[In])

	self.redisConfig = config.Redis
	self.publisherConfig = config.Publisher
	self.channelName = config.Publisher.ChannelName

	self.Task = task.NewTask(config, name).
		WithSubtaskFunc(self.run).
		WithOnBeforeStart(self.connect).
		WithOnAfterStop(self.disconnect).
		WithWorkerPool(config.Publisher.MaxWorkers, config.Publisher.MaxQueueSize)

	return
}

func (self *RedisPublisher[In]) WithInputChannel(v chan In) *RedisPublisher[In] {
	self.input = v
	return self
}

func (self *RedisPublisher[In]) WithChannelName(v string) *RedisPublisher[In] {
	self.channelName = v
	return self
}

func (self *RedisPublisher[In]) WithMonitor(monitor monitoring.Monitor) *RedisPublisher[In] {
	self.monitor = monitor
	return self
}

// Overrides the connection, used in tests
func (self *RedisPublisher[In]) WithClient(client *redis.Client) *RedisPublisher[In] {
	self.client = client
	return self
}

func (self *RedisPublisher[In]) disconnect() {
	err := self.client.Close()
	if err != nil {
		self.Log.WithError(err).Error("Failed to close connection")
	}
}

func (self *RedisPublisher[In]) connect() (err error) {
	if self.client == nil {
		opts := redis.Options{
			ClientName:      fmt.Sprintf("warp.cc/%s", self.Name),
			Addr:            fmt.Sprintf("%s:%d", self.redisConfig.Host, self.redisConfig.Port),
			Password:        self.redisConfig.Password,
			Username:        self.redisConfig.User,
			DB:              self.redisConfig.DB,
			MinIdleConns:    self.redisConfig.MinIdleConns,
			MaxIdleConns:    self.redisConfig.MaxIdleConns,
			ConnMaxIdleTime: self.redisConfig.ConnMaxIdleTime,
			PoolSize:        self.redisConfig.MaxOpenConns,
			ConnMaxLifetime: self.redisConfig.ConnMaxLifetime,
		}

		if self.redisConfig.ClientCert != "" && self.redisConfig.ClientKey != "" && self.redisConfig.CaCert != "" {
			cert, err := tls.X509KeyPair([]byte(self.redisConfig.ClientCert), []byte(self.redisConfig.ClientKey))
			if err != nil {
				self.Log.WithError(err).Error("Failed to load client cert")
				return err
			}

			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM([]byte(self.redisConfig.CaCert)) {
				return errors.New("failed to append CA cert to pool")
			}

			opts.TLSConfig = &tls.Config{
				RootCAs:      caCertPool,
				Certificates: []tls.Certificate{cert},
			}
		}

		self.client = redis.NewClient(&opts)
	}

	ctx, cancel := context.WithTimeout(self.Ctx, 30*time.Second)
	defer cancel()
	err = self.client.Ping(ctx).Err()
	if err != nil {
		self.Log.WithError(err).Error("Failed to ping Redis")
		return
	}

	return
}

func (self *RedisPublisher[In]) run() (err error) {
	for {
		select {
		case <-self.StopChannel:
			return nil
		case payload, ok := <-self.input:
			if !ok {
				return nil
			}
			self.SubmitToWorker(func() { self.publish(payload) })
		}
	}
}

func (self *RedisPublisher[In]) publish(payload In) {
	// Encoded once, retries send the same bytes
	data, err := payload.MarshalBinary()
	if err != nil {
		self.Log.WithError(err).Error("Failed to encode message, skipping")
		if self.monitor != nil {
			self.monitor.GetReport().RedisPublisher.Errors.Encode.Inc()
		}
		return
	}

	err = task.NewRetry().
		WithContext(self.Ctx).
		WithMaxElapsedTime(self.publisherConfig.MaxElapsedTime).
		WithMaxInterval(self.publisherConfig.MaxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			self.Log.WithError(err).Warn("Failed to publish message, retrying")
			if self.monitor != nil {
				self.monitor.GetReport().RedisPublisher.Errors.Publish.Inc()
			}
			return err
		}).
		Run(func() error {
			return self.client.Publish(self.Ctx, self.channelName, data).Err()
		})
	if err != nil {
		self.Log.WithError(err).Error("Failed to publish message, giving up")
		if self.monitor != nil {
			self.monitor.GetReport().RedisPublisher.Errors.PersistentFailure.Inc()
		}
		return
	}

	if self.monitor != nil {
		self.monitor.GetReport().RedisPublisher.State.MessagesPublished.Inc()
		self.monitor.GetReport().RedisPublisher.State.BytesPublished.Add(uint64(len(data)))
		self.monitor.GetReport().RedisPublisher.State.LastSuccessfulMessageTimestamp.Store(time.Now().Unix())
	}
}
