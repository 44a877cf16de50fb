package synchronizer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/warp-contracts/token-syncer/src/utils/config"
	"github.com/warp-contracts/token-syncer/src/utils/logger"
	"github.com/warp-contracts/token-syncer/src/utils/task"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Registry is a read-only source of known tokens. Consulted when a pair is configured.
type Registry interface {
	IsRegistered(ctx context.Context, tokenId string) (bool, error)
}

// Registry that knows every token
type AllowAllRegistry struct{}

func (AllowAllRegistry) IsRegistered(ctx context.Context, tokenId string) (bool, error) {
	return true, nil
}

// Registry queried over HTTP, GET <url>/tokens/<id> answers 200 or 404
type HttpRegistry struct {
	config *config.Registry
	log    *logrus.Entry
	client *resty.Client
	cache  *cache.Cache
}

func NewHttpRegistry(config *config.Registry) (self *HttpRegistry) {
	self = new(HttpRegistry)
	self.config = config
	self.log = logger.NewSublogger("http-registry")
	self.cache = cache.New(config.CacheTTL, 2*config.CacheTTL)
	self.client = resty.New().
		SetBaseURL(config.Url).
		SetTimeout(config.RequestTimeout).
		SetHeader("User-Agent", "warp.cc/token-syncer").
		SetRetryCount(0)
	return
}

func (self *HttpRegistry) IsRegistered(ctx context.Context, tokenId string) (ok bool, err error) {
	if cached, found := self.cache.Get(tokenId); found {
		return cached.(bool), nil
	}

	err = task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(self.config.BackoffMaxElapsedTime).
		WithMaxInterval(self.config.BackoffMaxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			self.log.WithError(err).WithField("token_id", tokenId).Warn("Registry lookup failed, retrying")
			return err
		}).
		Run(func() error {
			resp, err := self.client.R().
				SetContext(ctx).
				SetPathParam("id", tokenId).
				Get("/tokens/{id}")
			if err != nil {
				return err
			}
			switch {
			case resp.IsSuccess():
				ok = true
			case resp.StatusCode() == http.StatusNotFound:
				ok = false
			case resp.StatusCode() >= 500:
				return fmt.Errorf("unexpected status: %s", resp.Status())
			default:
				return backoff.Permanent(fmt.Errorf("unexpected status: %s", resp.Status()))
			}
			return nil
		})
	if err != nil {
		return
	}

	self.cache.SetDefault(tokenId, ok)
	return
}
