package synchronizer

import (
	"context"
	"fmt"

	"github.com/warp-contracts/token-syncer/src/utils/config"
	"github.com/warp-contracts/token-syncer/src/utils/logger"
	"github.com/warp-contracts/token-syncer/src/utils/task"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

// Value movement requested once a sync operation is approved
type TransferRequest struct {
	SyncId          string `json:"sync_id"`
	Initiator       string `json:"initiator"`
	PrimaryToken    string `json:"primary_token"`
	SecondaryToken  string `json:"secondary_token"`
	Amount          int64  `json:"amount"`
	ConvertedAmount int64  `json:"converted_amount"`
	Height          int64  `json:"height"`
}

// Adapter moves tokens between representations.
// An error aborts the sync and rolls back every change made by it.
type Adapter interface {
	Transfer(ctx context.Context, req *TransferRequest) error
}

// Adapter that only logs transfers
type NopAdapter struct {
	log *logrus.Entry
}

func NewNopAdapter() (self *NopAdapter) {
	self = new(NopAdapter)
	self.log = logger.NewSublogger("nop-adapter")
	return
}

func (self *NopAdapter) Transfer(ctx context.Context, req *TransferRequest) error {
	self.log.WithField("sync_id", req.SyncId).
		WithField("primary", req.PrimaryToken).
		WithField("secondary", req.SecondaryToken).
		WithField("amount", req.Amount).
		WithField("converted", req.ConvertedAmount).
		Info("Transfer")
	return nil
}

type transferResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}

// Posts transfers to an HTTP endpoint
type HttpAdapter struct {
	config  *config.Adapter
	log     *logrus.Entry
	client  *resty.Client
	limiter ratelimit.Limiter
}

func NewHttpAdapter(config *config.Adapter) (self *HttpAdapter) {
	self = new(HttpAdapter)
	self.config = config
	self.log = logger.NewSublogger("http-adapter")

	if config.MaxRequestsPerSecond > 0 {
		self.limiter = ratelimit.New(config.MaxRequestsPerSecond)
	} else {
		self.limiter = ratelimit.NewUnlimited()
	}

	self.client = resty.New().
		SetBaseURL(config.Url).
		SetTimeout(config.RequestTimeout).
		SetHeader("User-Agent", "warp.cc/token-syncer").
		SetRetryCount(0).
		OnAfterResponse(self.onStatusToError)

	if config.ApiKey != "" {
		self.client.SetAuthToken(config.ApiKey)
	}

	return
}

// Converts HTTP status to errors
func (self *HttpAdapter) onStatusToError(c *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	err := fmt.Errorf("unexpected status: %s", resp.Status())
	if resp.StatusCode() < 500 {
		// Repeating a rejected request won't change the answer
		return backoff.Permanent(err)
	}
	return err
}

func (self *HttpAdapter) Transfer(ctx context.Context, req *TransferRequest) (err error) {
	var out transferResponse
	err = task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(self.config.BackoffMaxElapsedTime).
		WithMaxInterval(self.config.BackoffMaxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			self.log.WithError(err).WithField("sync_id", req.SyncId).Warn("Transfer failed, retrying")
			return err
		}).
		Run(func() error {
			self.limiter.Take()
			_, err := self.client.R().
				SetContext(ctx).
				SetBody(req).
				SetResult(&out).
				ForceContentType("application/json").
				Post("")
			return err
		})
	if err != nil {
		return
	}

	if !out.Accepted {
		err = fmt.Errorf("transfer rejected: %s", out.Reason)
	}
	return
}
