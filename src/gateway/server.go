package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/warp-contracts/token-syncer/src/synchronizer"
	"github.com/warp-contracts/token-syncer/src/utils/config"
	. "github.com/warp-contracts/token-syncer/src/utils/logger"
	"github.com/warp-contracts/token-syncer/src/utils/monitoring"
	"github.com/warp-contracts/token-syncer/src/utils/task"

	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwt"
	"github.com/teivah/onecontext"
	"golang.org/x/time/rate"
)

const (
	callerKey    = "caller"
	callerHeader = "X-Caller"
)

// REST API exposing synchronizer operations
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	synchronizer *synchronizer.Synchronizer
	monitor      monitoring.Monitor
	limiter      *rate.Limiter
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "gateway").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	self.limiter = rate.NewLimiter(rate.Limit(config.Gateway.RateLimit), config.Gateway.RateBurst)

	gin.SetMode(gin.ReleaseMode)
	if config.IsDevelopment {
		gin.SetMode(gin.DebugMode)
	}
	self.Router = gin.New()
	self.Router.Use(gin.Recovery(), self.onRateLimit, self.onCaller)

	v1 := self.Router.Group("v1")
	{
		// Streaming isn't bound by the request timeout
		v1.GET("history/stream", self.onStreamHistory)

		api := v1.Group("", self.onTimeout)

		api.POST("tokens", self.onRegisterToken)
		api.PUT("tokens/:token_id/status", self.onUpdateTokenStatus)
		api.GET("tokens/:token_id", self.onGetToken)

		api.PUT("pairs", self.onConfigurePair)
		api.GET("pairs/:primary/:secondary", self.onGetPair)

		api.POST("syncs", self.onInitiateSync)
		api.GET("syncs", self.onListPendingSyncs)
		api.GET("syncs/:sync_id", self.onGetSync)
		api.POST("syncs/:sync_id/execute", self.onExecuteSync)
		api.POST("syncs/:sync_id/cancel", self.onCancelSync)

		api.GET("history", self.onGetHistoryByToken)
		api.GET("history/:sync_id", self.onGetHistory)

		api.POST("operators/:operator", self.onAddOperator)
		api.DELETE("operators/:operator", self.onRemoveOperator)
		api.GET("operators/:operator", self.onCheckOperator)

		api.PUT("owner", self.onTransferOwnership)
	}

	self.httpServer = &http.Server{
		Addr:    config.Gateway.RESTListenAddress,
		Handler: self.Router,
	}

	return
}

func (self *Server) WithSynchronizer(v *synchronizer.Synchronizer) *Server {
	self.synchronizer = v
	return self
}

func (self *Server) WithMonitor(v monitoring.Monitor) *Server {
	self.monitor = v
	return self
}

func (self *Server) run() (err error) {
	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}

func (self *Server) onRateLimit(c *gin.Context) {
	if !self.limiter.Allow() {
		self.monitor.GetReport().Gateway.Errors.RateLimited.Inc()
		LOGE(c, nil, http.StatusTooManyRequests).Debug("Rate limited")
		return
	}
	self.monitor.GetReport().Gateway.State.RequestsHandled.Inc()
	c.Next()
}

// Requests end when the client disconnects, the timeout passes or the server stops
func (self *Server) onTimeout(c *gin.Context) {
	ctx, cancel := onecontext.Merge(c.Request.Context(), self.Ctx)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, self.Config.Gateway.ServerRequestTimeout)
	defer cancelTimeout()

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// Identifies the caller. With a JWT secret configured the identity is the token's subject,
// otherwise it's taken from the X-Caller header.
func (self *Server) onCaller(c *gin.Context) {
	if self.Config.Gateway.JwtSecret == "" {
		c.Set(callerKey, strings.TrimSpace(c.GetHeader(callerHeader)))
		c.Next()
		return
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		// Anonymous, allowed only for reads
		c.Set(callerKey, "")
		c.Next()
		return
	}

	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	token, err := jwt.Parse([]byte(raw),
		jwt.WithVerify(jwa.HS256, []byte(self.Config.Gateway.JwtSecret)),
		jwt.WithValidate(true),
	)
	if err != nil || token.Subject() == "" {
		self.monitor.GetReport().Gateway.Errors.Unauthenticated.Inc()
		LOGE(c, err, http.StatusUnauthorized).Debug("Invalid token")
		return
	}

	c.Set(callerKey, token.Subject())
	c.Next()
}

func caller(c *gin.Context) string {
	return c.GetString(callerKey)
}
