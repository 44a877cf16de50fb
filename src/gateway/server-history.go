package gateway

import (
	"errors"
	"net/http"
	"time"

	"github.com/warp-contracts/token-syncer/src/gateway/response"
	. "github.com/warp-contracts/token-syncer/src/utils/logger"

	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func (self *Server) onGetHistory(c *gin.Context) {
	history, err := self.synchronizer.GetSyncHistory(c.Request.Context(), c.Param("sync_id"))
	if err != nil {
		self.onError(c, err)
		return
	}
	if history == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (self *Server) onGetHistoryByToken(c *gin.Context) {
	tokenId := c.Query("token")
	if tokenId == "" {
		self.onBadRequest(c, errors.New("missing token query parameter"))
		return
	}

	history, err := self.synchronizer.GetSyncHistoryByToken(c.Request.Context(), tokenId)
	if err != nil {
		self.onError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.History{History: history})
}

// Pushes every new history record to the websocket client
func (self *Server) onStreamHistory(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		LOG(c).WithError(err).Debug("Failed to accept websocket")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	records := self.synchronizer.Subscribe()
	defer self.synchronizer.Unsubscribe(records)

	self.monitor.GetReport().Gateway.State.StreamSubscribers.Inc()
	defer self.monitor.GetReport().Gateway.State.StreamSubscribers.Dec()

	// Client messages are ignored, reading only detects the disconnect
	ctx := conn.CloseRead(self.Ctx)

	interval := self.Config.Gateway.StreamPingInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ping := time.NewTicker(interval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "")
			return

		case history, ok := <-records:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "")
				return
			}
			err = wsjson.Write(ctx, conn, history)
			if err != nil {
				LOG(c).WithError(err).Debug("Failed to write to websocket")
				return
			}

		case <-ping.C:
			err = conn.Ping(ctx)
			if err != nil {
				LOG(c).WithError(err).Debug("Websocket ping failed")
				return
			}
		}
	}
}
