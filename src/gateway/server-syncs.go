package gateway

import (
	"net/http"

	"github.com/warp-contracts/token-syncer/src/gateway/request"
	"github.com/warp-contracts/token-syncer/src/gateway/response"
	"github.com/warp-contracts/token-syncer/src/synchronizer"
	. "github.com/warp-contracts/token-syncer/src/utils/logger"

	"github.com/gin-gonic/gin"
)

func (self *Server) onInitiateSync(c *gin.Context) {
	var in request.InitiateSync
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.onBadRequest(c, err)
		return
	}

	op, err := self.synchronizer.InitiateSync(c.Request.Context(), caller(c), synchronizer.InitiateRequest{
		SyncId:         in.SyncId,
		PrimaryToken:   in.PrimaryToken,
		SecondaryToken: in.SecondaryToken,
		Amount:         in.Amount,
	})
	if err != nil {
		self.onError(c, err)
		return
	}

	LOG(c).WithField("sync_id", op.SyncId).Debug("Sync initiated")
	c.JSON(http.StatusCreated, op)
}

func (self *Server) onListPendingSyncs(c *gin.Context) {
	ops, err := self.synchronizer.ListPendingSyncs(c.Request.Context())
	if err != nil {
		self.onError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.PendingSyncs{Syncs: ops})
}

func (self *Server) onGetSync(c *gin.Context) {
	op, err := self.synchronizer.GetSyncOperation(c.Request.Context(), c.Param("sync_id"))
	if err != nil {
		self.onError(c, err)
		return
	}
	if op == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	c.JSON(http.StatusOK, op)
}

func (self *Server) onExecuteSync(c *gin.Context) {
	history, err := self.synchronizer.ExecuteSync(c.Request.Context(), caller(c), c.Param("sync_id"))
	if err != nil {
		self.onError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (self *Server) onCancelSync(c *gin.Context) {
	history, err := self.synchronizer.CancelSync(c.Request.Context(), caller(c), c.Param("sync_id"))
	if err != nil {
		self.onError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
