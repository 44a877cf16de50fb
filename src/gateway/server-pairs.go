package gateway

import (
	"errors"
	"net/http"

	"github.com/warp-contracts/token-syncer/src/gateway/request"

	"github.com/gin-gonic/gin"
)

func (self *Server) onConfigurePair(c *gin.Context) {
	var in request.ConfigurePair
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.onBadRequest(c, err)
		return
	}
	if in.Enabled == nil {
		// Configuration replaces the whole pair, nothing is defaulted
		self.onBadRequest(c, errors.New("missing enabled flag"))
		return
	}

	pair, err := self.synchronizer.ConfigureSyncPair(c.Request.Context(), caller(c),
		in.PrimaryToken, in.SecondaryToken, *in.Enabled, in.ConversionRate)
	if err != nil {
		self.onError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (self *Server) onGetPair(c *gin.Context) {
	pair, err := self.synchronizer.GetSyncPairDetails(c.Request.Context(), c.Param("primary"), c.Param("secondary"))
	if err != nil {
		self.onError(c, err)
		return
	}
	if pair == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	c.JSON(http.StatusOK, pair)
}
