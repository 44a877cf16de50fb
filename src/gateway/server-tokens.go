package gateway

import (
	"errors"
	"net/http"

	"github.com/warp-contracts/token-syncer/src/gateway/request"
	. "github.com/warp-contracts/token-syncer/src/utils/logger"

	"github.com/gin-gonic/gin"
)

func (self *Server) onRegisterToken(c *gin.Context) {
	var in request.RegisterToken
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.onBadRequest(c, err)
		return
	}

	err = self.synchronizer.RegisterTokenContract(c.Request.Context(), caller(c), in.TokenId, in.ContractAddress)
	if err != nil {
		self.onError(c, err)
		return
	}

	token, err := self.synchronizer.GetTokenContract(c.Request.Context(), in.TokenId)
	if err != nil {
		self.onError(c, err)
		return
	}

	LOG(c).WithField("token_id", in.TokenId).Debug("Token registered")
	c.JSON(http.StatusCreated, token)
}

func (self *Server) onUpdateTokenStatus(c *gin.Context) {
	var in request.UpdateTokenStatus
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.onBadRequest(c, err)
		return
	}
	if in.Active == nil {
		self.onBadRequest(c, errors.New("missing active flag"))
		return
	}

	tokenId := c.Param("token_id")
	err = self.synchronizer.UpdateTokenContractStatus(c.Request.Context(), caller(c), tokenId, *in.Active)
	if err != nil {
		self.onError(c, err)
		return
	}

	token, err := self.synchronizer.GetTokenContract(c.Request.Context(), tokenId)
	if err != nil {
		self.onError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

func (self *Server) onGetToken(c *gin.Context) {
	token, err := self.synchronizer.GetTokenContract(c.Request.Context(), c.Param("token_id"))
	if err != nil {
		self.onError(c, err)
		return
	}
	if token == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	c.JSON(http.StatusOK, token)
}
