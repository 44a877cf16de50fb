package gateway

import (
	"net/http"

	"github.com/warp-contracts/token-syncer/src/gateway/request"
	"github.com/warp-contracts/token-syncer/src/gateway/response"

	"github.com/gin-gonic/gin"
)

func (self *Server) onAddOperator(c *gin.Context) {
	operator := c.Param("operator")
	err := self.synchronizer.AddOperator(c.Request.Context(), caller(c), operator)
	if err != nil {
		self.onError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OperatorStatus{Operator: operator, IsOperator: true})
}

func (self *Server) onRemoveOperator(c *gin.Context) {
	operator := c.Param("operator")
	err := self.synchronizer.RemoveOperator(c.Request.Context(), caller(c), operator)
	if err != nil {
		self.onError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OperatorStatus{Operator: operator, IsOperator: false})
}

func (self *Server) onCheckOperator(c *gin.Context) {
	operator := c.Param("operator")
	isOperator, err := self.synchronizer.CheckOperatorStatus(c.Request.Context(), operator)
	if err != nil {
		self.onError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.OperatorStatus{Operator: operator, IsOperator: isOperator})
}

func (self *Server) onTransferOwnership(c *gin.Context) {
	var in request.TransferOwnership
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.onBadRequest(c, err)
		return
	}

	err = self.synchronizer.TransferOwnership(c.Request.Context(), caller(c), in.NewOwner)
	if err != nil {
		self.onError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
