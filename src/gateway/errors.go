package gateway

import (
	"net/http"

	"github.com/warp-contracts/token-syncer/src/gateway/response"
	"github.com/warp-contracts/token-syncer/src/synchronizer"
	. "github.com/warp-contracts/token-syncer/src/utils/logger"

	"github.com/gin-gonic/gin"
)

var statusByCode = map[synchronizer.Code]int{
	synchronizer.CodeNotAuthorized:          http.StatusForbidden,
	synchronizer.CodeTokenNotRegistered:     http.StatusNotFound,
	synchronizer.CodeTokenAlreadyRegistered: http.StatusConflict,
	synchronizer.CodeInvalidTokenPair:       http.StatusBadRequest,
	synchronizer.CodeInvalidAmount:          http.StatusBadRequest,
	synchronizer.CodeInvalidInput:           http.StatusBadRequest,
	synchronizer.CodeSyncFailed:             http.StatusUnprocessableEntity,
	synchronizer.CodeSyncInProgress:         http.StatusConflict,
}

// Responds with the error code, infrastructure errors are hidden behind 500
func (self *Server) onError(c *gin.Context, err error) {
	code := synchronizer.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		self.monitor.GetReport().Gateway.Errors.DbError.Inc()
		LOGE(c, err, http.StatusInternalServerError).Error("Request failed")
		return
	}

	LOG(c).WithError(err).WithField("status", status).Debug("Request rejected")
	c.AbortWithStatusJSON(status, response.Error{
		Code:    string(code),
		Message: err.Error(),
	})
}

func (self *Server) onBadRequest(c *gin.Context, err error) {
	LOG(c).WithError(err).Debug("Failed to parse request")
	c.AbortWithStatusJSON(http.StatusBadRequest, response.Error{
		Code:    string(synchronizer.CodeInvalidInput),
		Message: err.Error(),
	})
}
