package logger

import (
	"os"

	"github.com/warp-contracts/token-syncer/src/utils/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

func init() {
	logger = logrus.New()
}

func Init(config *config.Config) (err error) {
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return
	}
	logger.SetLevel(level)
	logger.SetOutput(os.Stdout)

	formatter := &logrus.TextFormatter{
		FullTimestamp: true,
	}
	logger.SetFormatter(formatter)

	return nil
}

func NewSublogger(tag string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{"module": "warp." + tag})
}

// Logger of a REST request
func LOG(c *gin.Context) *logrus.Entry {
	return NewSublogger("rest").
		WithField("method", c.Request.Method).
		WithField("path", c.FullPath())
}

// Logs the error and aborts the request with the given status
func LOGE(c *gin.Context, err error, status int) *logrus.Entry {
	c.AbortWithStatus(status)
	entry := LOG(c).WithField("status", status)
	if err != nil {
		entry = entry.WithError(err)
	}
	return entry
}
