package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger は処理したリクエストを構造化ログに記録するGinミドルウェアを返す。
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
			"request_id": GetRequestID(c),
		})

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("リクエスト処理でエラーが発生しました")
		case status >= 400:
			entry.Warn("リクエストを処理しました")
		default:
			entry.Info("リクエストを処理しました")
		}
	}
}
