package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AllowAllOrigins は全オリジンを許可することを表すオリジン指定。
const AllowAllOrigins = "*"

// CORS は指定されたオリジンからのクロスオリジンリクエストを許可するGinミドルウェアを返す。
// allowedOrigins に "*" を含む場合は全オリジンを許可し、全レスポンスに
// Access-Control-Allow-Origin: * を付与する。
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	originsSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == AllowAllOrigins {
			allowAll = true
			continue
		}
		originsSet[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Header("Access-Control-Allow-Origin", AllowAllOrigins)
			setPreflightHeaders(c)
		} else if _, ok := originsSet[origin]; ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			setPreflightHeaders(c)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func setPreflightHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, "+headerKeyRequestID)
	c.Header("Access-Control-Expose-Headers", headerKeyRequestID)
	c.Header("Access-Control-Max-Age", "86400")
}
