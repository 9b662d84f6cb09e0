package api

import (
	"errors"
	"net/http"

	"github.com/SlpAus/sistatistics-backend/internal/platform/apierr"
	"github.com/SlpAus/sistatistics-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

// AdminSecretHeader 是管理接口携带密钥的请求头
const AdminSecretHeader = "X-Admin-Secret"

var errAdminSecret = errors.New("missing or invalid admin secret")

// RequireAdmin 校验管理密钥。verifier 为 nil 时（未配置密钥）拒绝所有管理请求。
func RequireAdmin(verifier *token.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !verifier.Verify(c.GetHeader(AdminSecretHeader)) {
			_ = c.Error(apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errAdminSecret))
			c.Abort()
			return
		}
		c.Next()
	}
}
