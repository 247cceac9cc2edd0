package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "classifieds-api/internal/transport/http/response"
)

// RecoveryResponse 作为 ginzap.CustomRecoveryWithZap 的回调，日志由 ginzap 负责
func RecoveryResponse(c *gin.Context, _ any) {
	resp.Abort(c, http.StatusInternalServerError)
}
