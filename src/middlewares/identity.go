package middlewares

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdentityMiddleware trusts the authenticated identity forwarded by the API
// gateway. Session management itself lives outside this service.
func IdentityMiddleware(ctx *gin.Context) {
	uidHeader := ctx.Request.Header.Get("X-User-ID")
	if uidHeader == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	uid, err := strconv.Atoi(uidHeader)
	if err != nil || uid < 1 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid identity"})
		return
	}
	ctx.Set("id", uint(uid))

	if tenant := ctx.Request.Header.Get("X-Tenant-ID"); tenant != "" {
		if tid, err := uuid.Parse(tenant); err == nil {
			ctx.Set("tenant_id", tid.String())
		}
	}
	ctx.Next()
}
