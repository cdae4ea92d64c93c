package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const clientCtxKey = "client"

func (h *Handler) clientMiddleware(c *gin.Context) {
	token, msg := bearerToken(c)
	if msg != "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": msg,
		})
		return
	}

	client, err := h.services.ParseToken(token)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_token_rejected", "err", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(clientCtxKey, client)
	c.Next()
}

// bearerToken extracts the token from the Authorization header, falling back to
// the token query parameter. msg is non-empty when neither carries a usable token.
func bearerToken(c *gin.Context) (token, msg string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if q := strings.TrimSpace(c.Query("token")); q != "" {
			return q, ""
		}
		return "", "missing Authorization header"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", "invalid Authorization header format"
	}
	return strings.TrimSpace(parts[1]), ""
}

// clientName returns the authenticated client for the request, if any.
func clientName(c *gin.Context) string {
	return c.GetString(clientCtxKey)
}
