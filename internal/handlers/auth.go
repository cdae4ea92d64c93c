package handlers

import (
	"errors"
	"net/http"

	"fireplace_cli/internal/service"

	"github.com/gin-gonic/gin"
)

// tokenRequest is the body of POST /auth/token. An empty client means the
// default client configured through API_KEY_HASH.
type tokenRequest struct {
	Client string `json:"client" example:"kitchen-panel"`
	APIKey string `json:"api_key" binding:"required" example:"s3cret"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}

// @Summary      Issue access token
// @Description  Exchanges an API key for a bearer token valid for one hour.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Client credentials"
// @Success      200   {object}  map[string]interface{}  "token, expires_in"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/token [post]
func (h *Handler) issueToken(c *gin.Context) {
	var input tokenRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.GenerateToken(input.Client, input.APIKey)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_token_failed", "client", input.Client, "err", err)
		}
		if errors.Is(err, service.ErrNoSigningSecret) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "token signing is not configured"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "expires_in": int(service.TokenTTL.Seconds())})
}
