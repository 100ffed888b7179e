package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"teambot/internal/pkg/jwtutil"
	"teambot/internal/transport/http/response"
)

// AuthHandler mints development tokens. There is no user store; the
// caller supplies its own identity.
type AuthHandler struct {
	secret string
	expiry time.Duration
}

func NewAuthHandler(secret string, expiry time.Duration) *AuthHandler {
	return &AuthHandler{secret: secret, expiry: expiry}
}

type tokenRequest struct {
	UserID string `json:"userId" binding:"required"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "invalid request payload")
		return
	}

	token, err := jwtutil.GenerateToken(h.secret, h.expiry, req.UserID, req.Name, req.Email)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "token generation failed")
		return
	}

	response.OK(c, gin.H{
		"token":     token,
		"expiresIn": int(h.expiry.Seconds()),
	})
}
