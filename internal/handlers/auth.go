// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/atommarket/atommarket-backend/internal/config"
	"github.com/atommarket/atommarket-backend/internal/utils"
)

type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type sessionRequest struct {
	Address string `json:"address" binding:"required"`
}

// POST /auth/session
//
// Binds a session token to a wallet address. The token carries identity only;
// every execute is still signed out of band by the signing agent, which is
// where key ownership is actually enforced.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "address is required", nil)
		return
	}

	if !utils.IsValidAddress(req.Address) {
		utils.BadRequestResponse(c, "invalid account address", nil)
		return
	}

	token, err := utils.GenerateSessionToken(req.Address, h.cfg.JWT.SessionTTL)
	if err != nil {
		utils.InternalErrorResponse(c, "failed to create session")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"token":   token,
		"address": req.Address,
	})
}
