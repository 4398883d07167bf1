// internal/handlers/profile.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/atommarket/atommarket-backend/internal/chain"
	"github.com/atommarket/atommarket-backend/internal/middleware"
	"github.com/atommarket/atommarket-backend/internal/services"
	"github.com/atommarket/atommarket-backend/internal/utils"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GET /profiles/:address
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	address := c.Param("address")
	if !utils.IsValidAddress(address) {
		utils.BadRequestResponse(c, "invalid account address", nil)
		return
	}

	profile, err := h.profileService.Fetch(c.Request.Context(), address)
	if err != nil {
		utils.UpstreamErrorResponse(c, err.Error())
		return
	}
	if profile == nil {
		utils.NotFoundResponse(c, "no profile for this address")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"profile_name":      profile.ProfileName,
		"transaction_count": profile.TransactionCount,
		"ratings":           profile.Ratings,
		"rating_count":      profile.RatingCount,
		"average_rating":    profile.AverageRating(),
	})
}

// POST /profiles
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req services.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid profile payload", nil)
		return
	}

	result, err := h.profileService.Create(c.Request.Context(), middleware.SessionAddress(c), &req)
	if err != nil {
		respondProfileError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

// DELETE /profiles
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	result, err := h.profileService.Delete(c.Request.Context(), middleware.SessionAddress(c))
	if err != nil {
		respondProfileError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

func respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chain.ErrNoSigner):
		utils.UnauthorizedResponse(c, err.Error())
	default:
		utils.UpstreamErrorResponse(c, err.Error())
	}
}
