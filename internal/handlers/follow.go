// internal/handlers/follow.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/floramart/floramart-backend/internal/services"
	"github.com/floramart/floramart-backend/internal/utils"
)

type FollowHandler struct {
	followService *services.FollowService
}

func NewFollowHandler(followService *services.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// POST /sellers/:id/follow
func (h *FollowHandler) Follow(c *gin.Context) {
	followerID, ok := currentUserID(c)
	if !ok {
		return
	}
	sellerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.followService.Follow(followerID, sellerID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"following": true})
}

// DELETE /sellers/:id/follow
func (h *FollowHandler) Unfollow(c *gin.Context) {
	followerID, ok := currentUserID(c)
	if !ok {
		return
	}
	sellerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.followService.Unfollow(followerID, sellerID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"following": false})
}

// GET /sellers/:id/followers
func (h *FollowHandler) GetFollowers(c *gin.Context) {
	sellerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	followers, err := h.followService.GetFollowers(sellerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, followers)
}

// GET /users/following
func (h *FollowHandler) GetFollowing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sellers, err := h.followService.GetFollowedSellers(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, sellers)
}
