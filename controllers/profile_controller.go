package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adboardhq/adboard/services"
	"github.com/adboardhq/adboard/utils"
)

// ProfileController exposes per-user profiles. Every user has exactly one.
type ProfileController struct {
	profiles services.ProfileService
	posts    services.PostService
}

// NewProfileController creates a new ProfileController instance.
func NewProfileController(profiles services.ProfileService, posts services.PostService) *ProfileController {
	return &ProfileController{profiles: profiles, posts: posts}
}

// GetProfile returns a user's profile together with their ads.
func (p *ProfileController) GetProfile(ctx *gin.Context) {
	userID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid user id")
		return
	}

	profile, err := p.profiles.Get(ctx.Request.Context(), userID)
	if err != nil {
		failFromService(ctx, err)
		return
	}
	posts, err := p.posts.ListByAuthor(ctx.Request.Context(), userID)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"profile": profile, "posts": posts})
}

// UpdateProfile lets a user edit their own profile. Someone else's profile
// answers as if it did not exist.
func (p *ProfileController) UpdateProfile(ctx *gin.Context) {
	userID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid user id")
		return
	}

	var req struct {
		BirthDate *string `json:"birth_date"` // YYYY-MM-DD
		AvatarURL *string `json:"avatar_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}

	changes := services.ProfileChanges{AvatarURL: req.AvatarURL}
	if req.BirthDate != nil {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*req.BirthDate))
		if err != nil {
			utils.FieldErrors(ctx, 40002, []services.FieldError{{Field: "birth_date", Message: "expected YYYY-MM-DD"}})
			return
		}
		changes.BirthDate = &parsed
	}

	profile, err := p.profiles.Edit(ctx.Request.Context(), currentPrincipal(ctx), userID, changes)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"profile": profile})
}
