package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adboardhq/adboard/repository"
	"github.com/adboardhq/adboard/services"
	"github.com/adboardhq/adboard/utils"
)

// AuthController handles registration, login and the password reset flow.
type AuthController struct {
	auth  services.AuthService
	users repository.UserRepository
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(auth services.AuthService, users repository.UserRepository) *AuthController {
	return &AuthController{auth: auth, users: users}
}

// Register creates an account and signs the new user in.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Confirm  string `json:"confirm"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	if req.Confirm != "" && req.Confirm != req.Password {
		utils.Error(ctx, http.StatusBadRequest, 40002, "passwords do not match")
		return
	}

	user, err := a.auth.Register(ctx.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Login verifies credentials and returns a bearer token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	token, user, err := a.auth.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(72 * time.Hour)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's own account.
func (a *AuthController) Me(ctx *gin.Context) {
	principal := currentPrincipal(ctx)
	if !principal.Authenticated() {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	user, err := a.users.FindByID(ctx.Request.Context(), principal.ID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40403, "user not found")
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// RequestPasswordReset mails a reset code to the given address. The response
// does not reveal whether the address is registered.
func (a *AuthController) RequestPasswordReset(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}

	if err := a.auth.RequestPasswordReset(ctx.Request.Context(), req.Email); err != nil {
		failFromService(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"message": "if the address is registered, a reset code was sent"})
}

// ResetPassword exchanges a mailed reset code for a new password.
func (a *AuthController) ResetPassword(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid request payload")
		return
	}

	if err := a.auth.ResetPassword(ctx.Request.Context(), req.Email, req.Token, req.Password); err != nil {
		if err == services.ErrPermissionDenied {
			utils.Error(ctx, http.StatusBadRequest, 40006, "invalid or expired reset code")
			return
		}
		failFromService(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"message": "password updated"})
}
