package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adboardhq/adboard/middleware"
	"github.com/adboardhq/adboard/services"
	"github.com/adboardhq/adboard/utils"
)

// currentPrincipal builds the acting principal from the values the auth
// middleware stored in the context. Unauthenticated requests yield the
// anonymous principal.
func currentPrincipal(ctx *gin.Context) services.Principal {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return services.Anonymous
	}
	userID, ok := value.(uint)
	if !ok {
		return services.Anonymous
	}
	username, _ := ctx.Get(middleware.ContextUsernameKey)
	name, _ := username.(string)
	return services.Principal{ID: userID, Username: name}
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// failFromService maps the service error taxonomy onto HTTP responses.
// A foreign profile deliberately reads as missing rather than forbidden,
// so the endpoint does not confirm the profile exists.
func failFromService(ctx *gin.Context, err error) {
	if ve, ok := services.IsValidation(err); ok {
		utils.FieldErrors(ctx, 40002, ve.Fields)
		return
	}
	switch {
	case err == services.ErrNotFound:
		utils.Error(ctx, http.StatusNotFound, 40401, "resource not found")
	case err == services.ErrNotYourProfile:
		utils.Error(ctx, http.StatusNotFound, 40402, "resource not found")
	case err == services.ErrNotAuthenticated:
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	case err == services.ErrPermissionDenied:
		utils.Error(ctx, http.StatusForbidden, 40310, "permission denied")
	case err == services.ErrInvalidCredentials:
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
	case err == services.ErrUsernameTaken:
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
	case err == services.ErrEmailTaken:
		utils.Error(ctx, http.StatusConflict, 40902, "email address already in use")
	default:
		utils.Logger.Error("service call failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}
