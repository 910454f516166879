package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adboardhq/adboard/services"
	"github.com/adboardhq/adboard/utils"
)

// CategoryController manages the category tree the ads hang off.
type CategoryController struct {
	categories services.CategoryService
}

// NewCategoryController creates a new CategoryController instance.
func NewCategoryController(categories services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

// ListCategories returns all categories.
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:categories:list"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	categories, err := c.categories.List(ctx.Request.Context())
	if err != nil {
		failFromService(ctx, err)
		return
	}

	payload := gin.H{"items": categories, "count": len(categories)}
	utils.CacheSetJSON("cache:categories:list", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetCategory returns a single category.
func (c *CategoryController) GetCategory(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40045, "invalid category id")
		return
	}

	category, err := c.categories.Get(ctx.Request.Context(), id)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"category": category})
}

// CreateCategory adds a category.
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40046, "invalid request payload")
		return
	}

	category, err := c.categories.Create(ctx.Request.Context(), currentPrincipal(ctx), utils.Sanitize(req.Name))
	if err != nil {
		failFromService(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:categories:")
	utils.Success(ctx, gin.H{"category": category})
}

// DeleteCategory removes a category together with its ads and their comments.
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40047, "invalid category id")
		return
	}

	if err := c.categories.Delete(ctx.Request.Context(), currentPrincipal(ctx), id); err != nil {
		failFromService(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:categories:")
	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:detail:")
	utils.Success(ctx, gin.H{"message": "category deleted"})
}
