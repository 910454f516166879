package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adboardhq/adboard/config"
	"github.com/adboardhq/adboard/services"
	"github.com/adboardhq/adboard/utils"
)

// PostController manages the ad lifecycle and the comments under each ad.
type PostController struct {
	posts    services.PostService
	comments services.CommentService
}

// NewPostController creates a new PostController instance.
func NewPostController(posts services.PostService, comments services.CommentService) *PostController {
	return &PostController{posts: posts, comments: comments}
}

type postRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	CategoryID  uint     `json:"category_id"`
	Price       *float64 `json:"price"`
}

// CreatePost publishes a new ad for the authenticated user.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	draft := services.PostDraft{
		Title:       utils.Sanitize(strings.TrimSpace(req.Title)),
		Description: utils.Sanitize(req.Description),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		CategoryID:  req.CategoryID,
		Price:       req.Price,
	}

	post, err := p.posts.Create(ctx.Request.Context(), currentPrincipal(ctx), draft)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.Success(ctx, gin.H{"post": post})
}

// ListPosts returns ads whose publish date has arrived, newest first.
func (p *PostController) ListPosts(ctx *gin.Context) {
	// The visible set changes every minute as scheduled ads come due,
	// so the cache key carries the minute.
	now := time.Now()
	cacheKey := "cache:posts:visible:" + now.Format("200601021504")
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.posts.ListVisible(ctx.Request.Context(), now)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	payload := gin.H{"items": posts, "count": len(posts)}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Minute)
	utils.Success(ctx, payload)
}

// GetPost returns a single ad with its comments. Scheduled ads resolve here
// too, so a direct link keeps working before the publish date.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid post id")
		return
	}

	cacheKey := "cache:post:detail:" + strconv.Itoa(int(id))
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	post, err := p.posts.Get(ctx.Request.Context(), id)
	if err != nil {
		failFromService(ctx, err)
		return
	}
	comments, err := p.comments.List(ctx.Request.Context(), id)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	payload := gin.H{"post": post, "comments": comments, "comment_count": len(comments)}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// UpdatePost lets the author change the mutable fields of their ad. The
// author and the publish date stay as they were.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid post id")
		return
	}

	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		ImageURL    *string  `json:"image_url"`
		CategoryID  *uint    `json:"category_id"`
		Price       *float64 `json:"price"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	changes := services.PostChanges{
		ImageURL:   req.ImageURL,
		CategoryID: req.CategoryID,
		Price:      req.Price,
	}
	if req.Title != nil {
		title := utils.Sanitize(strings.TrimSpace(*req.Title))
		changes.Title = &title
	}
	if req.Description != nil {
		description := utils.Sanitize(*req.Description)
		changes.Description = &description
	}

	post, err := p.posts.Edit(ctx.Request.Context(), currentPrincipal(ctx), id, changes)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(id)))
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes the author's ad together with its comments.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid post id")
		return
	}

	if err := p.posts.Delete(ctx.Request.Context(), currentPrincipal(ctx), id); err != nil {
		failFromService(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(id)))
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// ListCategoryPosts returns every ad of a category, scheduled ones included.
func (p *PostController) ListCategoryPosts(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid category id")
		return
	}

	cacheKey := "cache:posts:cat:" + strconv.Itoa(int(id))
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.posts.ListByCategory(ctx.Request.Context(), id)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	payload := gin.H{"items": posts, "count": len(posts)}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// ListMyPosts returns the authenticated user's own ads, the scheduled ones too.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	principal := currentPrincipal(ctx)
	if !principal.Authenticated() {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	posts, err := p.posts.ListByAuthor(ctx.Request.Context(), principal.ID)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"items": posts, "count": len(posts)})
}

// CreateComment appends a reply under an ad.
func (p *PostController) CreateComment(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40027, "invalid request payload")
		return
	}

	comment, err := p.comments.Add(ctx.Request.Context(), currentPrincipal(ctx), id, utils.Sanitize(req.Text))
	if err != nil {
		failFromService(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(id)))
	utils.Success(ctx, gin.H{"comment": comment})
}

// ListComments returns an ad's comments, newest first.
func (p *PostController) ListComments(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40028, "invalid post id")
		return
	}

	comments, err := p.comments.List(ctx.Request.Context(), id)
	if err != nil {
		failFromService(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"items": comments, "count": len(comments)})
}

// DeleteComment removes a comment; only its author may.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40029, "invalid post id")
		return
	}
	commentID, ok := parseID(ctx.Param("commentId"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid comment id")
		return
	}

	if err := p.comments.Delete(ctx.Request.Context(), currentPrincipal(ctx), commentID); err != nil {
		failFromService(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(postID)))
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// UploadImage stores an ad image and returns its public URL.
func (p *PostController) UploadImage(ctx *gin.Context) {
	principal := currentPrincipal(ctx)
	if !principal.Authenticated() {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	defer file.Close()

	const maxSize = 10 * 1024 * 1024
	if header.Size > 0 && header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 10MB")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40033, "unsupported image type")
		return
	}

	now := time.Now()
	baseDir := filepath.Join(config.Get().UploadDir, now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create upload directory")
		return
	}

	safeName := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to write file")
		return
	}
	if written > maxSize {
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 10MB")
		return
	}

	url := fmt.Sprintf("/static/uploads/%s/%s/%s", now.Format("2006"), now.Format("01"), safeName)
	utils.Success(ctx, gin.H{"url": url})
}
