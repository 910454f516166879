package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/adboardhq/adboard/config"
	"github.com/adboardhq/adboard/controllers"
	"github.com/adboardhq/adboard/middleware"
	"github.com/adboardhq/adboard/repository"
	"github.com/adboardhq/adboard/services"
	"github.com/adboardhq/adboard/utils"
)

// SetupRouter wires repositories, services, controllers and middlewares.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(ginzap.Ginzap(utils.Logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(utils.Logger, false))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	categories := repository.NewCategoryRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)

	authService := services.NewAuthService(users)
	profileService := services.NewProfileService(profiles)
	categoryService := services.NewCategoryService(categories)
	postService := services.NewPostService(posts, categories)
	commentService := services.NewCommentService(comments, posts)

	authController := controllers.NewAuthController(authService, users)
	postController := controllers.NewPostController(postService, commentService)
	profileController := controllers.NewProfileController(profileService, postService)
	categoryController := controllers.NewCategoryController(categoryService)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/password-reset", authController.RequestPasswordReset)
	authGroup.POST("/password-reset/confirm", authController.ResetPassword)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	postsGroup := api.Group("/posts")
	postsGroup.GET("", postController.ListPosts)
	postsGroup.GET("/:id", postController.GetPost)
	postsGroup.GET("/:id/comments", postController.ListComments)
	postsGroup.POST("", middleware.AuthRequired(), postController.CreatePost)
	postsGroup.PUT("/:id", middleware.AuthRequired(), postController.UpdatePost)
	postsGroup.DELETE("/:id", middleware.AuthRequired(), postController.DeletePost)
	postsGroup.POST("/:id/comments", middleware.AuthRequired(), postController.CreateComment)
	postsGroup.DELETE("/:id/comments/:commentId", middleware.AuthRequired(), postController.DeleteComment)

	categoriesGroup := api.Group("/categories")
	categoriesGroup.GET("", categoryController.ListCategories)
	categoriesGroup.GET("/:id", categoryController.GetCategory)
	categoriesGroup.GET("/:id/posts", postController.ListCategoryPosts)
	categoriesGroup.POST("", middleware.AuthRequired(), categoryController.CreateCategory)
	categoriesGroup.DELETE("/:id", middleware.AuthRequired(), categoryController.DeleteCategory)

	api.GET("/me/posts", middleware.AuthRequired(), postController.ListMyPosts)

	api.GET("/users/:id/profile", profileController.GetProfile)
	api.PUT("/users/:id/profile", middleware.AuthRequired(), profileController.UpdateProfile)

	api.POST("/uploads", middleware.AuthRequired(), postController.UploadImage)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, 404, 40400, "route not found")
	})

	return r
}
