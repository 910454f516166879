package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/adboardhq/adboard/models"
)

// PostRepository defines persistence operations for ads.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	// UpdateMutable persists the editable columns only. AuthorID and
	// PublishedAt are excluded so they stay as written at creation.
	UpdateMutable(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, post *models.Post) error
	// ListVisible returns ads whose publish timestamp has elapsed at now,
	// newest first.
	ListVisible(ctx context.Context, now time.Time) ([]models.Post, error)
	// ListByCategory returns all ads of a category, published or not.
	ListByCategory(ctx context.Context, categoryID uint) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository builds a GORM-backed repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Category").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) UpdateMutable(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Model(post).
		Select("title", "description", "image_url", "category_id", "price").
		Updates(map[string]interface{}{
			"title":       post.Title,
			"description": post.Description,
			"image_url":   post.ImageURL,
			"category_id": post.CategoryID,
			"price":       post.Price,
		}).Error
}

func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
}

func (r *postRepository) ListVisible(ctx context.Context, now time.Time) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").Preload("Category").
		Where("published_at <= ?", now).
		Order("published_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").Preload("Category").
		Where("category_id = ?", categoryID).
		Order("published_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").Preload("Category").
		Where("author_id = ?", authorID).
		Order("published_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
