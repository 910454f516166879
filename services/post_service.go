package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/adboardhq/adboard/models"
	"github.com/adboardhq/adboard/repository"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1500
)

// PostDraft carries the fields a user submits when creating an ad.
// Price is a pointer so a missing price can be told apart from a free ad.
type PostDraft struct {
	Title       string
	Description string
	ImageURL    string
	CategoryID  uint
	Price       *float64
}

// PostChanges carries the editable fields of an ad. Nil means "leave as is".
// The author and the publish timestamp cannot be changed through edits.
type PostChanges struct {
	Title       *string
	Description *string
	ImageURL    *string
	CategoryID  *uint
	Price       *float64
}

// PostService orchestrates the lifecycle of ads: creation, owner-gated
// mutation and the publish-gated listings.
type PostService interface {
	Create(ctx context.Context, principal Principal, draft PostDraft) (*models.Post, error)
	Edit(ctx context.Context, principal Principal, postID uint, changes PostChanges) (*models.Post, error)
	Delete(ctx context.Context, principal Principal, postID uint) error
	// Get fetches an ad by id without applying the publish gate; a direct
	// link to a scheduled ad keeps resolving.
	Get(ctx context.Context, postID uint) (*models.Post, error)
	// ListVisible returns the publicly listed ads at now, newest first.
	ListVisible(ctx context.Context, now time.Time) ([]models.Post, error)
	// ListByCategory returns every ad of the category, scheduled ones included.
	ListByCategory(ctx context.Context, categoryID uint) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error)
}

type postService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	now        func() time.Time
}

// NewPostService builds a PostService over the given repositories.
func NewPostService(posts repository.PostRepository, categories repository.CategoryRepository) PostService {
	return &postService{posts: posts, categories: categories, now: time.Now}
}

func (s *postService) Create(ctx context.Context, principal Principal, draft PostDraft) (*models.Post, error) {
	if !principal.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	var ve ValidationError
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		ve.add("title", "title cannot be empty")
	} else if len([]rune(title)) > maxTitleLen {
		ve.add("title", "title is too long")
	}
	if len([]rune(draft.Description)) > maxDescriptionLen {
		ve.add("description", "description is too long")
	}
	if draft.Price == nil {
		ve.add("price", "price is required")
	} else if *draft.Price < 0 {
		ve.add("price", "price cannot be negative")
	}
	if draft.CategoryID == 0 {
		ve.add("category", "category is required")
	} else if _, err := s.categories.FindByID(ctx, draft.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ve.add("category", "unknown category")
		} else {
			return nil, err
		}
	}
	if err := ve.errOrNil(); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:    principal.ID,
		Title:       title,
		Description: draft.Description,
		ImageURL:    draft.ImageURL,
		CategoryID:  draft.CategoryID,
		Price:       *draft.Price,
		PublishedAt: s.now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.FindByID(ctx, post.ID)
}

func (s *postService) Edit(ctx context.Context, principal Principal, postID uint, changes PostChanges) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if err := Authorize(principal, post.AuthorID); err != nil {
		return nil, err
	}

	var ve ValidationError
	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		if title == "" {
			ve.add("title", "title cannot be empty")
		} else if len([]rune(title)) > maxTitleLen {
			ve.add("title", "title is too long")
		} else {
			post.Title = title
		}
	}
	if changes.Description != nil {
		if len([]rune(*changes.Description)) > maxDescriptionLen {
			ve.add("description", "description is too long")
		} else {
			post.Description = *changes.Description
		}
	}
	if changes.ImageURL != nil {
		post.ImageURL = *changes.ImageURL
	}
	if changes.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *changes.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ve.add("category", "unknown category")
			} else {
				return nil, err
			}
		} else {
			post.CategoryID = *changes.CategoryID
		}
	}
	if changes.Price != nil {
		if *changes.Price < 0 {
			ve.add("price", "price cannot be negative")
		} else {
			post.Price = *changes.Price
		}
	}
	if err := ve.errOrNil(); err != nil {
		return nil, err
	}

	if err := s.posts.UpdateMutable(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.FindByID(ctx, post.ID)
}

func (s *postService) Delete(ctx context.Context, principal Principal, postID uint) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return translateNotFound(err)
	}
	// Deletion is owner-only, same as editing.
	if err := Authorize(principal, post.AuthorID); err != nil {
		return err
	}
	return s.posts.Delete(ctx, post)
}

func (s *postService) Get(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return post, nil
}

func (s *postService) ListVisible(ctx context.Context, now time.Time) ([]models.Post, error) {
	return s.posts.ListVisible(ctx, now)
}

func (s *postService) ListByCategory(ctx context.Context, categoryID uint) ([]models.Post, error) {
	return s.posts.ListByCategory(ctx, categoryID)
}

func (s *postService) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}

// translateNotFound maps the store's missing-record error onto the service
// taxonomy and passes everything else through.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
