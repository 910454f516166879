package services

import (
	"context"
	"strings"
	"time"

	"github.com/adboardhq/adboard/models"
	"github.com/adboardhq/adboard/repository"
)

const maxCommentLen = 700

// CommentService appends replies to ads and lists them newest first.
type CommentService interface {
	Add(ctx context.Context, principal Principal, postID uint, text string) (*models.Comment, error)
	List(ctx context.Context, postID uint) ([]models.Comment, error)
	// Delete removes a comment; only its author may do so.
	Delete(ctx context.Context, principal Principal, commentID uint) error
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	now      func() time.Time
}

// NewCommentService builds a CommentService over the given repositories.
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) CommentService {
	return &commentService{comments: comments, posts: posts, now: time.Now}
}

func (s *commentService) Add(ctx context.Context, principal Principal, postID uint, text string) (*models.Comment, error) {
	if !principal.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	var ve ValidationError
	text = strings.TrimSpace(text)
	if text == "" {
		ve.add("text", "comment cannot be empty")
	} else if len([]rune(text)) > maxCommentLen {
		ve.add("text", "comment is too long")
	}
	if err := ve.errOrNil(); err != nil {
		return nil, err
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	comment := &models.Comment{
		PostID:      post.ID,
		AuthorID:    principal.ID,
		Text:        text,
		PublishedAt: s.now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.comments.FindByID(ctx, comment.ID)
}

func (s *commentService) List(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

func (s *commentService) Delete(ctx context.Context, principal Principal, commentID uint) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return translateNotFound(err)
	}
	if err := Authorize(principal, comment.AuthorID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, comment)
}
