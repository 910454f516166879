package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/adboardhq/adboard/models"
)

func float64Ptr(v float64) *float64 { return &v }
func stringPtr(v string) *string    { return &v }

func newPostServiceForTest(posts *MockPostRepository, categories *MockCategoryRepository, now time.Time) *postService {
	svc := NewPostService(posts, categories).(*postService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestPostService_Create(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		principal     Principal
		draft         PostDraft
		setupMock     func(*MockPostRepository, *MockCategoryRepository)
		expectedError error
		expectFields  []string
	}{
		{
			name:      "successful creation",
			principal: Principal{ID: 1, Username: "ivan"},
			draft:     PostDraft{Title: "Bike", CategoryID: 2, Price: float64Ptr(50)},
			setupMock: func(posts *MockPostRepository, categories *MockCategoryRepository) {
				categories.On("FindByID", mock.Anything, uint(2)).Return(&models.Category{ID: 2, Name: "Transport"}, nil)
				posts.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).Run(func(args mock.Arguments) {
					args.Get(1).(*models.Post).ID = 10
				}).Return(nil)
				posts.On("FindByID", mock.Anything, uint(10)).Return(&models.Post{ID: 10, AuthorID: 1, Title: "Bike", Price: 50, PublishedAt: now}, nil)
			},
		},
		{
			name:          "anonymous principal is rejected",
			principal:     Anonymous,
			draft:         PostDraft{Title: "Bike", CategoryID: 2, Price: float64Ptr(50)},
			setupMock:     func(*MockPostRepository, *MockCategoryRepository) {},
			expectedError: ErrNotAuthenticated,
		},
		{
			name:      "empty title and missing price",
			principal: Principal{ID: 1},
			draft:     PostDraft{Title: "   ", CategoryID: 2},
			setupMock: func(posts *MockPostRepository, categories *MockCategoryRepository) {
				categories.On("FindByID", mock.Anything, uint(2)).Return(&models.Category{ID: 2}, nil)
			},
			expectFields: []string{"title", "price"},
		},
		{
			name:      "unknown category",
			principal: Principal{ID: 1},
			draft:     PostDraft{Title: "Bike", CategoryID: 99, Price: float64Ptr(50)},
			setupMock: func(posts *MockPostRepository, categories *MockCategoryRepository) {
				categories.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectFields: []string{"category"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := new(MockPostRepository)
			categories := new(MockCategoryRepository)
			tt.setupMock(posts, categories)

			svc := newPostServiceForTest(posts, categories, now)
			post, err := svc.Create(context.Background(), tt.principal, tt.draft)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, post)
			case len(tt.expectFields) > 0:
				ve, ok := IsValidation(err)
				assert.True(t, ok, "expected a validation error, got %v", err)
				assert.Nil(t, post)
				got := make([]string, 0, len(ve.Fields))
				for _, f := range ve.Fields {
					got = append(got, f.Field)
				}
				assert.ElementsMatch(t, tt.expectFields, got)
			default:
				assert.NoError(t, err)
				assert.NotNil(t, post)
				assert.Equal(t, tt.principal.ID, post.AuthorID)
				assert.Equal(t, now, post.PublishedAt)
			}

			posts.AssertExpectations(t)
			categories.AssertExpectations(t)
		})
	}
}

func TestPostService_CreateStampsAuthorAndPublishTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	posts := new(MockPostRepository)
	categories := new(MockCategoryRepository)

	categories.On("FindByID", mock.Anything, uint(3)).Return(&models.Category{ID: 3}, nil)
	var created *models.Post
	posts.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Post)
		created.ID = 42
	}).Return(nil)
	posts.On("FindByID", mock.Anything, uint(42)).Return(&models.Post{ID: 42}, nil)

	svc := newPostServiceForTest(posts, categories, now)
	_, err := svc.Create(context.Background(), Principal{ID: 5, Username: "ivan"}, PostDraft{
		Title:      "Bike",
		CategoryID: 3,
		Price:      float64Ptr(50),
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, uint(5), created.AuthorID)
	assert.Equal(t, now, created.PublishedAt)
}

func TestPostService_Edit(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	publishedAt := now.Add(-24 * time.Hour)

	existing := func() *models.Post {
		return &models.Post{ID: 10, AuthorID: 1, Title: "Bike", Price: 50, CategoryID: 2, PublishedAt: publishedAt}
	}

	tests := []struct {
		name          string
		principal     Principal
		changes       PostChanges
		setupMock     func(*MockPostRepository, *MockCategoryRepository)
		expectedError error
	}{
		{
			name:      "author can change the price",
			principal: Principal{ID: 1, Username: "ivan"},
			changes:   PostChanges{Price: float64Ptr(10)},
			setupMock: func(posts *MockPostRepository, categories *MockCategoryRepository) {
				posts.On("FindByID", mock.Anything, uint(10)).Return(existing(), nil).Once()
				posts.On("UpdateMutable", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
					return p.Price == 10 && p.AuthorID == 1 && p.PublishedAt.Equal(publishedAt)
				})).Return(nil)
				posts.On("FindByID", mock.Anything, uint(10)).Return(&models.Post{ID: 10, AuthorID: 1, Title: "Bike", Price: 10, CategoryID: 2, PublishedAt: publishedAt}, nil).Once()
			},
		},
		{
			name:      "other user is denied",
			principal: Principal{ID: 2, Username: "petr"},
			changes:   PostChanges{Price: float64Ptr(10)},
			setupMock: func(posts *MockPostRepository, categories *MockCategoryRepository) {
				posts.On("FindByID", mock.Anything, uint(10)).Return(existing(), nil)
			},
			expectedError: ErrPermissionDenied,
		},
		{
			name:      "anonymous is denied as unauthenticated",
			principal: Anonymous,
			changes:   PostChanges{Price: float64Ptr(10)},
			setupMock: func(posts *MockPostRepository, categories *MockCategoryRepository) {
				posts.On("FindByID", mock.Anything, uint(10)).Return(existing(), nil)
			},
			expectedError: ErrNotAuthenticated,
		},
		{
			name:      "missing post",
			principal: Principal{ID: 1},
			changes:   PostChanges{Price: float64Ptr(10)},
			setupMock: func(posts *MockPostRepository, categories *MockCategoryRepository) {
				posts.On("FindByID", mock.Anything, uint(10)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := new(MockPostRepository)
			categories := new(MockCategoryRepository)
			tt.setupMock(posts, categories)

			svc := newPostServiceForTest(posts, categories, now)
			post, err := svc.Edit(context.Background(), tt.principal, 10, tt.changes)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, post)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, float64(10), post.Price)
				assert.Equal(t, publishedAt, post.PublishedAt)
			}

			posts.AssertExpectations(t)
			categories.AssertExpectations(t)
		})
	}
}

func TestPostService_EditRejectsEmptyTitle(t *testing.T) {
	now := time.Now()
	posts := new(MockPostRepository)
	categories := new(MockCategoryRepository)
	posts.On("FindByID", mock.Anything, uint(10)).Return(&models.Post{ID: 10, AuthorID: 1, Title: "Bike", Price: 50}, nil)

	svc := newPostServiceForTest(posts, categories, now)
	_, err := svc.Edit(context.Background(), Principal{ID: 1}, 10, PostChanges{Title: stringPtr("  ")})

	ve, ok := IsValidation(err)
	assert.True(t, ok)
	assert.Equal(t, "title", ve.Fields[0].Field)
	posts.AssertNotCalled(t, "UpdateMutable", mock.Anything, mock.Anything)
}

func TestPostService_Delete(t *testing.T) {
	existing := func() *models.Post {
		return &models.Post{ID: 10, AuthorID: 1, Title: "Bike"}
	}

	tests := []struct {
		name          string
		principal     Principal
		setupMock     func(*MockPostRepository)
		expectedError error
	}{
		{
			name:      "author can delete",
			principal: Principal{ID: 1, Username: "ivan"},
			setupMock: func(posts *MockPostRepository) {
				posts.On("FindByID", mock.Anything, uint(10)).Return(existing(), nil)
				posts.On("Delete", mock.Anything, mock.AnythingOfType("*models.Post")).Return(nil)
			},
		},
		{
			name:      "other user is denied",
			principal: Principal{ID: 2},
			setupMock: func(posts *MockPostRepository) {
				posts.On("FindByID", mock.Anything, uint(10)).Return(existing(), nil)
			},
			expectedError: ErrPermissionDenied,
		},
		{
			name:      "anonymous is denied as unauthenticated",
			principal: Anonymous,
			setupMock: func(posts *MockPostRepository) {
				posts.On("FindByID", mock.Anything, uint(10)).Return(existing(), nil)
			},
			expectedError: ErrNotAuthenticated,
		},
		{
			name:      "missing post",
			principal: Principal{ID: 1},
			setupMock: func(posts *MockPostRepository) {
				posts.On("FindByID", mock.Anything, uint(10)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := new(MockPostRepository)
			tt.setupMock(posts)

			svc := newPostServiceForTest(posts, new(MockCategoryRepository), time.Now())
			err := svc.Delete(context.Background(), tt.principal, 10)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				posts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			posts.AssertExpectations(t)
		})
	}
}

func TestPostService_ListVisiblePassesInstant(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	posts := new(MockPostRepository)
	listed := []models.Post{{ID: 2, PublishedAt: now.Add(-time.Minute)}, {ID: 1, PublishedAt: now.Add(-time.Hour)}}
	posts.On("ListVisible", mock.Anything, now).Return(listed, nil)

	svc := newPostServiceForTest(posts, new(MockCategoryRepository), now)
	got, err := svc.ListVisible(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, listed, got)
	posts.AssertExpectations(t)
}

func TestPostService_GetIgnoresPublishGate(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	scheduled := &models.Post{ID: 3, AuthorID: 1, PublishedAt: now.Add(time.Hour)}
	posts := new(MockPostRepository)
	posts.On("FindByID", mock.Anything, uint(3)).Return(scheduled, nil)

	svc := newPostServiceForTest(posts, new(MockCategoryRepository), now)
	got, err := svc.Get(context.Background(), 3)

	assert.NoError(t, err)
	assert.Equal(t, scheduled, got)
	assert.False(t, Visible(got, now))
}
