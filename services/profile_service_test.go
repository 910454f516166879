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

func timePtr(v time.Time) *time.Time { return &v }

func newProfileServiceForTest(profiles *MockProfileRepository, now time.Time) *profileService {
	svc := NewProfileService(profiles).(*profileService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestProfileService_EnsureProfileCreatesOnFirstCall(t *testing.T) {
	profiles := new(MockProfileRepository)
	profiles.On("FindByUserID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound).Once()
	profiles.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.UserID == 1 && p.BirthDate == nil && p.AvatarURL == ""
	})).Return(nil).Once()

	svc := newProfileServiceForTest(profiles, time.Now())
	profile, err := svc.EnsureProfile(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, uint(1), profile.UserID)
	assert.Nil(t, profile.BirthDate)
	profiles.AssertExpectations(t)
}

func TestProfileService_EnsureProfileIsIdempotent(t *testing.T) {
	existing := &models.Profile{ID: 3, UserID: 1}
	profiles := new(MockProfileRepository)
	profiles.On("FindByUserID", mock.Anything, uint(1)).Return(existing, nil).Twice()

	svc := newProfileServiceForTest(profiles, time.Now())
	first, err := svc.EnsureProfile(context.Background(), 1)
	assert.NoError(t, err)
	second, err := svc.EnsureProfile(context.Background(), 1)
	assert.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	profiles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	profiles.AssertExpectations(t)
}

func TestProfileService_Edit(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	existing := func() *models.Profile {
		return &models.Profile{ID: 3, UserID: 1}
	}

	tests := []struct {
		name          string
		principal     Principal
		changes       ProfileChanges
		setupMock     func(*MockProfileRepository)
		expectedError error
		expectField   string
	}{
		{
			name:      "owner sets a past birth date",
			principal: Principal{ID: 1, Username: "ivan"},
			changes:   ProfileChanges{BirthDate: timePtr(yesterday)},
			setupMock: func(profiles *MockProfileRepository) {
				profiles.On("FindByUserID", mock.Anything, uint(1)).Return(existing(), nil)
				profiles.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
					return p.BirthDate != nil && p.BirthDate.Equal(yesterday)
				})).Return(nil)
			},
		},
		{
			name:      "future birth date is rejected",
			principal: Principal{ID: 1},
			changes:   ProfileChanges{BirthDate: timePtr(tomorrow)},
			setupMock: func(profiles *MockProfileRepository) {
				profiles.On("FindByUserID", mock.Anything, uint(1)).Return(existing(), nil)
			},
			expectField: "birth_date",
		},
		{
			name:      "another user's profile reads as missing",
			principal: Principal{ID: 2, Username: "petr"},
			changes:   ProfileChanges{BirthDate: timePtr(yesterday)},
			setupMock: func(profiles *MockProfileRepository) {
				profiles.On("FindByUserID", mock.Anything, uint(1)).Return(existing(), nil)
			},
			expectedError: ErrNotYourProfile,
		},
		{
			name:      "anonymous is denied as unauthenticated",
			principal: Anonymous,
			changes:   ProfileChanges{BirthDate: timePtr(yesterday)},
			setupMock: func(profiles *MockProfileRepository) {
				profiles.On("FindByUserID", mock.Anything, uint(1)).Return(existing(), nil)
			},
			expectedError: ErrNotAuthenticated,
		},
		{
			name:      "missing profile",
			principal: Principal{ID: 1},
			changes:   ProfileChanges{},
			setupMock: func(profiles *MockProfileRepository) {
				profiles.On("FindByUserID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := new(MockProfileRepository)
			tt.setupMock(profiles)

			svc := newProfileServiceForTest(profiles, now)
			profile, err := svc.Edit(context.Background(), tt.principal, 1, tt.changes)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, profile)
				profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			case tt.expectField != "":
				ve, ok := IsValidation(err)
				assert.True(t, ok, "expected a validation error, got %v", err)
				assert.Equal(t, tt.expectField, ve.Fields[0].Field)
				profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			default:
				assert.NoError(t, err)
				assert.NotNil(t, profile.BirthDate)
			}
			profiles.AssertExpectations(t)
		})
	}
}

func TestProfileService_EditBirthDateExactlyNowIsAccepted(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	profiles := new(MockProfileRepository)
	profiles.On("FindByUserID", mock.Anything, uint(1)).Return(&models.Profile{ID: 3, UserID: 1}, nil)
	profiles.On("Update", mock.Anything, mock.Anything).Return(nil)

	svc := newProfileServiceForTest(profiles, now)
	_, err := svc.Edit(context.Background(), Principal{ID: 1}, 1, ProfileChanges{BirthDate: timePtr(now)})

	assert.NoError(t, err)
}
