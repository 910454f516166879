package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/adboardhq/adboard/models"
	"github.com/adboardhq/adboard/repository"
)

// ProfileChanges carries the editable profile fields. Nil means "leave as is".
type ProfileChanges struct {
	BirthDate *time.Time
	AvatarURL *string
}

// ProfileService maintains the one-profile-per-user invariant and gates
// edits to the owning user.
type ProfileService interface {
	// EnsureProfile creates the user's profile when it does not exist yet.
	// Calling it any number of times leaves exactly one profile behind.
	EnsureProfile(ctx context.Context, userID uint) (*models.Profile, error)
	Get(ctx context.Context, userID uint) (*models.Profile, error)
	Edit(ctx context.Context, principal Principal, userID uint, changes ProfileChanges) (*models.Profile, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	now      func() time.Time
}

// NewProfileService builds a ProfileService over the given repository.
func NewProfileService(profiles repository.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles, now: time.Now}
}

func (s *profileService) EnsureProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	profile = &models.Profile{UserID: userID}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return profile, nil
}

func (s *profileService) Edit(ctx context.Context, principal Principal, userID uint, changes ProfileChanges) (*models.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if !principal.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if principal.ID != profile.UserID {
		return nil, ErrNotYourProfile
	}

	var ve ValidationError
	if changes.BirthDate != nil {
		if changes.BirthDate.After(s.now()) {
			ve.add("birth_date", "birth date cannot be in the future")
		} else {
			bd := *changes.BirthDate
			profile.BirthDate = &bd
		}
	}
	if changes.AvatarURL != nil {
		profile.AvatarURL = *changes.AvatarURL
	}
	if err := ve.errOrNil(); err != nil {
		return nil, err
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
