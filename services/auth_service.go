package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/adboardhq/adboard/models"
	"github.com/adboardhq/adboard/repository"
	"github.com/adboardhq/adboard/utils"
)

const (
	tokenTTL      = 72 * time.Hour
	resetTokenTTL = 30 * time.Minute
	resetCooldown = time.Minute
)

// AuthService registers accounts and authenticates principals. Registration
// creates the user and their profile in one transaction, so the
// one-profile-per-user invariant holds from the first moment.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	// Login verifies credentials and returns a signed token for the user.
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	// RequestPasswordReset mails a single-use reset token to the account's
	// address. It reports success even for unknown emails so the endpoint
	// does not leak which addresses are registered.
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, newPassword string) error
}

type authService struct {
	users repository.UserRepository

	// seams for tests
	generateToken func(userID uint, username string, d time.Duration) (string, error)
	sendMail      func(to, subject, body string) error
	saveReset     func(email, token string, ttl time.Duration)
	consumeReset  func(email, token string) bool
	cooldownReset func(email string, d time.Duration) bool
}

// NewAuthService builds an AuthService over the given repository.
func NewAuthService(users repository.UserRepository) AuthService {
	return &authService{
		users:         users,
		generateToken: utils.GenerateToken,
		sendMail:      utils.SendMail,
		saveReset:     utils.SaveResetToken,
		consumeReset:  utils.ConsumeResetToken,
		cooldownReset: utils.ResetCooldownTrySet,
	}
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	var ve ValidationError
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if l := len([]rune(username)); l < 3 || l > 64 {
		ve.add("username", "username must be 3-64 characters")
	}
	if email == "" || !strings.Contains(email, "@") {
		ve.add("email", "a valid email is required")
	}
	if len(password) < 6 || len(password) > 72 {
		ve.add("password", "password must be 6-72 characters")
	}
	if err := ve.errOrNil(); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	profile := &models.Profile{}
	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID, user.Username, tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		var ve ValidationError
		ve.add("email", "email is required")
		return &ve
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !s.cooldownReset(email, resetCooldown) {
		return nil
	}

	token := utils.NewResetToken()
	s.saveReset(email, token, resetTokenTTL)
	body := fmt.Sprintf("Hello %s,\n\nUse this code to reset your password: %s\n\nThe code expires in 30 minutes. If you did not ask for a reset, ignore this mail.", user.Username, token)
	return s.sendMail(email, "Password reset", body)
}

func (s *authService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	var ve ValidationError
	email = strings.TrimSpace(email)
	if email == "" {
		ve.add("email", "email is required")
	}
	if strings.TrimSpace(token) == "" {
		ve.add("token", "token is required")
	}
	if len(newPassword) < 6 || len(newPassword) > 72 {
		ve.add("password", "password must be 6-72 characters")
	}
	if err := ve.errOrNil(); err != nil {
		return err
	}

	if !s.consumeReset(email, strings.TrimSpace(token)) {
		return ErrPermissionDenied
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return translateNotFound(err)
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}
