package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tradepost/tradepost/internal/auth"
	"github.com/tradepost/tradepost/internal/metrics"
	"github.com/tradepost/tradepost/internal/model"
	"github.com/tradepost/tradepost/internal/repository"
)

// Service errors.
var (
	ErrUserNotFound = errors.New("user not found")
)

// minPasswordLength is the minimum accepted password length at registration.
const minPasswordLength = 6

// AuthResult is the envelope for registration and login outcomes.
// Client-facing validation failures travel here with Success=false;
// infrastructure failures travel on the error channel instead.
type AuthResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  *int   `json:"user_id"`
}

// rejected builds a soft-failure result.
func rejected(message string) *AuthResult {
	return &AuthResult{Success: false, Message: message}
}

// AccountService handles registration, login, and profile management.
type AccountService struct {
	users      UserStore
	uploader   Uploader
	bcryptCost int
	metrics    metrics.Recorder
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserStore, uploader Uploader, bcryptCost int, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		users:      users,
		uploader:   uploader,
		bcryptCost: bcryptCost,
		metrics:    recorder,
	}
}

// RegisterInput defines input for registering a new account.
type RegisterInput struct {
	Email          string
	Password       string
	Name           *string
	PinCode        *string
	ProfilePicture *string
}

// Register creates a new account. Validation failures and duplicate
// emails come back as a soft AuthResult with a nil error; only
// infrastructure problems use the error channel.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return rejected("Invalid email format"), nil
	}

	if len(input.Password) < minPasswordLength {
		return rejected("Password must be at least 6 characters long"), nil
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return rejected("Name cannot be empty"), nil
	}

	if _, err := s.users.GetUserByEmail(ctx, input.Email); err == nil {
		return rejected("Email already registered"), nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	passwordHash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	// A picture supplied at registration goes up under a temporary key;
	// the user ID does not exist yet.
	var pictureURL *string
	if input.ProfilePicture != nil && *input.ProfilePicture != "" {
		publicID := "profile_pictures/temp_" + uuid.New().String()
		hosted, err := s.uploader.Upload(ctx, *input.ProfilePicture, publicID)
		if err != nil {
			return nil, fmt.Errorf("failed to upload profile picture: %w", err)
		}
		pictureURL = &hosted
	}

	user, err := s.users.CreateUser(ctx, repository.CreateUserParams{
		Email:          input.Email,
		PasswordHash:   passwordHash,
		Name:           input.Name,
		PinCode:        input.PinCode,
		ProfilePicture: pictureURL,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// Lost the race against a concurrent registration.
			return rejected("Email already registered"), nil
		}
		return nil, err
	}

	s.metrics.IncUserRegistered()

	return &AuthResult{
		Success: true,
		Message: "Registration successful",
		UserID:  &user.ID,
	}, nil
}

// Login verifies credentials. An unknown email and a wrong password
// produce the same soft failure so callers cannot probe which accounts
// exist.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin("rejected")
			return rejected("Invalid credentials"), nil
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.metrics.IncLogin("rejected")
		return rejected("Invalid credentials"), nil
	}

	s.metrics.IncLogin("success")

	return &AuthResult{
		Success: true,
		Message: "Login successful",
		UserID:  &user.ID,
	}, nil
}

// GetProfile returns the public projection of a user. No ownership
// check; profiles are public by ID.
func (s *AccountService) GetProfile(ctx context.Context, userID int) (*model.UserProfile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user.Profile(), nil
}

// UpdateProfilePicture uploads the image under the user's deterministic
// storage key and persists the returned URL. The key is derived from
// the user ID so repeated updates overwrite rather than accumulate.
// An upload failure surfaces as an error and leaves the stored
// reference untouched.
func (s *AccountService) UpdateProfilePicture(ctx context.Context, userID int, imageData string) (*model.UserProfile, error) {
	publicID := fmt.Sprintf("profile_pictures/user_%d", userID)

	hosted, err := s.uploader.Upload(ctx, imageData, publicID)
	if err != nil {
		s.metrics.IncPictureUploaded("failed")
		return nil, fmt.Errorf("failed to upload profile picture: %w", err)
	}

	user, err := s.users.UpdateProfilePicture(ctx, userID, hosted)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.metrics.IncPictureUploaded("success")

	return user.Profile(), nil
}
