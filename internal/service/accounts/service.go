package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookline/internal/auth"
	"bookline/internal/domain"
	"bookline/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ErrInvalidCredentials covers both unknown email and password mismatch so a
// caller cannot probe which of the two failed.
var ErrInvalidCredentials = errors.New("incorrect email or password")

type Service struct {
	repo     store.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewService(repo store.UserRepository, secret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &Service{repo: repo, secret: secret, tokenTTL: tokenTTL}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	TimeZone  string
}

type RegisterResult struct {
	Success bool
	UserID  string
	Message string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return RegisterResult{}, validationError("email is required")
	}
	if in.Password == "" {
		return RegisterResult{}, validationError("password is required")
	}
	if tz := strings.TrimSpace(in.TimeZone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return RegisterResult{}, validationError("invalid time_zone")
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return RegisterResult{}, err
	}

	user, _, err := s.repo.CreateWithProfile(ctx,
		domain.User{Email: email, PasswordHash: hash},
		domain.Profile{
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			TimeZone:  strings.TrimSpace(in.TimeZone),
		},
	)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return RegisterResult{
			Success: false,
			UserID:  "",
			Message: "A user with this email already exists.",
		}, nil
	}
	if err != nil {
		return RegisterResult{}, err
	}

	return RegisterResult{
		Success: true,
		UserID:  user.ID.String(),
		Message: "User successfully registered.",
	}, nil
}

type LoginResult struct {
	AccessToken string
	TokenType   string
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.repo.ByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := auth.MakeToken(user.Email, s.secret, s.tokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{AccessToken: token, TokenType: "bearer"}, nil
}

type ProfileView struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	TimeZone  string
}

// Profile resolves the authenticated user's profile by the email carried in
// the verified token. The password hash never leaves this package.
func (s *Service) Profile(ctx context.Context, email string) (ProfileView, error) {
	user, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		return ProfileView{}, err
	}
	profile, err := s.repo.ProfileByUserID(ctx, user.ID)
	if err != nil {
		return ProfileView{}, err
	}
	return ProfileView{
		ID:        user.ID.String(),
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     user.Email,
		TimeZone:  profile.TimeZone,
	}, nil
}

type UpdateProfileInput struct {
	UserID    uuid.UUID
	Email     string
	FirstName string
	LastName  string
	TimeZone  string
}

type UpdateProfileResult struct {
	UserID        string
	UpdatedFields []string
	Message       string
}

// UpdateProfile writes only the supplied fields that differ from the stored
// values and reports the names of the ones it changed. Supplying a value
// equal to the stored one is a no-op.
func (s *Service) UpdateProfile(ctx context.Context, in UpdateProfileInput) (UpdateProfileResult, error) {
	if in.UserID == uuid.Nil {
		return UpdateProfileResult{}, validationError("user_id is required")
	}

	user, err := s.repo.ByID(ctx, in.UserID)
	if err != nil {
		return UpdateProfileResult{}, err
	}

	updated := []string{}

	if email := strings.TrimSpace(in.Email); email != "" && email != user.Email {
		if err := s.repo.UpdateEmail(ctx, in.UserID, email); err != nil {
			return UpdateProfileResult{}, err
		}
		updated = append(updated, "email")
	}

	profile, err := s.repo.ProfileByUserID(ctx, in.UserID)
	if err == nil {
		changed := false
		if v := strings.TrimSpace(in.FirstName); v != "" && v != profile.FirstName {
			profile.FirstName = v
			updated = append(updated, "firstName")
			changed = true
		}
		if v := strings.TrimSpace(in.LastName); v != "" && v != profile.LastName {
			profile.LastName = v
			updated = append(updated, "lastName")
			changed = true
		}
		if v := strings.TrimSpace(in.TimeZone); v != "" && v != profile.TimeZone {
			if _, lerr := time.LoadLocation(v); lerr != nil {
				return UpdateProfileResult{}, validationError("invalid time_zone")
			}
			profile.TimeZone = v
			updated = append(updated, "timeZone")
			changed = true
		}
		if changed {
			if err := s.repo.UpdateProfile(ctx, profile); err != nil {
				return UpdateProfileResult{}, err
			}
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return UpdateProfileResult{}, err
	}

	return UpdateProfileResult{
		UserID:        in.UserID.String(),
		UpdatedFields: updated,
		Message:       "User profile updated successfully",
	}, nil
}
