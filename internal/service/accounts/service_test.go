package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"bookline/internal/auth"
	"bookline/internal/domain"
	"bookline/internal/store"
)

type fakeUserRepo struct {
	createFn        func(ctx context.Context, user domain.User, profile domain.Profile) (domain.User, domain.Profile, error)
	byEmailFn       func(ctx context.Context, email string) (domain.User, error)
	byIDFn          func(ctx context.Context, id uuid.UUID) (domain.User, error)
	profileByUserFn func(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
	updateEmailFn   func(ctx context.Context, userID uuid.UUID, email string) error
	updateProfileFn func(ctx context.Context, profile domain.Profile) error
}

func (f *fakeUserRepo) CreateWithProfile(ctx context.Context, user domain.User, profile domain.Profile) (domain.User, domain.Profile, error) {
	if f.createFn == nil {
		panic("CreateWithProfile not configured")
	}
	return f.createFn(ctx, user, profile)
}

func (f *fakeUserRepo) ByEmail(ctx context.Context, email string) (domain.User, error) {
	if f.byEmailFn == nil {
		panic("ByEmail not configured")
	}
	return f.byEmailFn(ctx, email)
}

func (f *fakeUserRepo) ByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	if f.byIDFn == nil {
		panic("ByID not configured")
	}
	return f.byIDFn(ctx, id)
}

func (f *fakeUserRepo) ProfileByUserID(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	if f.profileByUserFn == nil {
		panic("ProfileByUserID not configured")
	}
	return f.profileByUserFn(ctx, userID)
}

func (f *fakeUserRepo) UpdateEmail(ctx context.Context, userID uuid.UUID, email string) error {
	if f.updateEmailFn == nil {
		panic("UpdateEmail not configured")
	}
	return f.updateEmailFn(ctx, userID, email)
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, profile domain.Profile) error {
	if f.updateProfileFn == nil {
		panic("UpdateProfile not configured")
	}
	return f.updateProfileFn(ctx, profile)
}

const testSecret = "test-secret"

func TestServiceRegister_CreatesUserAndProfile(t *testing.T) {
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	var gotUser domain.User
	var gotProfile domain.Profile

	svc := NewService(&fakeUserRepo{
		createFn: func(ctx context.Context, user domain.User, profile domain.Profile) (domain.User, domain.Profile, error) {
			gotUser, gotProfile = user, profile
			user.ID = userID
			profile.UserID = userID
			return user, profile, nil
		},
	}, testSecret, 30*time.Minute)

	res, err := svc.Register(context.Background(), RegisterInput{
		Email:     "john.doe@example.com",
		Password:  "securePassword123",
		FirstName: "John",
		LastName:  "Doe",
		TimeZone:  "Europe/London",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if !res.Success {
		t.Fatal("success = false, want true")
	}
	if res.UserID != userID.String() {
		t.Fatalf("user id = %q, want %q", res.UserID, userID)
	}
	if gotUser.PasswordHash == "" || gotUser.PasswordHash == "securePassword123" {
		t.Fatalf("password stored unhashed: %q", gotUser.PasswordHash)
	}
	if !auth.CheckPassword(gotUser.PasswordHash, "securePassword123") {
		t.Fatal("stored hash does not verify against the password")
	}
	if gotProfile.FirstName != "John" || gotProfile.LastName != "Doe" || gotProfile.TimeZone != "Europe/London" {
		t.Fatalf("profile = %+v", gotProfile)
	}
}

func TestServiceRegister_DuplicateEmailIsSoftFailure(t *testing.T) {
	svc := NewService(&fakeUserRepo{
		createFn: func(ctx context.Context, user domain.User, profile domain.Profile) (domain.User, domain.Profile, error) {
			return domain.User{}, domain.Profile{}, store.ErrDuplicateEmail
		},
	}, testSecret, 30*time.Minute)

	res, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "pw",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if res.Success {
		t.Fatal("success = true, want false")
	}
	if res.UserID != "" {
		t.Fatalf("user id = %q, want empty", res.UserID)
	}
	if res.Message != "A user with this email already exists." {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestServiceRegister_InvalidTimeZoneRejected(t *testing.T) {
	svc := NewService(&fakeUserRepo{}, testSecret, 30*time.Minute)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "x@example.com",
		Password: "pw",
		TimeZone: "Atlantis/Lost",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
}

func TestServiceLogin_TokenSubjectAndExpiry(t *testing.T) {
	hash, err := auth.HashPassword("securePassword123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	svc := NewService(&fakeUserRepo{
		byEmailFn: func(ctx context.Context, email string) (domain.User, error) {
			return domain.User{Email: email, PasswordHash: hash}, nil
		},
	}, testSecret, 30*time.Minute)

	before := time.Now()
	res, err := svc.Login(context.Background(), "john.doe@example.com", "securePassword123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.TokenType != "bearer" {
		t.Fatalf("token type = %q, want %q", res.TokenType, "bearer")
	}

	claims, err := auth.ParseToken(res.AccessToken, testSecret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.Subject != "john.doe@example.com" {
		t.Fatalf("subject = %q, want the email", claims.Subject)
	}
	expiry := claims.ExpiresAt.Time
	if expiry.Before(before.Add(29*time.Minute)) || expiry.After(before.Add(31*time.Minute)) {
		t.Fatalf("expiry = %v, want ~30m from now", expiry)
	}
}

func TestServiceLogin_WrongPasswordAndUnknownEmailBothUnauthorized(t *testing.T) {
	hash, err := auth.HashPassword("right")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	svc := NewService(&fakeUserRepo{
		byEmailFn: func(ctx context.Context, email string) (domain.User, error) {
			if email == "known@example.com" {
				return domain.User{Email: email, PasswordHash: hash}, nil
			}
			return domain.User{}, store.ErrNotFound
		},
	}, testSecret, 30*time.Minute)

	if _, err := svc.Login(context.Background(), "known@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "right"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestServiceProfile_ExcludesPasswordHashAndFailsWhenMissing(t *testing.T) {
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	repo := &fakeUserRepo{
		byEmailFn: func(ctx context.Context, email string) (domain.User, error) {
			return domain.User{ID: userID, Email: email, PasswordHash: "hash"}, nil
		},
		profileByUserFn: func(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
			return domain.Profile{UserID: id, FirstName: "John", LastName: "Doe", TimeZone: "UTC"}, nil
		},
	}
	svc := NewService(repo, testSecret, 30*time.Minute)

	view, err := svc.Profile(context.Background(), "john.doe@example.com")
	if err != nil {
		t.Fatalf("Profile error: %v", err)
	}
	if view.ID != userID.String() || view.FirstName != "John" || view.Email != "john.doe@example.com" {
		t.Fatalf("view = %+v", view)
	}

	repo.profileByUserFn = func(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
		return domain.Profile{}, store.ErrNotFound
	}
	if _, err := svc.Profile(context.Background(), "john.doe@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing profile: err = %v, want ErrNotFound", err)
	}
}

func TestServiceUpdateProfile_OnlyChangedFieldsReported(t *testing.T) {
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000003")
	profileWritten := false

	svc := NewService(&fakeUserRepo{
		byIDFn: func(ctx context.Context, id uuid.UUID) (domain.User, error) {
			return domain.User{ID: id, Email: "old@example.com"}, nil
		},
		profileByUserFn: func(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
			return domain.Profile{UserID: id, FirstName: "John", LastName: "Doe", TimeZone: "Europe/London"}, nil
		},
		updateEmailFn: func(ctx context.Context, id uuid.UUID, email string) error {
			t.Fatal("email must not be written when unchanged")
			return nil
		},
		updateProfileFn: func(ctx context.Context, profile domain.Profile) error {
			profileWritten = true
			if profile.FirstName != "Jane" {
				t.Fatalf("first name = %q, want Jane", profile.FirstName)
			}
			if profile.LastName != "Doe" {
				t.Fatalf("last name = %q, want unchanged Doe", profile.LastName)
			}
			return nil
		},
	}, testSecret, 30*time.Minute)

	res, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:    userID,
		Email:     "old@example.com", // same as stored
		FirstName: "Jane",
		LastName:  "Doe", // same as stored
	})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if !profileWritten {
		t.Fatal("expected the profile write")
	}
	if len(res.UpdatedFields) != 1 || res.UpdatedFields[0] != "firstName" {
		t.Fatalf("updated fields = %v, want [firstName]", res.UpdatedFields)
	}
}

func TestServiceUpdateProfile_NothingSuppliedIsNoOp(t *testing.T) {
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000004")
	svc := NewService(&fakeUserRepo{
		byIDFn: func(ctx context.Context, id uuid.UUID) (domain.User, error) {
			return domain.User{ID: id, Email: "old@example.com"}, nil
		},
		profileByUserFn: func(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
			return domain.Profile{UserID: id, FirstName: "John"}, nil
		},
		updateEmailFn: func(ctx context.Context, id uuid.UUID, email string) error {
			t.Fatal("no write expected")
			return nil
		},
		updateProfileFn: func(ctx context.Context, profile domain.Profile) error {
			t.Fatal("no write expected")
			return nil
		},
	}, testSecret, 30*time.Minute)

	res, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: userID})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if len(res.UpdatedFields) != 0 {
		t.Fatalf("updated fields = %v, want none", res.UpdatedFields)
	}
}

func TestServiceUpdateProfile_UnknownUser(t *testing.T) {
	svc := NewService(&fakeUserRepo{
		byIDFn: func(ctx context.Context, id uuid.UUID) (domain.User, error) {
			return domain.User{}, store.ErrNotFound
		},
	}, testSecret, 30*time.Minute)

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:    uuid.MustParse("00000000-0000-0000-0000-000000000005"),
		FirstName: "Jane",
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
