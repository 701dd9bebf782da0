package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// bcrypt hashes at most 72 bytes and refuses longer input.
const (
	minPasswordLength = 6
	maxPasswordLength = 72
)

var validate = validator.New()

// AuthService implements registration, login, logout and profile edits.
type AuthService struct {
	users    ports.UserRepository
	tokens   ports.TokenIssuer
	revoked  ports.RevocationList
	activity ports.ActivityRecorder
	log      zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenIssuer, revoked ports.RevocationList, activity ports.ActivityRecorder, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		revoked:  revoked,
		activity: recorderOrNop(activity),
		log:      log,
	}
}

// Register creates a USER or OWNER account. ADMIN accounts are never created
// through self sign-up.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)
	if name == "" || email == "" || phone == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email, password, role and phone are required", domain.ErrInvalidInput)
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, fmt.Errorf("%w: email is not valid", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if len(in.Password) > maxPasswordLength {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordLength)
	}
	if in.Role != domain.RoleUser && in.Role != domain.RoleOwner {
		return nil, fmt.Errorf("%w: role must be USER or OWNER", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         in.Role,
		Phone:        phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.activity.Record(activity(domain.ActivityUser, "register", created.ID,
		fmt.Sprintf("%s registered as %s", created.Email, created.Role), nil))
	return created, nil
}

// EnsureAdmin creates the bootstrap ADMIN account when no user holds email
// yet. An existing account is left untouched whatever its role.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return false, fmt.Errorf("%w: admin email is not valid", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return false, fmt.Errorf("%w: admin password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return false, fmt.Errorf("%w: admin password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordLength)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         domain.RoleAdmin,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("bootstrap admin created")
	return true, nil
}

// Login checks the password and issues a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.activity.Record(activity(domain.ActivityAuth, "login", user.ID, user.Email+" signed in", nil))
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *domain.TokenClaims) error {
	if claims == nil || claims.TokenID == "" || s.revoked == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.TokenID, ttl); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.activity.Record(activity(domain.ActivityAuth, "logout", claims.UserID, "signed out", nil))
	return nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		update.Name = &trimmed
	}
	if update.Phone != nil {
		trimmed := strings.TrimSpace(*update.Phone)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: phone cannot be empty", domain.ErrInvalidInput)
		}
		update.Phone = &trimmed
	}
	return s.users.UpdateProfile(ctx, userID, update)
}
