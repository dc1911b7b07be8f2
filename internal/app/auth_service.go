package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"conduit-api/internal/model"
	"conduit-api/internal/pkg/jwtutil"
	"conduit-api/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmailExists       = errors.New("user already exists")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrAccountDisabled   = errors.New("account disabled")
	ErrUserNotFound      = errors.New("user not found")
	ErrTokenMissing      = errors.New("token missing")
	ErrStaleToken        = errors.New("stale token")
)

type TokenService interface {
	Issue(email string, nonce int64) (string, error)
	Verify(token string) (*jwtutil.Claims, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.AuthEvent) error
}

type AuthService struct {
	users      repository.UserRepository
	nonces     repository.NonceRepository
	articles   repository.ArticleRepository
	tokens     TokenService
	events     EventPublisher
	bcryptCost int
	log        *slog.Logger
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type UpdateInput struct {
	Username string
	Email    string
	Password string
	Bio      string
	Image    string
}

type AuthResult struct {
	Token string
	User  *model.User
}

// Identity is what the auth gate hands to protected handlers. Profile
// carries no password hash and no internal id; UserID stays server side.
type Identity struct {
	Profile model.Profile
	UserID  string
	Email   string
	Nonce   int64
	Token   string
}

func NewAuthService(
	users repository.UserRepository,
	nonces repository.NonceRepository,
	articles repository.ArticleRepository,
	tokens TokenService,
	events EventPublisher,
	bcryptCost int,
	log *slog.Logger,
) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		nonces:     nonces,
		articles:   articles,
		tokens:     tokens,
		events:     events,
		bcryptCost: bcryptCost,
		log:        log.With("component", "auth_service"),
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Bio:          "",
		Image:        model.DefaultImageURL,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if err := s.nonces.Create(ctx, email); err != nil {
		// A user without a nonce record can never authenticate; undo the insert.
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.log.ErrorContext(ctx, "rollback user after nonce failure failed", "email", email, "error", delErr)
		}
		return nil, fmt.Errorf("create nonce failed: %w", err)
	}

	token, err := s.tokens.Issue(email, model.NonceBaseline)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.EventRegistered, email, model.NonceBaseline)
	s.log.InfoContext(ctx, "user registered", "email", email)
	return &AuthResult{Token: token, User: user}, nil
}

// Login checks the credentials and advances the nonce, which revokes every
// token issued before this login.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.publish(ctx, model.EventLoginFailed, email, 0)
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if !s.VerifyPassword(input.Password, user.PasswordHash) {
		s.publish(ctx, model.EventLoginFailed, email, 0)
		return nil, ErrInvalidCredential
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	nonce, err := s.nonces.Increment(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("advance nonce failed: %w", err)
	}

	token, err := s.tokens.Issue(email, nonce)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.EventLogin, email, nonce)
	s.log.DebugContext(ctx, "user logged in", "email", email, "nonce", nonce)
	return &AuthResult{Token: token, User: user}, nil
}

// Authenticate runs the gate checks for one request: signature, nonce
// freshness, then user resolution. Nothing is cached between calls.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	current, err := s.nonces.Current(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("read nonce failed: %w", err)
	}
	if current != claims.Nonce {
		return nil, ErrStaleToken
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("read user failed: %w", err)
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	return &Identity{
		Profile: user.Profile(),
		UserID:  user.ID,
		Email:   claims.Email,
		Nonce:   claims.Nonce,
		Token:   token,
	}, nil
}

func (s *AuthService) Logoff(ctx context.Context, email string) (int64, error) {
	nonce, err := s.nonces.Increment(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("advance nonce failed: %w", err)
	}

	s.publish(ctx, model.EventLogoff, email, nonce)
	s.log.DebugContext(ctx, "user logged off", "email", email, "nonce", nonce)
	return nonce, nil
}

// UpdateProfile merges the non-empty fields of input into the account and
// re-issues a token with the caller's nonce. An email change moves the
// nonce record to the new key, so the new token stays valid and nothing
// else is revoked.
func (s *AuthService) UpdateProfile(ctx context.Context, identity *Identity, input UpdateInput) (*AuthResult, error) {
	update := model.UserUpdate{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.TrimSpace(input.Email),
		Bio:      input.Bio,
		Image:    strings.TrimSpace(input.Image),
	}
	if input.Password != "" {
		hash, err := s.hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = hash
	}
	if update.Email == identity.Email {
		update.Email = ""
	}
	if update.IsEmpty() {
		return nil, ErrInvalidInput
	}

	if update.Email != "" {
		if err := s.nonces.Rekey(ctx, identity.Email, update.Email); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, ErrEmailExists
			}
			return nil, fmt.Errorf("move nonce failed: %w", err)
		}
	}

	user, err := s.users.UpdateFields(ctx, identity.Email, update)
	if err != nil {
		if update.Email != "" {
			if rbErr := s.nonces.Rekey(ctx, update.Email, identity.Email); rbErr != nil {
				s.log.ErrorContext(ctx, "restore nonce key failed", "email", identity.Email, "error", rbErr)
			}
		}
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.Email, identity.Nonce)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.EventUpdated, user.Email, identity.Nonce)
	return &AuthResult{Token: token, User: user}, nil
}

// Disable marks the account inactive. The nonce record is kept.
func (s *AuthService) Disable(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.users.SetActive(ctx, user.ID, false); err != nil {
		return fmt.Errorf("disable account failed: %w", err)
	}

	s.publish(ctx, model.EventDisabled, email, 0)
	s.log.InfoContext(ctx, "account disabled", "email", email)
	return nil
}

// ResetNonce sets the user's counter back to the baseline value.
func (s *AuthService) ResetNonce(ctx context.Context, email string) error {
	if err := s.nonces.Reset(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("reset nonce failed: %w", err)
	}

	s.publish(ctx, model.EventNonceReset, email, model.NonceBaseline)
	s.log.InfoContext(ctx, "nonce reset", "email", email)
	return nil
}

// DeleteUser removes the account together with its articles and nonce record.
func (s *AuthService) DeleteUser(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	removed, err := s.articles.DeleteByAuthorID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("delete user articles failed: %w", err)
	}
	if err := s.nonces.Delete(ctx, email); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete nonce failed: %w", err)
	}
	if err := s.users.Delete(ctx, user.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete user failed: %w", err)
	}

	s.publish(ctx, model.EventDeleted, email, 0)
	s.log.InfoContext(ctx, "user deleted", "email", email, "articles", removed)
	return nil
}

func (s *AuthService) VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

func (s *AuthService) hashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password failed: %w", err)
	}
	return string(hash), nil
}

// publish hands the event to the audit pipeline. Audit failures are logged
// and never fail the request.
func (s *AuthService) publish(ctx context.Context, eventType model.AuthEventType, email string, nonce int64) {
	if s.events == nil {
		return
	}
	event := model.NewAuthEvent(eventType, email, nonce)
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.WarnContext(ctx, "publish auth event failed", "type", eventType, "email", email, "error", err)
	}
}
