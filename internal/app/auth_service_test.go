package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"conduit-api/internal/config"
	"conduit-api/internal/logging"
	"conduit-api/internal/model"
	"conduit-api/internal/pkg/jwtutil"
	"conduit-api/internal/repository"
	"conduit-api/internal/repository/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.AuthEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event model.AuthEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []model.AuthEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.AuthEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type failingNonceCreate struct {
	repository.NonceRepository
}

func (failingNonceCreate) Create(context.Context, string) error {
	return errors.New("connection reset")
}

type fixture struct {
	svc      *AuthService
	users    *memory.UserRepository
	nonces   repository.NonceRepository
	articles *memory.ArticleRepository
	events   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithNonces(t, memory.NewNonceRepository())
}

func newFixtureWithNonces(t *testing.T, nonces repository.NonceRepository) *fixture {
	t.Helper()
	f := &fixture{
		users:    memory.NewUserRepository(),
		nonces:   nonces,
		articles: memory.NewArticleRepository(),
		events:   &recordingPublisher{},
	}
	auth := &config.AuthConfig{JWTSecret: "test-secret"}
	f.svc = NewAuthService(f.users, f.nonces, f.articles, jwtutil.NewService(auth), f.events, bcrypt.MinCost, logging.Discard())
	return f
}

func (f *fixture) register(t *testing.T, email string) *AuthResult {
	t.Helper()
	result, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "jake",
		Email:    email,
		Password: "jakejake",
	})
	require.NoError(t, err)
	return result
}

func TestRegister_TokenPassesGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result := f.register(t, "jake@jake.jake")
	assert.True(t, result.User.Active)
	assert.Equal(t, model.DefaultImageURL, result.User.Image)
	assert.NotEqual(t, "jakejake", result.User.PasswordHash)

	identity, err := f.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "jake@jake.jake", identity.Email)
	assert.Equal(t, model.NonceBaseline, identity.Nonce)
	assert.Equal(t, "jake", identity.Profile.Username)
	assert.Equal(t, []model.AuthEventType{model.EventRegistered}, f.events.types())
}

func TestRegister_DuplicateLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.register(t, "jake@jake.jake")
	_, err := f.svc.Logoff(ctx, "jake@jake.jake")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterInput{Username: "other", Email: "jake@jake.jake", Password: "different1"})
	assert.ErrorIs(t, err, ErrEmailExists)

	stored, err := f.users.GetByEmail(ctx, "jake@jake.jake")
	require.NoError(t, err)
	assert.Equal(t, first.User.PasswordHash, stored.PasswordHash)
	assert.Equal(t, "jake", stored.Username)

	current, err := f.nonces.Current(ctx, "jake@jake.jake")
	require.NoError(t, err)
	assert.Equal(t, int64(2), current)
}

func TestRegister_InvalidInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{Username: " ", Email: "a@b.c", Password: "12345678"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegister_RollsBackUserWhenNonceCreateFails(t *testing.T) {
	f := newFixtureWithNonces(t, failingNonceCreate{memory.NewNonceRepository()})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Username: "jake", Email: "jake@jake.jake", Password: "jakejake"})
	require.Error(t, err)

	_, err = f.users.GetByEmail(ctx, "jake@jake.jake")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLogin_AdvancesNonceAndRevokesOlderTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered := f.register(t, "jake@jake.jake")

	loggedIn, err := f.svc.Login(ctx, LoginInput{Email: "jake@jake.jake", Password: "jakejake"})
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, registered.Token)
	assert.ErrorIs(t, err, ErrStaleToken)

	identity, err := f.svc.Authenticate(ctx, loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(2), identity.Nonce)
}

func TestLogin_WrongPasswordLeavesNonce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "jake@jake.jake")

	_, err := f.svc.Login(ctx, LoginInput{Email: "jake@jake.jake", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	current, err := f.nonces.Current(ctx, "jake@jake.jake")
	require.NoError(t, err)
	assert.Equal(t, model.NonceBaseline, current)

	_, err = f.svc.Authenticate(ctx, registered.Token)
	assert.NoError(t, err)
	assert.Contains(t, f.events.types(), model.EventLoginFailed)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), LoginInput{Email: "nobody@x.y", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "jake@jake.jake")
	require.NoError(t, f.svc.Disable(ctx, "jake@jake.jake"))

	_, err := f.svc.Login(ctx, LoginInput{Email: "jake@jake.jake", Password: "jakejake"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthenticate_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "jake@jake.jake")

	_, err := f.svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrTokenMissing)

	_, err = f.svc.Authenticate(ctx, "not.a.token")
	assert.ErrorIs(t, err, jwtutil.ErrInvalidToken)

	forged, err := jwtutil.NewService(&config.AuthConfig{JWTSecret: "other"}).Issue("jake@jake.jake", 1)
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, jwtutil.ErrInvalidToken)

	ghost, err := jwtutil.NewService(&config.AuthConfig{JWTSecret: "test-secret"}).Issue("ghost@x.y", 1)
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, f.svc.Disable(ctx, "jake@jake.jake"))
	_, err = f.svc.Authenticate(ctx, registered.Token)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLogoff_ConcurrentCallsAdvanceByN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "jake@jake.jake")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Logoff(ctx, "jake@jake.jake")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	current, err := f.nonces.Current(ctx, "jake@jake.jake")
	require.NoError(t, err)
	assert.Equal(t, model.NonceBaseline+n, current)
}

func TestUpdateProfile_EmailChangeKeepsSessionValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "jake@jake.jake")

	identity, err := f.svc.Authenticate(ctx, registered.Token)
	require.NoError(t, err)

	updated, err := f.svc.UpdateProfile(ctx, identity, UpdateInput{Email: "jacob@jake.jake", Bio: "I work at statefarm"})
	require.NoError(t, err)
	assert.Equal(t, "jacob@jake.jake", updated.User.Email)
	assert.Equal(t, "I work at statefarm", updated.User.Bio)

	next, err := f.svc.Authenticate(ctx, updated.Token)
	require.NoError(t, err)
	assert.Equal(t, "jacob@jake.jake", next.Email)
	assert.Equal(t, identity.Nonce, next.Nonce)

	_, err = f.nonces.Current(ctx, "jake@jake.jake")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.svc.Authenticate(ctx, registered.Token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile_PasswordIsHashed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "jake@jake.jake")
	identity, err := f.svc.Authenticate(ctx, registered.Token)
	require.NoError(t, err)

	_, err = f.svc.UpdateProfile(ctx, identity, UpdateInput{Password: "brand-new-pass"})
	require.NoError(t, err)

	stored, err := f.users.GetByEmail(ctx, "jake@jake.jake")
	require.NoError(t, err)
	assert.NotEqual(t, "brand-new-pass", stored.PasswordHash)
	assert.True(t, f.svc.VerifyPassword("brand-new-pass", stored.PasswordHash))
}

func TestUpdateProfile_Conflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "jake@jake.jake")
	f.register(t, "taken@jake.jake")
	identity, err := f.svc.Authenticate(ctx, registered.Token)
	require.NoError(t, err)

	_, err = f.svc.UpdateProfile(ctx, identity, UpdateInput{Email: "taken@jake.jake"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = f.svc.UpdateProfile(ctx, identity, UpdateInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	current, err := f.nonces.Current(ctx, "jake@jake.jake")
	require.NoError(t, err)
	assert.Equal(t, model.NonceBaseline, current)
}

func TestResetNonce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "jake@jake.jake")

	_, err := f.svc.Logoff(ctx, "jake@jake.jake")
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, registered.Token)
	require.ErrorIs(t, err, ErrStaleToken)

	require.NoError(t, f.svc.ResetNonce(ctx, "jake@jake.jake"))
	_, err = f.svc.Authenticate(ctx, registered.Token)
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.ResetNonce(ctx, "ghost@x.y"), ErrUserNotFound)
}

func TestDeleteUser_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "jake@jake.jake")
	identity, err := f.svc.Authenticate(ctx, registered.Token)
	require.NoError(t, err)

	articles := NewArticleService(f.articles)
	_, err = articles.Create(ctx, identity, CreateArticleInput{Title: "How to train your dragon"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteUser(ctx, "jake@jake.jake"))

	_, err = f.users.GetByEmail(ctx, "jake@jake.jake")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.nonces.Current(ctx, "jake@jake.jake")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = articles.Get(ctx, "how-to-train-your-dragon")
	assert.ErrorIs(t, err, ErrArticleNotFound)

	assert.ErrorIs(t, f.svc.DeleteUser(ctx, "jake@jake.jake"), ErrUserNotFound)
}

func TestResetNonce_RevivesBaselineTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "jake@jake.jake")

	loggedIn, err := f.svc.Login(ctx, LoginInput{Email: "jake@jake.jake", Password: "jakejake"})
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, registered.Token)
	require.ErrorIs(t, err, ErrStaleToken)

	require.NoError(t, f.svc.ResetNonce(ctx, "jake@jake.jake"))

	// Every token minted at the baseline is accepted again; later ones are not.
	identity, err := f.svc.Authenticate(ctx, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, model.NonceBaseline, identity.Nonce)

	_, err = f.svc.Authenticate(ctx, loggedIn.Token)
	assert.ErrorIs(t, err, ErrStaleToken)
}
