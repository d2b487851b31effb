package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavechat/config"
	"wavechat/internal/domain/user"
	wave_errors "wavechat/pkg/errors"
)

type fakeUserRepo struct {
	users map[string]user.User // id -> user
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]user.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, wave_errors.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, wave_errors.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u user.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return wave_errors.ErrNotFound
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) MarkVerified(ctx context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return wave_errors.ErrNotFound
	}
	u.IsVerified = true
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) UpdateLastSeen(ctx context.Context, id string, lastSeen time.Time) error {
	return nil
}

type memoryOTPStore struct {
	mu    sync.Mutex
	codes map[string]string
}

func newMemoryOTPStore() *memoryOTPStore {
	return &memoryOTPStore{codes: make(map[string]string)}
}

func (s *memoryOTPStore) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = code
	return nil
}

func (s *memoryOTPStore) Get(ctx context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[email]
	if !ok {
		return "", wave_errors.ErrNotFound
	}
	return code, nil
}

func (s *memoryOTPStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, email)
	return nil
}

type capturingMailer struct {
	lastEmail string
	lastCode  string
}

func (m *capturingMailer) SendOTP(ctx context.Context, email, code string) error {
	m.lastEmail = email
	m.lastCode = code
	return nil
}

func newTestAuthService() (*AuthService, *fakeUserRepo, *capturingMailer) {
	repo := newFakeUserRepo()
	mailer := &capturingMailer{}
	cfg := &config.Config{
		JWTSecret:    "test-secret",
		JWTExpiryMin: 60,
		OTPExpiryMin: 5,
	}
	return NewAuthService(repo, newMemoryOTPStore(), mailer, cfg), repo, mailer
}

func registerAndVerify(t *testing.T, svc *AuthService, mailer *capturingMailer, email, password string) UserInfo {
	t.Helper()
	info, err := svc.Register(context.Background(), RegisterInput{
		Email:       email,
		Password:    password,
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(context.Background(), email, mailer.lastCode))
	return info
}

func TestRegisterMailsOTP(t *testing.T) {
	svc, repo, mailer := newTestAuthService()

	info, err := svc.Register(context.Background(), RegisterInput{
		Email:       "Alice@Example.com",
		Password:    "supersecret",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.False(t, info.IsVerified)
	assert.Equal(t, "alice@example.com", info.Email)
	assert.Equal(t, "alice@example.com", mailer.lastEmail)
	assert.Len(t, mailer.lastCode, 6)

	stored, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", stored.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "alice@example.com", Password: "supersecret", DisplayName: "Alice",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email: "alice@example.com", Password: "othersecret", DisplayName: "Imposter",
	})
	assert.ErrorIs(t, err, wave_errors.ErrAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "alice@example.com", Password: "short", DisplayName: "Alice",
	})
	assert.ErrorIs(t, err, wave_errors.ErrInvalidInput)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email: "not-an-email", Password: "supersecret", DisplayName: "Alice",
	})
	assert.ErrorIs(t, err, wave_errors.ErrInvalidInput)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	svc, _, mailer := newTestAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "alice@example.com", Password: "supersecret", DisplayName: "Alice",
	})
	require.NoError(t, err)

	wrong := "000000"
	if mailer.lastCode == wrong {
		wrong = "000001"
	}
	err = svc.VerifyEmail(context.Background(), "alice@example.com", wrong)
	assert.ErrorIs(t, err, wave_errors.ErrUnauthorized)
}

func TestVerifyEmailMissingCodeExpired(t *testing.T) {
	svc, _, _ := newTestAuthService()
	err := svc.VerifyEmail(context.Background(), "alice@example.com", "123456")
	assert.ErrorIs(t, err, wave_errors.ErrExpired)
}

func TestLoginRequiresVerification(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "alice@example.com", Password: "supersecret", DisplayName: "Alice",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, wave_errors.ErrForbidden)
}

func TestLoginAndParseToken(t *testing.T) {
	svc, _, mailer := newTestAuthService()
	info := registerAndVerify(t, svc, mailer, "alice@example.com", "supersecret")

	resp, err := svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, info.ID, resp.User.ID)

	userID, err := svc.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, info.ID, userID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, mailer := newTestAuthService()
	registerAndVerify(t, svc, mailer, "alice@example.com", "supersecret")

	_, err := svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, wave_errors.ErrUnauthorized)
}

func TestLoginUnknownUserIsUnauthorized(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, wave_errors.ErrUnauthorized)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.ParseAccessToken("")
	assert.ErrorIs(t, err, wave_errors.ErrUnauthorized)

	_, err = svc.ParseAccessToken("not.a.token")
	assert.ErrorIs(t, err, wave_errors.ErrUnauthorized)
}

func TestResendOTPOnlyForUnverified(t *testing.T) {
	svc, _, mailer := newTestAuthService()
	registerAndVerify(t, svc, mailer, "alice@example.com", "supersecret")

	err := svc.ResendOTP(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, wave_errors.ErrConflict)
}
