package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wavechat/config"
	"wavechat/internal/domain/user"
	"wavechat/internal/repository"
	wave_errors "wavechat/pkg/errors"
)

// OTPStore holds one-time verification codes with a TTL.
type OTPStore interface {
	Set(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

// Mailer delivers verification codes. The default implementation only logs;
// a real SMTP sender slots in behind the same interface.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

type AuthService struct {
	userRepo  repository.UserRepository
	otps      OTPStore
	mailer    Mailer
	jwtSecret []byte
	accessTTL time.Duration
	otpTTL    time.Duration
}

func NewAuthService(userRepo repository.UserRepository, otps OTPStore, mailer Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		otps:      otps,
		mailer:    mailer,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
		otpTTL:    time.Duration(cfg.OTPExpiryMin) * time.Minute,
	}
}

type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

type UserInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsVerified  bool   `json:"is_verified"`
}

type AccessClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

// Register creates an unverified account and mails a verification code.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (UserInfo, error) {
	if err := validateRegister(in); err != nil {
		return UserInfo{}, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return UserInfo{}, wave_errors.ErrAlreadyExists
	} else if !errors.Is(err, wave_errors.ErrNotFound) {
		return UserInfo{}, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return UserInfo{}, err
	}

	newUser := &user.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		IsVerified:   false,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return UserInfo{}, err
	}

	if err := s.issueOTP(ctx, email); err != nil {
		return UserInfo{}, err
	}

	return toUserInfo(*newUser), nil
}

// VerifyEmail checks the mailed code and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" {
		return wave_errors.ErrInvalidInput
	}

	stored, err := s.otps.Get(ctx, email)
	if err != nil {
		if errors.Is(err, wave_errors.ErrNotFound) {
			return wave_errors.ErrExpired
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return wave_errors.ErrUnauthorized
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.userRepo.MarkVerified(ctx, u.ID); err != nil {
		return err
	}
	return s.otps.Delete(ctx, email)
}

// ResendOTP issues a fresh verification code for an unverified account.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return wave_errors.ErrInvalidInput
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return wave_errors.ErrConflict
	}
	return s.issueOTP(ctx, email)
}

// Login checks credentials and issues an access token. Unverified accounts
// cannot log in.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	if in.Email == "" || in.Password == "" {
		return AuthResponse{}, wave_errors.ErrInvalidInput
	}

	u, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, wave_errors.ErrNotFound) {
			return AuthResponse{}, wave_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	if err := comparePassword(u.PasswordHash, in.Password); err != nil {
		return AuthResponse{}, wave_errors.ErrUnauthorized
	}
	if !u.IsVerified {
		return AuthResponse{}, wave_errors.ErrForbidden
	}

	_ = s.userRepo.UpdateLastSeen(ctx, u.ID, time.Now())

	token, expiresIn, err := s.newAccessToken(u.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		User:        toUserInfo(u),
	}, nil
}

// ParseAccessToken validates a token and returns the user id it carries.
// The gateway handshake and the HTTP auth middleware both go through here.
func (s *AuthService) ParseAccessToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", wave_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, wave_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", wave_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return "", wave_errors.ErrUnauthorized
	}
	return claims.UserID, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (UserInfo, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return UserInfo{}, err
	}
	return toUserInfo(u), nil
}

// HTTPStatus maps service errors to response codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, wave_errors.ErrInvalidInput):
		return 400
	case errors.Is(err, wave_errors.ErrUnauthorized), errors.Is(err, wave_errors.ErrExpired):
		return 401
	case errors.Is(err, wave_errors.ErrForbidden):
		return 403
	case errors.Is(err, wave_errors.ErrNotFound):
		return 404
	case errors.Is(err, wave_errors.ErrAlreadyExists), errors.Is(err, wave_errors.ErrConflict):
		return 409
	case errors.Is(err, wave_errors.ErrInvalidState):
		return 422
	default:
		return 500
	}
}

func (s *AuthService) issueOTP(ctx context.Context, email string) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otps.Set(ctx, email, code, s.otpTTL); err != nil {
		return err
	}
	return s.mailer.SendOTP(ctx, email, code)
}

func (s *AuthService) newAccessToken(userID string) (string, int64, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.accessTTL.Seconds()), nil
}

func validateRegister(in RegisterInput) error {
	if in.Email == "" || in.DisplayName == "" {
		return wave_errors.ErrInvalidInput
	}
	if !strings.Contains(in.Email, "@") {
		return wave_errors.ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return wave_errors.ErrInvalidInput
	}
	return nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func generateOTP() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	n := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	return fmt.Sprintf("%06d", n%1000000), nil
}

func toUserInfo(u user.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL.String,
		IsVerified:  u.IsVerified,
	}
}
