package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	wave_errors "wavechat/pkg/errors"
)

const otpKeyPrefix = "wavechat:otp:"

// OTPStore keeps email verification codes in Redis under a TTL.
type OTPStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

func (s *OTPStore) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.client.Set(ctx, otpKeyPrefix+email, code, ttl).Err()
}

func (s *OTPStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.client.Get(ctx, otpKeyPrefix+email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", wave_errors.ErrNotFound
		}
		return "", err
	}
	return code, nil
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, otpKeyPrefix+email).Err()
}
