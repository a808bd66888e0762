package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// consumeScript deletes the key only when it holds the submitted code, so a
// code can be used once even with several API instances.
var consumeScript = redis.NewScript(`
	local stored = redis.call('GET', KEYS[1])
	if stored == ARGV[1] then
		redis.call('DEL', KEYS[1])
		return 1
	end
	return 0
`)

// otpClient is the subset of *redis.Client the store needs.
type otpClient interface {
	redis.Scripter
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// OTPStore keeps one-time codes in Redis with a TTL.
type OTPStore struct {
	rdb    otpClient
	prefix string
}

func NewOTPStore(rdb otpClient) *OTPStore {
	return &OTPStore{rdb: rdb, prefix: "otp"}
}

func (s *OTPStore) key(purpose, email string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, purpose, strings.ToLower(strings.TrimSpace(email)))
}

func (s *OTPStore) Save(ctx context.Context, purpose, email, code string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, s.key(purpose, email), code, ttl).Err(); err != nil {
		logger.Error("Failed to store OTP", err, map[string]interface{}{
			"purpose": purpose,
		})
		return err
	}
	return nil
}

func (s *OTPStore) Verify(ctx context.Context, purpose, email, code string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.rdb, []string{s.key(purpose, email)}, code).Int()
	if err != nil {
		logger.Error("Failed to verify OTP", err, map[string]interface{}{
			"purpose": purpose,
		})
		return false, err
	}
	return n == 1, nil
}
