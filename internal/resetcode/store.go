package resetcode

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"phonebank/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Store keeps one-time PIN reset codes in Redis with a per-key TTL, so the
// codes survive process restarts and work across instances. Delivery of the
// code (SMS) is an external concern; callers of Issue hand the code to a
// notifier.
type Store struct {
	rdb *redis.Client
	ttl time.Duration

	// Issue throttling, per caller.
	maxIssues   int
	issueWindow time.Duration
}

var (
	ErrThrottled   = errors.New("resetcode: too many codes requested")
	ErrCodeInvalid = errors.New("resetcode: invalid or expired code")
)

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Store{rdb: rdb, ttl: ttl, maxIssues: 3, issueWindow: time.Hour}
}

func key(callerID string) string { return "resetcode:" + callerID }

// Issue generates and stores a fresh 6-digit code for the caller,
// overwriting any previous one. At most a few codes per caller per hour.
func (s *Store) Issue(ctx context.Context, callerID string) (string, error) {
	if callerID == "" {
		return "", errors.New("resetcode: caller id required")
	}

	allowed, err := utils.AllowAttempt(ctx, s.rdb, "resetcode:issue:"+callerID, s.maxIssues, s.issueWindow)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", ErrThrottled
	}

	code, err := randomCode()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, key(callerID), code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the caller's code on every attempt, right or wrong: a
// wrong guess burns the stored code, so a guesser gets one shot per issued
// code instead of the whole TTL window. Wrong, consumed and expired codes
// all fail with ErrCodeInvalid.
func (s *Store) Verify(ctx context.Context, callerID, code string) error {
	if callerID == "" || code == "" {
		return ErrCodeInvalid
	}
	stored, err := s.rdb.GetDel(ctx, key(callerID)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCodeInvalid
	}
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrCodeInvalid
	}
	return nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
