package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"phonebank/internal/assignment"
	"phonebank/pkg/utils"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCredentialInvalid = errors.New("auth: invalid phone or pin")
	ErrThrottled         = errors.New("auth: too many attempts")
)

// CallerSource is the storage lookup the credential check needs.
type CallerSource interface {
	CallerByPhone(ctx context.Context, areaID, phone string) (assignment.Caller, bool, error)
}

// Authenticator validates caller credentials (phone + PIN within an area)
// with a per-phone attempt throttle backed by Redis. The throttle key is
// windowed, so lockouts expire on their own.
type Authenticator struct {
	store CallerSource

	// rdb may be nil (tests); throttling is then skipped.
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewAuthenticator(store CallerSource, rdb *redis.Client, maxAttempts int, window time.Duration) *Authenticator {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &Authenticator{store: store, rdb: rdb, maxAttempts: maxAttempts, window: window}
}

// Authenticate checks a caller's phone + PIN. Failed attempts count against
// the throttle window; a success clears it.
func (a *Authenticator) Authenticate(ctx context.Context, areaID, phone, pin string) (assignment.Caller, error) {
	if areaID == "" || phone == "" || pin == "" {
		return assignment.Caller{}, ErrCredentialInvalid
	}

	key := "login:" + areaID + ":" + phone
	if a.rdb != nil {
		allowed, err := utils.AllowAttempt(ctx, a.rdb, key, a.maxAttempts, a.window)
		if err != nil {
			return assignment.Caller{}, err
		}
		if !allowed {
			return assignment.Caller{}, ErrThrottled
		}
	}

	caller, ok, err := a.store.CallerByPhone(ctx, areaID, phone)
	if err != nil {
		return assignment.Caller{}, err
	}
	// Compare even on a miss, so lookup success is not observable by timing.
	stored := ""
	if ok {
		stored = caller.Pin
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(pin)) != 1 || !ok {
		return assignment.Caller{}, ErrCredentialInvalid
	}

	if a.rdb != nil {
		_ = utils.ClearAttempts(ctx, a.rdb, key)
	}
	return caller, nil
}
