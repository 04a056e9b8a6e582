package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported JWT claims shape for this service.
// Area invariant: AreaID must be present; every engine query is scoped to
// the caller's area.
type Claims struct {
	jwt.RegisteredClaims

	CallerID string `json:"caller_id"`
	AreaID   string `json:"area_id"`
}
