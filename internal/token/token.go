// Package token issues and validates the bearer tokens that gate every
// verification operation. A token carries the subject id and a role claim;
// role checks downstream are a pure function of the validated claims.
package token

import (
	"errors"
	"time"

	"github.com/pascaldekloe/jwt"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"

	roleClaim = "role"

	// tokens are valid for a fixed window from issuance
	tokenLifetime = 24 * time.Hour
)

var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenMalformed   = errors.New("token is malformed")
	ErrSignatureInvalid = errors.New("token signature is invalid")
)

type Claims struct {
	Subject string
	Role    string
	Expiry  time.Time
}

type Gate struct {
	secretKey []byte
	issuer    string
}

func New(secretKey, issuer string) *Gate {
	return &Gate{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// Issue signs a token for the subject with the given role.
func (g *Gate) Issue(subject, role string) (string, time.Time, error) {
	var claims jwt.Claims
	claims.Subject = subject

	now := time.Now()
	expiry := now.Add(tokenLifetime)

	claims.Issued = jwt.NewNumericTime(now)
	claims.NotBefore = jwt.NewNumericTime(now)
	claims.Expires = jwt.NewNumericTime(expiry)

	claims.Issuer = g.issuer
	claims.Audiences = []string{g.issuer}

	claims.Set = map[string]any{roleClaim: role}

	jwtBytes, err := claims.HMACSign(jwt.HS256, g.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return string(jwtBytes), expiry, nil
}

// Validate checks signature, time window, issuer and audience, and returns
// the subject and role. Each failure cause maps to a distinct error so
// callers can report it precisely.
func (g *Gate) Validate(token string) (*Claims, error) {
	claims, err := jwt.HMACCheck([]byte(token), g.secretKey)
	if err != nil {
		if errors.Is(err, jwt.ErrSigMiss) {
			return nil, ErrSignatureInvalid
		}
		return nil, ErrTokenMalformed
	}

	now := time.Now()
	if !claims.Valid(now) {
		if claims.Expires != nil && now.After(claims.Expires.Time()) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	if claims.Issuer != g.issuer || !claims.AcceptAudience(g.issuer) {
		return nil, ErrTokenMalformed
	}

	role, _ := claims.String(roleClaim)
	if role == "" {
		role = RoleMember
	}

	var expiry time.Time
	if claims.Expires != nil {
		expiry = claims.Expires.Time()
	}

	return &Claims{
		Subject: claims.Subject,
		Role:    role,
		Expiry:  expiry,
	}, nil
}
