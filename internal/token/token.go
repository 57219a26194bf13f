// Package token owns the cryptographic envelope of session tokens.
// A Codec signs and verifies HS256 JWTs carrying the user id, email,
// issue/expiry instants and a type discriminator (access or refresh).
// It holds no state beyond the process-wide signing secret and the
// configured lifetimes; issuing and decoding are pure functions of
// their inputs and that secret.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Type discriminates access tokens from refresh tokens via the
// "type" claim.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Decode failure modes. The caller is expected to translate these
// into its own error taxonomy.
var (
	ErrExpired          = errors.New("token expired")
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrInvalid          = errors.New("token invalid")
)

// Claims is the decoded claim set of a session token.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Type      Type
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// jwtClaims is the wire shape. The user id travels in a custom "id"
// claim alongside the registered iat/exp.
type jwtClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Typ   string `json:"type"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed session tokens. Construct once at
// startup and share; it is safe for concurrent use and never mutated.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec builds a Codec from the shared signing secret and the
// configured lifetimes (minutes for access tokens, days for refresh).
func NewCodec(secret string, accessTTLMin, refreshTTLDays int) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMin) * time.Minute,
		refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// AccessTTL exposes the configured access token lifetime so callers
// can report expires_in to clients.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// Issue signs a token of the given type for the user, valid from now.
// Access tokens live for the configured minutes, refresh tokens for
// the configured days. It returns the opaque signed string and its
// expiry instant.
func (c *Codec) Issue(userID uuid.UUID, email string, typ Type, now time.Time) (string, time.Time, error) {
	ttl := c.accessTTL
	if typ == TypeRefresh {
		ttl = c.refreshTTL
	}
	exp := now.UTC().Add(ttl)
	claims := jwtClaims{
		ID:    userID.String(),
		Email: email,
		Typ:   string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.UTC()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Decode verifies the signature and expiry of a signed token string
// and returns its claim set. It fails with ErrMalformed for strings
// that are not well-formed JWTs, ErrInvalidSignature when the
// signature does not match the shared secret, ErrExpired when the
// token is past its exp claim, and ErrInvalid for anything else the
// parser rejects (including non-HMAC signing methods).
func (c *Codec) Decode(raw string) (Claims, error) {
	var wire jwtClaims
	tok, err := jwt.ParseWithClaims(raw, &wire, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		default:
			return Claims{}, ErrInvalid
		}
	}
	if !tok.Valid {
		return Claims{}, ErrInvalid
	}

	userID, err := uuid.Parse(wire.ID)
	if err != nil {
		return Claims{}, ErrInvalid
	}
	out := Claims{
		UserID: userID,
		Email:  wire.Email,
		Type:   Type(wire.Typ),
	}
	if wire.IssuedAt != nil {
		out.IssuedAt = wire.IssuedAt.Time
	}
	if wire.ExpiresAt == nil {
		return Claims{}, ErrInvalid
	}
	out.ExpiresAt = wire.ExpiresAt.Time
	return out, nil
}
