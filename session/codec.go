package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrRecordInvalid is returned when a stored blob fails signature or shape
// checks. Callers treat it as a stale session, not an error condition.
var ErrRecordInvalid = errors.New("session record invalid")

type recordClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"name,omitempty"`
	AvatarURL   string `json:"avatar,omitempty"`
	Role        string `json:"role"`
	Active      string `json:"active,omitempty"`
	LastLogin   int64  `json:"last_login,omitempty"`
	RefreshedAt int64  `json:"refreshed_at,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and parses session records. Signing is symmetric (HS256):
// the record never leaves the trust boundary of the process that wrote it.
type Codec struct {
	key []byte
}

// NewCodec returns a Codec signing with key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) == 0 {
		return nil, errors.New("signing key required")
	}
	out := make([]byte, len(key))
	copy(out, key)
	return &Codec{key: out}, nil
}

// Encode serializes rec into a signed compact token.
func (c *Codec) Encode(rec Record) (string, error) {
	claims := recordClaims{
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		AvatarURL:   rec.AvatarURL,
		Role:        rec.Role,
		Active:      rec.Active,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  rec.AccountID,
			IssuedAt: jwt.NewNumericDate(rec.IssuedAt),
		},
	}
	if !rec.LastLogin.IsZero() {
		claims.LastLogin = rec.LastLogin.Unix()
	}
	if !rec.RefreshedAt.IsZero() {
		claims.RefreshedAt = rec.RefreshedAt.Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.key)
}

// Decode parses and verifies a stored blob. Any parse, signature, or
// shape failure yields ErrRecordInvalid.
func (c *Codec) Decode(raw string) (Record, error) {
	claims := &recordClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrRecordInvalid
		}
		return c.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return Record{}, ErrRecordInvalid
	}
	if claims.Subject == "" || claims.Email == "" {
		return Record{}, ErrRecordInvalid
	}

	rec := Record{
		AccountID:   claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		AvatarURL:   claims.AvatarURL,
		Role:        claims.Role,
		Active:      claims.Active,
	}
	if claims.IssuedAt != nil {
		rec.IssuedAt = claims.IssuedAt.Time
	}
	if claims.LastLogin != 0 {
		rec.LastLogin = time.Unix(claims.LastLogin, 0).UTC()
	}
	if claims.RefreshedAt != 0 {
		rec.RefreshedAt = time.Unix(claims.RefreshedAt, 0).UTC()
	}
	return rec, nil
}
