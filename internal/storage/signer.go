package storage

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired download token")

type downloadClaims struct {
	Key string `json:"key"`
	jwtlib.RegisteredClaims
}

// URLSigner issues short-lived tokens binding a download to one key.
type URLSigner struct {
	secret []byte
	now    func() time.Time
}

func NewURLSigner(secret string) *URLSigner {
	return &URLSigner{secret: []byte(secret), now: time.Now}
}

func (s *URLSigner) Sign(key string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := downloadClaims{
		Key: key,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *URLSigner) Verify(key, token string) error {
	parsed, err := jwtlib.ParseWithClaims(token, &downloadClaims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*downloadClaims)
	if !ok || claims.Key != key {
		return ErrInvalidToken
	}
	return nil
}
