package storage

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that are malformed, forged or expired
var ErrInvalidToken = errors.New("invalid or expired file token")

// FilesPath is the route serving signed downloads
const FilesPath = "/api/v1/files"

// Signer issues and checks HS256 tokens naming a stored object
type Signer struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

// NewSigner returns a signer producing links rooted at baseURL
func NewSigner(secret, baseURL string) *Signer {
	return &Signer{secret: []byte(secret), baseURL: baseURL, now: time.Now}
}

// WithNow returns a copy of the signer reading the time from now
func (s *Signer) WithNow(now func() time.Time) *Signer {
	return &Signer{secret: s.secret, baseURL: s.baseURL, now: now}
}

// Token returns a token for name expiring after ttl
func (s *Signer) Token(name string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   name,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token for %s: %w", name, err)
	}
	return token, nil
}

// SignedURL returns the download link for name
func (s *Signer) SignedURL(name string, ttl time.Duration) (string, error) {
	token, err := s.Token(name, ttl)
	if err != nil {
		return "", err
	}
	return s.baseURL + FilesPath + "?token=" + url.QueryEscape(token), nil
}

// Verify checks token and returns the object name it was issued for
func (s *Signer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
