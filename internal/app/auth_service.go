package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnauthorized indicates that no valid API key or bearer token was presented.
	ErrUnauthorized = errors.New("unauthorized")
)

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (string, error)
}

// AuthService authenticates API callers by API key or bearer token.
type AuthService struct {
	keyHashes [][]byte
	verifier  TokenVerifier
}

// NewAuthService creates an AuthService. keyHashes are bcrypt hashes of the
// accepted API keys; verifier may be nil.
func NewAuthService(keyHashes []string, verifier TokenVerifier) *AuthService {
	hashes := make([][]byte, 0, len(keyHashes))
	for _, h := range keyHashes {
		if h != "" {
			hashes = append(hashes, []byte(h))
		}
	}
	return &AuthService{keyHashes: hashes, verifier: verifier}
}

// Enabled reports whether any credential is configured. A disabled service
// accepts every request.
func (s *AuthService) Enabled() bool {
	return len(s.keyHashes) > 0 || s.verifier != nil
}

// Authenticate returns the principal for the given API key or bearer token.
func (s *AuthService) Authenticate(ctx context.Context, apiKey, bearer string) (string, error) {
	if !s.Enabled() {
		return "anonymous", nil
	}

	if apiKey != "" {
		for _, h := range s.keyHashes {
			if bcrypt.CompareHashAndPassword(h, []byte(apiKey)) == nil {
				return "api-key", nil
			}
		}
	}

	if bearer != "" && s.verifier != nil {
		subject, err := s.verifier.Verify(ctx, bearer)
		if err == nil && subject != "" {
			return subject, nil
		}
	}

	return "", ErrUnauthorized
}

// HashAPIKey returns the bcrypt hash to configure for key.
func HashAPIKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("api key must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateAPIKey returns a random URL-safe API key.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
