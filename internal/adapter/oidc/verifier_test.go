package oidc

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	jose "github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://id.example.com"
	testClientID = "fitlane"
)

func signToken(t *testing.T, key *rsa.PrivateKey, claims map[string]any) string {
	t.Helper()
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, nil)
	require.NoError(t, err)

	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	jws, err := signer.Sign(payload)
	require.NoError(t, err)
	raw, err := jws.CompactSerialize()
	require.NoError(t, err)
	return raw
}

func newTestVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return NewStaticVerifier(testIssuer, testClientID, keys), key
}

func baseClaims() map[string]any {
	return map[string]any{
		"iss": testIssuer,
		"aud": testClientID,
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
}

func TestVerifySubject(t *testing.T) {
	v, key := newTestVerifier(t)

	subject, err := v.Verify(context.Background(), signToken(t, key, baseClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
}

func TestVerifyPrefersEmail(t *testing.T) {
	v, key := newTestVerifier(t)
	claims := baseClaims()
	claims["email"] = "sam@example.com"

	subject, err := v.Verify(context.Background(), signToken(t, key, claims))
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", subject)
}

func TestVerifyRejects(t *testing.T) {
	v, key := newTestVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	expired := baseClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongAudience := baseClaims()
	wrongAudience["aud"] = "someone-else"

	tests := []struct {
		name  string
		token string
	}{
		{"expired", signToken(t, key, expired)},
		{"wrong audience", signToken(t, key, wrongAudience)},
		{"unknown key", signToken(t, other, baseClaims())},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			assert.Error(t, err)
		})
	}
}
