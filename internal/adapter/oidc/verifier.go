// Package oidc verifies bearer tokens issued by an OpenID Connect provider.
package oidc

import (
	"context"
	"fmt"

	"fitlane/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Verifier checks ID tokens against the provider's published keys.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

var _ app.TokenVerifier = (*Verifier)(nil)

// NewVerifier discovers the provider at issuer. Tokens must be issued for
// clientID.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// NewStaticVerifier verifies tokens against a fixed key set, skipping
// discovery.
func NewStaticVerifier(issuer, clientID string, keys oidc.KeySet) *Verifier {
	return &Verifier{verifier: oidc.NewVerifier(issuer, keys, &oidc.Config{ClientID: clientID})}
}

// Verify returns the subject of a valid token.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (string, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", err
	}

	var claims struct {
		Email string `json:"email"`
		Sub   string `json:"sub"`
	}
	if err := token.Claims(&claims); err != nil {
		return "", fmt.Errorf("parse claims: %w", err)
	}
	if claims.Email != "" {
		return claims.Email, nil
	}
	return token.Subject, nil
}
