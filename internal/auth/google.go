// Package auth wraps the identity-provider boundary: it exchanges an OAuth
// authorization code for a verified identity assertion (email, name,
// optional picture). The provider's protocol details stay inside this
// package.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/mfnunez/avisia-utm-builder/internal/config"
	"github.com/mfnunez/avisia-utm-builder/internal/models"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

var (
	ErrNoIDToken    = errors.New("token response contains no id_token")
	ErrMissingEmail = errors.New("identity token contains no email claim")
)

// Authenticator is the one capability the rest of the app consumes from
// the identity provider.
type Authenticator interface {
	// AuthCodeURL returns the provider URL to redirect the user to.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for a verified identity.
	Exchange(ctx context.Context, code string) (*models.UserInfo, error)
}

type googleAuthenticator struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleAuthenticator performs OIDC discovery against Google and builds
// the code-exchange config plus an ID-token verifier bound to our client ID.
func NewGoogleAuthenticator(ctx context.Context, cfg config.OAuthConfig) (Authenticator, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	return &googleAuthenticator{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (a *googleAuthenticator) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (a *googleAuthenticator) Exchange(ctx context.Context, code string) (*models.UserInfo, error) {
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, ErrNoIDToken
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify identity token: %w", err)
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse identity claims: %w", err)
	}
	if claims.Email == "" {
		return nil, ErrMissingEmail
	}

	return &models.UserInfo{
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
