package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/branchbox/internal/github"
	"github.com/edvin/branchbox/internal/model"
)

// CredentialStore persists the source-host credential material.
type CredentialStore interface {
	Load(ctx context.Context) (model.GitHubCredentials, error)
	Save(ctx context.Context, creds model.GitHubCredentials) error
}

// TokenExchanger trades App credentials for an installation token.
type TokenExchanger interface {
	ExchangeToken(ctx context.Context, appID, privateKeyPEM, installationID string) (*github.Token, error)
}

// CredentialBroker resolves credentials and mints access tokens. It holds no
// token state; callers cache through a TokenSession.
type CredentialBroker struct {
	store     CredentialStore
	fallback  model.GitHubCredentials
	exchanger TokenExchanger
	ttl       time.Duration
	timeout   time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCredentialBroker creates a broker. fallback supplies values the store
// does not hold; ttl caps how long a session reuses a token. timeout bounds
// each store and exchange call.
func NewCredentialBroker(logger zerolog.Logger, store CredentialStore, fallback model.GitHubCredentials, exchanger TokenExchanger, ttl, timeout time.Duration) *CredentialBroker {
	return &CredentialBroker{
		store:     store,
		fallback:  fallback,
		exchanger: exchanger,
		ttl:       ttl,
		timeout:   timeout,
		logger:    logger.With().Str("component", "credential-broker").Logger(),
		now:       time.Now,
	}
}

// Credentials loads the stored credentials, filling missing fields from the
// fallback. A store failure degrades to the fallback alone.
func (b *CredentialBroker) Credentials(ctx context.Context) model.GitHubCredentials {
	callCtx, cancel := withTimeout(ctx, b.timeout)
	defer cancel()
	creds, err := b.store.Load(callCtx)
	if err != nil {
		b.logger.Warn().Err(err).Msg("credential store unavailable, using fallback configuration")
		return b.fallback
	}
	return creds.Merge(b.fallback)
}

// Config returns the redacted view of the effective credentials.
func (b *CredentialBroker) Config(ctx context.Context) model.SourceConfig {
	return b.Credentials(ctx).View()
}

// SaveConfig writes the non-empty fields of creds to the store.
func (b *CredentialBroker) SaveConfig(ctx context.Context, creds model.GitHubCredentials) error {
	if creds == (model.GitHubCredentials{}) {
		return fmt.Errorf("%w: no credential fields given", ErrValidation)
	}
	callCtx, cancel := withTimeout(ctx, b.timeout)
	defer cancel()
	if err := b.store.Save(callCtx, creds); err != nil {
		return fmt.Errorf("save source host config: %w", err)
	}
	return nil
}

// AccessToken mints a fresh installation token. It returns ErrNotConfigured
// when any identifier is missing and ErrAuth when the exchange is rejected.
func (b *CredentialBroker) AccessToken(ctx context.Context) (*github.Token, error) {
	creds := b.Credentials(ctx)
	if !creds.Configured() {
		return nil, ErrNotConfigured
	}
	callCtx, cancel := withTimeout(ctx, b.timeout)
	defer cancel()
	tok, err := b.exchanger.ExchangeToken(callCtx, creds.AppID, creds.PrivateKey, creds.InstallationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	return tok, nil
}

// NewSession returns a token cache scoped to one unit of work.
func (b *CredentialBroker) NewSession() *TokenSession {
	return &TokenSession{broker: b}
}

// TokenSource yields an access token for the source host.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSession caches one access token for at most the broker TTL or the
// token's own expiry, whichever comes first.
type TokenSession struct {
	broker *CredentialBroker

	mu      sync.Mutex
	token   string
	expires time.Time
}

func (s *TokenSession) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.broker.now()
	if s.token != "" && now.Before(s.expires) {
		return s.token, nil
	}

	tok, err := s.broker.AccessToken(ctx)
	if err != nil {
		return "", err
	}

	expires := now.Add(s.broker.ttl)
	if !tok.ExpiresAt.IsZero() && tok.ExpiresAt.Before(expires) {
		expires = tok.ExpiresAt
	}
	s.token, s.expires = tok.Value, expires
	return s.token, nil
}
