// Package github talks to the source host: App token exchange, repository
// and branch listing, archive downloads and push webhooks.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

const DefaultAPIURL = "https://api.github.com/"

// App exchanges GitHub App credentials for installation access tokens.
type App struct {
	baseURL string
	now     func() time.Time
}

func NewApp(baseURL string) *App {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &App{baseURL: baseURL, now: time.Now}
}

// Token is an installation access token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// AppJWT signs the short-lived RS256 app assertion. iat is backdated one
// minute for clock drift; the host rejects lifetimes over ten minutes.
func AppJWT(appID, privateKeyPEM string, now time.Time) (string, error) {
	key, err := jwtlib.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return "", fmt.Errorf("parse app private key: %w", err)
	}

	claims := jwtlib.RegisteredClaims{
		Issuer:    appID,
		IssuedAt:  jwtlib.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(9 * time.Minute)),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign app jwt: %w", err)
	}
	return signed, nil
}

// ExchangeToken mints an installation access token for installationID.
func (a *App) ExchangeToken(ctx context.Context, appID, privateKeyPEM, installationID string) (*Token, error) {
	id, err := strconv.ParseInt(installationID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid installation id %q: %w", installationID, err)
	}

	assertion, err := AppJWT(appID, privateKeyPEM, a.now())
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, a.baseURL, assertion)
	if err != nil {
		return nil, err
	}

	tok, _, err := client.Apps.CreateInstallationToken(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("create installation token: %w", err)
	}
	if tok.GetToken() == "" {
		return nil, fmt.Errorf("create installation token: empty token in response")
	}
	return &Token{Value: tok.GetToken(), ExpiresAt: tok.GetExpiresAt().Time}, nil
}

// newClient returns a go-github client sending token as a bearer credential.
func newClient(ctx context.Context, baseURL, token string) (*gh.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := gh.NewClient(oauth2.NewClient(ctx, ts))

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse github api url: %w", err)
	}
	client.BaseURL = u
	return client, nil
}

// statusCode extracts the HTTP status of a go-github error response.
func statusCode(err error) int {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the source host.
func IsUnauthorized(err error) bool {
	return statusCode(err) == http.StatusUnauthorized
}
