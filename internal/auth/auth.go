// Package auth resolves Google credentials for the Apps Script and Drive
// APIs under one of three strategies, in precedence order: service-account
// key (inline JSON or file path), OAuth 2.0 with an on-disk token cache,
// then application-default credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrNotAuthenticated is returned when an API client is requested before a
// successful Authenticate.
var ErrNotAuthenticated = errors.New("not authenticated — call Authenticate first")

// AuthError reports a failed credential resolution or refresh. When the
// OAuth strategy needs a first-time authorization code, AuthURL carries
// the URL the user must visit.
type AuthError struct {
	Strategy Strategy
	AuthURL  string
	Err      error
}

func (e *AuthError) Error() string {
	if e.AuthURL != "" {
		return fmt.Sprintf("auth (%s): %v — visit %s and supply the authorization code via complete_google_auth", e.Strategy, e.Err, e.AuthURL)
	}
	return fmt.Sprintf("auth (%s): %v", e.Strategy, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Strategy identifies which credential source is in use.
type Strategy string

const (
	StrategyNone           Strategy = "none"
	StrategyServiceAccount Strategy = "service-account"
	StrategyOAuth          Strategy = "oauth"
	StrategyDefault        Strategy = "application-default"
)

// Options configures the Authenticator. All fields are optional; an empty
// Options falls through to application-default credentials.
type Options struct {
	// ServiceAccountKey is an inline service-account key JSON document.
	ServiceAccountKey string
	// ServiceAccountKeyFile is a path to a service-account key file.
	// Ignored when ServiceAccountKey is set.
	ServiceAccountKeyFile string
	// OAuthClientFile is a path to an OAuth client credentials JSON file
	// (the "installed" / "web" client secrets format).
	OAuthClientFile string
	// Scopes is the capability scope list requested for all strategies.
	Scopes []string
	// TokenStore caches OAuth tokens across restarts. Required when
	// OAuthClientFile is set.
	TokenStore TokenStore
}

// Authenticator holds the resolved credential state and hands out
// authorized HTTP clients. Safe for concurrent use.
type Authenticator struct {
	opts Options

	mu            sync.Mutex
	strategy      Strategy
	tokenSource   oauth2.TokenSource
	oauthConfig   *oauth2.Config
	authenticated bool
}

// New creates an Authenticator. No credential work happens until
// Authenticate is called.
func New(opts Options) *Authenticator {
	return &Authenticator{opts: opts, strategy: StrategyNone}
}

// IsAuthenticated reports whether a previous Authenticate succeeded.
func (a *Authenticator) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authenticated
}

// Strategy returns the strategy selected by the last successful
// Authenticate, or StrategyNone.
func (a *Authenticator) Strategy() Strategy {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.strategy
}

// Authenticate resolves credentials using the first configured strategy.
// Failures surface immediately as *AuthError; there is no retry.
func (a *Authenticator) Authenticate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.opts.ServiceAccountKey != "" || a.opts.ServiceAccountKeyFile != "":
		return a.authenticateServiceAccount()
	case a.opts.OAuthClientFile != "":
		return a.authenticateOAuth(ctx)
	default:
		return a.authenticateDefault(ctx)
	}
}

// authenticateServiceAccount parses a service-account key from inline JSON
// or a file path. Caller holds a.mu.
func (a *Authenticator) authenticateServiceAccount() error {
	data := []byte(a.opts.ServiceAccountKey)
	if len(data) == 0 {
		var err error
		data, err = os.ReadFile(a.opts.ServiceAccountKeyFile)
		if err != nil {
			return &AuthError{Strategy: StrategyServiceAccount, Err: fmt.Errorf("reading key file: %w", err)}
		}
	}

	cfg, err := google.JWTConfigFromJSON(data, a.opts.Scopes...)
	if err != nil {
		return &AuthError{Strategy: StrategyServiceAccount, Err: fmt.Errorf("parsing key: %w", err)}
	}

	// context.Background so the token source outlives any single request;
	// individual API calls carry their own request context.
	a.tokenSource = cfg.TokenSource(context.Background())
	a.strategy = StrategyServiceAccount
	a.authenticated = true
	return nil
}

// authenticateOAuth loads the OAuth client config and the cached token.
// With no cached token the returned *AuthError carries the authorization
// URL for the manual code flow. Caller holds a.mu.
func (a *Authenticator) authenticateOAuth(ctx context.Context) error {
	cfg, err := a.loadOAuthConfig()
	if err != nil {
		return err
	}

	if a.opts.TokenStore == nil {
		return &AuthError{Strategy: StrategyOAuth, Err: errors.New("no token store configured")}
	}

	token, err := a.opts.TokenStore.Load(a.tokenIdentity())
	if err != nil {
		return &AuthError{
			Strategy: StrategyOAuth,
			AuthURL:  cfg.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce),
			Err:      fmt.Errorf("no cached token: %w", err),
		}
	}

	a.installOAuthToken(token)
	return nil
}

// authenticateDefault falls back to ambient application-default
// credentials. Caller holds a.mu.
func (a *Authenticator) authenticateDefault(ctx context.Context) error {
	creds, err := google.FindDefaultCredentials(context.Background(), a.opts.Scopes...)
	if err != nil {
		return &AuthError{Strategy: StrategyDefault, Err: err}
	}
	a.tokenSource = creds.TokenSource
	a.strategy = StrategyDefault
	a.authenticated = true
	return nil
}

// CompleteOAuth exchanges a manually supplied authorization code for a
// token, persists it, and marks the authenticator as authenticated.
func (a *Authenticator) CompleteOAuth(ctx context.Context, code string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cfg, err := a.loadOAuthConfig()
	if err != nil {
		return err
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return &AuthError{Strategy: StrategyOAuth, Err: fmt.Errorf("exchanging authorization code: %w", err)}
	}
	if a.opts.TokenStore != nil {
		if err := a.opts.TokenStore.Save(a.tokenIdentity(), token); err != nil {
			return &AuthError{Strategy: StrategyOAuth, Err: fmt.Errorf("saving token: %w", err)}
		}
	}

	a.installOAuthToken(token)
	return nil
}

// installOAuthToken wires the cached token into an auto-refreshing,
// persisting token source. Caller holds a.mu and has loaded a.oauthConfig.
func (a *Authenticator) installOAuthToken(token *oauth2.Token) {
	base := a.oauthConfig.TokenSource(context.Background(), token)
	source := base
	if a.opts.TokenStore != nil {
		source = &PersistingTokenSource{
			Base:     base,
			Store:    a.opts.TokenStore,
			Identity: a.tokenIdentity(),
		}
	}
	a.tokenSource = oauth2.ReuseTokenSource(token, source)
	a.strategy = StrategyOAuth
	a.authenticated = true
}

// loadOAuthConfig parses the client credentials file once. Caller holds a.mu.
func (a *Authenticator) loadOAuthConfig() (*oauth2.Config, error) {
	if a.oauthConfig != nil {
		return a.oauthConfig, nil
	}
	if a.opts.OAuthClientFile == "" {
		return nil, &AuthError{Strategy: StrategyOAuth, Err: errors.New("no OAuth client credentials file configured")}
	}
	data, err := os.ReadFile(a.opts.OAuthClientFile)
	if err != nil {
		return nil, &AuthError{Strategy: StrategyOAuth, Err: fmt.Errorf("reading client credentials: %w", err)}
	}
	cfg, err := google.ConfigFromJSON(data, a.opts.Scopes...)
	if err != nil {
		return nil, &AuthError{Strategy: StrategyOAuth, Err: fmt.Errorf("parsing client credentials: %w", err)}
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	}
	a.oauthConfig = cfg
	return cfg, nil
}

// AuthURL returns the OAuth authorization URL, or "" when the OAuth
// strategy is not configured. Used by the auth tools and the auth-enhancer
// middleware.
func (a *Authenticator) AuthURL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	cfg, err := a.loadOAuthConfig()
	if err != nil {
		return ""
	}
	return cfg.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// HTTPClient returns an authorized HTTP client bound to the current
// credential state. Fails with ErrNotAuthenticated before a successful
// Authenticate.
func (a *Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.authenticated || a.tokenSource == nil {
		return nil, ErrNotAuthenticated
	}
	return oauth2.NewClient(context.Background(), a.tokenSource), nil
}

// RefreshToken forces a token fetch on the current source. Best-effort:
// underlying failures are re-raised without retry.
func (a *Authenticator) RefreshToken(ctx context.Context) error {
	a.mu.Lock()
	ts := a.tokenSource
	strategy := a.strategy
	a.mu.Unlock()

	if ts == nil {
		return ErrNotAuthenticated
	}
	if _, err := ts.Token(); err != nil {
		return &AuthError{Strategy: strategy, Err: fmt.Errorf("refreshing token: %w", err)}
	}
	return nil
}

// Reset clears all held credential state. Idempotent; the on-disk token
// cache is left intact so a later Authenticate can reuse it.
func (a *Authenticator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokenSource = nil
	a.oauthConfig = nil
	a.strategy = StrategyNone
	a.authenticated = false
}

// tokenIdentity keys the token cache. A single-identity server keys by
// the OAuth client file path so switching client credentials never reuses
// a stale token. Caller holds a.mu.
func (a *Authenticator) tokenIdentity() string {
	return "default:" + a.opts.OAuthClientFile
}
