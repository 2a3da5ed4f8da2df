// Package identity signs viewers in with Google through the OAuth2
// authorization code flow and hands out authorized HTTP clients per viewer
// session.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jrazmi/taskclock/sdk/environment"
	"github.com/jrazmi/taskclock/sdk/logger"
)

var (
	ErrDisabled     = errors.New("sign-in is not configured")
	ErrNotSignedIn  = errors.New("session is not signed in")
	ErrInvalidState = errors.New("invalid or expired oauth state")
)

// stateLifetime bounds how long a login may take.
const stateLifetime = 10 * time.Minute

// Options is the exportable configuration. Sign-in is disabled while
// ClientID is empty.
type Options struct {
	ClientID     string   `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string   `env:"OAUTH_REDIRECT_URL" default:"http://localhost:3000/auth/callback"`
	Scopes       []string `env:"OAUTH_SCOPES" default:"openid,email,https://www.googleapis.com/auth/calendar.events" separator:","`
}

func (o Options) Enabled() bool {
	return o.ClientID != ""
}

// LoadOptions reads Options from prefixed environment variables.
func LoadOptions(prefix string) (Options, error) {
	var o Options
	if err := environment.ParseEnvTags(prefix, &o); err != nil {
		return Options{}, fmt.Errorf("parsing identity config: %w", err)
	}
	return o, nil
}

type pendingLogin struct {
	session string
	expires time.Time
}

// Status is what a viewer sees about their sign-in.
type Status struct {
	Enabled  bool      `json:"enabled"`
	SignedIn bool      `json:"signedIn"`
	Expiry   time.Time `json:"expiry,omitzero"`
}

// Provider runs the OAuth2 flow and keeps tokens per viewer session in
// memory.
type Provider struct {
	log *logger.Logger
	cfg *oauth2.Config
	now func() time.Time

	mu      sync.Mutex
	pending map[string]pendingLogin
	tokens  map[string]oauth2.TokenSource
	expiry  map[string]time.Time
}

// New builds a Google provider. It returns nil when sign-in is disabled.
func New(log *logger.Logger, opts Options) *Provider {
	if !opts.Enabled() {
		return nil
	}
	return NewWithConfig(log, &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.RedirectURL,
		Scopes:       opts.Scopes,
		Endpoint:     google.Endpoint,
	})
}

// NewWithConfig builds a provider over any OAuth2 endpoint.
func NewWithConfig(log *logger.Logger, cfg *oauth2.Config) *Provider {
	return &Provider{
		log:     log,
		cfg:     cfg,
		now:     time.Now,
		pending: map[string]pendingLogin{},
		tokens:  map[string]oauth2.TokenSource{},
		expiry:  map[string]time.Time{},
	}
}

// LoginURL starts a login for session and returns the consent page URL.
func (p *Provider) LoginURL(session string) (string, error) {
	if p == nil {
		return "", ErrDisabled
	}

	state := uuid.NewString()
	now := p.now()

	p.mu.Lock()
	for s, pl := range p.pending {
		if now.After(pl.expires) {
			delete(p.pending, s)
		}
	}
	p.pending[state] = pendingLogin{session: session, expires: now.Add(stateLifetime)}
	p.mu.Unlock()

	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// Callback completes a login. state must have been issued to session.
func (p *Provider) Callback(ctx context.Context, session, state, code string) error {
	if p == nil {
		return ErrDisabled
	}

	p.mu.Lock()
	pl, ok := p.pending[state]
	delete(p.pending, state)
	p.mu.Unlock()

	if !ok || pl.session != session || p.now().After(pl.expires) {
		return ErrInvalidState
	}

	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	p.mu.Lock()
	p.tokens[session] = p.cfg.TokenSource(context.Background(), tok)
	p.expiry[session] = tok.Expiry
	p.mu.Unlock()

	p.log.InfoContext(ctx, "viewer signed in", "session", session)
	return nil
}

// Logout forgets the token of session.
func (p *Provider) Logout(session string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, session)
	delete(p.expiry, session)
}

func (p *Provider) Status(session string) Status {
	if p == nil {
		return Status{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.tokens[session]
	return Status{Enabled: true, SignedIn: ok, Expiry: p.expiry[session]}
}

// HTTPClient returns a client that authorizes requests as session's viewer,
// refreshing the token as needed.
func (p *Provider) HTTPClient(ctx context.Context, session string) (*http.Client, error) {
	if p == nil {
		return nil, ErrDisabled
	}

	p.mu.Lock()
	ts, ok := p.tokens[session]
	p.mu.Unlock()

	if !ok {
		return nil, ErrNotSignedIn
	}
	return oauth2.NewClient(ctx, ts), nil
}
