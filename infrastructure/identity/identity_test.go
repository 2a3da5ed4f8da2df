package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jrazmi/taskclock/sdk/logger"
)

func newTestProvider(t *testing.T) (*Provider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			require.NoError(t, r.ParseForm())
			if r.Form.Get("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"Bearer","expires_in":3600}`))
		case "/api":
			_, _ = w.Write([]byte(r.Header.Get("Authorization")))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	p := NewWithConfig(logger.NewDiscard(), &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/auth/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	})
	return p, srv
}

func stateOf(t *testing.T, loginURL string) string {
	t.Helper()
	u, err := url.Parse(loginURL)
	require.NoError(t, err)
	assert.Equal(t, "offline", u.Query().Get("access_type"))
	return u.Query().Get("state")
}

func TestLoginFlow(t *testing.T) {
	p, srv := newTestProvider(t)
	ctx := context.Background()

	_, err := p.HTTPClient(ctx, "viewer")
	assert.ErrorIs(t, err, ErrNotSignedIn)

	loginURL, err := p.LoginURL("viewer")
	require.NoError(t, err)
	state := stateOf(t, loginURL)

	require.NoError(t, p.Callback(ctx, "viewer", state, "good-code"))
	assert.True(t, p.Status("viewer").SignedIn)

	client, err := p.HTTPClient(ctx, "viewer")
	require.NoError(t, err)
	resp, err := client.Get(srv.URL + "/api")
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	assert.Equal(t, "Bearer abc", string(buf[:n]))

	p.Logout("viewer")
	assert.False(t, p.Status("viewer").SignedIn)
}

func TestCallback_RejectsBadState(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	loginURL, err := p.LoginURL("viewer")
	require.NoError(t, err)
	state := stateOf(t, loginURL)

	assert.ErrorIs(t, p.Callback(ctx, "viewer", "forged", "good-code"), ErrInvalidState)
	assert.ErrorIs(t, p.Callback(ctx, "someone-else", state, "good-code"), ErrInvalidState)
	// a state is single use even when the session was wrong
	assert.ErrorIs(t, p.Callback(ctx, "viewer", state, "good-code"), ErrInvalidState)

	loginURL, err = p.LoginURL("viewer")
	require.NoError(t, err)
	p.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.ErrorIs(t, p.Callback(ctx, "viewer", stateOf(t, loginURL), "good-code"), ErrInvalidState)
}

func TestCallback_ExchangeFailure(t *testing.T) {
	p, _ := newTestProvider(t)
	loginURL, err := p.LoginURL("viewer")
	require.NoError(t, err)

	err = p.Callback(context.Background(), "viewer", stateOf(t, loginURL), "bad-code")
	assert.Error(t, err)
	assert.False(t, p.Status("viewer").SignedIn)
}

func TestDisabledProvider(t *testing.T) {
	p := New(logger.NewDiscard(), Options{})
	assert.Nil(t, p)

	_, err := p.LoginURL("x")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = p.HTTPClient(context.Background(), "x")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, Status{}, p.Status("x"))
	p.Logout("x")
}

func TestLoadOptions(t *testing.T) {
	t.Setenv("IDTEST_GOOGLE_CLIENT_ID", "cid")
	o, err := LoadOptions("IDTEST")
	require.NoError(t, err)
	assert.True(t, o.Enabled())
	assert.Contains(t, o.Scopes, "https://www.googleapis.com/auth/calendar.events")
	assert.NotNil(t, New(logger.NewDiscard(), o))
}
