package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumewave/agency-site/internal/config"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func do(h http.Handler, mutate func(*http.Request)) int {
	req := httptest.NewRequest(http.MethodGet, "/api/subscribers", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireAdminOpenWhenUnconfigured(t *testing.T) {
	am := NewAuthManager(config.AuthConfig{CookieName: "c"}, "http://localhost:3000", nil)
	assert.True(t, am.Open())
	assert.Equal(t, http.StatusOK, do(am.RequireAdmin(okHandler), nil))
}

func TestRequireAdminAPIKey(t *testing.T) {
	am := NewAuthManager(config.AuthConfig{CookieName: "c", AdminAPIKey: "s3cret"}, "", nil)
	h := am.RequireAdmin(okHandler)

	assert.Equal(t, http.StatusUnauthorized, do(h, nil))
	assert.Equal(t, http.StatusUnauthorized, do(h, func(r *http.Request) { r.Header.Set("Authorization", "Bearer wrong") }))
	assert.Equal(t, http.StatusUnauthorized, do(h, func(r *http.Request) { r.Header.Set("Authorization", "s3cret") }))
	assert.Equal(t, http.StatusOK, do(h, func(r *http.Request) { r.Header.Set("Authorization", "Bearer s3cret") }))
	assert.Equal(t, http.StatusOK, do(h, func(r *http.Request) { r.Header.Set("Authorization", "bearer s3cret") }))
}

func TestRequireAdminSession(t *testing.T) {
	cfg := config.AuthConfig{Enabled: true, CookieName: "adm", CookieMaxAge: 3600, AllowedDomain: "lumewave.example"}
	am := NewAuthManager(cfg, "", nil)
	h := am.RequireAdmin(okHandler)

	id, err := am.CreateSession(context.Background(), &GoogleUserInfo{ID: "1", Email: "ops@lumewave.example"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(h, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "adm", Value: id}) }))
	assert.Equal(t, http.StatusUnauthorized, do(h, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "adm", Value: "forged"}) }))

	am.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, http.StatusUnauthorized, do(h, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "adm", Value: id}) }))
}

func TestDomainAllowed(t *testing.T) {
	am := NewAuthManager(config.AuthConfig{AllowedDomain: "lumewave.example"}, "", nil)
	assert.True(t, am.domainAllowed("a@LumeWave.example"))
	assert.False(t, am.domainAllowed("a@evil.example"))
	assert.False(t, am.domainAllowed("not-an-email"))
}

func TestHandleLoginRedirectsWithHostedDomain(t *testing.T) {
	cfg := config.AuthConfig{Enabled: true, GoogleClientID: "cid", AllowedDomain: "lumewave.example", CookieName: "adm"}
	am := NewAuthManager(cfg, "https://site.example", nil)
	rec := httptest.NewRecorder()
	am.HandleLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	loc := rec.Header().Get("Location")
	assert.Contains(t, loc, "accounts.google.com")
	assert.Contains(t, loc, "hd=lumewave.example")
	assert.Contains(t, loc, "redirect_uri=https%3A%2F%2Fsite.example%2Fauth%2Fcallback")
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, "oauth_state", rec.Result().Cookies()[0].Name)
}

func TestHandleCallbackRejectsBadState(t *testing.T) {
	am := NewAuthManager(config.AuthConfig{Enabled: true, CookieName: "adm"}, "", nil)
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=a&code=x", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "b"})
	rec := httptest.NewRecorder()
	am.HandleCallback(rec, req)
	assert.Equal(t, "/admin?error=invalid_state", rec.Header().Get("Location"))
}

func TestHandleLogoutDeletesSession(t *testing.T) {
	store := NewMemorySessionStore()
	am := NewAuthManager(config.AuthConfig{Enabled: true, CookieName: "adm", CookieMaxAge: 60}, "", store)
	id, err := am.CreateSession(context.Background(), &GoogleUserInfo{Email: "a@b.c"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "adm", Value: id})
	am.HandleLogout(httptest.NewRecorder(), req)

	s, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestMemorySessionStoreCleanup(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Save(ctx, "old", &Session{ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.Save(ctx, "new", &Session{ExpiresAt: now.Add(time.Hour)}))
	assert.Equal(t, 1, store.Cleanup())

	s, _ := store.Get(ctx, "new")
	assert.NotNil(t, s)
}

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisSessionStore(client, "")
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "abc", &Session{Email: "ops@lumewave.example", ExpiresAt: time.Now().Add(time.Hour)}))
	assert.True(t, mr.Exists("admin_session:abc"))

	s, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "ops@lumewave.example", s.Email)

	mr.FastForward(2 * time.Hour)
	s, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, s)

	assert.Error(t, store.Save(ctx, "x", &Session{ExpiresAt: time.Now().Add(-time.Second)}))
	require.NoError(t, store.Delete(ctx, "missing"))
}
