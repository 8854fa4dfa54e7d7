// Package auth guards the admin API. A request is admitted with a bearer
// API key (cron callers) or a Google OAuth session restricted to one
// hosted domain.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/lumewave/agency-site/internal/config"
	"github.com/lumewave/agency-site/internal/pkg/httputil"
	"github.com/lumewave/agency-site/internal/pkg/logger"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUserInfo represents the user info returned by Google
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	HD            string `json:"hd"`
}

// AuthManager handles admin authentication.
type AuthManager struct {
	config       config.AuthConfig
	oauth2Config *oauth2.Config
	store        SessionStore
	userInfoURL  string
	now          func() time.Time
}

// NewAuthManager creates a manager. store defaults to an in-memory store.
func NewAuthManager(cfg config.AuthConfig, baseURL string, store SessionStore) *AuthManager {
	if store == nil {
		store = NewMemorySessionStore()
	}
	return &AuthManager{
		config: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		store:       store,
		userInfoURL: googleUserInfoURL,
		now:         time.Now,
	}
}

// Open reports whether admin routes are unprotected: no OAuth and no API key.
func (am *AuthManager) Open() bool {
	return !am.config.Enabled && am.config.AdminAPIKey == ""
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HandleLogin initiates the Google OAuth flow
func (am *AuthManager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !am.config.Enabled {
		httputil.NotFound(w, "OAuth login is not configured")
		return
	}
	state, err := generateState()
	if err != nil {
		httputil.InternalError(w, err, "Failed to start login")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	if am.config.AllowedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", am.config.AllowedDomain))
	}
	http.Redirect(w, r, am.oauth2Config.AuthCodeURL(state, opts...), http.StatusTemporaryRedirect)
}

// HandleCallback processes the OAuth callback from Google
func (am *AuthManager) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		logger.Warn("auth: invalid oauth state")
		http.Redirect(w, r, "/admin?error=invalid_state", http.StatusTemporaryRedirect)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		logger.Warn("auth: google returned error", "error", errMsg)
		http.Redirect(w, r, "/admin?error=oauth_denied", http.StatusTemporaryRedirect)
		return
	}

	token, err := am.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		logger.Error("auth: code exchange failed", "error", err)
		http.Redirect(w, r, "/admin?error=exchange_failed", http.StatusTemporaryRedirect)
		return
	}

	info, err := am.getUserInfo(r.Context(), am.oauth2Config.Client(r.Context(), token))
	if err != nil {
		logger.Error("auth: user info failed", "error", err)
		http.Redirect(w, r, "/admin?error=userinfo_failed", http.StatusTemporaryRedirect)
		return
	}
	if !am.domainAllowed(info.Email) {
		logger.Warn("auth: domain not allowed", "email", info.Email, "allowed", am.config.AllowedDomain)
		http.Redirect(w, r, "/admin?error=domain_not_allowed", http.StatusTemporaryRedirect)
		return
	}

	id, err := am.CreateSession(r.Context(), info)
	if err != nil {
		logger.Error("auth: create session failed", "error", err)
		http.Redirect(w, r, "/admin?error=session_failed", http.StatusTemporaryRedirect)
		return
	}
	logger.Info("auth: admin logged in", "email", info.Email)

	http.SetCookie(w, &http.Cookie{
		Name:     am.config.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   am.config.CookieMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin", http.StatusTemporaryRedirect)
}

func (am *AuthManager) domainAllowed(email string) bool {
	if am.config.AllowedDomain == "" {
		return true
	}
	parts := strings.Split(email, "@")
	return len(parts) == 2 && strings.EqualFold(parts[1], am.config.AllowedDomain)
}

// CreateSession stores a session for info and returns its id.
func (am *AuthManager) CreateSession(ctx context.Context, info *GoogleUserInfo) (string, error) {
	now := am.now()
	s := &Session{
		UserID:    info.ID,
		Email:     info.Email,
		Name:      info.Name,
		Picture:   info.Picture,
		Domain:    info.HD,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(am.config.CookieMaxAge) * time.Second),
	}
	id := uuid.NewString()
	if err := am.store.Save(ctx, id, s); err != nil {
		return "", err
	}
	return id, nil
}

// HandleLogout deletes the session and clears the cookie.
func (am *AuthManager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(am.config.CookieName); err == nil {
		if err := am.store.Delete(r.Context(), cookie.Value); err != nil {
			logger.Warn("auth: delete session failed", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: am.config.CookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleUserInfo returns the current admin as JSON.
func (am *AuthManager) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	session := am.GetSession(r)
	if session == nil {
		httputil.JSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}
	httputil.OK(w, map[string]any{
		"authenticated": true,
		"user": map[string]string{
			"id":      session.UserID,
			"email":   session.Email,
			"name":    session.Name,
			"picture": session.Picture,
		},
	})
}

// GetSession returns the session for the request, or nil.
func (am *AuthManager) GetSession(r *http.Request) *Session {
	cookie, err := r.Cookie(am.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	s, err := am.store.Get(r.Context(), cookie.Value)
	if err != nil {
		logger.Warn("auth: session lookup failed", "error", err)
		return nil
	}
	if s == nil || am.now().After(s.ExpiresAt) {
		return nil
	}
	return s
}

// validAPIKey compares the bearer token in constant time.
func (am *AuthManager) validAPIKey(r *http.Request) bool {
	if am.config.AdminAPIKey == "" {
		return false
	}
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(h[len(prefix):]), []byte(am.config.AdminAPIKey)) == 1
}

// RequireAdmin admits requests carrying the admin API key or a valid
// session. When neither mechanism is configured every request passes.
func (am *AuthManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if am.Open() || am.validAPIKey(r) {
			next.ServeHTTP(w, r)
			return
		}
		if am.config.Enabled && am.GetSession(r) != nil {
			next.ServeHTTP(w, r)
			return
		}
		httputil.Unauthorized(w)
	})
}

func (am *AuthManager) getUserInfo(ctx context.Context, client *http.Client) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, am.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API error: %s", string(body))
	}
	var info GoogleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &info, nil
}

// CleanupExpiredSessions sweeps an in-memory store every five minutes until
// ctx is done. Redis stores expire keys on their own.
func (am *AuthManager) CleanupExpiredSessions(ctx context.Context) {
	mem, ok := am.store.(*MemorySessionStore)
	if !ok {
		return
	}
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := mem.Cleanup(); n > 0 {
					logger.Debug("auth: expired sessions removed", "count", n)
				}
			}
		}
	}()
}
