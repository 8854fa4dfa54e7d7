package email

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// UnsubscribePath is the API route that consumes signed unsubscribe links.
const UnsubscribePath = "/api/subscribers/unsubscribe"

// Signer issues and checks unsubscribe tokens. A token is the hex
// HMAC-SHA256 of the lowercased address. Tokens never expire.
type Signer struct {
	secret  []byte
	baseURL string
}

// NewSigner creates a signer for links rooted at baseURL.
func NewSigner(secret, baseURL string) *Signer {
	return &Signer{secret: []byte(secret), baseURL: strings.TrimRight(baseURL, "/")}
}

// Token returns the token for email.
func (s *Signer) Token(email string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(strings.ToLower(email)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether token was issued for email.
func (s *Signer) Verify(email, token string) bool {
	want := s.Token(email)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(token)))
}

// URL returns the absolute unsubscribe link for email.
func (s *Signer) URL(email string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", s.Token(email))
	return s.baseURL + UnsubscribePath + "?" + q.Encode()
}
