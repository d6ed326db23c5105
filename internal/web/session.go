package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/service"
)

const sessionCookieName = "solar_session"

// cookieSession is what the browser carries between requests: the API
// bearer token plus enough of the partner to render page headers.
type cookieSession struct {
	Token       string    `json:"t"`
	PartnerID   string    `json:"p"`
	PartnerName string    `json:"n"`
	ExpiresAt   time.Time `json:"e"`
}

func fromSession(s service.Session) cookieSession {
	return cookieSession{Token: s.Token, PartnerID: s.Partner.ID, PartnerName: s.Partner.Name, ExpiresAt: s.ExpiresAt}
}

func (s *Server) sign(payload string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// setSession writes a signed cookie holding cs.
func (s *Server) setSession(w http.ResponseWriter, cs cookieSession) {
	b, _ := json.Marshal(cs)
	payload := base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    payload + "." + s.sign(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  cs.ExpiresAt,
	})
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// readSession validates the cookie signature and expiry.
func (s *Server) readSession(r *http.Request) (cookieSession, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return cookieSession{}, false
	}
	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(s.sign(payload))) {
		return cookieSession{}, false
	}
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return cookieSession{}, false
	}
	var cs cookieSession
	if err := json.Unmarshal(b, &cs); err != nil || cs.Token == "" {
		return cookieSession{}, false
	}
	if !s.now().Before(cs.ExpiresAt) {
		return cookieSession{}, false
	}
	return cs, true
}
