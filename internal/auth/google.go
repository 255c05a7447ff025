package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	sessionCookie = "dt_session"
	stateCookie   = "dt_oauth_state"

	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	// stateTTL bounds how long a login attempt may take
	stateTTL = 10 * time.Minute
)

// GoogleAuthenticator drives the OAuth login flow against the corporate
// identity provider and issues/verifies the resulting session cookie.
// Token exchange and consent are the oauth2 library's concern; this type
// only translates its outcome into a request-scoped Identity.
type GoogleAuthenticator struct {
	oauth       *oauth2.Config
	cookies     *securecookie.SecureCookie
	sessionTTL  time.Duration
	userInfoURL string
}

// GoogleConfig contains the settings needed to talk to the provider
type GoogleConfig struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	SessionSecret string
	SessionTTL    time.Duration
}

// sessionPayload is what actually lives inside the session cookie
type sessionPayload struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"name"`
	Expiry      time.Time `json:"expiry"`
}

// NewGoogleAuthenticator creates the authenticator. Cookie keys are
// derived from the configured session secret.
func NewGoogleAuthenticator(cfg GoogleConfig) *GoogleAuthenticator {
	hashKey := sha256.Sum256([]byte(cfg.SessionSecret + ":hash"))
	blockKey := sha256.Sum256([]byte(cfg.SessionSecret + ":block"))

	return &GoogleAuthenticator{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		cookies:     securecookie.New(hashKey[:], blockKey[:]),
		sessionTTL:  cfg.SessionTTL,
		userInfoURL: defaultUserInfoURL,
	}
}

// BeginLogin stores an anti-forgery state nonce in a short-lived cookie
// and returns the provider URL to redirect the caller to.
func (a *GoogleAuthenticator) BeginLogin(w http.ResponseWriter) (string, error) {
	state := uuid.NewString()

	encoded, err := a.cookies.Encode(stateCookie, state)
	if err != nil {
		return "", fmt.Errorf("encode state cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	return a.oauth.AuthCodeURL(state), nil
}

// CompleteLogin validates the anti-forgery state, exchanges the code for
// a token, resolves the caller's verified email and issues the session
// cookie. The returned identity is valid for this request onwards until
// the session expires.
func (a *GoogleAuthenticator) CompleteLogin(w http.ResponseWriter, r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		return nil, fmt.Errorf("missing state cookie: %w", ErrUnauthenticated)
	}

	var expected string
	if err := a.cookies.Decode(stateCookie, cookie.Value, &expected); err != nil {
		return nil, fmt.Errorf("invalid state cookie: %w", ErrUnauthenticated)
	}

	presented := r.FormValue("state")
	if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
		return nil, fmt.Errorf("state mismatch: %w", ErrUnauthenticated)
	}

	// State is single-use
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})

	token, err := a.oauth.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	info, err := a.fetchUserInfo(r, token)
	if err != nil {
		return nil, err
	}

	identity := &Identity{
		Email:         info.Email,
		DisplayName:   info.Name,
		SessionExpiry: time.Now().UTC().Add(a.sessionTTL),
	}

	if err := a.IssueSession(w, identity); err != nil {
		return nil, err
	}

	return identity, nil
}

type userInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (a *GoogleAuthenticator) fetchUserInfo(r *http.Request, token *oauth2.Token) (*userInfo, error) {
	client := a.oauth.Client(r.Context(), token)

	resp, err := client.Get(a.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch user info: unexpected status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("provider returned no email address")
	}

	return &info, nil
}

// IssueSession writes the encrypted session cookie for the identity.
func (a *GoogleAuthenticator) IssueSession(w http.ResponseWriter, id *Identity) error {
	payload := sessionPayload{
		Email:       id.Email,
		DisplayName: id.DisplayName,
		Expiry:      id.SessionExpiry,
	}

	encoded, err := a.cookies.Encode(sessionCookie, payload)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    encoded,
		Path:     "/",
		Expires:  id.SessionExpiry,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Verify implements Verifier: it decodes the session cookie and checks
// expiry. No identity is ever cached across requests.
func (a *GoogleAuthenticator) Verify(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	var payload sessionPayload
	if err := a.cookies.Decode(sessionCookie, cookie.Value, &payload); err != nil {
		return nil, fmt.Errorf("invalid session cookie: %w", ErrUnauthenticated)
	}

	if time.Now().After(payload.Expiry) {
		return nil, fmt.Errorf("session expired: %w", ErrUnauthenticated)
	}

	return &Identity{
		Email:         payload.Email,
		DisplayName:   payload.DisplayName,
		SessionExpiry: payload.Expiry,
	}, nil
}

// ClearSession removes the session cookie.
func (a *GoogleAuthenticator) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Path: "/", MaxAge: -1})
}
