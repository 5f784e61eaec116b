package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sangkips/trademate-console/internal/config"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/pkg/utils"
)

// ErrNoSession is returned by Load when the browser has no session cookie.
var ErrNoSession = errors.New("session: not signed in")

const flashSuffix = "_flash"

// Session is what the console remembers about a signed-in browser.
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	User      entity.User `json:"user"`
	BaseURL   string      `json:"baseUrl"`
	CreatedAt time.Time   `json:"createdAt"`
}

// New starts a session for a successful login.
func New(token string, user entity.User, baseURL string) *Session {
	return &Session{
		ID:        utils.NewID(),
		Token:     token,
		User:      user,
		BaseURL:   baseURL,
		CreatedAt: time.Now(),
	}
}

// Expired reports whether the bearer token is missing or past its exp claim.
func (s *Session) Expired(now time.Time, skew time.Duration) bool {
	return utils.TokenExpired(s.Token, now, skew)
}

// Flash is a one-shot toast shown on the next page render.
type Flash struct {
	Kind    string `json:"kind"` // success, error, warning
	Message string `json:"message"`
}

// Store reads and writes the sealed session cookie.
type Store struct {
	codec  *Codec
	name   string
	secure bool
}

// NewStore builds a cookie store from configuration
func NewStore(cfg *config.SessionConfig) (*Store, error) {
	codec, err := NewCodec(cfg.Key)
	if err != nil {
		return nil, err
	}
	name := cfg.CookieName
	if name == "" {
		name = "tm_session"
	}
	return &Store{codec: codec, name: name, secure: cfg.Secure}, nil
}

// Name returns the session cookie name.
func (s *Store) Name() string {
	return s.name
}

// cookie builds a browser-session cookie: no Expires or Max-Age, so it ends with the browser session.
func (s *Store) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Store) expired(name string) *http.Cookie {
	c := s.cookie(name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}

// Save seals the session into the response cookie.
func (s *Store) Save(w http.ResponseWriter, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	value, err := s.codec.Seal(data)
	if err != nil {
		return err
	}
	http.SetCookie(w, s.cookie(s.name, value))
	return nil
}

// Load opens the session cookie. It returns ErrNoSession when absent and
// ErrInvalidSession when the cookie does not open.
func (s *Store) Load(r *http.Request) (*Session, error) {
	c, err := r.Cookie(s.name)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}
	data, err := s.codec.Open(c.Value)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, ErrInvalidSession
	}
	return &sess, nil
}

// Clear removes the session cookie.
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.expired(s.name))
}

// SetFlash queues a toast for the next request.
func (s *Store) SetFlash(w http.ResponseWriter, f Flash) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	value, err := s.codec.Seal(data)
	if err != nil {
		return
	}
	http.SetCookie(w, s.cookie(s.name+flashSuffix, value))
}

// PopFlash returns the queued toast, if any, and clears it.
func (s *Store) PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(s.name + flashSuffix)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, s.expired(s.name+flashSuffix))
	data, err := s.codec.Open(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return &f
}
