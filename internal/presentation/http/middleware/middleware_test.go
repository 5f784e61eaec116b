package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sangkips/trademate-console/internal/config"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/enum"
	"github.com/sangkips/trademate-console/internal/infrastructure/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(&config.SessionConfig{CookieName: "tm_session", Key: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	return store
}

// sessionCookie seals sess and returns the cookie a browser would send back.
func sessionCookie(t *testing.T, store *session.Store, sess *session.Session) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, store.Save(w, sess))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func expiredToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	s, err := token.SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return s
}

func protectedRouter(store *session.Store, onExpired func(*gin.Context, string)) *gin.Engine {
	r := gin.New()
	g := r.Group("")
	g.Use(AuthMiddleware(AuthConfig{Store: store, OnExpired: onExpired}))
	g.GET("/store", RequireCashier(), func(c *gin.Context) {
		c.String(http.StatusOK, GetSession(c).ID)
	})
	g.GET("/dashboard", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	g.GET("/api/terminal", RequireCashier(), func(c *gin.Context) { c.Status(http.StatusOK) })
	g.GET("/api/dashboard", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAuthMiddlewareRedirectsAnonymousBrowser(t *testing.T) {
	r := protectedRouter(newStore(t), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/store", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
}

func TestAuthMiddlewareRejectsAnonymousAPICall(t *testing.T) {
	r := protectedRouter(newStore(t), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/terminal", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication required")
	assert.Contains(t, w.Body.String(), `"code":"unauthenticated"`)
}

func TestAuthMiddlewareClearsTamperedCookie(t *testing.T) {
	r := protectedRouter(newStore(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/store", nil)
	req.AddCookie(&http.Cookie{Name: "tm_session", Value: "not-a-sealed-value"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "tm_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestAuthMiddlewareBindsCredentials(t *testing.T) {
	store := newStore(t)
	r := protectedRouter(store, nil)
	sess := session.New("opaque-token", entity.User{ID: "u1", Role: enum.RoleCashier}, "http://backend.test")

	req := httptest.NewRequest(http.MethodGet, "/store", nil)
	req.AddCookie(sessionCookie(t, store, sess))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sess.ID, w.Body.String())
}

func TestAuthMiddlewareExpiredTokenEndsSession(t *testing.T) {
	store := newStore(t)
	var ended string
	r := protectedRouter(store, func(_ *gin.Context, sessionID string) { ended = sessionID })
	sess := session.New(expiredToken(t), entity.User{ID: "u1", Role: enum.RoleCashier}, "http://backend.test")

	req := httptest.NewRequest(http.MethodGet, "/store", nil)
	req.AddCookie(sessionCookie(t, store, sess))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
	assert.Equal(t, sess.ID, ended)
}

func TestRequireRole(t *testing.T) {
	store := newStore(t)
	r := protectedRouter(store, nil)
	cashier := sessionCookie(t, store, session.New("tok", entity.User{ID: "c1", Role: enum.RoleCashier}, ""))
	admin := sessionCookie(t, store, session.New("tok", entity.User{ID: "a1", Role: enum.RoleAdmin}, ""))

	tests := []struct {
		name     string
		path     string
		cookie   *http.Cookie
		status   int
		location string
	}{
		{"cashier on dashboard", "/dashboard", cashier, http.StatusSeeOther, UnauthorizedPath},
		{"admin on store", "/store", admin, http.StatusSeeOther, UnauthorizedPath},
		{"admin on dashboard", "/dashboard", admin, http.StatusOK, ""},
		{"cashier on admin api", "/api/dashboard", cashier, http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.AddCookie(tt.cookie)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}
}

type memoryIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func (m *memoryIdempotencyRepo) GetByKey(_ context.Context, key, sessionID string) (*entity.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[sessionID+"/"+key], nil
}

func (m *memoryIdempotencyRepo) Claim(_ context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := ikey.SessionID + "/" + ikey.Key
	if _, taken := m.keys[id]; taken {
		return false, nil
	}
	stored := *ikey
	m.keys[id] = &stored
	return true, nil
}

func (m *memoryIdempotencyRepo) Save(_ context.Context, ikey *entity.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *ikey
	m.keys[ikey.SessionID+"/"+ikey.Key] = &stored
	return nil
}

func (m *memoryIdempotencyRepo) Release(_ context.Context, key, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k, ok := m.keys[sessionID+"/"+key]; ok && k.Pending() {
		delete(m.keys, sessionID+"/"+key)
	}
	return nil
}

func (m *memoryIdempotencyRepo) DeleteExpired(context.Context) error {
	return nil
}

func TestIdempotencyReplaysFirstRedirect(t *testing.T) {
	repo := &memoryIdempotencyRepo{keys: map[string]*entity.IdempotencyKey{}}
	sess := session.New("tok", entity.User{ID: "c1", Role: enum.RoleCashier}, "")
	calls := 0

	r := gin.New()
	r.POST("/store/checkout/print",
		func(c *gin.Context) { c.Set(sessionKey, sess) },
		Idempotency(IdempotencyConfig{Repo: repo}),
		func(c *gin.Context) {
			calls++
			c.Redirect(http.StatusSeeOther, "/store")
		},
	)

	post := func(key string) *httptest.ResponseRecorder {
		form := url.Values{IdempotencyKeyField: {key}}
		req := httptest.NewRequest(http.MethodPost, "/store/checkout/print", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := post("k1")
	second := post("k1")

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusSeeOther, first.Code)
	assert.Equal(t, http.StatusSeeOther, second.Code)
	assert.Equal(t, "/store", second.Header().Get("Location"))
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))

	post("k2")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyTurnsAwayDuplicateWhileFirstRuns(t *testing.T) {
	repo := &memoryIdempotencyRepo{keys: map[string]*entity.IdempotencyKey{}}
	sess := session.New("tok", entity.User{ID: "c1", Role: enum.RoleCashier}, "")
	var calls atomic.Int32
	started, release := make(chan struct{}), make(chan struct{})

	r := gin.New()
	r.POST("/store/checkout/print",
		func(c *gin.Context) { c.Set(sessionKey, sess) },
		Idempotency(IdempotencyConfig{Repo: repo, InFlight: "/store"}),
		func(c *gin.Context) {
			if calls.Add(1) == 1 {
				close(started)
				<-release
			}
			c.Redirect(http.StatusSeeOther, "/store/receipt")
		},
	)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/store/checkout/print", nil)
		req.Header.Set(IdempotencyKeyHeader, "k1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- post() }()
	<-started

	dup := post()
	assert.Equal(t, http.StatusSeeOther, dup.Code)
	assert.Equal(t, "/store", dup.Header().Get("Location"))
	assert.Equal(t, "true", dup.Header().Get("X-Idempotency-Replayed"))

	close(release)
	first := <-done
	assert.Equal(t, "/store/receipt", first.Header().Get("Location"))

	again := post()
	assert.Equal(t, "/store/receipt", again.Header().Get("Location"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotencyDuplicateWithoutRedirectIsConflict(t *testing.T) {
	repo := &memoryIdempotencyRepo{keys: map[string]*entity.IdempotencyKey{
		"sess-1/k1": {Key: "k1", SessionID: "sess-1", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	sess := session.New("tok", entity.User{ID: "c1", Role: enum.RoleCashier}, "")
	sess.ID = "sess-1"

	r := gin.New()
	r.POST("/api/print",
		func(c *gin.Context) { c.Set(sessionKey, sess) },
		Idempotency(IdempotencyConfig{Repo: repo}),
		func(c *gin.Context) { t.Fatal("handler must not run") },
	)

	req := httptest.NewRequest(http.MethodPost, "/api/print", nil)
	req.Header.Set(IdempotencyKeyHeader, "k1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"conflict"`)
}

func TestIdempotencyReleasesKeyWhenHandlerPanics(t *testing.T) {
	repo := &memoryIdempotencyRepo{keys: map[string]*entity.IdempotencyKey{}}
	sess := session.New("tok", entity.User{ID: "c1", Role: enum.RoleCashier}, "")

	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/print",
		func(c *gin.Context) { c.Set(sessionKey, sess) },
		Idempotency(IdempotencyConfig{Repo: repo}),
		func(c *gin.Context) { panic("boom") },
	)

	req := httptest.NewRequest(http.MethodPost, "/print", nil)
	req.Header.Set(IdempotencyKeyHeader, "k1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, repo.keys)
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	repo := &memoryIdempotencyRepo{keys: map[string]*entity.IdempotencyKey{}}
	calls := 0

	r := gin.New()
	r.POST("/print", Idempotency(IdempotencyConfig{Repo: repo}), func(c *gin.Context) {
		calls++
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/print", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, repo.keys)
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	rl := NewClientRateLimiter(RateLimiterConfigFrom(config.RateLimitConfig{Requests: 2, Duration: 60}))
	defer rl.Close()

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, rl.Stats()["active_clients"])
}

func TestRateLimiterCleanupDropsStaleClients(t *testing.T) {
	rl := NewClientRateLimiter(DefaultRateLimiterConfig())
	defer rl.Close()

	rl.getLimiter("10.0.0.1")
	rl.cleanup(time.Now().Add(time.Hour))

	assert.Equal(t, 0, rl.Stats()["active_clients"])
}

func TestCORSConfigDefaultsAndRequiredHeaders(t *testing.T) {
	cfg := corsConfig(&config.CORSConfig{AllowedHeaders: []string{"Authorization"}})

	assert.Equal(t, []string{"http://localhost:8080", "http://127.0.0.1:8080"}, cfg.AllowOrigins)
	assert.Equal(t, []string{http.MethodGet, http.MethodPost, http.MethodOptions}, cfg.AllowMethods)
	assert.Equal(t, "Authorization", cfg.AllowHeaders[0])
	assert.Contains(t, cfg.AllowHeaders, IdempotencyKeyHeader)
	assert.Contains(t, cfg.AllowHeaders, RequestIDHeader)
	assert.True(t, cfg.AllowCredentials)
}

func TestCORSPreflightForConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(&config.CORSConfig{AllowedOrigins: []string{"https://shop.example.com"}}))
	r.GET("/api/dashboard", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
