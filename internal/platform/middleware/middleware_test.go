// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/taibuivan/lexica/internal/platform/constants"
	"github.com/taibuivan/lexica/internal/platform/ctxutil"
	"github.com/taibuivan/lexica/internal/platform/middleware"
	"github.com/taibuivan/lexica/internal/platform/sec"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

// # Tracing

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "from-proxy")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "from-proxy", seen)
}

// # Authentication

type fakeVerifier struct{}

func (fakeVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token == "good" {
		return &sec.AuthClaims{UserID: "user-1", Username: "julius", Role: string(sec.RoleMember)}, nil
	}
	return nil, errors.New("bad token")
}

func captureClaims(target **sec.AuthClaims) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*target = ctxutil.GetAuthUser(request.Context())
	})
}

func TestAuthenticate_Cookie(t *testing.T) {
	var claims *sec.AuthClaims
	handler := middleware.Authenticate(fakeVerifier{}, false)(captureClaims(&claims))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "good"})
	handler.ServeHTTP(httptest.NewRecorder(), request)

	require.NotNil(t, claims)
	assert.Equal(t, "julius", claims.Username)
}

func TestAuthenticate_InvalidCookieIsAnonymous(t *testing.T) {
	claims := &sec.AuthClaims{}
	handler := middleware.Authenticate(fakeVerifier{}, false)(captureClaims(&claims))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "expired"})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Nil(t, claims)
	assert.Contains(t, recorder.Header().Get("Set-Cookie"), constants.AccessTokenCookieName+"=;")
}

func TestAuthenticate_Bearer(t *testing.T) {
	var claims *sec.AuthClaims
	handler := middleware.Authenticate(fakeVerifier{}, false)(captureClaims(&claims))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer good")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	require.NotNil(t, claims)

	for _, header := range []string{"Bearer bad", "Basic good", "Bearer"} {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderAuthorization, header)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, header)
	}
}

func TestRequireLogin_RedirectsAnonymous(t *testing.T) {
	handler := middleware.RequireLogin(okHandler)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/corpus/get/3?x=1", nil))

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/auth/login?next=%2Fcorpus%2Fget%2F3%3Fx%3D1", recorder.Header().Get("Location"))

	request := httptest.NewRequest(http.MethodGet, "/corpus/get/3", nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "user-1"}))
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

// # Metrics

type observation struct {
	method, route string
	status        int
}

type fakeObserver struct{ seen []observation }

func (observer *fakeObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	observer.seen = append(observer.seen, observation{method, route, status})
}

func TestInstrument_UsesRoutePattern(t *testing.T) {
	observer := &fakeObserver{}
	router := chi.NewRouter()
	router.Use(middleware.Instrument(observer))
	router.Get("/corpus/get/{corpus_id}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/corpus/get/42", nil))

	require.Len(t, observer.seen, 1)
	assert.Equal(t, observation{http.MethodGet, "/corpus/get/{corpus_id}", http.StatusForbidden}, observer.seen[0])
}

// # Rate Limiting

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiter(ctx, 0.001, 1)
	handler := limiter.Middleware(okHandler)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "203.0.113.9:5000"

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, request)
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, request)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "198.51.100.1:5000"
	third := httptest.NewRecorder()
	handler.ServeHTTP(third, other)
	assert.Equal(t, http.StatusOK, third.Code)
}

func TestRateLimiter_JanitorStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	limiter := middleware.NewRateLimiter(ctx, 10, 10)
	cancel()

	select {
	case <-limiter.Done():
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

// # Safety

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_SERVER_ERROR")
}

type corsConfig struct {
	dev     bool
	origins []string
}

func (c corsConfig) IsDevelopment() bool      { return c.dev }
func (c corsConfig) AllowedOrigins() []string { return c.origins }

func TestCORS_ProductionAllowList(t *testing.T) {
	handler := middleware.CORS(corsConfig{origins: []string{"https://tools.example"}})(okHandler)

	allowed := httptest.NewRequest(http.MethodGet, "/", nil)
	allowed.Header.Set(constants.HeaderOrigin, "https://tools.example")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, allowed)
	assert.Equal(t, "https://tools.example", recorder.Header().Get("Access-Control-Allow-Origin"))

	denied := httptest.NewRequest(http.MethodOptions, "/", nil)
	denied.Header.Set(constants.HeaderOrigin, "https://evil.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, denied)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "198.51.100.7, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(request))
}
