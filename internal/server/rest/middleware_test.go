package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{"none", nil, ""},
		{"token header", map[string]string{common.AccessTokenHeaderName: " abc "}, "abc"},
		{"bearer", map[string]string{common.AuthorizationHeaderName: "Bearer abc"}, "abc"},
		{"bearer lower case", map[string]string{common.AuthorizationHeaderName: "bearer abc"}, "abc"},
		{"basic ignored", map[string]string{common.AuthorizationHeaderName: "Basic abc"}, ""},
		{"token header wins", map[string]string{
			common.AccessTokenHeaderName:   "one",
			common.AuthorizationHeaderName: "Bearer two",
		}, "one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, bearerToken(r))
		})
	}
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	got := rec.Header().Get(RequestIDHeader)
	assert.Equal(t, seen, got)
	parsed, err := uuid.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var ok bool
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, ok)
}

func TestAuthenticateAndRequireUser(t *testing.T) {
	var got services.Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = services.IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := Authenticate(fakeGate{"good": 3})(RequireUser(inner))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":{"code":401,"message":"authentication required"}}`, rec.Body.String())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(common.AccessTokenHeaderName, "good")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, services.Identity{Authenticated: true, UserID: 3}, got)
}

func TestResponseWriter_RecordsStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	n, err := ww.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusOK, ww.status)
	assert.Equal(t, 5, ww.bytes)
}
