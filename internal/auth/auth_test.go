package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "ridesofjulian"}

func TestParseRoundTrip(t *testing.T) {
	tok, err := Sign(testConfig, "user-1", time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := Parse(tok, testConfig)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "user-1", claims.Session().UserID)
}

func TestParseRejects(t *testing.T) {
	expired, err := Sign(testConfig, "user-1", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	wrongIssuer, err := Sign(Config{Secret: testConfig.Secret, Issuer: "elsewhere"}, "user-1", time.Hour, time.Now())
	require.NoError(t, err)
	wrongSecret, err := Sign(Config{Secret: "other", Issuer: testConfig.Issuer}, "user-1", time.Hour, time.Now())
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": testConfig.Issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":      expired,
		"wrong issuer": wrongIssuer,
		"wrong secret": wrongSecret,
		"no subject":   noSubject,
		"garbage":      "not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(tok, testConfig)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = Parse("  ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestScopesNormalized(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "user-1",
		"iss":    testConfig.Issuer,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": "plans:write  workouts:read",
	}).SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)

	claims, err := Parse(tok, testConfig)
	require.NoError(t, err)
	require.True(t, claims.HasScope("plans:write"))
	require.True(t, claims.HasScope("workouts:read"))
	require.False(t, claims.HasScope("admin"))
}

func TestMiddleware(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromContext(r.Context()).UserID
		w.WriteHeader(http.StatusNoContent)
	})
	handler := NewMiddleware(testConfig, SkipOperational).Wrap(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/workouts", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), `"type":"unauthorized"`)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Empty(t, seen)

	tok, err := Sign(testConfig, "user-7", time.Hour, time.Now())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/workouts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "user-7", seen)

	req = httptest.NewRequest(http.MethodGet, "/v1/workouts", nil)
	req.Header.Set("Authorization", "Basic abc")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
