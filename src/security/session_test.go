package security

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

func TestIssueAndParse(t *testing.T) {
	svc := NewSessionService(testSecret, time.Hour)

	token, err := svc.Issue("upload-1", "standardized_sales.csv")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "upload-1", claims.UploadID)
	assert.Equal(t, "standardized_sales.csv", claims.SavedAs)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	token, err := NewSessionService("another-secret-that-is-also-32-bytes-long", time.Hour).Issue("u", "f.csv")
	require.NoError(t, err)
	_, err = NewSessionService(testSecret, time.Hour).Parse(token)
	assert.True(t, errors.Is(err, ErrInvalidSession))

	expired, err := NewSessionService(testSecret, -time.Minute).Issue("u", "f.csv")
	require.NoError(t, err)
	_, err = NewSessionService(testSecret, time.Hour).Parse(expired)
	assert.True(t, errors.Is(err, ErrInvalidSession))

	_, err = NewSessionService(testSecret, time.Hour).Parse("garbage")
	assert.True(t, errors.Is(err, ErrInvalidSession))
}

func TestCookieRoundTrip(t *testing.T) {
	svc := NewSessionService(testSecret, time.Hour)
	rec := httptest.NewRecorder()
	require.NoError(t, svc.SetCookie(rec, "upload-2", "standardized_b.csv"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	req.AddCookie(cookies[0])
	claims, err := svc.FromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "standardized_b.csv", claims.SavedAs)

	_, err = svc.FromRequest(httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	assert.True(t, errors.Is(err, ErrInvalidSession))
	assert.False(t, cookies[0].Secure)
}

func TestSecureCookies(t *testing.T) {
	svc := NewSessionService(testSecret, time.Hour).WithSecureCookies(true)
	rec := httptest.NewRecorder()
	require.NoError(t, svc.SetCookie(rec, "upload-3", "standardized_c.csv"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}
