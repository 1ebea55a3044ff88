package phoneemail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flattr-io/auth-svc/internal/identity"
	"github.com/flattr-io/auth-svc/internal/providers"
)

func newUserJSONServer(t *testing.T, status int, body any) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	c := New(5*time.Second, []string{u.Hostname()})
	c.http = srv.Client()
	return srv, c
}

func TestVerify_OK(t *testing.T) {
	srv, c := newUserJSONServer(t, http.StatusOK, map[string]string{
		"user_country_code": "+91",
		"user_phone_number": "9876543210",
		"user_first_name":   "Priya",
		"user_last_name":    "Sharma",
	})
	defer srv.Close()

	n, err := c.Verify(context.Background(), srv.URL+"/user.json")
	require.NoError(t, err)
	assert.Equal(t, identity.KindPhone, n.Key.Kind)
	assert.Equal(t, "919876543210", n.Key.Value)
	assert.Equal(t, "Priya", n.FirstName)
	assert.Equal(t, "Sharma", n.LastName)
}

func TestVerify_RejectsForeignHost(t *testing.T) {
	c := New(time.Second, []string{"user.phone.email"})

	_, err := c.Verify(context.Background(), "https://evil.example.com/user.json")
	assert.ErrorIs(t, err, providers.ErrPayloadInvalid)
}

func TestVerify_RejectsPlainHTTP(t *testing.T) {
	c := New(time.Second, []string{"user.phone.email"})

	_, err := c.Verify(context.Background(), "http://user.phone.email/user.json")
	assert.ErrorIs(t, err, providers.ErrPayloadInvalid)
}

func TestVerify_RejectsMalformedURL(t *testing.T) {
	c := New(time.Second, []string{"user.phone.email"})

	_, err := c.Verify(context.Background(), "::no-es-url")
	assert.ErrorIs(t, err, providers.ErrPayloadInvalid)
}

func TestVerify_StripsPlusFromCountryCode(t *testing.T) {
	srv, c := newUserJSONServer(t, http.StatusOK, map[string]string{
		"user_country_code": "+54",
		"user_phone_number": "9 11 2233-4455",
	})
	defer srv.Close()

	n, err := c.Verify(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "5491122334455", n.Key.Value)
}

func TestVerify_MissingPhoneData(t *testing.T) {
	srv, c := newUserJSONServer(t, http.StatusOK, map[string]string{
		"user_first_name": "Priya",
	})
	defer srv.Close()

	_, err := c.Verify(context.Background(), srv.URL)
	assert.ErrorIs(t, err, providers.ErrProfileIncomplete)
}

func TestVerify_UpstreamError(t *testing.T) {
	srv, c := newUserJSONServer(t, http.StatusNotFound, map[string]string{"error": "expired"})
	defer srv.Close()

	_, err := c.Verify(context.Background(), srv.URL)
	var apiErr *providers.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
