package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flattr-io/auth-svc/internal/cache"
	"github.com/flattr-io/auth-svc/internal/domain/repository"
	authctrl "github.com/flattr-io/auth-svc/internal/http/controllers/auth"
	healthctrl "github.com/flattr-io/auth-svc/internal/http/controllers/health"
	"github.com/flattr-io/auth-svc/internal/http/helpers"
	services "github.com/flattr-io/auth-svc/internal/http/services/auth"
	"github.com/flattr-io/auth-svc/internal/providers/truecaller"
	"github.com/flattr-io/auth-svc/internal/store/memory"
	"github.com/flattr-io/auth-svc/internal/token"
)

// stubs a nivel service: los flujos de providers se prueban en sus paquetes.

type stubTruecallerSvc struct {
	res *services.LoginResult
	err error
}

func (s stubTruecallerSvc) Login(ctx context.Context, cb truecaller.Callback) (*services.LoginResult, error) {
	return s.res, s.err
}

type stubPhoneEmailSvc struct {
	res *services.LoginResult
	err error
}

func (s stubPhoneEmailSvc) Login(ctx context.Context, userJSONURL string) (*services.LoginResult, error) {
	return s.res, s.err
}

type stubLinkedInSvc struct {
	res *services.LoginResult
	err error

	gotCode        string
	gotVerifier    string
	gotRedirectURI string
}

func (s *stubLinkedInSvc) Login(ctx context.Context, code, codeVerifier, redirectURI string) (*services.LoginResult, error) {
	s.gotCode = code
	s.gotVerifier = codeVerifier
	s.gotRedirectURI = redirectURI
	return s.res, s.err
}

type harness struct {
	handler http.Handler
	store   *memory.Store
	codec   *token.Codec
}

func newHarness(t *testing.T, tc services.TruecallerService, pe services.PhoneEmailService, li services.LinkedInService) *harness {
	t.Helper()

	store := memory.New()
	c, err := cache.New(cache.Config{Kind: "memory", Prefix: "router-test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	codec := token.NewCodec("router-test-secret", time.Hour)
	cookies := helpers.CookiePolicy{
		Name:       "auth-token",
		TTL:        time.Hour,
		ApexDomain: "flattr.io",
	}

	handler := New(Deps{
		Truecaller: authctrl.NewTruecallerController(tc, cookies, "http://localhost:3000"),
		PhoneEmail: authctrl.NewPhoneEmailController(pe, cookies),
		LinkedIn:   authctrl.NewLinkedInController(li, cookies),
		Profile:    authctrl.NewProfileController(services.NewProfileService(store)),
		Logout:     authctrl.NewLogoutController(cookies),
		Health:     healthctrl.New(store, c),

		TruecallerEnabled: true,
		PhoneEmailEnabled: true,
		LinkedInEnabled:   true,

		Codec:          codec,
		CookieName:     "auth-token",
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	return &harness{handler: handler, store: store, codec: codec}
}

func (h *harness) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func loginResult(t *testing.T, store *memory.Store, codec *token.Codec, created bool) *services.LoginResult {
	t.Helper()
	profile, err := store.Create(context.Background(), repository.CreateProfileInput{
		PhoneNumber: "5491122334455",
		FirstName:   "Juan",
	})
	require.NoError(t, err)
	signed, exp, err := codec.Issue(profile.ID, "")
	require.NoError(t, err)
	return &services.LoginResult{Profile: profile, Token: signed, ExpiresAt: exp, Created: created}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "auth-token" {
			return ck
		}
	}
	t.Fatal("no se emitió la cookie auth-token")
	return nil
}

func TestTruecallerRoute_FlowInvokedAcks(t *testing.T) {
	h := newHarness(t, stubTruecallerSvc{}, nil, nil)

	rec := h.postJSON("/v1/auth/truecaller", `{"status":"flow_invoked","requestId":"r1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTruecallerRoute_SuccessSetsCookieAndRedirects(t *testing.T) {
	store := memory.New()
	codec := token.NewCodec("router-test-secret", time.Hour)
	res := loginResult(t, store, codec, true)

	h := newHarness(t, stubTruecallerSvc{res: res}, nil, nil)

	rec := h.postJSON("/v1/auth/truecaller", `{"accessToken":"tok","endpoint":"https://profile.truecaller.com/v1","requestId":"r2","status":"ok"}`)

	require.Equal(t, http.StatusFound, rec.Code)
	loc := rec.Header().Get("Location")
	assert.Equal(t, "http://localhost:3000/dashboard?user_id="+res.Profile.ID+"&auth_success=true", loc)

	ck := sessionCookie(t, rec)
	assert.Equal(t, res.Token, ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
}

func TestTruecallerRoute_RedirectHonorsForwardedHost(t *testing.T) {
	store := memory.New()
	codec := token.NewCodec("router-test-secret", time.Hour)
	res := loginResult(t, store, codec, false)

	h := newHarness(t, stubTruecallerSvc{res: res}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/truecaller",
		bytes.NewBufferString(`{"accessToken":"tok","endpoint":"https://profile.truecaller.com/v1","requestId":"r3","status":"ok"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-Host", "app.flattr.io")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://app.flattr.io/dashboard?user_id="), rec.Header().Get("Location"))
}

func TestTruecallerRoute_FailureRedirectsWithError(t *testing.T) {
	h := newHarness(t, stubTruecallerSvc{err: errors.New("perfil no disponible")}, nil, nil)

	rec := h.postJSON("/v1/auth/truecaller", `{"accessToken":"tok","endpoint":"https://profile.truecaller.com/v1","requestId":"r4","status":"ok"}`)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://localhost:3000?error=TC_FAILED", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())
}

func TestTruecallerRoute_DuplicateAcks(t *testing.T) {
	h := newHarness(t, stubTruecallerSvc{err: services.ErrDuplicateCallback}, nil, nil)

	rec := h.postJSON("/v1/auth/truecaller", `{"accessToken":"tok","endpoint":"https://profile.truecaller.com/v1","requestId":"r5","status":"ok"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"duplicate_ignored"}`, rec.Body.String())
}

func TestPhoneEmailRoute_SuccessReturnsJSONAndCookie(t *testing.T) {
	store := memory.New()
	codec := token.NewCodec("router-test-secret", time.Hour)
	res := loginResult(t, store, codec, true)

	h := newHarness(t, nil, stubPhoneEmailSvc{res: res}, nil)

	rec := h.postJSON("/v1/auth/phone-email/verify", `{"user_json_url":"https://user.phone.email/user_abc.json"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		UserID  string `json:"userId"`
		NewUser bool   `json:"newUser"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, res.Profile.ID, body.UserID)
	assert.True(t, body.NewUser)

	sessionCookie(t, rec)
}

func TestPhoneEmailRoute_MissingURL(t *testing.T) {
	h := newHarness(t, nil, stubPhoneEmailSvc{}, nil)

	rec := h.postJSON("/v1/auth/phone-email/verify", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_FIELDS")
}

func TestLinkedInRoute_ExchangeFailureMapsToCode(t *testing.T) {
	h := newHarness(t, nil, nil, &stubLinkedInSvc{err: errors.New("code inválido")})

	rec := h.postJSON("/v1/auth/linkedin", `{"code":"bad-code"}`)

	// Error no tipado → SERVER_ERROR; los tipados se prueban en el controller.
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "SERVER_ERROR")
}

func TestLinkedInRoute_ForwardsBodyFields(t *testing.T) {
	store := memory.New()
	codec := token.NewCodec("router-test-secret", time.Hour)
	stub := &stubLinkedInSvc{res: loginResult(t, store, codec, true)}

	h := newHarness(t, nil, nil, stub)

	rec := h.postJSON("/v1/auth/linkedin",
		`{"code":"auth-code","code_verifier":"pkce-v","redirect_uri":"https://preview.vercel.app/cb"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "auth-code", stub.gotCode)
	assert.Equal(t, "pkce-v", stub.gotVerifier)
	assert.Equal(t, "https://preview.vercel.app/cb", stub.gotRedirectURI)
}

func TestProfileRoutes_RequireSession(t *testing.T) {
	h := newHarness(t, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/profile", nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_MISSING")
}

func TestProfileRoutes_GetAndComplete(t *testing.T) {
	h := newHarness(t, nil, nil, nil)

	profile, err := h.store.Create(context.Background(), repository.CreateProfileInput{
		PhoneNumber: "5491122334455",
	})
	require.NoError(t, err)
	signed, _, err := h.codec.Issue(profile.ID, "")
	require.NoError(t, err)

	get := httptest.NewRequest(http.MethodGet, "/v1/auth/profile", nil)
	get.AddCookie(&http.Cookie{Name: "auth-token", Value: signed})
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, get)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), profile.ID)

	patch := httptest.NewRequest(http.MethodPatch, "/v1/auth/profile",
		bytes.NewBufferString(`{"first_name":"Juana","last_name":"Molina"}`))
	patch.Header.Set("Content-Type", "application/json")
	patch.AddCookie(&http.Cookie{Name: "auth-token", Value: signed})
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, patch)

	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := h.store.GetByID(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juana", updated.FirstName)
	assert.Equal(t, "Molina", updated.LastName)
}

func TestProfileRoutes_CompleteRequiresFirstName(t *testing.T) {
	h := newHarness(t, nil, nil, nil)

	profile, err := h.store.Create(context.Background(), repository.CreateProfileInput{})
	require.NoError(t, err)
	signed, _, err := h.codec.Issue(profile.ID, "")
	require.NoError(t, err)

	patch := httptest.NewRequest(http.MethodPatch, "/v1/auth/profile", bytes.NewBufferString(`{"last_name":"Solo"}`))
	patch.Header.Set("Content-Type", "application/json")
	patch.AddCookie(&http.Cookie{Name: "auth-token", Value: signed})
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, patch)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_FIELDS")
}

func TestLogoutRoute_DeletesCookie(t *testing.T) {
	h := newHarness(t, nil, nil, nil)

	rec := h.postJSON("/v1/auth/logout", `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	ck := sessionCookie(t, rec)
	assert.Empty(t, ck.Value)
	assert.Negative(t, ck.MaxAge)
}

func TestHealthRoutes(t *testing.T) {
	h := newHarness(t, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t, nil, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/auth/linkedin", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
