// Package linkedin implementa el flujo OAuth2/OIDC de LinkedIn.
//
// El frontend corre el authorize con PKCE y nos entrega el code; acá se
// hace el intercambio code→token (form-encoded, con code_verifier) y la
// consulta a /userinfo. LinkedIn no publica teléfono: la clave es el email.
package linkedin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flattr-io/auth-svc/internal/identity"
	"github.com/flattr-io/auth-svc/internal/observability/logger"
	"github.com/flattr-io/auth-svc/internal/providers"
)

// Config son las credenciales y endpoints del cliente OAuth.
// TokenURL y UserinfoURL tienen defaults de producción en config.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenURL     string
	UserinfoURL  string
}

// Client habla con los endpoints OAuth de LinkedIn.
type Client struct {
	cfg  Config
	http *http.Client
}

// New crea un Client con el timeout dado.
func New(cfg Config, timeout time.Duration) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// userinfo es la respuesta OIDC de LinkedIn.
type userinfo struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// ExchangeCode intercambia el authorization code por un access token.
// codeVerifier es el verifier PKCE generado por el frontend; LinkedIn lo
// exige cuando el authorize llevó code_challenge. redirectURI debe coincidir
// con el usado en el authorize: si viene vacío se usa el configurado.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier, redirectURI string) (string, error) {
	if code == "" {
		return "", providers.ErrPayloadInvalid
	}
	if redirectURI == "" {
		redirectURI = c.cfg.RedirectURL
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", redirectURI)
	if codeVerifier != "" {
		form.Set("code_verifier", codeVerifier)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", providers.ErrTokenExchangeFailed
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", providers.ErrTokenExchangeFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var b struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&b)
		logger.From(ctx).Warn("linkedin: token exchange rechazado",
			logger.Component("linkedin"),
			logger.Status(resp.StatusCode),
			logger.String("oauth_error", b.Error),
		)
		return "", providers.ErrTokenExchangeFailed
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || tr.AccessToken == "" {
		return "", providers.ErrTokenExchangeFailed
	}
	return tr.AccessToken, nil
}

// FetchUserinfo consulta /userinfo con el access token y normaliza.
// sub y email son obligatorios: sin email no hay clave de reconciliación.
func (c *Client) FetchUserinfo(ctx context.Context, accessToken string) (identity.Normalized, error) {
	var zero identity.Normalized

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserinfoURL, nil)
	if err != nil {
		return zero, providers.ErrProfileIncomplete
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return zero, &providers.APIError{Provider: "linkedin", Status: resp.StatusCode}
	}

	var ui userinfo
	if err := json.NewDecoder(resp.Body).Decode(&ui); err != nil {
		return zero, providers.ErrProfileIncomplete
	}
	if ui.Sub == "" || ui.Email == "" {
		return zero, providers.ErrProfileIncomplete
	}

	return identity.Normalized{
		Key:        identity.Key{Kind: identity.KindEmail, Value: ui.Email},
		FirstName:  ui.GivenName,
		LastName:   ui.FamilyName,
		Email:      ui.Email,
		PictureURL: ui.Picture,
	}, nil
}

// Login corre el flujo completo: exchange + userinfo.
func (c *Client) Login(ctx context.Context, code, codeVerifier, redirectURI string) (identity.Normalized, error) {
	accessToken, err := c.ExchangeCode(ctx, code, codeVerifier, redirectURI)
	if err != nil {
		return identity.Normalized{}, err
	}
	return c.FetchUserinfo(ctx, accessToken)
}
