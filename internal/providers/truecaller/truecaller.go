// Package truecaller implementa el flujo de callback de Truecaller.
//
// El SDK de Truecaller invoca nuestro callback con un accessToken y el
// endpoint del perfil; el servidor consulta ese endpoint con Bearer auth y
// normaliza la respuesta. El requestId del callback alimenta el guard de
// idempotencia (el SDK reintenta el POST ante timeouts).
package truecaller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/flattr-io/auth-svc/internal/identity"
	"github.com/flattr-io/auth-svc/internal/observability/logger"
	"github.com/flattr-io/auth-svc/internal/providers"
)

// StatusFlowInvoked es el ping inicial del SDK: avisa que el usuario abrió
// el flujo. No trae credenciales y se responde OK sin procesar nada.
const StatusFlowInvoked = "flow_invoked"

// Callback es el cuerpo que postea el SDK de Truecaller.
type Callback struct {
	AccessToken string `json:"accessToken"`
	Endpoint    string `json:"endpoint"`
	RequestID   string `json:"requestId"`
	Status      string `json:"status"`
}

// IsFlowInvoked indica si el callback es solo el aviso de apertura.
func (cb Callback) IsFlowInvoked() bool { return cb.Status == StatusFlowInvoked }

// profileResponse es la respuesta del endpoint de perfil de Truecaller.
// phoneNumbers llega como array de números (ej: 919876543210).
type profileResponse struct {
	PhoneNumbers []json.Number `json:"phoneNumbers"`
	Name         struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	OnlineIdentities struct {
		Email string `json:"email"`
	} `json:"onlineIdentities"`
}

// Client consulta el endpoint de perfil de Truecaller.
type Client struct {
	http *http.Client
}

// New crea un Client con el timeout dado.
func New(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

// FetchProfile valida el callback, consulta el endpoint con el accessToken
// y retorna la identidad normalizada (clave: teléfono canónico).
func (c *Client) FetchProfile(ctx context.Context, cb Callback) (identity.Normalized, error) {
	var zero identity.Normalized

	if cb.AccessToken == "" || cb.Endpoint == "" {
		return zero, providers.ErrPayloadInvalid
	}
	// El endpoint lo manda el SDK: solo aceptamos https bien formado.
	u, err := url.Parse(cb.Endpoint)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return zero, providers.ErrPayloadInvalid
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cb.Endpoint, nil)
	if err != nil {
		return zero, providers.ErrPayloadInvalid
	}
	req.Header.Set("Authorization", "Bearer "+cb.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return zero, &providers.APIError{Provider: "truecaller", Status: resp.StatusCode}
	}

	var pr profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return zero, providers.ErrProfileIncomplete
	}

	if len(pr.PhoneNumbers) == 0 {
		return zero, providers.ErrProfileIncomplete
	}
	phone := identity.CanonicalPhone(pr.PhoneNumbers[0].String())
	if phone == "" {
		return zero, providers.ErrProfileIncomplete
	}

	logger.From(ctx).Debug("truecaller: perfil obtenido",
		logger.Component("truecaller"),
		logger.Phone(phone),
	)

	// Truecaller puede traer avatarUrl, pero no lo propagamos: las URLs de
	// su CDN expiran y dejarían perfiles con imágenes rotas.
	return identity.Normalized{
		Key:       identity.Key{Kind: identity.KindPhone, Value: phone},
		FirstName: pr.Name.First,
		LastName:  pr.Name.Last,
		Email:     pr.OnlineIdentities.Email,
	}, nil
}
