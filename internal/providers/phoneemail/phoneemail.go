// Package phoneemail implementa la verificación del widget de Phone.email.
//
// El widget entrega al frontend un user_json_url; el servidor lo descarga
// y arma el teléfono canónico desde country code + número. La URL viene
// del cliente, así que se valida contra una allow-list de hosts antes de
// tocar la red.
package phoneemail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flattr-io/auth-svc/internal/identity"
	"github.com/flattr-io/auth-svc/internal/providers"
)

// userJSON es el documento publicado por Phone.email.
type userJSON struct {
	UserCountryCode string `json:"user_country_code"`
	UserPhoneNumber string `json:"user_phone_number"`
	UserFirstName   string `json:"user_first_name"`
	UserLastName    string `json:"user_last_name"`
}

// Client descarga y normaliza el user_json_url.
type Client struct {
	http         *http.Client
	allowedHosts []string
}

// New crea un Client. allowedHosts limita de qué hosts se acepta el
// user_json_url (default del producto: user.phone.email).
func New(timeout time.Duration, allowedHosts []string) *Client {
	return &Client{
		http:         &http.Client{Timeout: timeout},
		allowedHosts: allowedHosts,
	}
}

// hostAllowed verifica el host exacto contra la allow-list.
func (c *Client) hostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, h := range c.allowedHosts {
		if host == strings.ToLower(h) {
			return true
		}
	}
	return false
}

// Verify descarga el user_json_url y retorna la identidad normalizada
// (clave: teléfono canónico country code + número).
func (c *Client) Verify(ctx context.Context, userJSONURL string) (identity.Normalized, error) {
	var zero identity.Normalized

	u, err := url.Parse(userJSONURL)
	if err != nil || u.Scheme != "https" || !c.hostAllowed(u.Hostname()) {
		return zero, providers.ErrPayloadInvalid
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userJSONURL, nil)
	if err != nil {
		return zero, providers.ErrPayloadInvalid
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return zero, &providers.APIError{Provider: "phone.email", Status: resp.StatusCode}
	}

	var uj userJSON
	if err := json.NewDecoder(resp.Body).Decode(&uj); err != nil {
		return zero, providers.ErrProfileIncomplete
	}

	if uj.UserCountryCode == "" || uj.UserPhoneNumber == "" {
		return zero, providers.ErrProfileIncomplete
	}
	phone := identity.CanonicalPhoneParts(uj.UserCountryCode, uj.UserPhoneNumber)
	if phone == "" {
		return zero, providers.ErrProfileIncomplete
	}

	return identity.Normalized{
		Key:       identity.Key{Kind: identity.KindPhone, Value: phone},
		FirstName: uj.UserFirstName,
		LastName:  uj.UserLastName,
	}, nil
}
