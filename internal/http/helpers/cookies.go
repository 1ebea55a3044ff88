package helpers

import (
	"net"
	"net/http"
	"strings"
	"time"
)

func ParseSameSite(s string) http.SameSite {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// CookiePolicy define cómo se emite la cookie de sesión.
type CookiePolicy struct {
	Name string
	TTL  time.Duration
	// ApexDomain es el dominio de producción. Hosts bajo él reciben
	// Domain=.{apex} para compartir la sesión entre subdominios
	// (app.flattr.io y api.flattr.io ven la misma cookie).
	ApexDomain string
	// TunnelSuffixes: sufijos de túneles/previews (ngrok, pinggy, vercel).
	// Ahí la cookie es SIEMPRE host-only: un Domain compartido en un dominio
	// de túnel la filtraría a túneles de terceros.
	TunnelSuffixes []string
}

// DomainFor resuelve el atributo Domain para el host del request.
// Retorna "" para host-only (el caso seguro por defecto).
func (p CookiePolicy) DomainFor(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return ""
	}
	// Sacar el puerto si viene (localhost:3000, app.flattr.io:443).
	if parsed, _, err := net.SplitHostPort(h); err == nil {
		h = parsed
	}

	// Loopback e IPs nunca llevan Domain.
	if h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return ""
	}
	if net.ParseIP(h) != nil {
		return ""
	}

	for _, suffix := range p.TunnelSuffixes {
		s := strings.ToLower(strings.TrimPrefix(suffix, "."))
		if h == s || strings.HasSuffix(h, "."+s) {
			return ""
		}
	}

	apex := strings.ToLower(strings.TrimPrefix(p.ApexDomain, "."))
	if apex != "" && (h == apex || strings.HasSuffix(h, "."+apex)) {
		return "." + apex
	}

	return ""
}

// BuildSessionCookie arma la cookie de sesión para el host dado.
// Frontend y API corren en orígenes distintos: SameSite=None obliga Secure,
// y Partitioned mantiene la cookie viva bajo las reglas CHIPS de los
// browsers actuales.
func (p CookiePolicy) BuildSessionCookie(host, token string) *http.Cookie {
	ck := &http.Cookie{
		Name:        p.Name,
		Value:       token,
		Path:        "/",
		HttpOnly:    true,
		Secure:      true,
		SameSite:    http.SameSiteNoneMode,
		Partitioned: true,
	}
	if d := p.DomainFor(host); d != "" {
		ck.Domain = d
	}
	if p.TTL > 0 {
		ck.Expires = time.Now().Add(p.TTL).UTC()
		ck.MaxAge = int(p.TTL.Seconds())
	}
	return ck
}

// BuildDeletionCookie arma la cookie de borrado con los mismos atributos;
// si Domain no coincide con el de la cookie original, el browser no la pisa.
func (p CookiePolicy) BuildDeletionCookie(host string) *http.Cookie {
	ck := &http.Cookie{
		Name:        p.Name,
		Value:       "",
		Path:        "/",
		HttpOnly:    true,
		Secure:      true,
		SameSite:    http.SameSiteNoneMode,
		Partitioned: true,
		Expires:     time.Unix(0, 0).UTC(),
		MaxAge:      -1,
	}
	if d := p.DomainFor(host); d != "" {
		ck.Domain = d
	}
	return ck
}
