package helpers

import (
	"net/http"
	"net/url"
	"strings"
)

// FrontendBase resuelve la URL base del frontend para armar redirects.
// Orden: X-Forwarded-Host (con X-Forwarded-Proto), Origin, Referer y por
// último el fallback configurado. El flujo Truecaller termina en un 302 al
// dashboard, y en dev/tunnels el frontend puede estar en cualquier host.
func FrontendBase(r *http.Request, fallback string) string {
	if xfh := strings.TrimSpace(r.Header.Get("X-Forwarded-Host")); xfh != "" {
		// Puede venir como lista: nos quedamos con el primero.
		if i := strings.IndexByte(xfh, ','); i >= 0 {
			xfh = strings.TrimSpace(xfh[:i])
		}
		proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))
		if proto == "" {
			proto = "https"
		}
		return proto + "://" + xfh
	}

	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		if u, err := url.Parse(origin); err == nil && u.Scheme != "" && u.Host != "" {
			return u.Scheme + "://" + u.Host
		}
	}

	if referer := strings.TrimSpace(r.Header.Get("Referer")); referer != "" {
		if u, err := url.Parse(referer); err == nil && u.Scheme != "" && u.Host != "" {
			return u.Scheme + "://" + u.Host
		}
	}

	return strings.TrimRight(fallback, "/")
}

// RequestHost retorna el host efectivo del request para la política de
// cookies: X-Forwarded-Host si hay proxy delante, si no r.Host.
func RequestHost(r *http.Request) string {
	if xfh := strings.TrimSpace(r.Header.Get("X-Forwarded-Host")); xfh != "" {
		if i := strings.IndexByte(xfh, ','); i >= 0 {
			return strings.TrimSpace(xfh[:i])
		}
		return xfh
	}
	return r.Host
}
