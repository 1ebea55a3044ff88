// Package auth contiene los controllers HTTP del flujo de login.
// Traducen requests a llamadas de service y errores de dominio a AppError
// o redirects, según el estilo de cada flujo.
package auth

import (
	"errors"
	"net/http"

	dto "github.com/flattr-io/auth-svc/internal/http/dto/auth"
	"github.com/flattr-io/auth-svc/internal/http/helpers"
	services "github.com/flattr-io/auth-svc/internal/http/services/auth"
	"github.com/flattr-io/auth-svc/internal/observability/logger"
	"github.com/flattr-io/auth-svc/internal/providers/truecaller"
)

// TruecallerController maneja POST /v1/auth/truecaller.
//
// A diferencia de los otros flujos, acá el POST lo hace el SDK y el browser
// del usuario sigue el redirect: la respuesta de éxito es cookie + 302 al
// dashboard, y la de error un 302 al frontend con ?error=<code>.
type TruecallerController struct {
	service     services.TruecallerService
	cookies     helpers.CookiePolicy
	frontendURL string
}

// NewTruecallerController crea el controller.
func NewTruecallerController(svc services.TruecallerService, cookies helpers.CookiePolicy, frontendURL string) *TruecallerController {
	return &TruecallerController{service: svc, cookies: cookies, frontendURL: frontendURL}
}

// Callback procesa el callback del SDK.
func (c *TruecallerController) Callback(w http.ResponseWriter, r *http.Request) {
	var cb truecaller.Callback
	if !helpers.ReadJSON(w, r, &cb) {
		return
	}

	// Ping de apertura del flujo: solo ack, sin credenciales todavía.
	if cb.IsFlowInvoked() {
		helpers.WriteJSON(w, http.StatusOK, dto.AckResponse{Status: "ok"})
		return
	}

	res, err := c.service.Login(r.Context(), cb)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateCallback) {
			helpers.WriteJSON(w, http.StatusOK, dto.AckResponse{Status: "duplicate_ignored"})
			return
		}
		logger.From(r.Context()).Warn("login truecaller falló",
			logger.Layer("controller"),
			logger.Provider("truecaller"),
			logger.Err(err),
		)
		frontend := helpers.FrontendBase(r, c.frontendURL)
		http.Redirect(w, r, frontend+"?error=TC_FAILED", http.StatusFound)
		return
	}

	http.SetCookie(w, c.cookies.BuildSessionCookie(helpers.RequestHost(r), res.Token))

	frontend := helpers.FrontendBase(r, c.frontendURL)
	http.Redirect(w, r, frontend+"/dashboard?user_id="+res.Profile.ID+"&auth_success=true", http.StatusFound)
}
