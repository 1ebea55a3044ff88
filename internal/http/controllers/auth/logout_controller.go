package auth

import (
	"net/http"

	"github.com/flattr-io/auth-svc/internal/http/helpers"
)

// LogoutController maneja POST /v1/auth/logout.
// El logout es stateless: solo borra la cookie, el JWT expira solo.
type LogoutController struct {
	cookies helpers.CookiePolicy
}

// NewLogoutController crea el controller.
func NewLogoutController(cookies helpers.CookiePolicy) *LogoutController {
	return &LogoutController{cookies: cookies}
}

// Logout borra la cookie de sesión.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, c.cookies.BuildDeletionCookie(helpers.RequestHost(r)))
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
