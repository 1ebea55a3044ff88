// Package router arma el árbol de rutas del servicio y encadena los
// middlewares globales.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/flattr-io/auth-svc/internal/http/controllers/auth"
	healthctrl "github.com/flattr-io/auth-svc/internal/http/controllers/health"
	"github.com/flattr-io/auth-svc/internal/http/middlewares"
	"github.com/flattr-io/auth-svc/internal/metrics"
	"github.com/flattr-io/auth-svc/internal/token"
)

// Deps agrupa todo lo que el router necesita para registrar rutas.
type Deps struct {
	// Controllers
	Truecaller *authctrl.TruecallerController
	PhoneEmail *authctrl.PhoneEmailController
	LinkedIn   *authctrl.LinkedInController
	Profile    *authctrl.ProfileController
	Logout     *authctrl.LogoutController
	Health     *healthctrl.Controller

	// Flags de providers: una ruta deshabilitada no se registra (404).
	TruecallerEnabled bool
	PhoneEmailEnabled bool
	LinkedInEnabled   bool

	// Sesión
	Codec      *token.Codec
	CookieName string

	// CORS
	AllowedOrigins []string

	// MetricsHandler sirve /metrics; nil lo deshabilita.
	MetricsHandler http.Handler
}

// New construye el handler raíz con los middlewares globales aplicados.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	requireSession := middlewares.RequireSession(deps.Codec, deps.CookieName)

	r.Route("/v1/auth", func(r chi.Router) {
		if deps.TruecallerEnabled {
			r.Post("/truecaller", deps.Truecaller.Callback)
		}
		if deps.PhoneEmailEnabled {
			r.Post("/phone-email/verify", deps.PhoneEmail.Verify)
		}
		if deps.LinkedInEnabled {
			r.Post("/linkedin", deps.LinkedIn.Login)
		}
		r.Post("/logout", deps.Logout.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/profile", deps.Profile.Get)
			r.Patch("/profile", deps.Profile.Complete)
		})
	})

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// La cadena global envuelve al router entero: request id primero para que
	// logging y recover ya lo tengan en contexto.
	return middlewares.Chain(
		r,
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		metrics.WithMetrics,
		middlewares.WithRecover(),
		middlewares.WithCORS(deps.AllowedOrigins),
	)
}
