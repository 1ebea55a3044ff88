// Package health expone los probes de liveness y readiness.
package health

import (
	"net/http"

	"github.com/flattr-io/auth-svc/internal/cache"
	"github.com/flattr-io/auth-svc/internal/domain/repository"
	httperrors "github.com/flattr-io/auth-svc/internal/http/errors"
	"github.com/flattr-io/auth-svc/internal/http/helpers"
	"github.com/flattr-io/auth-svc/internal/observability/logger"
)

// Controller responde /healthz y /readyz.
type Controller struct {
	profiles repository.ProfileRepository
	cache    cache.Client
}

// New crea el controller de health.
func New(profiles repository.ProfileRepository, c cache.Client) *Controller {
	return &Controller{profiles: profiles, cache: c}
}

// Healthz es liveness: el proceso responde.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz es readiness: storage y cache alcanzables.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.profiles.Ping(ctx); err != nil {
		logger.From(ctx).Warn("readiness: storage no responde", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithDetail("storage"))
		return
	}
	if err := c.cache.Ping(ctx); err != nil {
		logger.From(ctx).Warn("readiness: cache no responde", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithDetail("cache"))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
