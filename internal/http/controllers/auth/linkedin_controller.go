package auth

import (
	"errors"
	"net/http"

	dto "github.com/flattr-io/auth-svc/internal/http/dto/auth"
	httperrors "github.com/flattr-io/auth-svc/internal/http/errors"
	"github.com/flattr-io/auth-svc/internal/http/helpers"
	services "github.com/flattr-io/auth-svc/internal/http/services/auth"
	"github.com/flattr-io/auth-svc/internal/identity"
	"github.com/flattr-io/auth-svc/internal/observability/logger"
	"github.com/flattr-io/auth-svc/internal/providers"
)

// LinkedInController maneja POST /v1/auth/linkedin.
type LinkedInController struct {
	service services.LinkedInService
	cookies helpers.CookiePolicy
}

// NewLinkedInController crea el controller.
func NewLinkedInController(svc services.LinkedInService, cookies helpers.CookiePolicy) *LinkedInController {
	return &LinkedInController{service: svc, cookies: cookies}
}

// Login intercambia el authorization code y emite sesión.
func (c *LinkedInController) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LinkedInLoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Code == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("code es requerido"))
		return
	}

	res, err := c.service.Login(r.Context(), req.Code, req.CodeVerifier, req.RedirectURI)
	if err != nil {
		logger.From(r.Context()).Warn("login linkedin falló",
			logger.Layer("controller"),
			logger.Provider("linkedin"),
			logger.Err(err),
		)
		httperrors.WriteError(w, linkedInAppError(err))
		return
	}

	http.SetCookie(w, c.cookies.BuildSessionCookie(helpers.RequestHost(r), res.Token))
	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		Success: true,
		UserID:  res.Profile.ID,
		NewUser: res.Created,
	})
}

// linkedInAppError mapea errores del flujo LinkedIn a códigos públicos.
func linkedInAppError(err error) *httperrors.AppError {
	var apiErr *providers.APIError
	switch {
	case errors.Is(err, providers.ErrPayloadInvalid),
		errors.Is(err, providers.ErrTokenExchangeFailed):
		return httperrors.ErrLinkedInExchangeFailed.WithCause(err)
	case errors.Is(err, providers.ErrProfileIncomplete):
		return httperrors.ErrLinkedInProfileIncomplete.WithCause(err)
	case errors.As(err, &apiErr):
		// Solo userinfo devuelve APIError en este flujo.
		return httperrors.ErrLinkedInProfileIncomplete.WithCause(err)
	case errors.Is(err, identity.ErrStore):
		return httperrors.ErrInternalServerError.WithCause(err)
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}
