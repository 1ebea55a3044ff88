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

// PhoneEmailController maneja POST /v1/auth/phone-email/verify.
type PhoneEmailController struct {
	service services.PhoneEmailService
	cookies helpers.CookiePolicy
}

// NewPhoneEmailController crea el controller.
func NewPhoneEmailController(svc services.PhoneEmailService, cookies helpers.CookiePolicy) *PhoneEmailController {
	return &PhoneEmailController{service: svc, cookies: cookies}
}

// Verify procesa la verificación del widget.
func (c *PhoneEmailController) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.PhoneEmailVerifyRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.UserJSONURL == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("user_json_url es requerido"))
		return
	}

	res, err := c.service.Login(r.Context(), req.UserJSONURL)
	if err != nil {
		logger.From(r.Context()).Warn("login phone.email falló",
			logger.Layer("controller"),
			logger.Provider("phone_email"),
			logger.Err(err),
		)
		httperrors.WriteError(w, phoneEmailAppError(err))
		return
	}

	http.SetCookie(w, c.cookies.BuildSessionCookie(helpers.RequestHost(r), res.Token))
	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		Success: true,
		UserID:  res.Profile.ID,
		NewUser: res.Created,
	})
}

// phoneEmailAppError mapea errores del flujo Phone.email a códigos públicos.
func phoneEmailAppError(err error) *httperrors.AppError {
	switch {
	case errors.Is(err, providers.ErrPayloadInvalid):
		return httperrors.ErrPhoneEmailInvalidURL.WithCause(err)
	case errors.Is(err, providers.ErrProfileIncomplete):
		return httperrors.ErrPhoneEmailDataMissing.WithCause(err)
	case errors.Is(err, identity.ErrStore):
		return httperrors.ErrInternalServerError.WithCause(err)
	default:
		// APIError del upstream y fallas de red caen acá.
		return httperrors.ErrPhoneEmailFetchFailed.WithCause(err)
	}
}
