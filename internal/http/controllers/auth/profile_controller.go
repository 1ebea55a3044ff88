package auth

import (
	"net/http"

	"github.com/flattr-io/auth-svc/internal/domain/repository"
	dto "github.com/flattr-io/auth-svc/internal/http/dto/auth"
	httperrors "github.com/flattr-io/auth-svc/internal/http/errors"
	"github.com/flattr-io/auth-svc/internal/http/helpers"
	"github.com/flattr-io/auth-svc/internal/http/middlewares"
	services "github.com/flattr-io/auth-svc/internal/http/services/auth"
)

// ProfileController maneja GET y PATCH /v1/auth/profile.
// Ambas rutas pasan por RequireSession: el user id sale del contexto.
type ProfileController struct {
	service services.ProfileService
}

// NewProfileController crea el controller.
func NewProfileController(svc services.ProfileService) *ProfileController {
	return &ProfileController{service: svc}
}

// Get devuelve el perfil del usuario autenticado.
func (c *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	profile, err := c.service.Get(r.Context(), userID)
	if err != nil {
		if repository.IsNotFound(err) {
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.NewProfileResponse(profile))
}

// Complete aplica el complete-profile del usuario.
func (c *ProfileController) Complete(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.CompleteProfileRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.FirstName == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("first_name es requerido"))
		return
	}

	profile, err := c.service.Complete(r.Context(), userID, services.CompleteProfileInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		PictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		switch {
		case repository.IsNotFound(err):
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
		case repository.IsConflict(err):
			httperrors.WriteError(w, httperrors.ErrConflict.WithCause(err))
		default:
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.NewProfileResponse(profile))
}
