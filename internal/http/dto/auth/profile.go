package auth

import (
	"time"

	"github.com/flattr-io/auth-svc/internal/domain/repository"
)

// ProfileResponse es la vista pública del perfil.
type ProfileResponse struct {
	ID                string    `json:"id"`
	PhoneNumber       string    `json:"phone_number,omitempty"`
	Email             *string   `json:"email,omitempty"`
	FirstName         string    `json:"first_name,omitempty"`
	LastName          string    `json:"last_name,omitempty"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewProfileResponse mapea el modelo de dominio al DTO.
func NewProfileResponse(p *repository.UserProfile) ProfileResponse {
	return ProfileResponse{
		ID:                p.ID,
		PhoneNumber:       p.PhoneNumber,
		Email:             p.Email,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		ProfilePictureURL: p.PictureURL,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// CompleteProfileRequest es el body de PATCH /v1/auth/profile.
// A diferencia del merge de providers, acá el usuario pisa sus datos:
// first_name es obligatorio, el resto opcional.
type CompleteProfileRequest struct {
	FirstName         string  `json:"first_name"`
	LastName          *string `json:"last_name,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}
