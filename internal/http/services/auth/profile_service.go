package auth

import (
	"context"

	"github.com/flattr-io/auth-svc/internal/domain/repository"
)

// profileService implementa ProfileService sobre el repositorio.
type profileService struct {
	profiles repository.ProfileRepository
}

// NewProfileService crea el service de perfil.
func NewProfileService(profiles repository.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles}
}

func (s *profileService) Get(ctx context.Context, userID string) (*repository.UserProfile, error) {
	return s.profiles.GetByID(ctx, userID)
}

// Complete aplica el complete-profile. Es acción del usuario, así que pisa
// los valores existentes (al contrario del merge de providers).
func (s *profileService) Complete(ctx context.Context, userID string, input CompleteProfileInput) (*repository.UserProfile, error) {
	patch := repository.UpdateProfileInput{
		FirstName: &input.FirstName,
	}
	if input.LastName != nil {
		patch.LastName = input.LastName
	}
	if input.PictureURL != nil {
		patch.PictureURL = input.PictureURL
	}
	return s.profiles.Update(ctx, userID, patch)
}
