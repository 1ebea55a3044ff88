// Package auth contiene los services del flujo de login: orquestan
// provider → reconciliación → emisión de token. Los controllers solo
// traducen HTTP.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/flattr-io/auth-svc/internal/domain/repository"
	"github.com/flattr-io/auth-svc/internal/identity"
	"github.com/flattr-io/auth-svc/internal/providers/truecaller"
)

// ErrDuplicateCallback indica un callback ya procesado dentro de la ventana
// de idempotencia. No es una falla: el login original ya emitió sesión.
var ErrDuplicateCallback = errors.New("auth: callback duplicado")

// LoginResult es el resultado de un login exitoso.
type LoginResult struct {
	Profile   *repository.UserProfile
	Token     string
	ExpiresAt time.Time
	Created   bool // true si el login creó el perfil (signup)
}

// Adapters de providers: cada uno devuelve la identidad ya normalizada.
// El service no sabe de HTTP upstream, solo de identidades.
type TruecallerFetcher interface {
	FetchProfile(ctx context.Context, cb truecaller.Callback) (identity.Normalized, error)
}

type PhoneEmailVerifier interface {
	Verify(ctx context.Context, userJSONURL string) (identity.Normalized, error)
}

type LinkedInAuthenticator interface {
	Login(ctx context.Context, code, codeVerifier, redirectURI string) (identity.Normalized, error)
}

// TruecallerService procesa callbacks del SDK de Truecaller.
type TruecallerService interface {
	Login(ctx context.Context, cb truecaller.Callback) (*LoginResult, error)
}

// PhoneEmailService procesa verificaciones del widget Phone.email.
type PhoneEmailService interface {
	Login(ctx context.Context, userJSONURL string) (*LoginResult, error)
}

// LinkedInService procesa el flujo OAuth de LinkedIn.
type LinkedInService interface {
	Login(ctx context.Context, code, codeVerifier, redirectURI string) (*LoginResult, error)
}

// ProfileService lee y completa el perfil del usuario autenticado.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*repository.UserProfile, error)
	Complete(ctx context.Context, userID string, input CompleteProfileInput) (*repository.UserProfile, error)
}

// CompleteProfileInput son los datos del complete-profile.
// Nil = no tocar; el first name siempre se setea (validado en controller).
type CompleteProfileInput struct {
	FirstName  string
	LastName   *string
	PictureURL *string
}
