package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/flattr-io/auth-svc/internal/domain/repository"
	"github.com/flattr-io/auth-svc/internal/observability/logger"
)

// ErrStore envuelve fallas del repositorio durante la reconciliación.
var ErrStore = errors.New("identity: fallo de almacenamiento")

// Reconciler resuelve una identidad normalizada contra el store de
// perfiles: devuelve el perfil existente (completándolo si el provider
// trajo datos que faltaban) o crea uno nuevo.
type Reconciler struct {
	profiles repository.ProfileRepository
}

// NewReconciler crea un Reconciler sobre el repositorio dado.
func NewReconciler(profiles repository.ProfileRepository) *Reconciler {
	return &Reconciler{profiles: profiles}
}

// Resolve reconcilia la identidad y retorna el perfil resultante.
// created indica si el perfil se creó en esta llamada.
//
// La política de merge es fill-if-empty: los datos del provider solo
// completan campos vacíos del perfil, nunca pisan valores existentes.
// Un login nuevo no puede degradar un perfil ya curado por el usuario.
func (r *Reconciler) Resolve(ctx context.Context, n Normalized) (profile *repository.UserProfile, created bool, err error) {
	if !n.Valid() {
		return nil, false, ErrKeyInvalid
	}

	existing, err := r.lookup(ctx, n.Key)
	switch {
	case err == nil:
		merged, mergeErr := r.fillMissing(ctx, existing, n)
		if mergeErr != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrStore, mergeErr)
		}
		return merged, false, nil

	case errors.Is(err, repository.ErrNotFound):
		// seguir a crear

	default:
		return nil, false, fmt.Errorf("%w: %v", ErrStore, err)
	}

	profile, err = r.create(ctx, n)
	if err == nil {
		return profile, true, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return nil, false, fmt.Errorf("%w: %v", ErrStore, err)
	}

	// Carrera de creación: otro request insertó el perfil entre nuestro
	// lookup y el INSERT. La constraint única arbitró; re-buscamos una vez.
	logger.From(ctx).Debug("identity: conflicto de creación, re-buscando",
		logger.Component("reconciler"),
		logger.String("key_kind", string(n.Key.Kind)),
	)
	existing, err = r.lookup(ctx, n.Key)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return existing, false, nil
}

func (r *Reconciler) lookup(ctx context.Context, key Key) (*repository.UserProfile, error) {
	switch key.Kind {
	case KindPhone:
		return r.profiles.GetByPhone(ctx, key.Value)
	case KindEmail:
		return r.profiles.GetByEmail(ctx, key.Value)
	default:
		return nil, ErrKeyInvalid
	}
}

// fillMissing completa campos vacíos del perfil con lo que trajo el
// provider. Si no hay nada que completar, no toca la DB.
func (r *Reconciler) fillMissing(ctx context.Context, p *repository.UserProfile, n Normalized) (*repository.UserProfile, error) {
	var patch repository.UpdateProfileInput
	dirty := false

	if p.FirstName == "" && n.FirstName != "" {
		patch.FirstName = &n.FirstName
		dirty = true
	}
	if p.LastName == "" && n.LastName != "" {
		patch.LastName = &n.LastName
		dirty = true
	}
	if p.PictureURL == "" && n.PictureURL != "" {
		patch.PictureURL = &n.PictureURL
		dirty = true
	}
	if (p.Email == nil || *p.Email == "") && n.Email != "" {
		patch.Email = &n.Email
		dirty = true
	}
	if p.PhoneNumber == "" && n.Key.Kind == KindPhone {
		patch.PhoneNumber = &n.Key.Value
		dirty = true
	}

	if !dirty {
		return p, nil
	}

	updated, err := r.profiles.Update(ctx, p.ID, patch)
	if err != nil {
		// El fill puede chocar con otra constraint (ej: el email ya es de
		// otro perfil). El login no falla por eso: seguimos con el perfil
		// tal como estaba.
		if errors.Is(err, repository.ErrConflict) {
			logger.From(ctx).Warn("identity: fill-if-empty en conflicto, se omite",
				logger.Component("reconciler"),
				logger.UserID(p.ID),
			)
			return p, nil
		}
		return nil, err
	}
	return updated, nil
}

func (r *Reconciler) create(ctx context.Context, n Normalized) (*repository.UserProfile, error) {
	input := repository.CreateProfileInput{
		FirstName:  n.FirstName,
		LastName:   n.LastName,
		PictureURL: n.PictureURL,
	}
	// phone_number nunca es NULL: '' marca "sin teléfono" (signup por
	// provider solo-email).
	if n.Key.Kind == KindPhone {
		input.PhoneNumber = n.Key.Value
	}

	email := n.Email
	if n.Key.Kind == KindEmail {
		email = n.Key.Value
	}
	if email != "" {
		input.Email = &email
	}

	return r.profiles.Create(ctx, input)
}
