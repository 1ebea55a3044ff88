// Package repository define el modelo de perfiles y el contrato de
// persistencia. Las implementaciones viven en internal/store.
package repository

import (
	"context"
	"time"
)

// UserProfile es el registro canónico de un usuario del login web.
//
// PhoneNumber guarda el teléfono canónico (solo dígitos, con código de
// país). Vacío significa "sin teléfono": usuarios que entraron por un
// provider solo-email (LinkedIn) quedan con "" hasta que un login por
// teléfono complete el dato. Email es nullable: logins solo-teléfono no
// lo traen.
type UserProfile struct {
	ID          string
	PhoneNumber string
	Email       *string
	FirstName   string
	LastName    string
	PictureURL  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateProfileInput contiene los datos para crear un perfil.
type CreateProfileInput struct {
	PhoneNumber string
	Email       *string
	FirstName   string
	LastName    string
	PictureURL  string
}

// UpdateProfileInput contiene los campos actualizables de un perfil.
// Nil significa "no tocar"; string vacío es un valor válido.
type UpdateProfileInput struct {
	PhoneNumber *string
	Email       *string
	FirstName   *string
	LastName    *string
	PictureURL  *string
}

// ProfileRepository define operaciones sobre perfiles de usuario.
type ProfileRepository interface {
	// GetByID busca un perfil por ID. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*UserProfile, error)

	// GetByPhone busca por teléfono canónico.
	// Retorna ErrNotFound si no existe; ErrInvalidInput si phone es vacío
	// (phone_number = '' no identifica a nadie).
	GetByPhone(ctx context.Context, phone string) (*UserProfile, error)

	// GetByEmail busca por email. Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*UserProfile, error)

	// Create inserta un perfil nuevo y retorna el registro completo.
	// Retorna ErrConflict si phone o email ya existen (constraint única).
	Create(ctx context.Context, input CreateProfileInput) (*UserProfile, error)

	// Update aplica un patch parcial y retorna el registro actualizado.
	// Retorna ErrNotFound si el perfil no existe, ErrConflict si el patch
	// colisiona con una constraint única.
	Update(ctx context.Context, id string, input UpdateProfileInput) (*UserProfile, error)

	// Ping verifica la conexión al almacenamiento.
	Ping(ctx context.Context) error

	// Close libera recursos.
	Close() error
}
