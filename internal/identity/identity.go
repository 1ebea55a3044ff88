// Package identity define la identidad normalizada que producen los
// providers y la reconciliación contra el store de perfiles.
//
// Cada provider (Truecaller, Phone.email, LinkedIn) traduce su payload a
// una Normalized; el Reconciler resuelve a qué perfil corresponde, creando
// uno si hace falta. Una clave = un perfil: el mismo teléfono por cualquier
// provider aterriza siempre en el mismo usuario.
package identity

import "errors"

// KeyKind es el tipo de clave de identidad.
type KeyKind string

const (
	KindPhone KeyKind = "phone"
	KindEmail KeyKind = "email"
)

// Key es la clave de identidad con la que se busca el perfil.
// Value ya viene canónico: teléfono solo-dígitos o email tal cual lo
// entregó el provider.
type Key struct {
	Kind  KeyKind
	Value string
}

// Normalized es el resultado de un login exitoso contra un provider,
// en formato neutro. Los campos fuera de Key son opcionales: se usan para
// completar el perfil, nunca para pisarlo.
type Normalized struct {
	Key        Key
	FirstName  string
	LastName   string
	Email      string
	PictureURL string
}

// Valid verifica que la identidad tenga una clave usable.
func (n Normalized) Valid() bool {
	return n.Key.Value != "" && (n.Key.Kind == KindPhone || n.Key.Kind == KindEmail)
}

// ErrKeyInvalid indica una identidad sin clave usable.
var ErrKeyInvalid = errors.New("identity: clave inválida")
