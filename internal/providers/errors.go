// Package providers define el contrato común de los adapters de identidad
// y sus errores. Cada adapter traduce el flujo de su provider a una
// identity.Normalized; el resto del sistema no conoce formatos de terceros.
package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrPayloadInvalid indica que el payload del cliente no tiene la forma
	// esperada (campos faltantes, URL no permitida, status desconocido).
	ErrPayloadInvalid = errors.New("providers: payload inválido")

	// ErrProfileIncomplete indica que el provider respondió pero sin los
	// datos mínimos para identificar al usuario (sin teléfono, sin email).
	ErrProfileIncomplete = errors.New("providers: perfil incompleto")

	// ErrTokenExchangeFailed indica que el intercambio code→token falló.
	ErrTokenExchangeFailed = errors.New("providers: intercambio de token fallido")
)

// APIError indica que el provider respondió con un status no-2xx.
type APIError struct {
	Provider string
	Status   int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("providers: %s respondió HTTP %d", e.Provider, e.Status)
}
