package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flattr-io/auth-svc/internal/identity"
	"github.com/flattr-io/auth-svc/internal/providers"
)

func TestPhoneEmailAppError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"payload inválido", fmt.Errorf("verify: %w", providers.ErrPayloadInvalid), "PE_INVALID_URL"},
		{"perfil incompleto", fmt.Errorf("verify: %w", providers.ErrProfileIncomplete), "PE_DATA_MISSING"},
		{"falla de storage", fmt.Errorf("resolve: %w", identity.ErrStore), "SERVER_ERROR"},
		{"upstream 404", &providers.APIError{Provider: "phone_email", Status: 404}, "PE_FETCH_FAILED"},
		{"falla de red", errors.New("dial tcp: timeout"), "PE_FETCH_FAILED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, phoneEmailAppError(tc.err).Code)
		})
	}
}

func TestLinkedInAppError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"code faltante", fmt.Errorf("exchange: %w", providers.ErrPayloadInvalid), "LI_EXCHANGE_FAILED"},
		{"exchange rechazado", fmt.Errorf("exchange: %w", providers.ErrTokenExchangeFailed), "LI_EXCHANGE_FAILED"},
		{"userinfo sin email", fmt.Errorf("userinfo: %w", providers.ErrProfileIncomplete), "LI_PROFILE_INCOMPLETE"},
		{"userinfo 401", &providers.APIError{Provider: "linkedin", Status: 401}, "LI_PROFILE_INCOMPLETE"},
		{"falla de storage", fmt.Errorf("resolve: %w", identity.ErrStore), "SERVER_ERROR"},
		{"error desconocido", errors.New("boom"), "SERVER_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, linkedInAppError(tc.err).Code)
		})
	}
}
