package middlewares

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/flattr-io/auth-svc/internal/http/errors"
	"github.com/flattr-io/auth-svc/internal/token"
)

// sessionToken extrae el token de sesión del request: primero la cookie,
// después Authorization: Bearer (clientes móviles sin cookie jar).
func sessionToken(r *http.Request, cookieName string) string {
	if ck, err := r.Cookie(cookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) > 7 && strings.EqualFold(ah[:7], "bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	return ""
}

// RequireSession valida el token de sesión y guarda el user ID en el
// contexto. Sin token o con token inválido responde 401.
func RequireSession(codec *token.Codec, cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := sessionToken(r, cookieName)
			if raw == "" {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}

			claims, err := codec.Verify(raw)
			if err != nil {
				if errors.Is(err, token.ErrTokenExpired) {
					httperrors.WriteError(w, httperrors.ErrTokenExpired)
					return
				}
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
