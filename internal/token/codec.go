// Package token emite y verifica los tokens de sesión del login web.
//
// El token es un JWT HS256 con claims mínimos: sub/userId (ID del perfil),
// email, iat y exp. No hay refresh: expirado el token, el usuario vuelve a
// loguearse con cualquier provider.
package token

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Errores de verificación.
var (
	ErrTokenExpired = errors.New("token: expirado")
	ErrTokenInvalid = errors.New("token: inválido")
)

// Claims son los claims de sesión que viajan en el token.
type Claims struct {
	UserID string
	Email  string
	Expiry time.Time
}

// Codec firma y verifica tokens de sesión con un secreto HMAC compartido.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec crea un Codec. ttl define la vida del token (default del
// producto: 168h).
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue emite un token firmado para el usuario.
// "userId" se duplica junto a "sub" por compatibilidad con clientes que
// leen uno u otro.
func (c *Codec) Issue(userID, email string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(c.ttl)

	claims := jwtv5.MapClaims{
		"sub":    userID,
		"userId": userID,
		"email":  email,
		"iat":    now.Unix(),
		"exp":    exp.Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify valida firma y expiración y retorna los claims.
// Distingue ErrTokenExpired (firma válida, exp vencido) de ErrTokenInvalid
// (firma rota, alg inesperado, claims ilegibles).
func (c *Codec) Verify(raw string) (*Claims, error) {
	tk, err := jwtv5.Parse(raw, func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	}, jwtv5.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	mc, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok || !tk.Valid {
		return nil, ErrTokenInvalid
	}
	return claimsFromMap(mc)
}

// Decode parsea el token SIN verificar firma ni expiración.
// Solo para diagnóstico (logs, tooling); nunca para autorizar.
func (c *Codec) Decode(raw string) (*Claims, error) {
	tk, _, err := jwtv5.NewParser().ParseUnverified(raw, jwtv5.MapClaims{})
	if err != nil {
		return nil, ErrTokenInvalid
	}
	mc, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claimsFromMap(mc)
}

func claimsFromMap(mc jwtv5.MapClaims) (*Claims, error) {
	sub, _ := mc["sub"].(string)
	if sub == "" {
		// clientes viejos mandaban solo userId
		sub, _ = mc["userId"].(string)
	}
	if sub == "" {
		return nil, ErrTokenInvalid
	}
	email, _ := mc["email"].(string)

	var exp time.Time
	if v, ok := mc["exp"].(float64); ok {
		exp = time.Unix(int64(v), 0).UTC()
	}

	return &Claims{UserID: sub, Email: email, Expiry: exp}, nil
}
