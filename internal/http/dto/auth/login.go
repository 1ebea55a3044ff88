// Package auth define los DTOs del flujo de login y perfil.
package auth

// PhoneEmailVerifyRequest es el body de POST /v1/auth/phone-email/verify.
// user_json_url es la URL que el widget de Phone.email entrega al frontend.
type PhoneEmailVerifyRequest struct {
	UserJSONURL string `json:"user_json_url"`
}

// LinkedInLoginRequest es el body de POST /v1/auth/linkedin.
type LinkedInLoginRequest struct {
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
}

// LoginResponse es la respuesta JSON de los logins fetch-style.
// El token viaja en la cookie, no en el body.
type LoginResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
	NewUser bool   `json:"newUser,omitempty"`
}

// AckResponse es la respuesta a callbacks que no procesan login
// (flow_invoked, requestId duplicado).
type AckResponse struct {
	Status string `json:"status"`
}
