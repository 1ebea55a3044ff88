package auth

import (
	"context"

	"github.com/flattr-io/auth-svc/internal/idempotency"
	"github.com/flattr-io/auth-svc/internal/identity"
	"github.com/flattr-io/auth-svc/internal/metrics"
	"github.com/flattr-io/auth-svc/internal/observability/logger"
	"github.com/flattr-io/auth-svc/internal/providers/truecaller"
	"github.com/flattr-io/auth-svc/internal/token"
)

// LoginService implementa los tres flujos de login sobre los adapters de
// providers, el reconciliador de identidades y el codec de sesión.
type LoginService struct {
	truecaller TruecallerFetcher
	phoneEmail PhoneEmailVerifier
	linkedIn   LinkedInAuthenticator
	reconciler *identity.Reconciler
	codec      *token.Codec
	guard      *idempotency.Guard
}

// NewLoginService arma el service con todas sus dependencias.
func NewLoginService(
	tc TruecallerFetcher,
	pe PhoneEmailVerifier,
	li LinkedInAuthenticator,
	rec *identity.Reconciler,
	codec *token.Codec,
	guard *idempotency.Guard,
) *LoginService {
	return &LoginService{
		truecaller: tc,
		phoneEmail: pe,
		linkedIn:   li,
		reconciler: rec,
		codec:      codec,
		guard:      guard,
	}
}

// finish reconcilia la identidad y emite el token de sesión.
func (s *LoginService) finish(ctx context.Context, provider string, n identity.Normalized) (*LoginResult, error) {
	profile, created, err := s.reconciler.Resolve(ctx, n)
	if err != nil {
		metrics.RecordLoginAttempt(provider, "failed")
		return nil, err
	}

	email := ""
	if profile.Email != nil {
		email = *profile.Email
	}
	signed, exp, err := s.codec.Issue(profile.ID, email)
	if err != nil {
		metrics.RecordLoginAttempt(provider, "failed")
		return nil, err
	}

	outcome := "success"
	if created {
		outcome = "signup"
	}
	metrics.RecordLoginAttempt(provider, outcome)

	logger.From(ctx).Info("login completado",
		logger.Layer("service"),
		logger.Provider(provider),
		logger.UserID(profile.ID),
		logger.Bool("new_user", created),
	)

	return &LoginResult{
		Profile:   profile,
		Token:     signed,
		ExpiresAt: exp,
		Created:   created,
	}, nil
}

// Login procesa un callback de Truecaller. Deduplica por requestId: el SDK
// reintenta el POST y reprocesar duplicaría logins. El requestId se marca
// SOLO después de un login exitoso, para que un intento fallido pueda
// reintentarse.
func (s *LoginService) Login(ctx context.Context, cb truecaller.Callback) (*LoginResult, error) {
	if s.guard.AlreadyProcessed(ctx, cb.RequestID) {
		metrics.RecordLoginAttempt("truecaller", "duplicate_ignored")
		logger.From(ctx).Info("callback duplicado ignorado",
			logger.Layer("service"),
			logger.Provider("truecaller"),
			logger.Key(cb.RequestID),
		)
		return nil, ErrDuplicateCallback
	}

	n, err := s.truecaller.FetchProfile(ctx, cb)
	if err != nil {
		metrics.RecordLoginAttempt("truecaller", "failed")
		return nil, err
	}

	res, err := s.finish(ctx, "truecaller", n)
	if err != nil {
		return nil, err
	}
	s.guard.MarkProcessed(ctx, cb.RequestID)
	return res, nil
}

// phoneEmailLogin y linkedInLogin comparten el cierre vía finish; se
// exponen como tipos separados para mantener interfaces chicas.

type phoneEmailLogin struct{ *LoginService }

func (s phoneEmailLogin) Login(ctx context.Context, userJSONURL string) (*LoginResult, error) {
	n, err := s.phoneEmail.Verify(ctx, userJSONURL)
	if err != nil {
		metrics.RecordLoginAttempt("phone_email", "failed")
		return nil, err
	}
	return s.finish(ctx, "phone_email", n)
}

type linkedInLogin struct{ *LoginService }

func (s linkedInLogin) Login(ctx context.Context, code, codeVerifier, redirectURI string) (*LoginResult, error) {
	n, err := s.linkedIn.Login(ctx, code, codeVerifier, redirectURI)
	if err != nil {
		metrics.RecordLoginAttempt("linkedin", "failed")
		return nil, err
	}
	return s.finish(ctx, "linkedin", n)
}

// PhoneEmail expone el flujo Phone.email como PhoneEmailService.
func (s *LoginService) PhoneEmail() PhoneEmailService { return phoneEmailLogin{s} }

// LinkedIn expone el flujo LinkedIn como LinkedInService.
func (s *LoginService) LinkedIn() LinkedInService { return linkedInLogin{s} }
