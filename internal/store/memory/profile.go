// Package memory implementa ProfileRepository en memoria.
// Pensado para desarrollo y tests; replica la semántica de constraints del
// driver pg (phone único cuando no es '', email único cuando no es NULL).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flattr-io/auth-svc/internal/domain/repository"
)

// Store guarda perfiles en maps indexados por id/phone/email.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*repository.UserProfile
	byPhone map[string]string // phone -> id
	byEmail map[string]string // email -> id
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		byID:    make(map[string]*repository.UserProfile),
		byPhone: make(map[string]string),
		byEmail: make(map[string]string),
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close() error                   { return nil }

func clone(p *repository.UserProfile) *repository.UserProfile {
	cp := *p
	if p.Email != nil {
		e := *p.Email
		cp.Email = &e
	}
	return &cp
}

func (s *Store) GetByID(ctx context.Context, id string) (*repository.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(p), nil
}

func (s *Store) GetByPhone(ctx context.Context, phone string) (*repository.UserProfile, error) {
	if phone == "" {
		return nil, repository.ErrInvalidInput
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPhone[phone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*repository.UserProfile, error) {
	if email == "" {
		return nil, repository.ErrInvalidInput
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *Store) Create(ctx context.Context, input repository.CreateProfileInput) (*repository.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.PhoneNumber != "" {
		if _, exists := s.byPhone[input.PhoneNumber]; exists {
			return nil, repository.ErrConflict
		}
	}
	if input.Email != nil && *input.Email != "" {
		if _, exists := s.byEmail[*input.Email]; exists {
			return nil, repository.ErrConflict
		}
	}

	now := time.Now().UTC()
	p := &repository.UserProfile{
		ID:          uuid.NewString(),
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PictureURL:  input.PictureURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.byID[p.ID] = p
	if p.PhoneNumber != "" {
		s.byPhone[p.PhoneNumber] = p.ID
	}
	if p.Email != nil && *p.Email != "" {
		s.byEmail[*p.Email] = p.ID
	}
	return clone(p), nil
}

func (s *Store) Update(ctx context.Context, id string, input repository.UpdateProfileInput) (*repository.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	// Validar constraints antes de mutar.
	if input.PhoneNumber != nil && *input.PhoneNumber != "" && *input.PhoneNumber != p.PhoneNumber {
		if _, exists := s.byPhone[*input.PhoneNumber]; exists {
			return nil, repository.ErrConflict
		}
	}
	if input.Email != nil && *input.Email != "" {
		if cur, exists := s.byEmail[*input.Email]; exists && cur != id {
			return nil, repository.ErrConflict
		}
	}

	if input.PhoneNumber != nil {
		if p.PhoneNumber != "" {
			delete(s.byPhone, p.PhoneNumber)
		}
		p.PhoneNumber = *input.PhoneNumber
		if p.PhoneNumber != "" {
			s.byPhone[p.PhoneNumber] = id
		}
	}
	if input.Email != nil {
		if p.Email != nil && *p.Email != "" {
			delete(s.byEmail, *p.Email)
		}
		if *input.Email == "" {
			p.Email = nil
		} else {
			e := *input.Email
			p.Email = &e
			s.byEmail[e] = id
		}
	}
	if input.FirstName != nil {
		p.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		p.LastName = *input.LastName
	}
	if input.PictureURL != nil {
		p.PictureURL = *input.PictureURL
	}
	p.UpdatedAt = time.Now().UTC()

	return clone(p), nil
}
