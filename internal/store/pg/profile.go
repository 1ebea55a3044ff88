// Package pg implementa ProfileRepository sobre PostgreSQL.
// Usa pgxpool directamente; la arbitración de carreras de creación la hace
// la DB vía constraints únicas (phone_number parcial, email).
package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flattr-io/auth-svc/internal/domain/repository"
)

// Config configura la conexión.
type Config struct {
	DSN             string
	MaxConns        int
	ConnMaxLifetime time.Duration
}

// Store expone el ProfileRepository sobre un pool pgx.
type Store struct {
	pool *pgxpool.Pool
}

// New crea el pool y verifica la conexión.
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Pool expone el pool subyacente (migraciones, health checks).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

const profileColumns = `id, phone_number, email, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(picture_url, ''), created_at, updated_at`

func scanProfile(row pgx.Row) (*repository.UserProfile, error) {
	var p repository.UserProfile
	err := row.Scan(
		&p.ID, &p.PhoneNumber, &p.Email,
		&p.FirstName, &p.LastName, &p.PictureURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*repository.UserProfile, error) {
	const query = `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1`
	p, err := scanProfile(s.pool.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("pg: get profile by id: %w", err)
	}
	return p, err
}

func (s *Store) GetByPhone(ctx context.Context, phone string) (*repository.UserProfile, error) {
	// '' es el default "sin teléfono", nunca identifica un perfil.
	if phone == "" {
		return nil, repository.ErrInvalidInput
	}
	const query = `SELECT ` + profileColumns + ` FROM user_profiles WHERE phone_number = $1`
	p, err := scanProfile(s.pool.QueryRow(ctx, query, phone))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("pg: get profile by phone: %w", err)
	}
	return p, err
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*repository.UserProfile, error) {
	if email == "" {
		return nil, repository.ErrInvalidInput
	}
	const query = `SELECT ` + profileColumns + ` FROM user_profiles WHERE email = $1`
	p, err := scanProfile(s.pool.QueryRow(ctx, query, email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("pg: get profile by email: %w", err)
	}
	return p, err
}

func (s *Store) Create(ctx context.Context, input repository.CreateProfileInput) (*repository.UserProfile, error) {
	const query = `
		INSERT INTO user_profiles (id, phone_number, email, first_name, last_name, picture_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + profileColumns

	id := uuid.NewString()
	now := time.Now().UTC()

	p, err := scanProfile(s.pool.QueryRow(ctx, query,
		id, input.PhoneNumber, input.Email,
		nullIfEmpty(input.FirstName), nullIfEmpty(input.LastName), nullIfEmpty(input.PictureURL),
		now,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("pg: insert profile: %w", err)
	}
	return p, nil
}

func (s *Store) Update(ctx context.Context, id string, input repository.UpdateProfileInput) (*repository.UserProfile, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{id}
	argIdx := 2

	add := func(col string, v any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, v)
		argIdx++
	}

	if input.PhoneNumber != nil {
		add("phone_number", *input.PhoneNumber)
	}
	if input.Email != nil {
		// '' en el patch significa quitar el email (columna nullable)
		if *input.Email == "" {
			setClauses = append(setClauses, "email = NULL")
		} else {
			add("email", *input.Email)
		}
	}
	if input.FirstName != nil {
		add("first_name", nullIfEmpty(*input.FirstName))
	}
	if input.LastName != nil {
		add("last_name", nullIfEmpty(*input.LastName))
	}
	if input.PictureURL != nil {
		add("picture_url", nullIfEmpty(*input.PictureURL))
	}

	query := fmt.Sprintf(
		"UPDATE user_profiles SET %s WHERE id = $1 RETURNING %s",
		strings.Join(setClauses, ", "), profileColumns,
	)

	p, err := scanProfile(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("pg: update profile: %w", err)
	}
	return p, nil
}

// nullIfEmpty convierte "" en NULL para columnas opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}
