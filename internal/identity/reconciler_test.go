package identity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flattr-io/auth-svc/internal/store/memory"
)

func phoneIdentity(phone string) Normalized {
	return Normalized{Key: Key{Kind: KindPhone, Value: phone}}
}

func TestResolve_CreatesProfileOnFirstLogin(t *testing.T) {
	ctx := context.Background()
	r := NewReconciler(memory.New())

	n := Normalized{
		Key:       Key{Kind: KindPhone, Value: "5491122334455"},
		FirstName: "Ana",
		LastName:  "García",
		Email:     "ana@example.com",
	}
	p, created, err := r.Resolve(ctx, n)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "5491122334455", p.PhoneNumber)
	assert.Equal(t, "Ana", p.FirstName)
	require.NotNil(t, p.Email)
	assert.Equal(t, "ana@example.com", *p.Email)
}

func TestResolve_SameKeySameProfile(t *testing.T) {
	ctx := context.Background()
	r := NewReconciler(memory.New())

	first, created, err := r.Resolve(ctx, phoneIdentity("5491122334455"))
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := r.Resolve(ctx, phoneIdentity("5491122334455"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestResolve_EmailOnlySignupHasEmptyPhone(t *testing.T) {
	ctx := context.Background()
	r := NewReconciler(memory.New())

	n := Normalized{
		Key:       Key{Kind: KindEmail, Value: "ana@example.com"},
		FirstName: "Ana",
	}
	p, created, err := r.Resolve(ctx, n)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "", p.PhoneNumber)
	require.NotNil(t, p.Email)
	assert.Equal(t, "ana@example.com", *p.Email)
}

func TestResolve_FillIfEmptyNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	r := NewReconciler(memory.New())

	// Primer login trae nombre.
	_, _, err := r.Resolve(ctx, Normalized{
		Key:       Key{Kind: KindPhone, Value: "111"},
		FirstName: "Ana",
	})
	require.NoError(t, err)

	// Segundo login por la misma clave trae otro nombre y datos nuevos.
	p, created, err := r.Resolve(ctx, Normalized{
		Key:        Key{Kind: KindPhone, Value: "111"},
		FirstName:  "Otra",
		LastName:   "García",
		Email:      "ana@example.com",
		PictureURL: "https://cdn.example.com/ana.jpg",
	})
	require.NoError(t, err)
	assert.False(t, created)
	// Lo existente no se pisa, lo vacío se completa.
	assert.Equal(t, "Ana", p.FirstName)
	assert.Equal(t, "García", p.LastName)
	require.NotNil(t, p.Email)
	assert.Equal(t, "ana@example.com", *p.Email)
	assert.Equal(t, "https://cdn.example.com/ana.jpg", p.PictureURL)
}

func TestResolve_PhoneLoginReusesEmailProfileData(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	r := NewReconciler(store)

	// Signup por LinkedIn (solo email).
	emailProfile, _, err := r.Resolve(ctx, Normalized{
		Key:       Key{Kind: KindEmail, Value: "ana@example.com"},
		FirstName: "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, "", emailProfile.PhoneNumber)

	// Login por Truecaller que trae el mismo email: la clave es el
	// teléfono, que no existe → perfil nuevo. La reconciliación es por
	// clave única, no por email secundario.
	phoneProfile, created, err := r.Resolve(ctx, Normalized{
		Key:   Key{Kind: KindPhone, Value: "5491122334455"},
		Email: "otra@example.com",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, emailProfile.ID, phoneProfile.ID)
}

func TestResolve_FillConflictDoesNotFailLogin(t *testing.T) {
	ctx := context.Background()
	r := NewReconciler(memory.New())

	// ana@example.com ya pertenece a un perfil solo-email.
	_, _, err := r.Resolve(ctx, Normalized{Key: Key{Kind: KindEmail, Value: "ana@example.com"}})
	require.NoError(t, err)

	// Perfil por teléfono sin email.
	_, _, err = r.Resolve(ctx, phoneIdentity("111"))
	require.NoError(t, err)

	// Re-login por teléfono trayendo el email ajeno: el fill choca con la
	// constraint única pero el login sale igual.
	p, created, err := r.Resolve(ctx, Normalized{
		Key:   Key{Kind: KindPhone, Value: "111"},
		Email: "ana@example.com",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, p.Email)
}

func TestResolve_InvalidKey(t *testing.T) {
	ctx := context.Background()
	r := NewReconciler(memory.New())

	_, _, err := r.Resolve(ctx, Normalized{})
	assert.ErrorIs(t, err, ErrKeyInvalid)

	_, _, err = r.Resolve(ctx, Normalized{Key: Key{Kind: "otra", Value: "x"}})
	assert.ErrorIs(t, err, ErrKeyInvalid)
}

func TestResolve_ConcurrentSameKeyCreatesOne(t *testing.T) {
	ctx := context.Background()
	r := NewReconciler(memory.New())

	const goroutines = 16
	ids := make([]string, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			p, _, err := r.Resolve(ctx, phoneIdentity("5491122334455"))
			require.NoError(t, err)
			ids[i] = p.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
}
