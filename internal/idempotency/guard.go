// Package idempotency implementa el guard de deduplicación de callbacks.
//
// Los providers que entregan el resultado por callback (Truecaller) pueden
// reintentar con el mismo requestId. El guard marca cada requestId procesado
// con un TTL corto; un segundo callback dentro de la ventana se reconoce y
// se responde sin volver a ejecutar el login.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/flattr-io/auth-svc/internal/cache"
	"github.com/flattr-io/auth-svc/internal/observability/logger"
)

const keyPrefix = "callback_processed:"

// Guard deduplica callbacks por requestId sobre un cache.Client.
type Guard struct {
	cache cache.Client
	ttl   time.Duration
}

// New crea un Guard. ttl define la ventana de deduplicación.
func New(c cache.Client, ttl time.Duration) *Guard {
	return &Guard{cache: c, ttl: ttl}
}

// AlreadyProcessed indica si el requestId ya fue procesado dentro de la
// ventana. Un error del cache se trata como "no procesado": preferimos un
// reintento de login a rechazar un callback legítimo.
func (g *Guard) AlreadyProcessed(ctx context.Context, requestID string) bool {
	if requestID == "" {
		return false
	}
	_, err := g.cache.Get(ctx, keyPrefix+requestID)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrNotFound) {
		logger.From(ctx).Warn("idempotency: fallo al consultar cache",
			logger.Component("idempotency"),
			logger.Key(requestID),
			logger.Err(err),
		)
	}
	return false
}

// MarkProcessed registra el requestId como procesado.
// Se llama SOLO después de completar el login con éxito: un intento fallido
// debe poder reintentarse con el mismo requestId.
func (g *Guard) MarkProcessed(ctx context.Context, requestID string) {
	if requestID == "" {
		return
	}
	if err := g.cache.Set(ctx, keyPrefix+requestID, "1", g.ttl); err != nil {
		logger.From(ctx).Warn("idempotency: fallo al marcar requestId",
			logger.Component("idempotency"),
			logger.Key(requestID),
			logger.Err(err),
		)
	}
}
