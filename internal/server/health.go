package server

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ByteBlast1/KanFlow/internal/repository"
)

type storeHealth struct {
	backend string
	store   repository.SnapshotStore
}

// NewStoreHealth reports health for key-value backends that have no pool
// statistics of their own.
func NewStoreHealth(backend string, store repository.SnapshotStore) HealthChecker {
	return &storeHealth{backend: backend, store: store}
}

func (h *storeHealth) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stats := map[string]string{"backend": h.backend}
	if err := h.store.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("store down: %v", err)
		log.WithError(err).WithField("backend", h.backend).Warn("store down")
		return stats
	}
	stats["status"] = "up"
	stats["message"] = "It's healthy"
	return stats
}
