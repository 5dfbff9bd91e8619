// Package persistence is the durability boundary between the in-memory
// stores and the snapshot key-value store. Failures never escape it.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/ByteBlast1/KanFlow/internal/repository"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanflow_persistence_operations_total",
			Help: "Snapshot reads and writes attempted",
		},
		[]string{"op"},
	)
	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanflow_persistence_failures_total",
			Help: "Snapshot reads and writes that failed and were swallowed",
		},
		[]string{"op"},
	)
)

// Keys names the snapshot keys in the store.
type Keys struct {
	BoardPrefix string
	Dashboard   string
}

func (k Keys) Board(boardID string) string {
	return k.BoardPrefix + boardID
}

type Adapter struct {
	store   repository.SnapshotStore
	log     log.FieldLogger
	timeout time.Duration
	codec   sonic.API
}

func NewAdapter(store repository.SnapshotStore, l log.FieldLogger, timeout time.Duration) *Adapter {
	if l == nil {
		l = log.StandardLogger()
	}
	return &Adapter{
		store:   store,
		log:     l,
		timeout: timeout,
		codec:   sonic.ConfigStd,
	}
}

// Write serializes value and stores it under key, replacing whatever was
// there. Errors are logged and dropped; the caller's in-memory state stays
// the source of truth until the next successful write.
func (a *Adapter) Write(ctx context.Context, key string, value any) {
	operationsTotal.WithLabelValues("write").Inc()
	data, err := a.codec.Marshal(value)
	if err != nil {
		failuresTotal.WithLabelValues("write").Inc()
		a.log.WithError(err).WithField("key", key).Error("encode snapshot")
		return
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.store.Set(ctx, key, data); err != nil {
		failuresTotal.WithLabelValues("write").Inc()
		a.log.WithError(err).WithField("key", key).Error("write snapshot")
		return
	}
	a.log.WithField("key", key).WithField("bytes", len(data)).Debug("snapshot written")
}

// Read decodes the value stored under key into out. It reports false when
// the key is missing or the value cannot be decoded, in which case out must
// be ignored by the caller.
func (a *Adapter) Read(ctx context.Context, key string, out any) bool {
	operationsTotal.WithLabelValues("read").Inc()
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	data, err := a.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false
		}
		failuresTotal.WithLabelValues("read").Inc()
		a.log.WithError(err).WithField("key", key).Error("read snapshot")
		return false
	}
	if err := a.codec.Unmarshal(data, out); err != nil {
		failuresTotal.WithLabelValues("read").Inc()
		a.log.WithError(err).WithField("key", key).Error("decode snapshot")
		return false
	}
	return true
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
