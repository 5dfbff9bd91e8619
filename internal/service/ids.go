package service

import (
	"strconv"
	"sync"
	"time"
)

// idGenerator hands out millisecond-timestamp ids. Two calls in the same
// millisecond get consecutive values, so ids never repeat within a process.
type idGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newIDGenerator(now func() time.Time) *idGenerator {
	return &idGenerator{now: now}
}

func (g *idGenerator) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return prefix + strconv.FormatInt(ms, 10)
}

var defaultIDs = newIDGenerator(time.Now)
