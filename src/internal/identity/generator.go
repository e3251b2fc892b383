// Package identity assigns ids to items created without one.
package identity

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chuckhq/chuck-hq/src/internal/config"
)

// Generator produces a fresh id. taken reports ids already present in the
// target collection; a generator never returns one of them.
type Generator interface {
	Next(taken func(id string) bool) string
}

// New returns the generator for an id format from the configuration.
func New(format string) (Generator, error) {
	switch format {
	case "", config.IDFormatTimestamp:
		return NewTimestampGenerator(time.Now), nil
	case config.IDFormatUUID:
		return UUIDGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown id format: %s", format)
	}
}

// TimestampGenerator issues decimal Unix milliseconds. Ids are strictly
// increasing within a process even when the clock stalls or steps back.
type TimestampGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func NewTimestampGenerator(now func() time.Time) *TimestampGenerator {
	return &TimestampGenerator{now: now}
}

func (g *TimestampGenerator) Next(taken func(id string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	for taken != nil && taken(strconv.FormatInt(ms, 10)) {
		ms++
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

// UUIDGenerator issues time-ordered UUIDv7 strings.
type UUIDGenerator struct{}

func (UUIDGenerator) Next(taken func(id string) bool) string {
	for {
		var id string
		if u, err := uuid.NewV7(); err == nil {
			id = u.String()
		} else {
			id = uuid.NewString()
		}
		if taken == nil || !taken(id) {
			return id
		}
	}
}
