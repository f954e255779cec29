// Package numbering issues human-readable receipt numbers of the form
// TXN-YYYYMMDD-NNNNNN-XXXX.
package numbering

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tair/station-pos/pkg/logger"
)

const (
	prefix     = "TXN"
	dateLayout = "20060102"
	seqModulus = 1_000_000
)

// Sequence hands out a monotonically advancing counter per business date.
type Sequence interface {
	Next(ctx context.Context, date string) (int64, error)
}

// LocalSequence is a process-local Sequence. Counters restart with the process.
type LocalSequence struct {
	mu       sync.Mutex
	counters map[string]*atomic.Int64
}

// NewLocalSequence creates a new local sequence
func NewLocalSequence() *LocalSequence {
	return &LocalSequence{counters: make(map[string]*atomic.Int64)}
}

// Next returns the next value for date
func (s *LocalSequence) Next(_ context.Context, date string) (int64, error) {
	s.mu.Lock()
	c, ok := s.counters[date]
	if !ok {
		c = new(atomic.Int64)
		s.counters[date] = c
	}
	s.mu.Unlock()
	return c.Add(1), nil
}

// Generator builds transaction numbers from a primary sequence and falls back
// to a local one when the primary fails.
type Generator struct {
	primary  Sequence
	fallback Sequence
	clock    func() time.Time
	entropy  func() string
}

// Option configures a Generator
type Option func(*Generator)

// WithClock sets the time source for the date component.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) { g.clock = clock }
}

// WithEntropy sets the source of the four-character suffix.
func WithEntropy(entropy func() string) Option {
	return func(g *Generator) { g.entropy = entropy }
}

// NewGenerator creates a generator. A nil primary uses only the local sequence.
func NewGenerator(primary Sequence, opts ...Option) *Generator {
	g := &Generator{
		primary:  primary,
		fallback: NewLocalSequence(),
		clock:    time.Now,
		entropy:  uuidSuffix,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a fresh transaction number. It never fails: sequence errors
// are logged and the local counter is used instead.
func (g *Generator) Next(ctx context.Context) string {
	date := g.clock().UTC().Format(dateLayout)

	var seq int64
	if g.primary != nil {
		n, err := g.primary.Next(ctx, date)
		if err == nil {
			seq = n
		} else {
			logger.Warn(ctx).Err(err).Str("date", date).Msg("Transaction sequence unavailable, using local counter")
		}
	}
	if seq == 0 {
		seq, _ = g.fallback.Next(ctx, date)
	}

	return Format(date, seq, g.entropy())
}

// Format renders the number for a date (YYYYMMDD), a sequence value and a suffix.
func Format(date string, seq int64, suffix string) string {
	return fmt.Sprintf("%s-%s-%06d-%s", prefix, date, seq%seqModulus, suffix)
}

func uuidSuffix() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:4])
}
