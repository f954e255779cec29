package numbering

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSequence struct {
	calls int
}

func (s *failingSequence) Next(context.Context, string) (int64, error) {
	s.calls++
	return 0, errors.New("connection refused")
}

type fixedSequence struct {
	value int64
	dates []string
}

func (s *fixedSequence) Next(_ context.Context, date string) (int64, error) {
	s.dates = append(s.dates, date)
	return s.value, nil
}

var numberPattern = regexp.MustCompile(`^TXN-\d{8}-\d{6}-[0-9A-F]{4}$`)

func fixedClock() time.Time {
	return time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
}

func TestGenerator_Format(t *testing.T) {
	g := NewGenerator(&fixedSequence{value: 42}, WithClock(fixedClock), WithEntropy(func() string { return "AB12" }))

	assert.Equal(t, "TXN-20240309-000042-AB12", g.Next(context.Background()))
}

func TestGenerator_SequenceWrapsAtOneMillion(t *testing.T) {
	assert.Equal(t, "TXN-20240309-000007-FFFF", Format("20240309", 1_000_007, "FFFF"))
}

func TestGenerator_UsesUTCDate(t *testing.T) {
	seq := &fixedSequence{value: 1}
	local := time.FixedZone("UTC+5", 5*60*60)
	g := NewGenerator(seq, WithClock(func() time.Time { return fixedClock().In(local) }))

	g.Next(context.Background())
	require.Len(t, seq.dates, 1)
	assert.Equal(t, "20240309", seq.dates[0])
}

func TestGenerator_FallsBackToLocalSequence(t *testing.T) {
	primary := &failingSequence{}
	g := NewGenerator(primary, WithClock(fixedClock))

	first := g.Next(context.Background())
	second := g.Next(context.Background())

	assert.Equal(t, 2, primary.calls)
	assert.Regexp(t, numberPattern, first)
	assert.Contains(t, first, "-000001-")
	assert.Contains(t, second, "-000002-")
}

func TestGenerator_WithoutPrimary(t *testing.T) {
	g := NewGenerator(nil)
	assert.Regexp(t, numberPattern, g.Next(context.Background()))
}

func TestLocalSequence_ConcurrentCallersGetDistinctValues(t *testing.T) {
	seq := NewLocalSequence()

	const n = 200
	values := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := seq.Next(context.Background(), "20240309")
			assert.NoError(t, err)
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool, n)
	for v := range values {
		assert.False(t, seen[v], "duplicate sequence value %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, n)

	next, err := seq.Next(context.Background(), "20240310")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next, "each date has its own counter")
}
