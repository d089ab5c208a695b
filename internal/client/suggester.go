package client

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultSuggestDelay is the quiet interval after the last keystroke before
// suggestions are fetched.
const DefaultSuggestDelay = 300 * time.Millisecond

// FetchFunc retrieves suggestions for query.
type FetchFunc func(ctx context.Context, query string) ([]weather.Suggestion, error)

// DeliverFunc receives the result for the most recent query.
type DeliverFunc func(query string, suggestions []weather.Suggestion, err error)

// Suggester fetches city suggestions once typing pauses. Every call to Type
// supersedes the previous one: its pending fetch never starts, an in-flight
// fetch is canceled, and only the latest generation's result is delivered.
type Suggester struct {
	debounced func(f func())
	fetch     FetchFunc
	deliver   DeliverFunc

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc

	deliverMu sync.Mutex
}

func NewSuggester(delay time.Duration, fetch FetchFunc, deliver DeliverFunc) *Suggester {
	if delay <= 0 {
		delay = DefaultSuggestDelay
	}
	return &Suggester{
		debounced: debounce.New(delay),
		fetch:     fetch,
		deliver:   deliver,
	}
}

// Type records the current input. Queries shorter than the minimum length
// deliver an empty result immediately without a fetch.
func (s *Suggester) Type(query string) {
	gen := s.supersede()

	if len([]rune(query)) < weather.MinSuggestQueryLen {
		s.emit(gen, query, []weather.Suggestion{}, nil)
		return
	}
	s.debounced(func() { s.run(gen, query) })
}

// Stop discards any pending or in-flight fetch.
func (s *Suggester) Stop() {
	s.supersede()
}

func (s *Suggester) supersede() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return s.gen
}

func (s *Suggester) run(gen uint64, query string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	out, err := s.fetch(ctx, query)
	s.emit(gen, query, out, err)
}

func (s *Suggester) emit(gen uint64, query string, out []weather.Suggestion, err error) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	current := gen == s.gen
	s.mu.Unlock()
	if !current {
		return
	}
	s.deliver(query, out, err)
}
