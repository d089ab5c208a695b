package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWarmer struct {
	mu     sync.Mutex
	cities []string
	fail   map[string]bool
}

func (w *recordingWarmer) Warm(_ context.Context, city string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cities = append(w.cities, city)
	if w.fail[city] {
		return errors.New("boom")
	}
	return nil
}

func (w *recordingWarmer) seen() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.cities...)
}

func TestRunOnceWarmsEveryCity(t *testing.T) {
	w := &recordingWarmer{fail: map[string]bool{"Atlantis": true}}
	s := New([]string{"London", "Atlantis", "Paris"}, time.Hour, w)

	assert.Equal(t, 2, s.RunOnce())
	assert.ElementsMatch(t, []string{"London", "Atlantis", "Paris"}, w.seen())
}

func TestStartRunsImmediately(t *testing.T) {
	w := &recordingWarmer{}
	s := New([]string{"Oslo"}, time.Hour, w)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return len(w.seen()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStartWithoutCitiesIsNoop(t *testing.T) {
	w := &recordingWarmer{}
	s := New(nil, time.Hour, w)

	require.NoError(t, s.Start())
	s.Stop()
	assert.Empty(t, w.seen())
}
