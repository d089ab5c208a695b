package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

// Warmer refreshes cached weather for a city without recording a search.
type Warmer interface {
	Warm(ctx context.Context, city string) error
}

// Scheduler periodically refreshes the lookup cache for configured cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	warmer    Warmer
	cities    []string
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, warmer Warmer) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		warmer:    warmer,
		cities:    cities,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		log.Info().Msg("scheduler: no warm cities configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce warms every configured city concurrently and returns how many succeeded.
func (s *Scheduler) RunOnce() int {
	log.Debug().Int("cities", len(s.cities)).Msg("scheduler: running cache warm job")

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, city := range s.cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			if err := s.warmer.Warm(ctx, city); err != nil {
				log.Warn().Err(err).Str("city", city).Msg("scheduler: warm failed")
				return
			}
			mu.Lock()
			ok++
			mu.Unlock()
		}(city)
	}
	wg.Wait()

	log.Info().Int("warmed", ok).Int("cities", len(s.cities)).Msg("scheduler: completed cache warm job")
	return ok
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
