// Package scheduler runs periodic agent jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/spivot-hq/spivot/backend-go/pkg/logger"
)

const defaultJobTimeout = 10 * time.Minute

// Job is a unit of periodic work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. A job never overlaps with itself.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	log     zerolog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	entries map[string]cron.EntryID
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	l := logger.Component("scheduler")
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{l}))),
		timeout: defaultJobTimeout,
		log:     l,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
}

// Register schedules job under name using a standard five-field spec.
func (s *Scheduler) Register(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	wrapped := cron.NewChain(cron.SkipIfStillRunning(cronLogger{s.log})).Then(cron.FuncJob(func() {
		s.run(name, job)
	}))

	id, err := s.cron.AddJob(spec, wrapped)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	s.entries[name] = id
	s.log.Info().Str("job", name).Str("spec", spec).Msg("Scheduled job")
	return nil
}

// RunNow executes a registered job synchronously, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %q is not registered", name)
	}
	s.cron.Entry(id).Job.Run()
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.Error().Err(err).Str("job", name).Dur("duration", time.Since(start)).Msg("Scheduled job failed")
		return
	}
	s.log.Info().Str("job", name).Dur("duration", time.Since(start)).Msg("Scheduled job completed")
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
