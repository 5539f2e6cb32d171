package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job периодическая задача
type Job func(ctx context.Context) error

// Scheduler управляет выполнением задач по расписанию
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	jobs    map[string]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler создает новый планировщик; timeout ограничивает одно выполнение
func NewScheduler(timeout time.Duration, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		timeout: timeout,
		logger:  logger,
		jobs:    make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add регистрирует задачу по cron-выражению
func (s *Scheduler) Add(name, expr string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q is already registered", name)
	}

	id, err := s.cron.AddFunc(expr, func() {
		s.execute(name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %q to cron: %w", name, err)
	}
	s.jobs[name] = id

	s.logger.Info("Added job to cron",
		zap.String("job", name),
		zap.String("cron_expression", expr))
	return nil
}

// RunNow выполняет зарегистрированную задачу немедленно
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	id, exists := s.jobs[name]
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("job %q is not registered", name)
	}

	s.cron.Entry(id).WrappedJob.Run()
	return nil
}

// execute выполняет задачу с таймаутом
func (s *Scheduler) execute(name string, job Job) {
	s.logger.Info("Executing scheduled job", zap.String("job", name))

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("Scheduled job failed",
			zap.String("job", name),
			zap.Error(err))
		return
	}

	s.logger.Info("Scheduled job completed",
		zap.String("job", name),
		zap.Duration("duration", time.Since(started)))
}

// Start запускает планировщик
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started", zap.Int("jobs_count", len(s.jobs)))
	return nil
}

// Stop останавливает планировщик и ждет выполняющиеся задачи
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	<-s.cron.Stop().Done()
	s.running = false

	s.logger.Info("Scheduler stopped")
}

// GetStatus возвращает статус планировщика
func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make(map[string]time.Time, len(s.jobs))
	for name, id := range s.jobs {
		jobs[name] = s.cron.Entry(id).Next
	}

	return map[string]interface{}{
		"running": s.running,
		"jobs":    jobs,
	}
}
