package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Expirer - интерфейс движка, выполняющего переход заявки в Expired.
type Expirer interface {
	ExpireIfSearching(ctx context.Context, requestId string, epoch int) (bool, error)
	ExpireOverdue(ctx context.Context) (int, error)
}

// ExpiryScheduler следит за дедлайнами поиска. Одноразовый таймер - быстрый
// путь; периодическая сверка по хранилищу догоняет заявки, чьи таймеры
// потерялись при рестарте процесса. Оба пути сходятся в одной условной записи,
// поэтому двойное срабатывание безвредно.
type ExpiryScheduler struct {
	engine      Expirer
	logger      *zap.SugaredLogger
	interval    time.Duration
	fireTimeout time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewExpiryScheduler создаёт новый экземпляр ExpiryScheduler.
func NewExpiryScheduler(engine Expirer, logger *zap.SugaredLogger, interval time.Duration) *ExpiryScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpiryScheduler{
		engine:      engine,
		logger:      logger,
		interval:    interval,
		fireTimeout: 5 * time.Second,
		timers:      make(map[string]*time.Timer),
	}
}

// Arm взводит одноразовый таймер дедлайна для эпохи заявки.
// Повторный вызов для той же заявки перевзводит таймер.
func (s *ExpiryScheduler) Arm(requestId string, epoch int, deadline time.Time) {
	delay := time.Until(deadline)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.timers[requestId]; ok {
		existing.Stop()
	}
	s.timers[requestId] = time.AfterFunc(delay, func() {
		s.fire(requestId, epoch)
	})
}

// Run запускает периодическую сверку просроченных заявок до отмены контекста.
func (s *ExpiryScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.stopTimers()
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *ExpiryScheduler) fire(requestId string, epoch int) {
	s.mu.Lock()
	delete(s.timers, requestId)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.fireTimeout)
	defer cancel()

	expired, err := s.engine.ExpireIfSearching(ctx, requestId, epoch)
	if err != nil {
		// Не фатально: сверка доберёт эту заявку на следующем проходе.
		s.logger.Errorw("expiry timer failed", "requestId", requestId, "epoch", epoch, "error", err)
		return
	}
	if expired {
		s.logger.Infow("request expired by timer", "requestId", requestId, "epoch", epoch)
	}
}

func (s *ExpiryScheduler) sweepOnce(ctx context.Context) {
	start := time.Now()
	expiredCount, err := s.engine.ExpireOverdue(ctx)
	if err != nil {
		s.logger.Errorw("expire sweep failed", "error", err)
		return
	}
	if expiredCount > 0 {
		s.logger.Infow("expire sweep",
			"expired", expiredCount,
			"latency_ms", time.Since(start).Milliseconds())
	}
}

func (s *ExpiryScheduler) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for requestId, timer := range s.timers {
		timer.Stop()
		delete(s.timers, requestId)
	}
}
