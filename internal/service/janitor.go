package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionJanitor periodically drops quiz sessions that have been idle longer than ttl.
type SessionJanitor struct {
	store  IdleSessionStore
	spec   string
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewSessionJanitor(store IdleSessionStore, spec string, ttl time.Duration, logger *zap.Logger) *SessionJanitor {
	return &SessionJanitor{
		store:  store,
		spec:   spec,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Start runs the sweep on the cron schedule until ctx is done.
func (j *SessionJanitor) Start(ctx context.Context) {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(j.spec, j.Sweep)
	if err != nil {
		j.logger.Error("failed to add session sweep job", zap.String("spec", j.spec), zap.Error(err))
		return
	}

	c.Start()
	j.logger.Info("session janitor started", zap.String("spec", j.spec), zap.Duration("ttl", j.ttl))

	<-ctx.Done()

	<-c.Stop().Done()
	j.logger.Info("session janitor stopped")
}

// Sweep evicts sessions unused since now - ttl.
func (j *SessionJanitor) Sweep() {
	evicted := j.store.EvictIdle(j.now().Add(-j.ttl))
	if evicted > 0 {
		j.logger.Info("evicted idle quiz sessions", zap.Int("count", evicted))
	}
}
