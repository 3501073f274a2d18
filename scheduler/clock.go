package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Clock fires the engine at a fixed interval. Ticks are anchored to elapsed
// time, not to item timestamps; an item due between ticks waits for the next
// one.
type Clock struct {
	engine   *Engine
	interval time.Duration
	cron     *cron.Cron
}

func NewClock(engine *Engine, interval time.Duration) *Clock {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Clock{engine: engine, interval: interval}
}

// Start schedules the recurring tick and returns immediately. The cron chain
// skips a firing outright when the previous tick is still running.
func (c *Clock) Start(ctx context.Context) error {
	if c.cron != nil {
		return fmt.Errorf("scheduler clock already started")
	}
	c.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{})))
	spec := fmt.Sprintf("@every %s", c.interval)
	if _, err := c.cron.AddFunc(spec, func() {
		c.engine.Tick(ctx)
	}); err != nil {
		c.cron = nil
		return fmt.Errorf("failed to schedule tick: %w", err)
	}
	c.cron.Start()
	logrus.Infof("[SCHEDULER] Clock started, ticking every %s", c.interval)
	return nil
}

// Stop halts the clock and waits for an in-flight tick to finish.
func (c *Clock) Stop() {
	if c.cron == nil {
		return
	}
	<-c.cron.Stop().Done()
	c.cron = nil
	logrus.Info("[SCHEDULER] Clock stopped")
}

// cronLogger routes cron's own messages through logrus.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logrus.Debugf("[SCHEDULER] cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logrus.WithError(err).Errorf("[SCHEDULER] cron: %s %v", msg, keysAndValues)
}
