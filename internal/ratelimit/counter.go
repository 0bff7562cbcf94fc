package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"autoprice/internal/domain"
)

const dateLayout = "2006-01-02"

// Option configures a DailyCounter.
type Option func(*DailyCounter)

// WithClock replaces the wall clock used to detect the UTC date change.
func WithClock(now func() time.Time) Option {
	return func(c *DailyCounter) {
		c.now = now
	}
}

// DailyCounter limits estimates per UTC day. It is in-memory and process-local;
// the count is lost on restart.
type DailyCounter struct {
	mu     sync.Mutex
	limit  int
	used   int
	date   string
	now    func() time.Time
	logger *zap.Logger
}

// NewDailyCounter creates a counter allowing limit requests per UTC day.
func NewDailyCounter(limit int, logger *zap.Logger, opts ...Option) *DailyCounter {
	c := &DailyCounter{
		limit:  limit,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	logger.Info("daily counter initialized", zap.Int("limit_per_day", limit))
	return c
}

// resetIfNewDay must be called with mu held.
func (c *DailyCounter) resetIfNewDay() {
	today := c.now().UTC().Format(dateLayout)
	if c.date == today {
		return
	}
	if c.date != "" {
		c.logger.Info("new day detected, resetting counter",
			zap.String("date", today),
			zap.Int("previous_count", c.used))
	}
	c.used = 0
	c.date = today
}

// Allowed reports whether another request fits in today's budget.
func (c *DailyCounter) Allowed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetIfNewDay()
	return c.used < c.limit
}

// Increment records one request.
func (c *DailyCounter) Increment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetIfNewDay()
	c.used++
	c.logger.Debug("request counted", zap.Int("used", c.used), zap.Int("limit", c.limit))
}

// Remaining returns how many requests are left today.
func (c *DailyCounter) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetIfNewDay()
	return c.remaining()
}

func (c *DailyCounter) remaining() int {
	return max(0, c.limit-c.used)
}

// Acquire checks and counts a request in one step. Concurrent callers can
// never push the count past the limit.
func (c *DailyCounter) Acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetIfNewDay()
	if c.used >= c.limit {
		return domain.ErrDailyLimitExceeded
	}
	c.used++
	c.logger.Debug("request counted", zap.Int("used", c.used), zap.Int("limit", c.limit))
	return nil
}

// Status returns a snapshot of today's usage.
func (c *DailyCounter) Status() domain.UsageStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetIfNewDay()
	return domain.UsageStatus{
		Limit:     c.limit,
		Used:      c.used,
		Remaining: c.remaining(),
		Date:      c.date,
	}
}
