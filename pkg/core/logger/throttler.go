package logger

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultThrottleInterval is used when NewLogThrottler gets a zero interval.
const DefaultThrottleInterval = 5 * time.Minute

// LogThrottler downgrades repeated warnings to debug. Each key gets one WARN
// per interval.
type LogThrottler struct {
	log      *zap.Logger
	limiters *xsync.MapOf[string, *rate.Limiter]
	interval time.Duration
}

// NewLogThrottler creates a throttler writing to log.
func NewLogThrottler(log *zap.Logger, interval time.Duration) *LogThrottler {
	if interval == 0 {
		interval = DefaultThrottleInterval
	}
	return &LogThrottler{
		log:      log,
		limiters: xsync.NewMapOf[string, *rate.Limiter](),
		interval: interval,
	}
}

// Warn logs as WARN once per interval per key, DEBUG otherwise.
func (t *LogThrottler) Warn(key string, msg string, fields ...zap.Field) {
	limiter, _ := t.limiters.LoadOrCompute(key, func() *rate.Limiter {
		return rate.NewLimiter(rate.Every(t.interval), 1)
	})
	if limiter.Allow() {
		t.log.Warn(msg, fields...)
		return
	}
	t.log.Debug(msg, fields...)
}
