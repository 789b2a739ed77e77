package core

import (
	"time"

	"go.uber.org/zap"

	"partpulse/internal/blob"
	"partpulse/internal/lock"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type serviceOptions struct {
	clock         Clock
	logger        *zap.Logger
	metrics       MetricsRecorder
	locker        lock.Locker
	blobs         blob.Store
	presignExpiry time.Duration
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:         ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:        zap.NewNop(),
		metrics:       noopMetrics{},
		locker:        lock.NewLocal(),
		presignExpiry: 15 * time.Minute,
	}
}

// ServiceOption customises a Service.
type ServiceOption func(*serviceOptions)

// WithClock overrides the clock used for decision timestamps.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the operation metrics recorder.
func WithMetrics(metrics MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithLocker replaces the in-process per-request locker, e.g. with lock.Redis.
func WithLocker(locker lock.Locker) ServiceOption {
	return func(o *serviceOptions) {
		if locker != nil {
			o.locker = locker
		}
	}
}

// WithBlobStore enables quote attachments.
func WithBlobStore(store blob.Store) ServiceOption {
	return func(o *serviceOptions) { o.blobs = store }
}

// WithPresignExpiry sets how long attachment URLs stay valid.
func WithPresignExpiry(d time.Duration) ServiceOption {
	return func(o *serviceOptions) {
		if d > 0 {
			o.presignExpiry = d
		}
	}
}
