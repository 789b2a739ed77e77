package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"partpulse/internal/infra/persistence/memory"
	"partpulse/internal/lock"
	"partpulse/pkg/domain"
)

// Service exposes the transactional procurement operations: the request
// lifecycle, the approval ledger, quotes, the catalogue and read projections.
type Service struct {
	store  domain.PersistentStore
	ledger *Ledger
	serviceOptions
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	options := defaultServiceOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Service{
		store:          store,
		ledger:         &Ledger{store: store},
		serviceOptions: options,
	}
}

// NewInMemoryService creates a service and in-memory store. A nil engine
// installs the default rule set.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// Ledger returns the approval ledger backed by the same store.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// Logger returns the service logger.
func (s *Service) Logger() *zap.Logger {
	return s.logger
}

// run executes fn in a store transaction and reports the outcome to the
// logger and metrics recorder.
func (s *Service) run(ctx context.Context, operation string, fields []zap.Field, fn func(tx domain.Transaction) error) (Result, error) {
	started := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	s.observe(ctx, operation, started, fields, err)
	return res, err
}

// view executes fn against a read snapshot.
func (s *Service) view(ctx context.Context, operation string, fn func(v domain.TransactionView) error) error {
	started := time.Now()
	err := s.store.View(ctx, fn)
	s.metrics.Observe(ctx, operation, err == nil, time.Since(started))
	return err
}

func (s *Service) observe(ctx context.Context, operation string, started time.Time, fields []zap.Field, err error) {
	s.metrics.Observe(ctx, operation, err == nil, time.Since(started))
	fields = append(fields, zap.String("operation", operation), zap.Duration("duration", time.Since(started)))
	switch {
	case err == nil:
		s.logger.Info(operation, fields...)
	case isCallerError(err):
		s.logger.Warn(operation+" refused", append(fields, zap.Error(err))...)
	default:
		s.logger.Error(operation+" failed", append(fields, zap.Error(err))...)
	}
}

// isCallerError reports errors caused by the request rather than the system.
func isCallerError(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		domain.ErrMissingComments,
		domain.ErrNotFound,
		domain.ErrAlreadyTerminal,
		domain.ErrInvalidTransition,
		domain.ErrDuplicateApproval,
		domain.ErrConcurrentModification,
		domain.ErrNoItems,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// withEntityLock runs fn while holding the try-once lock for key. Failing
// to obtain it means another mutation is in flight.
func (s *Service) withEntityLock(ctx context.Context, key string, fn func() error) error {
	held, err := s.locker.Obtain(ctx, key)
	if errors.Is(err, lock.ErrNotObtained) {
		return fmt.Errorf("%w: %s is being modified", domain.ErrConcurrentModification, key)
	}
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer func() {
		if rerr := held.Release(context.WithoutCancel(ctx)); rerr != nil {
			s.logger.Warn("release lock", zap.String("key", key), zap.Error(rerr))
		}
	}()
	return fn()
}
