// Package session turns a persistence unit into sessions that load, create
// and write records.
//
// A Factory owns the storage connection and the table catalog of one unit.
// Sessions opened from it bind row delegates to records. Closing a session
// releases every delegate it created; a delegate whose record becomes
// unreachable first is released by the record's cleanup.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/semaphore"

	"github.com/leapstack-labs/leaprecord/internal/catalog"
	"github.com/leapstack-labs/leaprecord/internal/config"
	"github.com/leapstack-labs/leaprecord/pkg/adapter"
)

// Factory creates sessions for one persistence unit.
type Factory struct {
	id       string
	unit     string
	adapter  adapter.Adapter
	catalog  *catalog.Catalog
	sessions *semaphore.Weighted
	logger   *slog.Logger
	closed   atomic.Bool
}

// NewFactory validates unit, connects to its storage and applies its
// migrations. A unit without a connectString fails with
// *config.MissingConnectionEndpointError.
// If logger is nil, a discard logger is used.
func NewFactory(ctx context.Context, unit *config.Unit, logger *slog.Logger) (*Factory, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if unit == nil {
		return nil, fmt.Errorf("persistence unit is nil")
	}

	cfg, err := unit.AdapterConfig()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger = logger.With(slog.String("unit", unit.Name), slog.String("factory", id))

	adp, err := adapter.NewAdapter(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := connect(ctx, adp, cfg, unit, logger); err != nil {
		return nil, err
	}

	if unit.MigrationsDir != "" {
		if err := migrate(ctx, adp, unit.MigrationsDir, logger); err != nil {
			_ = adp.Close()
			return nil, err
		}
	}

	logger.Info("session factory ready", slog.String("adapter", adp.DialectName()))
	return newFactory(id, unit, adp, logger), nil
}

func newFactory(id string, unit *config.Unit, adp adapter.Adapter, logger *slog.Logger) *Factory {
	f := &Factory{
		id:      id,
		unit:    unit.Name,
		adapter: adp,
		catalog: catalog.New(adp, logger),
		logger:  logger,
	}
	if unit.MaxSessions > 0 {
		f.sessions = semaphore.NewWeighted(int64(unit.MaxSessions))
	}
	return f
}

// connect opens the adapter, retrying up to unit.ConnectRetries times with
// unit.ConnectDelay between attempts. The whole sequence is bounded by
// unit.ConnectTimeout when set.
func connect(ctx context.Context, adp adapter.Adapter, cfg adapter.Config, unit *config.Unit, logger *slog.Logger) error {
	if unit.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, unit.ConnectTimeout)
		defer cancel()
	}

	delay := unit.ConnectDelay
	if delay <= 0 {
		delay = time.Millisecond
	}
	backoff := retry.WithMaxRetries(uint64(unit.ConnectRetries), retry.NewConstant(delay))

	var attempt int
	var lastErr error
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := adp.Connect(ctx, cfg); err != nil {
			lastErr = err
			logger.Warn("connect attempt failed",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if lastErr != nil && !errors.Is(err, lastErr) {
		err = errors.Join(lastErr, err)
	}
	return fmt.Errorf("failed to connect persistence unit %q after %d attempts: %w", unit.Name, attempt, err)
}

// ID returns the factory's unique id.
func (f *Factory) ID() string {
	return f.id
}

// Unit returns the persistence unit name.
func (f *Factory) Unit() string {
	return f.unit
}

// Adapter returns the storage adapter.
func (f *Factory) Adapter() adapter.Adapter {
	return f.adapter
}

// Catalog returns the table catalog shared by the factory's sessions.
func (f *Factory) Catalog() *catalog.Catalog {
	return f.catalog
}

// Open returns a new session. When max_sessions sessions are open, Open
// waits for one to close or for ctx to be done.
func (f *Factory) Open(ctx context.Context) (*Session, error) {
	if f.closed.Load() {
		return nil, ErrFactoryClosed
	}
	if f.sessions != nil {
		if err := f.sessions.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("failed to open session: %w", err)
		}
	}
	s := newSession(f)
	s.logger.Debug("session opened")
	return s, nil
}

// Close closes the storage connection. Sessions still open fail on their
// next storage access; their delegates can still be released.
func (f *Factory) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	f.logger.Debug("closing session factory")
	return f.adapter.Close()
}

func (f *Factory) releaseSlot() {
	if f.sessions != nil {
		f.sessions.Release(1)
	}
}
