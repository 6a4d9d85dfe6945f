package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leaprecord/internal/catalog"
	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/record"
)

// Entity is a record type that maps to a table. Any struct embedding
// record.Record and declaring Table satisfies it.
type Entity interface {
	Table() (string, bool)
	Bind(d record.Delegate)
	Delegate() (record.Delegate, error)
}

// Session loads and writes records for one unit of work. A session is used
// by one goroutine at a time.
type Session struct {
	id      string
	factory *Factory
	logger  *slog.Logger

	mu        sync.Mutex
	delegates map[*rowDelegate]struct{}
	closed    bool
}

func newSession(f *Factory) *Session {
	id := uuid.NewString()
	return &Session{
		id:        id,
		factory:   f,
		logger:    f.logger.With(slog.String("session", id)),
		delegates: make(map[*rowDelegate]struct{}),
	}
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// Live returns the number of delegates created by the session and not yet released.
func (s *Session) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delegates)
}

// Find loads the row with the given primary key and binds it to rec.
// Found reports FoundFalse when no row matched; the key columns then hold
// key so that the record can be persisted as a new row.
func (s *Session) Find(ctx context.Context, rec Entity, key ...any) error {
	tbl, err := s.table(ctx, rec)
	if err != nil {
		return err
	}
	if len(tbl.Key) == 0 || len(key) != len(tbl.Key) {
		return &KeyError{Table: tbl.Name, Want: len(tbl.Key), Got: len(key)}
	}

	args := make([]any, len(key))
	for i, ord := range tbl.Key {
		v, err := tbl.Columns[ord].Coerce(key[i])
		if err != nil {
			return err
		}
		args[i] = v
	}

	stmts := statements{adp: s.factory.adapter, table: tbl}
	rows, err := s.factory.adapter.Query(ctx, stmts.selectByKey(), args...)
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", tbl.Name, err)
	}
	defer func() { _ = rows.Close() }()

	d := newRowDelegate(s, tbl)
	if rows.Next() {
		raw := make([]any, len(tbl.Columns))
		dest := make([]any, len(raw))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("failed to scan %s: %w", tbl.Name, err)
		}
		conv, _ := s.factory.adapter.(adapter.ValueConverter)
		for i, col := range tbl.Columns {
			if conv != nil {
				raw[i] = conv.ConvertValue(raw[i])
			}
			v, err := col.FromDriver(raw[i])
			if err != nil {
				return err
			}
			d.values[i] = v
		}
		d.snapshotKey()
		d.setFound(record.FoundTrue)
	} else {
		for i, ord := range tbl.Key {
			d.values[ord] = args[i]
			d.dirty.set(ord)
		}
		d.setFound(record.FoundFalse)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to find %s: %w", tbl.Name, err)
	}

	return s.bind(rec, d)
}

// NewInstance binds rec to an empty row of its table. Found is unknown until
// the record is persisted.
func (s *Session) NewInstance(ctx context.Context, rec Entity) error {
	tbl, err := s.table(ctx, rec)
	if err != nil {
		return err
	}
	return s.bind(rec, newRowDelegate(s, tbl))
}

// Persist inserts the columns that were set on rec as a new row.
func (s *Session) Persist(ctx context.Context, rec Entity) error {
	d, err := s.delegateOf(rec, "persist")
	if err != nil {
		return err
	}

	var cols []int
	var args []any
	for i := range d.table.Columns {
		if d.dirty.has(i) {
			cols = append(cols, i)
			args = append(args, d.values[i])
		}
	}
	if len(cols) == 0 {
		return fmt.Errorf("persist %s: no columns are set", d.table.Name)
	}

	stmts := statements{adp: s.factory.adapter, table: d.table}
	if _, err := s.factory.adapter.Exec(ctx, stmts.insert(cols), args...); err != nil {
		return fmt.Errorf("failed to persist %s: %w", d.table.Name, err)
	}

	d.dirty.clear()
	d.snapshotKey()
	d.setFound(record.FoundTrue)
	s.logger.Debug("persisted row", slog.String("table", d.table.Qualified()), slog.Int("columns", len(cols)))
	return nil
}

// Update writes the columns changed since rec was loaded or persisted.
// Nothing is written when no column changed.
func (s *Session) Update(ctx context.Context, rec Entity) error {
	d, err := s.delegateOf(rec, "update")
	if err != nil {
		return err
	}
	if d.dirty.empty() {
		return nil
	}

	key, err := d.keyValues()
	if err != nil {
		return err
	}

	var cols []int
	var args []any
	for i := range d.table.Columns {
		if d.dirty.has(i) {
			cols = append(cols, i)
			args = append(args, d.values[i])
		}
	}
	args = append(args, key...)

	stmts := statements{adp: s.factory.adapter, table: d.table}
	n, err := s.factory.adapter.Exec(ctx, stmts.update(cols), args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", d.table.Name, err)
	}
	if n == 0 {
		d.setFound(record.FoundFalse)
		return fmt.Errorf("update %s: %w", d.table.Name, ErrRowNotFound)
	}

	d.dirty.clear()
	d.snapshotKey()
	d.setFound(record.FoundTrue)
	s.logger.Debug("updated row", slog.String("table", d.table.Qualified()), slog.Int("columns", len(cols)))
	return nil
}

// Delete removes the row rec is stored under.
func (s *Session) Delete(ctx context.Context, rec Entity) error {
	d, err := s.delegateOf(rec, "delete")
	if err != nil {
		return err
	}

	key, err := d.keyValues()
	if err != nil {
		return err
	}

	stmts := statements{adp: s.factory.adapter, table: d.table}
	n, err := s.factory.adapter.Exec(ctx, stmts.deleteByKey(), key...)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", d.table.Name, err)
	}

	d.key = nil
	d.setFound(record.FoundFalse)
	if n == 0 {
		return fmt.Errorf("delete %s: %w", d.table.Name, ErrRowNotFound)
	}
	s.logger.Debug("deleted row", slog.String("table", d.table.Qualified()))
	return nil
}

// Close releases every delegate the session created and frees its slot in
// the factory. Repeated calls return nil.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	live := make([]*rowDelegate, 0, len(s.delegates))
	for d := range s.delegates {
		live = append(live, d)
	}
	s.mu.Unlock()

	var errs []error
	for _, d := range live {
		if err := d.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	s.factory.releaseSlot()
	s.logger.Debug("session closed", slog.Int("released", len(live)))
	return errors.Join(errs...)
}

func (s *Session) table(ctx context.Context, rec Entity) (*catalog.Table, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	name, ok := rec.Table()
	if !ok || name == "" {
		return nil, fmt.Errorf("%T: %w", rec, ErrNoTable)
	}
	return s.factory.catalog.Table(ctx, name)
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// bind registers d with the session and binds it to rec. A delegate rec was
// bound to before stays live until it is released or the session closes.
func (s *Session) bind(rec Entity, d *rowDelegate) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.delegates[d] = struct{}{}
	s.mu.Unlock()

	rec.Bind(d)
	s.logger.Debug("delegate bound",
		slog.String("table", d.table.Qualified()),
		slog.String("found", d.found.String()))
	return nil
}

func (s *Session) detach(d *rowDelegate) {
	s.mu.Lock()
	delete(s.delegates, d)
	s.mu.Unlock()
}

func (s *Session) delegateOf(rec Entity, op string) (*rowDelegate, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	bound, err := rec.Delegate()
	if err != nil {
		return nil, err
	}
	d, ok := bound.(*rowDelegate)
	if !ok || d.session != s {
		return nil, ErrForeignDelegate
	}
	if d.released() {
		return nil, &record.StaleSessionError{Table: d.table.Name, Op: op}
	}
	return d, nil
}
