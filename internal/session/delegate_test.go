package session

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprecord/pkg/record"
)

func detachedSession() *Session {
	return &Session{
		logger:    slog.New(slog.DiscardHandler),
		delegates: make(map[*rowDelegate]struct{}),
	}
}

func TestBitset(t *testing.T) {
	b := newBitset(130)
	assert.Len(t, b, 3)
	assert.True(t, b.empty())

	for _, i := range []int{0, 63, 64, 129} {
		b.set(i)
		assert.True(t, b.has(i), i)
	}
	assert.False(t, b.has(1))
	assert.False(t, b.has(128))

	b.clear()
	assert.True(t, b.empty())
}

func TestRowDelegate(t *testing.T) {
	s := detachedSession()
	d := newRowDelegate(s, orderLineTable())
	s.delegates[d] = struct{}{}

	require.NoError(t, d.Set(3, 2))
	v, err := d.Get(3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	assert.True(t, d.dirty.has(3))

	_, err = d.Get(4)
	var colErr *record.ColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "order_line", colErr.Table)
	assert.Equal(t, 4, colErr.Count)

	assert.ErrorIs(t, d.Set(2, 99), record.ErrTypeMismatch)
	assert.False(t, d.dirty.has(2), "rejected values are not marked")

	cols, err := d.Columns()
	require.NoError(t, err)
	cols[0].Name = "mutated"
	assert.Equal(t, "order_id", d.table.Columns[0].Name)

	assert.Equal(t, record.FoundUnknown, d.Found())
	d.setFound(record.FoundTrue)
	d.setFound(record.FoundUnknown)
	assert.Equal(t, record.FoundTrue, d.Found(), "found never reverts to unknown")
	d.setFound(record.FoundFalse)
	assert.Equal(t, record.FoundFalse, d.Found())

	require.NoError(t, d.Release())
	require.NoError(t, d.Release())
	assert.Empty(t, s.delegates)

	_, err = d.Get(3)
	assert.ErrorIs(t, err, record.ErrStaleSession)
	assert.ErrorIs(t, d.Set(3, 1), record.ErrStaleSession)
}

func TestRowDelegate_KeyValues(t *testing.T) {
	d := newRowDelegate(detachedSession(), orderLineTable())

	_, err := d.keyValues()
	var keyErr *KeyError
	require.ErrorAs(t, err, &keyErr)
	assert.Equal(t, "order_id", keyErr.Column)

	require.NoError(t, d.Set(0, 10))
	require.NoError(t, d.Set(1, 1))
	key, err := d.keyValues()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(10), int64(1)}, key)

	d.snapshotKey()
	require.NoError(t, d.Set(1, 2))
	key, err = d.keyValues()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(10), int64(1)}, key, "the stored key wins over edits")
}
