package adapter

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres", "sqlite"},
	}

	msg := err.Error()

	assert.Contains(t, msg, "fake_db", "error should mention the unknown type")
	assert.Contains(t, msg, "sqlite", "error should list the available adapters")
	assert.Contains(t, msg, "connectString", "error should point at the setting to fix")
}

func TestRegister(t *testing.T) {
	Register("test_adapter_internal", func(_ *slog.Logger) Adapter { return nil }, "test_alias_internal")

	assert.True(t, IsRegistered("test_adapter_internal"))
	assert.True(t, IsRegistered("test_alias_internal"), "scheme aliases count as registered")

	factory, ok := Get("test_alias_internal")
	assert.True(t, ok)
	assert.NotNil(t, factory)

	assert.Contains(t, ListAdapters(), "test_adapter_internal")
	assert.NotContains(t, ListAdapters(), "test_alias_internal", "aliases are not listed as adapters")
}

func TestResolve(t *testing.T) {
	Register("test_resolve", func(_ *slog.Logger) Adapter { return nil }, "test_resolve_alias")

	tests := []struct {
		name   string
		scheme string
		want   string
		wantOK bool
	}{
		{name: "canonical", scheme: "test_resolve", want: "test_resolve", wantOK: true},
		{name: "alias", scheme: "test_resolve_alias", want: "test_resolve", wantOK: true},
		{name: "unknown", scheme: "oracle", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.scheme)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewAdapter_EmptyType(t *testing.T) {
	_, err := NewAdapter(Config{}, nil)
	require.Error(t, err, "NewAdapter with empty type should fail")
	assert.Equal(t, "adapter type not specified", err.Error(), "error message")
}

func TestNewAdapter_UnknownType(t *testing.T) {
	_, err := NewAdapter(Config{Type: "oracle"}, nil)
	require.Error(t, err)

	var unknown *UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Type)
}
