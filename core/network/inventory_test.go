package network

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/trainbalancer/core/factory"
)

func TestNewInventory_Static(t *testing.T) {
	src, err := NewInventory(factory.ModuleConfig{Type: "static", Conf: map[string]any{
		"default": 63000,
		"units":   map[string]any{"A": 1000},
	}})
	require.NoError(t, err)

	ctx := context.Background()
	a, err := src.UnitsAt(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), a)
	b, err := src.UnitsAt(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, int64(63000), b)
}

func TestNewInventory_Errors(t *testing.T) {
	_, err := NewInventory(factory.ModuleConfig{Type: "static", Conf: map[string]any{"default": -5}})
	assert.Error(t, err)
	_, err = NewInventory(factory.ModuleConfig{Type: "static", Conf: map[string]any{"units": map[string]any{"A": -1}}})
	assert.Error(t, err)
	_, err = NewInventory(factory.ModuleConfig{Type: "scada"})
	assert.Error(t, err)

	src, err := NewInventory(factory.ModuleConfig{})
	require.NoError(t, err)
	assert.IsType(t, StaticInventory{}, src)
}
