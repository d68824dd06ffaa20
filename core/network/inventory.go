package network

import (
	"context"
	"fmt"

	"github.com/kilianp07/trainbalancer/core/factory"
)

// InventorySource reports how many units are physically stored at a station,
// including the cargo of a stopped vehicle.
type InventorySource interface {
	UnitsAt(ctx context.Context, station string) (int64, error)
}

// InventoryFunc adapts a function to InventorySource.
type InventoryFunc func(ctx context.Context, station string) (int64, error)

func (f InventoryFunc) UnitsAt(ctx context.Context, station string) (int64, error) {
	return f(ctx, station)
}

// StaticInventory returns fixed unit counts, falling back to Default for
// stations it does not list.
type StaticInventory struct {
	Units   map[string]int64 `json:"units"`
	Default int64            `json:"default"`
}

func (s StaticInventory) UnitsAt(_ context.Context, station string) (int64, error) {
	if u, ok := s.Units[station]; ok {
		return u, nil
	}
	return s.Default, nil
}

var inventoryRegistry = factory.NewRegistry[InventorySource]()

func init() {
	_ = RegisterInventory("static", func(conf map[string]any) (InventorySource, error) {
		var s StaticInventory
		if err := factory.Decode(conf, &s); err != nil {
			return nil, fmt.Errorf("static inventory: %w", err)
		}
		for name, u := range s.Units {
			if u < 0 {
				return nil, fmt.Errorf("static inventory: negative units for %s", name)
			}
		}
		if s.Default < 0 {
			return nil, fmt.Errorf("static inventory: negative default")
		}
		return s, nil
	})
}

// RegisterInventory adds an inventory source factory identified by name.
func RegisterInventory(name string, f factory.Factory[InventorySource]) error {
	return inventoryRegistry.Register(name, f)
}

// NewInventory builds the inventory source described by cfg. An empty type
// yields an empty StaticInventory.
func NewInventory(cfg factory.ModuleConfig) (InventorySource, error) {
	if cfg.Type == "" {
		return StaticInventory{}, nil
	}
	return inventoryRegistry.Create(cfg)
}
