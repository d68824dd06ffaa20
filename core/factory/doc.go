// Package factory instantiates pluggable modules, such as metrics sinks or
// inventory sources, from configuration. A module is described by a type
// name and a map of raw settings which the registered factory decodes into
// its own typed struct.
//
// Example usage:
//
//	reg := factory.NewRegistry[network.InventorySource]()
//	_ = reg.Register("static", func(conf map[string]any) (network.InventorySource, error) {
//	    var c struct{ Default int64 `json:"default"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return network.StaticInventory{Default: c.Default}, nil
//	})
//	src, err := reg.Create(factory.ModuleConfig{Type: "static", Conf: map[string]any{"default": 63000}})
package factory
