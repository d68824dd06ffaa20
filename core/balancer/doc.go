// Package balancer decides how many delivery vehicles a single drop-off
// station should have assigned to it.
//
// An Allocator is bound to one station's fixed parameters (capacity, load
// size, queue limit) and is evaluated once per control cycle with the
// network-wide total of fill percentages and the station's local
// observations. It returns the station's fill percentage, scaled by the
// requested precision, and the number of vehicles to keep en route.
//
// Vehicles already en route are counted as if their load had arrived, so a
// station that was just promised vehicles does not get promised more until
// the rest of the network catches up. Only stations at or below the network
// average receive vehicles, and an eligible station always receives at
// least one.
//
// All arithmetic is integer. Products are computed on 128 bits and any
// result that does not fit in an int64 is reported as ErrOverflow.
//
// Usage example:
//
//	alloc, err := balancer.New(model.PointConfig{Capacity: 128000, LoadUnitSize: 8000, QueueLimit: 3})
//	if err != nil {
//	        log.Fatalf("invalid station: %v", err)
//	}
//	res, err := alloc.Evaluate(model.CycleObservation{Precision: 1000, PointCount: 5})
//
// An Allocator holds no mutable state and is safe for concurrent use.
package balancer
