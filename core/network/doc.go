// Package network runs the per-station allocators of one resource network
// cycle after cycle.
//
// A cycle reads every station's stored units from an InventorySource,
// evaluates all stations concurrently against the previous cycle's network
// total and, once all have finished, commits the new total and each
// station's vehicle count. Reports are recorded to a metrics sink and
// published on an event bus.
package network
