package model

import "time"

// StationStatus is the state of one named station after a cycle.
type StationStatus struct {
	Name             string      `json:"name" yaml:"name"`
	Config           PointConfig `json:"config" yaml:"config"`
	UnitsStored      int64       `json:"units_stored" yaml:"units_stored"`
	EnRouteBefore    int64       `json:"en_route_before" yaml:"en_route_before"`
	// EnRouteAfter is the vehicle count assigned once the cycle committed.
	// It equals the recommendation for eligible stations and EnRouteBefore
	// otherwise.
	EnRouteAfter     int64       `json:"en_route_after" yaml:"en_route_after"`
	StoppedVehicleID int64       `json:"stopped_vehicle_id,omitempty" yaml:"stopped_vehicle_id,omitempty"`
	Result           CycleResult `json:"result" yaml:"result"`
}

// CycleReport summarises one network-wide control cycle.
type CycleReport struct {
	ID        string    `json:"id" yaml:"id"`
	Cycle     uint64    `json:"cycle" yaml:"cycle"`
	Time      time.Time `json:"time" yaml:"time"`
	Precision int64     `json:"precision" yaml:"precision"`
	// NetworkTotal is the total fed into this cycle, NextTotal the one
	// produced for the next.
	NetworkTotal int64 `json:"network_total" yaml:"network_total"`
	NextTotal    int64 `json:"next_total" yaml:"next_total"`
	// Average is the integer network average used for gating.
	Average int64 `json:"average" yaml:"average"`
	// Imbalance is the standard deviation of the stations' percentages,
	// in the same scale. It is informational only.
	Imbalance float64         `json:"imbalance" yaml:"imbalance"`
	Stations  []StationStatus `json:"stations" yaml:"stations"`
}

// Recommended returns the sum of vehicles recommended across stations.
func (r CycleReport) Recommended() int64 {
	var n int64
	for _, s := range r.Stations {
		n += s.Result.VehiclesRecommended
	}
	return n
}
