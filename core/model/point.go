package model

// PointConfig holds the fixed hardware parameters of a drop-off point.
type PointConfig struct {
	Capacity     int64 `json:"capacity" yaml:"capacity"`             // maximum storable units
	LoadUnitSize int64 `json:"load_unit_size" yaml:"load_unit_size"` // units delivered by one trip
	QueueLimit   int64 `json:"queue_limit" yaml:"queue_limit"`       // max vehicles en route or stopped
}

// CycleObservation is the input of one evaluation. It is built fresh by the
// caller every control cycle.
type CycleObservation struct {
	// Precision scales percentages: 100 for percent, 1000 for per-mille.
	Precision int64 `json:"precision" yaml:"precision"`
	// PointCount is the number of points sharing the resource.
	PointCount int64 `json:"point_count" yaml:"point_count"`
	// NetworkTotalPercentage is the sum of every point's PercentageStored
	// from the previous cycle.
	NetworkTotalPercentage int64 `json:"network_total_percentage" yaml:"network_total_percentage"`
	// LocalUnitsStored includes the cargo of a stopped vehicle.
	LocalUnitsStored int64 `json:"local_units_stored" yaml:"local_units_stored"`
	// VehiclesEnRoute includes a stopped vehicle when there is one.
	VehiclesEnRoute int64 `json:"vehicles_en_route" yaml:"vehicles_en_route"`
	// StoppedVehicleID is 0 when no vehicle is stopped at the point.
	StoppedVehicleID int64 `json:"stopped_vehicle_id" yaml:"stopped_vehicle_id"`
}

// HasStoppedVehicle reports whether a vehicle is unloading at the point.
func (o CycleObservation) HasStoppedVehicle() bool {
	return o.StoppedVehicleID != 0
}

// CycleResult is the output of one evaluation.
type CycleResult struct {
	PercentageStored    int64 `json:"percentage_stored" yaml:"percentage_stored"`
	VehiclesRecommended int64 `json:"vehicles_recommended" yaml:"vehicles_recommended"`
}
