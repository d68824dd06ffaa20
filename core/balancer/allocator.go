package balancer

import "github.com/kilianp07/trainbalancer/core/model"

// Allocator evaluates the vehicle recommendation for one station.
type Allocator struct {
	cfg model.PointConfig
}

// Decision details how a CycleResult was reached.
type Decision struct {
	model.CycleResult

	// UnitsAccounted counts local units plus the load of every vehicle
	// still in transit.
	UnitsAccounted int64
	// Average is the network average percentage in the same scale as
	// PercentageStored.
	Average int64

	SpaceAvailable   bool
	DeservesResupply bool
	QueueHasRoom     bool

	// ForDeficit and ForSpace are only set when the station is eligible.
	ForDeficit int64
	ForSpace   int64
}

// Eligible reports whether all three gates passed.
func (d Decision) Eligible() bool {
	return d.SpaceAvailable && d.DeservesResupply && d.QueueHasRoom
}

// New validates cfg and returns an Allocator bound to it.
func New(cfg model.PointConfig) (Allocator, error) {
	if cfg.Capacity <= 0 {
		return Allocator{}, &ConfigError{Field: "capacity", Value: cfg.Capacity, Rule: "must be positive"}
	}
	if cfg.LoadUnitSize <= 0 {
		return Allocator{}, &ConfigError{Field: "load_unit_size", Value: cfg.LoadUnitSize, Rule: "must be positive"}
	}
	if cfg.QueueLimit < 0 {
		return Allocator{}, &ConfigError{Field: "queue_limit", Value: cfg.QueueLimit, Rule: "must not be negative"}
	}
	return Allocator{cfg: cfg}, nil
}

// Config returns the station parameters the Allocator was built with.
func (a Allocator) Config() model.PointConfig { return a.cfg }

// Evaluate returns the station's fill percentage and recommended vehicle
// count for this cycle.
func (a Allocator) Evaluate(obs model.CycleObservation) (model.CycleResult, error) {
	d, err := a.Decide(obs)
	if err != nil {
		return model.CycleResult{}, err
	}
	return d.CycleResult, nil
}

// Decide is Evaluate with the intermediate values exposed.
func (a Allocator) Decide(obs model.CycleObservation) (Decision, error) {
	if err := validate(obs); err != nil {
		return Decision{}, err
	}
	var d Decision

	inTransit := obs.VehiclesEnRoute
	if obs.HasStoppedVehicle() {
		// the stopped vehicle's cargo is already in LocalUnitsStored
		inTransit--
	}
	committed, err := mul(inTransit, a.cfg.LoadUnitSize)
	if err != nil {
		return Decision{}, err
	}
	if d.UnitsAccounted, err = add(obs.LocalUnitsStored, committed); err != nil {
		return Decision{}, err
	}
	if d.PercentageStored, err = Percentage(obs.Precision, d.UnitsAccounted, a.cfg.Capacity); err != nil {
		return Decision{}, err
	}
	avg, err := Percentage(obs.Precision, obs.NetworkTotalPercentage, obs.PointCount)
	if err != nil {
		return Decision{}, err
	}
	d.Average = avg / obs.Precision

	free := a.cfg.Capacity - d.UnitsAccounted
	d.SpaceAvailable = d.UnitsAccounted < a.cfg.Capacity && free >= a.cfg.LoadUnitSize
	d.DeservesResupply = d.PercentageStored <= d.Average
	d.QueueHasRoom = obs.VehiclesEnRoute < a.cfg.QueueLimit
	if !d.Eligible() {
		return d, nil
	}

	deficit, err := mulDiv(d.Average-d.PercentageStored, a.cfg.Capacity, obs.Precision)
	if err != nil {
		return Decision{}, err
	}
	d.ForDeficit = max(deficit/a.cfg.LoadUnitSize, 1)
	d.ForSpace = free / a.cfg.LoadUnitSize
	d.VehiclesRecommended = min(d.ForDeficit, d.ForSpace, a.cfg.QueueLimit)
	return d, nil
}

func validate(obs model.CycleObservation) error {
	switch {
	case obs.Precision <= 0:
		return invalidObservation("precision must be positive, got %d", obs.Precision)
	case obs.PointCount <= 0:
		return invalidObservation("point count must be positive, got %d", obs.PointCount)
	case obs.NetworkTotalPercentage < 0:
		return invalidObservation("network total must not be negative, got %d", obs.NetworkTotalPercentage)
	case obs.LocalUnitsStored < 0:
		return invalidObservation("local units must not be negative, got %d", obs.LocalUnitsStored)
	case obs.VehiclesEnRoute < 0:
		return invalidObservation("vehicles en route must not be negative, got %d", obs.VehiclesEnRoute)
	case obs.HasStoppedVehicle() && obs.VehiclesEnRoute == 0:
		return invalidObservation("stopped vehicle %d is not counted en route", obs.StoppedVehicleID)
	}
	return nil
}
