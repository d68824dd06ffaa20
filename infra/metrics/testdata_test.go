package metrics

import (
	"time"

	"github.com/kilianp07/trainbalancer/core/model"
)

func sampleReport() model.CycleReport {
	return model.CycleReport{
		ID:           "c0ffee",
		Cycle:        2,
		Time:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Precision:    1000,
		NetworkTotal: 2696,
		NextTotal:    2696,
		Average:      539,
		Imbalance:    312.25,
		Stations: []model.StationStatus{
			{Name: "A", UnitsStored: 63000, Result: model.CycleResult{PercentageStored: 492, VehiclesRecommended: 1}},
			{Name: "E", UnitsStored: 63000, EnRouteBefore: 2, Result: model.CycleResult{PercentageStored: 63, VehiclesRecommended: 5}},
		},
	}
}
