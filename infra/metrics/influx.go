package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/trainbalancer/core/metrics"
	"github.com/kilianp07/trainbalancer/core/model"
	"github.com/kilianp07/trainbalancer/infra/logger"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes one point per station and one per network cycle.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings InfluxDB and returns a NopSink when the
// health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCycle writes the report as line protocol.
func (s *InfluxSink) RecordCycle(r model.CycleReport) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, cyclePoints(r)...)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func cyclePoints(r model.CycleReport) []*write.Point {
	points := make([]*write.Point, 0, len(r.Stations)+1)
	for _, st := range r.Stations {
		points = append(points, write.NewPointWithMeasurement("station_cycle").
			AddTag("station", st.Name).
			AddTag("cycle_id", r.ID).
			SortTags().
			AddField("percentage_stored", st.Result.PercentageStored).
			AddField("vehicles_recommended", st.Result.VehiclesRecommended).
			AddField("vehicles_en_route", st.EnRouteBefore).
			AddField("units_stored", st.UnitsStored).
			AddField("stopped", st.StoppedVehicleID != 0).
			SetTime(r.Time))
	}
	points = append(points, write.NewPointWithMeasurement("network_cycle").
		AddTag("cycle_id", r.ID).
		AddField("cycle", int64(r.Cycle)).
		AddField("network_total", r.NetworkTotal).
		AddField("next_total", r.NextTotal).
		AddField("average", r.Average).
		AddField("imbalance", round3(r.Imbalance)).
		AddField("precision", r.Precision).
		SetTime(r.Time))
	return points
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
