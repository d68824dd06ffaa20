// Package e2e runs the whole service against real brokers started with
// testcontainers-go.
package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient is a small query helper around the official InfluxDB v2
// client used by the E2E tests.
type InfluxClient struct {
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for a running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// StationValues returns the latest value of field per station tag written
// to the station_cycle measurement in the last hour.
func (c *InfluxClient) StationValues(ctx context.Context, field string) (map[string]int64, error) {
	flux := fmt.Sprintf(`from(bucket:%q)
  |> range(start:-1h)
  |> filter(fn: (r) => r._measurement == "station_cycle" and r._field == %q)
  |> group(columns: ["station"])
  |> sort(columns: ["_time"])
  |> last()`, c.bucket, field)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	out := make(map[string]int64)
	for res.Next() {
		rec := res.Record()
		station, _ := rec.ValueByKey("station").(string)
		v, ok := rec.Value().(int64)
		if !ok {
			return nil, fmt.Errorf("station %s: unexpected %s value %T", station, field, rec.Value())
		}
		out[station] = v
	}
	return out, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
