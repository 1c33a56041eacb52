package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient reads back the points written by the service's influx sink.
type InfluxClient struct {
	org    string
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		org:    org,
		bucket: bucket,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// EnsureBucket creates the bucket when the instance does not have it yet.
func (c *InfluxClient) EnsureBucket(ctx context.Context) error {
	org, err := c.client.OrganizationsAPI().FindOrganizationByName(ctx, c.org)
	if err != nil {
		return fmt.Errorf("find org: %w", err)
	}
	buckets := c.client.BucketsAPI()
	if b, err := buckets.FindBucketByName(ctx, c.bucket); err == nil && b != nil {
		return nil
	}
	if _, err := buckets.CreateBucketWithName(ctx, org, c.bucket); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// CountMeasurement returns how many field values of measurement were
// written in the last hour.
func (c *InfluxClient) CountMeasurement(ctx context.Context, measurement string) (int, error) {
	flux := fmt.Sprintf(`from(bucket:"%s") |> range(start:-1h) |> filter(fn: (r) => r._measurement == "%s")`, c.bucket, measurement)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

func (c *InfluxClient) Close() { c.client.Close() }
