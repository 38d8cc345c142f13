// services/report_cache.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evn/timesheet_backend/internal/models"
)

const reportTTL = 24 * time.Hour

// ReportCache keeps computed batch reports in redis so re-opening a
// finished import does not re-run the engine over the whole batch.
type ReportCache struct {
	client *redis.Client
}

func NewReportCache(client *redis.Client) *ReportCache {
	return &ReportCache{client: client}
}

func (c *ReportCache) Save(ctx context.Context, batchID int, reports map[string]*models.SummaryReport) error {
	data, err := json.Marshal(reports)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, batchKey(batchID), data, reportTTL).Err()
}

// Get returns the cached reports for a batch, or (nil, nil) on a miss.
func (c *ReportCache) Get(ctx context.Context, batchID int) (map[string]*models.SummaryReport, error) {
	data, err := c.client.Get(ctx, batchKey(batchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var reports map[string]*models.SummaryReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *ReportCache) Invalidate(ctx context.Context, batchID int) error {
	return c.client.Del(ctx, batchKey(batchID)).Err()
}

func batchKey(batchID int) string {
	return fmt.Sprintf("report:batch:%d", batchID)
}
