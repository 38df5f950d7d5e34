package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/gocrane/crane/pkg/common"
	"k8s.io/klog/v2"
)

// History is a data source can provides history time series data at any time periods.
type History interface {
	// QueryTimeSeries returns the time series selected by query between startTime and
	// endTime. Steps without an observation are returned as NaN samples, not dropped.
	QueryTimeSeries(ctx context.Context, query string, startTime time.Time, endTime time.Time, step time.Duration) ([]*common.TimeSeries, error)
}

// Single returns the only series of tsList. When a query matches several series the
// first one is used.
func Single(tsList []*common.TimeSeries, query string) (*common.TimeSeries, error) {
	if len(tsList) == 0 {
		return nil, fmt.Errorf("query %q returned no time series", query)
	}
	if len(tsList) > 1 {
		klog.Warningf("Query %q returned %d time series, using the first one %v", query, len(tsList), tsList[0].Labels)
	}
	return tsList[0], nil
}
