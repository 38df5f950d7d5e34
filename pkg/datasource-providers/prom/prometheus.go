package prom

import (
	gocontext "context"
	"crypto/tls"
	"fmt"
	"math"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/gocrane/crane/pkg/common"
	"github.com/prometheus/client_golang/api"
	promapiv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"k8s.io/klog/v2"

	"github.com/gocrane/imputebench/pkg/datasource"
)

var _ datasource.History = &prom{}

type prom struct {
	api    promapiv1.API
	config *datasource.PromConfig
}

// NewProvider return a prometheus data provider
func NewProvider(config *datasource.PromConfig) (datasource.History, error) {
	client, err := NewPrometheusClient(config)
	if err != nil {
		return nil, err
	}
	return &prom{api: promapiv1.NewAPI(client), config: config}, nil
}

// NewPrometheusClient returns a prometheus api client which authenticates every request
// with the configured identity.
func NewPrometheusClient(config *datasource.PromConfig) (api.Client, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   config.Timeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}
	return api.NewClient(api.Config{
		Address:      config.Address,
		RoundTripper: &authRoundTripper{auth: config.Auth, next: transport},
	})
}

type authRoundTripper struct {
	auth datasource.ClientAuth
	next http.RoundTripper
}

func (rt *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	rt.auth.Apply(req)
	return rt.next.RoundTrip(req)
}

func (p *prom) QueryTimeSeries(ctx gocontext.Context, query string, startTime time.Time, endTime time.Time, step time.Duration) ([]*common.TimeSeries, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %v", step)
	}
	if endTime.Before(startTime) {
		return nil, fmt.Errorf("end %v is before start %v", endTime, startTime)
	}
	points := int(endTime.Sub(startTime)/step) + 1
	if p.config.MaxPointsLimitPerTimeSeries > 0 && points > p.config.MaxPointsLimitPerTimeSeries {
		return nil, fmt.Errorf("query range holds %d points, more than the limit %d", points, p.config.MaxPointsLimitPerTimeSeries)
	}

	klog.V(6).Infof("QueryTimeSeries query %v, timeout: %v, range: %v - %v, step: %v", query, p.config.Timeout, startTime, endTime, step)
	timeoutCtx := ctx
	if p.config.Timeout > 0 {
		var cancelFunc gocontext.CancelFunc
		timeoutCtx, cancelFunc = gocontext.WithTimeout(ctx, p.config.Timeout)
		defer cancelFunc()
	}

	value, warnings, err := p.api.QueryRange(timeoutCtx, query, promapiv1.Range{Start: startTime, End: endTime, Step: step})
	if err != nil {
		klog.Errorf("Failed to QueryTimeSeries: %v, query: %v", err, query)
		return nil, err
	}
	if len(warnings) > 0 {
		klog.Warningf("QueryTimeSeries query %v returned warnings: %v", query, warnings)
	}

	matrix, ok := value.(model.Matrix)
	if !ok {
		return nil, fmt.Errorf("query %q returned %s, want matrix", query, value.Type())
	}
	return matrixToTimeSeries(matrix, startTime, step, points), nil
}

// matrixToTimeSeries lays every stream on the full step grid; steps the stream has no
// sample for get NaN.
func matrixToTimeSeries(matrix model.Matrix, startTime time.Time, step time.Duration, points int) []*common.TimeSeries {
	var result []*common.TimeSeries
	for _, stream := range matrix {
		values := make(map[int64]float64, len(stream.Values))
		for _, pair := range stream.Values {
			values[pair.Timestamp.Unix()] = float64(pair.Value)
		}

		ts := common.NewTimeSeries()
		names := make([]string, 0, len(stream.Metric))
		for name := range stream.Metric {
			names = append(names, string(name))
		}
		sort.Strings(names)
		for _, name := range names {
			ts.AppendLabel(name, string(stream.Metric[model.LabelName(name)]))
		}

		for i := 0; i < points; i++ {
			at := startTime.Add(time.Duration(i) * step).Unix()
			value, found := values[at]
			if !found {
				value = math.NaN()
			}
			ts.AppendSample(at, value)
		}
		result = append(result, ts)
	}
	return result
}
