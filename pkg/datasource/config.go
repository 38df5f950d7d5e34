package datasource

import (
	"net/http"
	"time"
)

// PromConfig represents the config of prometheus
type PromConfig struct {
	Address            string
	Timeout            time.Duration
	KeepAlive          time.Duration
	InsecureSkipVerify bool
	Auth               ClientAuth

	MaxPointsLimitPerTimeSeries int
}

// ClientAuth holds the HTTP client identity info.
type ClientAuth struct {
	Username    string
	BearerToken string
	Password    string
}

// Apply applies the authentication identity info to the HTTP request headers
func (auth *ClientAuth) Apply(req *http.Request) {
	if auth == nil {
		return
	}

	if auth.BearerToken != "" {
		token := "Bearer " + auth.BearerToken
		req.Header.Add("Authorization", token)
	}

	if auth.Username != "" {
		req.SetBasicAuth(auth.Username, auth.Password)
	}
}

// CSVConfig represents the config of a csv file source.
type CSVConfig struct {
	File string
	// ValueColumn is used when a query does not name a column.
	ValueColumn string
	// DateColumn is optional; rows are stamped one day apart from the Unix epoch without it.
	DateColumn string
	DateLayout string
	Delimiter  rune
}

type DataSourceType string

const (
	PrometheusDataSource DataSourceType = "prom"
	CSVDataSource        DataSourceType = "csv"
)
