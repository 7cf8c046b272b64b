package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	restRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ssbulk",
			Name:      "rest_request_duration_seconds",
			Help:      "Splunk REST request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	restRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssbulk",
			Name:      "rest_requests_total",
			Help:      "Total number of Splunk REST requests",
		},
		[]string{"method", "endpoint", "status"},
	)
)

// RoundTripper records duration and count of every request passing through next.
func RoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()

		resp, err := next.RoundTrip(r)

		endpoint := normalizePath(r.URL.Path)
		status := "error"
		if err == nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		restRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		restRequestsTotal.WithLabelValues(r.Method, endpoint, status).Inc()

		return resp, err
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// normalizePath maps REST paths to a fixed set of labels to prevent high cardinality.
// /servicesNS/<owner>/<app>/saved/searches/<name> -> saved/searches/{name}
func normalizePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) >= 1 && parts[0] == "services":
		parts = parts[1:]
	case len(parts) >= 3 && parts[0] == "servicesNS":
		parts = parts[3:]
	default:
		return "unknown"
	}

	switch {
	case len(parts) == 0:
		return "unknown"
	case len(parts) == 2 && parts[0] == "saved" && parts[1] == "searches":
		return "saved/searches"
	case len(parts) >= 3 && parts[0] == "saved" && parts[1] == "searches":
		return "saved/searches/{name}"
	case len(parts) == 2 && parts[0] == "auth" && parts[1] == "login":
		return "auth/login"
	default:
		return "other"
	}
}
