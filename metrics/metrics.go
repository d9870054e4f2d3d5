// Package metrics collects Prometheus metrics about Akismet calls.
package metrics

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akismet/akismetclient-go/client"
	"github.com/akismet/akismetclient-go/errors"
	"github.com/akismet/akismetclient-go/protocol"
)

// Collector records Akismet calls. It implements client.Observer, so it can be
// attached to a client with client.WithObserver.
type Collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	verdicts *prometheus.CounterVec
	errs     *prometheus.CounterVec
}

var _ client.Observer = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "akismet_requests_total",
			Help: "Akismet API requests by endpoint and HTTP status.",
		}, []string{"endpoint", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "akismet_request_duration_seconds",
			Help:    "Latency of Akismet API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "akismet_verdicts_total",
			Help: "comment-check verdicts by result.",
		}, []string{"result"}),
		errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "akismet_errors_total",
			Help: "Failed Akismet calls by error kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(c.requests, c.duration, c.verdicts, c.errs)
	return c
}

// BeforeSend implements client.Observer.
func (c *Collector) BeforeSend(client.RequestEvent) {}

// AfterReceive implements client.Observer.
func (c *Collector) AfterReceive(e client.ResponseEvent) {
	endpoint := e.Command.String()
	status := "none"
	if e.StatusCode != 0 {
		status = strconv.Itoa(e.StatusCode)
	}
	c.requests.WithLabelValues(endpoint, status).Inc()
	c.duration.WithLabelValues(endpoint).Observe(e.Duration.Seconds())

	if e.Err != nil {
		c.RecordError(e.Err)
		return
	}
	if e.Command == protocol.CommentCheck {
		c.RecordVerdict(protocol.CheckResultFrom(e.Body, e.Header))
	}
}

// RecordVerdict counts a comment-check verdict.
func (c *Collector) RecordVerdict(result protocol.CheckResult) {
	c.verdicts.WithLabelValues(result.String()).Inc()
}

// RecordError counts a failed call by its error kind.
func (c *Collector) RecordError(err error) {
	kind := errors.UnknownError.String()
	var ae *errors.AkismetError
	if stderrors.As(err, &ae) {
		kind = ae.Type.String()
	}
	c.errs.WithLabelValues(kind).Inc()
}

// Handler returns the HTTP handler serving the metrics of gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
