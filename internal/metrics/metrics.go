// Package metrics exports formatting outcomes as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iw2rmb/reflow/format"
)

const namespace = "reflow"

// Result labels a finished formatting request.
type Result string

const (
	ResultChanged   Result = "changed"
	ResultUnchanged Result = "unchanged"
	ResultTimeout   Result = "timeout"
	ResultCanceled  Result = "canceled"
	ResultFailed    Result = "failed"
)

// ResultOf classifies the outcome reported to an observer.
func ResultOf(edits int, err error) Result {
	switch {
	case err == nil && edits > 0:
		return ResultChanged
	case err == nil:
		return ResultUnchanged
	case errors.Is(err, format.ErrEngineTimeout):
		return ResultTimeout
	case errors.Is(err, context.Canceled):
		return ResultCanceled
	default:
		return ResultFailed
	}
}

// Recorder implements format.Observer on Prometheus collectors.
type Recorder struct {
	requests *prom.CounterVec
	duration *prom.HistogramVec
	edits    *prom.CounterVec
}

var _ format.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg. A nil reg
// gets a fresh registry.
func NewRecorder(reg prom.Registerer) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "format_requests_total",
			Help:      "Formatting requests by operation, engine and result",
		}, []string{"op", "engine", "result"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "format_duration_seconds",
			Help:      "Duration of formatting requests, engine call included",
			Buckets:   prom.DefBuckets,
		}, []string{"op", "engine"}),
		edits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "format_edits_applied_total",
			Help:      "Edits applied to targets by successful requests",
		}, []string{"engine"}),
	}
	reg.MustRegister(r.requests, r.duration, r.edits)
	return r
}

func (r *Recorder) ObserveFormat(op, engine string, edits int, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(op, engine, string(ResultOf(edits, err))).Inc()
	r.duration.WithLabelValues(op, engine).Observe(d.Seconds())
	if err == nil && edits > 0 {
		r.edits.WithLabelValues(engine).Add(float64(edits))
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prom.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
