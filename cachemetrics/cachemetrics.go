// Package cachemetrics provides the small set of metric abstractions used by the
// caching packages in this module, along with helpers for constructing go-kit
// metrics backed by Prometheus.
package cachemetrics

import (
	"errors"
	"fmt"

	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	CounterType = "counter"
	GaugeType   = "gauge"
)

// Adder represents a metric to which deltas can be added.  Go-kit's
// metrics.Counter and metrics.Gauge implement this interface.
type Adder interface {
	Add(float64)
}

// Setter represents a metric that can receive updates, e.g. a gauge.
type Setter interface {
	Set(float64)
}

// Metric describes a single metric to be created.  This type loosely corresponds
// with Prometheus' Opts struct.
type Metric struct {
	// Name is the required name of this metric.
	Name string

	// Type is the metric type.  If set, it must match the type implied by the
	// constructor being invoked.
	Type string

	// Namespace is the optional namespace of this metric.
	Namespace string

	// Subsystem is the optional subsystem of this metric.
	Subsystem string

	// Help is the help string for this metric.  If not supplied, the metric's
	// name is used.
	Help string

	// LabelNames are the Prometheus label names for this metric.  Optional.
	LabelNames []string
}

func (m Metric) help() string {
	if len(m.Help) > 0 {
		return m.Help
	}

	return m.Name
}

func (m Metric) check(expected string) error {
	if len(m.Name) == 0 {
		return errors.New("a name is required for a metric")
	}

	if len(m.Type) > 0 && m.Type != expected {
		return fmt.Errorf("metric %s: unexpected type %s", m.Name, m.Type)
	}

	return nil
}

// NewCounter creates a go-kit Counter backed by a Prometheus counter vector.
// If a non-nil Registerer is supplied, the underlying collector is registered
// with it and any registration error is returned.
func NewCounter(r prometheus.Registerer, m Metric) (metrics.Counter, error) {
	if err := m.check(CounterType); err != nil {
		return nil, err
	}

	cv := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: m.Subsystem,
			Name:      m.Name,
			Help:      m.help(),
		},
		m.LabelNames,
	)

	if r != nil {
		if err := r.Register(cv); err != nil {
			return nil, err
		}
	}

	return kitprometheus.NewCounter(cv), nil
}

// NewGauge creates a go-kit Gauge backed by a Prometheus gauge vector.
// If a non-nil Registerer is supplied, the underlying collector is registered
// with it and any registration error is returned.
func NewGauge(r prometheus.Registerer, m Metric) (metrics.Gauge, error) {
	if err := m.check(GaugeType); err != nil {
		return nil, err
	}

	gv := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.Namespace,
			Subsystem: m.Subsystem,
			Name:      m.Name,
			Help:      m.help(),
		},
		m.LabelNames,
	)

	if r != nil {
		if err := r.Register(gv); err != nil {
			return nil, err
		}
	}

	return kitprometheus.NewGauge(gv), nil
}
