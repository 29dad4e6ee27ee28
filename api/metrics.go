/*
metrics.go - Prometheus instrumentation

The /metrics endpoint itself is registered by the router when metrics
are enabled; the counters here are always collected.
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// movementsRecorded counts operator-recorded movements by type.
// Synthetic fee movements are not counted; they follow their origin.
var movementsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "futs",
	Name:      "movements_recorded_total",
	Help:      "Movements recorded through the API, by type.",
}, []string{"type"})
