package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// aggregationInconsistencies counts rating summaries where the incremental
// update disagreed with a full recompute over the same review set. Any
// non-zero value means the delta path has a bug worth investigating.
var aggregationInconsistencies = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rating_aggregation_inconsistencies_total",
		Help: "Total number of rating summary updates where the incremental result diverged from a full recompute",
	},
	[]string{"operation"},
)

func init() {
	prometheus.MustRegister(aggregationInconsistencies)
}
