/*
metrics.go - Prometheus instrumentation

PURPOSE:
  Counters for the scheduling pipeline, served on /metrics by the
  router in server.go.

SEE ALSO:
  - handlers.go: Increments these counters
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	schedulePreviews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rota_schedule_previews_total",
		Help: "Number of auto-schedule preview runs.",
	})

	scheduleCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rota_schedule_commits_total",
		Help: "Number of auto-schedule commit runs.",
	})

	shiftsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rota_shifts_created_total",
		Help: "Number of shifts persisted by auto-schedule commits.",
	})
)
