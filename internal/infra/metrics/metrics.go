package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sora_jobs_submitted_total",
		Help: "Total number of video generation jobs accepted",
	})

	JobsFinishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sora_jobs_finished_total",
		Help: "Total number of jobs that reached a terminal state, by status",
	}, []string{"status"})

	ActivePolls = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sora_active_polls",
		Help: "Number of polling tasks currently in flight",
	})

	ProviderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sora_provider_requests_total",
		Help: "Total number of provider API calls, by operation and outcome",
	}, []string{"operation", "outcome"})

	StoreEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sora_store_evictions_total",
		Help: "Total number of job records evicted under capacity pressure",
	})
)
