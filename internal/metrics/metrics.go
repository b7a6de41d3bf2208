package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EdgeProposals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depgraph_edge_proposals_total",
		Help: "Total number of edge proposals, labelled by outcome (added, noop, rejected).",
	}, []string{"outcome"})

	EdgesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depgraph_edges_removed_total",
		Help: "Total number of dependency edges removed.",
	})

	ImpactAnalyses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depgraph_impact_analyses_total",
		Help: "Total number of single-node impact analyses computed.",
	})

	ImpactDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "depgraph_impact_duration_ms",
		Help:    "Impact analysis latency in milliseconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
	})

	AnalysisQueueFull = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depgraph_analysis_queue_full_total",
		Help: "Total number of report analyses run inline because the worker queue was full.",
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depgraph_analysis_queue_utilization_ratio",
		Help: "Current analysis queue utilization (0–1).",
	})

	ActiveBoards = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depgraph_active_boards",
		Help: "Number of board sessions currently held in memory.",
	})

	BoardsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depgraph_boards_evicted_total",
		Help: "Total number of board sessions evicted from the session cache.",
	})

	ConfigReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depgraph_config_reloads_total",
		Help: "Total number of config reload attempts, labelled by status.",
	}, []string{"status"})
)
