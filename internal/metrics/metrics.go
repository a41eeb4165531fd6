package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NodesInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodeflow_nodes_inserted_total",
		Help: "Total number of nodes inserted into the graph.",
	})

	NodesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodeflow_nodes_removed_total",
		Help: "Total number of nodes removed from the graph.",
	})

	EdgesConnected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodeflow_edges_connected_total",
		Help: "Total number of edges committed by connect operations.",
	})

	EdgesDisconnected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodeflow_edges_disconnected_total",
		Help: "Total number of edges removed by disconnect operations.",
	})

	ConnectsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nodeflow_connects_rejected_total",
		Help: "Total number of rejected connect operations, labelled by reason.",
	}, []string{"reason"})

	Evaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodeflow_evaluations_total",
		Help: "Total number of evaluator runs.",
	})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nodeflow_evaluation_duration_us",
		Help:    "Evaluator run latency in microseconds.",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nodeflow_graph_nodes",
		Help: "Current number of nodes in the graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nodeflow_graph_edges",
		Help: "Current number of edges in the graph.",
	})

	TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nodeflow_tasks_completed_total",
		Help: "Total number of task completions reported to the tracker.",
	})
)
