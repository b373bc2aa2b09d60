package deque

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opPushFront = "push_front"
	opPushBack  = "push_back"
	opPopFront  = "pop_front"
	opPopBack   = "pop_back"
	opClear     = "clear"
	opDestroy   = "destroy"
	opTraverse  = "traverse"
)

var (
	operationsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deque_operations_total",
		Help: "The total number of operations applied to named deques",
	}, []string{
		"deque", // The name given via WithName.
		"op",    // The operation, e.g. push_front.
	})
	nodesMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "deque_nodes",
		Help: "The number of live nodes held by named deques",
	}, []string{"deque"})
)

// observe records `op` and the change in live nodes for named deques.
func (d *Deque[V]) observe(op string, nodesDelta int) {
	if d.opts.name == "" {
		return
	}
	operationsMetric.WithLabelValues(d.opts.name, op).Inc()
	if nodesDelta != 0 {
		nodesMetric.WithLabelValues(d.opts.name).Add(float64(nodesDelta))
	}
}
