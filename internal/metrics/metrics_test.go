package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Transition("created")
	m.Transition("created")
	m.Rejected("BetExpired")
	m.Escrow("in", 1500)
	m.Escrow("in", 0)

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("created")); got != 2 {
		t.Errorf("created transitions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.rejections.WithLabelValues("BetExpired")); got != 1 {
		t.Errorf("rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.escrow.WithLabelValues("in")); got != 1500 {
		t.Errorf("escrow in = %v, want 1500", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Transition("created")
	m.Rejected("x")
	m.Escrow("out", 1)
}
