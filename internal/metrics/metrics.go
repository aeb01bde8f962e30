package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the ledger counters. A nil *Metrics records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	escrow      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wager_bets_total",
			Help: "bet lifecycle transitions",
		}, []string{"transition"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wager_rejections_total",
			Help: "rejected operations by error name",
		}, []string{"code"}),
		escrow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wager_escrow_lamports_total",
			Help: "lamports moved in and out of bet treasuries",
		}, []string{"direction"}),
	}
	reg.MustRegister(m.transitions, m.rejections, m.escrow)
	return m
}

func (m *Metrics) Transition(name string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(name).Inc()
}

func (m *Metrics) Rejected(code string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(code).Inc()
}

// Escrow records lamports moving "in" to or "out" of a treasury.
func (m *Metrics) Escrow(direction string, amount uint64) {
	if m == nil || amount == 0 {
		return
	}
	m.escrow.WithLabelValues(direction).Add(float64(amount))
}
