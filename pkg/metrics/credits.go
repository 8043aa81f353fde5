package metrics

import "github.com/prometheus/client_golang/prometheus"

// CreditMetrics counts ledger activity and policy rejections.
type CreditMetrics struct {
	awarded    *prometheus.CounterVec
	spent      *prometheus.CounterVec
	boosts     prometheus.Counter
	rejections *prometheus.CounterVec
}

func NewCreditMetrics(reg prometheus.Registerer) *CreditMetrics {
	if reg == nil {
		return &CreditMetrics{}
	}
	awarded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_awarded_total",
		Help:      "Credits granted, by transaction type.",
	}, []string{"type"})
	spent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_spent_total",
		Help:      "Credits debited, by transaction type.",
	}, []string{"type"})
	boosts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "boosts_purchased_total",
		Help:      "Opportunity boosts purchased.",
	})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credit_policy_rejections_total",
		Help:      "Credit operations rejected by policy, by operation and reason.",
	}, []string{"operation", "reason"})
	reg.MustRegister(awarded, spent, boosts, rejections)
	return &CreditMetrics{awarded: awarded, spent: spent, boosts: boosts, rejections: rejections}
}

// RecordLedger adds amount to the awarded or spent counter depending on sign.
func (m *CreditMetrics) RecordLedger(txType string, amount int) {
	if m == nil || m.awarded == nil || amount == 0 {
		return
	}
	if amount > 0 {
		m.awarded.WithLabelValues(normalizeLabel(txType)).Add(float64(amount))
		return
	}
	m.spent.WithLabelValues(normalizeLabel(txType)).Add(float64(-amount))
}

func (m *CreditMetrics) IncBoost() {
	if m == nil || m.boosts == nil {
		return
	}
	m.boosts.Inc()
}

func (m *CreditMetrics) IncRejection(operation, reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(operation), normalizeLabel(reason)).Inc()
}
