package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PaymentIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evpay_payment_intents_total",
			Help: "Payment intent lifecycle counter by stage",
		},
		[]string{"stage"}, // rejected|created|failed
	)
	LeadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evpay_leads_total",
			Help: "Lead lifecycle counter by stage",
		},
		[]string{"stage"}, // captured|synced|failed
	)
	CustomerCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evpay_customer_cache_total",
			Help: "Customer cache lookups by result",
		},
		[]string{"result"}, // hit|miss
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		PaymentIntentsTotal,
		LeadsTotal,
		CustomerCacheTotal,
	)
}
