package mockapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	Requests     *prometheus.CounterVec
	LoginResults *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sportify_mockapi_requests_total",
			Help: "Total number of requests served by route and status code",
		}, []string{"route", "code"}),
		LoginResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sportify_mockapi_logins_total",
			Help: "Login attempts by role and result",
		}, []string{"role", "result"}),
	}
}
