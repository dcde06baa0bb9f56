package cgi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camctl_cgi_requests_total",
		Help: "HTTP requests sent to cameras.",
	}, []string{"method", "result"})

	negotiationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camctl_auth_negotiations_total",
		Help: "Authentication negotiations by scheme and outcome.",
	}, []string{"scheme", "result"})
)

func requestResult(res *Response, err error) string {
	switch {
	case err != nil:
		return "error"
	case res.StatusCode == 401:
		return "unauthorized"
	case res.StatusCode >= 400:
		return "failed"
	}
	return "ok"
}
