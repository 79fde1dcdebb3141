package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parlor_messages_sent_total",
		Help: "Messages accepted by the store.",
	})

	ChannelsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parlor_channels_created_total",
		Help: "Channels created, by kind.",
	}, []string{"kind"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parlor_http_requests_total",
		Help: "HTTP requests, by method and status.",
	}, []string{"method", "status"})
)

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
