package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// RedisErrors counts Redis command failures by command name. It is bumped by
// the cache package's client hook.
var RedisErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agora_redis_errors_total",
		Help: "Total number of Redis command errors by command.",
	},
	[]string{"command"},
)

func init() {
	prometheus.MustRegister(RedisErrors)
}

// InitMetrics creates the fiberprometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-metrics handler for the Fiber app.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
