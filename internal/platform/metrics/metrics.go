package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors the service reports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RecipesGenerated     *prometheus.CounterVec
	GenerationFailures   *prometheus.CounterVec
	GenerationCacheHits  prometheus.Counter
	GroceryRegenerations prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecipesGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mealplanner",
			Name:      "recipes_generated_total",
			Help:      "Recipes produced by the AI provider and saved.",
		}, []string{"provider"}),
		GenerationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mealplanner",
			Name:      "recipe_generation_failures_total",
			Help:      "Recipe generation calls that failed.",
		}, []string{"provider"}),
		GenerationCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "mealplanner",
			Name:      "recipe_generation_cache_hits_total",
			Help:      "Generation requests answered from the cache.",
		}),
		GroceryRegenerations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "mealplanner",
			Name:      "grocery_list_regenerations_total",
			Help:      "Times a week plan's grocery list was rebuilt.",
		}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mealplanner",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// RecipeGenerated adds n saved recipes for provider.
func (m *Metrics) RecipeGenerated(provider string, n int) {
	if m == nil {
		return
	}
	m.RecipesGenerated.WithLabelValues(provider).Add(float64(n))
}

// GenerationFailed counts one failed call to provider.
func (m *Metrics) GenerationFailed(provider string) {
	if m == nil {
		return
	}
	m.GenerationFailures.WithLabelValues(provider).Inc()
}

// CacheHit counts a generation served from the cache.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.GenerationCacheHits.Inc()
}

// GroceryRegenerated counts one grocery list rebuild.
func (m *Metrics) GroceryRegenerated() {
	if m == nil {
		return
	}
	m.GroceryRegenerations.Inc()
}

// Middleware observes request latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
