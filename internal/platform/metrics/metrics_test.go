package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecipeGenerated("gemini", 6)
	m.RecipeGenerated("gemini", 2)
	m.GenerationFailed("local")
	m.CacheHit()
	m.GroceryRegenerated()
	m.GroceryRegenerated()

	assert.Equal(t, 8.0, testutil.ToFloat64(m.RecipesGenerated.WithLabelValues("gemini")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationFailures.WithLabelValues("local")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationCacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GroceryRegenerations))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecipeGenerated("gemini", 1)
		m.GenerationFailed("gemini")
		m.CacheHit()
		m.GroceryRegenerated()
	})
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration, "mealplanner_http_request_duration_seconds"))
}
