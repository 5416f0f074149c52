package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the settings the HTTP surface needs beyond the handler.
type RouterConfig struct {
	AllowedOrigins []string
	SessionSecret  string
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// NewRouter wires middleware and routes onto a new gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(h.Log))
	r.Use(h.Metrics.Middleware())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.Use(Identify([]byte(cfg.SessionSecret), h.Store, h.Log))

	api.GET("/recipes", h.GetRecipes)
	api.POST("/recipes/generate", h.GenerateRecipes)
	api.DELETE("/recipes/:id", h.ArchiveRecipe)

	api.GET("/week-plan", h.GetWeekPlan)
	api.POST("/week-plan", h.AddToWeekPlan)
	api.DELETE("/week-plan", h.RemoveFromWeekPlan)

	api.GET("/grocery-list", h.GetGroceryList)
	api.PATCH("/grocery-list", h.CheckGroceryItem)

	api.GET("/favorites/recipes", h.GetFavoriteRecipes)
	api.POST("/favorites/recipes", h.AddFavoriteRecipe)
	api.DELETE("/favorites/recipes", h.RemoveFavoriteRecipe)
	api.GET("/favorites/ingredients", h.GetFavoriteIngredients)
	api.POST("/favorites/ingredients", h.AddFavoriteIngredient)
	api.DELETE("/favorites/ingredients", h.RemoveFavoriteIngredient)

	homes := api.Group("/homes", RequireAuth())
	homes.GET("", h.GetHomes)
	homes.POST("", h.CreateHome)
	homes.POST("/select", h.SelectHome)
	homes.POST("/:homeId/invite", h.InviteToHome)
	homes.GET("/invites", h.GetInvites)
	homes.POST("/invites/accept", h.AcceptInvite)
	homes.POST("/invites/decline", h.DeclineInvite)

	api.GET("/dev/purge", h.DatabaseStats)
	api.POST("/dev/purge", h.PurgeDatabase)

	return r
}
