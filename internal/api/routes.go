package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/tcg-catalog/internal/api/handlers"
	"github.com/codyseavey/tcg-catalog/internal/api/middleware"
	"github.com/codyseavey/tcg-catalog/internal/catalog"
	"github.com/codyseavey/tcg-catalog/internal/config"
	"github.com/codyseavey/tcg-catalog/internal/services"
)

func SetupRouter(cfg config.Config, engine *catalog.Engine, priceWorker *services.PriceWorker, priceService *services.PriceService) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.Metrics())

	frontendPath := cfg.FrontendDistPath
	serveFrontend := frontendPath != "" && dirExists(frontendPath)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	cardHandler := handlers.NewCardHandler(engine)
	catalogHandler := handlers.NewCatalogHandler(engine)
	priceHandler := handlers.NewPriceHandler(priceWorker, priceService)

	suggestLimiter := middleware.NewRateLimiter(cfg.SuggestRateLimit, cfg.SuggestBurst)

	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("", cardHandler.ListCards)
			cards.GET("/suggest", suggestLimiter.Middleware(), cardHandler.Suggest)
			cards.GET("/:id", cardHandler.GetCard)
			cards.PUT("/:id/prices", priceHandler.SaveCardPrices)
		}

		cat := api.Group("/catalog")
		{
			cat.GET("/status", catalogHandler.GetStatus)
			cat.GET("/filters", catalogHandler.GetFilterOptions)
		}

		prices := api.Group("/prices")
		{
			prices.GET("/status", priceHandler.GetPriceStatus)
			prices.POST("", priceHandler.SavePrices)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if serveFrontend {
		indexPath := filepath.Join(frontendPath, "index.html")

		router.Static("/assets", filepath.Join(frontendPath, "assets"))
		router.StaticFile("/vite.svg", filepath.Join(frontendPath, "vite.svg"))

		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(indexPath)
		})
	}

	return router
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
