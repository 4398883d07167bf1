// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/atommarket/atommarket-backend/internal/cache"
	"github.com/atommarket/atommarket-backend/internal/chain"
	"github.com/atommarket/atommarket-backend/internal/config"
	"github.com/atommarket/atommarket-backend/internal/handlers"
	"github.com/atommarket/atommarket-backend/internal/ipfs"
	"github.com/atommarket/atommarket-backend/internal/middleware"
	"github.com/atommarket/atommarket-backend/internal/services"
	"github.com/atommarket/atommarket-backend/internal/storage"
	"github.com/atommarket/atommarket-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize collaborators
	chainClient := chain.NewClient(cfg.Chain)
	gateway := ipfs.NewClient(cfg.Media)

	pinAudit := storage.NewNoopPinAuditStore()
	if db != nil {
		pinAudit = storage.NewPinAuditStore(db)
	}

	// Initialize services
	listingCache := cache.NewListingCache(chainClient, cfg.Market.PageSize)
	mediaService := services.NewMediaService(gateway, pinAudit, cfg.Media.MaxImages)
	listingService := services.NewListingService(chainClient, chainClient, mediaService,
		listingCache, cfg.Chain.Denom, cfg.Market.DenomFactor)
	profileService := services.NewProfileService(chainClient, chainClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg)
	listingHandler := handlers.NewListingHandler(listingService, listingCache,
		time.Duration(cfg.Market.DebounceMillis)*time.Millisecond)
	profileHandler := handlers.NewProfileHandler(profileService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/session", authHandler.CreateSession)
		}

		listings := v1.Group("/listings")
		{
			listings.GET("", listingHandler.GetListings)
			listings.GET("/search", listingHandler.SearchListings)
			listings.POST("/search/typeahead", listingHandler.TypeaheadSearch)
			listings.GET("/:id", listingHandler.GetListing)

			// Transitions require a session identity
			protected := listings.Group("")
			protected.Use(middleware.SessionRequired())
			protected.Use(middleware.ExecuteRateLimit())
			{
				protected.POST("", middleware.UploadRateLimit(), listingHandler.CreateListing)
				protected.DELETE("/:id", listingHandler.DeleteListing)
				protected.POST("/:id/purchase", listingHandler.Purchase)
				protected.POST("/:id/ship", listingHandler.MarkShipped)
				protected.POST("/:id/receive", listingHandler.MarkReceived)
				protected.POST("/:id/arbitrate", listingHandler.RequestArbitration)
				protected.POST("/:id/cancel", listingHandler.Cancel)
			}
		}

		profiles := v1.Group("/profiles")
		{
			profiles.GET("/:address", profileHandler.GetProfile)

			protected := profiles.Group("")
			protected.Use(middleware.SessionRequired())
			protected.Use(middleware.ExecuteRateLimit())
			{
				protected.POST("", profileHandler.CreateProfile)
				protected.DELETE("", profileHandler.DeleteProfile)
			}
		}
	}

	return r
}
