package router

import (
	"github.com/gin-gonic/gin"

	"github.com/nravish/kanakam-backend/config"
	"github.com/nravish/kanakam-backend/internal/app/controller"
	"github.com/nravish/kanakam-backend/internal/middleware"
)

type Router struct {
	productController *controller.ProductController
	rateController    *controller.MetalRateController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	rateController *controller.MetalRateController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		productController: productController,
		rateController:    rateController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "KANAKAM API is running",
		})
	})

	admin := []gin.HandlerFunc{
		r.authMiddleware.Authenticate(),
		r.authMiddleware.RequireRole("admin"),
	}

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/export", append(admin, r.productController.ExportPriceList)...)
			products.GET("/:id", r.productController.GetProductByID)

			products.POST("", append(admin, r.productController.CreateProduct)...)
			products.PUT("/:id", append(admin, r.productController.UpdateProduct)...)
			products.DELETE("/:id", append(admin, r.productController.DeleteProduct)...)

			products.POST("/:id/reprice", append(admin, r.productController.Reprice)...)

			products.POST("/:id/stones", append(admin, r.productController.AddStone)...)
			products.PATCH("/:id/stones/:index", append(admin, r.productController.UpdateStone)...)
			products.DELETE("/:id/stones/:index", append(admin, r.productController.RemoveStone)...)
		}

		rates := v1.Group("/rates")
		{
			rates.GET("/latest", r.rateController.GetLatestRates)
			rates.GET("/:metal", r.rateController.GetRateByMetal)
			rates.GET("/:metal/history", r.rateController.GetRateHistory)

			rates.POST("", append(admin, r.rateController.UpsertRate)...)
			rates.POST("/refresh", append(admin, r.rateController.RefreshFromFeed)...)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
