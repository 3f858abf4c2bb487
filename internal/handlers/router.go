package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Shadow-TermDev/whats-links-backend/internal/services"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter) *gin.Engine {
	r := gin.Default()

	// Middleware
	r.Use(h.RequestID())
	if rateLimiter != nil {
		r.Use(h.RateLimitMiddleware(rateLimiter))
	}

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}
	if h.cfg.CORSOrigin == "*" || h.cfg.CORSOrigin == "" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{h.cfg.CORSOrigin}
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "whats-links API up"})
	})

	api := r.Group("/api")

	// Public Routes
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	// Protected Routes
	authorized := api.Group("")
	authorized.Use(h.AuthRequired())
	{
		authorized.GET("/auth/me", h.Me)
		authorized.PUT("/auth/username", h.ChangeUsername)
		authorized.GET("/auth/profiles", h.ListProfiles)
		authorized.DELETE("/auth/delete", h.DeleteAccount)

		authorized.GET("/categories", h.ListCategories)
		authorized.POST("/categories", h.CreateCategory)
		authorized.DELETE("/categories/:name", h.DeleteCategoryByName)

		authorized.POST("/links", h.SubmitLink)
		authorized.GET("/links", h.ListLinks)
		authorized.DELETE("/links/:id", h.DeleteLink)
		authorized.GET("/links/categories", h.ListLinkCategories)
		authorized.DELETE("/links/categories/:id", h.DeleteCategoryByID)
	}

	return r
}
