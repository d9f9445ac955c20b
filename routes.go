package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/d3ming/ycx25-voter/config"
	"github.com/d3ming/ycx25-voter/services"
)

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// requestIDMiddleware übernimmt X-Request-ID oder vergibt eine neue ID.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// newRouter baut den Router; /health bleibt ohne API-Key erreichbar.
func newRouter(cfg *config.Config, companies *services.CompanyService, snapshots *services.SnapshotService, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(requestIDMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/metrics", apiKeyAuthMiddleware(cfg), gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(apiKeyAuthMiddleware(cfg))
	setupCompanyRoutes(api, companies, log)
	setupSearchRoutes(api, companies, log)
	setupSnapshotRoutes(api, snapshots, log)
	return router
}

// respondError bildet Service-Fehler auf HTTP-Status ab.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return 0, false
	}
	return uint(id), true
}

func setupCompanyRoutes(api *gin.RouterGroup, svc *services.CompanyService, log *zap.Logger) {
	rg := api.Group("/companies")

	rg.GET("", func(c *gin.Context) {
		companies, err := svc.ListSorted(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, companies)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		company, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, company)
	})

	rg.POST("/:id/rank", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req struct {
			Rank *int `json:"rank" form:"rank" binding:"required"`
		}
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'rank' field is required."})
			return
		}
		rank, err := svc.SetRank(c.Request.Context(), id, *req.Rank)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "rank": rank})
	})

	rankStep := func(step func(context.Context, uint) (int, error)) gin.HandlerFunc {
		return func(c *gin.Context) {
			id, ok := parseID(c)
			if !ok {
				return
			}
			rank, err := step(c.Request.Context(), id)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"id": id, "rank": rank})
		}
	}
	rg.POST("/:id/increment", rankStep(svc.IncrementRank))
	rg.POST("/:id/decrement", rankStep(svc.DecrementRank))

	rg.POST("/:id/tier", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req struct {
			Tier string `json:"tier" form:"tier" binding:"required"`
		}
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'tier' field is required."})
			return
		}
		tier, err := svc.SetTier(c.Request.Context(), id, req.Tier)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "tier": tier})
	})

	rg.POST("/:id/tags", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req struct {
			Tag string `json:"tag" form:"tag"`
		}
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := svc.AddTag(c.Request.Context(), id, req.Tag)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "tags": res.Tags, "index": res.Index, "added": res.Added})
	})

	rg.DELETE("/:id/tags/:index", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag index"})
			return
		}
		removed, tags, err := svc.RemoveTag(c.Request.Context(), id, index)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "removed": removed, "tags": tags})
	})
}

func setupSearchRoutes(api *gin.RouterGroup, svc *services.CompanyService, log *zap.Logger) {
	api.GET("/search", func(c *gin.Context) {
		filter := services.SearchFilter{
			Query: c.Query("q"),
			Tags:  c.QueryArray("tag"),
		}
		companies, err := svc.Search(c.Request.Context(), filter)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, companies)
	})

	api.GET("/stats", func(c *gin.Context) {
		stats, err := svc.Stats(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	})
}

func setupSnapshotRoutes(api *gin.RouterGroup, snapshots *services.SnapshotService, log *zap.Logger) {
	api.POST("/snapshots", func(c *gin.Context) {
		if snapshots == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage is not configured"})
			return
		}
		go func() {
			if _, err := snapshots.Export(context.Background()); err != nil {
				log.Error("Async snapshot export failed", zap.Error(err))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Snapshot export triggered."})
	})
}
