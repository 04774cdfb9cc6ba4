package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veldhuis/atelier/internal/invoice"
	"gorm.io/gorm"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	api := router.Group("/api")
	api.GET("/health", handleHealth(db))
	api.GET("/pipeline", handlePipeline(db))
	api.GET("/projects", handleProjectList(db))
	api.GET("/projects/:code", handleProjectDetail(db))
	api.GET("/review", handleReviewQueue(db))
	api.GET("/invoices/aging", handleInvoiceAging(db))
}

func handleHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handlePipeline(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := PipelineSummary(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"pipeline": rows})
	}
}

func handleProjectList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := ProjectList(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": rows})
	}
}

func handleProjectDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := ProjectByCode(db, c.Param("code"))
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func handleReviewQueue(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		rows, err := ReviewQueue(db, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"review": rows})
	}
}

func handleInvoiceAging(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		buckets, err := invoice.Aging(db, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"aging": buckets})
	}
}
