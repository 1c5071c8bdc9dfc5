package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "invodex/docs"
	"invodex/internal/handler"
	"invodex/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	corsOrigins []string,
	uploadH *handler.UploadHandler,
	extractionH *handler.ExtractionHandler,
	invoiceH *handler.InvoiceHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/health", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Upload routes
	upload := v1.Group("/upload")
	upload.POST("", uploadH.Upload)
	upload.GET("/status/:document_id", uploadH.Status)
	upload.POST("/validate", uploadH.Validate)

	// Extraction routes
	extract := v1.Group("/extract")
	extract.POST("/batch", extractionH.ExtractBatch)
	extract.GET("/status/:extraction_id", extractionH.Status)
	extract.POST("/:document_id", extractionH.Extract)

	// Invoice routes
	invoices := v1.Group("/invoices")
	invoices.GET("", invoiceH.List)
	invoices.GET("/statistics", invoiceH.Statistics)
	invoices.POST("/export", invoiceH.Export)
	invoices.POST("/backup", invoiceH.Backup)
	invoices.GET("/:id", invoiceH.Get)
	invoices.PUT("/:id", invoiceH.Update)
	invoices.DELETE("/:id", invoiceH.Delete)

	return r
}
