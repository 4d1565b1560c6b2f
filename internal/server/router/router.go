package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/server/handlers"
)

// Handlers groups every HTTP handler adapter the router mounts.
type Handlers struct {
	Forms     *handlers.FormHandler
	Sales     *handlers.SalesHandler
	Catalog   *handlers.CatalogHandler
	Directory *handlers.DirectoryHandler
	Reports   *handlers.ReportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	forms := api.Group("/forms")
	forms.POST("", h.Forms.Open)
	forms.GET("/:id", h.Forms.Get)
	forms.POST("/:id/events", h.Forms.Event)
	forms.POST("/:id/submit", h.Forms.Submit)
	forms.DELETE("/:id", h.Forms.Close)

	sales := api.Group("/sales")
	sales.GET("", h.Sales.List)
	sales.GET("/:id", h.Sales.Get)
	sales.DELETE("/:id", h.Sales.Delete)
	sales.POST("/:id/form", h.Forms.OpenEdit)

	catalog := api.Group("/catalog")
	catalog.GET("", h.Catalog.List)
	catalog.POST("", h.Catalog.Create)
	catalog.GET("/:id", h.Catalog.Get)
	catalog.PUT("/:id", h.Catalog.Update)
	catalog.DELETE("/:id", h.Catalog.Delete)
	catalog.GET("/:id/rates", h.Catalog.Rates)

	clients := api.Group("/clients")
	clients.GET("", h.Directory.ListClients)
	clients.POST("", h.Directory.CreateClient)
	clients.GET("/:id", h.Directory.GetClient)
	clients.PUT("/:id", h.Directory.UpdateClient)
	clients.DELETE("/:id", h.Directory.DeleteClient)

	locations := api.Group("/locations")
	locations.GET("", h.Directory.ListLocations)
	locations.POST("", h.Directory.CreateLocation)
	locations.GET("/events", h.Directory.LocationEvents)
	locations.PUT("/:id", h.Directory.UpdateLocation)
	locations.DELETE("/:id", h.Directory.DeleteLocation)

	leads := api.Group("/leads")
	leads.GET("", h.Directory.ListLeads)
	leads.POST("", h.Directory.CreateLead)
	leads.GET("/deal-choices", h.Directory.DealChoices)
	leads.PATCH("/:id", h.Directory.UpdateLead)
	leads.DELETE("/:id", h.Directory.DeleteLead)

	reports := api.Group("/reports")
	reports.GET("/dashboard", h.Reports.Dashboard)
	reports.GET("/clients", h.Reports.Clients)
	reports.POST("/digest", h.Reports.SendDigest)

	r.GET("/export.csv", h.Reports.ExportCSV)
	r.GET("/export.xlsx", h.Reports.ExportXLSX)
	api.POST("/export/sheet", h.Reports.SyncSheet)
	r.POST("/send-message", h.Reports.SendMessage)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
