package router

import (
	"github.com/consultorio-web/consultorio-backend/config"
	"github.com/consultorio-web/consultorio-backend/handlers"
	"github.com/consultorio-web/consultorio-backend/internal/websocket"
	"github.com/consultorio-web/consultorio-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config            *config.Config
	Sessions          middleware.SessionValidator
	HealthHandler     *handlers.HealthHandler
	AuthHandler       *handlers.AuthHandler
	ContentHandler    *handlers.ContentHandler
	CatalogHandler    *handlers.CatalogHandler
	ResourceHandler   *handlers.ResourceHandler
	FileHandler       *handlers.FileHandler
	SubmissionHandler *handlers.SubmissionHandler
	AdminHandler      *handlers.AdminHandler
	ChangeFeed        *websocket.Handler
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))

	// Health and Metrics Routes
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sessionAuth := middleware.SessionAuth(deps.Sessions)

	// Paths the admin panel calls outside /v1
	api := r.Group("/api")
	{
		api.POST("/login", deps.AuthHandler.LoginHandler)

		// Credentials are checked first so a misconfigured deployment reports
		// it even to callers without a session.
		data := api.Group("", middleware.RequireSecrets(deps.Config), sessionAuth)
		data.GET("/actividad", deps.SubmissionHandler.RecentActivityHandler)
		data.GET("/respuestas", deps.SubmissionHandler.AllSubmissionsHandler)
	}

	v1 := r.Group("/v1")
	{
		// Public site
		v1.GET("/contenido", deps.ContentHandler.ListContentHandler)
		v1.GET("/contenido/:id", deps.ContentHandler.GetContentHandler)
		v1.GET("/servicios", deps.CatalogHandler.ListServicesHandler)
		v1.GET("/servicios/:id", deps.CatalogHandler.GetServiceHandler)
		v1.GET("/formularios/:id", deps.CatalogHandler.GetFormHandler)
		v1.GET("/recursos", deps.ResourceHandler.ListResourcesHandler)
		v1.POST("/respuestas", deps.SubmissionHandler.CreateSubmissionHandler)

		if deps.ChangeFeed != nil {
			v1.GET("/cambios/ws", deps.ChangeFeed.HandleWebSocket)
		}

		admin := v1.Group("/admin", sessionAuth)
		{
			admin.GET("/session", deps.AuthHandler.SessionHandler)
			admin.POST("/logout", deps.AuthHandler.LogoutHandler)
			admin.GET("/estadisticas", deps.SubmissionHandler.StatsHandler)

			contentRoutes := admin.Group("/contenido")
			{
				contentRoutes.POST("", deps.ContentHandler.CreateContentHandler)
				contentRoutes.PUT("/:id", deps.ContentHandler.UpdateContentHandler)
				contentRoutes.DELETE("/:id", deps.ContentHandler.DeleteContentHandler)
			}

			serviceRoutes := admin.Group("/servicios")
			{
				serviceRoutes.GET("/diagnostico", deps.CatalogHandler.DiagnoseServicesHandler)
				serviceRoutes.POST("", deps.CatalogHandler.CreateServiceHandler)
				serviceRoutes.PUT("/:id", deps.CatalogHandler.UpdateServiceHandler)
				serviceRoutes.DELETE("/:id", deps.CatalogHandler.DeleteServiceHandler)
			}

			formRoutes := admin.Group("/formularios")
			{
				formRoutes.GET("", deps.CatalogHandler.ListFormsHandler)
				formRoutes.GET("/:id", deps.CatalogHandler.GetFormHandler)
				formRoutes.POST("", deps.CatalogHandler.CreateFormHandler)
				formRoutes.PUT("/:id", deps.CatalogHandler.UpdateFormHandler)
				formRoutes.DELETE("/:id", deps.CatalogHandler.DeleteFormHandler)
			}

			resourceRoutes := admin.Group("/recursos")
			{
				resourceRoutes.POST("", deps.ResourceHandler.CreateResourceHandler)
				resourceRoutes.PUT("/:id", deps.ResourceHandler.UpdateResourceHandler)
				resourceRoutes.DELETE("/:id", deps.ResourceHandler.DeleteResourceHandler)
				resourceRoutes.POST("/:id/items", deps.ResourceHandler.CreateItemHandler)
			}

			itemRoutes := admin.Group("/items")
			{
				itemRoutes.PUT("/:itemId", deps.ResourceHandler.UpdateItemHandler)
				itemRoutes.DELETE("/:itemId", deps.ResourceHandler.DeleteItemHandler)
			}

			admin.POST("/archivos", deps.FileHandler.UploadFileHandler)
			admin.DELETE("/archivos", deps.FileHandler.DeleteFileHandler)

			submissionRoutes := admin.Group("/respuestas")
			{
				submissionRoutes.GET("", deps.SubmissionHandler.ListSubmissionsHandler)
				submissionRoutes.GET("/export", deps.SubmissionHandler.ExportSubmissionsHandler)
				submissionRoutes.DELETE("/:id", deps.SubmissionHandler.DeleteSubmissionHandler)
			}

			operatorRoutes := admin.Group("/operadores")
			{
				operatorRoutes.GET("", deps.AdminHandler.ListOperatorsHandler)
				operatorRoutes.POST("", deps.AdminHandler.CreateOperatorHandler)
				operatorRoutes.DELETE("/:username", deps.AdminHandler.DeleteOperatorHandler)
			}

			cleanupRoutes := admin.Group("/limpieza")
			{
				cleanupRoutes.GET("", deps.AdminHandler.ListCleanupHandler)
				cleanupRoutes.POST("/procesar", deps.AdminHandler.ProcessCleanupHandler)
			}
		}
	}

	return r
}
