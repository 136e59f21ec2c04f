package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"aasha-server/internal/config"
	"aasha-server/internal/handlers"
	"aasha-server/internal/middleware"
	"aasha-server/internal/screening"
	"aasha-server/internal/store"
)

// Deps is what the routes need to build their handlers.
type Deps struct {
	Config   *config.Config
	Store    *store.Store
	Service  *screening.Service
	Sessions *screening.Sessions
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Store, deps.Config.Auth, deps.Log)
	dashboardHandler := handlers.NewDashboardHandler(deps.Service)
	patientHandler := handlers.NewPatientHandler(deps.Service, deps.Store)
	sessionHandler := handlers.NewSessionHandler(deps.Service, deps.Sessions, deps.Config.Analysis.MaxCaptureBytes, deps.Log)
	settingHandler := handlers.NewSettingHandler(deps.Store)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.GET("/status", authHandler.Status)
			authRoutes.POST("/pin", authHandler.SetPIN)
			authRoutes.POST("/unlock", authHandler.Unlock)
		}
	}

	// Routes behind the device lock
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(deps.Config.Auth))
	{
		private.GET("/catalog", handlers.GetCatalog)
		private.GET("/dashboard", dashboardHandler.GetDashboard)
		private.GET("/history", dashboardHandler.GetHistory)

		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("", patientHandler.ListPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID)
			patientRoutes.GET("/:id/screenings", patientHandler.GetPatientScreenings)
			patientRoutes.GET("/:id/screenings/latest", patientHandler.GetLatestScreening)
		}

		sessionRoutes := private.Group("/sessions")
		{
			sessionRoutes.POST("", sessionHandler.CreateSession)
			sessionRoutes.GET("/:id", sessionHandler.GetSession)
			sessionRoutes.DELETE("/:id", sessionHandler.AbandonSession)
			sessionRoutes.POST("/:id/patient", sessionHandler.RegisterPatient)
			sessionRoutes.PUT("/:id/patient/:patientId", sessionHandler.SelectPatient)
			sessionRoutes.POST("/:id/module", sessionHandler.SelectModule)
			sessionRoutes.POST("/:id/analysis", sessionHandler.Analyze)
			sessionRoutes.POST("/:id/result", sessionHandler.CompleteAnalysis)
			sessionRoutes.POST("/:id/acknowledge", sessionHandler.Acknowledge)
		}

		settingRoutes := private.Group("/settings")
		{
			settingRoutes.GET("/:key", settingHandler.GetSetting)
			settingRoutes.PUT("/:key", settingHandler.PutSetting)
		}
	}

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
