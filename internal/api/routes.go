package api

import (
	"alcyxob/weekly-routines/internal/repository"
	"alcyxob/weekly-routines/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services bundles what the handlers need.
type Services struct {
	Auth     service.AuthService
	Routines service.RoutineService
	Schedule service.ScheduleService
	Export   service.ExportService
	Users    repository.UserRepository
	Pinger   repository.Pinger
}

// RouterOptions controls the ambient middleware.
type RouterOptions struct {
	Logger         *zap.Logger
	MetricsEnabled bool
	MetricsPath    string
	RequestTimeout time.Duration
}

func SetupRoutes(router *gin.Engine, opts RouterOptions, svc Services) {
	authHandler := NewAuthHandler(svc.Auth, svc.Users)
	routineHandler := NewRoutineHandler(svc.Routines)
	scheduleHandler := NewScheduleHandler(svc.Schedule)
	exportHandler := NewExportHandler(svc.Export)

	router.Use(RequestLogger(opts.Logger), RequestTimeout(opts.RequestTimeout))
	if opts.MetricsEnabled {
		router.Use(MetricsMiddleware())
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	router.GET("/ping", func(c *gin.Context) {
		if svc.Pinger != nil {
			if err := svc.Pinger.Ping(c.Request.Context()); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"message": "store unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(svc.Auth))
	{
		protected.GET("/me", authHandler.Me)

		// --- Routine Routes ---
		routineGroup := protected.Group("/routines")
		{
			routineGroup.POST("", routineHandler.CreateRoutine)
			routineGroup.GET("", routineHandler.ListRoutines)
			routineGroup.GET("/:id", routineHandler.GetRoutine)
			routineGroup.PUT("/:id", routineHandler.UpdateRoutine)
			routineGroup.DELETE("/:id", routineHandler.DeleteRoutine)

			routineGroup.POST("/:id/exercises", routineHandler.AddExercise)
			routineGroup.PUT("/:id/exercises/:exerciseId", routineHandler.UpdateExercise)
			routineGroup.DELETE("/:id/exercises/:exerciseId", routineHandler.RemoveExercise)
		}

		// --- Schedule Routes ---
		scheduleGroup := protected.Group("/schedule")
		{
			scheduleGroup.GET("", scheduleHandler.GetWeek)
			scheduleGroup.PUT("/:day", scheduleHandler.AssignDay)
			scheduleGroup.DELETE("/:day", scheduleHandler.UnassignDay)
		}

		protected.POST("/exports", exportHandler.CreateExport)
	}
}
