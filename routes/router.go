package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/probfile/tracker/config"
	"github.com/probfile/tracker/controllers"
	"github.com/probfile/tracker/middleware"
	"github.com/probfile/tracker/notify"
	"github.com/probfile/tracker/utils"
)

// SetupRouter wires middleware and the versioned API routes.
func SetupRouter(db *gorm.DB, gate *notify.Gate, dispatcher *notify.Dispatcher) *gin.Engine {
	cfg := config.Get()
	gin.SetMode(cfg.GinMode)

	router := gin.New()

	accessLogger, err := utils.NewRollingFileLogger(cfg.GinPath, "info",
		cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		router.Use(utils.Ginzap(accessLogger, time.RFC3339, true))
		router.Use(utils.RecoveryWithZap(accessLogger, true))
	} else {
		router.Use(gin.Logger(), gin.Recovery())
	}

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	authController := controllers.NewAuthController(db)
	fileController := controllers.NewFileController(db)
	taskController := controllers.NewTaskController(db)
	contactController := controllers.NewContactController(db)
	commentController := controllers.NewCommentController(db, gate, dispatcher)
	statsController := controllers.NewStatsController(db)

	v1 := router.Group("/api/v1")

	public := v1.Group("")
	public.Use(middleware.RateLimitMiddleware())
	{
		public.POST("/auth/register", authController.Register)
		public.POST("/auth/login", authController.Login)
	}

	private := v1.Group("")
	private.Use(middleware.AuthRequired())
	{
		private.GET("/auth/me", authController.Me)
		private.GET("/users", authController.ListUsers)

		private.GET("/files", fileController.ListFiles)
		private.POST("/files", fileController.CreateFile)
		private.GET("/files/:id", fileController.GetFile)
		private.PUT("/files/:id", fileController.UpdateFile)
		private.DELETE("/files/:id", fileController.DeleteFile)
		private.GET("/files/:id/gantt", fileController.GanttData)

		private.GET("/files/:id/contacts", contactController.ListContacts)
		private.POST("/files/:id/contacts", contactController.CreateContact)
		private.PUT("/contacts/:contactId", contactController.UpdateContact)
		private.DELETE("/contacts/:contactId", contactController.DeleteContact)

		private.POST("/tasks", taskController.CreateTask)
		private.PUT("/tasks/:id", taskController.UpdateTask)
		private.DELETE("/tasks/:id", taskController.DeleteTask)
		private.POST("/subtasks", taskController.CreateSubtask)
		private.PUT("/subtasks/:id", taskController.UpdateSubtask)
		private.DELETE("/subtasks/:id", taskController.DeleteSubtask)

		private.GET("/tasks/:id/comments", commentController.ListComments)
		private.POST("/tasks/:id/comments", commentController.CreateComment)
		private.GET("/subtasks/:id/comments", commentController.ListComments)
		private.POST("/subtasks/:id/comments", commentController.CreateComment)
		private.DELETE("/comments/:commentId", commentController.DeleteComment)

		private.GET("/stats/dashboard", statsController.Dashboard)
		private.GET("/stats/summary", statsController.ExecutiveSummary)
		private.GET("/stats/summary.csv", statsController.ExportSummaryCSV)
		private.GET("/stats/export", statsController.ExportAll)
	}

	return router
}
