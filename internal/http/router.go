package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/maintenance-planner/internal/http/handlers"
	httpMW "github.com/yungbote/maintenance-planner/internal/http/middleware"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	HealthHandler    *httpH.HealthHandler
	PlanHandler      *httpH.PlanHandler
	ExecutionHandler *httpH.ExecutionHandler
	BackupHandler    *httpH.BackupHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestInfo())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.PlanHandler != nil {
			api.GET("/plans", cfg.PlanHandler.ListPlans)
			api.POST("/plans", cfg.PlanHandler.CreatePlan)
			api.GET("/plans/:id", cfg.PlanHandler.GetPlan)
			api.PUT("/plans/:id", cfg.PlanHandler.EditPlan)
			api.DELETE("/plans/:id", cfg.PlanHandler.DeletePlan)
			api.POST("/plans/:id/undelete", cfg.PlanHandler.UndeletePlan)
			api.POST("/plans/:id/executions", cfg.PlanHandler.StartExecution)
		}

		if cfg.ExecutionHandler != nil {
			api.GET("/executions", cfg.ExecutionHandler.ListExecutions)
			api.GET("/executions/:id", cfg.ExecutionHandler.GetExecution)
			api.POST("/executions/:id/complete", cfg.ExecutionHandler.CompleteExecution)
			api.POST("/executions/:id/reopen", cfg.ExecutionHandler.ReopenExecution)
			api.DELETE("/executions/:id", cfg.ExecutionHandler.DeleteExecution)
			api.POST("/execution-items/:id", cfg.ExecutionHandler.SetItemFinished)
		}

		if cfg.BackupHandler != nil {
			api.GET("/backup/export", cfg.BackupHandler.Export)
			api.POST("/backup/import", cfg.BackupHandler.Import)
		}
	}

	return r
}
