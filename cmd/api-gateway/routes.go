package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-enrollment-api/api/swagger"
	"github.com/noah-isme/course-enrollment-api/internal/handler"
	"github.com/noah-isme/course-enrollment-api/internal/middleware"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	"github.com/noah-isme/course-enrollment-api/pkg/config"
	"github.com/noah-isme/course-enrollment-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-enrollment-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-enrollment-api/pkg/tracing"
)

type routeHandlers struct {
	classes     *handler.ClassHandler
	enrollments *handler.EnrollmentHandler
	instructors *handler.InstructorHandler
	health      *handler.HealthHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h routeHandlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(tracing.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.ResponseMeta())

	r.GET("/health", h.health.Live)
	r.GET("/ready", h.health.Ready)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	classes := api.Group("/classes")
	classes.GET("", h.classes.List)
	classes.POST("", h.classes.Create)
	classes.DELETE("/:classId/sections/:sectionNumber", h.classes.DeleteSection)
	classes.PUT("/:classId/freeze", h.classes.Freeze)
	classes.PUT("/:classId/instructor", h.classes.ReassignInstructor)

	classes.POST("/:classId/enrollments", h.enrollments.Enroll)
	classes.DELETE("/:classId/enrollments/:studentId", h.enrollments.Drop)
	classes.GET("/:classId/waitlist", h.instructors.Waitlist)
	classes.GET("/:classId/waitlist/:studentId", h.enrollments.WaitlistPosition)
	classes.DELETE("/:classId/waitlist/:studentId", h.enrollments.LeaveWaitlist)
	classes.GET("/:classId/drops", h.instructors.DroppedStudents)
	classes.GET("/:classId/roster", h.instructors.Roster)

	api.PUT("/admin/freeze", h.classes.GlobalFreeze)
	api.GET("/instructors/:instructorId/enrollments", h.instructors.Enrollment)
	api.GET("/students/:studentId/waitlists", h.enrollments.StudentWaitlists)

	return r
}
