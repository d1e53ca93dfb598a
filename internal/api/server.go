// Package api exposes the roster and the attendance ledger over HTTP.
package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendance-tracker/internal/attendance"
	"attendance-tracker/internal/auth"
	"attendance-tracker/internal/config"
	"attendance-tracker/internal/httpmiddleware"
	"attendance-tracker/internal/queue"
	"attendance-tracker/internal/roster"
	"attendance-tracker/internal/store"
	"attendance-tracker/internal/summary"
)

// Deps are the collaborators the handlers need. Redis is optional.
type Deps struct {
	Config    config.App
	DB        *store.DB
	Redis     *store.Redis
	Roster    *roster.Store
	Ledger    *attendance.Service
	Summaries *summary.Service
	Queue     queue.Queue
	Signer    *auth.Signer
	Limiter   httpmiddleware.Limiter
}

// Server holds the handlers.
type Server struct {
	Deps
}

// NewRouter wires middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	s := &Server{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.Metrics())
	r.Use(corsMiddleware(d.Config.HTTP.CORSOrigins))
	r.Use(httpmiddleware.SecurityHeaders())
	if d.Limiter != nil {
		r.Use(httpmiddleware.RateLimit(d.Limiter))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.healthz)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/teacher-login", s.teacherLogin)
	authGroup.POST("/student-login", s.studentLogin)
	authGroup.POST("/refresh", s.refresh)

	teacher := r.Group("/api/teacher", auth.Authenticate(d.Signer), auth.RequireRole(auth.RoleTeacher))
	teacher.POST("/students", s.createStudent)
	teacher.GET("/students", s.listStudents)
	teacher.GET("/students/:id", s.getStudent)
	teacher.PUT("/students/:id", s.updateStudent)
	teacher.POST("/classes", s.createClass)
	teacher.GET("/classes", s.listClasses)
	teacher.GET("/periods", s.listPeriods)
	teacher.POST("/attendance", s.markOne)
	teacher.GET("/attendance", s.historyJoined)
	teacher.GET("/attendance/periodwise", s.periodwise)
	teacher.POST("/attendance/periodwise", s.markBatch)

	student := r.Group("/api/student", auth.Authenticate(d.Signer), auth.RequireRole(auth.RoleStudent), auth.SelfOnly("id"))
	student.GET("/attendance/:id", s.studentHistory)
	student.GET("/summary/:id", s.studentSummary)
	student.PUT("/password/:id", s.changePassword)

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", httpmiddleware.RequestIDHeader},
		ExposeHeaders: []string{httpmiddleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func (s *Server) healthz(c *gin.Context) {
	ctx := c.Request.Context()
	dbHealthy := s.DB.Healthy(ctx)
	body := gin.H{"db": dbHealthy}
	healthy := dbHealthy
	if s.Redis != nil {
		redisHealthy := s.Redis.Healthy(ctx)
		body["redis"] = redisHealthy
		healthy = healthy && redisHealthy
	}

	status := http.StatusOK
	body["status"] = "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
