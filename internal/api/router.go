package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(taskHandler *TaskHandler, jwtSecret string) *Router {
	r := gin.Default()

	// Public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected: the Q&A web application enqueues tasks here.
	tasks := r.Group("/tasks")
	tasks.Use(AuthMiddleware(jwtSecret))
	tasks.Use(MetricsMiddleware())
	{
		tasks.POST("/post-updated", taskHandler.PostUpdated)
		tasks.POST("/question-visited", taskHandler.QuestionVisited)
		tasks.POST("/revision-published", taskHandler.RevisionPublished)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
