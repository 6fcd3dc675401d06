package v1

import (
	"github.com/gin-gonic/gin"

	"marketplace-server/services/moderation-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")
	group.POST("/submissions", r.handlers.Submission.Submit)
	group.GET("/submissions/:id", r.handlers.Submission.Get)
	group.GET("/submissions/:id/events", r.handlers.Submission.Events)
}
