package http

import "github.com/gin-gonic/gin"

// Register registers the tracker routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/projects", h.ListProjects)
	rg.POST("/projects", h.CreateProject)
	rg.PUT("/projects/reorder", h.ReorderProjects)
	rg.PUT("/projects/:id", h.UpdateProject)
	rg.DELETE("/projects/:id", h.DeleteProject)
	rg.PUT("/projects/:id/priority", h.MoveProject)
	rg.POST("/projects/:id/costs", h.CreateCost)

	rg.PUT("/costs/:id", h.UpdateCost)
	rg.DELETE("/costs/:id", h.DeleteCost)

	rg.GET("/summary", h.GetSummary)
	rg.GET("/events", h.StreamEvents)
}
