package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prioboard/prioboard-backend/internal/events"
	"github.com/prioboard/prioboard-backend/internal/tracker/domain"
	"github.com/prioboard/prioboard-backend/internal/tracker/service"
)

// Handler exposes the tracker over HTTP.
type Handler struct {
	svc    *service.TrackerService
	events *events.Broadcaster
}

// NewHandler creates a new tracker HTTP handler. The broadcaster may be nil
// when the event stream endpoint is not served.
func NewHandler(svc *service.TrackerService, events *events.Broadcaster) *Handler {
	return &Handler{svc: svc, events: events}
}

// ListProjects returns the full ordered project list with nested costs.
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetSummary returns the global aggregate.
func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CreateProject creates a new project.
func (h *Handler) CreateProject(c *gin.Context) {
	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	p, err := h.svc.CreateProject(c.Request.Context(), domain.ProjectFields{
		Name:                strings.TrimSpace(req.Name),
		ValueAdd:            req.ValueAdd,
		ValueAddDescription: req.ValueAddDescription,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProject replaces a project's fields.
func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	p, err := h.svc.UpdateProject(c.Request.Context(), id, domain.ProjectFields{
		Name:                strings.TrimSpace(req.Name),
		ValueAdd:            req.ValueAdd,
		ValueAddDescription: req.ValueAddDescription,
	})
	if err != nil {
		h.writeError(c, err, "failed to update project")
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProject deletes a project and its costs.
func (h *Handler) DeleteProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteProject(c.Request.Context(), id); err != nil {
		h.writeError(c, err, "failed to delete project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReorderProjects applies a full drag-and-drop ordering.
func (h *Handler) ReorderProjects(c *gin.Context) {
	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ProjectIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_ids is required"})
		return
	}

	if err := h.svc.Reorder(c.Request.Context(), req.ProjectIDs); err != nil {
		h.writeError(c, err, "failed to reorder projects")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MoveProject moves one project to a requested display position.
func (h *Handler) MoveProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req priorityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Priority == nil || *req.Priority < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "priority must be a non-negative integer"})
		return
	}

	// the wire carries a 0-based rank; the ordering engine works in 1-based
	// display positions
	if err := h.svc.MoveProject(c.Request.Context(), id, *req.Priority+1); err != nil {
		h.writeError(c, err, "failed to update priority")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateCost attaches a cost to a project.
func (h *Handler) CreateCost(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req costReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Description) == "" || req.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description and amount are required"})
		return
	}

	cost, err := h.svc.CreateCost(c.Request.Context(), projectID, domain.CostFields{
		Description: strings.TrimSpace(req.Description),
		Amount:      *req.Amount,
	})
	if err != nil {
		h.writeError(c, err, "failed to add cost")
		return
	}
	c.JSON(http.StatusOK, cost)
}

// UpdateCost replaces a cost's description and amount.
func (h *Handler) UpdateCost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req costReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Description) == "" || req.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description and amount are required"})
		return
	}

	cost, err := h.svc.UpdateCost(c.Request.Context(), id, domain.CostFields{
		Description: strings.TrimSpace(req.Description),
		Amount:      *req.Amount,
	})
	if err != nil {
		h.writeError(c, err, "failed to update cost")
		return
	}
	c.JSON(http.StatusOK, cost)
}

// DeleteCost removes a cost.
func (h *Handler) DeleteCost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteCost(c.Request.Context(), id); err != nil {
		h.writeError(c, err, "failed to delete cost")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, domain.ErrCostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "cost not found"})
	case errors.Is(err, domain.ErrProjectMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, domain.ErrInvalidPosition):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
