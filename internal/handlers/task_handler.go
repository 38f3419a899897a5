package handlers

import (
	"net/http"

	"favr_backend/internal/middleware"
	"favr_backend/internal/services"
	"favr_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	*BaseHandler
	taskService  *services.TaskService
	claimService *services.ClaimService
}

func NewTaskHandler(base *BaseHandler, taskService *services.TaskService, claimService *services.ClaimService) *TaskHandler {
	return &TaskHandler{
		BaseHandler:  base,
		taskService:  taskService,
		claimService: claimService,
	}
}

func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// Browsing the open board has a tier_0 floor; no session needed.
	rg.GET("/tasks", h.ListOpen)
	rg.GET("/tasks/:id", h.Get)

	tasks := rg.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware())
	{
		tasks.POST("", h.Create)
		tasks.GET("/nearby", h.ListNearby)
		tasks.GET("/mine", h.ListMine)
		tasks.POST("/:id/claim", h.Claim)
		tasks.DELETE("/:id", h.Cancel)
	}
}

func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.taskService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) ListOpen(c *gin.Context) {
	var req dto.ListTasksRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	tasks, err := h.taskService.ListOpen(c.Request.Context(), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) ListNearby(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ListTasksRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	tasks, err := h.taskService.ListNearby(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) Claim(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	match, err := h.claimService.Claim(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, match)
}

func (h *TaskHandler) Cancel(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.taskService.Cancel(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task cancelled",
	})
}
