package handlers

import (
	"net/http"

	"favr_backend/internal/middleware"
	"favr_backend/internal/models"
	"favr_backend/internal/services"
	"favr_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	*BaseHandler
	matchService   *services.MatchService
	messageService *services.MessageService
}

func NewMatchHandler(base *BaseHandler, matchService *services.MatchService, messageService *services.MessageService) *MatchHandler {
	return &MatchHandler{
		BaseHandler:    base,
		matchService:   matchService,
		messageService: messageService,
	}
}

func (h *MatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	matches := rg.Group("/matches")
	matches.Use(middleware.AuthMiddleware())
	{
		matches.GET("/mine", h.ListMine)
		matches.GET("/:id", h.Get)
		matches.POST("/:id/advance", h.Advance)
		matches.GET("/:id/messages", h.ListMessages)
		matches.POST("/:id/messages", h.SendMessage)
	}
}

func (h *MatchHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	match, err := h.matchService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}

func (h *MatchHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	matches, err := h.matchService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (h *MatchHandler) Advance(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.AdvanceMatchRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	match, err := h.matchService.Advance(c.Request.Context(), userID, c.Param("id"), models.MatchStatus(req.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}

func (h *MatchHandler) SendMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *MatchHandler) ListMessages(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	offset := (page - 1) * pageSize

	messages, err := h.messageService.List(c.Request.Context(), userID, c.Param("id"), pageSize, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
