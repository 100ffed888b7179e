package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teambot/internal/app"
	"teambot/internal/transport/http/middleware"
	"teambot/internal/transport/http/response"
)

type SquadHandler struct {
	squadService *app.SquadService
}

func NewSquadHandler(squadService *app.SquadService) *SquadHandler {
	return &SquadHandler{squadService: squadService}
}

type createSquadRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

func (h *SquadHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	var req createSquadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "invalid request payload")
		return
	}

	squad, err := h.squadService.CreateSquad(userID, app.CreateSquadInput{
		Name:        req.Name,
		Description: req.Description,
		Members:     req.Members,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, squad)
}

func (h *SquadHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	squad, err := h.squadService.GetSquad(c.Param("id"), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, squad)
}

func (h *SquadHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	squads, err := h.squadService.ListSquads(userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, squads)
}
