package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"teambot/internal/app"
	"teambot/internal/model"
	"teambot/internal/transport/http/middleware"
	"teambot/internal/transport/http/response"
)

type BotHandler struct {
	botService *app.BotService
}

func NewBotHandler(botService *app.BotService) *BotHandler {
	return &BotHandler{botService: botService}
}

type botConfigRequest struct {
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"maxTokens"`
	SystemPrompt string  `json:"systemPrompt"`
	EnableRAG    bool    `json:"enableRag"`
	RAGTopK      int     `json:"ragTopK"`
	RAGThreshold float64 `json:"ragThreshold"`
}

type createBotRequest struct {
	Name         string            `json:"name" binding:"required"`
	Description  string            `json:"description" binding:"required"`
	Instructions string            `json:"instructions" binding:"required"`
	Scope        string            `json:"scope" binding:"required"`
	SquadID      string            `json:"squadId"`
	Config       *botConfigRequest `json:"config"`
	Tags         []string          `json:"tags"`
}

type updateBotRequest struct {
	Name         *string           `json:"name"`
	Description  *string           `json:"description"`
	Instructions *string           `json:"instructions"`
	Status       *string           `json:"status"`
	Config       *botConfigRequest `json:"config"`
	Tags         *[]string         `json:"tags"`
}

func toBotConfig(req *botConfigRequest) model.BotConfig {
	if req == nil {
		return model.BotConfig{}
	}
	return model.BotConfig{
		Model:        req.Model,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
		SystemPrompt: req.SystemPrompt,
		EnableRAG:    req.EnableRAG,
		RAGTopK:      req.RAGTopK,
		RAGThreshold: req.RAGThreshold,
	}
}

func (h *BotHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	var req createBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "invalid request payload")
		return
	}

	bot, err := h.botService.CreateBot(userID, app.CreateBotInput{
		Name:         req.Name,
		Description:  req.Description,
		Instructions: req.Instructions,
		Scope:        req.Scope,
		SquadID:      req.SquadID,
		Config:       toBotConfig(req.Config),
		Tags:         req.Tags,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, bot)
}

func (h *BotHandler) Get(c *gin.Context) {
	bot, err := h.botService.GetBot(c.Param("id"), c.GetString(middleware.ContextUserIDKey))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, bot)
}

func (h *BotHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	query := app.ListBotsQuery{
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 20),
		Scope:     c.Query("scope"),
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		SquadID:   c.Query("squadId"),
		CreatedBy: c.Query("createdBy"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if raw := c.Query("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if t := strings.TrimSpace(tag); t != "" {
				query.Tags = append(query.Tags, t)
			}
		}
	}

	result, err := h.botService.ListBots(userID, query)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *BotHandler) Update(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	var req updateBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "invalid request payload")
		return
	}

	input := app.UpdateBotInput{
		Name:         req.Name,
		Description:  req.Description,
		Instructions: req.Instructions,
		Status:       req.Status,
		Tags:         req.Tags,
	}
	if req.Config != nil {
		cfg := toBotConfig(req.Config)
		input.Config = &cfg
	}

	bot, err := h.botService.UpdateBot(c.Param("id"), userID, input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, bot)
}

func (h *BotHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	botID := c.Param("id")

	if err := h.botService.DeleteBot(botID, userID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"deletedBotId": botID})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
