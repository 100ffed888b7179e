package app

import (
	"strings"

	"go.uber.org/zap"

	"teambot/internal/model"
	"teambot/internal/repository"
)

type BotService struct {
	bots   BotStore
	docs   DocumentStore
	chunks ChunkStore
	squads SquadStore
	logger *zap.Logger
}

func NewBotService(bots BotStore, docs DocumentStore, chunks ChunkStore, squads SquadStore, logger *zap.Logger) *BotService {
	return &BotService{
		bots:   bots,
		docs:   docs,
		chunks: chunks,
		squads: squads,
		logger: logger,
	}
}

type CreateBotInput struct {
	Name         string
	Description  string
	Instructions string
	Scope        string
	SquadID      string
	Config       model.BotConfig
	Tags         []string
}

// UpdateBotInput uses pointers so absent fields stay untouched.
type UpdateBotInput struct {
	Name         *string
	Description  *string
	Instructions *string
	Status       *string
	Config       *model.BotConfig
	Tags         *[]string
}

type ListBotsQuery struct {
	Page      int
	PageSize  int
	Scope     string
	Status    string
	Search    string
	Tags      []string
	SquadID   string
	CreatedBy string
	SortBy    string
	SortOrder string
}

type PaginatedBots struct {
	Items      []model.Bot `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

func (s *BotService) CreateBot(userID string, input CreateBotInput) (*model.Bot, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	instructions := strings.TrimSpace(input.Instructions)

	if len(name) < 3 || len(name) > 100 {
		return nil, ErrInvalidInput
	}
	if len(description) < 10 || len(description) > 500 {
		return nil, ErrInvalidInput
	}
	if len(instructions) < 20 || len(instructions) > 5000 {
		return nil, ErrInvalidInput
	}
	if !model.ValidScope(input.Scope) {
		return nil, ErrInvalidInput
	}
	if input.Scope == model.ScopeSquad {
		if input.SquadID == "" {
			return nil, ErrInvalidInput
		}
		squad, err := s.squads.GetByID(input.SquadID)
		if err != nil {
			return nil, err
		}
		if squad == nil {
			return nil, ErrSquadNotFound
		}
		if !squad.HasMember(userID) {
			return nil, ErrForbidden
		}
	}

	cfg := resolveBotConfig(input.Config)

	bot := &model.Bot{
		Name:         name,
		Description:  description,
		Instructions: instructions,
		Scope:        input.Scope,
		Status:       model.BotStatusActive,
		Config:       cfg,
		CreatedBy:    userID,
		SquadID:      input.SquadID,
		Tags:         model.StringList(input.Tags),
	}
	if err := s.bots.Create(bot); err != nil {
		return nil, err
	}

	s.logger.Info("bot created",
		zap.String("bot_id", bot.ID),
		zap.String("user_id", userID),
		zap.String("scope", bot.Scope),
	)
	return bot, nil
}

// GetBot enforces visibility: personal bots belong to their creator,
// squad bots require membership. An empty userID (unauthenticated read)
// is allowed through, matching the optional-auth read path.
func (s *BotService) GetBot(botID, userID string) (*model.Bot, error) {
	if botID == "" {
		return nil, ErrInvalidInput
	}
	bot, err := s.bots.GetByID(botID)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, ErrBotNotFound
	}
	if userID != "" {
		if err := s.checkVisibility(bot, userID); err != nil {
			return nil, err
		}
	}
	return bot, nil
}

func (s *BotService) checkVisibility(bot *model.Bot, userID string) error {
	switch bot.Scope {
	case model.ScopePersonal:
		if bot.CreatedBy != userID {
			return ErrForbidden
		}
	case model.ScopeSquad:
		if bot.CreatedBy == userID {
			return nil
		}
		squad, err := s.squads.GetByID(bot.SquadID)
		if err != nil {
			return err
		}
		if squad == nil || !squad.HasMember(userID) {
			return ErrForbidden
		}
	}
	return nil
}

func (s *BotService) ListBots(userID string, query ListBotsQuery) (*PaginatedBots, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}

	var memberSquadIDs []string
	if query.Scope == "" || query.Scope == model.ScopeSquad {
		ids, err := s.squads.SquadIDsForUser(userID)
		if err != nil {
			return nil, err
		}
		memberSquadIDs = ids
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.bots.List(repository.BotListFilter{
		UserID:         userID,
		MemberSquadIDs: memberSquadIDs,
		Scope:          query.Scope,
		Status:         query.Status,
		Search:         query.Search,
		Tags:           query.Tags,
		SquadID:        query.SquadID,
		CreatedBy:      query.CreatedBy,
		SortBy:         query.SortBy,
		SortOrder:      query.SortOrder,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &PaginatedBots{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *BotService) UpdateBot(botID, userID string, input UpdateBotInput) (*model.Bot, error) {
	if botID == "" || userID == "" {
		return nil, ErrInvalidInput
	}
	bot, err := s.bots.GetByID(botID)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, ErrBotNotFound
	}
	if bot.CreatedBy != userID {
		return nil, ErrForbidden
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < 3 || len(name) > 100 {
			return nil, ErrInvalidInput
		}
		bot.Name = name
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if len(description) < 10 || len(description) > 500 {
			return nil, ErrInvalidInput
		}
		bot.Description = description
	}
	if input.Instructions != nil {
		instructions := strings.TrimSpace(*input.Instructions)
		if len(instructions) < 20 || len(instructions) > 5000 {
			return nil, ErrInvalidInput
		}
		bot.Instructions = instructions
	}
	if input.Status != nil {
		if !model.ValidBotStatus(*input.Status) {
			return nil, ErrInvalidInput
		}
		bot.Status = *input.Status
	}
	if input.Config != nil {
		bot.Config = resolveBotConfig(*input.Config)
	}
	if input.Tags != nil {
		bot.Tags = model.StringList(*input.Tags)
	}

	if err := s.bots.Save(bot); err != nil {
		return nil, err
	}
	return bot, nil
}

// DeleteBot is a hard delete and cascades the bot's documents and their
// chunks, so orphaned retrieval data cannot linger.
func (s *BotService) DeleteBot(botID, userID string) error {
	if botID == "" || userID == "" {
		return ErrInvalidInput
	}
	bot, err := s.bots.GetByID(botID)
	if err != nil {
		return err
	}
	if bot == nil {
		return ErrBotNotFound
	}
	if bot.CreatedBy != userID {
		return ErrForbidden
	}

	docIDs, err := s.docs.ListIDsByBotID(botID)
	if err != nil {
		return err
	}
	for _, docID := range docIDs {
		if err := s.chunks.DeleteByDocumentID(docID); err != nil {
			return err
		}
	}
	if err := s.docs.DeleteByBotID(botID); err != nil {
		return err
	}
	if err := s.bots.Delete(botID); err != nil {
		return err
	}

	s.logger.Info("bot deleted", zap.String("bot_id", botID), zap.String("user_id", userID))
	return nil
}

func resolveBotConfig(cfg model.BotConfig) model.BotConfig {
	if cfg.Model == "" {
		cfg.Model = "gpt-4-turbo"
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = 0
	}
	if cfg.Temperature > 2 {
		cfg.Temperature = 2
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.MaxTokens > 8000 {
		cfg.MaxTokens = 8000
	}
	if cfg.RAGTopK <= 0 {
		cfg.RAGTopK = 5
	}
	if cfg.RAGTopK > 10 {
		cfg.RAGTopK = 10
	}
	return cfg
}
