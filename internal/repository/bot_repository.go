package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"teambot/internal/model"
)

type BotRepository struct {
	db *gorm.DB
}

func NewBotRepository(db *gorm.DB) *BotRepository {
	return &BotRepository{db: db}
}

// BotListFilter drives the bot listing query. When Scope is empty the
// default visibility filter applies: own personal bots, squad bots of
// squads the user belongs to, and all organization bots.
type BotListFilter struct {
	UserID         string
	MemberSquadIDs []string
	Scope          string
	Status         string
	Search         string
	Tags           []string
	SquadID        string
	CreatedBy      string
	SortBy         string
	SortOrder      string
	Page           int
	PageSize       int
}

func (r *BotRepository) Create(bot *model.Bot) error {
	if err := r.db.Create(bot).Error; err != nil {
		return fmt.Errorf("create bot failed: %w", err)
	}
	return nil
}

func (r *BotRepository) GetByID(id string) (*model.Bot, error) {
	var bot model.Bot
	if err := r.db.Where("id = ?", id).First(&bot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bot failed: %w", err)
	}
	return &bot, nil
}

func (r *BotRepository) Save(bot *model.Bot) error {
	if err := r.db.Save(bot).Error; err != nil {
		return fmt.Errorf("save bot failed: %w", err)
	}
	return nil
}

func (r *BotRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.Bot{}).Error; err != nil {
		return fmt.Errorf("delete bot failed: %w", err)
	}
	return nil
}

var botSortColumns = map[string]string{
	"createdAt":         "created_at",
	"name":              "name",
	"lastUsedAt":        "last_used_at",
	"conversationCount": "conversation_count",
}

func (r *BotRepository) List(filter BotListFilter) ([]model.Bot, int64, error) {
	q := r.db.Model(&model.Bot{})

	if filter.Scope != "" {
		q = q.Where("scope = ?", filter.Scope)
	} else {
		visibility := r.db.Where("scope = ? AND created_by = ?", model.ScopePersonal, filter.UserID).
			Or("scope = ?", model.ScopeOrganization)
		if len(filter.MemberSquadIDs) > 0 {
			visibility = visibility.Or("scope = ? AND squad_id IN ?", model.ScopeSquad, filter.MemberSquadIDs)
		}
		q = q.Where(visibility)
	}

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SquadID != "" {
		q = q.Where("squad_id = ?", filter.SquadID)
	}
	if filter.CreatedBy != "" {
		q = q.Where("created_by = ?", filter.CreatedBy)
	}
	for _, tag := range filter.Tags {
		q = q.Where("tags LIKE ?", "%\""+tag+"\"%")
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count bots failed: %w", err)
	}

	column, ok := botSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var bots []model.Bot
	if err := q.Order(column + " " + direction).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&bots).Error; err != nil {
		return nil, 0, fmt.Errorf("list bots failed: %w", err)
	}
	return bots, total, nil
}

// RecordUsage bumps the conversation counter and last-used timestamp.
// Best effort by contract: callers ignore failures.
func (r *BotRepository) RecordUsage(id string, usedAt time.Time) error {
	if err := r.db.Model(&model.Bot{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"conversation_count": gorm.Expr("conversation_count + 1"),
			"last_used_at":       usedAt,
		}).Error; err != nil {
		return fmt.Errorf("record bot usage failed: %w", err)
	}
	return nil
}
