package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"teambot/internal/model"
)

type SquadRepository struct {
	db *gorm.DB
}

func NewSquadRepository(db *gorm.DB) *SquadRepository {
	return &SquadRepository{db: db}
}

func (r *SquadRepository) Create(squad *model.Squad) error {
	if err := r.db.Create(squad).Error; err != nil {
		return fmt.Errorf("create squad failed: %w", err)
	}
	return nil
}

func (r *SquadRepository) GetByID(id string) (*model.Squad, error) {
	var squad model.Squad
	if err := r.db.Where("id = ?", id).First(&squad).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get squad failed: %w", err)
	}
	return &squad, nil
}

// ListByMember returns squads the user owns or belongs to. Membership is
// a JSON array in a text column, so the lookup is a LIKE on the quoted id.
func (r *SquadRepository) ListByMember(userID string) ([]model.Squad, error) {
	var squads []model.Squad
	if err := r.db.Where("owner_id = ? OR members LIKE ?", userID, "%\""+userID+"\"%").
		Order("created_at DESC").
		Find(&squads).Error; err != nil {
		return nil, fmt.Errorf("list squads by member failed: %w", err)
	}
	return squads, nil
}

// SquadIDsForUser feeds the bot listing's squad-visibility branch.
func (r *SquadRepository) SquadIDsForUser(userID string) ([]string, error) {
	squads, err := r.ListByMember(userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(squads))
	for _, s := range squads {
		ids = append(ids, s.ID)
	}
	return ids, nil
}
