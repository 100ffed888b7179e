package app

import (
	"strings"

	"go.uber.org/zap"

	"teambot/internal/model"
)

type SquadService struct {
	squads SquadStore
	logger *zap.Logger
}

func NewSquadService(squads SquadStore, logger *zap.Logger) *SquadService {
	return &SquadService{squads: squads, logger: logger}
}

type CreateSquadInput struct {
	Name        string
	Description string
	Members     []string
}

func (s *SquadService) CreateSquad(userID string, input CreateSquadInput) (*model.Squad, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	name := strings.TrimSpace(input.Name)
	if len(name) < 3 || len(name) > 100 {
		return nil, ErrInvalidInput
	}

	members := make([]string, 0, len(input.Members)+1)
	seen := map[string]bool{userID: true}
	members = append(members, userID)
	for _, m := range input.Members {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		members = append(members, m)
	}

	squad := &model.Squad{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		OwnerID:     userID,
		Members:     model.StringList(members),
	}
	if err := s.squads.Create(squad); err != nil {
		return nil, err
	}

	s.logger.Info("squad created",
		zap.String("squad_id", squad.ID), zap.String("owner_id", userID))
	return squad, nil
}

func (s *SquadService) GetSquad(squadID, userID string) (*model.Squad, error) {
	if squadID == "" {
		return nil, ErrInvalidInput
	}
	squad, err := s.squads.GetByID(squadID)
	if err != nil {
		return nil, err
	}
	if squad == nil {
		return nil, ErrSquadNotFound
	}
	if userID != "" && !squad.HasMember(userID) {
		return nil, ErrForbidden
	}
	return squad, nil
}

func (s *SquadService) ListSquads(userID string) ([]model.Squad, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.squads.ListByMember(userID)
}
