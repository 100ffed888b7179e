package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateSquadOwnerIsMember(t *testing.T) {
	squads := newFakeSquadStore()
	svc := NewSquadService(squads, zap.NewNop())

	squad, err := svc.CreateSquad("alice", CreateSquadInput{
		Name:    "Platform",
		Members: []string{"bob", "bob", "alice", " "},
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", squad.OwnerID)
	assert.Equal(t, []string{"alice", "bob"}, []string(squad.Members))
}

func TestCreateSquadValidatesName(t *testing.T) {
	svc := NewSquadService(newFakeSquadStore(), zap.NewNop())

	_, err := svc.CreateSquad("alice", CreateSquadInput{Name: "ab"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetSquadMembersOnly(t *testing.T) {
	squads := newFakeSquadStore()
	svc := NewSquadService(squads, zap.NewNop())

	squad, err := svc.CreateSquad("alice", CreateSquadInput{Name: "Platform", Members: []string{"bob"}})
	require.NoError(t, err)

	_, err = svc.GetSquad(squad.ID, "bob")
	assert.NoError(t, err)

	_, err = svc.GetSquad(squad.ID, "mallory")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetSquad("missing", "alice")
	assert.ErrorIs(t, err, ErrSquadNotFound)
}

func TestListSquadsByMembership(t *testing.T) {
	squads := newFakeSquadStore()
	svc := NewSquadService(squads, zap.NewNop())

	_, err := svc.CreateSquad("alice", CreateSquadInput{Name: "Platform", Members: []string{"bob"}})
	require.NoError(t, err)
	_, err = svc.CreateSquad("carol", CreateSquadInput{Name: "Design"})
	require.NoError(t, err)

	mine, err := svc.ListSquads("bob")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Platform", mine[0].Name)
}
