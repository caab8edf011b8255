package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	appErrors "github.com/Teo-Te/ClassSync-sub001/pkg/errors"
)

type mockRoomRepo struct {
	items      map[string]*models.Room
	nameIndex  map[string]string
	listResult []models.Room
	listTotal  int
	deleted    []string
}

func (m *mockRoomRepo) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockRoomRepo) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if room, ok := m.items[id]; ok {
		cp := *room
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoomRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	if owner, ok := m.nameIndex[name]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRoomRepo) Create(ctx context.Context, room *models.Room) error {
	if m.items == nil {
		m.items = make(map[string]*models.Room)
	}
	if room.ID == "" {
		room.ID = "generated"
	}
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	cp := *room
	m.items[room.ID] = &cp
	return nil
}

func (m *mockRoomRepo) Update(ctx context.Context, room *models.Room) error {
	cp := *room
	m.items[room.ID] = &cp
	return nil
}

func (m *mockRoomRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func TestRoomServiceCreate(t *testing.T) {
	repo := &mockRoomRepo{}
	service := NewRoomService(repo, validator.New(), zap.NewNop())

	room, err := service.Create(context.Background(), CreateRoomRequest{
		Name:     "Auditorium A",
		Type:     models.SessionLecture,
		Capacity: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionLecture, room.Type)
	assert.Len(t, repo.items, 1)
}

func TestRoomServiceCreateRejectsUnknownType(t *testing.T) {
	service := NewRoomService(&mockRoomRepo{}, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateRoomRequest{
		Name:     "Lab 3",
		Type:     "workshop",
		Capacity: 20,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceCreateDuplicateName(t *testing.T) {
	repo := &mockRoomRepo{nameIndex: map[string]string{"Auditorium A": "another"}}
	service := NewRoomService(repo, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateRoomRequest{
		Name:     "Auditorium A",
		Type:     models.SessionLecture,
		Capacity: 120,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceUpdateAppliesDeltas(t *testing.T) {
	repo := &mockRoomRepo{
		items: map[string]*models.Room{
			"r1": {ID: "r1", Name: "Room 101", Type: models.SessionSeminar, Capacity: 30},
		},
	}
	service := NewRoomService(repo, validator.New(), zap.NewNop())

	capacity := 36
	updated, err := service.Update(context.Background(), "r1", UpdateRoomRequest{Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 36, updated.Capacity)
	assert.Equal(t, models.SessionSeminar, updated.Type)
}

func TestRoomServiceDeleteNotFound(t *testing.T) {
	service := NewRoomService(&mockRoomRepo{}, validator.New(), zap.NewNop())

	err := service.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
