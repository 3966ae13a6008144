package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"zonetrack/models"
	"zonetrack/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testZone(id, name string) *models.Zone {
	return &models.Zone{
		ID:        id,
		Name:      name,
		Type:      models.ZoneTypeCustom,
		Latitude:  37.7749,
		Longitude: -122.4194,
		Radius:    50,
		Priority:  models.ZonePriorityMedium,
		Status:    models.ZoneStatusActive,
		CreatedBy: "user-1",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestMemoryRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryZoneRepository()

	t.Run("get absent returns nil nil", func(t *testing.T) {
		zone, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, zone)
	})

	t.Run("insert and get", func(t *testing.T) {
		require.NoError(t, repo.Insert(ctx, testZone("z1", "Home")))

		zone, err := repo.Get(ctx, "z1")
		require.NoError(t, err)
		require.NotNil(t, zone)
		assert.Equal(t, "Home", zone.Name)
	})

	t.Run("update", func(t *testing.T) {
		zone, err := repo.Get(ctx, "z1")
		require.NoError(t, err)
		zone.Name = "Home Base"
		require.NoError(t, repo.Update(ctx, zone))

		reloaded, err := repo.Get(ctx, "z1")
		require.NoError(t, err)
		assert.Equal(t, "Home Base", reloaded.Name)
	})

	t.Run("update absent fails", func(t *testing.T) {
		err := repo.Update(ctx, testZone("missing", "Nope"))
		require.Error(t, err)
		serviceErr, ok := utils.GetServiceError(err)
		require.True(t, ok)
		assert.Equal(t, models.ErrCodeZoneNotFound, serviceErr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "z1"))
		zone, err := repo.Get(ctx, "z1")
		require.NoError(t, err)
		assert.Nil(t, zone)

		require.Error(t, repo.Delete(ctx, "z1"))
	})
}

func TestMemoryRepositoryListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryZoneRepository()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("z%d", i)
		require.NoError(t, repo.Insert(ctx, testZone(id, id)))
	}

	zones, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 5)
	for i, zone := range zones {
		assert.Equal(t, fmt.Sprintf("z%d", i), zone.ID)
	}

	// Re-inserting an existing id keeps its original position
	require.NoError(t, repo.Insert(ctx, testZone("z2", "renamed")))
	zones, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 5)
	assert.Equal(t, "z2", zones[2].ID)
	assert.Equal(t, "renamed", zones[2].Name)

	// Deleting removes the slot entirely
	require.NoError(t, repo.Delete(ctx, "z0"))
	zones, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 4)
	assert.Equal(t, "z1", zones[0].ID)
}

func TestMemoryRepositoryIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryZoneRepository()

	zone := testZone("z1", "Home")
	zone.DeviceIDs = []string{"d1"}
	zone.Metadata = map[string]string{"color": "blue"}
	require.NoError(t, repo.Insert(ctx, zone))

	// Mutating the returned record must not leak into the store
	got, err := repo.Get(ctx, "z1")
	require.NoError(t, err)
	got.DeviceIDs[0] = "hacked"
	got.Metadata["color"] = "red"

	fresh, err := repo.Get(ctx, "z1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, fresh.DeviceIDs)
	assert.Equal(t, "blue", fresh.Metadata["color"])
}

func TestMemoryRepositoryCountByCreator(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryZoneRepository()

	for i := 0; i < 3; i++ {
		zone := testZone(fmt.Sprintf("a%d", i), "A")
		zone.CreatedBy = "alice"
		require.NoError(t, repo.Insert(ctx, zone))
	}
	zone := testZone("b0", "B")
	zone.CreatedBy = "bob"
	require.NoError(t, repo.Insert(ctx, zone))

	count, err := repo.CountByCreator(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = repo.CountByCreator(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryRepositoryAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryZoneRepository()

	entries, err := repo.GetAccess(ctx, "z1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	granted := []models.ZoneAccessEntry{
		{UserID: "alice", Permission: models.ZonePermissionOwner, GrantedBy: "alice", GrantedAt: time.Now()},
		{UserID: "bob", Permission: models.ZonePermissionViewer, GrantedBy: "alice", GrantedAt: time.Now()},
	}
	require.NoError(t, repo.SetAccess(ctx, "z1", granted))

	entries, err = repo.GetAccess(ctx, "z1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ZonePermissionOwner, entries[0].Permission)

	require.NoError(t, repo.DeleteAccess(ctx, "z1"))
	entries, err = repo.GetAccess(ctx, "z1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
