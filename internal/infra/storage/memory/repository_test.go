package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/infra/storage/room"
)

func TestRepository_CreateGetSave(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	rm := &domain.Room{ID: "r1", OwnerID: "owner", Members: []domain.Member{{UserID: "a"}}}
	require.NoError(t, repo.Create(ctx, rm))
	assert.Equal(t, int64(1), rm.Version)
	assert.ErrorIs(t, repo.Create(ctx, &domain.Room{ID: "r1"}), room.ErrRoomExists)

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	loaded, err := repo.GetByIDForUpdate(ctx, "r1")
	require.NoError(t, err)
	loaded.Name = "changed"

	again, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, again.Name, "loaded copies are isolated")

	require.NoError(t, repo.Save(ctx, loaded))
	assert.Equal(t, int64(2), loaded.Version)

	// again still carries version 1
	again.Name = "stale"
	assert.ErrorIs(t, repo.Save(ctx, again), room.ErrVersionConflict)

	final, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "changed", final.Name)
	assert.Equal(t, int64(2), final.Version)
}

func TestRepository_ListPendingTravelMode(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	base := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

	withPending := func(id string, at time.Time) *domain.Room {
		return &domain.Room{ID: id, Settings: domain.Settings{TravelMode: domain.TravelMode{
			Mode:    "offline",
			Pending: &domain.TravelDecision{Mode: "online", RequestedBy: "owner", RequestedAt: at},
		}}}
	}
	require.NoError(t, repo.Create(ctx, withPending("late", base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, withPending("old", base.Add(-2*time.Hour))))
	require.NoError(t, repo.Create(ctx, withPending("edge", base)))
	require.NoError(t, repo.Create(ctx, &domain.Room{ID: "none"}))

	ids, err := repo.ListPendingTravelMode(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "edge"}, ids)
}
