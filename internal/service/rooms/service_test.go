package rooms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/logger"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/roomlock"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/txmanager"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	return NewService(repo, txmanager.NewNoop(), roomlock.New(time.Second, nil), logger.NewNop()), repo
}

func snapshot() *domain.Room {
	slot := domain.Atomize("a", domain.NewPlacement(monday, domain.NewInterval(types.MustParseTimeOfDay("09:00"), types.MustParseTimeOfDay("10:00"))),
		domain.SlotStatusConfirmed, "math")
	return &domain.Room{
		ID:        "room-1",
		OwnerID:   "owner",
		Name:      "Algebra",
		Members:   []domain.Member{{UserID: "a"}, {UserID: "b"}},
		TimeSlots: slot,
	}
}

func TestService_Sync(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	created, err := svc.Sync(ctx, snapshot())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)
	assert.Len(t, created.TimeSlots, 2)
	assert.NotNil(t, created.Requests)

	err = svc.Mutate(ctx, "room-1", func(_ context.Context, room *domain.Room) error {
		a, _ := room.Member("a")
		a.AddCarryOver(domain.CarryOverEntry{NegotiationID: "n1", Minutes: 60, Week: monday})
		room.TimeSlots = room.TimeSlots[:1]
		return nil
	})
	require.NoError(t, err)

	update := snapshot()
	update.Name = "Geometry"
	update.TimeSlots = nil
	update.Members = append(update.Members, domain.Member{UserID: "c"})

	updated, err := svc.Sync(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, "Geometry", updated.Name)
	assert.Len(t, updated.Members, 3)
	assert.Len(t, updated.TimeSlots, 1, "slots stay with the engine")
	a, ok := updated.Member("a")
	require.True(t, ok)
	assert.Equal(t, 60, a.CarryOver)

	t.Run("invalid snapshots", func(t *testing.T) {
		noOwner := snapshot()
		noOwner.OwnerID = ""
		_, err := svc.Sync(ctx, noOwner)
		assert.ErrorIs(t, err, ErrInvalidInput)

		stranger := snapshot()
		stranger.TimeSlots[0].UserID = "z"
		_, err = svc.Sync(ctx, stranger)
		assert.ErrorIs(t, err, ErrInvalidInput)

		overlap := snapshot()
		overlap.TimeSlots = append(overlap.TimeSlots, domain.Atomize("b", overlap.TimeSlots[0].Placement(), domain.SlotStatusConfirmed, "")...)
		_, err = svc.Sync(ctx, overlap)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_Mutate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)
	_, err := svc.Sync(ctx, snapshot())
	require.NoError(t, err)

	t.Run("not found", func(t *testing.T) {
		err := svc.Mutate(ctx, "missing", func(context.Context, *domain.Room) error { return nil })
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("callback error discards changes", func(t *testing.T) {
		boom := errors.New("boom")
		err := svc.Mutate(ctx, "room-1", func(_ context.Context, room *domain.Room) error {
			room.Name = "lost"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		room, err := repo.GetByID(ctx, "room-1")
		require.NoError(t, err)
		assert.Equal(t, "Algebra", room.Name)
	})

	t.Run("writers are serialized per room", func(t *testing.T) {
		before, err := svc.Get(ctx, "room-1")
		require.NoError(t, err)

		const writers = 20
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- svc.Mutate(ctx, "room-1", func(_ context.Context, room *domain.Room) error {
					room.Requests = append(room.Requests, domain.ExchangeRequest{ID: fmt.Sprintf("req-%d", i)})
					return nil
				})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		after, err := svc.Get(ctx, "room-1")
		require.NoError(t, err)
		assert.Len(t, after.Requests, writers)
		assert.Equal(t, before.Version+writers, after.Version)
	})
}

func TestService_GetForUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.Sync(ctx, snapshot())
	require.NoError(t, err)

	for _, user := range []string{"owner", "a"} {
		room, err := svc.GetForUser(ctx, "room-1", user)
		require.NoError(t, err, user)
		assert.Equal(t, "room-1", room.ID)
	}

	_, err = svc.GetForUser(ctx, "room-1", "stranger")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetForUser(ctx, "missing", "a")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
