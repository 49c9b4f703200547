package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/infra/storage/room"
)

// Repository хранит комнаты в памяти процесса.
// Наружу всегда отдаются копии, поэтому изменения видны только после Save.
type Repository struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
	now   func() time.Time
}

// NewRepository создает пустой репозиторий
func NewRepository() *Repository {
	return &Repository{
		rooms: make(map[string]*domain.Room),
		now:   time.Now,
	}
}

// Create создает комнату
func (r *Repository) Create(_ context.Context, rm *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[rm.ID]; ok {
		return fmt.Errorf("%w: Create - room id=%s", room.ErrRoomExists, rm.ID)
	}

	now := r.now()
	rm.Version = 1
	rm.CreatedAt = now
	rm.UpdatedAt = now

	stored, err := rm.Clone()
	if err != nil {
		return fmt.Errorf("%w: Create - room id=%s: %v", room.ErrMarshal, rm.ID, err)
	}
	r.rooms[rm.ID] = stored
	return nil
}

// GetByID получает копию комнаты
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.rooms[id]
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	clone, err := stored.Clone()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - room id=%s: %v", room.ErrMarshal, id, err)
	}
	return clone, nil
}

// GetByIDForUpdate то же, что GetByID: сериализацию писателей обеспечивает блокировка комнаты
func (r *Repository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Room, error) {
	return r.GetByID(ctx, id)
}

// Save сохраняет комнату при совпадении версии
func (r *Repository) Save(_ context.Context, rm *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rooms[rm.ID]
	if !ok {
		return room.ErrRoomNotFound
	}
	if stored.Version != rm.Version {
		return fmt.Errorf("%w: Save - room id=%s version=%d, stored=%d",
			room.ErrVersionConflict, rm.ID, rm.Version, stored.Version)
	}

	rm.Version++
	rm.UpdatedAt = r.now()

	clone, err := rm.Clone()
	if err != nil {
		rm.Version--
		return fmt.Errorf("%w: Save - room id=%s: %v", room.ErrMarshal, rm.ID, err)
	}
	r.rooms[rm.ID] = clone
	return nil
}

// ListPendingTravelMode возвращает комнаты с решением о режиме поездки, запрошенным не позже before
func (r *Repository) ListPendingTravelMode(_ context.Context, before time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type pending struct {
		id    string
		since time.Time
	}
	var found []pending
	for id, rm := range r.rooms {
		p := rm.Settings.TravelMode.Pending
		if p != nil && !p.RequestedAt.After(before) {
			found = append(found, pending{id: id, since: p.RequestedAt})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].since.Equal(found[j].since) {
			return found[i].id < found[j].id
		}
		return found[i].since.Before(found[j].since)
	})

	ids := make([]string, 0, len(found))
	for _, f := range found {
		ids = append(ids, f.id)
	}
	return ids, nil
}
