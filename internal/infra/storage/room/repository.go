package room

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/psqlbuilder"
)

const (
	tableRooms = "rooms"

	// uniqueViolationCode SQLSTATE 23505
	uniqueViolationCode = "23505"
)

var roomColumns = []string{
	"id",
	"owner_id",
	"name",
	"settings",
	"members",
	"time_slots",
	"requests",
	"negotiations",
	"version",
	"created_at",
	"updated_at",
}

// Repository хранит агрегат комнаты одной строкой: вложенные коллекции лежат в JSONB колонках
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория комнат
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// jsonColumns сериализованные части агрегата
type jsonColumns struct {
	settings     []byte
	members      []byte
	timeSlots    []byte
	requests     []byte
	negotiations []byte
}

func marshalRoom(room *domain.Room) (*jsonColumns, error) {
	var (
		cols jsonColumns
		err  error
	)
	if cols.settings, err = json.Marshal(room.Settings); err != nil {
		return nil, err
	}
	if cols.members, err = json.Marshal(nonNil(room.Members)); err != nil {
		return nil, err
	}
	if cols.timeSlots, err = json.Marshal(nonNil(room.TimeSlots)); err != nil {
		return nil, err
	}
	if cols.requests, err = json.Marshal(nonNil(room.Requests)); err != nil {
		return nil, err
	}
	if cols.negotiations, err = json.Marshal(nonNil(room.Negotiations)); err != nil {
		return nil, err
	}
	return &cols, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// travelPendingSince время запроса ожидающего решения о режиме поездки, NULL если решения нет
func travelPendingSince(room *domain.Room) sql.NullTime {
	if p := room.Settings.TravelMode.Pending; p != nil {
		return sql.NullTime{Time: p.RequestedAt, Valid: true}
	}
	return sql.NullTime{}
}

// Create создает комнату
func (r *Repository) Create(ctx context.Context, room *domain.Room) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	cols, err := marshalRoom(room)
	if err != nil {
		return fmt.Errorf("%w: Create - room id=%s: %v", ErrMarshal, room.ID, err)
	}

	query, args, err := psqlbuilder.Insert(tableRooms).
		Columns(
			"id",
			"owner_id",
			"name",
			"settings",
			"members",
			"time_slots",
			"requests",
			"negotiations",
			"travel_pending_since",
		).
		Values(
			room.ID,
			room.OwnerID,
			room.Name,
			cols.settings,
			cols.members,
			cols.timeSlots,
			cols.requests,
			cols.negotiations,
			travelPendingSince(room),
		).
		Suffix("RETURNING version, created_at, updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&room.Version,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
			return fmt.Errorf("%w: Create - room id=%s", ErrRoomExists, room.ID)
		}
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает комнату по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate получает комнату и блокирует строку до конца транзакции.
// Вне транзакции работает как GetByID.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Room, error) {
	return r.get(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) get(ctx context.Context, id string, forUpdate bool) (*domain.Room, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(roomColumns...).
		From(tableRooms).
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		room domain.Room
		cols jsonColumns
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&room.ID,
		&room.OwnerID,
		&room.Name,
		&cols.settings,
		&cols.members,
		&cols.timeSlots,
		&cols.requests,
		&cols.negotiations,
		&room.Version,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan room id=%s: %v", ErrScanRow, id, err)
	}

	if err := unmarshalRoom(&room, &cols); err != nil {
		return nil, fmt.Errorf("%w: GetByID - room id=%s: %v", ErrMarshal, id, err)
	}

	return &room, nil
}

func unmarshalRoom(room *domain.Room, cols *jsonColumns) error {
	if err := json.Unmarshal(cols.settings, &room.Settings); err != nil {
		return err
	}
	if err := json.Unmarshal(cols.members, &room.Members); err != nil {
		return err
	}
	if err := json.Unmarshal(cols.timeSlots, &room.TimeSlots); err != nil {
		return err
	}
	if err := json.Unmarshal(cols.requests, &room.Requests); err != nil {
		return err
	}
	return json.Unmarshal(cols.negotiations, &room.Negotiations)
}

// Save сохраняет агрегат целиком, если версия не изменилась с момента чтения.
// При успехе увеличивает room.Version.
func (r *Repository) Save(ctx context.Context, room *domain.Room) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	cols, err := marshalRoom(room)
	if err != nil {
		return fmt.Errorf("%w: Save - room id=%s: %v", ErrMarshal, room.ID, err)
	}

	query, args, err := psqlbuilder.Update(tableRooms).
		Set("owner_id", room.OwnerID).
		Set("name", room.Name).
		Set("settings", cols.settings).
		Set("members", cols.members).
		Set("time_slots", cols.timeSlots).
		Set("requests", cols.requests).
		Set("negotiations", cols.negotiations).
		Set("travel_pending_since", travelPendingSince(room)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": room.ID, "version": room.Version}).
		Suffix("RETURNING version, updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Save - build update query: %v", ErrBuildQuery, err)
	}

	var (
		version   int64
		updatedAt time.Time
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(&version, &updatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: Save - room id=%s version=%d", ErrVersionConflict, room.ID, room.Version)
	}
	if err != nil {
		return fmt.Errorf("%w: Save - execute update: %v", ErrExecQuery, err)
	}

	room.Version = version
	room.UpdatedAt = updatedAt
	return nil
}

// ListPendingTravelMode возвращает комнаты с решением о режиме поездки, запрошенным не позже before
func (r *Repository) ListPendingTravelMode(ctx context.Context, before time.Time) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From(tableRooms).
		Where(squirrel.NotEq{"travel_pending_since": nil}).
		Where(squirrel.LtOrEq{"travel_pending_since": before}).
		OrderBy("travel_pending_since ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingTravelMode - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingTravelMode - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListPendingTravelMode - scan: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPendingTravelMode - rows: %v", ErrScanRow, err)
	}

	return ids, nil
}
