package sync_room

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers"
	"github.com/m04kA/SMC-SlotExchangeService/internal/service/rooms"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidSnapshot     = "некорректный снимок комнаты"
	msgConcurrentModifying = "комната изменена параллельным запросом, повторите попытку"
)

type Handler struct {
	service RoomService
	logger  Logger
}

func NewHandler(service RoomService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /internal/rooms/{roomId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	var req SyncRoomRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /internal/rooms/%s - Invalid request body: %v", roomID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	snapshot, err := req.ToDomain(roomID, time.Now().UTC())
	if err != nil {
		h.logger.Warn("PUT /internal/rooms/%s - Failed to parse snapshot: %v", roomID, err)
		handlers.RespondBadRequest(w, msgInvalidSnapshot)
		return
	}

	room, err := h.service.Sync(r.Context(), snapshot)
	if err != nil {
		switch {
		case errors.Is(err, rooms.ErrInvalidInput):
			h.logger.Warn("PUT /internal/rooms/%s - Invalid snapshot: %v", roomID, err)
			handlers.RespondBadRequest(w, msgInvalidSnapshot)

		case errors.Is(err, rooms.ErrConcurrentModification), errors.Is(err, rooms.ErrRoomBusy):
			handlers.RespondConflict(w, msgConcurrentModifying)

		default:
			h.logger.Error("PUT /internal/rooms/%s - Failed to sync room: %v", roomID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /internal/rooms/%s - Room synced: version=%d", roomID, room.Version)
	handlers.RespondJSON(w, http.StatusOK, FromDomain(room))
}
