package list_exchange_requests

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers"
	"github.com/m04kA/SMC-SlotExchangeService/internal/api/middleware"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
)

const (
	msgMissingUserID = "отсутствует идентификатор пользователя"
	msgRoomNotFound  = "комната не найдена"
	msgNotMember     = "пользователь не является участником комнаты"
)

type Handler struct {
	useCase ListExchangeUseCase
	logger  Logger
}

func NewHandler(useCase ListExchangeUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/rooms/{roomId}/exchange-requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	roomID := mux.Vars(r)["roomId"]

	result, err := h.useCase.List(r.Context(), &exchange.ListRequest{RoomID: roomID, UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, exchange.ErrRoomNotFound):
			h.logger.Warn("GET /rooms/%s/exchange-requests - Room not found", roomID)
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, exchange.ErrNotMember):
			h.logger.Warn("GET /rooms/%s/exchange-requests - Not a member: user_id=%s", roomID, userID)
			handlers.RespondForbidden(w, msgNotMember)

		default:
			h.logger.Error("GET /rooms/%s/exchange-requests - Failed to list requests: user_id=%s, error=%v", roomID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /rooms/%s/exchange-requests - Success: user_id=%s, sent=%d, received=%d",
		roomID, userID, len(result.Sent), len(result.Received))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
