package list_negotiations

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers"
	"github.com/m04kA/SMC-SlotExchangeService/internal/api/middleware"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/negotiation"
)

const (
	msgMissingUserID = "отсутствует идентификатор пользователя"
	msgRoomNotFound  = "комната не найдена"
	msgNotMember     = "пользователь не является участником комнаты"
)

type Handler struct {
	useCase ListNegotiationsUseCase
	logger  Logger
}

func NewHandler(useCase ListNegotiationsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/rooms/{roomId}/negotiations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	roomID := mux.Vars(r)["roomId"]

	result, err := h.useCase.List(r.Context(), &negotiation.ListRequest{RoomID: roomID, UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, negotiation.ErrRoomNotFound):
			h.logger.Warn("GET /rooms/%s/negotiations - Room not found", roomID)
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, negotiation.ErrNotMember):
			h.logger.Warn("GET /rooms/%s/negotiations - Not a member: user_id=%s", roomID, userID)
			handlers.RespondForbidden(w, msgNotMember)

		default:
			h.logger.Error("GET /rooms/%s/negotiations - Failed to list negotiations: user_id=%s, error=%v", roomID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /rooms/%s/negotiations - Success: user_id=%s, count=%d", roomID, userID, len(result))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
