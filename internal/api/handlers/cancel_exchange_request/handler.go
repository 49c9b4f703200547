package cancel_exchange_request

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers"
	"github.com/m04kA/SMC-SlotExchangeService/internal/api/middleware"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
)

const (
	msgMissingUserID       = "отсутствует идентификатор пользователя"
	msgRoomNotFound        = "комната не найдена"
	msgRequestNotFound     = "запрос обмена не найден"
	msgForbidden           = "отменить запрос может только его автор"
	msgAlreadyResolved     = "запрос уже завершен"
	msgInvalidState        = "запрос нельзя отменить в текущем состоянии"
	msgConcurrentModifying = "комната изменена параллельным запросом, повторите попытку"
)

type Handler struct {
	useCase CancelExchangeUseCase
	logger  Logger
}

func NewHandler(useCase CancelExchangeUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/rooms/{roomId}/exchange-requests/{requestId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	vars := mux.Vars(r)
	roomID, requestID := vars["roomId"], vars["requestId"]

	result, err := h.useCase.Cancel(r.Context(), &exchange.CancelRequest{
		RoomID:    roomID,
		UserID:    userID,
		RequestID: requestID,
	})
	if err != nil {
		switch {
		case errors.Is(err, exchange.ErrRoomNotFound):
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, exchange.ErrRequestNotFound):
			h.logger.Warn("POST /exchange-requests/%s/cancel - Request not found: room_id=%s", requestID, roomID)
			handlers.RespondNotFound(w, msgRequestNotFound)

		case errors.Is(err, exchange.ErrWrongRespondent), errors.Is(err, exchange.ErrNotMember):
			h.logger.Warn("POST /exchange-requests/%s/cancel - Forbidden: user_id=%s", requestID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, exchange.ErrAlreadyResolved):
			handlers.RespondBadRequest(w, msgAlreadyResolved)

		case errors.Is(err, exchange.ErrInvalidState):
			handlers.RespondBadRequest(w, msgInvalidState)

		case errors.Is(err, exchange.ErrConcurrentModification):
			handlers.RespondConflict(w, msgConcurrentModifying)

		default:
			h.logger.Error("POST /exchange-requests/%s/cancel - Failed to cancel: user_id=%s, error=%v", requestID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /exchange-requests/%s/cancel - Request cancelled: user_id=%s", requestID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
