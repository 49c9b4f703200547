package cancel_negotiation_response

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers"
	"github.com/m04kA/SMC-SlotExchangeService/internal/api/middleware"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/negotiation"
)

const (
	msgMissingUserID       = "отсутствует идентификатор пользователя"
	msgRoomNotFound        = "комната не найдена"
	msgNegotiationNotFound = "переговоры не найдены"
	msgNotParticipant      = "пользователь не участвует в переговорах"
	msgNothingToCancel     = "ответа для отмены нет"
	msgAlreadyResolved     = "переговоры уже завершены"
	msgSlotTaken           = "время, освобождаемое отменой, уже занято"
	msgConcurrentModifying = "комната изменена параллельным запросом, повторите попытку"
)

type Handler struct {
	useCase CancelResponseUseCase
	logger  Logger
}

func NewHandler(useCase CancelResponseUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/rooms/{roomId}/negotiations/{negotiationId}/cancel-response
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	vars := mux.Vars(r)
	roomID, negotiationID := vars["roomId"], vars["negotiationId"]

	result, err := h.useCase.CancelResponse(r.Context(), &negotiation.CancelResponseRequest{
		RoomID:        roomID,
		UserID:        userID,
		NegotiationID: negotiationID,
	})
	if err != nil {
		switch {
		case errors.Is(err, negotiation.ErrRoomNotFound):
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, negotiation.ErrNegotiationNotFound):
			handlers.RespondNotFound(w, msgNegotiationNotFound)

		case errors.Is(err, negotiation.ErrNotParticipant), errors.Is(err, negotiation.ErrNotMember):
			h.logger.Warn("POST /negotiations/%s/cancel-response - Not a participant: user_id=%s", negotiationID, userID)
			handlers.RespondForbidden(w, msgNotParticipant)

		case errors.Is(err, negotiation.ErrAlreadyResolved):
			handlers.RespondBadRequest(w, msgAlreadyResolved)

		case errors.Is(err, negotiation.ErrInvalidState), errors.Is(err, negotiation.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgNothingToCancel)

		case errors.Is(err, negotiation.ErrSlotTaken):
			handlers.RespondBadRequest(w, msgSlotTaken)

		case errors.Is(err, negotiation.ErrConcurrentModification):
			handlers.RespondConflict(w, msgConcurrentModifying)

		default:
			h.logger.Error("POST /negotiations/%s/cancel-response - Failed to cancel response: user_id=%s, error=%v",
				negotiationID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /negotiations/%s/cancel-response - Response cancelled: user_id=%s", negotiationID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
