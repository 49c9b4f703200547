package respond_negotiation

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
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidTime         = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgRoomNotFound        = "комната не найдена"
	msgNegotiationNotFound = "переговоры не найдены"
	msgNotParticipant      = "пользователь не участвует в переговорах"
	msgInvalidInput        = "некорректный ответ"
	msgInvalidState        = "ответ невозможен в текущем состоянии"
	msgAlreadyResolved     = "переговоры уже завершены"
	msgOverlappingResponse = "вы уже ответили в других переговорах на пересекающееся время этой недели"
	msgSlotTaken           = "выбранное время занято"
	msgConcurrentModifying = "комната изменена параллельным запросом, повторите попытку"
)

type Handler struct {
	useCase RespondNegotiationUseCase
	logger  Logger
}

func NewHandler(useCase RespondNegotiationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/rooms/{roomId}/negotiations/{negotiationId}/respond
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	vars := mux.Vars(r)
	roomID, negotiationID := vars["roomId"], vars["negotiationId"]

	var req RespondNegotiationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /negotiations/%s/respond - Invalid request body: %v", negotiationID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(roomID, negotiationID, userID)
	if err != nil {
		h.logger.Warn("POST /negotiations/%s/respond - Failed to parse request: %v", negotiationID, err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Respond(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, negotiation.ErrRoomNotFound):
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, negotiation.ErrNegotiationNotFound):
			h.logger.Warn("POST /negotiations/%s/respond - Negotiation not found: room_id=%s", negotiationID, roomID)
			handlers.RespondNotFound(w, msgNegotiationNotFound)

		case errors.Is(err, negotiation.ErrNotParticipant), errors.Is(err, negotiation.ErrNotMember):
			h.logger.Warn("POST /negotiations/%s/respond - Not a participant: user_id=%s", negotiationID, userID)
			handlers.RespondForbidden(w, msgNotParticipant)

		case errors.Is(err, negotiation.ErrOverlappingResponse):
			h.logger.Warn("POST /negotiations/%s/respond - Overlapping response: user_id=%s", negotiationID, userID)
			handlers.RespondBadRequest(w, msgOverlappingResponse)

		case errors.Is(err, negotiation.ErrAlreadyResolved):
			handlers.RespondBadRequest(w, msgAlreadyResolved)

		case errors.Is(err, negotiation.ErrInvalidState):
			handlers.RespondBadRequest(w, msgInvalidState)

		case errors.Is(err, negotiation.ErrSlotTaken):
			handlers.RespondBadRequest(w, msgSlotTaken)

		case errors.Is(err, negotiation.ErrInvalidInput):
			h.logger.Warn("POST /negotiations/%s/respond - Invalid input: %v", negotiationID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, negotiation.ErrConcurrentModification):
			handlers.RespondConflict(w, msgConcurrentModifying)

		default:
			h.logger.Error("POST /negotiations/%s/respond - Failed to respond: user_id=%s, error=%v", negotiationID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /negotiations/%s/respond - Responded: user_id=%s, outcome=%s, auto_resolved=%d",
		negotiationID, userID, result.Outcome, len(result.AutoResolved))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
