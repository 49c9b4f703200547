package respond_exchange_request

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
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgRoomNotFound        = "комната не найдена"
	msgRequestNotFound     = "запрос обмена не найден"
	msgSlotNotFound        = "слот не найден"
	msgWrongRespondent     = "ответить на запрос может только его адресат"
	msgInvalidAction       = "действие должно быть accept или reject"
	msgInvalidState        = "запрос находится в неподходящем состоянии"
	msgAlreadyResolved     = "на запрос уже ответили"
	msgStaleRequest        = "слоты запроса изменились, создайте новый запрос"
	msgResolutionFailure   = "не удалось найти ни обмен, ни свободное время, ни цепочку; запрос отклонен"
	msgConcurrentModifying = "комната изменена параллельным запросом, повторите попытку"
)

type Handler struct {
	useCase RespondExchangeUseCase
	logger  Logger
}

func NewHandler(useCase RespondExchangeUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/rooms/{roomId}/exchange-requests/{requestId}/respond
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	vars := mux.Vars(r)
	roomID, requestID := vars["roomId"], vars["requestId"]

	var req RespondExchangeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /exchange-requests/%s/respond - Invalid request body: %v", requestID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Respond(r.Context(), req.ToUseCaseRequest(roomID, requestID, userID))
	if err != nil {
		switch {
		case errors.Is(err, exchange.ErrRoomNotFound):
			h.logger.Warn("POST /exchange-requests/%s/respond - Room not found: room_id=%s", requestID, roomID)
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, exchange.ErrRequestNotFound):
			h.logger.Warn("POST /exchange-requests/%s/respond - Request not found: room_id=%s", requestID, roomID)
			handlers.RespondNotFound(w, msgRequestNotFound)

		case errors.Is(err, exchange.ErrSlotNotFound):
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, exchange.ErrWrongRespondent), errors.Is(err, exchange.ErrNotMember):
			h.logger.Warn("POST /exchange-requests/%s/respond - Wrong respondent: user_id=%s", requestID, userID)
			handlers.RespondForbidden(w, msgWrongRespondent)

		case errors.Is(err, exchange.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidAction)

		case errors.Is(err, exchange.ErrAlreadyResolved):
			h.logger.Warn("POST /exchange-requests/%s/respond - Already resolved", requestID)
			handlers.RespondBadRequest(w, msgAlreadyResolved)

		case errors.Is(err, exchange.ErrInvalidState):
			h.logger.Warn("POST /exchange-requests/%s/respond - Invalid state: %v", requestID, err)
			handlers.RespondBadRequest(w, msgInvalidState)

		case errors.Is(err, exchange.ErrStaleRequest):
			h.logger.Warn("POST /exchange-requests/%s/respond - Stale request: %v", requestID, err)
			handlers.RespondBadRequest(w, msgStaleRequest)

		case errors.Is(err, exchange.ErrResolutionFailure):
			h.logger.Info("POST /exchange-requests/%s/respond - No resolution, request rejected", requestID)
			handlers.RespondBadRequest(w, msgResolutionFailure)

		case errors.Is(err, exchange.ErrConcurrentModification):
			h.logger.Warn("POST /exchange-requests/%s/respond - Concurrent modification", requestID)
			handlers.RespondConflict(w, msgConcurrentModifying)

		default:
			h.logger.Error("POST /exchange-requests/%s/respond - Failed to respond: user_id=%s, error=%v", requestID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /exchange-requests/%s/respond - Responded: user_id=%s, status=%s, exchange_type=%s",
		requestID, userID, result.Request.Status, result.ExchangeType)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
