package respond_chain_request

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
	msgRequestNotFound     = "звено цепочки не найдено"
	msgWrongRespondent     = "ответить на звено цепочки может только его адресат"
	msgInvalidAction       = "действие должно быть accept или reject"
	msgInvalidState        = "цепочка находится в неподходящем состоянии"
	msgAlreadyResolved     = "на звено цепочки уже ответили"
	msgStaleRequest        = "слоты цепочки изменились, цепочка не может быть завершена"
	msgConcurrentModifying = "комната изменена параллельным запросом, повторите попытку"
)

type Handler struct {
	useCase RespondChainUseCase
	logger  Logger
}

func NewHandler(useCase RespondChainUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/rooms/{roomId}/chain-exchange-requests/{requestId}/respond
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	vars := mux.Vars(r)
	roomID, requestID := vars["roomId"], vars["requestId"]

	var req RespondChainRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /chain-exchange-requests/%s/respond - Invalid request body: %v", requestID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.RespondChain(r.Context(), req.ToUseCaseRequest(roomID, requestID, userID))
	if err != nil {
		switch {
		case errors.Is(err, exchange.ErrRoomNotFound):
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, exchange.ErrRequestNotFound):
			h.logger.Warn("POST /chain-exchange-requests/%s/respond - Hop not found: room_id=%s", requestID, roomID)
			handlers.RespondNotFound(w, msgRequestNotFound)

		case errors.Is(err, exchange.ErrWrongRespondent), errors.Is(err, exchange.ErrNotMember):
			h.logger.Warn("POST /chain-exchange-requests/%s/respond - Wrong respondent: user_id=%s", requestID, userID)
			handlers.RespondForbidden(w, msgWrongRespondent)

		case errors.Is(err, exchange.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidAction)

		case errors.Is(err, exchange.ErrAlreadyResolved):
			handlers.RespondBadRequest(w, msgAlreadyResolved)

		case errors.Is(err, exchange.ErrInvalidState):
			h.logger.Warn("POST /chain-exchange-requests/%s/respond - Invalid state: %v", requestID, err)
			handlers.RespondBadRequest(w, msgInvalidState)

		case errors.Is(err, exchange.ErrStaleRequest):
			h.logger.Warn("POST /chain-exchange-requests/%s/respond - Stale chain: %v", requestID, err)
			handlers.RespondBadRequest(w, msgStaleRequest)

		case errors.Is(err, exchange.ErrConcurrentModification):
			handlers.RespondConflict(w, msgConcurrentModifying)

		default:
			h.logger.Error("POST /chain-exchange-requests/%s/respond - Failed to respond: user_id=%s, error=%v", requestID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /chain-exchange-requests/%s/respond - Responded: user_id=%s, status=%s, exchange_type=%s",
		requestID, userID, result.Request.Status, result.ExchangeType)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
