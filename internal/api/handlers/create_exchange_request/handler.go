package create_exchange_request

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
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgRoomNotFound        = "комната не найдена"
	msgSlotNotFound        = "слот не найден"
	msgNotMember           = "пользователь не является участником комнаты"
	msgInvalidInput        = "некорректные параметры запроса обмена"
	msgDuplicateRequest    = "открытый запрос на этот слот уже существует"
	msgConcurrentModifying = "комната изменена параллельным запросом, повторите попытку"
)

type Handler struct {
	useCase CreateExchangeUseCase
	logger  Logger
}

func NewHandler(useCase CreateExchangeUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/rooms/{roomId}/exchange-requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	roomID := mux.Vars(r)["roomId"]

	var req CreateExchangeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /rooms/%s/exchange-requests - Invalid request body: %v", roomID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(roomID, userID)
	if err != nil {
		h.logger.Warn("POST /rooms/%s/exchange-requests - Invalid target date: %v", roomID, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Create(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, exchange.ErrRoomNotFound):
			h.logger.Warn("POST /rooms/%s/exchange-requests - Room not found", roomID)
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, exchange.ErrSlotNotFound):
			h.logger.Warn("POST /rooms/%s/exchange-requests - Slot not found: user_id=%s, target=%s", roomID, userID, req.TargetUserID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, exchange.ErrNotMember):
			h.logger.Warn("POST /rooms/%s/exchange-requests - Not a member: user_id=%s", roomID, userID)
			handlers.RespondForbidden(w, msgNotMember)

		case errors.Is(err, exchange.ErrDuplicateRequest):
			h.logger.Warn("POST /rooms/%s/exchange-requests - Duplicate request: user_id=%s", roomID, userID)
			handlers.RespondBadRequest(w, msgDuplicateRequest)

		case errors.Is(err, exchange.ErrInvalidInput):
			h.logger.Warn("POST /rooms/%s/exchange-requests - Invalid input: %v", roomID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, exchange.ErrConcurrentModification):
			h.logger.Warn("POST /rooms/%s/exchange-requests - Concurrent modification", roomID)
			handlers.RespondConflict(w, msgConcurrentModifying)

		default:
			h.logger.Error("POST /rooms/%s/exchange-requests - Failed to create request: user_id=%s, error=%v", roomID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /rooms/%s/exchange-requests - Request created: request_id=%s, user_id=%s",
		roomID, result.Request.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
