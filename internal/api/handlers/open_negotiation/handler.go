package open_negotiation

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
	msgInvalidDateTime     = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgRoomNotFound        = "комната не найдена"
	msgNotOwner            = "открыть переговоры может только владелец комнаты"
	msgInvalidInput        = "некорректные параметры переговоров"
	msgSlotTaken           = "спорное время уже занято"
	msgConcurrentModifying = "комната изменена параллельным запросом, повторите попытку"
)

type Handler struct {
	useCase OpenNegotiationUseCase
	logger  Logger
}

func NewHandler(useCase OpenNegotiationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/rooms/{roomId}/negotiations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	roomID := mux.Vars(r)["roomId"]

	var req OpenNegotiationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /rooms/%s/negotiations - Invalid request body: %v", roomID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(roomID, userID)
	if err != nil {
		h.logger.Warn("POST /rooms/%s/negotiations - Failed to parse request: %v", roomID, err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Open(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, negotiation.ErrRoomNotFound):
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, negotiation.ErrNotOwner), errors.Is(err, negotiation.ErrNotMember):
			h.logger.Warn("POST /rooms/%s/negotiations - Not owner: user_id=%s", roomID, userID)
			handlers.RespondForbidden(w, msgNotOwner)

		case errors.Is(err, negotiation.ErrInvalidInput):
			h.logger.Warn("POST /rooms/%s/negotiations - Invalid input: %v", roomID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, negotiation.ErrSlotTaken):
			handlers.RespondBadRequest(w, msgSlotTaken)

		case errors.Is(err, negotiation.ErrConcurrentModification):
			handlers.RespondConflict(w, msgConcurrentModifying)

		default:
			h.logger.Error("POST /rooms/%s/negotiations - Failed to open negotiation: user_id=%s, error=%v", roomID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /rooms/%s/negotiations - Negotiation opened: negotiation_id=%s, type=%s",
		roomID, result.Negotiation.ID, result.Negotiation.Type)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
