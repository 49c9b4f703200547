package create_exchange_request

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotExchangeService/internal/api/middleware"
	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/logger"
)

type fakeUseCase struct {
	got *exchange.CreateRequest
	err error
}

func (f *fakeUseCase) Create(_ context.Context, req *exchange.CreateRequest) (*exchange.Result, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &exchange.Result{Request: &domain.ExchangeRequest{ID: "req-1", Status: domain.RequestPending}}, nil
}

func serve(h *Handler, userID, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/rooms/room-1/exchange-requests", strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"roomId": "room-1"})
	if userID != "" {
		r = r.WithContext(middleware.WithUserID(r.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, r)
	return rec
}

func TestHandle(t *testing.T) {
	const body = `{"targetUserId":"b","targetDay":"monday","targetTime":"09:00","targetDate":"2025-03-03","requesterSlotIds":["s1"]}`

	t.Run("created", func(t *testing.T) {
		uc := &fakeUseCase{}
		rec := serve(NewHandler(uc, logger.NewNop()), "a", body)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":"req-1"`)
		require.NotNil(t, uc.got)
		assert.Equal(t, "room-1", uc.got.RoomID)
		assert.Equal(t, "a", uc.got.UserID)
		assert.Equal(t, []string{"s1"}, uc.got.RequesterSlotIDs)
		require.NotNil(t, uc.got.TargetDate)
		assert.Equal(t, "2025-03-03", uc.got.TargetDate.Format(domain.DateFormat))
	})

	t.Run("missing user", func(t *testing.T) {
		rec := serve(NewHandler(&fakeUseCase{}, logger.NewNop()), "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad date", func(t *testing.T) {
		rec := serve(NewHandler(&fakeUseCase{}, logger.NewNop()), "a", `{"targetUserId":"b","targetDate":"03.03.2025"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	errorCases := []struct {
		err  error
		code int
	}{
		{exchange.ErrRoomNotFound, http.StatusNotFound},
		{exchange.ErrSlotNotFound, http.StatusNotFound},
		{exchange.ErrNotMember, http.StatusForbidden},
		{fmt.Errorf("%w: self", exchange.ErrInvalidInput), http.StatusBadRequest},
		{exchange.ErrDuplicateRequest, http.StatusBadRequest},
		{exchange.ErrConcurrentModification, http.StatusConflict},
		{exchange.ErrInternal, http.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := serve(NewHandler(&fakeUseCase{err: tc.err}, logger.NewNop()), "a", body)
			assert.Equal(t, tc.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}
