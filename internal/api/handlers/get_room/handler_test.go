package get_room

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotExchangeService/internal/api/middleware"
	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SlotExchangeService/internal/service/rooms"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/logger"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/roomlock"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/txmanager"
)

func TestHandle(t *testing.T) {
	svc := rooms.NewService(memory.NewRepository(), txmanager.NewNoop(), roomlock.New(time.Second, nil), logger.NewNop())
	_, err := svc.Sync(context.Background(), &domain.Room{ID: "room-1", OwnerID: "owner", Members: []domain.Member{{UserID: "a"}}})
	require.NoError(t, err)
	h := NewHandler(svc, logger.NewNop())

	tests := []struct {
		name   string
		roomID string
		userID string
		code   int
	}{
		{"member", "room-1", "a", http.StatusOK},
		{"owner", "room-1", "owner", http.StatusOK},
		{"stranger", "room-1", "z", http.StatusForbidden},
		{"missing room", "room-9", "a", http.StatusNotFound},
		{"no user", "room-1", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/rooms/"+tt.roomID, nil)
			r = mux.SetURLVars(r, map[string]string{"roomId": tt.roomID})
			if tt.userID != "" {
				r = r.WithContext(middleware.WithUserID(r.Context(), tt.userID))
			}
			rec := httptest.NewRecorder()
			h.Handle(rec, r)

			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"id":"room-1"`)
			}
		})
	}
}
