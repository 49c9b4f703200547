package sync_room

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotExchangeService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SlotExchangeService/internal/service/rooms"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/logger"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/roomlock"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/txmanager"
)

const snapshotBody = `{
	"ownerId": "owner",
	"name": "Algebra",
	"members": [
		{"userId": "a", "defaultSchedule": [{"dayOfWeek": "monday", "startTime": "09:00", "endTime": "10:00", "priority": 3}]},
		{"userId": "b", "defaultSchedule": [{"specificDate": "2025-03-04", "startTime": "13:00", "endTime": "14:00", "priority": 2}]}
	],
	"settings": {
		"ownerSchedule": [{"day": "monday", "startTime": "09:00", "endTime": "12:00"}],
		"blockedIntervals": [{"dayOfWeek": "friday", "startTime": "12:00", "endTime": "13:00", "reason": "lunch"}],
		"requiredMinutesPerWeek": 60,
		"travelMode": {"mode": "offline"}
	},
	"timeSlots": [{"userId": "a", "date": "2025-03-03", "startTime": "09:00", "endTime": "10:00", "subject": "math"}]
}`

func serve(h *Handler, roomID, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPut, "/internal/rooms/"+roomID, strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"roomId": roomID})
	rec := httptest.NewRecorder()
	h.Handle(rec, r)
	return rec
}

func TestHandle(t *testing.T) {
	svc := rooms.NewService(memory.NewRepository(), txmanager.NewNoop(), roomlock.New(time.Second, nil), logger.NewNop())
	h := NewHandler(svc, logger.NewNop())

	rec := serve(h, "room-1", snapshotBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":"room-1","version":1,"members":2,"slots":2}`, rec.Body.String())

	room, err := svc.Get(context.Background(), "room-1")
	require.NoError(t, err)
	b, ok := room.Member("b")
	require.True(t, ok)
	require.Len(t, b.DefaultSchedule, 1)
	assert.Equal(t, time.Tuesday, b.DefaultSchedule[0].DayOfWeek)
	require.Len(t, room.Settings.BlockedIntervals, 1)
	require.NotNil(t, room.Settings.BlockedIntervals[0].DayOfWeek)
	assert.Equal(t, time.Friday, *room.Settings.BlockedIntervals[0].DayOfWeek)

	t.Run("resync keeps engine-owned slots", func(t *testing.T) {
		body := strings.Replace(snapshotBody, `"endTime": "10:00", "subject"`, `"endTime": "11:00", "subject"`, 1)
		rec := serve(h, "room-1", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"room-1","version":2,"members":2,"slots":2}`, rec.Body.String())
	})

	t.Run("invalid snapshots", func(t *testing.T) {
		for name, body := range map[string]string{
			"malformed":   `{`,
			"bad weekday": strings.Replace(snapshotBody, `"day": "monday"`, `"day": "funday"`, 1),
			"no owner":    strings.Replace(snapshotBody, `"ownerId": "owner"`, `"ownerId": ""`, 1),
			"stranger":    strings.Replace(snapshotBody, `{"userId": "a", "date"`, `{"userId": "z", "date"`, 1),
			"misaligned":  strings.Replace(snapshotBody, `"startTime": "09:00", "endTime": "10:00", "subject"`, `"startTime": "09:15", "endTime": "10:00", "subject"`, 1),
		} {
			rec := serve(h, "room-2", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		}
	})
}
