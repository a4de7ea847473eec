package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/frontdesk/internal/domain"
	"github.com/pkordes/frontdesk/internal/engine"
	"github.com/pkordes/frontdesk/internal/handler"
)

func TestGetSyncStatus(t *testing.T) {
	last := time.Date(2026, 10, 18, 8, 30, 0, 0, time.UTC)
	desk := &mockFrontDesk{
		status: func() engine.Status {
			return engine.Status{
				Online:   false,
				LastSync: last,
				Err:      fmt.Errorf("engine.Engine.resync: %w: dial tcp: connection refused", domain.ErrConnectivity),
				Pending:  1,
			}
		},
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodGet, "/sync/status", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.SyncStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Online)
	require.NotNil(t, body.LastSync)
	assert.True(t, last.Equal(*body.LastSync))
	assert.Contains(t, body.Error, "connection refused")
	assert.Equal(t, 1, body.Pending)
}

func TestGetSyncStatus_NeverSynced(t *testing.T) {
	desk := &mockFrontDesk{status: func() engine.Status { return engine.Status{Loading: true} }}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodGet, "/sync/status", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"loading":true,"online":false,"pending":0}`, rec.Body.String())
}

func TestPostSyncEvent(t *testing.T) {
	trig := &mockTrigger{}
	h := newHTTPHandler(&mockFrontDesk{}, trig)

	rec := do(t, h, http.MethodPost, "/sync/events", "", `{"event":"focus"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, h, http.MethodPost, "/sync/events", "", `{"event":"visibility","visible":false}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	rec = do(t, h, http.MethodPost, "/sync/events", "", `{"event":"visibility","visible":true}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	assert.Equal(t, 1, trig.focused)
	assert.Equal(t, []bool{false, true}, trig.visible)
}

func TestPostSyncEvent_Invalid(t *testing.T) {
	trig := &mockTrigger{}
	h := newHTTPHandler(&mockFrontDesk{}, trig)

	for _, body := range []string{`{"event":"blur"}`, `{"event":"visibility"}`, `{}`} {
		t.Run(body, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/sync/events", "", body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
	assert.Zero(t, trig.focused)
	assert.Empty(t, trig.visible)
}

func TestGetStatistics(t *testing.T) {
	desk := &mockFrontDesk{
		statistics: func() domain.Statistics {
			return domain.Statistics{
				TotalRooms:     49,
				OccupiedRooms:  7,
				OccupancyRate:  14.29,
				RoomsByType:    map[string]int{"Casal": 20},
				MonthlyRevenue: decimal.NewFromInt(5400),
			}
		},
	}
	h := newHTTPHandler(desk, &mockTrigger{})

	rec := do(t, h, http.MethodGet, "/statistics", "admin", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body domain.Statistics
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 49, body.TotalRooms)
	assert.Equal(t, 20, body.RoomsByType["Casal"])
	assert.True(t, body.MonthlyRevenue.Equal(decimal.NewFromInt(5400)))
}
