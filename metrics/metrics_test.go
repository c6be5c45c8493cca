/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RoomOpened()
		m.RoomClosed("idle")
		m.ConnectionAttached()
		m.ConnectionDetached()
		m.AnswerRecorded("ACCEPTED")
		m.QuestionResolved("deadline")
		m.TeamEliminated()
		m.GameFinished("last_team_standing")
		m.BroadcastFailed()
	})
	assert.Nil(t, m.Registry())
}

func TestRoomGauge(t *testing.T) {
	m := New()

	m.RoomOpened()
	m.RoomOpened()
	m.RoomClosed("host")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rooms))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoomsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoomsClosed.WithLabelValues("host")))
}

func TestAnswersByResult(t *testing.T) {
	m := New()

	m.AnswerRecorded("ACCEPTED")
	m.AnswerRecorded("TOO_LATE")
	m.AnswerRecorded("ACCEPTED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Answers.WithLabelValues("ACCEPTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Answers.WithLabelValues("TOO_LATE")))
}

func TestInstrumentAndHandler(t *testing.T) {
	m := New()

	h := m.Instrument("/teapot", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil), nil)
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("/teapot", http.MethodGet, "418")))

	rec = httptest.NewRecorder()
	m.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quizroyale_http_requests_total")
}
