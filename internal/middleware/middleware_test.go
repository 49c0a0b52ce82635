package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/mcoot/gomoku-go/internal/testutil"
)

func TestLoggingRecordsStatusAndPlayer(t *testing.T) {
	logger, logs := testutil.NewLogCapture()

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", nil)
	req.Header.Set("X-Player-ID", "alice")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entry := logs.Last(t)
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.InDelta(t, 201, entry["status"], 0)
	assert.InDelta(t, 2, entry["size"], 0)
	assert.Equal(t, "alice", entry["player_id"])
}

func TestLoggingServerErrorsAtErrorLevel(t *testing.T) {
	logger, logs := testutil.NewLogCapture()

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	entry := logs.Last(t)
	assert.Equal(t, "ERROR", entry["level"])
	assert.NotContains(t, entry, "player_id")
}

func TestTracingPassesThrough(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Tracing())
	r.HandleFunc("/games/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/g1", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestResponseWriterFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &ResponseWriter{ResponseWriter: rec, status: http.StatusOK}
	rw.Flush()
	assert.True(t, rec.Flushed)
}

func TestRecoveryCallsPanicHandler(t *testing.T) {
	logger, logs := testutil.NewLogCapture()

	var recovered any
	h := Recovery(logger, func(w http.ResponseWriter, _ *http.Request, err any) {
		recovered = err
		w.WriteHeader(http.StatusTeapot)
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/games/g1", nil)
	req.Header.Set("X-Player-ID", "alice")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "boom", recovered)

	line := logs.Last(t)
	assert.Equal(t, "panic recovered", line["msg"])
	assert.Equal(t, "alice", line["player_id"])
	assert.Equal(t, "/api/v1/games/g1", line["path"])
}
