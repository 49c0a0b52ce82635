package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/player"
)

func TestWriteErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrGameNotFound, http.StatusNotFound, CodeGameNotFound},
		{fmt.Errorf("lookup: %w", model.ErrPlayerNotFound), http.StatusNotFound, CodePlayerNotFound},
		{model.ErrMatchDoesNotExist, http.StatusNotFound, CodeMatchDoesNotExist},
		{model.ErrTooLate, http.StatusConflict, CodeTooLate},
		{model.ErrPositionNotAvailable, http.StatusConflict, CodePositionNotAvailable},
		{model.ErrNotYourTurn, http.StatusConflict, CodeNotYourTurn},
		{model.ErrGameAlreadyEnded, http.StatusConflict, CodeGameAlreadyEnded},
		{model.ErrNotAPlayer, http.StatusForbidden, CodeNotAPlayer},
		{fmt.Errorf("%w: %q", model.ErrMalformedCell, "Z"), http.StatusBadRequest, CodeMalformedCell},
		{fmt.Errorf("%w: %q", model.ErrVariantUnknown, "GO"), http.StatusUnprocessableEntity, CodeVariantUnknown},
		{model.ErrSamePlayer, http.StatusUnprocessableEntity, CodeSamePlayer},
		{player.ErrInvalidDisplayName, http.StatusUnprocessableEntity, CodeInvalidDisplayName},
		{model.ErrPlayerExists, http.StatusConflict, CodePlayerExists},
		{model.ErrUserAlreadyQueued, http.StatusConflict, CodeUserAlreadyQueued},
		{model.ErrConflict, http.StatusConflict, CodeConflict},
		{NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
		{NewMissingPlayerError(), http.StatusUnauthorized, CodeMissingPlayer},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestInternalErrorsDoNotLeakMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("redis: connection refused"))

	assert.NotContains(t, rec.Body.String(), "redis")
}
