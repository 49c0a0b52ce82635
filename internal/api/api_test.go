package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gomoku-go/internal/api"
	"github.com/mcoot/gomoku-go/internal/api/apierr"
	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/factory"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/testutil"
)

// testServer wires the router onto a test app with a mock clock
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:                testutil.NopLogger(),
		PlayerService:         app.PlayerService,
		GameController:        app.GameController,
		MatchmakingController: app.MatchmakingController,
		HubManager:            app.HubManager,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, playerID string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createPlayer(t *testing.T, id string) {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"id": id, "display_name": strings.ToUpper(id)}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func (ts *testServer) createGame(t *testing.T, black, white, variant string) response.Game {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{
		"player_black": black,
		"player_white": white,
		"variant":      variant,
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var g response.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &g))
	return g
}

func (ts *testServer) play(gameID, playerID, cell string) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, "/api/v1/games/"+gameID+"/rounds", map[string]any{"cell": cell}, playerID)
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestListVariants(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/variants", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.VariantList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Variants, 7)
	assert.Equal(t, "STANDARD", resp.Variants[0].Name)
	assert.Equal(t, 15, resp.Variants[0].BoardDim)
}

func TestCreateAndGetPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"display_name": "Alice"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var created response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "Alice", created.DisplayName)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/v1/players/"+created.ID, rr.Header().Get("Location"))

	rr = ts.request(http.MethodGet, "/api/v1/players/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/"+created.ID+"/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var stats response.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.GamesPlayed)
}

func TestCreatePlayerErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"id": "alice", "display_name": "Again"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodePlayerExists, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/players", map[string]string{"display_name": "   "}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, apierr.CodeInvalidDisplayName, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/players/nobody", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, errorCode(t, rr))
}

func TestInvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/players", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
}

func TestCreateGameErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")
	ts.createPlayer(t, "bob")

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"player_black": "alice", "player_white": "bob", "variant": "GO"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, apierr.CodeVariantUnknown, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/games", map[string]string{"player_black": "alice", "player_white": "alice", "variant": "STANDARD"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, apierr.CodeSamePlayer, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/games", map[string]string{"player_black": "alice", "variant": "STANDARD"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlayRoundRequiresPlayerHeader(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")
	ts.createPlayer(t, "bob")
	g := ts.createGame(t, "alice", "bob", "STANDARD")

	rr := ts.play(g.ID, "", "8H")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeMissingPlayer, errorCode(t, rr))
}

func TestPlayGameToWin(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")
	ts.createPlayer(t, "bob")
	g := ts.createGame(t, "alice", "bob", "STANDARD")
	assert.Equal(t, "NEXT_PLAYER_BLACK", g.State)
	require.NotNil(t, g.Deadline)

	for _, col := range []string{"A", "B", "C", "D"} {
		rr := ts.play(g.ID, "alice", "1"+col)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		rr = ts.play(g.ID, "bob", "2"+col)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr := ts.play(g.ID, "alice", "1E")
	require.Equal(t, http.StatusOK, rr.Code)

	var result response.RoundResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, "YOU_WON", result.Outcome)
	assert.Equal(t, "PLAYER_BLACK_WON", result.Game.State)
	assert.Equal(t, "alice", result.Game.Winner)
	assert.Nil(t, result.Game.Deadline)
	assert.Len(t, result.Game.Board.Moves, 9)

	rr = ts.request(http.MethodGet, "/api/v1/ranking", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var ranking response.Ranking
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ranking))
	require.Len(t, ranking.Players, 2)
	assert.Equal(t, "alice", ranking.Players[0].PlayerID)
	assert.Equal(t, 110, ranking.Players[0].Points)
	assert.Equal(t, 1, ranking.Players[0].Rank)
}

func TestPlayRoundRejections(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")
	ts.createPlayer(t, "bob")
	ts.createPlayer(t, "carol")
	g := ts.createGame(t, "alice", "bob", "STANDARD")

	tests := []struct {
		name   string
		player string
		cell   string
		status int
		code   string
	}{
		{"out of turn", "bob", "8H", http.StatusConflict, apierr.CodeNotYourTurn},
		{"stranger", "carol", "8H", http.StatusForbidden, apierr.CodeNotAPlayer},
		{"malformed cell", "alice", "H8", http.StatusBadRequest, apierr.CodeMalformedCell},
		{"leading zero", "alice", "08H", http.StatusBadRequest, apierr.CodeMalformedCell},
		{"empty cell", "alice", "", http.StatusBadRequest, apierr.CodeMalformedCell},
		{"off the board", "alice", "16A", http.StatusConflict, apierr.CodePositionNotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.play(g.ID, tt.player, tt.cell)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, errorCode(t, rr))
		})
	}

	rr := ts.play(g.ID, "alice", "8H")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.play(g.ID, "bob", "8H")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodePositionNotAvailable, errorCode(t, rr))

	rr = ts.play("missing", "alice", "8H")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlayRoundWithoutCellLeavesGameUntouched(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")
	ts.createPlayer(t, "bob")
	g := ts.createGame(t, "alice", "bob", "STANDARD")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/rounds", map[string]any{}, "alice")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeMalformedCell, errorCode(t, rr))

	stored, err := ts.app.GameController.GetGame(context.Background(), model.GameID(g.ID))
	require.NoError(t, err)
	assert.Equal(t, model.GameStateNextPlayerBlack, stored.State)
	assert.Empty(t, stored.Board.Moves)
	assert.Equal(t, g.Version, stored.Version)
}

func TestLateRoundForfeits(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")
	ts.createPlayer(t, "bob")
	g := ts.createGame(t, "alice", "bob", "STANDARD")

	ts.app.MockClock.Advance(10 * time.Minute)

	rr := ts.play(g.ID, "alice", "8H")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeTooLate, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/games/"+g.ID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var stored response.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stored))
	assert.Equal(t, "PLAYER_WHITE_WON", stored.State)
}

func TestSwapDecision(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")
	ts.createPlayer(t, "bob")
	g := ts.createGame(t, "alice", "bob", "SWAP")

	rr := ts.play(g.ID, "alice", "8H")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/rounds", map[string]any{"wants_to_swap": true}, "bob")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result response.RoundResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, "bob", result.Game.PlayerBlack)
	assert.Equal(t, "alice", result.Game.PlayerWhite)
}

func TestLeaveGame(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")
	ts.createPlayer(t, "bob")
	g := ts.createGame(t, "alice", "bob", "STANDARD")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/leave", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	var left response.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &left))
	assert.Equal(t, "PLAYER_WHITE_WON", left.State)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+g.ID+"/leave", nil, "bob")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeGameAlreadyEnded, errorCode(t, rr))
}

func TestListGames(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")
	ts.createPlayer(t, "bob")
	ts.createPlayer(t, "carol")
	ts.createGame(t, "alice", "bob", "STANDARD")
	ts.app.MockClock.Advance(time.Second)
	newest := ts.createGame(t, "carol", "bob", "CARO")

	rr := ts.request(http.MethodGet, "/api/v1/games", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var all response.GameList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	require.Len(t, all.Games, 2)
	assert.Equal(t, newest.ID, all.Games[0].ID)

	rr = ts.request(http.MethodGet, "/api/v1/games?player=alice", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var mine response.GameList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &mine))
	assert.Len(t, mine.Games, 1)
}

func TestMatchmakingFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")
	ts.createPlayer(t, "bob")

	rr := ts.request(http.MethodPost, "/api/v1/matchmaking", map[string]string{"variant": "RENJU"}, "alice")
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	var queued response.MatchmakingResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &queued))
	assert.False(t, queued.Matched)
	assert.Equal(t, "PENDING", queued.Entry.Status)

	rr = ts.request(http.MethodPost, "/api/v1/matchmaking", map[string]string{"variant": "RENJU"}, "alice")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeUserAlreadyQueued, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/matchmaking", map[string]string{"variant": "RENJU"}, "bob")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var matched response.MatchmakingResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &matched))
	assert.True(t, matched.Matched)
	require.NotNil(t, matched.Game)
	assert.Equal(t, "alice", matched.Game.PlayerBlack)
	assert.Equal(t, "bob", matched.Game.PlayerWhite)
	assert.Equal(t, "/api/v1/games/"+matched.Game.ID, rr.Header().Get("Location"))

	rr = ts.request(http.MethodGet, "/api/v1/matchmaking/"+queued.Entry.ID, nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	var entry response.MatchmakingEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entry))
	assert.Equal(t, "MATCHED", entry.Status)
	assert.Equal(t, matched.Game.ID, entry.GameID)

	rr = ts.request(http.MethodGet, "/api/v1/matchmaking/"+queued.Entry.ID, nil, "bob")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExitMatchmaking(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/matchmaking", map[string]string{"variant": "STANDARD"}, "alice")
	require.Equal(t, http.StatusAccepted, rr.Code)
	var queued response.MatchmakingResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &queued))

	rr = ts.request(http.MethodDelete, "/api/v1/matchmaking/"+queued.Entry.ID, nil, "alice")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/matchmaking/"+queued.Entry.ID, nil, "alice")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeMatchDoesNotExist, errorCode(t, rr))
}

func TestPlayerEventsOnlyForSelf(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")

	rr := ts.request(http.MethodGet, "/api/v1/players/alice/events", nil, "bob")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGameEventsStream(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "alice")
	ts.createPlayer(t, "bob")
	g := ts.createGame(t, "alice", "bob", "STANDARD")

	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/games/"+g.ID+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "event: connected\n", line)

	rr := ts.play(g.ID, "alice", "8H")
	require.Equal(t, http.StatusOK, rr.Code)

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: round_played") {
			break
		}
	}
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"cell":"8H"`)
}
