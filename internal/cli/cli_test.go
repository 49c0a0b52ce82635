package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/model"
)

func TestClientSendsPlayerHeader(t *testing.T) {
	var gotPlayer, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPlayer = r.Header.Get("X-Player-ID")
		gotMethod = r.Method
		_ = json.NewEncoder(w).Encode(response.Health{Status: "ok"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "alice")
	var result response.Health
	require.NoError(t, c.Post("/api/v1/health", map[string]string{}, &result))

	assert.Equal(t, "alice", gotPlayer)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "ok", result.Status)
}

func TestClientReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_YOUR_TURN","message":"Not your turn"}}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Get("/x", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "NOT_YOUR_TURN", apiErr.Code)
	assert.Equal(t, "Not your turn (NOT_YOUR_TURN)", err.Error())
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Delete("/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestClientStreamParsesEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.Equal(t, "alice", r.Header.Get("X-Player-ID"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: connected\ndata: {}\n\n: keepalive\n\nevent: round_played\ndata: {\"type\":\"round_played\"}\n\n"))
	}))
	defer srv.Close()

	var got []StreamEvent
	err := NewClient(srv.URL, "alice").Stream(context.Background(), "/events", func(ev StreamEvent) {
		got = append(got, ev)
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "connected", got[0].Name)
	assert.Equal(t, StreamEvent{Name: "round_played", Data: `{"type":"round_played"}`}, got[1])
}

func TestClientStreamReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"GAME_NOT_FOUND","message":"Game not found"}}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Stream(context.Background(), "/events", func(StreamEvent) {})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "GAME_NOT_FOUND", apiErr.Code)
}

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "stone",
			data: `{"type":"round_played","player_id":"alice","payload":{"cell":"8H","outcome":"OTHERS_TURN","state":"NEXT_PLAYER_WHITE"}}`,
			want: "alice played 8H, now NEXT_PLAYER_WHITE",
		},
		{
			name: "swap",
			data: `{"type":"round_played","player_id":"bob","payload":{"swapped":true,"outcome":"OTHERS_TURN","state":"NEXT_PLAYER_BLACK"}}`,
			want: "bob swapped colours",
		},
		{
			name: "win",
			data: `{"type":"game_ended","game_id":"g1","payload":{"state":"PLAYER_BLACK_WON","winner":"alice","reason":"five"}}`,
			want: "game g1 ended: alice wins (five)",
		},
		{
			name: "draw",
			data: `{"type":"game_ended","game_id":"g1","payload":{"state":"DRAW","reason":"draw"}}`,
			want: "game g1 ended: DRAW (draw)",
		},
		{
			name: "match",
			data: `{"type":"match_found","game_id":"g2","payload":{"player_black":"alice","player_white":"bob","variant":"RENJU"}}`,
			want: "matched: game g2, alice (black) vs bob (white), RENJU",
		},
		{
			name: "not json",
			data: "hello",
			want: "custom: hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeEvent(StreamEvent{Name: "custom", Data: tt.data}))
		})
	}
}

func TestConfigPlayerFileRoundTrip(t *testing.T) {
	c := &Config{PlayerFile: filepath.Join(t.TempDir(), "nested", "player")}

	require.NoError(t, c.LoadPlayer())
	assert.Empty(t, c.PlayerID)

	require.NoError(t, c.SavePlayer("alice"))

	loaded := &Config{PlayerFile: c.PlayerFile}
	require.NoError(t, loaded.LoadPlayer())
	assert.Equal(t, "alice", loaded.PlayerID)

	explicit := &Config{PlayerFile: c.PlayerFile, PlayerID: "bob"}
	require.NoError(t, explicit.LoadPlayer())
	assert.Equal(t, "bob", explicit.PlayerID)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GOMOKU_SERVER", "http://example:9000")
	t.Setenv("GOMOKU_PLAYER", "carol")

	c := DefaultConfig()
	assert.Equal(t, "http://example:9000", c.ServerURL)
	assert.Equal(t, "carol", c.PlayerID)
	assert.Equal(t, "text", c.Output)
}

func TestRenderBoard(t *testing.T) {
	b := model.NewRunBoard(model.PieceBlack).
		With(model.Cell{Row: 0, Col: 0}, model.PieceBlack, model.PhaseRun, model.PieceWhite).
		With(model.Cell{Row: 1, Col: 2}, model.PieceWhite, model.PhaseRun, model.PieceBlack)

	got := RenderBoard(b, 3)

	want := strings.Join([]string{
		"     A B C",
		"  1  X . .",
		"  2  . . O",
		"  3  . . .",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestOutputText(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{format: "text", w: &buf}

	out.Print(response.MatchmakingResult{Entry: response.MatchmakingEntry{ID: "e1", Variant: "RENJU"}})
	assert.Equal(t, "Queued for RENJU as entry e1\n", buf.String())

	buf.Reset()
	out.Print(response.Ranking{})
	assert.Equal(t, "No players yet\n", buf.String())
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{format: "json", w: &buf}

	out.Print(response.Player{ID: "alice", DisplayName: "Alice"})

	var decoded response.Player
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "alice", decoded.ID)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"player", "ranking", "variants", "game", "match", "watch", "health"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRequirePlayer(t *testing.T) {
	cfg = &Config{}
	_, err := requirePlayer()
	assert.Error(t, err)

	cfg = &Config{PlayerID: "alice"}
	id, err := requirePlayer()
	require.NoError(t, err)
	assert.Equal(t, "alice", id)
}

func TestMain(m *testing.M) {
	cfg = DefaultConfig()
	os.Exit(m.Run())
}
