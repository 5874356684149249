package game

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"goban/internal/bootstrap"
	repo "goban/internal/repository"
	gameuc "goban/internal/usecase/game"
)

type envelope struct {
	Status int             `json:"Status"`
	Body   json.RawMessage `json:"Body"`
}

type cellJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type stateJSON struct {
	Status   string `json:"status"`
	Position struct {
		NextToMove  string     `json:"next_to_move"`
		BlackStones []cellJSON `json:"black_stones"`
		WhiteStones []cellJSON `json:"white_stones"`
		Removed     []cellJSON `json:"removed"`
	} `json:"position"`
	Changed []cellJSON `json:"changed"`
	Score   *struct {
		Result string `json:"result"`
	} `json:"score"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	cfg := bootstrap.Config{DefaultSize: 9, DefaultKomi: 6.5, DefaultRules: "chinese"}
	store := repo.NewMemoryStore()
	handler := NewGameHandler(cfg, log, gameuc.NewGameUseCase(cfg, log, store, store))

	r := chi.NewRouter()
	handler.Routes(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func createGame(t *testing.T, ts *httptest.Server, body any) string {
	t.Helper()
	status, env := doJSON(t, http.MethodPost, ts.URL+"/games", body)
	require.Equal(t, http.StatusOK, status)
	var created struct {
		UniqueKey string `json:"unique_key"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &created))
	require.NotEmpty(t, created.UniqueKey)
	return created.UniqueKey
}

func decodeState(t *testing.T, raw json.RawMessage) stateJSON {
	t.Helper()
	var state stateJSON
	require.NoError(t, json.Unmarshal(raw, &state))
	return state
}

func TestHandleMoveAndPosition(t *testing.T) {
	ts := newTestServer(t)
	key := createGame(t, ts, map[string]any{"board_size": 9})

	status, env := doJSON(t, http.MethodPost, ts.URL+"/games/"+key+"/moves", map[string]any{"color": "black", "coordinates": "cc"})
	require.Equal(t, http.StatusOK, status)
	state := decodeState(t, env.Body)
	assert.Equal(t, "play", state.Status)
	assert.Equal(t, "white", state.Position.NextToMove)
	assert.Equal(t, []cellJSON{{2, 2}}, state.Position.BlackStones)

	status, _ = doJSON(t, http.MethodPost, ts.URL+"/games/"+key+"/moves", map[string]any{"color": "black", "coordinates": "dd"})
	assert.Equal(t, http.StatusConflict, status)

	status, env = doJSON(t, http.MethodPost, ts.URL+"/games/"+key+"/moves", map[string]any{"color": "white", "coordinates": "cc"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(env.Body), "occupied")

	status, _ = doJSON(t, http.MethodPost, ts.URL+"/games/"+key+"/moves", map[string]any{"color": "red", "coordinates": "cc"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = doJSON(t, http.MethodGet, ts.URL+"/games/"+key+"/position?upto=-1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeState(t, env.Body).Position.BlackStones)

	status, _ = doJSON(t, http.MethodGet, ts.URL+"/games/"+key+"/position?upto=x", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	status, env := doJSON(t, http.MethodGet, ts.URL+"/games/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, http.StatusNotFound, env.Status)
}

func TestHandleMalformedJSON(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/games", "application/json", strings.NewReader(`{"board_size": 9, "unknown": 1}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleStoneRemovalFlow(t *testing.T) {
	ts := newTestServer(t)
	status, env := doJSON(t, http.MethodPost, ts.URL+"/games/import", map[string]any{
		"sgf": "(;FF[4]GM[1]SZ[5]KM[0.5]PL[B]AB[ca][cb][cc][cd][ce]AW[da][db][dc][dd][de][aa])",
	})
	require.Equal(t, http.StatusOK, status)
	var created struct {
		UniqueKey string `json:"unique_key"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &created))
	key := created.UniqueKey

	doJSON(t, http.MethodPost, ts.URL+"/games/"+key+"/moves", map[string]any{"color": "b", "coordinates": "pass"})
	status, env = doJSON(t, http.MethodPost, ts.URL+"/games/"+key+"/moves", map[string]any{"color": "w", "coordinates": ""})
	require.Equal(t, http.StatusOK, status)
	state := decodeState(t, env.Body)
	assert.Equal(t, "stone_removal", state.Status)
	assert.Equal(t, []cellJSON{{0, 0}}, state.Position.Removed)

	status, env = doJSON(t, http.MethodPost, ts.URL+"/games/"+key+"/removed", map[string]any{"coordinates": "aa"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []cellJSON{{0, 0}}, decodeState(t, env.Body).Changed)
	doJSON(t, http.MethodPost, ts.URL+"/games/"+key+"/removed", map[string]any{"coordinates": "aa"})

	status, env = doJSON(t, http.MethodPost, ts.URL+"/games/"+key+"/finish", nil)
	require.Equal(t, http.StatusOK, status)
	state = decodeState(t, env.Body)
	assert.Equal(t, "finished", state.Status)
	require.NotNil(t, state.Score)
	assert.Equal(t, "B+4.5", state.Score.Result)

	resp, err := http.Get(ts.URL + "/games/" + key + "/sgf")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "application/x-go-sgf", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(raw), "RE[B+4.5]")

	status, _ = doJSON(t, http.MethodPost, ts.URL+"/games/"+key+"/resume", nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestHandleListGames(t *testing.T) {
	ts := newTestServer(t)
	createGame(t, ts, map[string]any{})

	status, env := doJSON(t, http.MethodGet, ts.URL+"/games?status=finished", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Body))

	status, env = doJSON(t, http.MethodGet, ts.URL+"/games", nil)
	require.Equal(t, http.StatusOK, status)
	var games []map[string]any
	require.NoError(t, json.Unmarshal(env.Body, &games))
	assert.Len(t, games, 1)
}

func TestHandleWatchBroadcastsMoves(t *testing.T) {
	ts := newTestServer(t)
	key := createGame(t, ts, map[string]any{})
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/games/" + key + "/ws"

	player, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer player.Close()
	watcher, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer watcher.Close()

	read := func(conn *websocket.Conn) envelope {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var env envelope
		require.NoError(t, conn.ReadJSON(&env))
		return env
	}

	assert.Equal(t, "play", decodeState(t, read(player).Body).Status)
	assert.Equal(t, "play", decodeState(t, read(watcher).Body).Status)

	require.NoError(t, player.WriteJSON(map[string]any{"color": "black", "coordinates": "ee"}))
	for _, conn := range []*websocket.Conn{player, watcher} {
		env := read(conn)
		assert.Equal(t, http.StatusOK, env.Status)
		assert.Equal(t, []cellJSON{{4, 4}}, decodeState(t, env.Body).Position.BlackStones)
	}

	require.NoError(t, player.WriteJSON(map[string]any{"color": "black", "coordinates": "ff"}))
	env := read(player)
	assert.Equal(t, http.StatusConflict, env.Status)
}
