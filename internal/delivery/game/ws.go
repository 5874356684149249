package game

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"goban/internal/domain/game"
	"goban/internal/httpresponse"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// watcher is one websocket connection. gorilla connections allow a single
// concurrent writer.
type watcher struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *watcher) send(status int, body any) error {
	msg, err := httpresponse.MarshalStatusJson(status, body)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub tracks the watchers of every game.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*watcher]struct{}
	log   *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*watcher]struct{}),
		log:   log,
	}
}

func (h *Hub) join(key string, c *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[key]
	if !ok {
		room = make(map[*watcher]struct{})
		h.rooms[key] = room
	}
	room[c] = struct{}{}
	h.log.Infof("watcher joined game %s, %d connected", key, len(room))
}

func (h *Hub) leave(key string, c *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[key]
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, key)
	}
	_ = c.conn.Close()
}

// Broadcast sends the state to every watcher of the game and drops the ones
// that cannot be written to.
func (h *Hub) Broadcast(key string, state game.GameStateResponse) {
	h.mu.RLock()
	watchers := make([]*watcher, 0, len(h.rooms[key]))
	for c := range h.rooms[key] {
		watchers = append(watchers, c)
	}
	h.mu.RUnlock()

	for _, c := range watchers {
		if err := c.send(http.StatusOK, state); err != nil {
			h.log.Error("Write to watcher error:", err)
			h.leave(key, c)
		}
	}
}

// HandleWatch streams the game to a websocket client. The client receives the
// current state on connect and after every change; it may send MoveRequest
// messages to play.
func (g *GameHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	state, err := g.initialState(r, key)
	if err != nil {
		g.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("upgrade error:", err)
		return
	}
	c := &watcher{conn: conn}
	g.hub.join(key, c)
	defer g.hub.leave(key, c)
	if err = c.send(http.StatusOK, state); err != nil {
		return
	}

	for {
		var req game.MoveRequest
		if err = conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Error("read error:", err)
			}
			return
		}
		if _, err = g.playMove(r, key, req); err != nil {
			g.log.Info(err)
			if err = c.send(statusOf(err), httpresponse.ErrorResponse{ErrorDescription: err.Error()}); err != nil {
				return
			}
		}
	}
}
