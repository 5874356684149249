package game

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"goban/internal/bootstrap"
	"goban/internal/domain/board"
	"goban/internal/domain/game"
	apperrors "goban/internal/errors"
	"goban/internal/httpresponse"
	"goban/internal/statuses"
	gameuc "goban/internal/usecase/game"
	"goban/internal/utils"
)

type GameHandler struct {
	cfg    bootstrap.Config
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
	hub    *Hub
}

func NewGameHandler(cfg bootstrap.Config, log *zap.SugaredLogger, gameUC *gameuc.GameUseCase) *GameHandler {
	return &GameHandler{
		cfg:    cfg,
		log:    log,
		gameUC: gameUC,
		hub:    NewHub(log),
	}
}

// Routes mounts the game API under /games.
func (g *GameHandler) Routes(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Post("/", g.HandleNewGame)
		r.Get("/", g.HandleListGames)
		r.Post("/import", g.HandleImportSgf)
		r.Route("/{key}", func(r chi.Router) {
			r.Get("/", g.HandleGetGame)
			r.Get("/sgf", g.HandleGetSgf)
			r.Get("/position", g.HandlePosition)
			r.Post("/moves", g.HandleMove)
			r.Post("/removed", g.HandleToggleRemoved)
			r.Post("/resume", g.HandleResume)
			r.Post("/finish", g.HandleFinish)
			r.Get("/score", g.HandleScore)
			r.Get("/ws", g.HandleWatch)
		})
	})
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var req game.CreateGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error:", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}

	created, err := g.gameUC.CreateGame(r.Context(), req)
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.log.Info("New Game Created with key: " + created.GameKey)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.GameCreateResponse{UniqueKey: created.GameKey})
}

func (g *GameHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := g.gameUC.ListGames(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	if games == nil {
		games = []game.Game{}
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, games)
}

func (g *GameHandler) HandleImportSgf(w http.ResponseWriter, r *http.Request) {
	var req game.ImportSgfRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error:", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}

	imported, err := g.gameUC.ImportSGF(r.Context(), req.Sgf)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.GameCreateResponse{UniqueKey: imported.GameKey})
}

func (g *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	play, err := g.gameUC.GetGame(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, play)
}

func (g *GameHandler) HandleGetSgf(w http.ResponseWriter, r *http.Request) {
	text, err := g.gameUC.GetSgf(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-go-sgf")
	_, _ = w.Write([]byte(text))
}

// HandlePosition replays the game. upto defaults to the last move, territory
// and variation are boolean flags.
func (g *GameHandler) HandlePosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")
	query := r.URL.Query()

	play, err := g.gameUC.GetGame(ctx, key)
	if err != nil {
		g.writeError(w, err)
		return
	}

	upto := len(play.Moves) - 1
	if v := query.Get("upto"); v != "" {
		if upto, err = strconv.Atoi(v); err != nil {
			httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "upto must be an integer")
			return
		}
	}
	territory, _ := strconv.ParseBool(query.Get("territory"))
	variation, _ := strconv.ParseBool(query.Get("variation"))

	pos, err := g.gameUC.PositionAt(ctx, key, upto, territory, variation)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.GameStateResponse{Status: play.Status, Position: pos})
}

func (g *GameHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req game.MoveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error:", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}

	state, err := g.playMove(r, chi.URLParam(r, "key"), req)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) playMove(r *http.Request, key string, req game.MoveRequest) (game.GameStateResponse, error) {
	color, cell, err := parseMove(req)
	if err != nil {
		return game.GameStateResponse{}, err
	}
	play, pos, err := g.gameUC.PlayMove(r.Context(), key, color, cell, req.ConfirmKo)
	if err != nil {
		return game.GameStateResponse{}, err
	}

	g.log.Infof("game %s: move %s %s received", key, req.Color, req.Coordinates)
	state := game.GameStateResponse{
		Status:   play.Status,
		Position: pos,
		Move:     &play.Moves[len(play.Moves)-1],
	}
	g.hub.Broadcast(key, state)
	return state, nil
}

func (g *GameHandler) HandleToggleRemoved(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req game.ToggleRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error:", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}
	cell, err := parseCoordinates(req.Coordinates)
	if err != nil {
		g.writeError(w, err)
		return
	}

	play, pos, delta, err := g.gameUC.ToggleRemoved(r.Context(), key, cell)
	if err != nil {
		g.writeError(w, err)
		return
	}

	state := game.GameStateResponse{Status: play.Status, Position: pos, Changed: delta}
	if len(delta) > 0 {
		g.hub.Broadcast(key, state)
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	play, pos, err := g.gameUC.Resume(r.Context(), key)
	if err != nil {
		g.writeError(w, err)
		return
	}

	state := game.GameStateResponse{Status: play.Status, Position: pos}
	g.hub.Broadcast(key, state)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")
	play, score, err := g.gameUC.Finish(ctx, key)
	if err != nil {
		g.writeError(w, err)
		return
	}
	pos, err := g.gameUC.PositionAt(ctx, key, len(play.Moves)-1, true, false)
	if err != nil {
		g.writeError(w, err)
		return
	}

	state := game.GameStateResponse{Status: play.Status, Position: pos, Score: &score}
	g.hub.Broadcast(key, state)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	score, err := g.gameUC.Score(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, score)
}

func parseMove(req game.MoveRequest) (board.Stone, board.Cell, error) {
	color, err := board.ParseStone(req.Color)
	if err != nil || color == board.Empty {
		return board.Empty, board.Pass, fmt.Errorf("%w: color must be black or white", apperrors.ErrInvalidRequest)
	}
	cell, err := parseCoordinates(req.Coordinates)
	if err != nil {
		return board.Empty, board.Pass, err
	}
	return color, cell, nil
}

// parseCoordinates reads SGF coordinates, "pass" is accepted as well.
func parseCoordinates(v string) (board.Cell, error) {
	if strings.EqualFold(v, "pass") {
		return board.Pass, nil
	}
	cell, err := board.ParseSgfCell(v)
	if err != nil {
		return board.Pass, fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}
	return cell, nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidRequest), errors.Is(err, apperrors.ErrMalformedSgf):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrIllegalMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrNotYourTurn), errors.Is(err, apperrors.ErrWrongPhase), errors.Is(err, apperrors.ErrKoCandidate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (g *GameHandler) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		g.log.Error(err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	g.log.Info(err)
	httpresponse.WriteErrorWithStatus(w, status, err.Error())
}

// initialState is what a watcher receives when it connects.
func (g *GameHandler) initialState(r *http.Request, key string) (game.GameStateResponse, error) {
	ctx := r.Context()
	play, err := g.gameUC.GetGame(ctx, key)
	if err != nil {
		return game.GameStateResponse{}, err
	}
	pos, err := g.gameUC.PositionAt(ctx, key, len(play.Moves)-1, play.Status != statuses.StatusPlay, false)
	if err != nil {
		return game.GameStateResponse{}, err
	}
	return game.GameStateResponse{Status: play.Status, Position: pos}, nil
}
