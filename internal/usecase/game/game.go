package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"goban/internal/bootstrap"
	"goban/internal/domain/board"
	"goban/internal/domain/game"
	"goban/internal/domain/sgf"
	apperrors "goban/internal/errors"
	"goban/internal/rules"
	"goban/internal/statuses"
)

type GameStore interface {
	GenerateGameKey(ctx context.Context) (string, error)
	PutGame(ctx context.Context, gameData game.Game) error
	GetGameByGameKey(ctx context.Context, gameKey string) (game.Game, error)
	UpdateGame(ctx context.Context, gameData game.Game) error
	ListGames(ctx context.Context, status string) ([]game.Game, error)
}

type SgfStore interface {
	SaveSGF(ctx context.Context, gameKey string, sgfText string) error
	LoadSGF(ctx context.Context, gameKey string) (string, error)
}

// GameUseCase stores move lists and derives every position from them with the
// rules engine.
type GameUseCase struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	store GameStore
	sgf   SgfStore

	// serializes read-modify-write of games
	mu  sync.Mutex
	now func() time.Time
}

func NewGameUseCase(cfg bootstrap.Config, log *zap.SugaredLogger, store GameStore, sgfStore SgfStore) *GameUseCase {
	return &GameUseCase{
		cfg:   cfg,
		log:   log,
		store: store,
		sgf:   sgfStore,
		now:   time.Now,
	}
}

func (g *GameUseCase) CreateGame(ctx context.Context, req game.CreateGameRequest) (game.Game, error) {
	size := req.BoardSize
	if size == 0 {
		size = g.cfg.DefaultSize
	}
	if size < 2 || size > 52 {
		return game.Game{}, fmt.Errorf("%w: board size %d", apperrors.ErrInvalidRequest, size)
	}
	setup := board.NewSetup(size)

	if req.Handicap < 0 || req.Handicap == 1 || req.Handicap > 9 {
		return game.Game{}, fmt.Errorf("%w: handicap %d", apperrors.ErrInvalidRequest, req.Handicap)
	}
	setup.Handicap = req.Handicap
	setup.FreeHandicap = req.FreeHandicap
	if setup.Handicap > 0 && !setup.FreeHandicap && len(setup.FixedHandicap()) == 0 {
		return game.Game{}, fmt.Errorf("%w: no fixed handicap on a %dx%d board", apperrors.ErrInvalidRequest, size, size)
	}

	komi := g.cfg.DefaultKomi
	if req.Komi != nil {
		komi = *req.Komi
	}
	ruleName := req.Rules
	if ruleName == "" {
		ruleName = g.cfg.DefaultRules
	}

	key, err := g.store.GenerateGameKey(ctx)
	if err != nil {
		return game.Game{}, err
	}

	now := g.now()
	newGame := game.Game{
		GameKey:     key,
		Status:      statuses.StatusPlay,
		Setup:       setup,
		Rules:       board.ParseRuleset(ruleName),
		Komi:        komi,
		PlayerBlack: req.PlayerBlack,
		PlayerWhite: req.PlayerWhite,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = g.store.PutGame(ctx, newGame); err != nil {
		return game.Game{}, err
	}
	newGame.Sgf = g.cacheRecord(ctx, newGame)

	g.log.Infof("game %s created: %dx%d, handicap %d, %s rules, komi %v", key, size, size, setup.Handicap, newGame.Rules, komi)
	return newGame, nil
}

// ImportSGF creates a game from an SGF record. Every main line move must be
// legal. A record with a result is imported as finished, one ending in two
// passes goes straight to stone removal.
func (g *GameUseCase) ImportSGF(ctx context.Context, text string) (game.Game, error) {
	tree, err := sgf.Parse(text)
	if err != nil {
		return game.Game{}, err
	}
	rec, err := sgf.FromTree(tree)
	if err != nil {
		return game.Game{}, err
	}
	if err = rules.ValidateMoves(rec.Setup, rec.Moves, rec.Colors); err != nil {
		return game.Game{}, fmt.Errorf("%w: %w", apperrors.ErrMalformedSgf, err)
	}
	if rec.Variation != nil {
		moves, colors := rec.Line(true)
		if err = rules.ValidateMoves(rec.Setup, moves, colors); err != nil {
			return game.Game{}, fmt.Errorf("%w: variation: %w", apperrors.ErrMalformedSgf, err)
		}
	}

	key, err := g.store.GenerateGameKey(ctx)
	if err != nil {
		return game.Game{}, err
	}

	now := g.now()
	imported := game.Game{
		GameKey:     key,
		Status:      statuses.StatusPlay,
		Setup:       rec.Setup,
		Variation:   rec.Variation,
		Rules:       rec.Rules,
		Komi:        rec.Komi,
		PlayerBlack: rec.PlayerBlack,
		PlayerWhite: rec.PlayerWhite,
		Result:      rec.Result,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, m := range rec.Moves {
		imported.Moves = append(imported.Moves, game.Move{Color: rec.Colors[i], Cell: m})
	}

	switch {
	case imported.Result != "":
		imported.Status = statuses.StatusFinished
	case imported.TrailingPasses() >= 2:
		g.enterStoneRemoval(&imported, g.currentPosition(imported))
	}

	if err = g.store.PutGame(ctx, imported); err != nil {
		return game.Game{}, err
	}
	imported.Sgf = g.cacheRecord(ctx, imported)

	g.log.Infof("game %s imported from sgf with %d moves", key, len(imported.Moves))
	return imported, nil
}

func (g *GameUseCase) GetGame(ctx context.Context, gameKey string) (game.Game, error) {
	play, err := g.store.GetGameByGameKey(ctx, gameKey)
	if err != nil {
		return game.Game{}, err
	}
	play.Sgf = g.sgfOf(ctx, play)
	return play, nil
}

func (g *GameUseCase) ListGames(ctx context.Context, status string) ([]game.Game, error) {
	return g.store.ListGames(ctx, status)
}

// GetSgf returns the SGF record of the game, rebuilding the cache entry when
// it is missing.
func (g *GameUseCase) GetSgf(ctx context.Context, gameKey string) (string, error) {
	play, err := g.store.GetGameByGameKey(ctx, gameKey)
	if err != nil {
		return "", err
	}
	return g.sgfOf(ctx, play), nil
}

// PositionAt replays the game up to move upto. With territory set the dead
// stones and ownership are estimated; the latest position of a game in stone
// removal or finished shows the agreed removal set instead.
func (g *GameUseCase) PositionAt(ctx context.Context, gameKey string, upto int, territory bool, withVariation bool) (board.Position, error) {
	play, err := g.store.GetGameByGameKey(ctx, gameKey)
	if err != nil {
		return board.Position{}, err
	}

	var variation *board.Variation
	if withVariation {
		variation = play.Variation
	}
	pos := rules.Replay(play.Setup, play.Cells(), upto, false, variation)

	latest := variation == nil && upto >= len(play.Moves)-1
	if latest && play.Status != statuses.StatusPlay {
		pos = rules.ApplyRemoved(pos, play.Removed)
		if territory {
			pos = rules.EstimateOwnership(pos)
		}
		return pos, nil
	}
	if territory {
		pos = rules.DetermineTerritory(pos, false)
	}
	return pos, nil
}

// PlayMove validates and appends a move. A move that recreates the position
// two plies back is refused with ErrKoCandidate unless confirmKo is set. The
// second consecutive pass moves the game to stone removal.
func (g *GameUseCase) PlayMove(ctx context.Context, gameKey string, color board.Stone, cell board.Cell, confirmKo bool) (game.Game, board.Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	play, err := g.store.GetGameByGameKey(ctx, gameKey)
	if err != nil {
		return game.Game{}, board.Position{}, err
	}
	if play.Status != statuses.StatusPlay {
		return game.Game{}, board.Position{}, fmt.Errorf("%w: game is %s", apperrors.ErrWrongPhase, play.Status)
	}

	pos := g.currentPosition(play)
	if color != pos.NextToMove() {
		return game.Game{}, board.Position{}, fmt.Errorf("%w: %s to move", apperrors.ErrNotYourTurn, pos.NextToMove())
	}

	moves := play.Cells()
	var next board.Position
	if handicap := play.Setup.FreeHandicapMoves(); len(moves) < handicap {
		if next, err = rules.PlaceHandicapStone(pos, cell, len(moves) == handicap-1); err != nil {
			return game.Game{}, board.Position{}, fmt.Errorf("handicap stone %s: %w", cell, err)
		}
	} else {
		if next, err = rules.MakeMove(pos, color, cell); err != nil {
			return game.Game{}, board.Position{}, fmt.Errorf("move %s: %w", cell, err)
		}
		if !confirmKo && rules.IsKoCandidate(play.Setup, moves, next) {
			return game.Game{}, board.Position{}, apperrors.ErrKoCandidate
		}
	}

	play.Moves = append(play.Moves, game.Move{Color: color, Cell: cell})
	play.UpdatedAt = g.now()
	if play.TrailingPasses() >= 2 {
		next = g.enterStoneRemoval(&play, next)
	}

	if err = g.store.UpdateGame(ctx, play); err != nil {
		return game.Game{}, board.Position{}, err
	}
	g.appendToSgf(ctx, play, color, cell)

	g.log.Infof("game %s: %s played %s", gameKey, color, cell)
	return play, next, nil
}

// ToggleRemoved flips the dead mark of the group at cell during stone removal.
func (g *GameUseCase) ToggleRemoved(ctx context.Context, gameKey string, cell board.Cell) (game.Game, board.Position, []board.Cell, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	play, err := g.store.GetGameByGameKey(ctx, gameKey)
	if err != nil {
		return game.Game{}, board.Position{}, nil, err
	}
	if play.Status != statuses.StatusStoneRemoval {
		return game.Game{}, board.Position{}, nil, fmt.Errorf("%w: game is %s", apperrors.ErrWrongPhase, play.Status)
	}

	next, delta := rules.ToggleRemoved(g.removalPosition(play), cell)
	if len(delta) == 0 {
		return play, next, nil, nil
	}
	play.Removed = next.RemovedSpots()
	play.UpdatedAt = g.now()
	if err = g.store.UpdateGame(ctx, play); err != nil {
		return game.Game{}, board.Position{}, nil, err
	}

	g.log.Infof("game %s: toggled %d stones at %s", gameKey, len(delta), cell)
	return play, next, delta, nil
}

// Resume leaves stone removal and continues play with the removal set cleared.
func (g *GameUseCase) Resume(ctx context.Context, gameKey string) (game.Game, board.Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	play, err := g.store.GetGameByGameKey(ctx, gameKey)
	if err != nil {
		return game.Game{}, board.Position{}, err
	}
	if play.Status != statuses.StatusStoneRemoval {
		return game.Game{}, board.Position{}, fmt.Errorf("%w: game is %s", apperrors.ErrWrongPhase, play.Status)
	}

	play.Status = statuses.StatusPlay
	play.Removed = nil
	play.ResumedAt = len(play.Moves)
	play.UpdatedAt = g.now()
	if err = g.store.UpdateGame(ctx, play); err != nil {
		return game.Game{}, board.Position{}, err
	}

	g.log.Infof("game %s resumed", gameKey)
	return play, g.currentPosition(play), nil
}

// Finish scores the agreed removal set and stores the result.
func (g *GameUseCase) Finish(ctx context.Context, gameKey string) (game.Game, game.Score, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	play, err := g.store.GetGameByGameKey(ctx, gameKey)
	if err != nil {
		return game.Game{}, game.Score{}, err
	}
	if play.Status != statuses.StatusStoneRemoval {
		return game.Game{}, game.Score{}, fmt.Errorf("%w: game is %s", apperrors.ErrWrongPhase, play.Status)
	}

	score := scoreOf(play, g.removalPosition(play))
	play.Status = statuses.StatusFinished
	play.Result = score.Result
	play.UpdatedAt = g.now()
	if err = g.store.UpdateGame(ctx, play); err != nil {
		return game.Game{}, game.Score{}, err
	}
	play.Sgf = g.cacheRecord(ctx, play)

	g.log.Infof("game %s finished: %s", gameKey, score.Result)
	return play, score, nil
}

// Score counts the game as it stands. During play the dead stones are
// estimated, afterwards the stored removal set is used.
func (g *GameUseCase) Score(ctx context.Context, gameKey string) (game.Score, error) {
	play, err := g.store.GetGameByGameKey(ctx, gameKey)
	if err != nil {
		return game.Score{}, err
	}
	if play.Status == statuses.StatusPlay {
		return scoreOf(play, rules.DetermineTerritory(g.currentPosition(play), false)), nil
	}
	return scoreOf(play, g.removalPosition(play)), nil
}

func scoreOf(play game.Game, pos board.Position) game.Score {
	scoring := play.ScoringRules()
	black, white := rules.ScorePosition(pos, scoring)
	return game.Score{
		Black:  black,
		White:  white,
		Result: rules.Result(black, white),
		Rules:  scoring.Rules,
		Komi:   scoring.Komi,
	}
}

func (g *GameUseCase) currentPosition(play game.Game) board.Position {
	moves := play.Cells()
	return rules.Replay(play.Setup, moves, len(moves)-1, false, nil)
}

func (g *GameUseCase) removalPosition(play game.Game) board.Position {
	return rules.EstimateOwnership(rules.ApplyRemoved(g.currentPosition(play), play.Removed))
}

// enterStoneRemoval switches the game to stone removal with the estimated dead
// stones preselected and returns the annotated position.
func (g *GameUseCase) enterStoneRemoval(play *game.Game, pos board.Position) board.Position {
	estimated := rules.DetermineTerritory(pos, g.cfg.AutoScoreStonesOnly)
	play.Status = statuses.StatusStoneRemoval
	play.Removed = estimated.RemovedSpots()
	return estimated
}

func (g *GameUseCase) record(play game.Game) sgf.Record {
	return sgf.Record{
		Setup:       play.Setup,
		Moves:       play.Cells(),
		Colors:      play.Colors(),
		Variation:   play.Variation,
		Rules:       play.Rules,
		Komi:        play.Komi,
		PlayerBlack: play.PlayerBlack,
		PlayerWhite: play.PlayerWhite,
		Result:      play.Result,
		Date:        play.CreatedAt.Format(time.DateOnly),
	}
}

// cacheRecord serializes the whole game and stores it in the SGF cache. Cache
// failures are logged only, the record can always be rebuilt.
func (g *GameUseCase) cacheRecord(ctx context.Context, play game.Game) string {
	text := sgf.Serialize(g.record(play).ToTree())
	if err := g.sgf.SaveSGF(ctx, play.GameKey, text); err != nil {
		g.log.Warnf("failed to cache sgf of game %s: %v", play.GameKey, err)
	}
	return text
}

func (g *GameUseCase) appendToSgf(ctx context.Context, play game.Game, color board.Stone, cell board.Cell) {
	text, err := g.sgf.LoadSGF(ctx, play.GameKey)
	if err != nil || play.Variation != nil {
		g.cacheRecord(ctx, play)
		return
	}
	if err = g.sgf.SaveSGF(ctx, play.GameKey, sgf.AppendMove(text, color, cell)); err != nil {
		g.log.Warnf("failed to cache sgf of game %s: %v", play.GameKey, err)
	}
}

func (g *GameUseCase) sgfOf(ctx context.Context, play game.Game) string {
	text, err := g.sgf.LoadSGF(ctx, play.GameKey)
	if err == nil {
		return text
	}
	if !errors.Is(err, apperrors.ErrSgfNotCached) {
		g.log.Warnf("failed to load sgf of game %s: %v", play.GameKey, err)
	}
	return g.cacheRecord(ctx, play)
}
