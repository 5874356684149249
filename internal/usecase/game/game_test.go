package game

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"goban/internal/bootstrap"
	"goban/internal/domain/board"
	"goban/internal/domain/game"
	apperrors "goban/internal/errors"
	repo "goban/internal/repository"
	"goban/internal/statuses"
)

// splitBoard is a 5x5 game: Black owns the two left columns, White the right
// one, and a lone white stone sits dead in the corner of Black's area.
const splitBoard = "(;FF[4]GM[1]SZ[5]KM[0.5]RU[Chinese]PL[B]" +
	"AB[ca][cb][cc][cd][ce]AW[da][db][dc][dd][de][aa])"

// koSetup lets Black capture at cb and White retake at bb.
const koSetup = "(;FF[4]GM[1]SZ[5]PL[B]AB[ba][ab][bc]AW[ca][bb][db][cc])"

func newTestUseCase(t *testing.T) (*GameUseCase, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	cache := repo.NewSgfCache(redis.NewClient(&redis.Options{Addr: mini.Addr()}), 0)
	cfg := bootstrap.Config{
		DefaultSize:  9,
		DefaultKomi:  6.5,
		DefaultRules: "chinese",
	}
	return NewGameUseCase(cfg, zaptest.NewLogger(t).Sugar(), repo.NewMemoryStore(), cache), mini
}

func cell(x, y int) board.Cell { return board.Cell{X: x, Y: y} }

func TestCreateGameDefaults(t *testing.T) {
	uc, mini := newTestUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateGame(ctx, game.CreateGameRequest{PlayerBlack: "alice", PlayerWhite: "bob"})
	require.NoError(t, err)

	assert.NotEmpty(t, created.GameKey)
	assert.Equal(t, statuses.StatusPlay, created.Status)
	assert.Equal(t, board.RulesChinese, created.Rules)
	assert.Equal(t, 6.5, created.Komi)
	assert.Contains(t, created.Sgf, "SZ[9]")
	assert.Contains(t, created.Sgf, "PB[alice]")

	cached, err := mini.Get("goban:sgf:" + created.GameKey)
	require.NoError(t, err)
	assert.Equal(t, created.Sgf, cached)

	got, err := uc.GetGame(ctx, created.GameKey)
	require.NoError(t, err)
	assert.Equal(t, created.GameKey, got.GameKey)
	assert.Equal(t, created.Sgf, got.Sgf)
}

func TestCreateGameValidation(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = uc.CreateGame(ctx, game.CreateGameRequest{Handicap: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: 5, Handicap: 2})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	komi := 0.0
	created, err := uc.CreateGame(ctx, game.CreateGameRequest{BoardSize: 5, Handicap: 2, FreeHandicap: true, Komi: &komi, Rules: "japanese"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, created.Komi)
	assert.Equal(t, board.RulesJapanese, created.Rules)
}

func TestGetGameNotFound(t *testing.T) {
	uc, _ := newTestUseCase(t)

	_, err := uc.GetGame(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrGameNotFound)
}

func TestPlayMoveTurnAndLegality(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	created, err := uc.CreateGame(ctx, game.CreateGameRequest{})
	require.NoError(t, err)

	played, pos, err := uc.PlayMove(ctx, created.GameKey, board.Black, cell(2, 2), false)
	require.NoError(t, err)
	assert.Len(t, played.Moves, 1)
	assert.Equal(t, board.Black, pos.At(cell(2, 2)))
	assert.Equal(t, board.White, pos.NextToMove())

	_, _, err = uc.PlayMove(ctx, created.GameKey, board.Black, cell(3, 3), false)
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)

	_, _, err = uc.PlayMove(ctx, created.GameKey, board.White, cell(2, 2), false)
	assert.ErrorIs(t, err, apperrors.ErrCellOccupied)
	assert.ErrorIs(t, err, apperrors.ErrIllegalMove)

	_, _, err = uc.PlayMove(ctx, created.GameKey, board.White, cell(9, 0), false)
	assert.ErrorIs(t, err, apperrors.ErrOutOfBoard)

	sgfText, err := uc.GetSgf(ctx, created.GameKey)
	require.NoError(t, err)
	assert.Contains(t, sgfText, ";B[cc])")
}

func TestPlayMoveKoNeedsConfirmation(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	imported, err := uc.ImportSGF(ctx, koSetup)
	require.NoError(t, err)

	_, pos, err := uc.PlayMove(ctx, imported.GameKey, board.Black, cell(2, 1), false)
	require.NoError(t, err)
	require.Equal(t, board.Empty, pos.At(cell(1, 1)))

	_, _, err = uc.PlayMove(ctx, imported.GameKey, board.White, cell(1, 1), false)
	require.ErrorIs(t, err, apperrors.ErrKoCandidate)

	unchanged, err := uc.GetGame(ctx, imported.GameKey)
	require.NoError(t, err)
	assert.Len(t, unchanged.Moves, 1)

	played, pos, err := uc.PlayMove(ctx, imported.GameKey, board.White, cell(1, 1), true)
	require.NoError(t, err)
	assert.Len(t, played.Moves, 2)
	assert.Equal(t, board.White, pos.At(cell(1, 1)))
	assert.Equal(t, board.Empty, pos.At(cell(2, 1)))
}

func TestStoneRemovalAndFinish(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	imported, err := uc.ImportSGF(ctx, splitBoard)
	require.NoError(t, err)
	key := imported.GameKey

	_, _, _, err = uc.ToggleRemoved(ctx, key, cell(0, 0))
	assert.ErrorIs(t, err, apperrors.ErrWrongPhase)

	_, _, err = uc.PlayMove(ctx, key, board.Black, board.Pass, false)
	require.NoError(t, err)
	played, pos, err := uc.PlayMove(ctx, key, board.White, board.Pass, false)
	require.NoError(t, err)

	assert.Equal(t, statuses.StatusStoneRemoval, played.Status)
	assert.Equal(t, []board.Cell{cell(0, 0)}, played.Removed)
	assert.True(t, pos.IsRemoved(cell(0, 0)))
	assert.True(t, pos.HasTerritory())

	score, err := uc.Score(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 15.0, score.Black)
	assert.Equal(t, 10.5, score.White)

	_, _, err = uc.PlayMove(ctx, key, board.Black, cell(1, 1), false)
	assert.ErrorIs(t, err, apperrors.ErrWrongPhase)

	toggled, _, delta, err := uc.ToggleRemoved(ctx, key, cell(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []board.Cell{cell(0, 0)}, delta)
	assert.Empty(t, toggled.Removed)

	_, _, delta, err = uc.ToggleRemoved(ctx, key, cell(1, 1))
	require.NoError(t, err)
	assert.Empty(t, delta)

	toggled, _, _, err = uc.ToggleRemoved(ctx, key, cell(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []board.Cell{cell(0, 0)}, toggled.Removed)

	finished, score, err := uc.Finish(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, statuses.StatusFinished, finished.Status)
	assert.Equal(t, "B+4.5", score.Result)
	assert.Equal(t, "B+4.5", finished.Result)

	sgfText, err := uc.GetSgf(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, sgfText, "RE[B+4.5]")

	_, _, err = uc.Finish(ctx, key)
	assert.ErrorIs(t, err, apperrors.ErrWrongPhase)
}

func TestResumeNeedsTwoNewPasses(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	imported, err := uc.ImportSGF(ctx, splitBoard)
	require.NoError(t, err)
	key := imported.GameKey

	_, _, err = uc.PlayMove(ctx, key, board.Black, board.Pass, false)
	require.NoError(t, err)
	_, _, err = uc.PlayMove(ctx, key, board.White, board.Pass, false)
	require.NoError(t, err)

	resumed, pos, err := uc.Resume(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, statuses.StatusPlay, resumed.Status)
	assert.Empty(t, resumed.Removed)
	assert.Empty(t, pos.RemovedSpots())
	assert.Equal(t, board.Black, pos.NextToMove())

	played, _, err := uc.PlayMove(ctx, key, board.Black, board.Pass, false)
	require.NoError(t, err)
	assert.Equal(t, statuses.StatusPlay, played.Status)

	played, _, err = uc.PlayMove(ctx, key, board.White, board.Pass, false)
	require.NoError(t, err)
	assert.Equal(t, statuses.StatusStoneRemoval, played.Status)

	_, _, err = uc.Resume(ctx, key)
	require.NoError(t, err)
	_, _, err = uc.Resume(ctx, key)
	assert.ErrorIs(t, err, apperrors.ErrWrongPhase)
}

func TestScoreDuringPlayEstimates(t *testing.T) {
	uc, _ := newTestUseCase(t)
	imported, err := uc.ImportSGF(context.Background(), splitBoard)
	require.NoError(t, err)

	score, err := uc.Score(context.Background(), imported.GameKey)
	require.NoError(t, err)
	assert.Equal(t, "B+4.5", score.Result)
	assert.Equal(t, board.RulesChinese, score.Rules)
	assert.Equal(t, 0.5, score.Komi)
}

func TestFreeHandicapPlacement(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	created, err := uc.CreateGame(ctx, game.CreateGameRequest{Handicap: 2, FreeHandicap: true, Komi: new(float64)})
	require.NoError(t, err)
	key := created.GameKey

	_, _, err = uc.PlayMove(ctx, key, board.White, cell(4, 4), false)
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)

	_, _, err = uc.PlayMove(ctx, key, board.Black, board.Pass, false)
	assert.ErrorIs(t, err, apperrors.ErrIllegalMove)

	_, pos, err := uc.PlayMove(ctx, key, board.Black, cell(2, 2), false)
	require.NoError(t, err)
	assert.Equal(t, board.Black, pos.NextToMove())

	_, _, err = uc.PlayMove(ctx, key, board.Black, cell(2, 2), false)
	assert.ErrorIs(t, err, apperrors.ErrCellOccupied)

	_, pos, err = uc.PlayMove(ctx, key, board.Black, cell(6, 6), false)
	require.NoError(t, err)
	assert.Equal(t, board.White, pos.NextToMove())
	assert.Len(t, pos.BlackStones(), 2)

	_, _, err = uc.PlayMove(ctx, key, board.White, cell(4, 4), false)
	require.NoError(t, err)
}

func TestFixedHandicapWhiteStarts(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	created, err := uc.CreateGame(ctx, game.CreateGameRequest{Handicap: 2})
	require.NoError(t, err)
	assert.Contains(t, created.Sgf, "HA[2]")
	assert.Contains(t, created.Sgf, "AB[")

	pos, err := uc.PositionAt(ctx, created.GameKey, -1, false, false)
	require.NoError(t, err)
	assert.Len(t, pos.BlackStones(), 2)

	_, _, err = uc.PlayMove(ctx, created.GameKey, board.Black, cell(4, 4), false)
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)
	_, _, err = uc.PlayMove(ctx, created.GameKey, board.White, cell(4, 4), false)
	assert.NoError(t, err)
}

func TestImportSGFRejectsBadRecords(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.ImportSGF(ctx, "(;FF[4]SZ[9];B[cc")
	assert.ErrorIs(t, err, apperrors.ErrMalformedSgf)

	_, err = uc.ImportSGF(ctx, "(;FF[4]SZ[9];B[cc];W[cc])")
	assert.ErrorIs(t, err, apperrors.ErrMalformedSgf)
	assert.ErrorIs(t, err, apperrors.ErrIllegalMove)

	_, err = uc.ImportSGF(ctx, "(;FF[4]SZ[9];B[aa];B[bb];W[cc])")
	assert.ErrorIs(t, err, apperrors.ErrMalformedSgf)
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)

	_, err = uc.ImportSGF(ctx, "(;FF[4]SZ[9];B[aa];W[bb](;B[cc])(;W[cc]))")
	assert.ErrorIs(t, err, apperrors.ErrMalformedSgf)
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)

	_, err = uc.ImportSGF(ctx, "(;FF[4]SZ[9]HA[2];B[cc];B[];W[ee])")
	assert.ErrorIs(t, err, apperrors.ErrMalformedSgf)
	assert.ErrorIs(t, err, apperrors.ErrIllegalMove)

	list, err := uc.ListGames(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImportSGFLargeBoardKeepsRecord(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	imported, err := uc.ImportSGF(ctx, "(;FF[4]SZ[30];B[BC];W[tt])")
	require.NoError(t, err)
	assert.Equal(t, []game.Move{
		{Color: board.Black, Cell: cell(27, 28)},
		{Color: board.White, Cell: cell(19, 19)},
	}, imported.Moves)

	_, _, err = uc.PlayMove(ctx, imported.GameKey, board.Black, cell(3, 29), false)
	require.NoError(t, err)

	text, err := uc.GetSgf(ctx, imported.GameKey)
	require.NoError(t, err)
	again, err := uc.ImportSGF(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, cell(3, 29), again.Moves[2].Cell)
	assert.Equal(t, cell(19, 19), again.Moves[1].Cell)
}

func TestImportSGFWithResultIsFinished(t *testing.T) {
	uc, _ := newTestUseCase(t)
	imported, err := uc.ImportSGF(context.Background(), "(;FF[4]SZ[9]RE[W+R];B[cc];W[gg])")
	require.NoError(t, err)

	assert.Equal(t, statuses.StatusFinished, imported.Status)
	assert.Equal(t, "W+R", imported.Result)
	assert.Equal(t, []game.Move{
		{Color: board.Black, Cell: cell(2, 2)},
		{Color: board.White, Cell: cell(6, 6)},
	}, imported.Moves)
}

func TestPositionAtWithVariation(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	imported, err := uc.ImportSGF(ctx, "(;FF[4]SZ[9];B[cc];W[gg](;B[ee])(;B[ce]))")
	require.NoError(t, err)
	require.NotNil(t, imported.Variation)
	key := imported.GameKey

	main, err := uc.PositionAt(ctx, key, 2, false, false)
	require.NoError(t, err)
	assert.Equal(t, board.Black, main.At(cell(4, 4)))
	assert.Equal(t, board.Empty, main.At(cell(2, 4)))

	alt, err := uc.PositionAt(ctx, key, 2, false, true)
	require.NoError(t, err)
	assert.Equal(t, board.Black, alt.At(cell(2, 4)))
	assert.Equal(t, board.Empty, alt.At(cell(4, 4)))

	start, err := uc.PositionAt(ctx, key, -1, false, false)
	require.NoError(t, err)
	assert.Empty(t, start.BlackStones())

	clamped, err := uc.PositionAt(ctx, key, 100, true, false)
	require.NoError(t, err)
	assert.True(t, clamped.HasTheSameStonesAs(main))
	assert.True(t, clamped.HasTerritory())
}

func TestSgfCacheIsRebuilt(t *testing.T) {
	uc, mini := newTestUseCase(t)
	ctx := context.Background()
	created, err := uc.CreateGame(ctx, game.CreateGameRequest{})
	require.NoError(t, err)
	_, _, err = uc.PlayMove(ctx, created.GameKey, board.Black, cell(3, 3), false)
	require.NoError(t, err)

	mini.FlushAll()

	text, err := uc.GetSgf(ctx, created.GameKey)
	require.NoError(t, err)
	assert.Contains(t, text, ";B[dd]")
	assert.True(t, mini.Exists("goban:sgf:"+created.GameKey))
}

func TestListGames(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	_, err := uc.CreateGame(ctx, game.CreateGameRequest{})
	require.NoError(t, err)
	_, err = uc.ImportSGF(ctx, "(;FF[4]SZ[9]RE[B+R];B[cc])")
	require.NoError(t, err)

	all, err := uc.ListGames(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	finished, err := uc.ListGames(ctx, statuses.StatusFinished)
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, "B+R", finished[0].Result)
}
