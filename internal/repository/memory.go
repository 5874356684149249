package repo

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"goban/internal/domain/game"
	apperrors "goban/internal/errors"
)

// MemoryStore keeps games and their SGF records in process memory. It serves
// local runs without MongoDB and Redis.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]game.Game
	sgf   map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]game.Game),
		sgf:   make(map[string]string),
	}
}

func (s *MemoryStore) GenerateGameKey(ctx context.Context) (string, error) {
	return uuid.New().String(), nil
}

func (s *MemoryStore) PutGame(ctx context.Context, gameData game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[gameData.GameKey] = clone(gameData)
	return nil
}

func (s *MemoryStore) GetGameByGameKey(ctx context.Context, gameKey string) (game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[gameKey]
	if !ok {
		return game.Game{}, apperrors.ErrGameNotFound
	}
	return clone(g), nil
}

func (s *MemoryStore) UpdateGame(ctx context.Context, gameData game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[gameData.GameKey]; !ok {
		return apperrors.ErrGameNotFound
	}
	s.games[gameData.GameKey] = clone(gameData)
	return nil
}

func (s *MemoryStore) ListGames(ctx context.Context, status string) ([]game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []game.Game
	for _, g := range s.games {
		if status == "" || g.Status == status {
			res = append(res, clone(g))
		}
	}
	slices.SortFunc(res, func(a, b game.Game) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return res, nil
}

func (s *MemoryStore) SaveSGF(ctx context.Context, gameKey string, sgfText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sgf[gameKey] = sgfText
	return nil
}

func (s *MemoryStore) LoadSGF(ctx context.Context, gameKey string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.sgf[gameKey]
	if !ok {
		return "", apperrors.ErrSgfNotCached
	}
	return text, nil
}

// clone copies the slices so callers cannot change stored games.
func clone(g game.Game) game.Game {
	g.Moves = slices.Clone(g.Moves)
	g.Removed = slices.Clone(g.Removed)
	if g.Variation != nil {
		v := *g.Variation
		v.Moves = slices.Clone(v.Moves)
		g.Variation = &v
	}
	return g
}
