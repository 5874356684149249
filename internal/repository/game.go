package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"goban/internal/domain/game"
	apperrors "goban/internal/errors"
)

const gamesCollection = "games"

type GameRepository struct {
	log   *zap.SugaredLogger
	mongo *mongo.Database
}

func NewGameRepository(log *zap.SugaredLogger, mongo *mongo.Database) *GameRepository {
	return &GameRepository{
		log:   log,
		mongo: mongo,
	}
}

func (g *GameRepository) GenerateGameKey(ctx context.Context) (string, error) {
	for range 3 {
		key := uuid.New().String()
		uniq, err := g.checkKeyIsUniq(ctx, key)
		if err != nil {
			return "", err
		}
		if uniq {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate a unique game key", apperrors.ErrInternal)
}

func (g *GameRepository) checkKeyIsUniq(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := g.mongo.Collection(gamesCollection).FindOne(ctx, bson.M{"game_key": key}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return true, nil
	}
	return false, err
}

func (g *GameRepository) PutGame(ctx context.Context, gameData game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := g.mongo.Collection(gamesCollection).InsertOne(ctx, gameData)
	if err != nil {
		g.log.Errorf("failed to insert game to database: %v", err)
		return fmt.Errorf("insert game: %w", err)
	}

	g.log.Infof("game inserted successfully with key: %s", gameData.GameKey)
	return nil
}

func (g *GameRepository) GetGameByGameKey(ctx context.Context, gameKey string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result game.Game
	err := g.mongo.Collection(gamesCollection).FindOne(ctx, bson.M{"game_key": gameKey}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, apperrors.ErrGameNotFound
	} else if err != nil {
		g.log.Error(err)
		return game.Game{}, fmt.Errorf("find game %s: %w", gameKey, err)
	}
	return result, nil
}

func (g *GameRepository) UpdateGame(ctx context.Context, gameData game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(false)
	res, err := g.mongo.Collection(gamesCollection).ReplaceOne(ctx, bson.M{"game_key": gameData.GameKey}, gameData, opts)
	if err != nil {
		g.log.Errorf("failed to update game in database: %v", err)
		return fmt.Errorf("update game %s: %w", gameData.GameKey, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrGameNotFound
	}
	return nil
}

// ListGames returns games with the given status, newest first. An empty status
// matches every game.
func (g *GameRepository) ListGames(ctx context.Context, status string) ([]game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := g.mongo.Collection(gamesCollection).Find(ctx, filter, opts)
	if err != nil {
		g.log.Error(err)
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer cursor.Close(ctx)

	var result []game.Game
	for cursor.Next(ctx) {
		var play game.Game
		if err = cursor.Decode(&play); err != nil {
			g.log.Error(err)
			return result, fmt.Errorf("decode game: %w", err)
		}
		result = append(result, play)
	}
	return result, cursor.Err()
}
