package mongodb

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"reel/internal/model/script"
)

// EnsureIndexes 应用启动时创建全部集合的索引
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	models := []Model{
		&script.Document{},
	}

	if err := EnsureAllIndexes(ctx, db, models...); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	log.Info().Int("collections", len(models)).Msg("mongodb indexes ensured")
	return nil
}
