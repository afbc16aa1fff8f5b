package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gitlab.com/open-soft/go-signal-bot/src/model"
)

const snapshotKey = "engine-state-snapshot"
const recentScoreLimit = 50

// SnapshotRepository is the Redis-backed observability sink: the latest
// state snapshot (full replace, idempotent) plus a bounded per-symbol score
// history.
type SnapshotRepository struct {
	RDB *redis.Client
	Ctx *context.Context
}

func (repo *SnapshotRepository) Save(snapshot model.StateSnapshot) error {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return repo.RDB.Set(*repo.Ctx, snapshotKey, string(encoded), time.Hour).Err()
}

func (repo *SnapshotRepository) Get() *model.StateSnapshot {
	res := repo.RDB.Get(*repo.Ctx, snapshotKey).Val()
	if len(res) == 0 {
		return nil
	}

	var dto model.StateSnapshot
	if err := json.Unmarshal([]byte(res), &dto); err != nil {
		return nil
	}

	return &dto
}

func (repo *SnapshotRepository) scoreCacheKey(symbol string) string {
	return fmt.Sprintf("recent-scores-%s", symbol)
}

func (repo *SnapshotRepository) SaveScore(score model.Score) {
	encoded, err := json.Marshal(score)
	if err != nil {
		return
	}

	key := repo.scoreCacheKey(score.Symbol)
	repo.RDB.LPush(*repo.Ctx, key, string(encoded))
	repo.RDB.LTrim(*repo.Ctx, key, 0, recentScoreLimit-1)
}

func (repo *SnapshotRepository) GetRecentScores(symbol string) []model.Score {
	res := repo.RDB.LRange(*repo.Ctx, repo.scoreCacheKey(symbol), 0, recentScoreLimit-1).Val()
	list := make([]model.Score, 0)

	for _, str := range res {
		var dto model.Score
		if err := json.Unmarshal([]byte(str), &dto); err != nil {
			continue
		}
		list = append(list, dto)
	}

	return list
}
