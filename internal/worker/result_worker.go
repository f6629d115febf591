package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edupro/proctor-backend/internal/config"
	"github.com/edupro/proctor-backend/internal/model"
	"github.com/edupro/proctor-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker consumes persist_results_queue, writes finalized quiz
// results to PostgreSQL in batches, and clears the attempt cache keys
// of persisted attempts.
type ResultWorker struct {
	results *repository.ResultRepository
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewResultWorker creates a new ResultWorker.
func NewResultWorker(results *repository.ResultRepository, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		results: results,
		rdb:     rdb,
		log:     log.With().Str("component", "result_worker").Logger(),
	}
}

// Start begins the worker loop with batching. Call in a goroutine.
func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*model.QuizResult, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var res model.QuizResult
			if err := json.Unmarshal([]byte(item[1]), &res); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &res)
		}
	}
}

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*model.QuizResult) {
	if len(batch) == 0 {
		return
	}

	if err := w.results.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk result insert failed, using fallback")

		for _, res := range batch {
			if err := w.results.Create(ctx, res); err != nil {
				w.log.Error().Err(err).
					Str("student_id", res.StudentID).
					Str("exam_id", res.ExamID.String()).
					Msg("single insert failed, requeueing")
				raw, _ := json.Marshal(res)
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
			}
		}
		return
	}

	// After successful inserts, delete the attempt caches in Redis
	w.bulkClearAttemptCaches(ctx, batch)

	w.log.Debug().Int("count", len(batch)).Msg("Persisted result batch")
}

func (w *ResultWorker) bulkClearAttemptCaches(ctx context.Context, batch []*model.QuizResult) {
	pipe := w.rdb.Pipeline()

	for _, res := range batch {
		scheduleID := res.ExamID.String()
		pipe.Del(ctx, config.CacheKey.AttemptStartKey(scheduleID, res.StudentID))
		pipe.Del(ctx, config.CacheKey.AttemptQuestionsKey(scheduleID, res.StudentID))
		pipe.Del(ctx, config.CacheKey.StudentActiveAttemptKey(res.StudentID))
	}

	_, _ = pipe.Exec(ctx)
}
