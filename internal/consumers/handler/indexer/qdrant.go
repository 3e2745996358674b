package indexer

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/trendora/reco/internal/config/structs"
	"github.com/trendora/reco/internal/repositories/vector"
	"github.com/trendora/reco/pkg/metric"
)

const defaultRatePerSecond = 100

var qdrantIndexerHandler Handler

type QdrantIndexer struct {
	vectorDb vector.Database
	limiter  *rate.Limiter
}

func initQdrantIndexerHandler() Handler {
	if qdrantIndexerHandler == nil {
		once.Do(func() {
			ratePerSecond := structs.GetAppConfig().Configs.IndexerRatePerSecond
			if ratePerSecond <= 0 {
				ratePerSecond = defaultRatePerSecond
			}
			qdrantIndexerHandler = &QdrantIndexer{
				vectorDb: vector.NewRepository(vector.DefaultVersion),
				limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), int(ratePerSecond)),
			}
		})
	}
	return qdrantIndexerHandler
}

// SetMockIndexerHandler creates the handler over the given vector database.
// Use only in tests.
func SetMockIndexerHandler(vectorDb vector.Database, ratePerSecond int) Handler {
	once.Do(func() {})
	qdrantIndexerHandler = &QdrantIndexer{
		vectorDb: vectorDb,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
	}
	return qdrantIndexerHandler
}

// Process applies the batched index mutations. Upserts run before deletes so
// a product both upserted and deleted within one batch ends up deleted.
// Writes are rate limited to keep bulk reindexing from starving serving
// traffic.
func (q *QdrantIndexer) Process(event Event) error {
	if upserts := event.Data[Upsert]; len(upserts) > 0 {
		if err := q.limiter.WaitN(context.Background(), len(upserts)); err != nil {
			return err
		}
		upsertRequest := vector.UpsertRequest{Data: make([]vector.Data, 0, len(upserts))}
		for _, data := range upserts {
			upsertRequest.Data = append(upsertRequest.Data, vector.Data{
				Id:      data.Id,
				Payload: data.Payload,
				Vectors: data.Vectors,
			})
		}
		if err := q.vectorDb.BulkUpsert(upsertRequest); err != nil {
			log.Error().Err(err).Int("count", len(upserts)).Msg("bulk upsert failed")
			return err
		}
		metric.Count("indexer_upserted", int64(len(upserts)), nil)
	}

	if deletes := event.Data[Delete]; len(deletes) > 0 {
		if err := q.limiter.WaitN(context.Background(), len(deletes)); err != nil {
			return err
		}
		ids := make([]string, 0, len(deletes))
		for _, data := range deletes {
			ids = append(ids, data.Id)
		}
		if err := q.vectorDb.BulkDelete(vector.DeleteRequest{Ids: ids}); err != nil {
			log.Error().Err(err).Int("count", len(ids)).Msg("bulk delete failed")
			return err
		}
		metric.Count("indexer_deleted", int64(len(ids)), nil)
	}
	return nil
}
