package vector

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/resolver"

	"github.com/trendora/reco/internal/config/structs"
	"github.com/trendora/reco/pkg/metric"
)

var (
	vectorDb Database
	syncOnce sync.Once
)

type Qdrant struct {
	Client     *qdrant.Client
	Collection string
	Deadline   int
}

func initQdrantInstance() Database {
	if vectorDb == nil {
		syncOnce.Do(func() {
			vectorDb = createQdrantInstance()
		})
	}
	return vectorDb
}

func createQdrantInstance() *Qdrant {
	resolver.SetDefaultScheme("dns")
	cfg := structs.GetAppConfig().Configs
	if cfg.QdrantHost == "" || cfg.QdrantCollection == "" {
		log.Panic().Msg("QDRANT_HOST or QDRANT_COLLECTION is not set")
	}
	client, err := createQdrantClient(cfg.QdrantHost, cfg.QdrantPort)
	if err != nil {
		log.Panic().Msgf("Could not create qdrant client: %v", err)
	}
	_ = healthCheck(client)
	deadline := cfg.QdrantTimeoutInMs
	if deadline == 0 {
		deadline = 2000
	}
	return &Qdrant{
		Client:     client,
		Collection: cfg.QdrantCollection,
		Deadline:   deadline,
	}
}

func createQdrantClient(host string, port int) (*qdrant.Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
		GrpcOptions: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultServiceConfig(`{"loadBalancingPolicy":"round_robin"}`),
		},
	})
	if err != nil {
		log.Error().Msgf("Could not create qdrant client: %v", err)
		return nil, err
	}
	return client, nil
}

func healthCheck(client *qdrant.Client) error {
	healthCheckResult, err := client.HealthCheck(context.Background())
	if err != nil {
		log.Warn().Msgf("Could not get qdrant health: %v", err)
	} else {
		log.Info().Msgf("Qdrant version: %s", healthCheckResult.GetVersion())
	}
	return err
}

// Search runs a similarity query against the product collection.
func (q *Qdrant) Search(request *SearchRequest, metricTags []string) (*SearchResponse, error) {
	startTime := time.Now()
	metric.Incr("vector_db_query", append([]string{"vector_db_type", "qdrant"}, metricTags...))

	searchPoints := &qdrant.SearchPoints{
		CollectionName: q.Collection,
		Vector:         request.Embedding,
		Limit:          uint64(request.Limit),
		WithPayload:    qdrant.NewWithPayloadInclude(request.Payload...),
	}
	if request.MinScore > 0 {
		scoreThreshold := request.MinScore
		searchPoints.ScoreThreshold = &scoreThreshold
	}
	if len(request.ExcludeIds) > 0 {
		searchPoints.Filter = &qdrant.Filter{
			MustNot: []*qdrant.Condition{
				{ConditionOneOf: &qdrant.Condition_HasId{
					HasId: &qdrant.HasIdCondition{HasId: toPointIds(request.ExcludeIds)},
				}},
			},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(q.Deadline)*time.Millisecond)
	defer cancel()
	pointsClient := qdrant.NewPointsClient(q.Client.GetConnection())
	response, err := pointsClient.Search(ctx, searchPoints)
	if err != nil {
		metric.Incr("vector_db_query_failure", append([]string{"vector_db_type", "qdrant"}, metricTags...))
		log.Error().Msgf("Error fetching similar candidates, error %+v", err)
		return nil, err
	}
	candidates := make([]*ScoredItem, 0, len(response.GetResult()))
	for _, point := range response.GetResult() {
		payload := make(map[string]string, len(point.GetPayload()))
		for key, value := range point.GetPayload() {
			payload[key] = value.GetStringValue()
		}
		candidates = append(candidates, &ScoredItem{
			Id:      pointIdToString(point.GetId()),
			Score:   point.GetScore(),
			Payload: payload,
		})
	}
	metric.Timing("vector_db_query_latency", time.Since(startTime),
		append([]string{"vector_db_type", "qdrant"}, metricTags...))
	return &SearchResponse{Candidates: candidates}, nil
}

// GetItemVectors fetches stored embeddings for the given product ids.
func (q *Qdrant) GetItemVectors(ids []string) (map[string][]float32, error) {
	if len(ids) == 0 {
		return map[string][]float32{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(q.Deadline)*time.Millisecond)
	defer cancel()
	pointsClient := qdrant.NewPointsClient(q.Client.GetConnection())
	response, err := pointsClient.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.Collection,
		Ids:            toPointIds(ids),
		WithVectors:    qdrant.NewWithVectorsEnable(true),
	})
	if err != nil {
		log.Error().Msgf("Error fetching item vectors, error %+v", err)
		return nil, err
	}
	vectors := make(map[string][]float32, len(response.GetResult()))
	for _, point := range response.GetResult() {
		vector := point.GetVectors().GetVector()
		if vector == nil {
			continue
		}
		vectors[pointIdToString(point.GetId())] = vector.GetData()
	}
	return vectors, nil
}

// BulkUpsert upserts a batch of product vectors into the collection.
func (q *Qdrant) BulkUpsert(upsertRequest UpsertRequest) error {
	startTime := time.Now()
	metric.Incr("vector_db_bulk_upsert", []string{"vector_db_type", "qdrant"})
	upsertPoints := make([]*qdrant.PointStruct, 0, len(upsertRequest.Data))
	for _, d := range upsertRequest.Data {
		payload := make(map[string]*qdrant.Value, len(d.Payload))
		for key, value := range d.Payload {
			payload[key] = adaptToPayloadValue(value)
		}
		upsertPoints = append(upsertPoints, &qdrant.PointStruct{
			Id:      toPointId(d.Id),
			Payload: payload,
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: d.Vectors}}},
		})
	}
	waitUpsert := true
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(q.Deadline)*time.Millisecond)
	defer cancel()
	writePointsClient := qdrant.NewPointsClient(q.Client.GetConnection())
	_, err := writePointsClient.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.Collection,
		Wait:           &waitUpsert,
		Points:         upsertPoints,
	})
	if err != nil {
		log.Error().Msgf("Failed to upsert points: %v", err)
		metric.Incr("vector_db_bulk_upsert_error", []string{"vector_db_type", "qdrant"})
		return err
	}
	metric.Timing("vector_db_bulk_upsert_latency", time.Since(startTime), []string{"vector_db_type", "qdrant"})
	return nil
}

// BulkDelete removes a batch of product vectors from the collection.
func (q *Qdrant) BulkDelete(deleteRequest DeleteRequest) error {
	startTime := time.Now()
	metric.Incr("vector_db_bulk_delete", []string{"vector_db_type", "qdrant"})
	waitDelete := true
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(q.Deadline)*time.Millisecond)
	defer cancel()
	writePointsClient := qdrant.NewPointsClient(q.Client.GetConnection())
	_, err := writePointsClient.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.Collection,
		Wait:           &waitDelete,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: toPointIds(deleteRequest.Ids)},
			},
		},
	})
	if err != nil {
		log.Error().Msgf("Failed to delete points: %v", err)
		metric.Incr("vector_db_bulk_delete_error", []string{"vector_db_type", "qdrant"})
		return err
	}
	metric.Timing("vector_db_bulk_delete_latency", time.Since(startTime), []string{"vector_db_type", "qdrant"})
	return nil
}

// CreateCollection creates the product collection with cosine distance.
func (q *Qdrant) CreateCollection(dimension int) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(q.Deadline)*time.Millisecond)
	defer cancel()
	collectionsClient := qdrant.NewCollectionsClient(q.Client.GetConnection())
	_, err := collectionsClient.Create(ctx, &qdrant.CreateCollection{
		CollectionName: q.Collection,
		VectorsConfig: &qdrant.VectorsConfig{Config: &qdrant.VectorsConfig_Params{
			Params: &qdrant.VectorParams{
				Size:     uint64(dimension),
				Distance: qdrant.Distance_Cosine,
			},
		}},
	})
	if err != nil {
		log.Error().Msgf("Could not create collection %s: %v", q.Collection, err)
		return err
	}
	log.Info().Msgf("Collection created: %v", q.Collection)
	return nil
}

func toPointIds(ids []string) []*qdrant.PointId {
	pointIds := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIds = append(pointIds, toPointId(id))
	}
	return pointIds
}

// toPointId maps numeric product ids to numeric point ids and anything else
// to a uuid point id.
func toPointId(id string) *qdrant.PointId {
	if num, err := strconv.ParseUint(id, 10, 64); err == nil {
		return &qdrant.PointId{PointIdOptions: &qdrant.PointId_Num{Num: num}}
	}
	return &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}}
}

func pointIdToString(id *qdrant.PointId) string {
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func adaptToPayloadValue(value interface{}) *qdrant.Value {
	switch v := value.(type) {
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: v}}
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
	case float32:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: float64(v)}}
	default:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", v)}}
	}
}
