package qdrantdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/qdrant/go-client/qdrant"
	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/rag/vectordb"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

var logger *logx.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingDimension)
var collectionName = config.ChunkCollectionName

type ClientHolder struct {
	QObj *qdrant.Client
}

// GetQdrantIndex returns the shared Qdrant-backed chunk index, creating the
// client and collection on first use. Returns nil when Qdrant is offline.
func GetQdrantIndex(ctx context.Context) *ClientHolder {
	once.Do(func() {
		logger = logx.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{QObj: qdrantInstance}
}

func newClient() *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	err = createCollection(context.Background(), client, collectionName)
	if err != nil {
		logger.Error("could not create collection", "collectionName", collectionName, "error", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) Upsert(ctx context.Context, chunk tabModel.Chunk) error {
	if len(chunk.Embedding) != int(dimension) {
		return vectordb.ErrDimensionMismatch
	}

	payload := map[string]any{
		"text":           chunk.Text,
		"tab_id":         chunk.TabId,
		"words":          chunk.Counts.Words,
		"characters":     chunk.Counts.Characters,
		"position_start": chunk.Position.Start,
		"position_end":   chunk.Position.End,
	}
	for k, v := range chunk.Metadata {
		payload["meta_"+k] = v
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(chunk.Id),
				Vectors: qdrant.NewVectors(chunk.Embedding...),
				Payload: qdrant.NewValueMap(payload),
			},
		},
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// DeleteByTab removes every chunk of one tab with a single filtered delete,
// so no reader sees a partial chunk set as complete.
func (db *ClientHolder) DeleteByTab(ctx context.Context, tabId string) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("tab_id", tabId),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		loggr.Error("Error deleting chunks for tab", "tabId", tabId, "error", err)
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, tabIds []string, limit uint64) ([]vectordb.ScoredID, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	// an empty allow-list means "search nothing", not "search everything"
	if len(tabIds) == 0 {
		return []vectordb.ScoredID{}, nil
	}
	if limit == 0 {
		limit = config.SearchResultLimit
	}
	if limit > config.SearchResultMaxLimit {
		limit = config.SearchResultMaxLimit
	}

	should := make([]*qdrant.Condition, 0, len(tabIds))
	for _, id := range tabIds {
		should = append(should, qdrant.NewMatch("tab_id", id))
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		Filter:         &qdrant.Filter{Should: should},
	})
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	hits := make([]vectordb.ScoredID, 0, len(result))
	for _, hit := range result {
		hits = append(hits, vectordb.ScoredID{
			ChunkId: hit.Id.GetUuid(),
			Score:   hit.Score,
		})
	}
	return hits, nil
}

func (db *ClientHolder) Fetch(ctx context.Context, ids []string) ([]tabModel.Chunk, error) {
	if len(ids) == 0 {
		return []tabModel.Chunk{}, nil
	}

	pointIds := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIds = append(pointIds, qdrant.NewID(id))
	}

	points, err := db.QObj.Get(ctx, &qdrant.GetPoints{
		CollectionName: collectionName,
		Ids:            pointIds,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant fetch failed: %w", err)
	}

	chunks := make([]tabModel.Chunk, 0, len(points))
	for _, p := range points {
		chunks = append(chunks, chunkFromPayload(p.Id.GetUuid(), p.Payload))
	}
	return chunks, nil
}

func chunkFromPayload(id string, payload map[string]*qdrant.Value) tabModel.Chunk {
	chunk := tabModel.Chunk{
		Id:    id,
		TabId: payload["tab_id"].GetStringValue(),
		Text:  payload["text"].GetStringValue(),
		Counts: tabModel.ChunkCounts{
			Words:      int(payload["words"].GetIntegerValue()),
			Characters: int(payload["characters"].GetIntegerValue()),
		},
		Position: tabModel.ChunkPosition{
			Start: int(payload["position_start"].GetIntegerValue()),
			End:   int(payload["position_end"].GetIntegerValue()),
		},
	}
	for k, v := range payload {
		if len(k) > 5 && k[:5] == "meta_" {
			if chunk.Metadata == nil {
				chunk.Metadata = make(map[string]string)
			}
			chunk.Metadata[k[5:]] = v.GetStringValue()
		}
	}
	return chunk
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
