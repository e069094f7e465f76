package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"jobbuddy/career-assistant/internal/config"
)

// EmbeddingSize matches the text-embedding-004 model.
const EmbeddingSize = 768

type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertChunk(ctx context.Context, chunk GuideChunk, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error)
	DeleteDocument(ctx context.Context, docID string) error
	Close() error
}

// GuideChunk is one piece of a career guide stored in the knowledge base.
type GuideChunk struct {
	DocID   string
	DocType string
	Title   string
	Index   int
	Text    string
}

type SearchResult struct {
	ID      string
	Score   float32
	Text    string
	DocType string
	Title   string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

// NewQdrantService returns nil without error when the knowledge base is
// disabled.
func NewQdrantService(cfg config.QdrantConfig) (QdrantService, error) {
	if !cfg.Enabled {
		log.Println("ℹ️  Qdrant disabled, knowledge base context is off")
		return nil, nil
	}

	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// The gRPC port is 6334 unless the URL names one.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: cfg.Collection,
		vectorSize:     EmbeddingSize,
	}, nil
}

func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertChunk stores a chunk under an id derived from its document and
// position, so re-ingesting a guide overwrites its old chunks.
func (q *qdrantService) UpsertChunk(ctx context.Context, chunk GuideChunk, embedding []float32) error {
	pointID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", chunk.DocID, chunk.Index)))

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"doc_id":      chunk.DocID,
			"doc_type":    chunk.DocType,
			"title":       chunk.Title,
			"chunk_index": int64(chunk.Index),
			"text":        chunk.Text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error) {
	var filter *qdrant.Filter
	if docType != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("doc_type", docType),
			},
		}
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, SearchResult{
			ID:      payloadString(point.Payload, "doc_id"),
			Score:   point.Score,
			Text:    payloadString(point.Payload, "text"),
			DocType: payloadString(point.Payload, "doc_type"),
			Title:   payloadString(point.Payload, "title"),
		})
	}

	return results, nil
}

func (q *qdrantService) DeleteDocument(ctx context.Context, docID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("doc_id", docID),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

func (q *qdrantService) Close() error {
	return q.client.Close()
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return s.StringValue
		}
	}
	return ""
}
