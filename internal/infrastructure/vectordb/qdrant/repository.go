// Package qdrant provides a VectorDB implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/infrastructure/config"
)

// Repository implements the VectorDB interface using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to qdrant")
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating collection")
	}

	return nil
}

// DeleteCollection removes the collection and all its data.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return errors.Wrap(err, "deleting collection")
	}

	return nil
}

// Save stores a rule doc with its embedding.
func (r *Repository) Save(ctx context.Context, doc entities.RuleDoc) error {
	return r.SaveBatch(ctx, []entities.RuleDoc{doc})
}

// SaveBatch stores multiple rule docs. Doc IDs become point IDs, so saving
// the same doc again overwrites it.
func (r *Repository) SaveBatch(ctx context.Context, docs []entities.RuleDoc) error {
	points := make([]*pb.PointStruct, 0, len(docs))

	for _, doc := range docs {
		pointID := doc.ID
		if pointID == "" {
			pointID = uuid.New().String()
		}

		point := &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{
					Uuid: pointID,
				},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{
						Data: doc.Embedding,
					},
				},
			},
			Payload: map[string]*pb.Value{
				"rule_id":     {Kind: &pb.Value_StringValue{StringValue: doc.RuleID}},
				"category_id": {Kind: &pb.Value_StringValue{StringValue: doc.CategoryID}},
				"title":       {Kind: &pb.Value_StringValue{StringValue: doc.Title}},
				"body":        {Kind: &pb.Value_StringValue{StringValue: doc.Body}},
				"source":      {Kind: &pb.Value_StringValue{StringValue: doc.Source}},
				"created_at":  {Kind: &pb.Value_StringValue{StringValue: doc.CreatedAt.Format(time.RFC3339)}},
				"updated_at":  {Kind: &pb.Value_StringValue{StringValue: doc.UpdatedAt.Format(time.RFC3339)}},
			},
		}
		points = append(points, point)
	}

	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         points,
	})
	if err != nil {
		return errors.Wrap(err, "upserting points")
	}

	return nil
}

// FindByID retrieves a rule doc by its ID.
func (r *Repository) FindByID(ctx context.Context, id string) (entities.RuleDoc, error) {
	resp, err := r.points.Get(ctx, &pb.GetPoints{
		CollectionName: r.collection,
		Ids: []*pb.PointId{
			{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
		},
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
		WithVectors: &pb.WithVectorsSelector{
			SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return entities.RuleDoc{}, errors.Wrap(err, "getting point")
	}

	if len(resp.Result) == 0 {
		return entities.RuleDoc{}, errors.Wrapf(errors.ErrNotFound, "rule doc not found: %s", id)
	}

	point := resp.Result[0]
	var embedding []float32
	if vec := point.Vectors.GetVector(); vec != nil {
		embedding = vec.Data
	}
	return docFromPayload(point.Id.GetUuid(), point.Payload, embedding), nil
}

// Search performs a semantic search and returns similar rule docs with
// scores, best match first.
func (r *Repository) Search(ctx context.Context, embedding []float32, limit int) ([]entities.RuleDoc, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "searching points")
	}

	return scoredPointsToDocs(resp.Result), nil
}

// SearchByCategory performs a semantic search filtered by category.
func (r *Repository) SearchByCategory(ctx context.Context, embedding []float32, categoryID string, limit int) ([]entities.RuleDoc, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		Filter: &pb.Filter{
			Must: []*pb.Condition{
				{
					ConditionOneOf: &pb.Condition_Field{
						Field: &pb.FieldCondition{
							Key: "category_id",
							Match: &pb.Match{
								MatchValue: &pb.Match_Keyword{
									Keyword: categoryID,
								},
							},
						},
					},
				},
			},
		},
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "searching points by category")
	}

	return scoredPointsToDocs(resp.Result), nil
}

// Delete removes a rule doc by its ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{
						{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
					},
				},
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "deleting point")
	}

	return nil
}

// scoredPointsToDocs converts scored search results to rule docs, carrying
// each point's similarity score.
func scoredPointsToDocs(points []*pb.ScoredPoint) []entities.RuleDoc {
	docs := make([]entities.RuleDoc, 0, len(points))
	for _, point := range points {
		doc := docFromPayload(point.Id.GetUuid(), point.Payload, nil)
		doc.Score = point.Score
		docs = append(docs, doc)
	}
	return docs
}

// docFromPayload converts a Qdrant payload back to a RuleDoc.
func docFromPayload(id string, payload map[string]*pb.Value, embedding []float32) entities.RuleDoc {
	doc := entities.RuleDoc{
		ID:         id,
		RuleID:     getStringValue(payload, "rule_id"),
		CategoryID: getStringValue(payload, "category_id"),
		Title:      getStringValue(payload, "title"),
		Body:       getStringValue(payload, "body"),
		Source:     getStringValue(payload, "source"),
		Embedding:  embedding,
	}
	if t, err := time.Parse(time.RFC3339, getStringValue(payload, "created_at")); err == nil {
		doc.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, getStringValue(payload, "updated_at")); err == nil {
		doc.UpdatedAt = t
	}
	return doc
}

// getStringValue extracts a string payload field.
func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
