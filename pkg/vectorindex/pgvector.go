package vectorindex

import (
	"context"
	"fmt"

	"bakery-support-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PgIndex implements Index on top of Postgres with the pgvector extension.
// One PgIndex maps to one table of model.VectorRecord rows.
type PgIndex struct {
	db    *gorm.DB
	table string
}

var _ Index = &PgIndex{}

func NewPgIndex(db *gorm.DB, table string) *PgIndex {
	return &PgIndex{
		db:    db,
		table: table,
	}
}

func (i *PgIndex) Query(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]Match, error) {
	if topK <= 0 {
		topK = 3
	}

	type result struct {
		model.VectorRecord
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query) recovers the similarity score.
	query := i.db.WithContext(ctx).
		Table(i.table).
		Select("*, 1 - (embedding <=> ?) as similarity", queryVector)

	for key, value := range filter {
		query = query.Where("metadata ->> ? = ?", key, value)
	}

	err := query.
		Order("similarity DESC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("vector query on %s failed: %w", i.table, err)
	}

	matches := make([]Match, len(results))
	for idx, res := range results {
		matches[idx] = Match{
			ID:       res.Id,
			Score:    res.Similarity,
			Metadata: toStringMap(res.Metadata),
		}
	}
	return matches, nil
}

func (i *PgIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]model.VectorRecord, len(records))
	for idx, r := range records {
		rows[idx] = model.VectorRecord{
			Id:        r.ID,
			Embedding: pgvector.NewVector(r.Values),
			Metadata:  toJSONMap(r.Metadata),
		}
	}

	err := i.db.WithContext(ctx).
		Table(i.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("vector upsert on %s failed: %w", i.table, err)
	}
	return nil
}

func (i *PgIndex) Fetch(ctx context.Context, ids []string) (map[string][]float32, error) {
	if len(ids) == 0 {
		return map[string][]float32{}, nil
	}

	var rows []model.VectorRecord
	err := i.db.WithContext(ctx).
		Table(i.table).
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vector fetch on %s failed: %w", i.table, err)
	}

	vectors := make(map[string][]float32, len(rows))
	for _, row := range rows {
		vectors[row.Id] = row.Embedding.Slice()
	}
	return vectors, nil
}

func toJSONMap(m map[string]string) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func toStringMap(m datatypes.JSONMap) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
