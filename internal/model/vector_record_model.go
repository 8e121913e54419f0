package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// VectorRecord backs one row of a vector index table. The same shape serves
// the product, conversation-history and feedback indexes; each index binds
// its own table name.
type VectorRecord struct {
	Id        string            `gorm:"primaryKey;size:128"`
	Embedding pgvector.Vector   `gorm:"type:vector(1024)"` // mistral-embed uses 1024 dimensions
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
}
