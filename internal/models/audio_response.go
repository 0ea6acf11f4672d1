package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AudioResponse is the metadata record for one audio answer to one question.
// The raw bytes live behind FilePath, which is either a local filesystem path
// or a remote locator (s3:// or gs:// prefix).
type AudioResponse struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CandidateID string             `bson:"candidate_id" json:"candidate_id"`
	QuestionID  string             `bson:"question_id" json:"question_id"`

	FilePath string   `bson:"file_path" json:"file_path"`
	FileName string   `bson:"file_name" json:"file_name"`
	FileSize int64    `bson:"file_size" json:"file_size"`
	Format   string   `bson:"format" json:"format"`
	Duration *float64 `bson:"duration,omitempty" json:"duration,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AudioResponsePatch lists the fields a metadata update may touch. Nil fields
// are left untouched; updated_at is always refreshed by the repository.
type AudioResponsePatch struct {
	FileName *string  `json:"file_name,omitempty"`
	FileSize *int64   `json:"file_size,omitempty"`
	Format   *string  `json:"format,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
}
