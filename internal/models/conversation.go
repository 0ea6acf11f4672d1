package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one entry in a conversation thread. It has no lifecycle of its
// own: created on append, removed only by pulling it out of the parent's list.
type Message struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Sender string             `bson:"sender" json:"sender"` // "bot" | "user"

	Content  *string  `bson:"content,omitempty" json:"content,omitempty"`
	AudioURL *string  `bson:"audio_url,omitempty" json:"audio_url,omitempty"`
	FileName *string  `bson:"file_name,omitempty" json:"file_name,omitempty"`
	FileSize *int64   `bson:"file_size,omitempty" json:"file_size,omitempty"`
	Duration *float64 `bson:"duration,omitempty" json:"duration,omitempty"`
	Format   *string  `bson:"format,omitempty" json:"format,omitempty"`

	Timestamp time.Time `bson:"timestamp" json:"timestamp"` // set at append, never modified
}

// Conversation is a candidate-scoped interview thread. Messages are embedded
// and append-only in normal flow; insertion order is chronological order.
type Conversation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CandidateID string             `bson:"candidate_id" json:"candidate_id"`
	JobTitle    string             `bson:"job_title" json:"job_title"`
	CompanyName string             `bson:"company_name" json:"company_name"`

	InterviewPhase            string           `bson:"interview_phase" json:"interview_phase"`
	CurrentCategoryIndex      int              `bson:"current_category_index" json:"current_category_index"`
	CurrentQuestionInCategory int              `bson:"current_question_in_category" json:"current_question_in_category"`
	QuestionCategories        []map[string]any `bson:"question_categories" json:"question_categories"`

	Messages []Message `bson:"messages" json:"messages"`

	InterviewStarted   bool `bson:"interview_started" json:"interview_started"`
	InterviewCompleted bool `bson:"interview_completed" json:"interview_completed"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ConversationPatch is a partial update: only non-nil fields are written. The
// interview flags are independent booleans set explicitly by callers, never
// derived from message count or category index.
type ConversationPatch struct {
	JobTitle                  *string           `json:"job_title,omitempty"`
	CompanyName               *string           `json:"company_name,omitempty"`
	InterviewPhase            *string           `json:"interview_phase,omitempty"`
	CurrentCategoryIndex      *int              `json:"current_category_index,omitempty"`
	CurrentQuestionInCategory *int              `json:"current_question_in_category,omitempty"`
	QuestionCategories        *[]map[string]any `json:"question_categories,omitempty"`
	InterviewStarted          *bool             `json:"interview_started,omitempty"`
	InterviewCompleted        *bool             `json:"interview_completed,omitempty"`
}

const DefaultInterviewPhase = "welcome"
