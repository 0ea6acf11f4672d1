package config

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// audio_responses indexes
	audio := db.Collection("audio_responses")
	_, err := audio.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// supersede lookup: one current response per (candidate, question)
		{
			Keys:    bson.D{{Key: "candidate_id", Value: 1}, {Key: "question_id", Value: 1}},
			Options: options.Index().SetName("by_candidate_question"),
		},
		{
			Keys:    bson.D{{Key: "candidate_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_candidate_created"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_created"),
		},
	})
	if err != nil {
		return err
	}

	// conversations indexes
	conversations := db.Collection("conversations")
	_, err = conversations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "candidate_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_candidate_created"),
		},
		// active-conversation lookup
		{
			Keys:    bson.D{{Key: "candidate_id", Value: 1}, {Key: "interview_completed", Value: 1}},
			Options: options.Index().SetName("by_candidate_completed"),
		},
		// message deletion locates the parent by embedded id
		{
			Keys:    bson.D{{Key: "messages._id", Value: 1}},
			Options: options.Index().SetName("by_message_id"),
		},
	})
	return err
}
