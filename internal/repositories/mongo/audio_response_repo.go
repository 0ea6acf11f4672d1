package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chaimaguesmi/Backend-entretien-audio/internal/models"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/utils"
)

type AudioResponseRepository interface {
	Insert(ctx context.Context, a *models.AudioResponse) error
	GetByID(ctx context.Context, id string) (*models.AudioResponse, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.AudioResponse, error)
	GetByCandidateAndQuestion(ctx context.Context, candidateID, questionID string) (*models.AudioResponse, error)
	Update(ctx context.Context, id string, patch models.AudioResponsePatch) (int64, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, skip, limit int64) ([]models.AudioResponse, error)
	Count(ctx context.Context) (int64, error)
	CountByCandidate(ctx context.Context, candidateID string) (int64, error)
}

type audioResponseRepo struct {
	col *mongo.Collection
}

func NewAudioResponseRepo(db *mongo.Database) AudioResponseRepository {
	return &audioResponseRepo{col: db.Collection("audio_responses")}
}

func (r *audioResponseRepo) Insert(ctx context.Context, a *models.AudioResponse) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	res, err := r.col.InsertOne(ctx, a)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

func (r *audioResponseRepo) GetByID(ctx context.Context, id string) (*models.AudioResponse, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// malformed id is a miss, never a query error
		return nil, utils.ErrNotFound
	}

	var a models.AudioResponse
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *audioResponseRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.AudioResponse, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"candidate_id": candidateID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.AudioResponse{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *audioResponseRepo) GetByCandidateAndQuestion(ctx context.Context, candidateID, questionID string) (*models.AudioResponse, error) {
	var a models.AudioResponse
	err := r.col.FindOne(ctx, bson.M{
		"candidate_id": candidateID,
		"question_id":  questionID,
	}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// audioResponseSetDoc builds the $set document from non-nil patch fields.
// updated_at is always included.
func audioResponseSetDoc(patch models.AudioResponsePatch) bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.FileName != nil {
		set["file_name"] = *patch.FileName
	}
	if patch.FileSize != nil {
		set["file_size"] = *patch.FileSize
	}
	if patch.Format != nil {
		set["format"] = *patch.Format
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}
	return set
}

func (r *audioResponseRepo) Update(ctx context.Context, id string, patch models.AudioResponsePatch) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": audioResponseSetDoc(patch)},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *audioResponseRepo) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *audioResponseRepo) List(ctx context.Context, skip, limit int64) ([]models.AudioResponse, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetSkip(skip).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.AudioResponse{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *audioResponseRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *audioResponseRepo) CountByCandidate(ctx context.Context, candidateID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"candidate_id": candidateID})
}
