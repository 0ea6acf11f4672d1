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

// MessageFilter is the flat equality filter for the message search endpoint.
// Empty fields are omitted from the query.
type MessageFilter struct {
	CandidateID    string
	ConversationID string
	Sender         string
}

type ConversationRepository interface {
	Insert(ctx context.Context, c *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.Conversation, error)
	GetActiveByCandidate(ctx context.Context, candidateID string) (*models.Conversation, error)
	Update(ctx context.Context, id string, patch models.ConversationPatch) (int64, error)
	PushMessage(ctx context.Context, id string, msg *models.Message) (int64, error)
	Delete(ctx context.Context, id string) (bool, error)
	FindByMessageID(ctx context.Context, messageID primitive.ObjectID) (*models.Conversation, error)
	PullMessage(ctx context.Context, conversationID, messageID primitive.ObjectID) (int64, error)
	FindForMessages(ctx context.Context, f MessageFilter) ([]models.Conversation, error)
}

type conversationRepo struct {
	col *mongo.Collection
}

func NewConversationRepo(db *mongo.Database) ConversationRepository {
	return &conversationRepo{col: db.Collection("conversations")}
}

func (r *conversationRepo) Insert(ctx context.Context, c *models.Conversation) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	if c.Messages == nil {
		c.Messages = []models.Message{}
	}
	if c.QuestionCategories == nil {
		c.QuestionCategories = []map[string]any{}
	}
	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrNotFound
	}

	var c models.Conversation
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conversationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.Conversation, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"candidate_id": candidateID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Conversation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) GetActiveByCandidate(ctx context.Context, candidateID string) (*models.Conversation, error) {
	// "active" is the interview_completed flag alone, not recency
	var c models.Conversation
	err := r.col.FindOne(ctx, bson.M{
		"candidate_id":        candidateID,
		"interview_completed": false,
	}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func conversationSetDoc(patch models.ConversationPatch) bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.JobTitle != nil {
		set["job_title"] = *patch.JobTitle
	}
	if patch.CompanyName != nil {
		set["company_name"] = *patch.CompanyName
	}
	if patch.InterviewPhase != nil {
		set["interview_phase"] = *patch.InterviewPhase
	}
	if patch.CurrentCategoryIndex != nil {
		set["current_category_index"] = *patch.CurrentCategoryIndex
	}
	if patch.CurrentQuestionInCategory != nil {
		set["current_question_in_category"] = *patch.CurrentQuestionInCategory
	}
	if patch.QuestionCategories != nil {
		set["question_categories"] = *patch.QuestionCategories
	}
	if patch.InterviewStarted != nil {
		set["interview_started"] = *patch.InterviewStarted
	}
	if patch.InterviewCompleted != nil {
		set["interview_completed"] = *patch.InterviewCompleted
	}
	return set
}

func (r *conversationRepo) Update(ctx context.Context, id string, patch models.ConversationPatch) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": conversationSetDoc(patch)},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// PushMessage appends the message and refreshes updated_at in a single atomic
// UpdateOne, so concurrent appends never lose entries.
func (r *conversationRepo) PushMessage(ctx context.Context, id string, msg *models.Message) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *conversationRepo) Delete(ctx context.Context, id string) (bool, error) {
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

func (r *conversationRepo) FindByMessageID(ctx context.Context, messageID primitive.ObjectID) (*models.Conversation, error) {
	var c models.Conversation
	err := r.col.FindOne(ctx, bson.M{"messages._id": messageID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conversationRepo) PullMessage(ctx context.Context, conversationID, messageID primitive.ObjectID) (int64, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{
			"$pull": bson.M{"messages": bson.M{"_id": messageID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// messageFilterDoc flattens a MessageFilter into the query document. An
// unparseable conversation id is dropped from the filter rather than failing
// the whole search.
func messageFilterDoc(f MessageFilter) bson.M {
	q := bson.M{}
	if f.CandidateID != "" {
		q["candidate_id"] = f.CandidateID
	}
	if f.ConversationID != "" {
		if oid, err := primitive.ObjectIDFromHex(f.ConversationID); err == nil {
			q["_id"] = oid
		}
	}
	if f.Sender != "" {
		q["messages.sender"] = f.Sender
	}
	return q
}

func (r *conversationRepo) FindForMessages(ctx context.Context, f MessageFilter) ([]models.Conversation, error) {
	cur, err := r.col.Find(ctx, messageFilterDoc(f))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Conversation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
