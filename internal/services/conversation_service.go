package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chaimaguesmi/Backend-entretien-audio/internal/cache"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/models"
	mongorepo "github.com/chaimaguesmi/Backend-entretien-audio/internal/repositories/mongo"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/utils"
)

const conversationCacheTTL = 30 * time.Second

type ConversationInput struct {
	CandidateID        string
	JobTitle           string
	CompanyName        string
	InterviewPhase     string
	QuestionCategories []map[string]any
}

type MessageInput struct {
	Sender   string
	Content  *string
	AudioURL *string
	FileName *string
	FileSize *int64
	Duration *float64
	Format   *string
}

// AudioMessageInput carries a message plus the identity fields needed when the
// append target does not exist and a new conversation must be seeded.
type AudioMessageInput struct {
	MessageInput
	CandidateID string
	JobTitle    string
	CompanyName string
}

type ConversationService interface {
	Create(ctx context.Context, in ConversationInput) (*models.Conversation, error)
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.Conversation, error)
	GetActiveByCandidate(ctx context.Context, candidateID string) (*models.Conversation, error)
	Update(ctx context.Context, id string, patch models.ConversationPatch) (*models.Conversation, error)
	AddMessage(ctx context.Context, id string, in MessageInput) (*models.Conversation, error)
	CreateOrAppendAudioMessage(ctx context.Context, conversationID string, in AudioMessageInput) (*models.Conversation, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteMessage(ctx context.Context, messageID string) (bool, error)
	SearchMessages(ctx context.Context, f mongorepo.MessageFilter) ([]models.Message, error)
}

type conversationService struct {
	convos mongorepo.ConversationRepository
	cache  cache.Cache
}

func NewConversationService(convos mongorepo.ConversationRepository, c cache.Cache) ConversationService {
	if c == nil {
		c = cache.Noop{}
	}
	return &conversationService{convos: convos, cache: c}
}

func (s *conversationService) Create(ctx context.Context, in ConversationInput) (*models.Conversation, error) {
	const op = "ConversationService.Create"

	if in.CandidateID == "" || in.JobTitle == "" || in.CompanyName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id, job_title, and company_name are required", nil)
	}

	phase := in.InterviewPhase
	if phase == "" {
		phase = models.DefaultInterviewPhase
	}
	categories := in.QuestionCategories
	if categories == nil {
		categories = []map[string]any{}
	}

	conv := &models.Conversation{
		CandidateID:        in.CandidateID,
		JobTitle:           in.JobTitle,
		CompanyName:        in.CompanyName,
		InterviewPhase:     phase,
		QuestionCategories: categories,
		Messages:           []models.Message{},
	}
	if err := s.convos.Insert(ctx, conv); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create conversation", err)
	}
	return conv, nil
}

func (s *conversationService) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	const op = "ConversationService.GetByID"

	key := cache.ConversationKey(id)
	var cached models.Conversation
	if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
		return &cached, nil
	}

	out, err := s.convos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "conversation not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get conversation", err)
	}

	_ = s.cache.SetJSON(ctx, key, out, conversationCacheTTL)
	return out, nil
}

func (s *conversationService) ListByCandidate(ctx context.Context, candidateID string) ([]models.Conversation, error) {
	const op = "ConversationService.ListByCandidate"

	if candidateID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id is required", nil)
	}
	out, err := s.convos.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list conversations", err)
	}
	return out, nil
}

func (s *conversationService) GetActiveByCandidate(ctx context.Context, candidateID string) (*models.Conversation, error) {
	const op = "ConversationService.GetActiveByCandidate"

	if candidateID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id is required", nil)
	}
	out, err := s.convos.GetActiveByCandidate(ctx, candidateID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "no active conversation for this candidate", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get active conversation", err)
	}
	return out, nil
}

func (s *conversationService) Update(ctx context.Context, id string, patch models.ConversationPatch) (*models.Conversation, error) {
	const op = "ConversationService.Update"

	matched, err := s.convos.Update(ctx, id, patch)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update conversation", err)
	}
	if matched == 0 {
		return nil, utils.E(utils.CodeNotFound, op, "conversation not found", nil)
	}

	_ = s.cache.Del(ctx, cache.ConversationKey(id))
	return s.GetByID(ctx, id)
}

// newMessage stamps the embedded message: fresh id, creation time fixed at
// append.
func newMessage(in MessageInput) models.Message {
	return models.Message{
		ID:        primitive.NewObjectID(),
		Sender:    in.Sender,
		Content:   in.Content,
		AudioURL:  in.AudioURL,
		FileName:  in.FileName,
		FileSize:  in.FileSize,
		Duration:  in.Duration,
		Format:    in.Format,
		Timestamp: time.Now().UTC(),
	}
}

func (s *conversationService) AddMessage(ctx context.Context, id string, in MessageInput) (*models.Conversation, error) {
	const op = "ConversationService.AddMessage"

	if in.Sender == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "sender is required", nil)
	}

	msg := newMessage(in)
	matched, err := s.convos.PushMessage(ctx, id, &msg)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to add message", err)
	}
	if matched == 0 {
		return nil, utils.E(utils.CodeNotFound, op, "conversation not found", nil)
	}

	_ = s.cache.Del(ctx, cache.ConversationKey(id))
	return s.GetByID(ctx, id)
}

// CreateOrAppendAudioMessage is dual-mode. The mode is resolved once, up
// front: a parseable conversation id that matches an existing document means
// append; anything else, including an omitted id, means a brand-new
// conversation seeded with the message. An empty id is never an error.
func (s *conversationService) CreateOrAppendAudioMessage(ctx context.Context, conversationID string, in AudioMessageInput) (*models.Conversation, error) {
	const op = "ConversationService.CreateOrAppendAudioMessage"

	if in.CandidateID == "" || in.JobTitle == "" || in.CompanyName == "" || in.Sender == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id, job_title, company_name, and sender are required", nil)
	}

	msg := newMessage(in.MessageInput)

	if _, err := primitive.ObjectIDFromHex(conversationID); err == nil {
		matched, err := s.convos.PushMessage(ctx, conversationID, &msg)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to append audio message", err)
		}
		if matched > 0 {
			_ = s.cache.Del(ctx, cache.ConversationKey(conversationID))
			return s.GetByID(ctx, conversationID)
		}
	}

	conv := &models.Conversation{
		CandidateID:        in.CandidateID,
		JobTitle:           in.JobTitle,
		CompanyName:        in.CompanyName,
		InterviewPhase:     models.DefaultInterviewPhase,
		QuestionCategories: []map[string]any{},
		Messages:           []models.Message{msg},
	}
	if err := s.convos.Insert(ctx, conv); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create conversation", err)
	}
	return conv, nil
}

func (s *conversationService) Delete(ctx context.Context, id string) (bool, error) {
	const op = "ConversationService.Delete"

	deleted, err := s.convos.Delete(ctx, id)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to delete conversation", err)
	}
	if deleted {
		_ = s.cache.Del(ctx, cache.ConversationKey(id))
	}
	return deleted, nil
}

// DeleteMessage locates the parent by querying the embedded message id, then
// pulls exactly that sub-document.
func (s *conversationService) DeleteMessage(ctx context.Context, messageID string) (bool, error) {
	const op = "ConversationService.DeleteMessage"

	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return false, nil
	}

	conv, err := s.convos.FindByMessageID(ctx, oid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return false, nil
		}
		return false, utils.E(utils.CodeInternal, op, "failed to locate message", err)
	}

	modified, err := s.convos.PullMessage(ctx, conv.ID, oid)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to delete message", err)
	}
	if modified > 0 {
		_ = s.cache.Del(ctx, cache.ConversationKey(conv.ID.Hex()))
		return true, nil
	}
	return false, nil
}

func (s *conversationService) SearchMessages(ctx context.Context, f mongorepo.MessageFilter) ([]models.Message, error) {
	const op = "ConversationService.SearchMessages"

	convos, err := s.convos.FindForMessages(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to search messages", err)
	}

	out := []models.Message{}
	for _, conv := range convos {
		for _, msg := range conv.Messages {
			// messages.sender in the query only matches the parent; the
			// per-message filter still applies here
			if f.Sender != "" && msg.Sender != f.Sender {
				continue
			}
			out = append(out, msg)
		}
	}
	return out, nil
}
