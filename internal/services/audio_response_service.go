package services

import (
	"context"
	"errors"

	"github.com/chaimaguesmi/Backend-entretien-audio/internal/models"
	mongorepo "github.com/chaimaguesmi/Backend-entretien-audio/internal/repositories/mongo"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/storage"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/utils"
)

// maxPageSize bounds the paged listing regardless of the requested limit.
const maxPageSize int64 = 100

type AudioResponseInput struct {
	CandidateID string
	QuestionID  string
	FileName    string
	FileSize    int64
	Format      string
	Duration    *float64
}

// Download carries the bytes of a locally stored audio file back to the
// handler, which re-encodes them as base64.
type Download struct {
	FileName    string
	Content     []byte
	ContentType string
}

type AudioResponseService interface {
	Create(ctx context.Context, in AudioResponseInput, fileContent []byte) (*models.AudioResponse, error)
	GetByID(ctx context.Context, id string) (*models.AudioResponse, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.AudioResponse, error)
	GetByQuestion(ctx context.Context, candidateID, questionID string) (*models.AudioResponse, error)
	Update(ctx context.Context, id string, patch models.AudioResponsePatch) (*models.AudioResponse, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListAll(ctx context.Context, skip, limit int64) ([]models.AudioResponse, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByCandidate(ctx context.Context, candidateID string) (int64, error)
	Download(ctx context.Context, id string) (*Download, error)
}

type audioResponseService struct {
	responses mongorepo.AudioResponseRepository
	blobs     storage.BlobStore
}

func NewAudioResponseService(responses mongorepo.AudioResponseRepository, blobs storage.BlobStore) AudioResponseService {
	return &audioResponseService{responses: responses, blobs: blobs}
}

// Create stores the bytes, then inserts the metadata record. A prior response
// for the same (candidate, question) pair is removed first, record and blob,
// so at most one survives per pair.
func (s *audioResponseService) Create(ctx context.Context, in AudioResponseInput, fileContent []byte) (*models.AudioResponse, error) {
	const op = "AudioResponseService.Create"

	if in.CandidateID == "" || in.QuestionID == "" || in.FileName == "" || in.Format == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id, question_id, file_name, and format are required", nil)
	}

	prior, err := s.responses.GetByCandidateAndQuestion(ctx, in.CandidateID, in.QuestionID)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to look up prior response", err)
	}
	if prior != nil {
		// blob removal is best-effort; the Store logs failures
		s.blobs.Delete(ctx, prior.FilePath)
		if _, err := s.responses.Delete(ctx, prior.ID.Hex()); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to supersede prior response", err)
		}
	}

	location, err := s.blobs.Save(ctx, fileContent, in.FileName, in.CandidateID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store audio file", err)
	}

	resp := &models.AudioResponse{
		CandidateID: in.CandidateID,
		QuestionID:  in.QuestionID,
		FilePath:    location,
		FileName:    in.FileName,
		FileSize:    in.FileSize,
		Format:      in.Format,
		Duration:    in.Duration,
	}
	if err := s.responses.Insert(ctx, resp); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create audio response", err)
	}
	return resp, nil
}

func (s *audioResponseService) GetByID(ctx context.Context, id string) (*models.AudioResponse, error) {
	const op = "AudioResponseService.GetByID"

	out, err := s.responses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "audio response not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get audio response", err)
	}
	return out, nil
}

func (s *audioResponseService) ListByCandidate(ctx context.Context, candidateID string) ([]models.AudioResponse, error) {
	const op = "AudioResponseService.ListByCandidate"

	if candidateID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id is required", nil)
	}
	out, err := s.responses.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list audio responses", err)
	}
	return out, nil
}

func (s *audioResponseService) GetByQuestion(ctx context.Context, candidateID, questionID string) (*models.AudioResponse, error) {
	const op = "AudioResponseService.GetByQuestion"

	if candidateID == "" || questionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id and question_id are required", nil)
	}
	out, err := s.responses.GetByCandidateAndQuestion(ctx, candidateID, questionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "no audio response for this question", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get audio response", err)
	}
	return out, nil
}

func (s *audioResponseService) Update(ctx context.Context, id string, patch models.AudioResponsePatch) (*models.AudioResponse, error) {
	const op = "AudioResponseService.Update"

	matched, err := s.responses.Update(ctx, id, patch)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update audio response", err)
	}
	if matched == 0 {
		return nil, utils.E(utils.CodeNotFound, op, "audio response not found", nil)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the blob first, best-effort, then the record. A blob failure
// never blocks metadata cleanup: an orphaned file beats an orphaned record.
func (s *audioResponseService) Delete(ctx context.Context, id string) (bool, error) {
	const op = "AudioResponseService.Delete"

	resp, err := s.responses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return false, nil
		}
		return false, utils.E(utils.CodeInternal, op, "failed to get audio response", err)
	}

	s.blobs.Delete(ctx, resp.FilePath)

	deleted, err := s.responses.Delete(ctx, id)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to delete audio response", err)
	}
	return deleted, nil
}

func (s *audioResponseService) ListAll(ctx context.Context, skip, limit int64) ([]models.AudioResponse, int64, error) {
	const op = "AudioResponseService.ListAll"

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	items, err := s.responses.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, utils.E(utils.CodeInternal, op, "failed to list audio responses", err)
	}
	total, err := s.responses.Count(ctx)
	if err != nil {
		return nil, 0, utils.E(utils.CodeInternal, op, "failed to count audio responses", err)
	}
	return items, total, nil
}

func (s *audioResponseService) Count(ctx context.Context) (int64, error) {
	const op = "AudioResponseService.Count"

	n, err := s.responses.Count(ctx)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to count audio responses", err)
	}
	return n, nil
}

func (s *audioResponseService) CountByCandidate(ctx context.Context, candidateID string) (int64, error) {
	const op = "AudioResponseService.CountByCandidate"

	if candidateID == "" {
		return 0, utils.E(utils.CodeInvalidArgument, op, "candidate_id is required", nil)
	}
	n, err := s.responses.CountByCandidate(ctx, candidateID)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to count audio responses", err)
	}
	return n, nil
}

// Download reads back locally stored bytes. Remote locators are refused:
// callers deep-link to the object store instead.
func (s *audioResponseService) Download(ctx context.Context, id string) (*Download, error) {
	const op = "AudioResponseService.Download"

	resp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.blobs.Read(ctx, resp.FilePath)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrRemoteLocation):
			return nil, utils.E(utils.CodeUnsupported, op, "download from object storage is not supported", err)
		case errors.Is(err, storage.ErrFileMissing):
			return nil, utils.E(utils.CodeNotFound, op, "audio file not found", err)
		default:
			return nil, utils.E(utils.CodeInternal, op, "failed to read audio file", err)
		}
	}

	return &Download{
		FileName:    resp.FileName,
		Content:     data,
		ContentType: contentTypeForFormat(resp.Format),
	}, nil
}

func contentTypeForFormat(format string) string {
	switch format {
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "webm":
		return "audio/webm"
	case "m4a", "mp4":
		return "audio/mp4"
	case "flac":
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}
