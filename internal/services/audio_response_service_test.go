package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chaimaguesmi/Backend-entretien-audio/internal/models"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/storage"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/utils"
)

// fakeAudioRepo keeps records in insertion order, newest-first on reads, the
// way the mongo adapter sorts on created_at.
type fakeAudioRepo struct {
	docs      []*models.AudioResponse
	lastLimit int64
}

func (f *fakeAudioRepo) Insert(ctx context.Context, a *models.AudioResponse) error {
	a.ID = primitive.NewObjectID()
	f.docs = append(f.docs, a)
	return nil
}

func (f *fakeAudioRepo) GetByID(ctx context.Context, id string) (*models.AudioResponse, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrNotFound
	}
	for _, d := range f.docs {
		if d.ID == oid {
			return d, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeAudioRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.AudioResponse, error) {
	out := []models.AudioResponse{}
	for i := len(f.docs) - 1; i >= 0; i-- {
		if f.docs[i].CandidateID == candidateID {
			out = append(out, *f.docs[i])
		}
	}
	return out, nil
}

func (f *fakeAudioRepo) GetByCandidateAndQuestion(ctx context.Context, candidateID, questionID string) (*models.AudioResponse, error) {
	for _, d := range f.docs {
		if d.CandidateID == candidateID && d.QuestionID == questionID {
			return d, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeAudioRepo) Update(ctx context.Context, id string, patch models.AudioResponsePatch) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	for _, d := range f.docs {
		if d.ID == oid {
			if patch.FileName != nil {
				d.FileName = *patch.FileName
			}
			if patch.FileSize != nil {
				d.FileSize = *patch.FileSize
			}
			if patch.Format != nil {
				d.Format = *patch.Format
			}
			if patch.Duration != nil {
				d.Duration = patch.Duration
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeAudioRepo) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	for i, d := range f.docs {
		if d.ID == oid {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAudioRepo) List(ctx context.Context, skip, limit int64) ([]models.AudioResponse, error) {
	f.lastLimit = limit
	out := []models.AudioResponse{}
	for i := len(f.docs) - 1; i >= 0; i-- {
		out = append(out, *f.docs[i])
	}
	if skip >= int64(len(out)) {
		return []models.AudioResponse{}, nil
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAudioRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.docs)), nil
}

func (f *fakeAudioRepo) CountByCandidate(ctx context.Context, candidateID string) (int64, error) {
	var n int64
	for _, d := range f.docs {
		if d.CandidateID == candidateID {
			n++
		}
	}
	return n, nil
}

// fakeBlobStore is a map-backed BlobStore recording deletions.
type fakeBlobStore struct {
	files   map[string][]byte
	deleted []string
	seq     int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{files: map[string][]byte{}}
}

func (f *fakeBlobStore) Save(ctx context.Context, data []byte, fileName, candidateID string) (string, error) {
	f.seq++
	loc := fmt.Sprintf("/blobs/%s_%d%s", candidateID, f.seq, filepath.Ext(fileName))
	f.files[loc] = data
	return loc, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, location string) bool {
	f.deleted = append(f.deleted, location)
	delete(f.files, location)
	return true
}

func (f *fakeBlobStore) Read(ctx context.Context, location string) ([]byte, error) {
	if storage.IsRemote(location) {
		return nil, storage.ErrRemoteLocation
	}
	data, ok := f.files[location]
	if !ok {
		return nil, storage.ErrFileMissing
	}
	return data, nil
}

func newAudioFixture() (*fakeAudioRepo, *fakeBlobStore, AudioResponseService) {
	repo := &fakeAudioRepo{}
	blobs := newFakeBlobStore()
	return repo, blobs, NewAudioResponseService(repo, blobs)
}

func audioInput(candidate, question string) AudioResponseInput {
	return AudioResponseInput{
		CandidateID: candidate,
		QuestionID:  question,
		FileName:    "answer.mp3",
		FileSize:    1234,
		Format:      "mp3",
	}
}

func TestCreateGeneratesFreshIDs(t *testing.T) {
	_, _, svc := newAudioFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, audioInput("c1", "q1"), []byte("a"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := svc.Create(ctx, audioInput("c1", "q2"), []byte("b"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if first.ID.IsZero() || second.ID.IsZero() {
		t.Fatalf("records should come back with generated ids")
	}
	if first.ID == second.ID {
		t.Errorf("ids must be distinct")
	}
}

func TestCreateSupersedesPriorResponse(t *testing.T) {
	repo, blobs, svc := newAudioFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, audioInput("c1", "q1"), []byte("first take"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := svc.Create(ctx, audioInput("c1", "q1"), []byte("second take"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(repo.docs) != 1 {
		t.Fatalf("expected exactly one record for the pair, got %d", len(repo.docs))
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != first.FilePath {
		t.Errorf("the prior blob should have been deleted, got %v", blobs.deleted)
	}

	current, err := svc.GetByQuestion(ctx, "c1", "q1")
	if err != nil {
		t.Fatalf("GetByQuestion failed: %v", err)
	}
	if current.ID != second.ID {
		t.Errorf("GetByQuestion should return the superseding record")
	}
}

func TestCreateRequiresFields(t *testing.T) {
	_, _, svc := newAudioFixture()

	in := audioInput("c1", "q1")
	in.Format = ""
	if _, err := svc.Create(context.Background(), in, []byte("x")); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("got %v, want INVALID_ARGUMENT", err)
	}
}

func TestMalformedIDFailsSoft(t *testing.T) {
	_, _, svc := newAudioFixture()
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, "not-an-objectid"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("GetByID: got %v, want NOT_FOUND", err)
	}

	name := "renamed.mp3"
	if _, err := svc.Update(ctx, "not-an-objectid", models.AudioResponsePatch{FileName: &name}); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("Update: got %v, want NOT_FOUND", err)
	}

	deleted, err := svc.Delete(ctx, "not-an-objectid")
	if err != nil || deleted {
		t.Errorf("Delete: got (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestDeleteTwice(t *testing.T) {
	_, blobs, svc := newAudioFixture()
	ctx := context.Background()

	resp, err := svc.Create(ctx, audioInput("c1", "q1"), []byte("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := svc.Delete(ctx, resp.ID.Hex())
	if err != nil || !deleted {
		t.Fatalf("first delete: got (%v, %v), want (true, nil)", deleted, err)
	}
	if len(blobs.deleted) != 1 {
		t.Errorf("blob should be deleted alongside the record")
	}

	deleted, err = svc.Delete(ctx, resp.ID.Hex())
	if err != nil || deleted {
		t.Errorf("second delete: got (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestListAllCapsLimit(t *testing.T) {
	repo, _, svc := newAudioFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, audioInput("c1", fmt.Sprintf("q%d", i)), []byte("x")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	if _, _, err := svc.ListAll(ctx, 0, 5000); err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if repo.lastLimit != maxPageSize {
		t.Errorf("limit sent to the store: got %d, want %d", repo.lastLimit, maxPageSize)
	}

	if _, _, err := svc.ListAll(ctx, 0, 0); err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if repo.lastLimit != maxPageSize {
		t.Errorf("zero limit should fall back to the cap, got %d", repo.lastLimit)
	}

	items, total, err := svc.ListAll(ctx, 0, 2)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(items) != 2 || total != 3 {
		t.Errorf("got %d items, total %d; want 2 items, total 3", len(items), total)
	}
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	_, _, svc := newAudioFixture()
	ctx := context.Background()

	resp, err := svc.Create(ctx, audioInput("c1", "q1"), []byte("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dur := 8.5
	updated, err := svc.Update(ctx, resp.ID.Hex(), models.AudioResponsePatch{Duration: &dur})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Duration == nil || *updated.Duration != 8.5 {
		t.Errorf("duration not applied: %v", updated.Duration)
	}
	if updated.FileName != "answer.mp3" || updated.Format != "mp3" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestDownload(t *testing.T) {
	repo, _, svc := newAudioFixture()
	ctx := context.Background()

	want := []byte("raw audio")
	resp, err := svc.Create(ctx, audioInput("c1", "q1"), want)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dl, err := svc.Download(ctx, resp.ID.Hex())
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(dl.Content) != string(want) {
		t.Errorf("content round-trip failed: %q", dl.Content)
	}
	if dl.ContentType != "audio/mpeg" {
		t.Errorf("content type for mp3: got %q", dl.ContentType)
	}
	if dl.FileName != "answer.mp3" {
		t.Errorf("download should carry the original file name, got %q", dl.FileName)
	}

	// remote locator: refused, callers deep-link to the object store
	remote := &models.AudioResponse{
		CandidateID: "c2", QuestionID: "q1",
		FilePath: "s3://bucket/audio_responses/x.mp3",
		FileName: "x.mp3", FileSize: 1, Format: "mp3",
	}
	if err := repo.Insert(ctx, remote); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := svc.Download(ctx, remote.ID.Hex()); !utils.IsCode(err, utils.CodeUnsupported) {
		t.Errorf("remote download: got %v, want UNSUPPORTED", err)
	}

	if _, err := svc.Download(ctx, primitive.NewObjectID().Hex()); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("unknown id: got %v, want NOT_FOUND", err)
	}
}

func TestContentTypeForFormat(t *testing.T) {
	cases := map[string]string{
		"mp3":  "audio/mpeg",
		"wav":  "audio/wav",
		"ogg":  "audio/ogg",
		"webm": "audio/webm",
		"m4a":  "audio/mp4",
		"flac": "audio/flac",
		"bin":  "application/octet-stream",
	}
	for format, want := range cases {
		if got := contentTypeForFormat(format); got != want {
			t.Errorf("contentTypeForFormat(%q) = %q, want %q", format, got, want)
		}
	}
}
