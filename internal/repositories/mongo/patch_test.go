package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chaimaguesmi/Backend-entretien-audio/internal/models"
)

func TestAudioResponseSetDocOnlyNonNilFields(t *testing.T) {
	name := "renamed.wav"
	size := int64(999)
	set := audioResponseSetDoc(models.AudioResponsePatch{
		FileName: &name,
		FileSize: &size,
	})

	if set["file_name"] != name || set["file_size"] != size {
		t.Errorf("provided fields missing from $set: %v", set)
	}
	if _, ok := set["format"]; ok {
		t.Errorf("nil field must not appear in $set")
	}
	if _, ok := set["duration"]; ok {
		t.Errorf("nil field must not appear in $set")
	}
	if _, ok := set["updated_at"]; !ok {
		t.Errorf("updated_at must always be refreshed")
	}
}

func TestAudioResponseSetDocEmptyPatchStillTouchesUpdatedAt(t *testing.T) {
	set := audioResponseSetDoc(models.AudioResponsePatch{})
	if len(set) != 1 {
		t.Fatalf("empty patch should only carry updated_at, got %v", set)
	}
	ts, ok := set["updated_at"].(time.Time)
	if !ok || time.Since(ts) > time.Minute {
		t.Errorf("updated_at should be a fresh timestamp, got %v", set["updated_at"])
	}
}

func TestConversationSetDoc(t *testing.T) {
	phase := "closing"
	idx := 3
	completed := true
	categories := []map[string]any{{"name": "go"}}

	set := conversationSetDoc(models.ConversationPatch{
		InterviewPhase:       &phase,
		CurrentCategoryIndex: &idx,
		InterviewCompleted:   &completed,
		QuestionCategories:   &categories,
	})

	if set["interview_phase"] != phase {
		t.Errorf("interview_phase missing: %v", set)
	}
	if set["current_category_index"] != idx {
		t.Errorf("current_category_index missing: %v", set)
	}
	if set["interview_completed"] != completed {
		t.Errorf("interview_completed missing: %v", set)
	}
	if _, ok := set["question_categories"]; !ok {
		t.Errorf("question_categories missing: %v", set)
	}
	for _, absent := range []string{"job_title", "company_name", "current_question_in_category", "interview_started"} {
		if _, ok := set[absent]; ok {
			t.Errorf("nil field %q leaked into $set", absent)
		}
	}
}

func TestMessageFilterDoc(t *testing.T) {
	oid := primitive.NewObjectID()

	q := messageFilterDoc(MessageFilter{
		CandidateID:    "c1",
		ConversationID: oid.Hex(),
		Sender:         "user",
	})
	if q["candidate_id"] != "c1" {
		t.Errorf("candidate_id missing: %v", q)
	}
	if q["_id"] != oid {
		t.Errorf("conversation id should be parsed into _id: %v", q)
	}
	if q["messages.sender"] != "user" {
		t.Errorf("sender should query the embedded field: %v", q)
	}

	// unparseable conversation id is dropped, not an error
	q = messageFilterDoc(MessageFilter{ConversationID: "garbage"})
	if _, ok := q["_id"]; ok {
		t.Errorf("malformed conversation id should be dropped from the filter")
	}

	if q := messageFilterDoc(MessageFilter{}); len(q) != 0 {
		t.Errorf("empty filter should produce an empty query, got %v", q)
	}
}
