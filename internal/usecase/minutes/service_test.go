package minutes

import (
	"bytes"
	"context"
	"encoding/json"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/Michael-Yan-wun/meeting-tools/errors"
	"github.com/Michael-Yan-wun/meeting-tools/internal/adapter/repository"
	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/entities"
	"github.com/Michael-Yan-wun/meeting-tools/internal/infrastructure/storage"
	"github.com/Michael-Yan-wun/meeting-tools/internal/usecase/analyze"
	"github.com/Michael-Yan-wun/meeting-tools/pkg/ai"
	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// minimal RIFF/WAVE header, enough for content sniffing
var wavBytes = []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00")

const stubNotesJSON = `{"meeting_topics":["v2 release"],"participants":[{"name":"Alice","role":"lead"},{"name":"Bob","role":"QA"}],"key_points":[{"title":"Deadline","content":"Ship v2 by Friday"}],"next_steps":[{"action":"Write tests","owner":"Bob"}],"summary":"Team planned v2 release."}`

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return s.text, s.err
}

func stubGeminiServer(t *testing.T, notesJSON string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": notesJSON}},
				}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, transcriber *stubTranscriber, geminiURL string) (*Service, *gorm.DB) {
	t.Helper()

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatal(err)
	}

	docs, err := storage.NewLocalStore(filepath.Join(dir, "downloads"))
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		Gemini: config.GeminiConfig{
			APIKey:     "test-key",
			BaseURL:    geminiURL,
			TextModel:  "gemini-2.5-flash",
			AudioModel: "gemini-1.5-flash",
			Timeout:    5 * time.Second,
		},
		Pipeline: config.PipelineConfig{
			Strategy:  config.StrategyAssemblyAI,
			UploadDir: filepath.Join(dir, "uploads"),
		},
	}

	analyzer := analyze.NewService(ai.NewGeminiClient(&cfg.Gemini), &cfg.Gemini, zap.NewNop())
	svc := NewService(cfg, repository.NewMeetingRepository(db), docs, transcriber, analyzer, zap.NewNop())
	return svc, db
}

func TestProcessEndToEnd(t *testing.T) {
	srv := stubGeminiServer(t, stubNotesJSON)
	transcript := "Alice: let's ship v2 by Friday. Bob: I'll write the tests."
	svc, _ := newTestService(t, &stubTranscriber{text: transcript}, srv.URL)

	result, err := svc.Process(context.Background(), "standup.wav", bytes.NewReader(wavBytes))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.ID != 1 {
		t.Errorf("expected id 1, got %d", result.ID)
	}
	if result.Filename != "standup.wav" {
		t.Errorf("unexpected filename %q", result.Filename)
	}
	if result.Transcription != transcript {
		t.Errorf("unexpected transcription %q", result.Transcription)
	}
	if result.DocumentName != "Meeting_standup.docx" {
		t.Errorf("unexpected document name %q", result.DocumentName)
	}
	if len(result.Notes.Participants) != 2 || result.Notes.Participants[0].Name != "Alice" {
		t.Errorf("unexpected notes %+v", result.Notes)
	}

	// The rendered document is retrievable from the store.
	rc, err := svc.docs.Open(context.Background(), result.DocumentName)
	if err != nil {
		t.Fatalf("document not stored: %v", err)
	}
	rc.Close()

	// The stored record comes back first in the list view.
	summaries, err := svc.repo.ListSummaries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].ID != 1 || summaries[0].Summary != "Team planned v2 release." {
		t.Errorf("unexpected summaries %+v", summaries)
	}

	// The staged copy is cleaned up after the run.
	entries, err := os.ReadDir(svc.cfg.Pipeline.UploadDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty upload dir, found %d entries", len(entries))
	}
}

func TestProcessStripsUppercaseExtension(t *testing.T) {
	srv := stubGeminiServer(t, stubNotesJSON)
	svc, _ := newTestService(t, &stubTranscriber{text: "x"}, srv.URL)

	result, err := svc.Process(context.Background(), "Standup.WAV", bytes.NewReader(wavBytes))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.DocumentName != "Meeting_Standup.docx" {
		t.Errorf("extension must be stripped from the document name, got %q", result.DocumentName)
	}
}

func TestProcessRejectsUnsupportedExtension(t *testing.T) {
	srv := stubGeminiServer(t, stubNotesJSON)
	svc, _ := newTestService(t, &stubTranscriber{text: "x"}, srv.URL)

	_, err := svc.Process(context.Background(), "notes.txt", strings.NewReader("hello"))
	assertCode(t, err, apperrors.ErrorCode_INVALID_INPUT)
}

func TestProcessRejectsNonAudioContent(t *testing.T) {
	srv := stubGeminiServer(t, stubNotesJSON)
	svc, db := newTestService(t, &stubTranscriber{text: "x"}, srv.URL)

	_, err := svc.Process(context.Background(), "fake.mp3", strings.NewReader("just some text pretending to be audio"))
	assertCode(t, err, apperrors.ErrorCode_INVALID_INPUT)

	var count int64
	db.Table("meetings").Count(&count)
	if count != 0 {
		t.Errorf("no record should be persisted, found %d", count)
	}
}

func TestProcessTranscriptionFailureIsFatal(t *testing.T) {
	srv := stubGeminiServer(t, stubNotesJSON)
	svc, db := newTestService(t, &stubTranscriber{err: apperrors.ErrServiceUnavailable("assemblyai", goerrors.New("down"))}, srv.URL)

	_, err := svc.Process(context.Background(), "standup.wav", bytes.NewReader(wavBytes))
	assertCode(t, err, apperrors.ErrorCode_SERVICE_UNAVAILABLE)

	var count int64
	db.Table("meetings").Count(&count)
	if count != 0 {
		t.Errorf("failed run must not persist a record, found %d", count)
	}
}

func TestProcessStructuringFailureDegrades(t *testing.T) {
	srv := stubGeminiServer(t, "definitely not json")
	svc, _ := newTestService(t, &stubTranscriber{text: "some transcript"}, srv.URL)

	result, err := svc.Process(context.Background(), "standup.wav", bytes.NewReader(wavBytes))
	if err != nil {
		t.Fatalf("degraded run must still succeed: %v", err)
	}
	if len(result.Notes.KeyPoints) != 1 || result.Notes.KeyPoints[0].Title != "Analysis unavailable" {
		t.Errorf("expected degraded record, got %+v", result.Notes)
	}
	if result.Transcription != "some transcript" {
		t.Errorf("transcription must survive degradation, got %q", result.Transcription)
	}
}

func TestProcessCancelledBeforePersist(t *testing.T) {
	srv := stubGeminiServer(t, stubNotesJSON)
	svc, db := newTestService(t, &stubTranscriber{text: "x"}, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Process(ctx, "standup.wav", bytes.NewReader(wavBytes)); err == nil {
		t.Fatal("expected error for cancelled context")
	}

	var count int64
	db.Table("meetings").Count(&count)
	if count != 0 {
		t.Errorf("cancelled run must not persist a record, found %d", count)
	}

	entries, err := os.ReadDir(svc.cfg.Pipeline.UploadDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("staged audio must be cleaned up on abort, found %d entries", len(entries))
	}
}

func TestProcessStoresUntruncatedTranscript(t *testing.T) {
	srv := stubGeminiServer(t, stubNotesJSON)
	longTranscript := strings.Repeat("a", 40000)
	svc, _ := newTestService(t, &stubTranscriber{text: longTranscript}, srv.URL)

	result, err := svc.Process(context.Background(), "long.wav", bytes.NewReader(wavBytes))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Transcription) != 40000 {
		t.Errorf("stored transcription must be untruncated, got %d chars", len(result.Transcription))
	}

	stored, err := svc.repo.GetByID(context.Background(), result.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Transcription) != 40000 {
		t.Errorf("persisted transcription must be untruncated, got %d chars", len(stored.Transcription))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := entities.StructuredNotes{
		Participants: []entities.Participant{{Name: "Alice", Legacy: true}, {Name: "Bob", Role: "QA"}},
		KeyPoints:    []entities.KeyPoint{{Title: "Ship it", Legacy: true}},
		NextSteps:    []entities.ActionItem{{Action: "Write tests", Legacy: true}},
	}

	once := Normalize(in)
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Normalize is not idempotent:\n once: %+v\ntwice: %+v", once, twice)
	}

	if once.Participants[0].Legacy || once.Participants[0].Name != "Alice" || once.Participants[0].Role != "" {
		t.Errorf("legacy participant not normalized: %+v", once.Participants[0])
	}
	if once.KeyPoints[0].Legacy || once.KeyPoints[0].Title != "Ship it" || once.KeyPoints[0].Content != "" {
		t.Errorf("legacy key point not normalized: %+v", once.KeyPoints[0])
	}
	if once.NextSteps[0].Legacy || once.NextSteps[0].Action != "Write tests" || once.NextSteps[0].Owner != "" {
		t.Errorf("legacy action item not normalized: %+v", once.NextSteps[0])
	}
	if once.MeetingTopics == nil {
		t.Error("nil topics must normalize to an empty sequence")
	}
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr apperrors.AppError
	if !goerrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Errorf("expected code %s, got %s", code, appErr.Code)
	}
}
