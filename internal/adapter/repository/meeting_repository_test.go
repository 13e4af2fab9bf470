package repository

import (
	"context"
	stdErrors "errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/Michael-Yan-wun/meeting-tools/errors"
	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/entities"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meetings.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := openTestDB(t)
	// A second run against the fully migrated table must be a no-op.
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestMigrateAddsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetings.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// Simulate a table created by an older schema version without the
	// summary and meeting_topics columns.
	old := `CREATE TABLE meetings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		transcription TEXT,
		participants TEXT,
		key_points TEXT,
		next_steps TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if err := db.Exec(old).Error; err != nil {
		t.Fatalf("failed to create legacy table: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, field := range []string{"Summary", "MeetingTopics"} {
		if !db.Migrator().HasColumn(&meetingRow{}, field) {
			t.Fatalf("column %s was not added", field)
		}
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()

	meeting := &entities.Meeting{
		Filename:      "standup.mp3",
		Transcription: "Alice: let's ship v2 by Friday. Bob: I'll write the tests.",
		StructuredNotes: entities.StructuredNotes{
			MeetingTopics: []string{"v2 release"},
			Participants: []entities.Participant{
				{Name: "Alice", Role: "lead"},
				{Name: "Bob", Role: "QA"},
			},
			KeyPoints: []entities.KeyPoint{
				{Title: "Deadline", Content: "Ship v2 by Friday"},
			},
			NextSteps: []entities.ActionItem{
				{Action: "Write tests", Owner: "Bob"},
			},
			Summary: "Team planned v2 release.",
		},
	}

	if err := repo.Create(ctx, meeting); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if meeting.ID != 1 {
		t.Fatalf("expected first record to get id 1, got %d", meeting.ID)
	}

	got, err := repo.GetByID(ctx, meeting.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Filename != meeting.Filename || got.Transcription != meeting.Transcription {
		t.Fatalf("scalar fields mismatch: %+v", got)
	}
	if !reflect.DeepEqual(got.StructuredNotes, meeting.StructuredNotes) {
		t.Fatalf("structured fields did not round trip:\ngot  %+v\nwant %+v", got.StructuredNotes, meeting.StructuredNotes)
	}
}

func TestLegacyShapeRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()

	meeting := &entities.Meeting{
		Filename: "retro.wav",
		StructuredNotes: entities.StructuredNotes{
			Participants: []entities.Participant{
				{Name: "Alice", Legacy: true},
				{Name: "Bob", Legacy: true},
			},
			KeyPoints: []entities.KeyPoint{
				{Title: "ship it", Legacy: true},
			},
			NextSteps: []entities.ActionItem{
				{Action: "follow up", Legacy: true},
			},
		},
	}
	if err := repo.Create(ctx, meeting); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, meeting.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Participants) != 2 || !got.Participants[0].Legacy {
		t.Fatalf("legacy participants not preserved: %+v", got.Participants)
	}
	if len(got.KeyPoints) != 1 || !got.KeyPoints[0].Legacy || got.KeyPoints[0].Title != "ship it" {
		t.Fatalf("legacy key points not preserved: %+v", got.KeyPoints)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewMeetingRepository(db)

	_, err := repo.GetByID(context.Background(), 42)
	if err == nil {
		t.Fatal("expected not-found error")
	}
	var appErr apperrors.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_NOT_FOUND {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestListSummariesNewestFirst(t *testing.T) {
	db := openTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()

	first := &entities.Meeting{Filename: "first.mp3", StructuredNotes: entities.StructuredNotes{Summary: "one"}}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Force a later timestamp for the second record.
	second := &entities.Meeting{Filename: "second.mp3", StructuredNotes: entities.StructuredNotes{Summary: "two"}}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := db.Exec(`UPDATE meetings SET created_at = datetime(created_at, '+1 hour') WHERE id = ?`, second.ID).Error; err != nil {
		t.Fatalf("failed to adjust timestamp: %v", err)
	}

	summaries, err := repo.ListSummaries(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != second.ID {
		t.Fatalf("expected newest record first, got id %d", summaries[0].ID)
	}
	if summaries[0].Summary != "two" {
		t.Fatalf("unexpected summary: %q", summaries[0].Summary)
	}
}

func TestMalformedStoredJSONDecodesEmpty(t *testing.T) {
	db := openTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()

	meeting := &entities.Meeting{Filename: "corrupt.mp3"}
	if err := repo.Create(ctx, meeting); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := db.Exec(`UPDATE meetings SET participants = 'not json' WHERE id = ?`, meeting.ID).Error; err != nil {
		t.Fatalf("failed to corrupt row: %v", err)
	}

	got, err := repo.GetByID(ctx, meeting.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Participants == nil || len(got.Participants) != 0 {
		t.Fatalf("expected empty participants for corrupted column, got %+v", got.Participants)
	}
}
