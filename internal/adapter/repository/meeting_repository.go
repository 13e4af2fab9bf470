package repository

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "github.com/Michael-Yan-wun/meeting-tools/errors"
	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/entities"
	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/repositories"
)

// meetingRow is the storage layout of a meeting record. Sequence fields are
// serialized to JSON text so the table stays flat: id plus scalar/text
// columns only.
type meetingRow struct {
	ID            uint           `gorm:"primaryKey;autoIncrement"`
	Filename      string         `gorm:"type:text;not null"`
	Transcription string         `gorm:"type:text"`
	Participants  datatypes.JSON
	KeyPoints     datatypes.JSON
	NextSteps     datatypes.JSON
	MeetingTopics datatypes.JSON
	Summary       string         `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for meetingRow
func (meetingRow) TableName() string {
	return "meetings"
}

// Migrate idempotently ensures the meetings table and all current columns
// exist. Tables created by an older schema version gain the missing columns;
// existing columns and data are left untouched.
func Migrate(db *gorm.DB) error {
	m := db.Migrator()
	if !m.HasTable(&meetingRow{}) {
		if err := m.CreateTable(&meetingRow{}); err != nil {
			return fmt.Errorf("failed to create meetings table: %w", err)
		}
		return nil
	}

	// Additive schema evolution: check store metadata per column instead of
	// attempting the ALTER and swallowing duplicate-column failures.
	for _, field := range []string{
		"Transcription", "Participants", "KeyPoints",
		"NextSteps", "MeetingTopics", "Summary",
	} {
		if m.HasColumn(&meetingRow{}, field) {
			continue
		}
		if err := m.AddColumn(&meetingRow{}, field); err != nil {
			return fmt.Errorf("failed to add column %s: %w", field, err)
		}
	}
	return nil
}

// meetingRepository implements the MeetingRepository interface
type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository backed by GORM
func NewMeetingRepository(db *gorm.DB) repositories.MeetingRepository {
	return &meetingRepository{db: db}
}

// Create appends a new meeting record and assigns its ID and CreatedAt.
func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	row := meetingRow{
		Filename:      meeting.Filename,
		Transcription: meeting.Transcription,
		Participants:  encodeSeq(meeting.Participants),
		KeyPoints:     encodeSeq(meeting.KeyPoints),
		NextSteps:     encodeSeq(meeting.NextSteps),
		MeetingTopics: encodeSeq(meeting.MeetingTopics),
		Summary:       meeting.Summary,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return apperrors.ErrStorage("insert meeting", err)
	}
	meeting.ID = row.ID
	meeting.CreatedAt = row.CreatedAt
	return nil
}

// ListSummaries returns the list view of all meetings, newest first.
func (r *meetingRepository) ListSummaries(ctx context.Context) ([]entities.MeetingSummary, error) {
	var rows []meetingRow
	err := r.db.WithContext(ctx).
		Select("id", "filename", "summary", "created_at").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.ErrStorage("list meetings", err)
	}

	summaries := make([]entities.MeetingSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, entities.MeetingSummary{
			ID:        row.ID,
			Filename:  row.Filename,
			Summary:   row.Summary,
			CreatedAt: row.CreatedAt,
		})
	}
	return summaries, nil
}

// GetByID fetches one full meeting record with sequence fields decoded.
func (r *meetingRepository) GetByID(ctx context.Context, id uint) (*entities.Meeting, error) {
	var row meetingRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("meeting").WithDetail("id", fmt.Sprintf("%d", id))
		}
		return nil, apperrors.ErrStorage("get meeting", err)
	}

	meeting := &entities.Meeting{
		ID:              row.ID,
		Filename:        row.Filename,
		Transcription:   row.Transcription,
		StructuredNotes: entities.StructuredNotes{Summary: row.Summary},
		CreatedAt:       row.CreatedAt,
	}
	decodeSeq(row.Participants, &meeting.Participants)
	decodeSeq(row.KeyPoints, &meeting.KeyPoints)
	decodeSeq(row.NextSteps, &meeting.NextSteps)
	decodeSeq(row.MeetingTopics, &meeting.MeetingTopics)
	return meeting, nil
}

// encodeSeq serializes a sequence field for storage. A nil sequence is
// stored as an empty JSON array, never as null.
func encodeSeq[T any](seq []T) datatypes.JSON {
	if seq == nil {
		return datatypes.JSON("[]")
	}
	b, err := json.Marshal(seq)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}

// decodeSeq deserializes a stored sequence column. Corrupted text decodes to
// an empty sequence rather than failing the read.
func decodeSeq[T any](raw datatypes.JSON, out *[]T) {
	*out = []T{}
	if len(raw) == 0 {
		return
	}
	var decoded []T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return
	}
	if decoded != nil {
		*out = decoded
	}
}
