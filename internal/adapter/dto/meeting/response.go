package meeting

import (
	"time"

	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/entities"
)

// SummaryResponse is one row of the list view.
type SummaryResponse struct {
	ID        uint      `json:"id"`
	Filename  string    `json:"filename"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse wraps the list view rows.
type ListResponse struct {
	Meetings []SummaryResponse `json:"meetings"`
}

// DetailResponse is the full stored record for one meeting.
type DetailResponse struct {
	ID            uint      `json:"id"`
	Filename      string    `json:"filename"`
	Transcription string    `json:"transcription"`
	entities.StructuredNotes
	CreatedAt time.Time `json:"created_at"`
}

// UploadResponse is returned after a successful pipeline run.
type UploadResponse struct {
	ID       uint   `json:"id"`
	Filename string `json:"filename"`
	entities.StructuredNotes
	DocumentName string `json:"document_name"`
	DocURL       string `json:"doc_url"`
}

// NewSummaryResponse maps a stored summary row.
func NewSummaryResponse(s entities.MeetingSummary) SummaryResponse {
	return SummaryResponse{
		ID:        s.ID,
		Filename:  s.Filename,
		Summary:   s.Summary,
		CreatedAt: s.CreatedAt,
	}
}

// NewDetailResponse maps a stored meeting record.
func NewDetailResponse(m *entities.Meeting) DetailResponse {
	return DetailResponse{
		ID:              m.ID,
		Filename:        m.Filename,
		Transcription:   m.Transcription,
		StructuredNotes: m.StructuredNotes,
		CreatedAt:       m.CreatedAt,
	}
}
