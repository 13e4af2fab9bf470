package analyze

import (
	"encoding/json"
	"strings"

	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/entities"
)

// decodeNotes parses a structuring response into the canonical record shape.
func decodeNotes(raw string) (entities.StructuredNotes, error) {
	var notes entities.StructuredNotes
	if err := json.Unmarshal([]byte(extractJSON(raw)), &notes); err != nil {
		return entities.StructuredNotes{}, err
	}
	return notes, nil
}

// fusedResult is the combined transcript-plus-record response of the fused
// audio call. Decoding through the embedded struct drops the transcription
// key from the structured payload, so the transcript is never stored twice.
type fusedResult struct {
	Transcription string `json:"transcription"`
	entities.StructuredNotes
}

func decodeFused(raw string) (fusedResult, error) {
	var result fusedResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return fusedResult{}, err
	}
	return result, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
