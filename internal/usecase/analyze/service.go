package analyze

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/Michael-Yan-wun/meeting-tools/errors"
	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/entities"
	"github.com/Michael-Yan-wun/meeting-tools/pkg/ai"
	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// Service turns transcript text, or raw audio in the fused mode, into the
// canonical structured record. Text structuring never fails the pipeline:
// missing credentials, unreachable backends and malformed responses all
// produce a degraded record the caller can still persist and render.
type Service struct {
	client *ai.GeminiClient
	cfg    *config.GeminiConfig
	logger *zap.Logger
}

// NewService constructs an analysis service around a Gemini client.
func NewService(client *ai.GeminiClient, cfg *config.GeminiConfig, logger *zap.Logger) *Service {
	return &Service{client: client, cfg: cfg, logger: logger}
}

// StructureTranscript converts transcript text into structured notes.
// Transcripts beyond maxTranscriptChars are truncated before sending.
func (s *Service) StructureTranscript(ctx context.Context, transcript string) entities.StructuredNotes {
	if !s.client.HasCredential() {
		if s.logger != nil {
			s.logger.Warn("no analysis credential configured, producing degraded record")
		}
		return Degraded("Set a Gemini API key to enable structured analysis")
	}

	if runes := []rune(transcript); len(runes) > maxTranscriptChars {
		if s.logger != nil {
			s.logger.Info("truncating transcript for analysis",
				zap.Int("original_chars", len(runes)),
				zap.Int("sent_chars", maxTranscriptChars),
			)
		}
		transcript = string(runes[:maxTranscriptChars])
	}

	raw, err := s.generateWithRetry(ctx, s.cfg.TextModel, structurePrompt+transcript)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("structuring call failed, producing degraded record", zap.Error(err))
		}
		return Degraded("Analysis service was unavailable: " + err.Error())
	}

	notes, err := decodeNotes(raw)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("structuring response was not valid JSON, producing degraded record",
				zap.Error(err),
				zap.String("raw_prefix", prefix(raw, 200)),
			)
		}
		return Degraded("Analysis service returned an unreadable response")
	}
	return withDefaults(notes)
}

// AnalyzeAudio runs the fused call: one multimodal request returns both the
// verbatim transcript and the structured record. Because this call is also
// the transcription step, backend failures here are fatal to the run; only a
// missing credential degrades, with an empty transcript.
func (s *Service) AnalyzeAudio(ctx context.Context, audioPath string, mimeType string) (string, entities.StructuredNotes, error) {
	if !s.client.HasCredential() {
		if s.logger != nil {
			s.logger.Warn("no analysis credential configured, skipping audio analysis")
		}
		return "", Degraded("Set a Gemini API key to enable audio analysis"), nil
	}

	fileURI, err := s.client.UploadFile(ctx, audioPath, mimeType)
	if err != nil {
		return "", entities.StructuredNotes{}, apperrors.ErrServiceUnavailable("gemini", err)
	}

	if s.logger != nil {
		s.logger.Info("audio uploaded for analysis",
			zap.String("file_uri", fileURI),
			zap.String("mime_type", mimeType),
		)
	}

	var raw string
	callFn := func() error {
		var callErr error
		raw, callErr = s.client.GenerateJSONFromFile(ctx, s.cfg.AudioModel, fileURI, mimeType, fusedPrompt)
		return callErr
	}
	if err := backoff.Retry(callFn, backoff.WithContext(retryPolicy(), ctx)); err != nil {
		return "", entities.StructuredNotes{}, apperrors.ErrServiceUnavailable("gemini", err)
	}

	result, err := decodeFused(raw)
	if err != nil {
		return "", entities.StructuredNotes{}, apperrors.ErrMalformedResponse("gemini", err)
	}
	return result.Transcription, withDefaults(result.StructuredNotes), nil
}

func (s *Service) generateWithRetry(ctx context.Context, model string, prompt string) (string, error) {
	var raw string
	callFn := func() error {
		var callErr error
		raw, callErr = s.client.GenerateJSON(ctx, model, prompt)
		return callErr
	}
	if err := backoff.Retry(callFn, backoff.WithContext(retryPolicy(), ctx)); err != nil {
		return "", err
	}
	return raw, nil
}

func retryPolicy() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second
	return bo
}

// Degraded builds the placeholder record persisted when structuring cannot
// run: a single key point carrying the reason, everything else empty.
func Degraded(reason string) entities.StructuredNotes {
	return entities.StructuredNotes{
		MeetingTopics: []string{},
		Participants:  []entities.Participant{},
		KeyPoints: []entities.KeyPoint{
			{Title: "Analysis unavailable", Content: reason},
		},
		NextSteps: []entities.ActionItem{},
		Summary:   "",
	}
}

// withDefaults replaces nil sequences with empty ones so downstream encoding
// always emits arrays.
func withDefaults(notes entities.StructuredNotes) entities.StructuredNotes {
	if notes.MeetingTopics == nil {
		notes.MeetingTopics = []string{}
	}
	if notes.Participants == nil {
		notes.Participants = []entities.Participant{}
	}
	if notes.KeyPoints == nil {
		notes.KeyPoints = []entities.KeyPoint{}
	}
	if notes.NextSteps == nil {
		notes.NextSteps = []entities.ActionItem{}
	}
	return notes
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
