package transcribe

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/Michael-Yan-wun/meeting-tools/errors"
	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// AssemblyAITranscriber transcribes audio through the AssemblyAI API. The
// SDK client is created on first use and reused for every subsequent call,
// and transcriptions are serialized so a batch of uploads does not fan out
// into parallel jobs against the account quota.
type AssemblyAITranscriber struct {
	cfg    *config.AssemblyAIConfig
	logger *zap.Logger

	initOnce sync.Once
	client   *aai.Client

	mu sync.Mutex
}

// NewAssemblyAITranscriber constructs a transcriber. The API key is checked
// at call time, not here, so construction never fails.
func NewAssemblyAITranscriber(cfg *config.AssemblyAIConfig, logger *zap.Logger) *AssemblyAITranscriber {
	return &AssemblyAITranscriber{cfg: cfg, logger: logger}
}

// Transcribe uploads the file and waits for the finished transcript.
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if t.cfg.APIKey == "" {
		return "", apperrors.ErrMissingCredential("assemblyai")
	}

	t.initOnce.Do(func() {
		opts := []aai.ClientOption{aai.WithAPIKey(t.cfg.APIKey)}
		if t.cfg.BaseURL != "" {
			opts = append(opts, aai.WithBaseURL(t.cfg.BaseURL))
		}
		t.client = aai.NewClientWithOptions(opts...)
	})

	t.mu.Lock()
	defer t.mu.Unlock()

	var text string
	submitFn := func() error {
		f, err := os.Open(audioPath)
		if err != nil {
			// Retrying will not make the file appear.
			return backoff.Permanent(err)
		}
		defer f.Close()

		uploadURL, err := t.client.Upload(ctx, f)
		if err != nil {
			return fmt.Errorf("failed to upload audio: %w", err)
		}

		if t.logger != nil {
			t.logger.Info("audio uploaded for transcription",
				zap.String("audio_path", audioPath),
			)
		}

		params := &aai.TranscriptOptionalParams{
			SpeakerLabels:     aai.Bool(true),
			LanguageDetection: aai.Bool(true),
		}

		transcript, err := t.client.Transcripts.SubmitFromURL(ctx, uploadURL, params)
		if err != nil {
			return fmt.Errorf("transcription request failed: %w", err)
		}

		// Poll until the transcript leaves the queue.
		for {
			switch transcript.Status {
			case aai.TranscriptStatusCompleted:
				if transcript.Text != nil {
					text = *transcript.Text
				}
				return nil
			case aai.TranscriptStatusError:
				msg := "transcription failed"
				if transcript.Error != nil {
					msg = *transcript.Error
				}
				return backoff.Permanent(fmt.Errorf("assemblyai: %s", msg))
			}

			select {
			case <-ctx.Done():
				return backoff.Permanent(ctx.Err())
			case <-time.After(t.cfg.PollInterval):
			}

			id := ""
			if transcript.ID != nil {
				id = *transcript.ID
			}
			transcript, err = t.client.Transcripts.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to poll transcript: %w", err)
			}
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 2 * time.Minute

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		if t.logger != nil {
			t.logger.Error("transcription failed after retries",
				zap.String("audio_path", audioPath),
				zap.Error(err),
			)
		}
		return "", apperrors.ErrServiceUnavailable("assemblyai", err)
	}

	if t.logger != nil {
		t.logger.Info("transcription completed",
			zap.String("audio_path", audioPath),
			zap.Int("text_length", len(text)),
		)
	}
	return text, nil
}
