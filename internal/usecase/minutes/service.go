package minutes

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/Michael-Yan-wun/meeting-tools/errors"
	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/entities"
	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/repositories"
	"github.com/Michael-Yan-wun/meeting-tools/internal/infrastructure/storage"
	"github.com/Michael-Yan-wun/meeting-tools/internal/usecase/analyze"
	"github.com/Michael-Yan-wun/meeting-tools/internal/usecase/docgen"
	"github.com/Michael-Yan-wun/meeting-tools/internal/usecase/transcribe"
	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// ProcessResult is the combined outcome of one pipeline run.
type ProcessResult struct {
	ID            uint                     `json:"id"`
	Filename      string                   `json:"filename"`
	Transcription string                   `json:"transcription"`
	Notes         entities.StructuredNotes `json:"notes"`
	DocumentName  string                   `json:"document_name"`
	DocumentPath  string                   `json:"document_path"`
}

// Service runs the full pipeline for one recording: stage the audio,
// transcribe, structure, normalize, persist, render. Each invocation is
// independent; the only state shared between runs is the store and the
// transcription backend's cached client.
type Service struct {
	cfg         *config.Config
	repo        repositories.MeetingRepository
	docs        storage.DocumentStore
	transcriber transcribe.Transcriber
	analyzer    *analyze.Service
	logger      *zap.Logger
}

// NewService wires the pipeline stages together.
func NewService(
	cfg *config.Config,
	repo repositories.MeetingRepository,
	docs storage.DocumentStore,
	transcriber transcribe.Transcriber,
	analyzer *analyze.Service,
	logger *zap.Logger,
) *Service {
	return &Service{
		cfg:         cfg,
		repo:        repo,
		docs:        docs,
		transcriber: transcriber,
		analyzer:    analyzer,
		logger:      logger,
	}
}

// Process ingests one audio stream end to end and returns the stored record
// plus the generated document handle.
func (s *Service) Process(ctx context.Context, filename string, audio io.Reader) (*ProcessResult, error) {
	filename = filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp3", ".wav", ".m4a", ".mp4":
	default:
		return nil, apperrors.ErrInvalidInput(fmt.Sprintf("unsupported file type %q (want mp3, wav, m4a or mp4)", ext))
	}

	stagedPath, err := s.stage(filename, ext, audio)
	if err != nil {
		return nil, err
	}
	// The staged copy is temporary input; it goes away on every exit path,
	// and a failed removal never masks the pipeline error.
	defer func() {
		if rmErr := os.Remove(stagedPath); rmErr != nil && s.logger != nil {
			s.logger.Warn("failed to remove staged audio",
				zap.String("path", stagedPath),
				zap.Error(rmErr),
			)
		}
	}()

	mime, err := mimetype.DetectFile(stagedPath)
	if err != nil {
		return nil, apperrors.ErrUnreadableAudio(filename, err)
	}
	if !strings.HasPrefix(mime.String(), "audio/") && !mime.Is("video/mp4") {
		return nil, apperrors.ErrUnreadableAudio(filename, fmt.Errorf("detected content type %s", mime.String()))
	}

	if s.logger != nil {
		s.logger.Info("processing recording",
			zap.String("filename", filename),
			zap.String("content_type", mime.String()),
			zap.String("strategy", s.cfg.Pipeline.Strategy),
		)
	}

	var transcription string
	var notes entities.StructuredNotes

	switch s.cfg.Pipeline.Strategy {
	case config.StrategyAssemblyAI:
		transcription, err = s.transcriber.Transcribe(ctx, stagedPath)
		if err != nil {
			return nil, err
		}
		// Structuring is the slowest, most failure-prone stage; bound it.
		structCtx, cancel := context.WithTimeout(ctx, s.cfg.Gemini.Timeout)
		notes = s.analyzer.StructureTranscript(structCtx, transcription)
		cancel()
	default:
		structCtx, cancel := context.WithTimeout(ctx, s.cfg.Gemini.Timeout)
		transcription, notes, err = s.analyzer.AnalyzeAudio(structCtx, stagedPath, mime.String())
		cancel()
		if err != nil {
			return nil, err
		}
	}

	// A caller abort must never leave a partial record behind.
	if ctx.Err() != nil {
		return nil, apperrors.ErrInternal(ctx.Err())
	}

	notes = Normalize(notes)

	meeting := &entities.Meeting{
		Filename:        filename,
		Transcription:   transcription,
		StructuredNotes: notes,
	}
	if err := s.repo.Create(ctx, meeting); err != nil {
		return nil, err
	}

	// ext is lowercased, so slice rather than TrimSuffix to also strip
	// uppercase extensions.
	stem := filename[:len(filename)-len(ext)]
	docData, err := docgen.Render(stem+" Meeting Minutes", notes)
	if err != nil {
		return nil, err
	}

	docName := "Meeting_" + stem + ".docx"
	if err := s.docs.Save(ctx, docName, docData); err != nil {
		return nil, apperrors.ErrStorage("save document", err)
	}

	if s.logger != nil {
		s.logger.Info("recording processed",
			zap.Uint("meeting_id", meeting.ID),
			zap.String("document", docName),
			zap.Int("transcript_length", len(transcription)),
		)
	}

	return &ProcessResult{
		ID:            meeting.ID,
		Filename:      filename,
		Transcription: transcription,
		Notes:         notes,
		DocumentName:  docName,
		DocumentPath:  s.documentPath(docName),
	}, nil
}

// stage copies the incoming stream to the upload directory under a unique
// name, so concurrent runs never collide on the original filename.
func (s *Service) stage(filename string, ext string, audio io.Reader) (string, error) {
	if err := os.MkdirAll(s.cfg.Pipeline.UploadDir, 0o755); err != nil {
		return "", apperrors.ErrStorage("create upload dir", err)
	}

	stagedPath := filepath.Join(s.cfg.Pipeline.UploadDir, uuid.NewString()+ext)
	f, err := os.Create(stagedPath)
	if err != nil {
		return "", apperrors.ErrStorage("stage audio", err)
	}
	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		os.Remove(stagedPath)
		return "", apperrors.ErrUnreadableAudio(filename, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(stagedPath)
		return "", apperrors.ErrStorage("stage audio", err)
	}
	return stagedPath, nil
}

func (s *Service) documentPath(docName string) string {
	if local, ok := s.docs.(*storage.LocalStore); ok {
		return local.Path(docName)
	}
	return docName
}
