package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Michael-Yan-wun/meeting-tools/internal/adapter/repository"
	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/entities"
	"github.com/Michael-Yan-wun/meeting-tools/internal/infrastructure/database"
	"github.com/Michael-Yan-wun/meeting-tools/internal/infrastructure/storage"
	"github.com/Michael-Yan-wun/meeting-tools/internal/usecase/analyze"
	"github.com/Michael-Yan-wun/meeting-tools/internal/usecase/minutes"
	"github.com/Michael-Yan-wun/meeting-tools/internal/usecase/transcribe"
	pkgai "github.com/Michael-Yan-wun/meeting-tools/pkg/ai"
	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// envelope is the single JSON object the CLI prints to stdout. Logs go to
// stderr so the output stays machine-readable.
type envelope struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	ID            uint   `json:"id,omitempty"`
	Filename      string `json:"filename,omitempty"`
	Transcription string `json:"transcription,omitempty"`
	*entities.StructuredNotes
	DocumentPath string `json:"document_path,omitempty"`
}

var (
	flagAPIKey   string
	flagOutput   string
	flagDB       string
	flagStrategy string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "minutes <audio-file>",
		Short: "Turn a meeting recording into structured minutes",
		Long: `Runs the full pipeline on one recording: transcribe the audio,
extract structured notes, store the record and render a .docx document.
The result is printed to stdout as a single JSON object.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	rootCmd.Flags().StringVar(&flagAPIKey, "api-key", "", "Gemini API key (falls back to GEMINI_API_KEY; analysis degrades without one)")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "directory for the generated document (required)")
	rootCmd.Flags().StringVar(&flagDB, "db", "", "sqlite database path (default: DB_PATH or meetings.db)")
	rootCmd.Flags().StringVar(&flagStrategy, "strategy", "", "pipeline strategy: gemini or assemblyai (default: PIPELINE_STRATEGY)")
	rootCmd.MarkFlagRequired("output")

	if err := rootCmd.Execute(); err != nil {
		fail(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagAPIKey != "" {
		cfg.Gemini.APIKey = flagAPIKey
	}
	if flagDB != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.Path = flagDB
	}
	if flagStrategy != "" {
		cfg.Pipeline.Strategy = flagStrategy
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := repository.Migrate(db); err != nil {
		return err
	}

	docs, err := storage.NewLocalStore(flagOutput)
	if err != nil {
		return err
	}

	geminiClient := pkgai.NewGeminiClient(&cfg.Gemini)
	analyzer := analyze.NewService(geminiClient, &cfg.Gemini, logger)
	transcriber := transcribe.NewAssemblyAITranscriber(&cfg.Assembly, logger)
	pipeline := minutes.NewService(cfg, repository.NewMeetingRepository(db), docs, transcriber, analyzer, logger)

	audioPath := args[0]
	f, err := os.Open(audioPath)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", audioPath, err)
	}
	defer f.Close()

	result, err := pipeline.Process(context.Background(), filepath.Base(audioPath), f)
	if err != nil {
		return err
	}

	return emit(envelope{
		Success:         true,
		ID:              result.ID,
		Filename:        result.Filename,
		Transcription:   result.Transcription,
		StructuredNotes: &result.Notes,
		DocumentPath:    result.DocumentPath,
	})
}

func emit(env envelope) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(env)
}

func fail(err error) {
	emit(envelope{Success: false, Error: err.Error()})
	os.Exit(1)
}
