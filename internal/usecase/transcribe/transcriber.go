package transcribe

import "context"

// Transcriber converts a staged audio file into plain transcript text. A
// failed transcription is fatal to the pipeline run that requested it.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
