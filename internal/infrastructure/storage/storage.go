package storage

import (
	"context"
	"io"

	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// DocxContentType is the MIME type of generated minutes documents.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DocumentStore persists generated minutes documents for later download.
type DocumentStore interface {
	// Save writes a complete document under the given name, overwriting any
	// previous document with that name.
	Save(ctx context.Context, name string, data []byte) error
	// Open streams a stored document. Returns an os.ErrNotExist-compatible
	// error when the document is absent.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// New selects a document store implementation from configuration.
func New(cfg *config.StorageConfig) (DocumentStore, error) {
	if cfg.Backend == "minio" {
		return NewMinIOStore(cfg)
	}
	return NewLocalStore(cfg.DownloadDir)
}
