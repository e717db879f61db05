package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"freight_backoffice/internal/adapters/storage"
	quotesvc "freight_backoffice/internal/quotes/service"
	"freight_backoffice/platform/apperr"

	"github.com/google/uuid"
)

const archiveContentType = "application/json"

// QuoteArchiver writes accepted quote snapshots to object storage and reads
// them back. It implements notification.QuoteArchiver and
// quotes/service.ArchiveReader.
type QuoteArchiver struct {
	storage storage.StorageService
	bucket  string
}

// NewQuoteArchiver creates an archiver writing into bucket.
func NewQuoteArchiver(s storage.StorageService, bucket string) *QuoteArchiver {
	return &QuoteArchiver{storage: s, bucket: bucket}
}

// ArchiveKey is the object key of a quote's snapshot.
func ArchiveKey(reference string, quoteID uuid.UUID) string {
	if reference == "" {
		reference = quoteID.String()
	}
	return path.Join("accepted", reference+".json")
}

// ArchiveAcceptedQuote stores snapshot under ArchiveKey. Re-archiving the
// same quote overwrites the previous object.
func (a *QuoteArchiver) ArchiveAcceptedQuote(ctx context.Context, quoteID uuid.UUID, reference string, snapshot []byte) error {
	if len(snapshot) == 0 {
		return fmt.Errorf("archive quote %s: empty snapshot", quoteID)
	}
	key := ArchiveKey(reference, quoteID)
	if err := a.storage.PutObject(ctx, a.bucket, key, archiveContentType, bytes.NewReader(snapshot), int64(len(snapshot))); err != nil {
		return fmt.Errorf("archive quote %s: %w", quoteID, err)
	}
	return nil
}

// OpenArchivedQuote opens the stored snapshot of a quote. The caller closes it.
func (a *QuoteArchiver) OpenArchivedQuote(ctx context.Context, quoteID uuid.UUID, reference string) (io.ReadCloser, error) {
	rc, err := a.storage.DownloadFile(ctx, a.bucket, ArchiveKey(reference, quoteID))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, apperr.NotFound("archived quote not found")
	}
	if err != nil {
		return nil, fmt.Errorf("open archived quote %s: %w", quoteID, err)
	}
	return rc, nil
}

var _ quotesvc.ArchiveReader = (*QuoteArchiver)(nil)
