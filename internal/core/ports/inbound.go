package ports

import (
	"context"
	"io"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
)

// Uploader is the inbound contract for the upload flow: authorize,
// submit, and start the status poll loop for one file.
type Uploader interface {
	Upload(ctx context.Context, userID, chatID int64, filename, mimeType string, body io.Reader) (*domain.UploadJob, <-chan domain.ProgressEvent, error)
}

// Querier is the inbound contract for natural-language queries with
// plain-search fallback.
type Querier interface {
	Answer(ctx context.Context, userID int64, question string) (*domain.Answer, error)
}

// StatusChecker performs a one-shot job status lookup (manual check
// button), outside of any poll loop.
type StatusChecker interface {
	CheckStatus(ctx context.Context, userID int64, taskID string) (domain.JobStatus, error)
}
