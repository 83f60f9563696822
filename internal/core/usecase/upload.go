package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
	"github.com/kirillkom/paperless-concierge/internal/core/ports"
)

// UploadUseCase runs the upload path: authorize, submit to the user's
// document store, then hand the job to the tracker. At most one poll
// loop exists per submitted file.
type UploadUseCase struct {
	auth    ports.Authorizer
	clients ports.ClientProvider
	tracker *Tracker
	log     *slog.Logger
}

func NewUploadUseCase(
	auth ports.Authorizer,
	clients ports.ClientProvider,
	tracker *Tracker,
	log *slog.Logger,
) *UploadUseCase {
	return &UploadUseCase{
		auth:    auth,
		clients: clients,
		tracker: tracker,
		log:     log,
	}
}

func (uc *UploadUseCase) Upload(
	ctx context.Context,
	userID, chatID int64,
	filename, mimeType string,
	body io.Reader,
) (*domain.UploadJob, <-chan domain.ProgressEvent, error) {
	user, err := uc.auth.Authorize(userID)
	if err != nil {
		return nil, nil, err
	}

	backend := uc.clients.ClientsFor(user)
	trackingID := uuid.NewString()
	storedName := fmt.Sprintf("%s_%s", trackingID, sanitizeFilename(filename))

	taskID, err := backend.Store.Submit(ctx, storedName, mimeType, body)
	if err != nil {
		return nil, nil, fmt.Errorf("submit upload: %w", err)
	}

	job := &domain.UploadJob{
		ID:          taskID,
		TrackingID:  trackingID,
		UserID:      userID,
		ChatID:      chatID,
		Filename:    filename,
		// Unknown until the first poll observes a backend status, so the
		// initial Queued observation is reported as a progress event.
		Status:      domain.StatusUnknown,
		SubmittedAt: time.Now().UTC(),
	}

	uc.log.Info("upload_submitted",
		"user_id", userID,
		"task_id", taskID,
		"tracking_id", trackingID,
		"filename", filename,
	)

	events := uc.tracker.Start(ctx, backend.Store, job)
	return job, events, nil
}

// CheckStatus is the one-shot lookup behind the manual status button.
func (uc *UploadUseCase) CheckStatus(ctx context.Context, userID int64, taskID string) (domain.JobStatus, error) {
	user, err := uc.auth.Authorize(userID)
	if err != nil {
		return domain.StatusUnknown, err
	}

	backend := uc.clients.ClientsFor(user)
	status, err := backend.Store.TaskStatus(ctx, taskID)
	if err != nil {
		return domain.StatusUnknown, fmt.Errorf("check status: %w", err)
	}
	return status, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
