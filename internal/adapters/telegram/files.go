package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// openFile resolves a Telegram file id to its download URL and opens a
// stream over it. The caller owns the returned reader.
func (b *Bot) openFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	fileURL, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := b.downloads.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download file status: %s", resp.Status)
	}
	return resp.Body, nil
}
