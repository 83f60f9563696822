package ports

import (
	"context"
	"io"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
)

// DocumentStore wraps the document-management REST backend.
type DocumentStore interface {
	Submit(ctx context.Context, filename, mimeType string, body io.Reader) (string, error)
	TaskStatus(ctx context.Context, taskID string) (domain.JobStatus, error)
	Search(ctx context.Context, query string) (domain.SearchResult, error)
}

// AnswerProvider wraps the optional AI-search endpoint.
type AnswerProvider interface {
	Configured() bool
	Ask(ctx context.Context, question string) (string, error)
}

// Authorizer maps a chat user id to its context, default-deny.
type Authorizer interface {
	Authorize(userID int64) (*domain.UserContext, error)
}

// BackendClients bundles the per-user backend handles.
type BackendClients struct {
	Store   DocumentStore
	Answers AnswerProvider
}

// ClientProvider resolves backend clients for an authorized user. In
// global mode every user shares one pair; in user-scoped mode clients
// are built per backend configuration.
type ClientProvider interface {
	ClientsFor(user *domain.UserContext) BackendClients
}

// Messenger is the outbound chat surface. EditMessage must tolerate
// repeated identical edits to the same message.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
}
