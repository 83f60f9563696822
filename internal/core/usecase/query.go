package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
	"github.com/kirillkom/paperless-concierge/internal/core/ports"
	"github.com/kirillkom/paperless-concierge/internal/observability/metrics"
)

// QueryUseCase answers natural-language questions. The AI endpoint is
// tried first when configured; transport failures and missing AI config
// fall back to plain document search instead of propagating.
type QueryUseCase struct {
	auth    ports.Authorizer
	clients ports.ClientProvider
	service string
	log     *slog.Logger
	metrics *metrics.BotMetrics
}

func NewQueryUseCase(
	auth ports.Authorizer,
	clients ports.ClientProvider,
	service string,
	log *slog.Logger,
	botMetrics *metrics.BotMetrics,
) *QueryUseCase {
	return &QueryUseCase{
		auth:    auth,
		clients: clients,
		service: service,
		log:     log,
		metrics: botMetrics,
	}
}

func (uc *QueryUseCase) Answer(ctx context.Context, userID int64, question string) (*domain.Answer, error) {
	user, err := uc.auth.Authorize(userID)
	if err != nil {
		return nil, err
	}

	request := domain.QueryRequest{
		UserID:      userID,
		Question:    question,
		RequestedAt: time.Now().UTC(),
	}
	backend := uc.clients.ClientsFor(user)

	if backend.Answers != nil && backend.Answers.Configured() {
		text, askErr := backend.Answers.Ask(ctx, request.Question)
		if askErr == nil {
			uc.observe(domain.SourceAI)
			return &domain.Answer{Text: text, Source: domain.SourceAI}, nil
		}
		if !domain.IsKind(askErr, domain.ErrTransport) {
			return nil, askErr
		}
		uc.log.Warn("query_fallback", "user_id", userID, "error", askErr)
	}

	result, err := backend.Store.Search(ctx, request.Question)
	if err != nil {
		return nil, fmt.Errorf("search fallback: %w", err)
	}

	if result.Total == 0 {
		uc.observe(domain.SourceNone)
		return &domain.Answer{Source: domain.SourceNone}, nil
	}

	uc.observe(domain.SourceSearch)
	return &domain.Answer{
		Source:    domain.SourceSearch,
		Documents: result.Documents,
		Total:     result.Total,
	}, nil
}

func (uc *QueryUseCase) observe(source domain.AnswerSource) {
	if uc.metrics != nil {
		uc.metrics.ObserveQuery(uc.service, string(source))
	}
}
