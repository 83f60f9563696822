package bootstrap

import (
	"net/http"
	"sync"
	"time"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
	"github.com/kirillkom/paperless-concierge/internal/core/ports"
	"github.com/kirillkom/paperless-concierge/internal/infrastructure/aisearch"
	"github.com/kirillkom/paperless-concierge/internal/infrastructure/paperless"
	"github.com/kirillkom/paperless-concierge/internal/infrastructure/resilience"
)

// clientProvider builds and caches backend clients per backend
// configuration. In global mode all users hit the same cache entry; in
// user-scoped mode each distinct backend gets its own client pair.
type clientProvider struct {
	executor    *resilience.Executor
	httpTimeout time.Duration

	mu    sync.Mutex
	cache map[domain.BackendConfig]ports.BackendClients
}

func newClientProvider(executor *resilience.Executor, httpTimeout time.Duration) *clientProvider {
	if httpTimeout <= 0 {
		httpTimeout = 30 * time.Second
	}
	return &clientProvider{
		executor:    executor,
		httpTimeout: httpTimeout,
		cache:       make(map[domain.BackendConfig]ports.BackendClients),
	}
}

func (p *clientProvider) ClientsFor(user *domain.UserContext) ports.BackendClients {
	p.mu.Lock()
	defer p.mu.Unlock()

	if clients, ok := p.cache[user.Backend]; ok {
		return clients
	}

	httpClient := &http.Client{Timeout: p.httpTimeout}
	clients := ports.BackendClients{
		Store: paperless.New(
			user.Backend.BaseURL,
			user.Backend.APIToken,
			paperless.WithHTTPClient(httpClient),
			paperless.WithExecutor(p.executor),
		),
		Answers: aisearch.New(
			user.Backend.AIBaseURL,
			user.Backend.AIAPIToken,
			aisearch.WithHTTPClient(httpClient),
			aisearch.WithExecutor(p.executor),
		),
	}
	p.cache[user.Backend] = clients
	return clients
}
