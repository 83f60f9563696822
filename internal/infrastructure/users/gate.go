package users

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
)

// Gate holds the preloaded authorization mapping. Lookups are O(1) and
// the gate is immutable after construction; unknown users are denied.
type Gate struct {
	users map[int64]*domain.UserContext
}

// NewGlobal authorizes a fixed id list against one shared backend.
func NewGlobal(userIDs []int64, backend domain.BackendConfig) *Gate {
	users := make(map[int64]*domain.UserContext, len(userIDs))
	for _, id := range userIDs {
		users[id] = &domain.UserContext{
			UserID:  id,
			Name:    fmt.Sprintf("user-%d", id),
			Backend: backend,
		}
	}
	return &Gate{users: users}
}

type userFile struct {
	Users map[int64]userEntry `yaml:"users"`
}

type userEntry struct {
	Name      string       `yaml:"name"`
	Username  string       `yaml:"username"`
	Paperless endpointSpec `yaml:"paperless"`
	AI        endpointSpec `yaml:"paperless_ai"`
}

type endpointSpec struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// LoadFile builds a gate from a user-scoped YAML config, one backend
// configuration per user id. Entries without a usable paperless
// url/token pair are skipped.
func LoadFile(path string) (*Gate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}

	var parsed userFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}

	users := make(map[int64]*domain.UserContext, len(parsed.Users))
	for id, entry := range parsed.Users {
		if entry.Paperless.URL == "" || entry.Paperless.Token == "" {
			continue
		}
		name := entry.Name
		if name == "" {
			name = fmt.Sprintf("user-%d", id)
		}
		users[id] = &domain.UserContext{
			UserID: id,
			Name:   name,
			Backend: domain.BackendConfig{
				BaseURL:    entry.Paperless.URL,
				APIToken:   entry.Paperless.Token,
				AIBaseURL:  entry.AI.URL,
				AIAPIToken: entry.AI.Token,
			},
		}
	}
	return &Gate{users: users}, nil
}

func (g *Gate) Authorize(userID int64) (*domain.UserContext, error) {
	user, ok := g.users[userID]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnauthorized, "authorize", fmt.Errorf("user %d not in allow list", userID))
	}
	return user, nil
}

// Size reports how many users are authorized; used for startup logging.
func (g *Gate) Size() int {
	return len(g.users)
}
