package history

import (
	"fmt"

	"github.com/rs/zerolog"

	"predtrack-go/internal/config"
)

// Open builds the configured store backend. An empty backend name selects
// the file store.
func Open(cfg config.History, log zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Dir, cfg.Limit, log)
	case "redis":
		return NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Limit, log)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
