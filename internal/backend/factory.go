package backend

import (
	"fmt"

	"github.com/matthieukhl/doemart/internal/backend/memory"
	"github.com/matthieukhl/doemart/internal/backend/rest"
	"github.com/matthieukhl/doemart/internal/backend/sqlstore"
	"github.com/matthieukhl/doemart/internal/config"
	"github.com/matthieukhl/doemart/internal/database"
	"github.com/matthieukhl/doemart/internal/types"
)

// NewBackend creates a data backend based on configuration, with every call bounded by the request timeout
func NewBackend(cfg *config.Config, storage types.SessionStorage) (types.Backend, error) {
	var b types.Backend

	switch cfg.Backend.Provider {
	case "rest":
		client, err := rest.New(cfg.Backend.URL, cfg.Backend.ResolveAPIKey(), storage)
		if err != nil {
			return nil, err
		}
		b = client
	case "postgres", "mysql":
		dbCfg := cfg.DB
		dbCfg.Driver = cfg.Backend.Provider
		db, err := database.NewConnection(&dbCfg)
		if err != nil {
			return nil, err
		}
		b = sqlstore.New(db, storage)
	case "memory":
		b = memory.New(storage)
	default:
		return nil, fmt.Errorf("unsupported backend provider: %s", cfg.Backend.Provider)
	}

	return WithTimeout(b, cfg.Backend.RequestTimeout), nil
}
