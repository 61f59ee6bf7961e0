package cmd

import (
	"context"
	"fmt"

	"github.com/matthieukhl/doemart/internal/auth"
	"github.com/matthieukhl/doemart/internal/backend"
	"github.com/matthieukhl/doemart/internal/backend/storage"
	"github.com/matthieukhl/doemart/internal/config"
	"github.com/matthieukhl/doemart/internal/gate"
	"github.com/matthieukhl/doemart/internal/logger"
	"github.com/matthieukhl/doemart/internal/types"
)

// app is what every page command needs: config, logger, backend, and the restored session
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	backend types.Backend
	store   *auth.Store
}

// newApp opens the app and restores the saved session before returning
func newApp(ctx context.Context) (*app, error) {
	a, err := openApp()
	if err != nil {
		return nil, err
	}
	if err := a.store.Restore(ctx); err != nil {
		a.log.Warn("Could not restore session", "error", err)
	}
	return a, nil
}

// openApp wires config, logger, backend, and a session store that is still loading
func openApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log)

	b, err := backend.NewBackend(cfg, storage.NewFile(cfg.Session.File))
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}

	return &app{cfg: cfg, log: log, backend: b, store: auth.NewStore(b, log)}, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.log.Warn("Failed to close backend", "error", err)
	}
	a.log.Close()
}

// requirePage checks the gate for path and explains any outcome other than Allow
func (a *app) requirePage(path string) (auth.Snapshot, error) {
	snap := a.store.Snapshot()

	switch outcome := gate.Evaluate(snap, gate.Routes[path]); outcome {
	case gate.Allow:
		return snap, nil
	case gate.Loading:
		if snap.ProfileMissing {
			return snap, fmt.Errorf("no profile exists for %s yet", snap.Identity.Email)
		}
		return snap, fmt.Errorf("session is still loading, try again")
	case gate.RedirectLogin:
		return snap, fmt.Errorf("not signed in, run `doemart login` first")
	case gate.PendingApproval:
		return snap, fmt.Errorf("account %s is %s: waiting for admin approval", snap.Profile.Email, snap.Profile.Status)
	case gate.RedirectHome:
		return snap, fmt.Errorf("%s is not available to %s accounts, your dashboard is %s",
			path, snap.Profile.Role, gate.HomePath(snap.Profile))
	default:
		return snap, fmt.Errorf("unexpected gate outcome %s", outcome)
	}
}
