package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/logger"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/matthieukhl/doemart/internal/types"
)

type AdminStats struct {
	TotalUsers       int `json:"total_users"`
	PendingApprovals int `json:"pending_approvals"`
	TotalShops       int `json:"total_shops"`
	TotalOrders      int `json:"total_orders"`
}

type AdminView struct {
	Stats   AdminStats       `json:"stats"`
	Pending []models.Profile `json:"pending"`
	Loading bool             `json:"loading"`
}

// Admin shows platform totals and the accounts waiting for a decision
type Admin struct {
	client types.DataClient
	log    *logger.Logger
	actor  uuid.UUID
	writes writes

	mu   sync.RWMutex
	view AdminView
}

func NewAdmin(client types.DataClient, log *logger.Logger, actor uuid.UUID) *Admin {
	log = log.WithComponent("admin_dashboard").With("actor", actor)
	return &Admin{
		client: client,
		log:    log,
		actor:  actor,
		writes: writes{log: log},
		view:   AdminView{Loading: true},
	}
}

func (a *Admin) View() AdminView {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v := a.view
	v.Pending = append([]models.Profile(nil), a.view.Pending...)
	return v
}

func (a *Admin) update(fn func(v *AdminView)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.view)
}

func (a *Admin) count(collection string, slot func(v *AdminView, n int)) fetch {
	return fetch{
		collection: collection,
		run: func(ctx context.Context) error {
			n, err := a.client.Count(ctx, collection, types.Query{})
			if err != nil {
				return err
			}
			a.update(func(v *AdminView) { slot(v, n) })
			return nil
		},
	}
}

// Load refreshes the totals and the pending list
func (a *Admin) Load(ctx context.Context) error {
	a.update(func(v *AdminView) { v.Loading = true })
	defer a.update(func(v *AdminView) { v.Loading = false })

	return settle(ctx, a.log,
		a.count(models.CollectionProfiles, func(v *AdminView, n int) { v.Stats.TotalUsers = n }),
		a.count(models.CollectionShops, func(v *AdminView, n int) { v.Stats.TotalShops = n }),
		a.count(models.CollectionOrders, func(v *AdminView, n int) { v.Stats.TotalOrders = n }),
		fetch{
			collection: models.CollectionProfiles,
			run: func(ctx context.Context) error {
				q := types.Where(types.Eq("status", models.StatusPending)).OrderBy("created_at", false)
				rows, err := a.client.Select(ctx, models.CollectionProfiles, q)
				if err != nil {
					return err
				}
				pending, err := types.DecodeRows[models.Profile](rows)
				if err != nil {
					return err
				}
				a.update(func(v *AdminView) {
					v.Pending = pending
					v.Stats.PendingApprovals = len(pending)
				})
				return nil
			},
		},
	)
}

func (a *Admin) Approve(ctx context.Context, profileID uuid.UUID) error {
	return a.decide(ctx, profileID, models.StatusApproved)
}

func (a *Admin) Reject(ctx context.Context, profileID uuid.UUID) error {
	return a.decide(ctx, profileID, models.StatusRejected)
}

// decide moves a pending profile to next, then reloads whatever the outcome
func (a *Admin) decide(ctx context.Context, profileID uuid.UUID, next models.AccountStatus) error {
	if !models.StatusPending.CanTransition(next) {
		return fmt.Errorf("%w: cannot move profile to %s", models.ErrInvalidInput, next)
	}

	err := a.writes.do(writeKey(a.actor, string(next), profileID), func() error {
		n, err := a.client.Update(ctx, models.CollectionProfiles,
			[]types.Filter{types.Eq("id", profileID), types.Eq("status", models.StatusPending)},
			types.Row{"status": next})
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("profile %s: %w", profileID, ErrNotPending)
		}
		return nil
	})
	if err != nil {
		a.log.Error("Failed to update profile status", "collection", models.CollectionProfiles, "profile_id", profileID, "status", next, "error", err)
	} else {
		a.log.Info("Profile status updated", "profile_id", profileID, "status", next)
	}

	// Fetch failures are already logged by the cycle
	_ = a.Load(ctx)
	return err
}
