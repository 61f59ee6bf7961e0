package gate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/auth"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/matthieukhl/doemart/internal/types"
	"github.com/stretchr/testify/assert"
)

func snapshot(role models.Role, status models.AccountStatus) auth.Snapshot {
	id := uuid.New()
	return auth.Snapshot{
		Identity: &types.Identity{ID: id, Email: "x@example.com"},
		Profile:  &models.Profile{ID: id, Role: role, Status: status},
	}
}

func TestEvaluate(t *testing.T) {
	adminOnly := Requirement{AllowedRoles: []models.Role{models.RoleAdmin}}
	identityOnly := auth.Snapshot{Identity: &types.Identity{ID: uuid.New()}}

	tests := []struct {
		name string
		snap auth.Snapshot
		req  Requirement
		want Outcome
	}{
		{"loading wins over everything", auth.Snapshot{Loading: true}, adminOnly, Loading},
		{"loading with full session", func() auth.Snapshot {
			s := snapshot(models.RoleAdmin, models.StatusApproved)
			s.Loading = true
			return s
		}(), adminOnly, Loading},
		{"no identity", auth.Snapshot{}, adminOnly, RedirectLogin},
		{"no identity and no requirement", auth.Snapshot{}, Requirement{}, RedirectLogin},
		{"identity without profile", identityOnly, adminOnly, Loading},
		{"identity with missing profile", func() auth.Snapshot {
			s := identityOnly
			s.ProfileMissing = true
			return s
		}(), Requirement{}, Loading},
		{"pending beats role mismatch", snapshot(models.RoleUser, models.StatusPending), adminOnly, PendingApproval},
		{"rejected", snapshot(models.RoleAdmin, models.StatusRejected), adminOnly, PendingApproval},
		{"wrong role", snapshot(models.RoleUser, models.StatusApproved), adminOnly, RedirectHome},
		{"allowed", snapshot(models.RoleAdmin, models.StatusApproved), adminOnly, Allow},
		{"any role", snapshot(models.RoleShopkeeper, models.StatusApproved), Requirement{}, Allow},
		{"unapproved allowed", snapshot(models.RoleUser, models.StatusPending), Requirement{AllowUnapproved: true}, Allow},
		{"unapproved allowed still checks role", snapshot(models.RoleUser, models.StatusPending),
			Requirement{AllowedRoles: []models.Role{models.RoleShopkeeper}, AllowUnapproved: true}, RedirectHome},
		{"empty role list admits nobody", snapshot(models.RoleUser, models.StatusApproved),
			Requirement{AllowedRoles: []models.Role{}}, RedirectHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.snap, tt.req))
		})
	}
}

func TestEvaluateRoutes(t *testing.T) {
	roles := []models.Role{models.RoleAdmin, models.RoleShopkeeper, models.RoleUser}

	for path, req := range Routes {
		for _, role := range roles {
			t.Run(path+"/"+string(role), func(t *testing.T) {
				profile := &models.Profile{Role: role}
				got := Evaluate(snapshot(role, models.StatusApproved), req)
				if HomePath(profile) == path {
					assert.Equal(t, Allow, got)
				} else {
					assert.Equal(t, RedirectHome, got)
				}
			})
		}
	}
}

func TestHomePath(t *testing.T) {
	tests := []struct {
		profile *models.Profile
		want    string
	}{
		{nil, "/"},
		{&models.Profile{Role: models.RoleAdmin}, "/admin"},
		{&models.Profile{Role: models.RoleShopkeeper}, "/shopkeeper"},
		{&models.Profile{Role: models.RoleUser}, "/user"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, HomePath(tt.profile))
		})
	}
}

func TestOutcomeTargets(t *testing.T) {
	assert.Equal(t, "/login", RedirectLogin.Target())
	assert.Equal(t, "/", RedirectHome.Target())
	assert.Empty(t, Allow.Target())
	assert.Equal(t, "pending_approval", PendingApproval.String())
}
