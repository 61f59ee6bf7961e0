// Package gate decides whether a session may see a role-restricted page.
package gate

import (
	"fmt"

	"github.com/matthieukhl/doemart/internal/auth"
	"github.com/matthieukhl/doemart/internal/models"
)

// Outcome is the decision for one page view
type Outcome int

const (
	Loading Outcome = iota
	RedirectLogin
	PendingApproval
	RedirectHome
	Allow
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case PendingApproval:
		return "pending_approval"
	case RedirectHome:
		return "redirect_home"
	case Allow:
		return "allow"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

const (
	LoginPath = "/login"
	HomeRoute = "/"
)

// Target is where a redirect outcome points, or "" for outcomes that render in place
func (o Outcome) Target() string {
	switch o {
	case RedirectLogin:
		return LoginPath
	case RedirectHome:
		return HomeRoute
	}
	return ""
}

// Requirement describes who may see a page. The zero value admits any approved account.
type Requirement struct {
	AllowedRoles    []models.Role
	AllowUnapproved bool
}

func (r Requirement) allows(role models.Role) bool {
	if r.AllowedRoles == nil {
		return true
	}
	for _, allowed := range r.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Evaluate applies the gate rules in order; the first match wins
func Evaluate(snap auth.Snapshot, req Requirement) Outcome {
	if snap.Loading {
		return Loading
	}
	if snap.Identity == nil {
		return RedirectLogin
	}
	if snap.Profile == nil {
		return Loading
	}
	if !req.AllowUnapproved && !approved(snap.Profile.Status) {
		return PendingApproval
	}
	if !req.allows(snap.Profile.Role) {
		return RedirectHome
	}
	return Allow
}

func approved(status models.AccountStatus) bool {
	switch status {
	case models.StatusApproved:
		return true
	case models.StatusPending, models.StatusRejected:
		return false
	}
	return false
}

// HomePath is the dashboard a profile lands on
func HomePath(profile *models.Profile) string {
	if profile == nil {
		return HomeRoute
	}
	switch profile.Role {
	case models.RoleAdmin:
		return "/admin"
	case models.RoleShopkeeper:
		return "/shopkeeper"
	case models.RoleUser:
		return "/user"
	}
	return HomeRoute
}

// Routes maps each dashboard path to its requirement
var Routes = map[string]Requirement{
	"/admin":      {AllowedRoles: []models.Role{models.RoleAdmin}},
	"/shopkeeper": {AllowedRoles: []models.Role{models.RoleShopkeeper}},
	"/user":       {AllowedRoles: []models.Role{models.RoleUser}},
}
