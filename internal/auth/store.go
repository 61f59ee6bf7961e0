// Package auth holds the process-wide session: the signed-in identity, its
// marketplace profile, and the loading flag every gated surface waits on.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/logger"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/matthieukhl/doemart/internal/types"
)

// Snapshot is an immutable view of the session at one version
type Snapshot struct {
	Identity *types.Identity `json:"user"`
	Profile  *models.Profile `json:"profile"`
	Loading  bool            `json:"loading"`
	// ProfileMissing is set once the profile lookup finished without a row
	ProfileMissing bool   `json:"profile_missing"`
	Version        uint64 `json:"version"`
}

func (s Snapshot) SignedIn() bool {
	return s.Identity != nil
}

// ActorID is the signed-in identity id, or uuid.Nil
func (s Snapshot) ActorID() uuid.UUID {
	if s.Identity == nil {
		return uuid.Nil
	}
	return s.Identity.ID
}

// Store owns the session state and notifies subscribers of every change
type Store struct {
	backend types.Backend
	log     *logger.Logger

	mu        sync.RWMutex
	snap      Snapshot
	listeners map[int]func(Snapshot)
	nextID    int
}

// NewStore creates a store in the loading state
func NewStore(backend types.Backend, log *logger.Logger) *Store {
	return &Store{
		backend:   backend,
		log:       log.WithComponent("auth"),
		snap:      Snapshot{Loading: true},
		listeners: make(map[int]func(Snapshot)),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn for every published snapshot; call the returned func to stop
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// publish applies update to a copy of the current state and fans it out outside the lock
func (s *Store) publish(update func(*Snapshot)) Snapshot {
	s.mu.Lock()
	next := s.snap
	update(&next)
	next.Version = s.snap.Version + 1
	if next.Identity != nil {
		id := *next.Identity
		next.Identity = &id
	}
	if next.Profile != nil {
		p := *next.Profile
		next.Profile = &p
	}
	s.snap = next

	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return next
}

func signedOut(snap *Snapshot) {
	snap.Identity = nil
	snap.Profile = nil
	snap.Loading = false
	snap.ProfileMissing = false
}

// Start restores any persisted session in the background
func (s *Store) Start(ctx context.Context) {
	go func() {
		if err := s.Restore(ctx); err != nil {
			s.log.Error("Failed to restore session", "error", err)
		}
	}()
}

// Restore loads the persisted session and its profile; a missing session is not an error
func (s *Store) Restore(ctx context.Context) error {
	s.publish(func(snap *Snapshot) { snap.Loading = true })

	session, err := s.backend.RestoreSession(ctx)
	if errors.Is(err, types.ErrNoSession) {
		s.publish(signedOut)
		return nil
	}
	if err != nil {
		s.publish(signedOut)
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.publish(func(snap *Snapshot) {
		snap.Identity = &session.Identity
		snap.Profile = nil
		snap.ProfileMissing = false
	})

	profile, err := s.fetchProfile(ctx, session.Identity.ID)
	s.publish(func(snap *Snapshot) {
		snap.Loading = false
		if err == nil {
			snap.Profile = profile
			snap.ProfileMissing = profile == nil
		}
	})
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	s.log.Debug("Session restored", "user_id", session.Identity.ID)
	return nil
}

func (s *Store) fetchProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	q := types.Where(types.Eq("id", id))
	q.Limit = 1

	rows, err := s.backend.Select(ctx, models.CollectionProfiles, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	profile, err := types.DecodeRow[models.Profile](rows[0])
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// loadProfile publishes identity first, then the fetched profile
func (s *Store) loadProfile(ctx context.Context, session *types.Session) error {
	s.publish(func(snap *Snapshot) {
		snap.Identity = &session.Identity
		snap.Profile = nil
		snap.ProfileMissing = false
		snap.Loading = false
	})

	profile, err := s.fetchProfile(ctx, session.Identity.ID)
	if err != nil {
		s.log.Error("Failed to load profile", "collection", models.CollectionProfiles, "error", err)
		return fmt.Errorf("failed to load profile: %w", err)
	}

	s.publish(func(snap *Snapshot) {
		snap.Profile = profile
		snap.ProfileMissing = profile == nil
	})
	return nil
}

// SignIn authenticates and loads the profile; on credential errors the state is untouched
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	session, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		return err
	}

	s.log.Info("Signed in", "user_id", session.Identity.ID)
	return s.loadProfile(ctx, session)
}

// Registration is the sign-up form
type Registration struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Phone    string      `json:"phone,omitempty"`
	Address  string      `json:"address,omitempty"`
	Role     models.Role `json:"role"`
}

func (r Registration) Validate() error {
	if r.Role == models.RoleAdmin {
		return fmt.Errorf("%w: admin accounts cannot self-register", models.ErrInvalidInput)
	}
	return models.ProfileInput{FullName: r.FullName, Role: r.Role}.Validate()
}

// SignUp creates the identity, inserts a pending profile for it, and loads that profile
func (s *Store) SignUp(ctx context.Context, reg Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}

	session, err := s.backend.SignUp(ctx, reg.Email, reg.Password, map[string]any{
		"full_name": reg.FullName,
		"role":      reg.Role,
	})
	if err != nil {
		return err
	}

	record, err := types.ToRow(models.ProfileInput{
		ID:       session.Identity.ID,
		Email:    session.Identity.Email,
		FullName: reg.FullName,
		Phone:    reg.Phone,
		Address:  reg.Address,
		Role:     reg.Role,
		Status:   models.StatusPending,
	})
	if err != nil {
		s.abandon(ctx)
		return err
	}
	if _, err := s.backend.Insert(ctx, models.CollectionProfiles, record); err != nil {
		s.log.Error("Failed to create profile", "collection", models.CollectionProfiles, "error", err)
		s.abandon(ctx)
		return fmt.Errorf("failed to create profile: %w", err)
	}

	s.log.Info("Registered", "user_id", session.Identity.ID, "role", reg.Role)
	return s.loadProfile(ctx, session)
}

// abandon signs out a registration whose profile was never written
func (s *Store) abandon(ctx context.Context) {
	if err := s.backend.SignOut(ctx); err != nil {
		s.log.Warn("Failed to drop session of incomplete registration", "error", err)
	}
	s.publish(signedOut)
}

// SignOut ends the session; identity and profile clear in one snapshot
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.backend.SignOut(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	s.publish(signedOut)
	return nil
}

// RefreshProfile re-reads the signed-in profile
func (s *Store) RefreshProfile(ctx context.Context) error {
	snap := s.Snapshot()
	if snap.Identity == nil {
		return types.ErrNoSession
	}

	profile, err := s.fetchProfile(ctx, snap.Identity.ID)
	if err != nil {
		return fmt.Errorf("failed to refresh profile: %w", err)
	}

	s.publish(func(next *Snapshot) {
		if next.Identity == nil || next.Identity.ID != snap.Identity.ID {
			return
		}
		next.Profile = profile
		next.ProfileMissing = profile == nil
	})
	return nil
}
