package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matthieukhl/doemart/internal/backend/memory"
	"github.com/matthieukhl/doemart/internal/backend/storage"
	"github.com/matthieukhl/doemart/internal/logger"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/matthieukhl/doemart/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *memory.Backend) {
	t.Helper()
	b := memory.New(storage.NewMemory())
	return NewStore(b, logger.Discard()), b
}

func register(t *testing.T, s *Store, email string, role models.Role) {
	t.Helper()
	require.NoError(t, s.SignUp(context.Background(), Registration{
		Email:    email,
		Password: "secret123",
		FullName: "Test " + string(role),
		Role:     role,
	}))
}

// recorder collects every published snapshot
type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) record(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snaps...)
}

func TestNewStoreStartsLoading(t *testing.T) {
	s, _ := newStore(t)
	snap := s.Snapshot()
	assert.True(t, snap.Loading)
	assert.False(t, snap.SignedIn())
	assert.Nil(t, snap.Profile)
}

func TestRestoreWithoutSession(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.Restore(context.Background()))
	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.False(t, snap.SignedIn())
}

func TestSignUpCreatesPendingProfile(t *testing.T) {
	s, b := newStore(t)
	register(t, s, "asha@example.com", models.RoleShopkeeper)

	snap := s.Snapshot()
	require.True(t, snap.SignedIn())
	require.NotNil(t, snap.Profile)
	assert.Equal(t, snap.Identity.ID, snap.Profile.ID)
	assert.Equal(t, models.StatusPending, snap.Profile.Status)
	assert.Equal(t, models.RoleShopkeeper, snap.Profile.Role)
	assert.False(t, snap.ProfileMissing)

	n, err := b.Count(context.Background(), models.CollectionProfiles, types.Where(types.Eq("status", models.StatusPending)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSignUpRejectsAdminAndBadInput(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	err := s.SignUp(ctx, Registration{Email: "a@b.com", Password: "secret123", FullName: "A", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	err = s.SignUp(ctx, Registration{Email: "a@b.com", Password: "secret123", Role: models.RoleUser})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	assert.False(t, s.Snapshot().SignedIn())
}

// rejectingInserts is a backend whose data writes always fail
type rejectingInserts struct {
	*memory.Backend
}

func (rejectingInserts) Insert(ctx context.Context, collection string, record types.Row) (types.Row, error) {
	return nil, errors.New("insert denied")
}

func TestSignUpDropsSessionWhenProfileFails(t *testing.T) {
	ctx := context.Background()
	sessions := storage.NewMemory()
	b := memory.New(sessions)

	s := NewStore(rejectingInserts{b}, logger.Discard())
	err := s.SignUp(ctx, Registration{
		Email:    "half@example.com",
		Password: "secret123",
		FullName: "Half Registered",
		Role:     models.RoleUser,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert denied")

	snap := s.Snapshot()
	assert.False(t, snap.SignedIn())
	assert.False(t, snap.Loading)

	saved, err := sessions.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)

	next := NewStore(b, logger.Discard())
	require.NoError(t, next.Restore(ctx))
	assert.False(t, next.Snapshot().SignedIn())
	assert.False(t, next.Snapshot().ProfileMissing)
}

func TestSignInLifecycle(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	register(t, s, "ravi@example.com", models.RoleUser)
	require.NoError(t, s.SignOut(ctx))

	err := s.SignIn(ctx, "ravi@example.com", "wrong-password")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)
	assert.False(t, s.Snapshot().SignedIn())

	require.NoError(t, s.SignIn(ctx, "ravi@example.com", "secret123"))
	snap := s.Snapshot()
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "ravi@example.com", snap.Identity.Email)

	// A fresh store restores the persisted session
	fresh := NewStore(s.backend, logger.Discard())
	require.NoError(t, fresh.Restore(ctx))
	restored := fresh.Snapshot()
	assert.False(t, restored.Loading)
	require.NotNil(t, restored.Profile)
	assert.Equal(t, snap.Identity.ID, restored.Identity.ID)
}

func TestSignInWithoutProfile(t *testing.T) {
	s, b := newStore(t)
	ctx := context.Background()

	_, err := b.SignUp(ctx, "ghost@example.com", "secret123", nil)
	require.NoError(t, err)

	require.NoError(t, s.SignIn(ctx, "ghost@example.com", "secret123"))
	snap := s.Snapshot()
	assert.True(t, snap.SignedIn())
	assert.Nil(t, snap.Profile)
	assert.True(t, snap.ProfileMissing)
	assert.False(t, snap.Loading)
}

func TestSignOutClearsInOneSnapshot(t *testing.T) {
	s, _ := newStore(t)
	register(t, s, "meera@example.com", models.RoleUser)

	rec := &recorder{}
	unsubscribe := s.Subscribe(rec.record)
	defer unsubscribe()

	require.NoError(t, s.SignOut(context.Background()))

	snaps := rec.all()
	require.Len(t, snaps, 1)
	assert.Nil(t, snaps[0].Identity)
	assert.Nil(t, snaps[0].Profile)
	assert.False(t, snaps[0].Loading)
}

func TestSubscribeVersionsAndUnsubscribe(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	rec := &recorder{}
	unsubscribe := s.Subscribe(rec.record)

	register(t, s, "kiran@example.com", models.RoleUser)
	snaps := rec.all()
	require.NotEmpty(t, snaps)
	for i := 1; i < len(snaps); i++ {
		assert.Greater(t, snaps[i].Version, snaps[i-1].Version)
	}
	assert.Equal(t, s.Snapshot().Version, snaps[len(snaps)-1].Version)

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.SignOut(ctx))
	assert.Len(t, rec.all(), len(snaps))
}

func TestSnapshotsAreCopies(t *testing.T) {
	s, _ := newStore(t)
	register(t, s, "dev@example.com", models.RoleUser)

	snap := s.Snapshot()
	snap.Profile.FullName = "changed"
	assert.NotEqual(t, "changed", s.Snapshot().Profile.FullName)
}

func TestRefreshProfileSeesApproval(t *testing.T) {
	s, b := newStore(t)
	ctx := context.Background()
	register(t, s, "sam@example.com", models.RoleShopkeeper)
	id := s.Snapshot().ActorID()

	_, err := b.Update(ctx, models.CollectionProfiles, []types.Filter{types.Eq("id", id)},
		types.Row{"status": models.StatusApproved})
	require.NoError(t, err)

	require.NoError(t, s.RefreshProfile(ctx))
	assert.Equal(t, models.StatusApproved, s.Snapshot().Profile.Status)

	require.NoError(t, s.SignOut(ctx))
	assert.True(t, errors.Is(s.RefreshProfile(ctx), types.ErrNoSession))
}

func TestStartRestoresInBackground(t *testing.T) {
	s, _ := newStore(t)

	done := make(chan Snapshot, 4)
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		if !snap.Loading {
			done <- snap
		}
	})
	defer unsubscribe()

	s.Start(context.Background())

	select {
	case snap := <-done:
		assert.False(t, snap.SignedIn())
	case <-time.After(time.Second):
		t.Fatal("restore did not settle")
	}
}
