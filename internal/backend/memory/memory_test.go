package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/backend/storage"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/matthieukhl/doemart/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSelectFilterOrder(t *testing.T) {
	ctx := context.Background()
	b := New(storage.NewMemory())

	shopID := uuid.New()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	for _, status := range []models.OrderStatus{models.OrderStatusPending, models.OrderStatusReady, models.OrderStatusCompleted} {
		_, err := b.Insert(ctx, models.CollectionOrders, types.Row{"shop_id": shopID, "status": status})
		require.NoError(t, err)
	}
	_, err := b.Insert(ctx, models.CollectionOrders, types.Row{"shop_id": uuid.New(), "status": "pending"})
	require.NoError(t, err)

	rows, err := b.Select(ctx, models.CollectionOrders, types.Where(types.Eq("shop_id", shopID)).OrderBy("created_at", true))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "completed", rows[0]["status"])
	assert.Equal(t, "pending", rows[2]["status"])

	n, err := b.Count(ctx, models.CollectionOrders, types.Query{})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestInsertAssignsID(t *testing.T) {
	b := New(storage.NewMemory())
	row, err := b.Insert(context.Background(), "shops", types.Row{"shop_name": "Green Mart"})
	require.NoError(t, err)

	_, err = uuid.Parse(row["id"].(string))
	assert.NoError(t, err)
	assert.NotEmpty(t, row["created_at"])
}

func TestInsertRejectsSecondShopForOwner(t *testing.T) {
	ctx := context.Background()
	b := New(storage.NewMemory())
	owner := uuid.New()

	_, err := b.Insert(ctx, models.CollectionShops, types.Row{"shopkeeper_id": owner, "shop_name": "Green Mart"})
	require.NoError(t, err)

	_, err = b.Insert(ctx, models.CollectionShops, types.Row{"shopkeeper_id": owner.String(), "shop_name": "Second"})
	assert.ErrorIs(t, err, types.ErrConflict)

	_, err = b.Insert(ctx, models.CollectionShops, types.Row{"shopkeeper_id": uuid.New(), "shop_name": "Blue Store"})
	require.NoError(t, err)

	n, err := b.Count(ctx, models.CollectionShops, types.Where(types.Eq("shopkeeper_id", owner)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBoolFilterMatchesTypedValue(t *testing.T) {
	ctx := context.Background()
	b := New(storage.NewMemory())

	_, _ = b.Insert(ctx, "shops", types.Row{"shop_name": "Open", "is_active": true})
	_, _ = b.Insert(ctx, "shops", types.Row{"shop_name": "Closed", "is_active": false})

	rows, err := b.Select(ctx, "shops", types.Where(types.Eq("is_active", true)))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Open", rows[0]["shop_name"])
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	b := New(storage.NewMemory())

	row, _ := b.Insert(ctx, "profiles", types.Row{"status": "pending"})

	n, err := b.Update(ctx, "profiles", []types.Filter{types.Eq("id", row["id"])}, types.Row{"status": models.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, _ := b.Select(ctx, "profiles", types.Query{})
	assert.Equal(t, "approved", rows[0]["status"])

	_, err = b.Update(ctx, "profiles", nil, types.Row{"status": "rejected"})
	assert.Error(t, err)
}

func TestProjection(t *testing.T) {
	ctx := context.Background()
	b := New(storage.NewMemory())
	_, _ = b.Insert(ctx, "profiles", types.Row{"email": "a@example.com", "full_name": "A"})

	rows, err := b.Select(ctx, "profiles", types.Query{Columns: []string{"email"}})
	require.NoError(t, err)
	assert.Equal(t, types.Row{"email": "a@example.com"}, rows[0])
}

func TestLatencyHonoursContext(t *testing.T) {
	b := New(storage.NewMemory())
	b.SetLatency("shops", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := b.Select(ctx, "shops", types.Query{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAuthLifecycle(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	b := New(store)

	_, err := b.RestoreSession(ctx)
	assert.ErrorIs(t, err, types.ErrNoSession)

	s, err := b.SignUp(ctx, "Asha@Example.com", "secret123", nil)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", s.Identity.Email)

	_, err = b.SignUp(ctx, "asha@example.com", "another123", nil)
	assert.ErrorIs(t, err, types.ErrEmailTaken)

	restored, err := b.RestoreSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Identity.ID, restored.Identity.ID)

	require.NoError(t, b.SignOut(ctx))
	_, err = b.RestoreSession(ctx)
	assert.ErrorIs(t, err, types.ErrNoSession)

	_, err = b.SignIn(ctx, "asha@example.com", "wrong-password")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)

	signedIn, err := b.SignIn(ctx, "asha@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, s.Identity.ID, signedIn.Identity.ID)
}

func TestExpiredSessionIsNotRestored(t *testing.T) {
	ctx := context.Background()
	b := New(storage.NewMemory())
	now := time.Now()
	b.now = func() time.Time { return now }

	_, err := b.SignUp(ctx, "user@example.com", "secret123", nil)
	require.NoError(t, err)

	now = now.Add(48 * time.Hour)
	_, err = b.RestoreSession(ctx)
	assert.ErrorIs(t, err, types.ErrNoSession)
}
