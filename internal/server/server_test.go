package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/auth"
	"github.com/matthieukhl/doemart/internal/backend/memory"
	"github.com/matthieukhl/doemart/internal/backend/storage"
	"github.com/matthieukhl/doemart/internal/logger"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/matthieukhl/doemart/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	server  *Server
	backend *memory.Backend
	store   *auth.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := memory.New(storage.NewMemory())
	store := auth.NewStore(b, logger.Discard())
	require.NoError(t, store.Restore(context.Background()))
	return &fixture{
		server:  NewServer(b, store, logger.Discard()),
		backend: b,
		store:   store,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (f *fixture) signUp(t *testing.T, email string, role models.Role) {
	t.Helper()
	w, _ := f.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email":     email,
		"password":  "secret123",
		"full_name": "Test Account",
		"role":      role,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func (f *fixture) approveSelf(t *testing.T) {
	t.Helper()
	id := f.store.Snapshot().ActorID()
	_, err := f.backend.Update(context.Background(), models.CollectionProfiles,
		[]types.Filter{types.Eq("id", id)}, types.Row{"status": models.StatusApproved})
	require.NoError(t, err)
	require.NoError(t, f.store.RefreshProfile(context.Background()))
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	w, body := f.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["backend"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGateOutcomesMapToStatus(t *testing.T) {
	t.Run("loading", func(t *testing.T) {
		b := memory.New(storage.NewMemory())
		store := auth.NewStore(b, logger.Discard())
		s := NewServer(b, store, logger.Discard())

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("signed out", func(t *testing.T) {
		f := newFixture(t)
		w, body := f.do(t, http.MethodGet, "/api/user", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "/login", body["redirect"])
	})

	t.Run("pending", func(t *testing.T) {
		f := newFixture(t)
		f.signUp(t, "pending@example.com", models.RoleUser)
		w, body := f.do(t, http.MethodGet, "/api/user", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "pending_approval", body["status"])
	})

	t.Run("wrong role", func(t *testing.T) {
		f := newFixture(t)
		f.signUp(t, "user@example.com", models.RoleUser)
		f.approveSelf(t)
		w, body := f.do(t, http.MethodGet, "/api/admin", nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Equal(t, "/", body["redirect"])
	})
}

func TestSignInFlow(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "ravi@example.com", models.RoleUser)

	w, _ := f.do(t, http.MethodPost, "/api/auth/signout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "ravi@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "ravi@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := f.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "ravi@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/user", body["home"])

	w, body = f.do(t, http.MethodGet, "/api/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["signed_in"])
	assert.Equal(t, "/user", body["redirect"])
}

func TestSignUpErrors(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "taken@example.com", models.RoleUser)

	w, _ := f.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "taken@example.com", "password": "secret123", "full_name": "Again", "role": "user",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "x@example.com", "password": "secret123", "full_name": "X", "role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "y@example.com", "password": "secret123", "full_name": "Y", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := f.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "short@example.com", "password": "123", "full_name": "Short", "role": "user",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "password must be at least")

	w, body = f.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "not-an-email", "password": "secret123", "full_name": "Nobody", "role": "user",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "invalid email")
}

func TestShopkeeperRoutes(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "owner@example.com", models.RoleShopkeeper)
	f.approveSelf(t)

	w, _ := f.do(t, http.MethodPost, "/api/shopkeeper/products", map[string]any{"name": "Rice"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/shopkeeper/shop", map[string]any{
		"shop_name": "Green Mart",
		"shop_type": "retail",
		"address":   "1 Main Road",
		"city":      "Pune",
		"state":     "MH",
		"pincode":   "411001",
		"phone":     "9999999999",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := f.do(t, http.MethodPost, "/api/shopkeeper/products", map[string]any{
		"name":                "Rice",
		"category":            "grocery",
		"price":               100,
		"discount_percentage": 20,
		"quantity":            4,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	dash := body["dashboard"].(map[string]any)
	products := dash["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "80", products[0].(map[string]any)["final_price"])

	w, _ = f.do(t, http.MethodPost, "/api/shopkeeper/products", map[string]any{
		"name": "Bad", "category": "grocery", "price": 10, "discount_percentage": 120, "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = f.do(t, http.MethodGet, "/api/shopkeeper", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, body["dashboard"].(map[string]any)["shop"])
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.signUp(t, "applicant@example.com", models.RoleUser)
	applicant := f.store.Snapshot().ActorID()
	require.NoError(t, f.store.SignOut(ctx))

	// Admins are provisioned out of band
	session, err := f.backend.SignUp(ctx, "admin@example.com", "secret123", nil)
	require.NoError(t, err)
	record, err := types.ToRow(models.ProfileInput{
		ID: session.Identity.ID, Email: "admin@example.com", FullName: "Admin",
		Role: models.RoleAdmin, Status: models.StatusApproved,
	})
	require.NoError(t, err)
	_, err = f.backend.Insert(ctx, models.CollectionProfiles, record)
	require.NoError(t, err)
	require.NoError(t, f.store.SignIn(ctx, "admin@example.com", "secret123"))

	w, body := f.do(t, http.MethodGet, "/api/admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := body["dashboard"].(map[string]any)["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["total_users"])
	assert.Equal(t, float64(1), stats["pending_approvals"])

	w, _ = f.do(t, http.MethodPost, "/api/admin/profiles/not-a-uuid/approve", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = f.do(t, http.MethodPost, "/api/admin/profiles/"+applicant.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats = body["dashboard"].(map[string]any)["stats"].(map[string]any)
	assert.Equal(t, float64(0), stats["pending_approvals"])

	w, _ = f.do(t, http.MethodPost, "/api/admin/profiles/"+applicant.String()+"/reject", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserRouteFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, shop := range []struct{ name, city string }{
		{"Green Mart", "Pune"}, {"Blue Store", "Pune"}, {"Green Foods", "Mumbai"},
	} {
		record, err := types.ToRow(models.ShopInput{
			ShopkeeperID: uuid.New(), ShopName: shop.name, ShopType: models.ShopTypeRetail, Address: "a", City: shop.city,
			State: "MH", Pincode: "1", Phone: "1", IsActive: true,
		})
		require.NoError(t, err)
		_, err = f.backend.Insert(ctx, models.CollectionShops, record)
		require.NoError(t, err)
	}

	f.signUp(t, "shopper@example.com", models.RoleUser)
	f.approveSelf(t)

	w, body := f.do(t, http.MethodGet, "/api/user?q=green&city=Pune", nil)
	require.Equal(t, http.StatusOK, w.Code)

	shops := body["shops"].([]any)
	require.Len(t, shops, 1)
	assert.Equal(t, "Green Mart", shops[0].(map[string]any)["shop_name"])
	assert.Equal(t, []any{"Pune", "Mumbai"}, body["cities"])
}
