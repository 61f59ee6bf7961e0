package dashboard

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/logger"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/matthieukhl/doemart/internal/types"
)

// FeaturedProducts caps how many products a results page shows
const FeaturedProducts = 12

type UserView struct {
	Shops    []models.Shop    `json:"shops"`
	Products []models.Product `json:"products"`
	Orders   []models.Order   `json:"orders"`
	Loading  bool             `json:"loading"`
}

// User shows active shops, available products, and the actor's own orders
type User struct {
	client types.DataClient
	log    *logger.Logger
	actor  uuid.UUID

	mu   sync.RWMutex
	view UserView
}

func NewUser(client types.DataClient, log *logger.Logger, actor uuid.UUID) *User {
	return &User{
		client: client,
		log:    log.WithComponent("user_dashboard").With("actor", actor),
		actor:  actor,
		view:   UserView{Loading: true},
	}
}

func (u *User) View() UserView {
	u.mu.RLock()
	defer u.mu.RUnlock()
	v := u.view
	v.Shops = append([]models.Shop(nil), u.view.Shops...)
	v.Products = append([]models.Product(nil), u.view.Products...)
	v.Orders = append([]models.Order(nil), u.view.Orders...)
	return v
}

func (u *User) update(fn func(v *UserView)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(&u.view)
}

func (u *User) Load(ctx context.Context) error {
	u.update(func(v *UserView) { v.Loading = true })
	defer u.update(func(v *UserView) { v.Loading = false })

	return settle(ctx, u.log,
		fetch{
			collection: models.CollectionShops,
			run: func(ctx context.Context) error {
				rows, err := u.client.Select(ctx, models.CollectionShops, types.Where(types.Eq("is_active", true)))
				if err != nil {
					return err
				}
				shops, err := types.DecodeRows[models.Shop](rows)
				if err != nil {
					return err
				}
				u.update(func(v *UserView) { v.Shops = shops })
				return nil
			},
		},
		fetch{
			collection: models.CollectionProducts,
			run: func(ctx context.Context) error {
				rows, err := u.client.Select(ctx, models.CollectionProducts, types.Where(types.Eq("is_available", true)))
				if err != nil {
					return err
				}
				products, err := decodeProducts(rows)
				if err != nil {
					return err
				}
				u.update(func(v *UserView) { v.Products = products })
				return nil
			},
		},
		fetch{
			collection: models.CollectionOrders,
			run: func(ctx context.Context) error {
				q := types.Where(types.Eq("user_id", u.actor)).OrderBy("created_at", true)
				rows, err := u.client.Select(ctx, models.CollectionOrders, q)
				if err != nil {
					return err
				}
				orders, err := types.DecodeRows[models.Order](rows)
				if err != nil {
					return err
				}
				u.update(func(v *UserView) { v.Orders = orders })
				return nil
			},
		},
	)
}

// Search applies f to the loaded shops and products
func (u *User) Search(f Filter) ([]models.Shop, []models.Product) {
	v := u.View()
	return FilterShops(v.Shops, f.Query, f.City), FilterProducts(v.Products, f.Query, f.Category)
}

func (u *User) Cities() []string {
	return Cities(u.View().Shops)
}

func (u *User) Categories() []string {
	return Categories(u.View().Products)
}
