package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/auth"
	"github.com/matthieukhl/doemart/internal/logger"
	"github.com/matthieukhl/doemart/internal/models"
	"github.com/matthieukhl/doemart/internal/types"
)

type ShopkeeperView struct {
	Shop     *models.Shop     `json:"shop"`
	Products []models.Product `json:"products"`
	Orders   []models.Order   `json:"orders"`
	Loading  bool             `json:"loading"`
}

// Shopkeeper shows the actor's shop with its products and incoming orders
type Shopkeeper struct {
	client types.DataClient
	log    *logger.Logger
	writes writes

	mu    sync.RWMutex
	actor uuid.UUID
	view  ShopkeeperView
}

func NewShopkeeper(client types.DataClient, log *logger.Logger, actor uuid.UUID) *Shopkeeper {
	log = log.WithComponent("shopkeeper_dashboard")
	return &Shopkeeper{
		client: client,
		log:    log,
		writes: writes{log: log},
		actor:  actor,
		view:   ShopkeeperView{Loading: true},
	}
}

func (s *Shopkeeper) View() ShopkeeperView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.view
	if s.view.Shop != nil {
		shop := *s.view.Shop
		v.Shop = &shop
	}
	v.Products = append([]models.Product(nil), s.view.Products...)
	v.Orders = append([]models.Order(nil), s.view.Orders...)
	return v
}

func (s *Shopkeeper) Actor() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actor
}

func (s *Shopkeeper) update(fn func(v *ShopkeeperView)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.view)
}

// Load finds the actor's shop, then fetches its products and orders together
func (s *Shopkeeper) Load(ctx context.Context) error {
	s.update(func(v *ShopkeeperView) { v.Loading = true })
	defer s.update(func(v *ShopkeeperView) { v.Loading = false })

	actor := s.Actor()
	if actor == uuid.Nil {
		return ErrNotSignedIn
	}

	q := types.Where(types.Eq("shopkeeper_id", actor))
	q.Limit = 1
	rows, err := s.client.Select(ctx, models.CollectionShops, q)
	if err != nil {
		s.log.Error("Failed to fetch", "collection", models.CollectionShops, "error", err)
		return fmt.Errorf("fetch %s: %w", models.CollectionShops, err)
	}
	if len(rows) == 0 {
		s.update(func(v *ShopkeeperView) {
			v.Shop = nil
			v.Products = nil
			v.Orders = nil
		})
		return nil
	}

	shop, err := types.DecodeRow[models.Shop](rows[0])
	if err != nil {
		s.log.Error("Failed to decode shop", "collection", models.CollectionShops, "error", err)
		return err
	}
	s.update(func(v *ShopkeeperView) { v.Shop = &shop })

	return settle(ctx, s.log,
		fetch{
			collection: models.CollectionProducts,
			run: func(ctx context.Context) error {
				rows, err := s.client.Select(ctx, models.CollectionProducts, types.Where(types.Eq("shop_id", shop.ID)))
				if err != nil {
					return err
				}
				products, err := decodeProducts(rows)
				if err != nil {
					return err
				}
				s.update(func(v *ShopkeeperView) { v.Products = products })
				return nil
			},
		},
		fetch{
			collection: models.CollectionOrders,
			run: func(ctx context.Context) error {
				q := types.Where(types.Eq("shop_id", shop.ID)).OrderBy("created_at", true)
				rows, err := s.client.Select(ctx, models.CollectionOrders, q)
				if err != nil {
					return err
				}
				orders, err := types.DecodeRows[models.Order](rows)
				if err != nil {
					return err
				}
				s.update(func(v *ShopkeeperView) { v.Orders = orders })
				return nil
			},
		},
	)
}

func decodeProducts(rows []types.Row) ([]models.Product, error) {
	products, err := types.DecodeRows[models.Product](rows)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Derive()
	}
	return products, nil
}

// CreateShop registers the actor's one shop
func (s *Shopkeeper) CreateShop(ctx context.Context, in models.ShopInput) error {
	actor := s.Actor()
	if actor == uuid.Nil {
		return ErrNotSignedIn
	}
	if s.View().Shop != nil {
		return ErrShopExists
	}

	in.ShopkeeperID = actor
	in.IsActive = true
	if in.ShopType == "" {
		in.ShopType = models.ShopTypeRetail
	}
	if err := in.Validate(); err != nil {
		return err
	}

	err := s.writes.do(writeKey(actor, "create_shop", actor), func() error {
		record, err := types.ToRow(in)
		if err != nil {
			return err
		}
		_, err = s.client.Insert(ctx, models.CollectionShops, record)
		if errors.Is(err, types.ErrConflict) {
			return fmt.Errorf("%w: %v", ErrShopExists, err)
		}
		return err
	})
	if err != nil {
		s.log.Error("Failed to create shop", "collection", models.CollectionShops, "error", err)
	} else {
		s.log.Info("Shop created", "shop_name", in.ShopName, "city", in.City)
	}

	_ = s.Load(ctx)
	return err
}

// AddProduct lists a product in the actor's shop with its final price computed here
func (s *Shopkeeper) AddProduct(ctx context.Context, in models.ProductInput) error {
	actor := s.Actor()
	if actor == uuid.Nil {
		return ErrNotSignedIn
	}
	shop := s.View().Shop
	if shop == nil {
		return ErrNoShop
	}

	in.ShopID = shop.ID
	in.Prepare()
	if err := in.Validate(); err != nil {
		return err
	}

	err := s.writes.do(writeKey(actor, "add_product", in.Name), func() error {
		record, err := types.ToRow(in)
		if err != nil {
			return err
		}
		_, err = s.client.Insert(ctx, models.CollectionProducts, record)
		return err
	})
	if err != nil {
		s.log.Error("Failed to add product", "collection", models.CollectionProducts, "error", err)
	} else {
		s.log.Info("Product added", "name", in.Name, "final_price", in.FinalPrice.StringFixed(2))
	}

	_ = s.Load(ctx)
	return err
}

// Watch reloads whenever the store's signed-in identity changes, until ctx ends
func (s *Shopkeeper) Watch(ctx context.Context, store *auth.Store) {
	wake := make(chan struct{}, 1)
	notify := func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
	unsubscribe := store.Subscribe(func(auth.Snapshot) { notify() })
	defer unsubscribe()

	notify()
	watched, first := uuid.Nil, true

	for {
		select {
		case <-ctx.Done():
			return
		case <-wake:
			actor := store.Snapshot().ActorID()
			if !first && actor == watched {
				continue
			}
			watched, first = actor, false

			s.mu.Lock()
			s.actor = actor
			s.mu.Unlock()

			if actor == uuid.Nil {
				s.update(func(v *ShopkeeperView) { *v = ShopkeeperView{} })
				continue
			}
			_ = s.Load(ctx)
		}
	}
}
