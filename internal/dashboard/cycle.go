// Package dashboard builds the admin, shopkeeper, and user views. Each view
// loads with one concurrent fetch cycle and re-runs it after every write.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/matthieukhl/doemart/internal/logger"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNoShop      = errors.New("no shop for this shopkeeper")
	ErrShopExists  = errors.New("shopkeeper already has a shop")
	ErrNotPending  = errors.New("profile is not pending approval")
	ErrNotSignedIn = errors.New("dashboard has no signed-in actor")
)

// fetch is one read of a fetch cycle; run stores its own result on success
type fetch struct {
	collection string
	run        func(ctx context.Context) error
}

// settle runs every fetch concurrently and returns once all have finished.
// Failures are logged and combined; a panicking fetch is reported as an error.
func settle(ctx context.Context, log *logger.Logger, fetches ...fetch) error {
	errs := make([]error, len(fetches))

	var wg conc.WaitGroup
	for i, f := range fetches {
		wg.Go(func() {
			if err := f.run(ctx); err != nil {
				log.Error("Failed to fetch", "collection", f.collection, "error", err)
				errs[i] = fmt.Errorf("fetch %s: %w", f.collection, err)
			}
		})
	}

	if r := wg.WaitAndRecover(); r != nil {
		log.Error("Fetch panicked", "panic", r.Value)
		errs = append(errs, fmt.Errorf("fetch panicked: %v", r.Value))
	}

	return multierr.Combine(errs...)
}

// writes collapses concurrent duplicates of the same (actor, action, target) into one call
type writes struct {
	group singleflight.Group
	log   *logger.Logger
}

func writeKey(actor fmt.Stringer, action string, target any) string {
	return fmt.Sprintf("%s:%s:%v", actor, action, target)
}

func (w *writes) do(key string, fn func() error) error {
	_, err, shared := w.group.Do(key, func() (any, error) {
		return nil, fn()
	})
	if shared {
		w.log.Debug("Joined in-flight write", "key", key)
	}
	return err
}
