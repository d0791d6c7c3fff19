package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tymelesstyre/storefront/internal/core/domain"
	"github.com/tymelesstyre/storefront/internal/core/ports"
)

// CartService owns the shopping cart of one client: lines, pricing and the
// active voucher. Every mutation is persisted before it becomes visible.
type CartService struct {
	store   ports.KeyValueStore
	log     zerolog.Logger
	pricing domain.PricingPolicy
	now     func() time.Time

	mu   sync.Mutex
	cart domain.Cart

	changes broadcaster
}

// CartOption configures a CartService.
type CartOption func(*CartService)

// WithPricing overrides the automatic discount tiering.
func WithPricing(p domain.PricingPolicy) CartOption {
	return func(s *CartService) { s.pricing = p }
}

// WithClock sets the clock used to stamp new lines.
func WithClock(now func() time.Time) CartOption {
	return func(s *CartService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewCartService(store ports.KeyValueStore, log zerolog.Logger, opts ...CartOption) *CartService {
	s := &CartService{
		store:   store,
		log:     log,
		pricing: domain.DefaultPricing(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cart.Recalculate(s.pricing)
	return s
}

// Restore loads the persisted cart. Lines without a product id are dropped and
// duplicate product ids are merged into the first occurrence.
func (s *CartService) Restore(ctx context.Context) error {
	var lines []domain.CartLine
	if _, err := loadJSON(ctx, s.store, ports.KeyCartItems, &lines); err != nil {
		return fmt.Errorf("restore cart: %w", err)
	}
	voucher, _, err := s.store.Get(ctx, ports.KeyCartVoucher)
	if err != nil {
		return fmt.Errorf("restore cart: %w", err)
	}

	restored := domain.Cart{Voucher: strings.TrimSpace(voucher)}
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		if i := restored.IndexOf(l.ProductID); i >= 0 {
			sum, ok := domain.AddQuantity(restored.Lines[i].Quantity, l.Quantity)
			if !ok {
				s.log.Warn().Str("product_id", l.ProductID).Msg("dropping duplicate line with oversized quantity")
				continue
			}
			restored.Lines[i].Quantity = sum
			continue
		}
		restored.Lines = append(restored.Lines, l)
	}
	restored.Recalculate(s.pricing)

	s.mu.Lock()
	s.cart = restored
	s.mu.Unlock()

	s.log.Debug().Int("lines", len(restored.Lines)).Str("voucher", restored.Voucher).Msg("cart restored")
	s.changes.notify()
	return nil
}

// AddItem adds quantity units of product, merging into an existing line.
func (s *CartService) AddItem(ctx context.Context, product domain.Product, quantity int) error {
	if strings.TrimSpace(product.ID) == "" {
		return domain.ErrInvalidProduct
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if product.Price.IsNegative() {
		return domain.ErrInvalidPrice
	}

	return s.mutate(ctx, "add item", func(c *domain.Cart) (bool, error) {
		if i := c.IndexOf(product.ID); i >= 0 {
			sum, ok := domain.AddQuantity(c.Lines[i].Quantity, quantity)
			if !ok {
				return false, domain.ErrInvalidQuantity
			}
			c.Lines[i].Quantity = sum
			return true, nil
		}
		c.Lines = append(c.Lines, domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  quantity,
			AddedAt:   s.now(),
		})
		return true, nil
	})
}

// RemoveItem deletes the line for productID. Removing an absent line is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, productID string) error {
	return s.mutate(ctx, "remove item", func(c *domain.Cart) (bool, error) {
		i := c.IndexOf(productID)
		if i < 0 {
			return false, nil
		}
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return true, nil
	})
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	return s.mutate(ctx, "update quantity", func(c *domain.Cart) (bool, error) {
		i := c.IndexOf(productID)
		if i < 0 {
			return false, nil
		}
		if quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true, nil
		}
		if c.Lines[i].Quantity == quantity {
			return false, nil
		}
		c.Lines[i].Quantity = quantity
		return true, nil
	})
}

// ClearCart empties the cart, drops the voucher and removes the persisted keys.
func (s *CartService) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	if err := s.store.Remove(ctx, ports.KeyCartItems); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear cart: %w", err)
	}
	if err := s.store.Remove(ctx, ports.KeyCartVoucher); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear cart: %w", err)
	}
	s.cart = domain.Cart{}
	s.cart.Recalculate(s.pricing)
	s.mu.Unlock()

	s.changes.notify()
	return nil
}

// ApplyVoucher activates the voucher named by code. An unrecognised code
// returns false and leaves the cart untouched.
func (s *CartService) ApplyVoucher(ctx context.Context, code string) (bool, error) {
	v, ok := domain.LookupVoucher(code)
	if !ok {
		s.log.Debug().Str("code", code).Msg("unknown voucher")
		return false, nil
	}

	err := s.mutate(ctx, "apply voucher", func(c *domain.Cart) (bool, error) {
		c.Voucher = v.Code
		return true, nil
	})
	if err != nil {
		return false, err
	}

	s.log.Info().Str("voucher", v.Code).Msg("voucher applied")
	return true, nil
}

// RemoveVoucher drops the active voucher; automatic tiering applies again.
func (s *CartService) RemoveVoucher(ctx context.Context) error {
	return s.mutate(ctx, "remove voucher", func(c *domain.Cart) (bool, error) {
		if c.Voucher == "" {
			return false, nil
		}
		c.Voucher = ""
		return true, nil
	})
}

// Snapshot returns the current cart view.
func (s *CartService) Snapshot() domain.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.View()
}

// Items returns a copy of the cart lines in insertion order.
func (s *CartService) Items() []domain.CartLine {
	return s.Snapshot().Items
}

// Subscribe registers fn to be called after every cart change.
func (s *CartService) Subscribe(fn func()) (unsubscribe func()) {
	return s.changes.subscribe(fn)
}

// mutate applies change to a copy of the cart, recomputes pricing, persists
// and only then commits. change reports whether anything changed; an error
// from change aborts without touching the cart.
func (s *CartService) mutate(ctx context.Context, op string, change func(*domain.Cart) (bool, error)) error {
	s.mu.Lock()

	next := s.cart
	next.Lines = append([]domain.CartLine(nil), s.cart.Lines...)
	changed, err := change(&next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}
	next.Recalculate(s.pricing)

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	s.cart = next
	s.mu.Unlock()

	s.changes.notify()
	return nil
}

func (s *CartService) persist(ctx context.Context, c domain.Cart) error {
	lines := c.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	if err := saveJSON(ctx, s.store, ports.KeyCartItems, lines); err != nil {
		return err
	}
	if c.Voucher == "" {
		return s.store.Remove(ctx, ports.KeyCartVoucher)
	}
	return s.store.Set(ctx, ports.KeyCartVoucher, c.Voucher)
}
