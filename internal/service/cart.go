package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lucaria/internal/events"
	"github.com/Skotchmaster/lucaria/internal/models"
	"github.com/Skotchmaster/lucaria/internal/pricing"
	"github.com/Skotchmaster/lucaria/internal/repo"
	"github.com/Skotchmaster/lucaria/internal/session"
	"github.com/Skotchmaster/lucaria/pkg/logging"
)

const (
	MsgInvalidDiscount = "Invalid discount code. Please try again."

	// MaxLineQuantity bounds a single cart line after merging.
	MaxLineQuantity = 10000
)

// CartService owns every change to the cart, discount and discount error of
// a session. Callers load and save the session around it.
type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type LineItem struct {
	Product  models.Product
	Quantity int
	Subtotal decimal.Decimal
}

type Totals struct {
	Lines          []LineItem
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	DiscountAmount decimal.Decimal
	DiscountCode   string
	DiscountError  string
	Total          decimal.Decimal
}

func (t *Totals) Empty() bool { return len(t.Lines) == 0 }

func (s *CartService) AddItem(ctx context.Context, sess *session.Session, productID, qty int) error {
	if productID <= 0 || qty < 1 || qty > MaxLineQuantity {
		return fmt.Errorf("product %d quantity %d: %w", productID, qty, ErrInvalidInput)
	}
	id := uint(productID)

	for i := range sess.Cart {
		if sess.Cart[i].ProductID != id {
			continue
		}
		if sess.Cart[i].Quantity > MaxLineQuantity-qty {
			return fmt.Errorf("product %d quantity %d exceeds %d: %w", productID, sess.Cart[i].Quantity+qty, MaxLineQuantity, ErrInvalidInput)
		}
		sess.Cart[i].Quantity += qty
		s.emitAdded(ctx, id, qty)
		return nil
	}

	sess.Cart = append(sess.Cart, session.CartLine{ProductID: id, Quantity: qty})
	s.emitAdded(ctx, id, qty)
	return nil
}

func (s *CartService) emitAdded(ctx context.Context, id uint, qty int) {
	events.Emit(ctx, s.Events, events.Event{
		Topic:   events.TopicCart,
		Type:    "cart_item_added",
		Payload: map[string]any{"product_id": id, "quantity": qty},
	})
}

// RemoveItem drops every line for productID. Emptying the cart also clears
// the discount and any discount error.
func (s *CartService) RemoveItem(ctx context.Context, sess *session.Session, productID int) {
	kept := sess.Cart[:0]
	removed := false
	for _, line := range sess.Cart {
		if productID > 0 && line.ProductID == uint(productID) {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	sess.Cart = kept

	if len(sess.Cart) == 0 {
		sess.Cart = nil
		sess.Discount = nil
		sess.DiscountError = ""
	}

	if removed {
		events.Emit(ctx, s.Events, events.Event{
			Topic:   events.TopicCart,
			Type:    "cart_item_removed",
			Payload: map[string]any{"product_id": productID},
		})
	}
}

// ApplyDiscount normalises code and looks it up. It reports whether the
// session changed and whether the code was accepted.
func (s *CartService) ApplyDiscount(ctx context.Context, sess *session.Session, code string) (changed, accepted bool, err error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return false, false, nil
	}

	d, err := s.Repo.GetDiscount(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sess.DiscountError = MsgInvalidDiscount
			return true, false, nil
		}
		return false, false, fmt.Errorf("lookup discount: %w", err)
	}

	sess.Discount = &session.AppliedDiscount{Code: d.Code, Percent: d.Percent}
	sess.DiscountError = ""

	events.Emit(ctx, s.Events, events.Event{
		Topic:   events.TopicCart,
		Type:    "discount_applied",
		Payload: map[string]any{"code": d.Code},
	})
	return true, true, nil
}

// ComputeTotals resolves cart lines against the catalog and prices them.
// Lines whose product no longer exists are skipped.
func (s *CartService) ComputeTotals(ctx context.Context, sess *session.Session) (*Totals, error) {
	l := logging.FromContext(ctx).With("svc", "cart.totals")

	ids := make([]uint, 0, len(sess.Cart))
	for _, line := range sess.Cart {
		ids = append(ids, line.ProductID)
	}
	byID, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}

	t := &Totals{
		Lines:         make([]LineItem, 0, len(sess.Cart)),
		DiscountError: sess.DiscountError,
	}
	subtotal := decimal.Zero
	for _, line := range sess.Cart {
		p, ok := byID[line.ProductID]
		if !ok {
			l.Warn("cart_line_orphaned", "product_id", line.ProductID, "quantity", line.Quantity)
			continue
		}
		lineTotal := pricing.LineTotal(p.Price, line.Quantity)
		subtotal = subtotal.Add(lineTotal)
		t.Lines = append(t.Lines, LineItem{Product: p, Quantity: line.Quantity, Subtotal: lineTotal})
	}

	percent := decimal.Zero
	if sess.Discount != nil {
		percent = sess.Discount.Percent
		t.DiscountCode = sess.Discount.Code
	}

	b := pricing.Compute(subtotal, percent)
	t.Subtotal = b.Subtotal
	t.Tax = b.Tax
	t.DiscountAmount = b.DiscountAmount
	t.Total = b.Total
	return t, nil
}
