package service

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/lucaria/internal/events"
	"github.com/Skotchmaster/lucaria/internal/models"
	"github.com/Skotchmaster/lucaria/internal/repo"
	"github.com/Skotchmaster/lucaria/internal/session"
	"github.com/Skotchmaster/lucaria/internal/testutil"
)

func newCart(t *testing.T) (*CartService, *events.Recorder) {
	t.Helper()
	db := testutil.InitSeededDB(t)
	rec := &events.Recorder{}
	return &CartService{Repo: &repo.GormRepo{DB: db}, Events: rec}, rec
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAddItemMergesLines(t *testing.T) {
	svc, rec := newCart(t)
	ctx := context.Background()
	sess := &session.Session{}

	require.NoError(t, svc.AddItem(ctx, sess, 5, 2))
	require.NoError(t, svc.AddItem(ctx, sess, 5, 3))

	require.Len(t, sess.Cart, 1)
	assert.Equal(t, session.CartLine{ProductID: 5, Quantity: 5}, sess.Cart[0])
	assert.Equal(t, []string{"cart_item_added", "cart_item_added"}, rec.Types())
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	svc, _ := newCart(t)
	ctx := context.Background()
	sess := &session.Session{Cart: []session.CartLine{{ProductID: 1, Quantity: 1}}}

	assert.ErrorIs(t, svc.AddItem(ctx, sess, 0, 1), ErrInvalidInput)
	assert.ErrorIs(t, svc.AddItem(ctx, sess, -3, 1), ErrInvalidInput)
	assert.ErrorIs(t, svc.AddItem(ctx, sess, 1, 0), ErrInvalidInput)
	assert.Equal(t, []session.CartLine{{ProductID: 1, Quantity: 1}}, sess.Cart)
}

func TestAddItemCapsLineQuantity(t *testing.T) {
	svc, rec := newCart(t)
	ctx := context.Background()
	sess := &session.Session{}

	assert.ErrorIs(t, svc.AddItem(ctx, sess, 1, math.MaxInt), ErrInvalidInput)
	assert.ErrorIs(t, svc.AddItem(ctx, sess, 1, MaxLineQuantity+1), ErrInvalidInput)
	assert.Empty(t, sess.Cart)

	require.NoError(t, svc.AddItem(ctx, sess, 1, MaxLineQuantity-1))
	assert.ErrorIs(t, svc.AddItem(ctx, sess, 1, 2), ErrInvalidInput)
	require.NoError(t, svc.AddItem(ctx, sess, 1, 1))
	assert.ErrorIs(t, svc.AddItem(ctx, sess, 1, 1), ErrInvalidInput)

	require.Len(t, sess.Cart, 1)
	assert.Equal(t, MaxLineQuantity, sess.Cart[0].Quantity)
	assert.Len(t, rec.Events(), 2)

	totals, err := svc.ComputeTotals(ctx, sess)
	require.NoError(t, err)
	assert.True(t, totals.Total.IsPositive())
}

func TestRemoveLastItemClearsDiscount(t *testing.T) {
	svc, _ := newCart(t)
	ctx := context.Background()
	sess := &session.Session{}

	require.NoError(t, svc.AddItem(ctx, sess, 1, 1))
	_, _, err := svc.ApplyDiscount(ctx, sess, "SAVE10")
	require.NoError(t, err)
	sess.DiscountError = "stale"

	svc.RemoveItem(ctx, sess, 1)
	assert.Empty(t, sess.Cart)
	assert.Nil(t, sess.Discount)
	assert.Empty(t, sess.DiscountError)

	totals, err := svc.ComputeTotals(ctx, sess)
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	svc, rec := newCart(t)
	ctx := context.Background()
	sess := &session.Session{
		Cart:     []session.CartLine{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 4}},
		Discount: &session.AppliedDiscount{Code: "SAVE10", Percent: dec("10")},
	}

	svc.RemoveItem(ctx, sess, 1)
	svc.RemoveItem(ctx, sess, 1)
	svc.RemoveItem(ctx, sess, 0)

	assert.Equal(t, []session.CartLine{{ProductID: 2, Quantity: 4}}, sess.Cart)
	assert.NotNil(t, sess.Discount, "discount survives while the cart has lines")
	assert.Equal(t, []string{"cart_item_removed"}, rec.Types())
}

func TestApplyDiscountNormalisesCode(t *testing.T) {
	svc, _ := newCart(t)
	ctx := context.Background()

	lower := &session.Session{}
	changed, ok, err := svc.ApplyDiscount(ctx, lower, "  save10 ")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, ok)

	upper := &session.Session{}
	_, _, err = svc.ApplyDiscount(ctx, upper, "SAVE10")
	require.NoError(t, err)

	assert.Equal(t, upper.Discount.Code, lower.Discount.Code)
	assert.True(t, upper.Discount.Percent.Equal(lower.Discount.Percent))
}

func TestApplyUnknownDiscountKeepsPrevious(t *testing.T) {
	svc, _ := newCart(t)
	ctx := context.Background()
	sess := &session.Session{}

	_, _, err := svc.ApplyDiscount(ctx, sess, "FALL25")
	require.NoError(t, err)

	changed, ok, err := svc.ApplyDiscount(ctx, sess, "bogus")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, ok)
	assert.Equal(t, MsgInvalidDiscount, sess.DiscountError)
	require.NotNil(t, sess.Discount)
	assert.Equal(t, "FALL25", sess.Discount.Code)

	_, ok, err = svc.ApplyDiscount(ctx, sess, "welcome5")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, sess.DiscountError)
	assert.Equal(t, "WELCOME5", sess.Discount.Code)
}

func TestApplyEmptyDiscountIsNoop(t *testing.T) {
	svc, _ := newCart(t)
	sess := &session.Session{DiscountError: "keep"}

	changed, _, err := svc.ApplyDiscount(context.Background(), sess, "   ")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "keep", sess.DiscountError)
	assert.Nil(t, sess.Discount)
}

func TestComputeTotalsExact(t *testing.T) {
	svc, _ := newCart(t)
	ctx := context.Background()

	hundred := models.Product{Name: "Coat", Price: dec("25.00"), Category: "Outerwear"}
	require.NoError(t, svc.Repo.DB.Create(&hundred).Error)

	sess := &session.Session{}
	require.NoError(t, svc.AddItem(ctx, sess, int(hundred.ID), 4))
	_, _, err := svc.ApplyDiscount(ctx, sess, "save10")
	require.NoError(t, err)

	totals, err := svc.ComputeTotals(ctx, sess)
	require.NoError(t, err)
	require.Len(t, totals.Lines, 1)
	assert.True(t, totals.Subtotal.Equal(dec("100")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(dec("8.25")), "tax %s", totals.Tax)
	assert.True(t, totals.DiscountAmount.Equal(dec("10")), "discount %s", totals.DiscountAmount)
	assert.True(t, totals.Total.Equal(dec("98.25")), "total %s", totals.Total)
	assert.Equal(t, "SAVE10", totals.DiscountCode)
}

func TestComputeTotalsDropsOrphanedLines(t *testing.T) {
	svc, _ := newCart(t)
	sess := &session.Session{Cart: []session.CartLine{
		{ProductID: 3, Quantity: 2},
		{ProductID: 999, Quantity: 1},
	}, DiscountError: MsgInvalidDiscount}

	totals, err := svc.ComputeTotals(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, totals.Lines, 1)
	assert.Equal(t, "Graphic Tee", totals.Lines[0].Product.Name)
	assert.True(t, totals.Subtotal.Equal(dec("49.98")), "subtotal %s", totals.Subtotal)
	assert.Equal(t, MsgInvalidDiscount, totals.DiscountError)
	assert.Empty(t, totals.DiscountCode)
}
