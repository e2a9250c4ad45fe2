// Package session keeps per-visitor cart state on the server, keyed by an
// opaque id that travels in a cookie.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const CookieName = "storefront_session"

var ErrInvalidID = errors.New("invalid session id")

type CartLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type AppliedDiscount struct {
	Code    string          `json:"code"`
	Percent decimal.Decimal `json:"percent"`
}

type Session struct {
	Cart          []CartLine       `json:"cart"`
	Discount      *AppliedDiscount `json:"discount,omitempty"`
	DiscountError string           `json:"discount_error,omitempty"`
}

func (s *Session) Empty() bool {
	return len(s.Cart) == 0 && s.Discount == nil && s.DiscountError == ""
}

// Store persists sessions. Get returns an empty session for unknown ids and
// slides the expiry of known ones, matching the re-issued cookie.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, id string, s *Session) error
	Delete(ctx context.Context, id string) error
}

func NewID() string { return uuid.NewString() }

func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func Cookie(id string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
