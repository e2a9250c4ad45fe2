package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lucaria/internal/events"
	"github.com/Skotchmaster/lucaria/internal/models"
	"github.com/Skotchmaster/lucaria/internal/repo"
	"github.com/Skotchmaster/lucaria/pkg/logging"
)

const searchPageSize = 50

// ProductIndex is an optional full-text index kept alongside the database.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	SearchIDs(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  ProductIndex
}

type ProductInput struct {
	Name        string
	Description string
	Price       string
	Image       string
	Category    string
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter) ([]models.Product, error) {
	f.Search = strings.TrimSpace(f.Search)
	items, err := s.Repo.GetProducts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (in ProductInput) validate() (models.Product, error) {
	verr := &ValidationError{}
	p := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
		Category:    strings.TrimSpace(in.Category),
	}

	if p.Name == "" {
		verr.add("Enter a product name.")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	switch {
	case err != nil:
		verr.add("Price must be a number.")
	case price.IsNegative():
		verr.add("Price cannot be negative.")
	default:
		p.Price = price
	}

	return p, verr.orNil()
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	p, err := in.validate()
	if err != nil {
		return nil, err
	}

	created, err := s.Repo.CreateProduct(ctx, &p)
	if err != nil {
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return nil, fmt.Errorf("create product: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, *created); err != nil {
			l.Error("product_index_error", "product_id", created.ID, "error", err)
		}
	}

	events.Emit(ctx, s.Events, events.Event{
		Topic:   events.TopicProduct,
		Key:     strconv.FormatUint(uint64(created.ID), 10),
		Type:    "product_created",
		Payload: map[string]any{"product_id": created.ID, "name": created.Name},
	})
	l.Info("create_product_success", "product_id", created.ID)
	return created, nil
}

// Search uses the full-text index when present and falls back to the
// database LIKE search when it is absent or failing.
func (s *CatalogService) Search(ctx context.Context, query string) ([]models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Product{}, nil
	}

	if s.Index != nil {
		_, ids, err := s.Index.SearchIDs(ctx, query, 0, searchPageSize)
		if err == nil {
			return s.resolveInOrder(ctx, ids)
		}
		l.Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}

	return s.ListProducts(ctx, repo.ProductFilter{Search: query})
}

func (s *CatalogService) resolveInOrder(ctx context.Context, ids []uint) ([]models.Product, error) {
	byID, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve search hits: %w", err)
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
