package catalog

import (
	"context"
	"strings"

	"orange-brew/internal/apperr"
	"orange-brew/internal/auth"
)

type Store interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Service is the catalog: the public read side used for menu rendering and
// order pricing, plus admin-only writes.
type Service struct {
	Store Store
	Cache Cache
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	if s.Cache != nil {
		if ps, ok := s.Cache.GetList(ctx); ok {
			return ps, nil
		}
	}
	ps, err := s.Store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.SetList(ctx, ps)
	}
	return ps, nil
}

// Product is the pricing lookup used by the order workflow.
func (s *Service) Product(ctx context.Context, id int64) (*Product, error) {
	if s.Cache != nil {
		if p, ok := s.Cache.GetProduct(ctx, id); ok {
			return p, nil
		}
	}
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.SetProduct(ctx, p)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, actor auth.Identity, in ProductInput) (*Product, error) {
	if err := s.checkWrite(actor, in); err != nil {
		return nil, err
	}
	p, err := s.Store.CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, p.ID)
	return p, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Identity, id int64, in ProductInput) (*Product, error) {
	if err := s.checkWrite(actor, in); err != nil {
		return nil, err
	}
	p, err := s.Store.UpdateProduct(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Identity, id int64) error {
	if actor.Role != auth.RoleAdmin {
		return apperr.Authorization("admin role required")
	}
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) checkWrite(actor auth.Identity, in ProductInput) error {
	if actor.Role != auth.RoleAdmin {
		return apperr.Authorization("admin role required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("product name is required")
	}
	if in.PriceCents <= 0 {
		return apperr.Validation("price must be positive")
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, id)
	}
}
