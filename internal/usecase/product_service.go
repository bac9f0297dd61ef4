package usecase

import (
	"github.com/google/uuid"

	"norahair-backend/internal/domain"
)

type ProductRepo interface {
	Put(*domain.Product) error
	Get(id string) (*domain.Product, bool)
	List() ([]domain.Product, error)
	Delete(id string) bool
}

type ProductService struct {
	Repo ProductRepo
}

func (s *ProductService) List() ([]domain.Product, error) {
	return s.Repo.List()
}

func (s *ProductService) Get(id string) (*domain.Product, error) {
	p, ok := s.Repo.Get(id)
	if !ok {
		return nil, ErrNotFound("product")
	}
	return p, nil
}

func (s *ProductService) Create(p *domain.Product) (*domain.Product, error) {
	if p.Name == "" {
		return nil, ErrBadRequest("name required")
	}
	if !p.Price.IsPositive() {
		return nil, ErrBadRequest("price must be positive")
	}
	p.ID = uuid.NewString()
	if p.Images == nil {
		p.Images = []string{}
	}
	if err := s.Repo.Put(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies a partial merge over the stored product.
func (s *ProductService) Update(id string, patch map[string]any) (*domain.Product, error) {
	p, ok := s.Repo.Get(id)
	if !ok {
		return nil, ErrNotFound("product")
	}
	applyProductPatch(p, patch)
	if err := s.Repo.Put(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(id string) error {
	if !s.Repo.Delete(id) {
		return ErrNotFound("product")
	}
	return nil
}
