package products

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrInvalid  = errors.New("invalid product")
)

// Service provides business logic for catalog operations
type Service struct {
	storage Storage
}

// NewService creates a new catalog service
func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
	}
}

// ListByCategory returns the visible products of one category.
func (s *Service) ListByCategory(ctx context.Context, category Category) ([]*Product, error) {
	if !category.Valid() {
		return nil, errors.Wrapf(ErrInvalid, "category %q", category)
	}
	return s.storage.ListProducts(ctx, ListCriteria{
		Category: lo.ToPtr(category),
		IsActive: lo.ToPtr(true),
	})
}

func (s *Service) ListByCategoryAndSubtype(ctx context.Context, category Category, subtype Subtype) ([]*Product, error) {
	if !category.Valid() {
		return nil, errors.Wrapf(ErrInvalid, "category %q", category)
	}
	if !subtype.Valid() {
		return nil, errors.Wrapf(ErrInvalid, "type %q", subtype)
	}
	return s.storage.ListProducts(ctx, ListCriteria{
		Category: lo.ToPtr(category),
		Subtype:  lo.ToPtr(subtype),
		IsActive: lo.ToPtr(true),
	})
}

// ListAll is the admin view. Hidden products are included on request.
func (s *Service) ListAll(ctx context.Context, includeHidden bool) ([]*Product, error) {
	criteria := ListCriteria{}
	if !includeHidden {
		criteria.IsActive = lo.ToPtr(true)
	}
	return s.storage.ListProducts(ctx, criteria)
}

// GetProduct looks a product up by id regardless of its visibility.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	product, err := s.storage.GetProduct(ctx, GetCriteria{ID: lo.ToPtr(id)})
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	if product == nil {
		return nil, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return product, nil
}

func (s *Service) CreateProduct(ctx context.Context, product Product) (*Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if err := validate(UpdateParams{
		Name:     &product.Name,
		Category: &product.Category,
		Subtype:  &product.Subtype,
		Potency:  &product.Potency,
		Price:    &product.Price,
	}); err != nil {
		return nil, err
	}

	created, err := s.storage.CreateProduct(ctx, product)
	if err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return created, nil
}

// UpdateProduct applies a partial update after validating every set field.
func (s *Service) UpdateProduct(ctx context.Context, id int64, params UpdateParams) (*Product, error) {
	if params.Name != nil {
		params.Name = lo.ToPtr(strings.TrimSpace(*params.Name))
	}
	if err := validate(params); err != nil {
		return nil, err
	}
	if params.Empty() {
		return s.GetProduct(ctx, id)
	}

	updated, err := s.storage.UpdateProduct(ctx, GetCriteria{ID: lo.ToPtr(id)}, params)
	if err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	if updated == nil {
		return nil, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return updated, nil
}

// ToggleActive flips the visibility flag and returns the updated product.
func (s *Service) ToggleActive(ctx context.Context, id int64) (*Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.UpdateProduct(ctx, id, UpdateParams{IsActive: lo.ToPtr(!product.IsActive)})
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	deleted, err := s.storage.DeleteProduct(ctx, DeleteCriteria{ID: lo.ToPtr(id)})
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if !deleted {
		return errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return nil
}

func validate(p UpdateParams) error {
	if p.Name != nil {
		if n := utf8.RuneCountInString(*p.Name); n == 0 || n > MaxNameLength {
			return errors.Wrap(ErrInvalid, "name must be 1-100 characters")
		}
	}
	if p.Category != nil && !p.Category.Valid() {
		return errors.Wrapf(ErrInvalid, "category %q", *p.Category)
	}
	if p.Subtype != nil && !p.Subtype.Valid() {
		return errors.Wrapf(ErrInvalid, "type %q", *p.Subtype)
	}
	if p.Potency != nil && (*p.Potency < 0 || *p.Potency > 100) {
		return errors.Wrap(ErrInvalid, "potency must be 0-100")
	}
	if p.Price != nil && *p.Price < 0 {
		return errors.Wrap(ErrInvalid, "price must not be negative")
	}
	return nil
}
