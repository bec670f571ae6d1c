package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"spirit-bot/internal/stories/products"
)

const productsTable = "products"

var productRowFields = fields(productRow{})

type productRow struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Category     string    `db:"category"`
	ProductType  string    `db:"product_type"`
	THCContent   int       `db:"thc_content"`
	Price        int64     `db:"price"`
	Description  string    `db:"description"`
	SpecialOffer string    `db:"special_offer"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (p productRow) ToModel() *products.Product {
	return &products.Product{
		ID:           p.ID,
		Name:         p.Name,
		Category:     products.Category(p.Category),
		Subtype:      products.Subtype(p.ProductType),
		Potency:      p.THCContent,
		Price:        p.Price,
		Description:  p.Description,
		SpecialOffer: p.SpecialOffer,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func productInsertParams(product products.Product, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"name":          product.Name,
		"category":      string(product.Category),
		"product_type":  string(product.Subtype),
		"thc_content":   product.Potency,
		"price":         product.Price,
		"description":   product.Description,
		"special_offer": product.SpecialOffer,
		"is_active":     product.IsActive,
		"created_at":    now,
		"updated_at":    now,
	}
}

func (s *storageImpl) CreateProduct(ctx context.Context, product products.Product) (*products.Product, error) {
	q, args, err := s.stmpBuilder().
		Insert(productsTable).
		SetMap(productInsertParams(product, s.now())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId: %w", err)
	}

	return s.GetProduct(ctx, products.GetCriteria{ID: &id})
}

func (s *storageImpl) GetProduct(ctx context.Context, criteria products.GetCriteria) (*products.Product, error) {
	query := s.stmpBuilder().
		Select(productRowFields).
		From(productsTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var p productRow
	if err := s.db.GetContext(ctx, &p, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return p.ToModel(), nil
}

func (s *storageImpl) UpdateProduct(ctx context.Context, criteria products.GetCriteria, params products.UpdateParams) (*products.Product, error) {
	query := s.stmpBuilder().
		Update(productsTable).
		Set("updated_at", s.now())

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}

	if params.Name != nil {
		query = query.Set("name", *params.Name)
	}
	if params.Category != nil {
		query = query.Set("category", string(*params.Category))
	}
	if params.Subtype != nil {
		query = query.Set("product_type", string(*params.Subtype))
	}
	if params.Potency != nil {
		query = query.Set("thc_content", *params.Potency)
	}
	if params.Price != nil {
		query = query.Set("price", *params.Price)
	}
	if params.Description != nil {
		query = query.Set("description", *params.Description)
	}
	if params.SpecialOffer != nil {
		query = query.Set("special_offer", *params.SpecialOffer)
	}
	if params.IsActive != nil {
		query = query.Set("is_active", *params.IsActive)
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return s.GetProduct(ctx, criteria)
}

func (s *storageImpl) ListProducts(ctx context.Context, criteria products.ListCriteria) ([]*products.Product, error) {
	query := s.stmpBuilder().
		Select(productRowFields).
		From(productsTable)

	if criteria.Category != nil {
		query = query.Where(sq.Eq{"category": string(*criteria.Category)})
	}
	if criteria.Subtype != nil {
		query = query.Where(sq.Eq{"product_type": string(*criteria.Subtype)})
	}
	if criteria.IsActive != nil {
		query = query.Where(sq.Eq{"is_active": *criteria.IsActive})
	}
	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}
	if criteria.Offset > 0 {
		query = query.Offset(uint64(criteria.Offset))
	}

	query = query.OrderBy("category", "id")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	result := make([]*products.Product, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.ToModel())
	}

	return result, nil
}

func (s *storageImpl) DeleteProduct(ctx context.Context, criteria products.DeleteCriteria) (bool, error) {
	query := s.stmpBuilder().Delete(productsTable)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("db.ExecContext: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("result.RowsAffected: %w", err)
	}

	return affected > 0, nil
}

func (s *storageImpl) CountProducts(ctx context.Context, onlyActive bool) (int, error) {
	query := s.stmpBuilder().
		Select("COUNT(*)").
		From(productsTable)

	if onlyActive {
		query = query.Where(sq.Eq{"is_active": true})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, fmt.Errorf("db.GetContext: %w", err)
	}

	return count, nil
}
