package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/auric/jewelry-be/internal/apperr"
	"github.com/auric/jewelry-be/internal/models"
	"github.com/auric/jewelry-be/internal/uploads"
)

// ProductFilter narrows and pages the product listing.
type ProductFilter struct {
	Category     string
	Availability string
	Page         int
	Limit        int
}

// ProductPage is one page of the product listing.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
}

// ProductUpdate carries a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name         *string
	Grams        *float64
	Wastage      *float64
	Category     *string
	Description  *string
	Availability *string
	Image        *string
}

// ProductServiceProvider defines the interface for product services.
type ProductServiceProvider interface {
	GetProducts(f ProductFilter) (ProductPage, error)
	GetProductByID(id int64) (models.Product, error)
	CreateProduct(p models.Product) (models.Product, error)
	UpdateProduct(id int64, upd ProductUpdate) (models.Product, error)
	DeleteProduct(id int64) error
	GetCategories() ([]string, error)
}

// ProductService provides business logic for the catalog. It owns the
// lifecycle of product images: replacing or deleting a product unlinks the
// predecessor file.
type ProductService struct {
	db    *sql.DB
	files *uploads.Store
}

// NewProductService creates a new ProductService.
func NewProductService(db *sql.DB, files *uploads.Store) *ProductService {
	return &ProductService{db: db, files: files}
}

// GetProducts returns a filtered, paginated slice of the catalog.
func (s *ProductService) GetProducts(f ProductFilter) (ProductPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}

	where := "WHERE 1=1"
	var args []any
	if f.Category != "" {
		where += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Availability != "" {
		where += " AND availability = ?"
		args = append(args, f.Availability)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return ProductPage{}, fmt.Errorf("failed to count products: %w", err)
	}

	query := "SELECT id, name, grams, wastage, category, description, availability, image, created_at FROM products " +
		where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	rows, err := s.db.Query(query, append(args, f.Limit, (f.Page-1)*f.Limit)...)
	if err != nil {
		return ProductPage{}, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return ProductPage{}, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return ProductPage{}, err
	}

	return ProductPage{
		Products:   products,
		Page:       f.Page,
		Limit:      f.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(f.Limit))),
	}, nil
}

// GetProductByID retrieves a single product.
func (s *ProductService) GetProductByID(id int64) (models.Product, error) {
	row := s.db.QueryRow("SELECT id, name, grams, wastage, category, description, availability, image, created_at FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, apperr.NotFound("product not found")
		}
		return models.Product{}, err
	}
	return p, nil
}

// CreateProduct inserts a new catalog item.
func (s *ProductService) CreateProduct(p models.Product) (models.Product, error) {
	if p.Availability == "" {
		p.Availability = "YES"
	}

	res, err := s.db.Exec(
		"INSERT INTO products (name, grams, wastage, category, description, availability, image) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.Name, p.Grams, p.Wastage, p.Category, p.Description, p.Availability, p.Image,
	)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Product{}, err
	}

	log.Info().Int64("product_id", id).Str("name", p.Name).Msg("Product created")
	return s.GetProductByID(id)
}

// UpdateProduct applies a partial update. When the image is replaced, the
// previous stored file is unlinked best-effort.
func (s *ProductService) UpdateProduct(id int64, upd ProductUpdate) (models.Product, error) {
	existing, err := s.GetProductByID(id)
	if err != nil {
		return models.Product{}, err
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Grams != nil {
		add("grams", *upd.Grams)
	}
	if upd.Wastage != nil {
		add("wastage", *upd.Wastage)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Availability != nil {
		add("availability", *upd.Availability)
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}

	if len(sets) == 0 {
		return models.Product{}, apperr.Validation("no fields to update")
	}

	args = append(args, id)
	if _, err := s.db.Exec("UPDATE products SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return models.Product{}, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	if upd.Image != nil && existing.Image != "" {
		if err := s.files.Remove(uploads.CategoryProducts, existing.Image); err != nil {
			log.Warn().Err(err).Str("filename", existing.Image).Msg("Failed to remove replaced product image")
		}
	}

	log.Info().Int64("product_id", id).Msg("Product updated")
	return s.GetProductByID(id)
}

// DeleteProduct removes a product and unlinks its image.
func (s *ProductService) DeleteProduct(id int64) error {
	existing, err := s.GetProductByID(id)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec("DELETE FROM products WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	if existing.Image != "" {
		if err := s.files.Remove(uploads.CategoryProducts, existing.Image); err != nil {
			log.Warn().Err(err).Str("filename", existing.Image).Msg("Failed to remove deleted product image")
		}
	}

	log.Info().Int64("product_id", id).Msg("Product deleted")
	return nil
}

// GetCategories returns the distinct product categories.
func (s *ProductService) GetCategories() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT category FROM products WHERE category IS NOT NULL AND category != '' ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var grams, wastage sql.NullFloat64
	var category, description, image sql.NullString
	err := row.Scan(&p.ID, &p.Name, &grams, &wastage, &category, &description, &p.Availability, &image, &p.CreatedAt)
	if err != nil {
		return models.Product{}, err
	}
	p.Grams = grams.Float64
	p.Wastage = wastage.Float64
	p.Category = category.String
	p.Description = description.String
	p.Image = image.String
	return p, nil
}
