package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shop-backend/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetProductByID retrieves a product by ID. Returns (nil, nil) when the
// product does not exist.
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// DecrementStock atomically decrements a product's stock, floored at zero.
// Returns false when the product row does not exist.
func (s *Store) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock_quantity = GREATEST(stock_quantity - $1, 0), updated_at = NOW() WHERE id = $2",
		qty, productID)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IncrementStock atomically restores a product's stock.
// Returns false when the product row does not exist.
func (s *Store) IncrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock_quantity = stock_quantity + $1, updated_at = NOW() WHERE id = $2",
		qty, productID)
	if err != nil {
		return false, fmt.Errorf("failed to increment stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetProductSale updates the denormalized sale presentation on a product.
// A nil salePrice clears the sale. Returns false when the product row does
// not exist.
func (s *Store) SetProductSale(ctx context.Context, productID int64, onSale bool, salePrice *float64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET is_on_sale = $1, sale_price = $2, updated_at = NOW() WHERE id = $3",
		onSale, salePrice, productID)
	if err != nil {
		return false, fmt.Errorf("failed to update product sale state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
