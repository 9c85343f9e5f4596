package store

import (
	"context"
	"database/sql"
	"time"

	"shop-backend/internal/models"
)

// CreateDeal persists a new deal
func (s *Store) CreateDeal(ctx context.Context, deal *models.Deal) error {
	query := `
		INSERT INTO deals (product_id, discount_percentage, discount_price, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		deal.ProductID, deal.DiscountPercentage, deal.DiscountPrice,
		deal.StartDate, deal.EndDate, deal.IsActive,
	).Scan(&deal.ID, &deal.CreatedAt, &deal.UpdatedAt)
}

// UpdateDeal persists changes to an existing deal
func (s *Store) UpdateDeal(ctx context.Context, deal *models.Deal) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE deals
		SET product_id = $1, discount_percentage = $2, discount_price = $3,
		    start_date = $4, end_date = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7`,
		deal.ProductID, deal.DiscountPercentage, deal.DiscountPrice,
		deal.StartDate, deal.EndDate, deal.IsActive, deal.ID)
	return err
}

// SetDealActive flips the admin intent flag on a deal
func (s *Store) SetDealActive(ctx context.Context, dealID int64, active bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE deals SET is_active = $1, updated_at = NOW() WHERE id = $2",
		active, dealID)
	return err
}

// GetDealByID retrieves a deal by ID. Returns (nil, nil) when not found.
func (s *Store) GetDealByID(ctx context.Context, id int64) (*models.Deal, error) {
	var deal models.Deal
	err := s.db.GetContext(ctx, &deal, "SELECT * FROM deals WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

// GetDeals retrieves all deals, newest first
func (s *Store) GetDeals(ctx context.Context) ([]models.Deal, error) {
	var deals []models.Deal
	err := s.db.SelectContext(ctx, &deals, "SELECT * FROM deals ORDER BY created_at DESC")
	return deals, err
}

// DeleteDeal removes a deal
func (s *Store) DeleteDeal(ctx context.Context, dealID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM deals WHERE id = $1", dealID)
	return err
}

// GetExpiredActiveDeals returns deals still flagged active whose window has
// closed at the given time
func (s *Store) GetExpiredActiveDeals(ctx context.Context, now time.Time) ([]models.Deal, error) {
	var deals []models.Deal
	err := s.db.SelectContext(ctx, &deals,
		"SELECT * FROM deals WHERE is_active = TRUE AND end_date <= $1", now)
	return deals, err
}

// GetDealsInWindow returns active deals whose window contains the given time
func (s *Store) GetDealsInWindow(ctx context.Context, now time.Time) ([]models.Deal, error) {
	var deals []models.Deal
	err := s.db.SelectContext(ctx, &deals,
		"SELECT * FROM deals WHERE is_active = TRUE AND start_date <= $1 AND end_date > $1", now)
	return deals, err
}
