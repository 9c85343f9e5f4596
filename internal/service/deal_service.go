package service

import (
	"context"
	"time"

	"shop-backend/internal/models"
	"shop-backend/internal/util"

	"go.uber.org/zap"
)

// DealStore is the slice of the store the deal scheduler and admin
// operations need
type DealStore interface {
	CreateDeal(ctx context.Context, deal *models.Deal) error
	UpdateDeal(ctx context.Context, deal *models.Deal) error
	SetDealActive(ctx context.Context, dealID int64, active bool) error
	GetDealByID(ctx context.Context, id int64) (*models.Deal, error)
	GetDeals(ctx context.Context) ([]models.Deal, error)
	DeleteDeal(ctx context.Context, dealID int64) error
	GetExpiredActiveDeals(ctx context.Context, now time.Time) ([]models.Deal, error)
	GetDealsInWindow(ctx context.Context, now time.Time) ([]models.Deal, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	SetProductSale(ctx context.Context, productID int64, onSale bool, salePrice *float64) (bool, error)
}

// DealCache is the read-side cache for the active-deals payload
type DealCache interface {
	SetActiveDeals(ctx context.Context, deals []models.Deal) error
	GetActiveDeals(ctx context.Context) ([]models.Deal, bool, error)
}

// DealService reconciles deal activation state with wall-clock time and
// carries the admin deal operations
type DealService struct {
	store  DealStore
	cache  DealCache
	logger *zap.Logger
}

// NewDealService creates a new deal service. The cache may be nil.
func NewDealService(store DealStore, cache DealCache) *DealService {
	return &DealService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// Reconcile syncs every deal's activation state and the owning product's
// sale presentation with the given time. Each deal/product pair is handled
// independently: a failure is logged and the pass continues. The pass is
// idempotent and safe to run on any schedule.
func (s *DealService) Reconcile(ctx context.Context, now time.Time) error {
	ctx, span := util.StartSpan(ctx, "DealService.Reconcile")
	defer span.End()

	util.DealReconcileRuns.Inc()
	start := time.Now()
	defer func() {
		util.DealReconcileLatency.Observe(time.Since(start).Seconds())
	}()

	expired, err := s.store.GetExpiredActiveDeals(ctx, now)
	if err != nil {
		return err
	}
	for _, deal := range expired {
		s.expireDeal(ctx, deal)
	}

	inWindow, err := s.store.GetDealsInWindow(ctx, now)
	if err != nil {
		return err
	}
	for _, deal := range inWindow {
		s.applySaleWindow(ctx, deal)
	}

	s.logger.Info("Deal reconciliation pass complete",
		zap.Int("expired", len(expired)),
		zap.Int("in_window", len(inWindow)))

	s.refreshCache(ctx, inWindow)
	return nil
}

// expireDeal deactivates a deal whose window has closed and clears the
// product's sale presentation. Expiration is irreversible here; only an
// explicit admin toggle brings the deal back.
func (s *DealService) expireDeal(ctx context.Context, deal models.Deal) {
	if err := s.store.SetDealActive(ctx, deal.ID, false); err != nil {
		s.logger.Error("Failed to deactivate expired deal",
			zap.Int64("deal_id", deal.ID),
			zap.Error(err))
		return
	}
	util.DealsExpiredTotal.Inc()

	found, err := s.store.SetProductSale(ctx, deal.ProductID, false, nil)
	if err != nil {
		s.logger.Error("Failed to clear product sale state",
			zap.Int64("deal_id", deal.ID),
			zap.Int64("product_id", deal.ProductID),
			zap.Error(err))
		return
	}
	if !found {
		s.logger.Warn("Product missing for expired deal",
			zap.Int64("deal_id", deal.ID),
			zap.Int64("product_id", deal.ProductID))
	}
}

// applySaleWindow puts the product on sale at the deal's discount price.
// With several concurrent deals on one product, the last processed wins.
func (s *DealService) applySaleWindow(ctx context.Context, deal models.Deal) {
	price := deal.DiscountPrice
	found, err := s.store.SetProductSale(ctx, deal.ProductID, true, &price)
	if err != nil {
		s.logger.Error("Failed to apply product sale state",
			zap.Int64("deal_id", deal.ID),
			zap.Int64("product_id", deal.ProductID),
			zap.Error(err))
		return
	}
	if !found {
		s.logger.Warn("Product missing for active deal",
			zap.Int64("deal_id", deal.ID),
			zap.Int64("product_id", deal.ProductID))
		return
	}
	util.DealsActivatedTotal.Inc()
}

// refreshCache rewrites the active-deals cache, best effort
func (s *DealService) refreshCache(ctx context.Context, deals []models.Deal) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetActiveDeals(ctx, deals); err != nil {
		s.logger.Warn("Failed to refresh active-deals cache", zap.Error(err))
	}
}

// DealRequest carries the admin-editable deal fields
type DealRequest struct {
	ProductID          int64     `json:"product_id" binding:"required"`
	DiscountPercentage int       `json:"discount_percentage"`
	StartDate          time.Time `json:"start_date" binding:"required"`
	EndDate            time.Time `json:"end_date" binding:"required"`
	IsActive           bool      `json:"is_active"`
}

func (s *DealService) validateRequest(ctx context.Context, req *DealRequest) (*models.Product, error) {
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return nil, NewValidationError("discount percentage must be between 0 and 100, got %d", req.DiscountPercentage)
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, NewValidationError("start date must be before end date")
	}

	product, err := s.store.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, NewNotFoundError("product not found: %d", req.ProductID)
	}
	return product, nil
}

// Create adds a new deal; the discount price is derived from the current
// product price
func (s *DealService) Create(ctx context.Context, req *DealRequest) (*models.Deal, error) {
	product, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	deal := &models.Deal{
		ProductID:          req.ProductID,
		DiscountPercentage: req.DiscountPercentage,
		DiscountPrice:      models.ComputeDiscountPrice(product.Price, req.DiscountPercentage),
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		IsActive:           req.IsActive,
	}
	if err := s.store.CreateDeal(ctx, deal); err != nil {
		return nil, err
	}

	s.logger.Info("Deal created",
		zap.Int64("deal_id", deal.ID),
		zap.Int64("product_id", deal.ProductID),
		zap.Int("discount_percentage", deal.DiscountPercentage))
	return deal, nil
}

// Update edits an existing deal; the discount price is recomputed on every
// save
func (s *DealService) Update(ctx context.Context, dealID int64, req *DealRequest) (*models.Deal, error) {
	deal, err := s.store.GetDealByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, NewNotFoundError("deal not found: %d", dealID)
	}

	product, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	deal.ProductID = req.ProductID
	deal.DiscountPercentage = req.DiscountPercentage
	deal.DiscountPrice = models.ComputeDiscountPrice(product.Price, req.DiscountPercentage)
	deal.StartDate = req.StartDate
	deal.EndDate = req.EndDate
	deal.IsActive = req.IsActive

	if err := s.store.UpdateDeal(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

// Toggle flips the admin intent flag and returns the new value
func (s *DealService) Toggle(ctx context.Context, dealID int64) (bool, error) {
	deal, err := s.store.GetDealByID(ctx, dealID)
	if err != nil {
		return false, err
	}
	if deal == nil {
		return false, NewNotFoundError("deal not found: %d", dealID)
	}

	active := !deal.IsActive
	if err := s.store.SetDealActive(ctx, dealID, active); err != nil {
		return false, err
	}
	return active, nil
}

// Delete removes a deal
func (s *DealService) Delete(ctx context.Context, dealID int64) error {
	deal, err := s.store.GetDealByID(ctx, dealID)
	if err != nil {
		return err
	}
	if deal == nil {
		return NewNotFoundError("deal not found: %d", dealID)
	}
	return s.store.DeleteDeal(ctx, dealID)
}

// List returns every deal, newest first
func (s *DealService) List(ctx context.Context) ([]models.Deal, error) {
	return s.store.GetDeals(ctx)
}

// ActiveDeals returns deals currently in their sale window, served from the
// cache when warm and falling back to the store
func (s *DealService) ActiveDeals(ctx context.Context, now time.Time) ([]models.Deal, error) {
	if s.cache != nil {
		deals, ok, err := s.cache.GetActiveDeals(ctx)
		if err != nil {
			s.logger.Warn("Active-deals cache read failed", zap.Error(err))
		} else if ok {
			return deals, nil
		}
	}
	return s.store.GetDealsInWindow(ctx, now)
}
