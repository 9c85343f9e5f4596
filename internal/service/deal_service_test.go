package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDealStore struct {
	deals      map[int64]*models.Deal
	products   map[int64]*models.Product
	nextDealID int64

	setSaleErr map[int64]error
}

func newFakeDealStore() *fakeDealStore {
	return &fakeDealStore{
		deals:      make(map[int64]*models.Deal),
		products:   make(map[int64]*models.Product),
		setSaleErr: make(map[int64]error),
	}
}

func (f *fakeDealStore) addProduct(id int64, price float64) *models.Product {
	p := &models.Product{ID: id, Price: price, StockQuantity: 10}
	f.products[id] = p
	return p
}

func (f *fakeDealStore) addDeal(productID int64, active bool, start, end time.Time, discountPrice float64) *models.Deal {
	f.nextDealID++
	d := &models.Deal{
		ID:            f.nextDealID,
		ProductID:     productID,
		DiscountPrice: discountPrice,
		StartDate:     start,
		EndDate:       end,
		IsActive:      active,
	}
	f.deals[d.ID] = d
	return d
}

func (f *fakeDealStore) CreateDeal(_ context.Context, deal *models.Deal) error {
	f.nextDealID++
	deal.ID = f.nextDealID
	cp := *deal
	f.deals[deal.ID] = &cp
	return nil
}

func (f *fakeDealStore) UpdateDeal(_ context.Context, deal *models.Deal) error {
	cp := *deal
	f.deals[deal.ID] = &cp
	return nil
}

func (f *fakeDealStore) SetDealActive(_ context.Context, dealID int64, active bool) error {
	if deal, ok := f.deals[dealID]; ok {
		deal.IsActive = active
	}
	return nil
}

func (f *fakeDealStore) GetDealByID(_ context.Context, id int64) (*models.Deal, error) {
	deal, ok := f.deals[id]
	if !ok {
		return nil, nil
	}
	cp := *deal
	return &cp, nil
}

func (f *fakeDealStore) GetDeals(_ context.Context) ([]models.Deal, error) {
	var out []models.Deal
	for _, deal := range f.deals {
		out = append(out, *deal)
	}
	return out, nil
}

func (f *fakeDealStore) DeleteDeal(_ context.Context, dealID int64) error {
	delete(f.deals, dealID)
	return nil
}

func (f *fakeDealStore) GetExpiredActiveDeals(_ context.Context, now time.Time) ([]models.Deal, error) {
	var out []models.Deal
	for _, deal := range f.deals {
		if deal.IsActive && !deal.EndDate.After(now) {
			out = append(out, *deal)
		}
	}
	return out, nil
}

func (f *fakeDealStore) GetDealsInWindow(_ context.Context, now time.Time) ([]models.Deal, error) {
	var out []models.Deal
	for _, deal := range f.deals {
		if deal.IsActive && !deal.StartDate.After(now) && deal.EndDate.After(now) {
			out = append(out, *deal)
		}
	}
	return out, nil
}

func (f *fakeDealStore) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	cp := *product
	return &cp, nil
}

func (f *fakeDealStore) SetProductSale(_ context.Context, productID int64, onSale bool, salePrice *float64) (bool, error) {
	if err := f.setSaleErr[productID]; err != nil {
		return false, err
	}
	product, ok := f.products[productID]
	if !ok {
		return false, nil
	}
	product.IsOnSale = onSale
	product.SalePrice = salePrice
	return true, nil
}

type fakeDealCache struct {
	deals   []models.Deal
	warm    bool
	sets    int
	readErr error
}

func (c *fakeDealCache) SetActiveDeals(_ context.Context, deals []models.Deal) error {
	c.deals = append([]models.Deal(nil), deals...)
	c.warm = true
	c.sets++
	return nil
}

func (c *fakeDealCache) GetActiveDeals(_ context.Context) ([]models.Deal, bool, error) {
	if c.readErr != nil {
		return nil, false, c.readErr
	}
	return c.deals, c.warm, nil
}

func TestReconcileExpiresClosedWindows(t *testing.T) {
	store := newFakeDealStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	product := store.addProduct(1, 100)
	product.IsOnSale = true
	price := 80.0
	product.SalePrice = &price
	deal := store.addDeal(1, true, now.Add(-48*time.Hour), now.Add(-time.Hour), 80)

	svc := NewDealService(store, nil)
	require.NoError(t, svc.Reconcile(context.Background(), now))

	assert.False(t, store.deals[deal.ID].IsActive)
	assert.False(t, store.products[1].IsOnSale)
	assert.Nil(t, store.products[1].SalePrice)
}

func TestReconcileActivatesOpenWindows(t *testing.T) {
	store := newFakeDealStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.addProduct(2, 50)
	deal := store.addDeal(2, true, now.Add(-time.Hour), now.Add(time.Hour), 40)

	svc := NewDealService(store, nil)
	require.NoError(t, svc.Reconcile(context.Background(), now))

	assert.True(t, store.deals[deal.ID].IsActive)
	assert.True(t, store.products[2].IsOnSale)
	require.NotNil(t, store.products[2].SalePrice)
	assert.InDelta(t, 40, *store.products[2].SalePrice, 0.001)
}

func TestReconcileLeavesInactiveDealsAlone(t *testing.T) {
	store := newFakeDealStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.addProduct(3, 50)
	// inactive deals are admin-paused regardless of their window
	inWindow := store.addDeal(3, false, now.Add(-time.Hour), now.Add(time.Hour), 40)
	past := store.addDeal(3, false, now.Add(-48*time.Hour), now.Add(-time.Hour), 40)

	svc := NewDealService(store, nil)
	require.NoError(t, svc.Reconcile(context.Background(), now))

	assert.False(t, store.deals[inWindow.ID].IsActive)
	assert.False(t, store.deals[past.ID].IsActive)
	assert.False(t, store.products[3].IsOnSale)
}

func TestReconcileScheduledDealNotYetApplied(t *testing.T) {
	store := newFakeDealStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.addProduct(4, 50)
	deal := store.addDeal(4, true, now.Add(time.Hour), now.Add(48*time.Hour), 40)

	svc := NewDealService(store, nil)
	require.NoError(t, svc.Reconcile(context.Background(), now))

	assert.True(t, store.deals[deal.ID].IsActive)
	assert.False(t, store.products[4].IsOnSale)
}

func TestReconcileContinuesPastSingleDealFailure(t *testing.T) {
	store := newFakeDealStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.addProduct(5, 50)
	store.addProduct(6, 50)
	store.setSaleErr[5] = errors.New("row lock timeout")
	store.addDeal(5, true, now.Add(-time.Hour), now.Add(time.Hour), 40)
	store.addDeal(6, true, now.Add(-time.Hour), now.Add(time.Hour), 30)

	svc := NewDealService(store, nil)
	require.NoError(t, svc.Reconcile(context.Background(), now))

	assert.False(t, store.products[5].IsOnSale)
	assert.True(t, store.products[6].IsOnSale)
}

func TestReconcileRefreshesCache(t *testing.T) {
	store := newFakeDealStore()
	cache := &fakeDealCache{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.addProduct(7, 50)
	store.addDeal(7, true, now.Add(-time.Hour), now.Add(time.Hour), 40)

	svc := NewDealService(store, cache)
	require.NoError(t, svc.Reconcile(context.Background(), now))

	assert.Equal(t, 1, cache.sets)
	require.Len(t, cache.deals, 1)
	assert.Equal(t, int64(7), cache.deals[0].ProductID)
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newFakeDealStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store.addProduct(8, 100)
	store.addDeal(8, true, now.Add(-time.Hour), now.Add(time.Hour), 75)

	svc := NewDealService(store, nil)
	require.NoError(t, svc.Reconcile(context.Background(), now))
	require.NoError(t, svc.Reconcile(context.Background(), now))

	assert.True(t, store.products[8].IsOnSale)
	require.NotNil(t, store.products[8].SalePrice)
	assert.InDelta(t, 75, *store.products[8].SalePrice, 0.001)
}

func TestActiveDealsPrefersWarmCache(t *testing.T) {
	store := newFakeDealStore()
	cache := &fakeDealCache{
		warm:  true,
		deals: []models.Deal{{ID: 1, ProductID: 9}},
	}

	svc := NewDealService(store, cache)
	deals, err := svc.ActiveDeals(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, int64(9), deals[0].ProductID)
}

func TestActiveDealsFallsBackToStore(t *testing.T) {
	store := newFakeDealStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.addProduct(10, 50)
	store.addDeal(10, true, now.Add(-time.Hour), now.Add(time.Hour), 40)

	cache := &fakeDealCache{readErr: errors.New("connection refused")}
	svc := NewDealService(store, cache)

	deals, err := svc.ActiveDeals(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, int64(10), deals[0].ProductID)
}

func TestCreateDealValidation(t *testing.T) {
	store := newFakeDealStore()
	store.addProduct(1, 200)
	svc := NewDealService(store, nil)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)

	_, err := svc.Create(ctx, &DealRequest{ProductID: 1, DiscountPercentage: 110, StartDate: start, EndDate: end})
	assert.True(t, IsValidation(err))

	_, err = svc.Create(ctx, &DealRequest{ProductID: 1, DiscountPercentage: 10, StartDate: end, EndDate: start})
	assert.True(t, IsValidation(err))

	_, err = svc.Create(ctx, &DealRequest{ProductID: 404, DiscountPercentage: 10, StartDate: start, EndDate: end})
	assert.True(t, IsNotFound(err))

	deal, err := svc.Create(ctx, &DealRequest{ProductID: 1, DiscountPercentage: 25, StartDate: start, EndDate: end, IsActive: true})
	require.NoError(t, err)
	assert.InDelta(t, 150, deal.DiscountPrice, 0.001)
}

func TestUpdateDealRecomputesDiscountPrice(t *testing.T) {
	store := newFakeDealStore()
	store.addProduct(1, 200)
	svc := NewDealService(store, nil)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)

	deal, err := svc.Create(ctx, &DealRequest{ProductID: 1, DiscountPercentage: 25, StartDate: start, EndDate: end})
	require.NoError(t, err)

	// product price changed since the deal was created
	store.products[1].Price = 100

	updated, err := svc.Update(ctx, deal.ID, &DealRequest{ProductID: 1, DiscountPercentage: 25, StartDate: start, EndDate: end})
	require.NoError(t, err)
	assert.InDelta(t, 75, updated.DiscountPrice, 0.001)
}

func TestToggleFlipsAdminIntent(t *testing.T) {
	store := newFakeDealStore()
	now := time.Now()
	store.addProduct(1, 100)
	deal := store.addDeal(1, false, now, now.Add(time.Hour), 80)

	svc := NewDealService(store, nil)

	active, err := svc.Toggle(context.Background(), deal.ID)
	require.NoError(t, err)
	assert.True(t, active)
	assert.True(t, store.deals[deal.ID].IsActive)

	active, err = svc.Toggle(context.Background(), deal.ID)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = svc.Toggle(context.Background(), 999)
	assert.True(t, IsNotFound(err))
}
