package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"crypto-valuation-service/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCache implementa interfaces.Cache para tests del adapter
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Close() error {
	return m.Called().Error(0)
}

func sampleReport() *entities.Report {
	return &entities.Report{
		ID:          "r-1",
		Numerator:   "usdollar",
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Assets: []entities.AssetValuation{
			{Symbol: "bitcoin", Price: 10000, Amount: 2, USDValue: 20000, WeightPercent: 100, Source: "bitpay(usd)", Resolved: true},
		},
		Portfolio: entities.PortfolioTotals{GrandTotalUSD: 20000, GrandTotalBTC: 2},
	}
}

func TestReportCacheAdapter_SaveAndLoad(t *testing.T) {
	adapter := NewReportCacheAdapter(NewMemoryCache(), "valuation:", time.Minute)
	ctx := context.Background()

	require.NoError(t, adapter.SaveReport(ctx, sampleReport()))

	latest, err := adapter.LatestReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r-1", latest.ID)
	assert.Equal(t, 20000.0, latest.Portfolio.GrandTotalUSD)
	row, ok := latest.Asset("bitcoin")
	require.True(t, ok)
	assert.Equal(t, "bitpay(usd)", row.Source)

	byID, err := adapter.ReportByID(ctx, "r-1")
	require.NoError(t, err)
	assert.True(t, byID.GeneratedAt.Equal(latest.GeneratedAt))
}

func TestReportCacheAdapter_EmptyStore(t *testing.T) {
	adapter := NewReportCacheAdapter(NewMemoryCache(), "valuation:", time.Minute)

	_, err := adapter.LatestReport(context.Background())
	assert.ErrorIs(t, err, ErrReportNotFound)

	_, err = adapter.ReportByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestReportCacheAdapter_UsesPrefix(t *testing.T) {
	store := new(MockCache)
	ctx := context.Background()
	store.On("Set", ctx, "tenant:latest", mock.AnythingOfType("string"), time.Minute).Return(nil)
	store.On("Set", ctx, "tenant:report:r-1", mock.AnythingOfType("string"), time.Minute).Return(nil)

	adapter := NewReportCacheAdapter(store, "tenant:", time.Minute)
	require.NoError(t, adapter.SaveReport(ctx, sampleReport()))

	store.AssertExpectations(t)
}

func TestReportCacheAdapter_BackendErrors(t *testing.T) {
	store := new(MockCache)
	ctx := context.Background()
	down := errors.New("redis down")
	store.On("Set", ctx, "valuation:latest", mock.Anything, time.Minute).Return(down)
	store.On("Get", ctx, "valuation:latest").Return("", down)

	adapter := NewReportCacheAdapter(store, "valuation:", time.Minute)

	assert.ErrorIs(t, adapter.SaveReport(ctx, sampleReport()), down)

	_, err := adapter.LatestReport(ctx)
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, ErrReportNotFound)
}

func TestReportCacheAdapter_CorruptPayload(t *testing.T) {
	store := new(MockCache)
	ctx := context.Background()
	store.On("Get", ctx, "valuation:latest").Return("{not json", nil)

	_, err := NewReportCacheAdapter(store, "valuation:", time.Minute).LatestReport(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal report")
}

func TestReportCacheAdapter_RejectsNil(t *testing.T) {
	adapter := NewReportCacheAdapter(NewMemoryCache(), "valuation:", time.Minute)
	assert.Error(t, adapter.SaveReport(context.Background(), nil))
}
