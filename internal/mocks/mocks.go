// Package mocks holds testify mocks for the interfaces consumed by the HTTP
// layer.
package mocks

import (
	"context"
	"time"

	"wotmaps-api/internal/models"
	"wotmaps-api/internal/openid"
	"wotmaps-api/internal/region"
	"wotmaps-api/internal/wotapi"

	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of database.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRepository) InsertPlayedMap(ctx context.Context, player string, payload models.PlayedMapPayload) (bool, error) {
	args := m.Called(ctx, player, payload)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CurrentMaps(ctx context.Context, query models.CurrentMapsQuery, since time.Time) ([]models.CurrentMap, error) {
	args := m.Called(ctx, query, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CurrentMap), args.Error(1)
}

func (m *MockRepository) CurrentServers(ctx context.Context, since time.Time) ([]models.CurrentServer, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CurrentServer), args.Error(1)
}

// MockCache is a mock implementation of the Redis cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) MarkNonceUsed(ctx context.Context, r region.Region, nonce string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, r, nonce, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

// MockAssertionVerifier is a mock implementation of the OpenID client
type MockAssertionVerifier struct {
	mock.Mock
}

func (m *MockAssertionVerifier) Verify(ctx context.Context, assertion *openid.Assertion) (*openid.VerifiedAccount, error) {
	args := m.Called(ctx, assertion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openid.VerifiedAccount), args.Error(1)
}

// MockAccountFetcher is a mock implementation of the statistics API client
type MockAccountFetcher struct {
	mock.Mock
}

func (m *MockAccountFetcher) GetPublicAccountInfo(ctx context.Context, r region.Region, appID wotapi.AppID, accountID uint64) (*wotapi.AccountStatistics, error) {
	args := m.Called(ctx, r, appID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wotapi.AccountStatistics), args.Error(1)
}
