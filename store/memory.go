package store

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/openlend/core/core"
)

type positionKey struct {
	MarketId  uuid.UUID
	AccountId uuid.UUID
}

// MemoryStore keeps the whole ledger in process memory. Reads and writes go
// through clones, so callers can never mutate stored state without an
// explicit upsert.
type MemoryStore struct {
	mu sync.RWMutex

	markets             map[uuid.UUID]*core.Market
	collateralPools     map[uuid.UUID]*core.CollateralPool
	liquidityPools      map[uuid.UUID]*core.LiquidityPool
	collateralPositions map[positionKey]*core.CollateralPosition
	debtPositions       map[positionKey]*core.DebtPosition
	liquidations        []*core.LiquidateResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		markets:             make(map[uuid.UUID]*core.Market),
		collateralPools:     make(map[uuid.UUID]*core.CollateralPool),
		liquidityPools:      make(map[uuid.UUID]*core.LiquidityPool),
		collateralPositions: make(map[positionKey]*core.CollateralPosition),
		debtPositions:       make(map[positionKey]*core.DebtPosition),
	}
}

// Service bundles the store into the service set the controller consumes.
func (s *MemoryStore) Service() core.LedgerService {
	return core.LedgerService{
		MarketStore:             s,
		CollateralPoolStore:     s,
		LiquidityPoolStore:      s,
		CollateralPositionStore: s,
		DebtPositionStore:       s,
		LiquidationStore:        s,
	}
}

func (s *MemoryStore) CreateMarket(ctx context.Context, market *core.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.markets[market.Id]; ok {
		return core.ErrSameValue
	}
	s.markets[market.Id] = market.Clone()
	return nil
}

func (s *MemoryStore) UpsertMarket(ctx context.Context, market *core.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markets[market.Id] = market.Clone()
	return nil
}

func (s *MemoryStore) ListMarkets(ctx context.Context) ([]*core.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	markets := make([]*core.Market, 0, len(s.markets))
	for _, market := range s.markets {
		markets = append(markets, market.Clone())
	}
	return markets, nil
}

func (s *MemoryStore) GetMarketById(ctx context.Context, marketId uuid.UUID) (*core.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	market, ok := s.markets[marketId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return market.Clone(), nil
}

func (s *MemoryStore) GetMarketByAssetId(ctx context.Context, assetId string) (*core.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, market := range s.markets {
		if market.AssetId == assetId {
			return market.Clone(), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *MemoryStore) GetCollateralPool(ctx context.Context, marketId uuid.UUID) (*core.CollateralPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, ok := s.collateralPools[marketId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pool.Clone(), nil
}

func (s *MemoryStore) UpsertCollateralPool(ctx context.Context, pool *core.CollateralPool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collateralPools[pool.MarketId] = pool.Clone()
	return nil
}

func (s *MemoryStore) GetLiquidityPool(ctx context.Context, marketId uuid.UUID) (*core.LiquidityPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, ok := s.liquidityPools[marketId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pool.Clone(), nil
}

func (s *MemoryStore) UpsertLiquidityPool(ctx context.Context, pool *core.LiquidityPool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.liquidityPools[pool.MarketId] = pool.Clone()
	return nil
}

func (s *MemoryStore) FindCollateralPosition(ctx context.Context, marketId, accountId uuid.UUID) (*core.CollateralPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	position, ok := s.collateralPositions[positionKey{MarketId: marketId, AccountId: accountId}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return position.Clone(), nil
}

func (s *MemoryStore) UpsertCollateralPosition(ctx context.Context, position *core.CollateralPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := positionKey{MarketId: position.MarketId, AccountId: position.AccountId}
	s.collateralPositions[key] = position.Clone()
	return nil
}

func (s *MemoryStore) ListCollateralPositions(ctx context.Context, accountId uuid.UUID) ([]*core.CollateralPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var positions []*core.CollateralPosition
	for key, position := range s.collateralPositions {
		if key.AccountId == accountId && position.Active {
			positions = append(positions, position.Clone())
		}
	}
	return positions, nil
}

func (s *MemoryStore) FindDebtPosition(ctx context.Context, marketId, accountId uuid.UUID) (*core.DebtPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	position, ok := s.debtPositions[positionKey{MarketId: marketId, AccountId: accountId}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return position.Clone(), nil
}

func (s *MemoryStore) UpsertDebtPosition(ctx context.Context, position *core.DebtPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := positionKey{MarketId: position.MarketId, AccountId: position.AccountId}
	s.debtPositions[key] = position.Clone()
	return nil
}

func (s *MemoryStore) ListDebtPositions(ctx context.Context, accountId uuid.UUID) ([]*core.DebtPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var positions []*core.DebtPosition
	for key, position := range s.debtPositions {
		if key.AccountId == accountId && position.Active {
			positions = append(positions, position.Clone())
		}
	}
	return positions, nil
}

func (s *MemoryStore) StoreLiquidationResult(ctx context.Context, result *core.LiquidateResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.liquidations = append(s.liquidations, result.Clone())
	return nil
}

// Liquidations returns the recorded liquidation history, oldest first.
func (s *MemoryStore) Liquidations() []*core.LiquidateResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*core.LiquidateResult, len(s.liquidations))
	for i, result := range s.liquidations {
		results[i] = result.Clone()
	}
	return results
}
