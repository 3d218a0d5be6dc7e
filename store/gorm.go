package store

import (
	"context"
	"encoding/json"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/openlend/core/core"
)

// GormStore persists the ledger through gorm. Not-found reads surface
// gorm.ErrRecordNotFound untouched, which is the sentinel the core layer
// checks against.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Service() core.LedgerService {
	return core.LedgerService{
		MarketStore:             s,
		CollateralPoolStore:     s,
		LiquidityPoolStore:      s,
		CollateralPositionStore: s,
		DebtPositionStore:       s,
		LiquidationStore:        s,
	}
}

func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&core.Market{},
		&core.CollateralPool{},
		&core.LiquidityPool{},
		&core.CollateralPosition{},
		&core.DebtPosition{},
		&liquidationRow{},
	)
}

func (s *GormStore) CreateMarket(ctx context.Context, market *core.Market) error {
	return s.db.WithContext(ctx).Create(market).Error
}

func (s *GormStore) UpsertMarket(ctx context.Context, market *core.Market) error {
	return s.db.WithContext(ctx).Save(market).Error
}

func (s *GormStore) ListMarkets(ctx context.Context) ([]*core.Market, error) {
	var markets []*core.Market
	if err := s.db.WithContext(ctx).Find(&markets).Error; err != nil {
		return nil, err
	}
	return markets, nil
}

func (s *GormStore) GetMarketById(ctx context.Context, marketId uuid.UUID) (*core.Market, error) {
	var market core.Market
	if err := s.db.WithContext(ctx).First(&market, "id = ?", marketId).Error; err != nil {
		return nil, err
	}
	return &market, nil
}

func (s *GormStore) GetMarketByAssetId(ctx context.Context, assetId string) (*core.Market, error) {
	var market core.Market
	if err := s.db.WithContext(ctx).First(&market, "asset_id = ?", assetId).Error; err != nil {
		return nil, err
	}
	return &market, nil
}

func (s *GormStore) GetCollateralPool(ctx context.Context, marketId uuid.UUID) (*core.CollateralPool, error) {
	var pool core.CollateralPool
	if err := s.db.WithContext(ctx).First(&pool, "market_id = ?", marketId).Error; err != nil {
		return nil, err
	}
	return &pool, nil
}

func (s *GormStore) UpsertCollateralPool(ctx context.Context, pool *core.CollateralPool) error {
	return s.db.WithContext(ctx).Save(pool).Error
}

func (s *GormStore) GetLiquidityPool(ctx context.Context, marketId uuid.UUID) (*core.LiquidityPool, error) {
	var pool core.LiquidityPool
	if err := s.db.WithContext(ctx).First(&pool, "market_id = ?", marketId).Error; err != nil {
		return nil, err
	}
	return &pool, nil
}

func (s *GormStore) UpsertLiquidityPool(ctx context.Context, pool *core.LiquidityPool) error {
	return s.db.WithContext(ctx).Save(pool).Error
}

func (s *GormStore) FindCollateralPosition(ctx context.Context, marketId, accountId uuid.UUID) (*core.CollateralPosition, error) {
	var position core.CollateralPosition
	err := s.db.WithContext(ctx).
		First(&position, "market_id = ? AND account_id = ?", marketId, accountId).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (s *GormStore) UpsertCollateralPosition(ctx context.Context, position *core.CollateralPosition) error {
	return s.db.WithContext(ctx).Save(position).Error
}

func (s *GormStore) ListCollateralPositions(ctx context.Context, accountId uuid.UUID) ([]*core.CollateralPosition, error) {
	var positions []*core.CollateralPosition
	err := s.db.WithContext(ctx).
		Find(&positions, "account_id = ? AND active = ?", accountId, true).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

func (s *GormStore) FindDebtPosition(ctx context.Context, marketId, accountId uuid.UUID) (*core.DebtPosition, error) {
	var position core.DebtPosition
	err := s.db.WithContext(ctx).
		First(&position, "market_id = ? AND account_id = ?", marketId, accountId).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (s *GormStore) UpsertDebtPosition(ctx context.Context, position *core.DebtPosition) error {
	return s.db.WithContext(ctx).Save(position).Error
}

func (s *GormStore) ListDebtPositions(ctx context.Context, accountId uuid.UUID) ([]*core.DebtPosition, error) {
	var positions []*core.DebtPosition
	err := s.db.WithContext(ctx).
		Find(&positions, "account_id = ? AND active = ?", accountId, true).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

// liquidationRow flattens LiquidateResult for storage; the position
// snapshots travel as json blobs.
type liquidationRow struct {
	Id                 int64  `gorm:"primaryKey;autoIncrement"`
	AccountId          string `gorm:"index"`
	LiquidatorId       string
	DebtMarketId       string
	CollateralMarketId string
	RepayAmount        string
	SeizedShares       string
	PreHealth          string
	PostHealth         string
	PreBalances        []byte
	PostBalances       []byte
	CreatedAt          int64
}

func (liquidationRow) TableName() string {
	return "liquidations"
}

func (s *GormStore) StoreLiquidationResult(ctx context.Context, result *core.LiquidateResult) error {
	preBalances, err := json.Marshal(result.PreBalances)
	if err != nil {
		return err
	}
	postBalances, err := json.Marshal(result.PostBalances)
	if err != nil {
		return err
	}
	row := &liquidationRow{
		AccountId:          result.AccountId.String(),
		LiquidatorId:       result.LiquidatorId.String(),
		DebtMarketId:       result.DebtMarketId.String(),
		CollateralMarketId: result.CollateralMarketId.String(),
		RepayAmount:        result.RepayAmount.String(),
		SeizedShares:       result.SeizedShares.String(),
		PreHealth:          result.PreHealth.String(),
		PostHealth:         result.PostHealth.String(),
		PreBalances:        preBalances,
		PostBalances:       postBalances,
		CreatedAt:          result.CreatedAt,
	}
	return s.db.WithContext(ctx).Create(row).Error
}
