package service

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecorecicla/greengo/internal/errs"
	"github.com/ecorecicla/greengo/internal/model"
)

// Ledger maintains the points and coins balances. Scanning credits points,
// purchases debit coins; the two currencies are never reconciled (the store
// copy claiming otherwise is marketing text). Both balances stay >= 0 and
// Purchase is the only debit path.
type Ledger struct {
	mu      sync.Mutex
	points  int
	coins   int
	stats   model.EcoStats
	history []model.Redemption
	log     *zap.Logger
}

// NewLedger seeds the ledger. Negative seeds are rejected.
func NewLedger(points, coins int, stats model.EcoStats, log *zap.Logger) (*Ledger, error) {
	if points < 0 || coins < 0 {
		return nil, fmt.Errorf("negative seed balance (points=%d coins=%d)", points, coins)
	}
	return &Ledger{points: points, coins: coins, stats: stats, log: log}, nil
}

// Balance returns the current balances.
func (l *Ledger) Balance() model.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return model.Balance{Points: l.points, Coins: l.coins}
}

// Stats returns the accumulated eco stats.
func (l *Ledger) Stats() model.EcoStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// ApplyScanOutcome credits the awarded points and advances the eco stats.
// Coins are unaffected.
func (l *Ledger) ApplyScanOutcome(o model.ScanOutcome) model.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.points += o.PointsAwarded
	l.stats.Recycled++
	l.stats.TotalKg += o.WeightKg
	l.stats.CO2SavedKg += o.CO2SavedKg

	l.log.Info("scan credited",
		zap.String("material", o.MaterialType),
		zap.Int("points", o.PointsAwarded),
		zap.Int("total_points", l.points),
	)
	return model.Balance{Points: l.points, Coins: l.coins}
}

// CanAfford reports whether the coin balance covers the item price.
func (l *Ledger) CanAfford(item model.StoreItem) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coins >= item.PriceCoins
}

// Purchase debits the item price. On errs.ErrInsufficientFunds no state
// changes. A successful debit is recorded in the redemption history.
func (l *Ledger) Purchase(item model.StoreItem) (model.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.coins < item.PriceCoins {
		return model.Balance{Points: l.points, Coins: l.coins}, errs.ErrInsufficientFunds
	}
	l.coins -= item.PriceCoins
	l.history = append(l.history, model.Redemption{
		ItemID:     item.ID,
		ItemName:   item.Name,
		CoinsSpent: item.PriceCoins,
		RedeemedAt: time.Now(),
	})

	l.log.Info("purchase",
		zap.String("item", item.Name),
		zap.Int("price", item.PriceCoins),
		zap.Int("coins_left", l.coins),
	)
	return model.Balance{Points: l.points, Coins: l.coins}, nil
}

// History returns a copy of the redemption history, oldest first.
func (l *Ledger) History() []model.Redemption {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Redemption(nil), l.history...)
}
