package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ecorecicla/greengo/internal/errs"
	"github.com/ecorecicla/greengo/internal/model"
)

func newTestLedger(t *testing.T, points, coins int) *Ledger {
	t.Helper()
	l, err := NewLedger(points, coins, model.EcoStats{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	return l
}

func TestNewLedger_RejectsNegativeSeeds(t *testing.T) {
	t.Parallel()

	if _, err := NewLedger(-1, 0, model.EcoStats{}, zap.NewNop()); err == nil {
		t.Fatalf("want error on negative points")
	}
	if _, err := NewLedger(0, -1, model.EcoStats{}, zap.NewNop()); err == nil {
		t.Fatalf("want error on negative coins")
	}
}

func TestLedger_ApplyScanOutcome_CreditsPointsOnly(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 1250, 850)
	out := FixedOutcome{}.Outcome()

	bal := l.ApplyScanOutcome(out)
	if bal.Points != 1300 {
		t.Fatalf("points=%d, want 1300", bal.Points)
	}
	if bal.Coins != 850 {
		t.Fatalf("coins changed by a scan: %d", bal.Coins)
	}

	stats := l.Stats()
	if stats.Recycled != 1 || stats.TotalKg != 0.5 || stats.CO2SavedKg != 1.2 {
		t.Fatalf("stats not advanced: %+v", stats)
	}
}

func TestLedger_Purchase_Sequence(t *testing.T) {
	t.Parallel()

	// reference scenario: 850 -> 550 -> 150 -> rejected
	l := newTestLedger(t, 0, 850)

	bal, err := l.Purchase(model.StoreItem{ID: "2", Name: "Booster de Puntos 3x", PriceCoins: 300})
	if err != nil || bal.Coins != 550 {
		t.Fatalf("first purchase: balance=%d err=%v", bal.Coins, err)
	}

	bal, err = l.Purchase(model.StoreItem{ID: "6", Name: "Caja de Recompensas", PriceCoins: 400})
	if err != nil || bal.Coins != 150 {
		t.Fatalf("second purchase: balance=%d err=%v", bal.Coins, err)
	}

	bal, err = l.Purchase(model.StoreItem{ID: "2", Name: "Booster de Puntos 3x", PriceCoins: 300})
	if !errors.Is(err, errs.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if bal.Coins != 150 {
		t.Fatalf("rejected purchase mutated balance: %d", bal.Coins)
	}

	hist := l.History()
	if len(hist) != 2 {
		t.Fatalf("history len=%d, want 2", len(hist))
	}
	if hist[0].CoinsSpent != 300 || hist[1].CoinsSpent != 400 {
		t.Fatalf("bad history: %+v", hist)
	}
}

func TestLedger_ExactBalancePurchase(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 0, 150)
	bal, err := l.Purchase(model.StoreItem{ID: "1", Name: "Booster de Puntos 2x", PriceCoins: 150})
	if err != nil {
		t.Fatalf("exact-balance purchase rejected: %v", err)
	}
	if bal.Coins != 0 {
		t.Fatalf("coins=%d, want 0", bal.Coins)
	}
}

func TestLedger_CanAfford(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 0, 100)
	if !l.CanAfford(model.StoreItem{PriceCoins: 100}) {
		t.Fatalf("exact balance should afford")
	}
	if l.CanAfford(model.StoreItem{PriceCoins: 101}) {
		t.Fatalf("over-balance should not afford")
	}
}
