package backtest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adhish9899/stat-arb/internal/models"
)

// PriceSource looks up raw leg closes at aligned tick timestamps.
type PriceSource interface {
	PriceAt(ts time.Time, symbol string) (decimal.Decimal, error)
}

// Accountant converts entry/exit price pairs into slippage-adjusted,
// capital-normalized returns. Fills are always adverse to the trader:
// buys pay price*(1+slippage), sells receive price*(1-slippage).
type Accountant struct {
	buyAdj  decimal.Decimal // 1 + slippage per leg
	sellAdj decimal.Decimal // 1 - slippage per leg
}

// NewAccountant creates an accountant with a fixed per-leg slippage
// fraction.
func NewAccountant(slippagePerLeg float64) *Accountant {
	s := decimal.NewFromFloat(slippagePerLeg)
	one := decimal.NewFromInt(1)
	return &Accountant{
		buyAdj:  one.Add(s),
		sellAdj: one.Sub(s),
	}
}

// EntryFill holds the slippage-adjusted entry fills of an open
// position.
type EntryFill struct {
	LongSymbol  string
	ShortSymbol string
	LongPrice   decimal.Decimal
	ShortPrice  decimal.Decimal
}

// Enter computes the entry fills at a tick. A Short position shorts
// LegA and goes long LegB (betting the ratio falls); Long is the
// reverse.
func (a *Accountant) Enter(prices PriceSource, ts time.Time, pair models.Pair, state models.PositionState) (EntryFill, error) {
	var longSymbol, shortSymbol string
	switch state {
	case models.Short:
		longSymbol, shortSymbol = pair.LegB, pair.LegA
	case models.Long:
		longSymbol, shortSymbol = pair.LegA, pair.LegB
	default:
		return EntryFill{}, fmt.Errorf("cannot enter %s position", state)
	}

	longRaw, err := prices.PriceAt(ts, longSymbol)
	if err != nil {
		return EntryFill{}, fmt.Errorf("entry price for %s: %w", longSymbol, err)
	}
	shortRaw, err := prices.PriceAt(ts, shortSymbol)
	if err != nil {
		return EntryFill{}, fmt.Errorf("entry price for %s: %w", shortSymbol, err)
	}

	return EntryFill{
		LongSymbol:  longSymbol,
		ShortSymbol: shortSymbol,
		LongPrice:   longRaw.Mul(a.buyAdj),
		ShortPrice:  shortRaw.Mul(a.sellAdj),
	}, nil
}

// MarkToMarket computes the closed-trade return at the exit timestamp:
// the long leg is sold at price*(1-slippage), the short leg bought back
// at price*(1+slippage), and the summed leg PnL is normalized by the
// entry capital (sum of both entry fills).
func (a *Accountant) MarkToMarket(prices PriceSource, ts time.Time, fill EntryFill) (decimal.Decimal, error) {
	longRaw, err := prices.PriceAt(ts, fill.LongSymbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exit price for %s: %w", fill.LongSymbol, err)
	}
	shortRaw, err := prices.PriceAt(ts, fill.ShortSymbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exit price for %s: %w", fill.ShortSymbol, err)
	}

	pnlLong := longRaw.Mul(a.sellAdj).Sub(fill.LongPrice)
	pnlShort := fill.ShortPrice.Sub(shortRaw.Mul(a.buyAdj))
	totalCapital := fill.LongPrice.Add(fill.ShortPrice)
	if totalCapital.IsZero() {
		return decimal.Zero, fmt.Errorf("zero entry capital for %s/%s", fill.LongSymbol, fill.ShortSymbol)
	}

	return pnlLong.Add(pnlShort).Div(totalCapital), nil
}
