package backtest

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adhish9899/stat-arb/internal/models"
	"github.com/adhish9899/stat-arb/internal/spread"
	"github.com/adhish9899/stat-arb/internal/threshold"
)

// Machine simulates one trading day's position for a single confidence
// level. It is created Flat and discarded at end of day; independent
// confidence levels each get their own Machine against the same ticks.
type Machine struct {
	pair       models.Pair
	set        threshold.Set
	prices     PriceSource
	accountant *Accountant
	sqTime     models.TimeOfDay
	logger     *zap.Logger

	state models.PositionState
	fill  EntryFill
}

// NewMachine creates a Flat machine for one day and confidence level.
func NewMachine(
	pair models.Pair,
	set threshold.Set,
	prices PriceSource,
	accountant *Accountant,
	sqTime models.TimeOfDay,
	logger *zap.Logger,
) *Machine {
	return &Machine{
		pair:       pair,
		set:        set,
		prices:     prices,
		accountant: accountant,
		sqTime:     sqTime,
		logger:     logger,
		state:      models.Flat,
	}
}

// State returns the current position state.
func (m *Machine) State() models.PositionState {
	return m.state
}

// Run walks the day's ticks in order and returns the closed trades.
//
// Per-tick evaluation order is fixed: entry check (only while Flat,
// upper tail first), then the exit check against whatever state now
// holds (a position opened at tick t may close at the same tick), then
// the forced square-off past the cutoff, which also ends the day early.
// A tail whose exit search failed never takes entries.
func (m *Machine) Run(ticks []spread.Tick) ([]models.TradeRecord, error) {
	var records []models.TradeRecord

	var prev time.Time
	for _, tick := range ticks {
		if !prev.IsZero() && !tick.Timestamp.After(prev) {
			return nil, fmt.Errorf("ticks for %s not strictly ascending at %s", m.pair.Name(), tick.Timestamp)
		}
		prev = tick.Timestamp

		// Entry check
		if m.state == models.Flat {
			if m.set.Upper.Enabled() && tick.Change > m.set.Upper.Entry {
				if err := m.open(tick, models.Short); err != nil {
					return nil, err
				}
			} else if m.set.Lower.Enabled() && tick.Change < m.set.Lower.Entry {
				if err := m.open(tick, models.Long); err != nil {
					return nil, err
				}
			}
		}

		// Exit check
		if m.state == models.Short && tick.Change <= *m.set.Upper.Exit {
			rec, err := m.close(tick, models.ExitSignal)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		if m.state == models.Long && tick.Change >= *m.set.Lower.Exit {
			rec, err := m.close(tick, models.ExitSignal)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}

		// Forced square-off: no further ticks are processed today.
		if m.state != models.Flat && models.ClockOf(tick.Timestamp) > m.sqTime {
			rec, err := m.close(tick, models.ExitSquareOff)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
			break
		}
	}

	return records, nil
}

func (m *Machine) open(tick spread.Tick, state models.PositionState) error {
	fill, err := m.accountant.Enter(m.prices, tick.Timestamp, m.pair, state)
	if err != nil {
		return err
	}
	m.state = state
	m.fill = fill

	m.logger.Debug("position opened",
		zap.String("pair", m.pair.Name()),
		zap.String("state", string(state)),
		zap.Float64("confidence", m.set.Confidence),
		zap.Float64("signal", tick.Change),
		zap.Time("time", tick.Timestamp),
	)
	return nil
}

func (m *Machine) close(tick spread.Tick, reason models.ExitReason) (models.TradeRecord, error) {
	pnl, err := m.accountant.MarkToMarket(m.prices, tick.Timestamp, m.fill)
	if err != nil {
		return models.TradeRecord{}, err
	}

	m.logger.Debug("position closed",
		zap.String("pair", m.pair.Name()),
		zap.String("state", string(m.state)),
		zap.Float64("confidence", m.set.Confidence),
		zap.String("reason", string(reason)),
		zap.Float64("pnl_bps", pnl.InexactFloat64()*1e4),
		zap.Time("time", tick.Timestamp),
	)

	m.state = models.Flat
	m.fill = EntryFill{}

	return models.TradeRecord{
		Pair:     m.pair,
		ExitTime: tick.Timestamp,
		PnL:      pnl,
		Reason:   reason,
	}, nil
}
