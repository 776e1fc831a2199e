package strategy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/skinflip/internal/analysis/technical"
	"github.com/Alias1177/skinflip/internal/attributes"
	"github.com/Alias1177/skinflip/internal/pricing"
	"github.com/Alias1177/skinflip/models"
)

// Engine scans items and runs the five opportunity detectors on each.
// It is not safe for concurrent use.
type Engine struct {
	cfg       Config
	market    models.MarketplaceClient
	history   models.PriceHistoryStore
	fees      *pricing.FeeCache
	evaluator *attributes.Evaluator
	analyzer  *technical.Analyzer
	logger    zerolog.Logger
	now       func() time.Time

	lastPrices map[string]float64
}

// NewEngine wires an engine. history may be nil, in which case snipes fall
// back to offer prices and the volatility detector stays silent.
func NewEngine(cfg Config, market models.MarketplaceClient, history models.PriceHistoryStore,
	evaluator *attributes.Evaluator, analyzer *technical.Analyzer) *Engine {
	return &Engine{
		cfg:       cfg,
		market:    market,
		history:   history,
		fees:      pricing.NewFeeCache(market, cfg.FeeTTL),
		evaluator: evaluator,
		analyzer:  analyzer,
		logger:    log.With().Str("component", "strategy_engine").Logger(),
		now:       time.Now,

		lastPrices: make(map[string]float64),
	}
}

// WithClock replaces the time source used for discovery timestamps and ticks.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Config returns the engine thresholds.
func (e *Engine) Config() Config { return e.cfg }

// Run scans titles one at a time and returns every opportunity found, each
// strategy's list ranked by profit. Items that fail upstream are logged and
// skipped; a cancelled context ends the scan early with partial results.
func (e *Engine) Run(ctx context.Context, titles []string) models.OpportunitySet {
	var set models.OpportunitySet
	started := e.now()

	for i, title := range titles {
		if i > 0 && e.cfg.ItemDelay > 0 {
			select {
			case <-ctx.Done():
				e.logger.Warn().Int("scanned", i).Msg("Scan interrupted")
				rank(&set)
				return set
			case <-time.After(e.cfg.ItemDelay):
			}
		}
		if ctx.Err() != nil {
			break
		}

		found, err := e.scanItem(ctx, title)
		if err != nil {
			e.logger.Warn().Err(err).Str("title", title).Msg("Skipping item")
			continue
		}
		set.Merge(found)
	}

	rank(&set)
	counts := set.Counts()
	e.logger.Info().
		Int("items", len(titles)).
		Int("basic_flips", counts[models.StrategyBasicFlip]).
		Int("snipes", counts[models.StrategySnipe]).
		Int("attribute_flips", counts[models.StrategyAttributeFlip]).
		Int("trade_lock", counts[models.StrategyTradeLock]).
		Int("volatility", counts[models.StrategyVolatility]).
		Dur("took", e.now().Sub(started)).
		Msg("Scan finished")
	return set
}

// scanItem fetches one snapshot and runs detection on it.
func (e *Engine) scanItem(ctx context.Context, title string) (set models.OpportunitySet, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detector panic: %v", r)
		}
	}()

	fees, err := e.resolveFees(ctx)
	if err != nil {
		return set, err
	}

	snap, err := e.Snapshot(ctx, title)
	if err != nil {
		return set, err
	}

	set = e.Detect(snap, fees)
	if lso, ok := snap.LowestOffer(); ok {
		e.lastPrices[title] = lso.PriceUSD()
	}
	e.recordTick(ctx, snap)
	return set, nil
}

// LastPrices returns the lowest offer price seen per title in the most
// recent scans. Titles without offers are absent.
func (e *Engine) LastPrices() map[string]float64 {
	out := make(map[string]float64, len(e.lastPrices))
	for title, p := range e.lastPrices {
		out[title] = p
	}
	return out
}

// resolveFees returns the cached fee schedule or applies the fallback policy.
func (e *Engine) resolveFees(ctx context.Context) (models.FeeSchedule, error) {
	fees, err := e.fees.Get(ctx, e.cfg.GameID)
	if err == nil {
		return fees, nil
	}
	if !errors.Is(err, pricing.ErrFeeScheduleUnavailable) || e.cfg.FeeFallback == FeeFallbackAbstain {
		return models.FeeSchedule{}, err
	}
	e.logger.Warn().
		Err(err).
		Float64("fallback_rate", e.cfg.DefaultFees.Rate).
		Float64("fallback_min", e.cfg.DefaultFees.MinCommissionUSD).
		Msg("Using default fee schedule; profit figures may be off")
	return e.cfg.DefaultFees, nil
}

// Snapshot fetches offers, buy orders and stored history for one item.
func (e *Engine) Snapshot(ctx context.Context, title string) (models.MarketSnapshot, error) {
	snap := models.MarketSnapshot{Title: title, FetchedAt: e.now()}
	if e.market == nil {
		return snap, errors.New("no marketplace client configured")
	}

	offers, err := e.market.GetSellOffers(ctx, title, e.cfg.OffersLimit, e.cfg.Currency)
	if err != nil {
		return snap, fmt.Errorf("fetching sell offers: %w", err)
	}
	snap.SellOffers = offers.Offers

	orders, err := e.market.GetBuyOrders(ctx, title, e.cfg.GameID, e.cfg.BuyOrdersLimit, "price", "desc", e.cfg.Currency)
	if err != nil {
		return snap, fmt.Errorf("fetching buy orders: %w", err)
	}
	snap.BuyOrders = orders.Orders

	if e.history != nil {
		ticks, err := e.history.Query(ctx, title, e.cfg.HistoryLimit)
		if err != nil {
			// Local history is optional for every detector.
			e.logger.Warn().Err(err).Str("title", title).Msg("Price history unavailable")
		} else {
			snap.History = ticks
		}
	}

	e.logger.Debug().
		Str("title", title).
		Int("offers", len(snap.SellOffers)).
		Int("buy_orders", len(snap.BuyOrders)).
		Int("ticks", len(snap.History)).
		Msg("Snapshot fetched")
	return snap, nil
}

// Detect runs all five detectors over an already fetched snapshot.
func (e *Engine) Detect(snap models.MarketSnapshot, fees models.FeeSchedule) models.OpportunitySet {
	set := models.OpportunitySet{
		BasicFlips:         e.detectBasicFlip(snap, fees),
		Snipes:             e.detectSnipes(snap, fees),
		AttributeFlips:     e.detectAttributeFlips(snap, fees),
		TradeLockArbitrage: e.detectTradeLock(snap, fees),
		VolatilityTrading:  e.detectVolatility(snap, fees),
	}
	rank(&set)
	return set
}

// recordTick appends the current best offer to the price history.
func (e *Engine) recordTick(ctx context.Context, snap models.MarketSnapshot) {
	if !e.cfg.RecordHistory || e.history == nil {
		return
	}
	lso, ok := snap.LowestOffer()
	if !ok {
		return
	}
	tick := models.PriceTick{Price: lso.PriceUSD(), Timestamp: e.now(), Source: "scan"}
	if err := e.history.Append(ctx, snap.Title, tick); err != nil {
		e.logger.Warn().Err(err).Str("title", snap.Title).Msg("Failed to record price tick")
	}
}

// rank sorts every strategy's list by profit, best first.
func rank(set *models.OpportunitySet) {
	for _, list := range [][]models.Opportunity{
		set.BasicFlips, set.Snipes, set.AttributeFlips, set.TradeLockArbitrage, set.VolatilityTrading,
	} {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].ProfitUSD > list[j].ProfitUSD
		})
	}
}
