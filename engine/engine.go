// Package engine runs the trading loop: one broker session per cycle, a
// fixed pipeline from account snapshot to order submission, and a fresh
// session after any failure.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zonkia/XTB-autoTrader/config"
	"github.com/zonkia/XTB-autoTrader/journal"
	"github.com/zonkia/XTB-autoTrader/market"
	"github.com/zonkia/XTB-autoTrader/pkg/id"
	"github.com/zonkia/XTB-autoTrader/position"
	"github.com/zonkia/XTB-autoTrader/risk"
	"github.com/zonkia/XTB-autoTrader/signal"
	"github.com/zonkia/XTB-autoTrader/xapi"
)

// localWindow is how far back the momentum-gate extremes look.
const localWindow = 30 * time.Minute

// Session is the slice of the broker client one cycle consumes.
type Session interface {
	Connect(ctx context.Context) error
	Login(ctx context.Context, userID int, password string) (string, error)
	Disconnect()

	Calendar(ctx context.Context) ([]xapi.CalendarEvent, error)
	ChartRange(ctx context.Context, req xapi.ChartRequest) (xapi.ChartResult, error)
	Symbol(ctx context.Context, symbol string) (xapi.SymbolQuote, error)
	Margin(ctx context.Context) (xapi.MarginLevel, error)
	Trades(ctx context.Context, openedOnly bool) ([]xapi.TradeRecord, error)
	SendTradeTransaction(ctx context.Context, tx xapi.TradeTransaction) (int, error)
}

// Stream is the managed price feed side of a session.
type Stream interface {
	Connect(ctx context.Context) error
	Start() error
	SubscribePrices(symbols []string) error
	SubscribeTrades() error
	Stop()
}

// RateSource converts pair base currencies into the account currency.
type RateSource interface {
	ForPairs(ctx context.Context, pairs []string) (map[string]float64, error)
}

// TitleStore is re-exported here so the engine constructor reads naturally.
type TitleStore = signal.TitleStore

// Credentials authenticate the broker session.
type Credentials struct {
	UserID   int
	Password string
}

// Engine owns the loop state. Sessions are created per cycle; everything
// else lives for the process.
type Engine struct {
	cfg   *config.Config
	creds Credentials
	store TitleStore
	rates RateSource
	jrnl  journal.Journal
	notif Notifier
	log   *zap.Logger

	newSession func() Session
	newStream  func(sessionID string) Stream

	now   func() time.Time
	sleep func(time.Duration)

	iteration int
	lastHour  int
}

func New(cfg *config.Config, creds Credentials, store TitleStore, rates RateSource, jrnl journal.Journal, notif Notifier, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if jrnl == nil {
		jrnl = journal.Discard{}
	}
	if notif == nil {
		notif = NewLogNotifier(log)
	}
	e := &Engine{
		cfg:      cfg,
		creds:    creds,
		store:    store,
		rates:    rates,
		jrnl:     jrnl,
		notif:    notif,
		log:      log,
		now:      time.Now,
		sleep:    time.Sleep,
		lastHour: -1,
	}
	e.newSession = func() Session { return xapi.NewClient(cfg.API.Addr()) }
	e.newStream = func(sessionID string) Stream {
		return xapi.NewStreamClient(cfg.API.StreamAddr(), sessionID, xapi.StreamHandlers{}, log)
	}
	return e
}

// Run cycles until the context is cancelled. Weekends idle; a failed cycle
// is logged, paused on, and retried with a fresh session.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if wd := e.now().Weekday(); wd == time.Saturday || wd == time.Sunday {
			e.log.Info("market closed, idling", zap.Stringer("weekday", wd))
			e.sleep(time.Duration(e.cfg.Engine.WeekendSleep))
			continue
		}

		if err := e.cycle(ctx); err != nil {
			e.log.Error("cycle failed, restarting session", zap.Error(err))
			e.sleep(time.Duration(e.cfg.Engine.CycleErrorPause))
		}
		e.iteration++
	}
}

// cycle is one full pass: manage what is open, build candidates, size and
// submit new entries.
func (e *Engine) cycle(ctx context.Context) error {
	sess := e.newSession()
	if err := sess.Connect(ctx); err != nil {
		return err
	}
	defer sess.Disconnect()

	sessionID, err := sess.Login(ctx, e.creds.UserID, e.creds.Password)
	if err != nil {
		return err
	}

	if e.cfg.API.Streaming {
		stream := e.newStream(sessionID)
		if err := e.startStream(ctx, stream); err != nil {
			e.log.Warn("stream unavailable, continuing without it", zap.Error(err))
		} else {
			defer stream.Stop()
		}
	}

	svc := market.NewService(sess)
	mgr := position.NewManager(sess, e.log)

	positions, err := mgr.Snapshot(ctx)
	if err != nil {
		return err
	}

	quotes, err := e.quotesFor(ctx, svc, openPairs(positions))
	if err != nil {
		return err
	}

	swept := make(map[int]bool)
	for _, pos := range position.EmergencyCloses(positions, quotes) {
		e.closePosition(ctx, mgr, pos, "emergency")
		swept[pos.Order] = true
	}

	if position.WeekendDue(e.now()) {
		e.log.Info("weekend close", zap.Int("positions", len(positions)))
		for _, pos := range positions {
			if swept[pos.Order] {
				continue
			}
			e.closePosition(ctx, mgr, pos, "weekend")
		}
		return nil
	}

	e.trailStops(ctx, svc, mgr, positions, quotes)

	cands, full, semi, bb, err := e.buildCandidates(ctx, sess, svc)
	if err != nil {
		return err
	}

	// Open positions may have changed during management above.
	positions, err = mgr.Snapshot(ctx)
	if err != nil {
		return err
	}
	cands = signal.DropOpenLegs(cands, openPairs(positions))
	cands = signal.Reorder(cands, full, semi)
	cands = signal.UniqueLegs(cands)

	account, err := sess.Margin(ctx)
	if err != nil {
		return err
	}

	opened, err := e.openCandidates(ctx, svc, mgr, cands, full, semi, account.Equity)
	if err != nil {
		return err
	}

	e.recordEquity(account)
	e.maybeSummarize(bb, cands, opened, account)
	return nil
}

func (e *Engine) startStream(ctx context.Context, stream Stream) error {
	if err := stream.Connect(ctx); err != nil {
		return err
	}
	if err := stream.Start(); err != nil {
		return err
	}
	if err := stream.SubscribePrices(market.Universe); err != nil {
		stream.Stop()
		return err
	}
	if err := stream.SubscribeTrades(); err != nil {
		stream.Stop()
		return err
	}
	return nil
}

// buildCandidates runs the signal pipeline and returns the surviving
// candidates plus the calendar context the summary wants.
func (e *Engine) buildCandidates(ctx context.Context, sess Session, svc *market.Service) ([]signal.Candidate, []string, []string, signal.BullBear, error) {
	cal := signal.NewCalendarEngine(sess, e.store, market.Currencies, signal.AmbiguityPolicy(e.cfg.Signal.AmbiguityPolicy), e.log)
	events, err := cal.Snapshot(ctx)
	if err != nil {
		return nil, nil, nil, signal.BullBear{}, err
	}
	bb, err := cal.Classify(events)
	if err != nil {
		return nil, nil, nil, signal.BullBear{}, err
	}
	e.log.Info("calendar classified",
		zap.Strings("bulls", bb.Bulls),
		zap.Strings("bears", bb.Bears))

	full := signal.FullPairs(bb, market.Universe)
	semi := signal.SemiPairs(bb, market.Universe, market.Currencies)
	cands := signal.DirectionsFor(bb, market.Universe)

	trends := make(map[string]signal.Trend, len(market.Universe))
	fourHour := make(map[string]float64, len(market.Universe))
	hour := make(map[string]float64, len(market.Universe))
	halfHour := make(map[string]float64, len(market.Universe))
	quarter := make(map[string]float64, len(market.Universe))

	for _, pair := range market.Universe {
		res, err := svc.Resistance(ctx, pair, market.FourHour, time.Time{})
		if err != nil {
			return nil, nil, nil, bb, err
		}
		sup, err := svc.Support(ctx, pair, market.FourHour, time.Time{})
		if err != nil {
			return nil, nil, nil, bb, err
		}

		fh, err := svc.Oscillator(ctx, pair, market.FourHour)
		if err != nil {
			return nil, nil, nil, bb, err
		}
		h, err := svc.Oscillator(ctx, pair, market.Hour)
		if err != nil {
			return nil, nil, nil, bb, err
		}
		hh, err := svc.Oscillator(ctx, pair, market.HalfHour)
		if err != nil {
			return nil, nil, nil, bb, err
		}
		q, err := svc.Oscillator(ctx, pair, market.Quarter)
		if err != nil {
			return nil, nil, nil, bb, err
		}

		trends[pair] = signal.ClassifyTrend(res, sup, fh.Unit)
		fourHour[pair] = fh.Value
		hour[pair] = h.Value
		halfHour[pair] = hh.Value
		quarter[pair] = q.Value
	}

	oscGated := signal.OscillatorGate(market.Universe, fourHour, hour, halfHour, quarter)
	trendGated := signal.FilterByTrend(cands, trends)
	final := signal.Intersect(trendGated, oscGated)

	e.log.Info("candidates built",
		zap.Int("oscillator", len(oscGated)),
		zap.Int("trend", len(trendGated)),
		zap.Int("final", len(final)))
	return final, full, semi, bb, nil
}

// openCandidates sizes each surviving candidate and submits the ones that
// qualify. Per-pair failures are logged and skipped.
func (e *Engine) openCandidates(ctx context.Context, svc *market.Service, mgr *position.Manager, cands []signal.Candidate, full, semi []string, equity float64) (int, error) {
	if len(cands) == 0 {
		return 0, nil
	}

	pairs := make([]string, 0, len(cands))
	for _, c := range cands {
		pairs = append(pairs, c.Pair)
	}
	fx, err := e.rates.ForPairs(ctx, pairs)
	if err != nil {
		return 0, err
	}
	fractions := risk.Fractions{
		Full: e.cfg.Risk.FullFraction,
		Semi: e.cfg.Risk.SemiFraction,
		Base: e.cfg.Risk.BaseFraction,
	}

	localStart := e.now().Add(-localWindow)
	opened := 0
	for _, cand := range cands {
		quote, err := svc.Quote(ctx, cand.Pair)
		if err != nil {
			e.log.Warn("quote failed", zap.String("pair", cand.Pair), zap.Error(err))
			continue
		}
		res, err := svc.Resistance(ctx, cand.Pair, market.FourHour, time.Time{})
		if err != nil {
			e.log.Warn("resistance failed", zap.String("pair", cand.Pair), zap.Error(err))
			continue
		}
		sup, err := svc.Support(ctx, cand.Pair, market.FourHour, time.Time{})
		if err != nil {
			e.log.Warn("support failed", zap.String("pair", cand.Pair), zap.Error(err))
			continue
		}
		localRes, err := svc.Resistance(ctx, cand.Pair, market.Quarter, localStart)
		if err != nil {
			e.log.Warn("local resistance failed", zap.String("pair", cand.Pair), zap.Error(err))
			continue
		}
		localSup, err := svc.Support(ctx, cand.Pair, market.Quarter, localStart)
		if err != nil {
			e.log.Warn("local support failed", zap.String("pair", cand.Pair), zap.Error(err))
			continue
		}
		osc, err := svc.Oscillator(ctx, cand.Pair, market.Quarter)
		if err != nil {
			e.log.Warn("oscillator failed", zap.String("pair", cand.Pair), zap.Error(err))
			continue
		}

		plan, ok := risk.Inputs{
			Pair:            cand.Pair,
			Direction:       cand.Direction,
			Quote:           quote,
			Resistance:      res,
			Support:         sup,
			LocalResistance: localRes.Current(),
			LocalSupport:    localSup.Current(),
			Unit:            osc.Unit,
			Equity:          equity,
			FxRate:          fx[cand.Pair],
			Fraction:        risk.FractionFor(cand.Pair, full, semi, fractions),
			MinRiskReward:   e.cfg.Risk.MinRiskReward,
		}.Size()
		if !ok {
			continue
		}

		order, err := mgr.Open(ctx, plan)
		if err != nil {
			e.log.Error("open rejected", zap.String("pair", cand.Pair), zap.Error(err))
			continue
		}
		opened++
		e.recordOrder(journal.OrderRecord{
			ID:       id.New(),
			Pair:     plan.Pair,
			Action:   "open",
			Side:     plan.Direction.String(),
			Volume:   plan.Volume,
			Price:    1,
			StopLoss: plan.StopLoss,
			Target:   plan.TakeProfit,
			Order:    order,
			Time:     e.now(),
		})
	}
	return opened, nil
}

// trailStops proposes and applies tightened stops for open positions.
func (e *Engine) trailStops(ctx context.Context, svc *market.Service, mgr *position.Manager, positions []position.Position, quotes map[string]market.Quote) {
	for _, pos := range positions {
		quote, ok := quotes[pos.Pair]
		if !ok {
			continue
		}
		candles, err := svc.Candles(ctx, pos.Pair, market.Quarter, pos.OpenTime)
		if err != nil {
			e.log.Warn("trailing candles failed", zap.String("pair", pos.Pair), zap.Error(err))
			continue
		}
		osc, err := svc.Oscillator(ctx, pos.Pair, market.Quarter)
		if err != nil {
			e.log.Warn("trailing oscillator failed", zap.String("pair", pos.Pair), zap.Error(err))
			continue
		}

		closes := make([]float64, 0, len(candles)+1)
		closes = append(closes, pos.OpenPrice)
		for _, c := range candles {
			closes = append(closes, c.Close)
		}

		stop, ok := position.ProposeStop(pos, closes, osc.Unit, quote.Spread)
		if !ok {
			continue
		}
		if err := mgr.Modify(ctx, pos, stop); err != nil {
			e.log.Error("stop update rejected", zap.String("pair", pos.Pair), zap.Error(err))
			continue
		}
		e.recordOrder(journal.OrderRecord{
			ID:       id.New(),
			Pair:     pos.Pair,
			Action:   "modify",
			Side:     pos.Direction.String(),
			Volume:   pos.Volume,
			Price:    pos.OpenPrice,
			StopLoss: stop,
			Target:   pos.TakeProfit,
			Order:    pos.Order,
			Time:     e.now(),
		})
	}
}

func (e *Engine) closePosition(ctx context.Context, mgr *position.Manager, pos position.Position, reason string) {
	if err := mgr.Close(ctx, pos); err != nil {
		e.log.Error("close rejected",
			zap.String("pair", pos.Pair),
			zap.String("reason", reason),
			zap.Error(err))
		return
	}
	e.recordOrder(journal.OrderRecord{
		ID:       id.New(),
		Pair:     pos.Pair,
		Action:   "close",
		Side:     pos.Direction.String(),
		Volume:   pos.Volume,
		Price:    pos.OpenPrice,
		StopLoss: pos.StopLoss,
		Target:   pos.TakeProfit,
		Order:    pos.Order,
		Time:     e.now(),
	})
}

func (e *Engine) quotesFor(ctx context.Context, svc *market.Service, pairs []string) (map[string]market.Quote, error) {
	quotes := make(map[string]market.Quote, len(pairs))
	for _, pair := range pairs {
		q, err := svc.Quote(ctx, pair)
		if err != nil {
			return nil, err
		}
		quotes[pair] = q
	}
	return quotes, nil
}

func (e *Engine) recordOrder(rec journal.OrderRecord) {
	if err := e.jrnl.RecordOrder(rec); err != nil {
		e.log.Warn("journal order failed", zap.Error(err))
	}
}

func (e *Engine) recordEquity(account xapi.MarginLevel) {
	err := e.jrnl.RecordEquity(journal.EquitySnapshot{
		Time:        e.now(),
		Balance:     account.Balance,
		Equity:      account.Equity,
		Margin:      account.Margin,
		MarginFree:  account.MarginFree,
		MarginLevel: account.MarginLevel,
	})
	if err != nil {
		e.log.Warn("journal equity failed", zap.Error(err))
	}
}

// maybeSummarize notifies on the hour boundary or every SummaryEvery-th
// cycle, whichever comes first.
func (e *Engine) maybeSummarize(bb signal.BullBear, cands []signal.Candidate, opened int, account xapi.MarginLevel) {
	hour := e.now().Hour()
	due := hour != e.lastHour || (e.iteration+1)%e.cfg.Engine.SummaryEvery == 0
	if !due {
		return
	}
	e.lastHour = hour

	body := fmt.Sprintf(
		"equity %.2f balance %.2f margin level %.2f\nbulls %v bears %v\ncandidates %d opened %d",
		account.Equity, account.Balance, account.MarginLevel,
		bb.Bulls, bb.Bears, len(cands), opened)
	if err := e.notif.Notify("cycle summary", body); err != nil {
		e.log.Warn("notify failed", zap.Error(err))
	}
}

func openPairs(positions []position.Position) []string {
	pairs := make([]string, 0, len(positions))
	for _, pos := range positions {
		pairs = append(pairs, pos.Pair)
	}
	return pairs
}
