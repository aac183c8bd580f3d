package signal

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zonkia/XTB-autoTrader/xapi"
)

// Title classifications held in the persisted title store. BetterUp means a
// reading above forecast favors the currency; BetterDown the inverse.
// UpdateNeeded marks a title seen on the wire but not yet classified by hand.
const (
	TitleBetterUp     = "Better Up"
	TitleBetterDown   = "Better Down"
	TitleUpdateNeeded = "Update Needed"
)

// AmbiguityPolicy decides what happens to a currency that qualified as both
// bull and bear within one calendar snapshot.
type AmbiguityPolicy string

const (
	// AmbiguityDrop excludes the currency from both lists.
	AmbiguityDrop AmbiguityPolicy = "drop"
	// AmbiguityNet keeps the side with more qualifying events; ties drop.
	AmbiguityNet AmbiguityPolicy = "net"
)

// lookbehind is how far into the past a calendar event stays relevant.
const lookbehind = 3 * time.Hour

// CalendarSource is the slice of the broker client the calendar engine uses.
type CalendarSource interface {
	Calendar(ctx context.Context) ([]xapi.CalendarEvent, error)
}

// TitleStore persists the hand-maintained calendar knowledge between runs:
// title classifications, per-title minimum thresholds, and the
// country-to-currency mapping.
type TitleStore interface {
	TitleDirections() (map[string]string, error)
	SaveTitleDirections(map[string]string) error
	SaveNewTitles(map[string]string) error
	TitleMinimums() (map[string]float64, error)
	CountryCurrencies() (map[string]string, error)
}

// Event is one calendar entry already mapped to a currency, with the empty
// forecast defaulted to the previous reading.
type Event struct {
	Currency string
	Title    string
	Time     time.Time
	Current  string
	Forecast string
}

// BullBear holds the per-snapshot unique currency lists.
type BullBear struct {
	Bulls []string
	Bears []string
}

// CalendarEngine turns the raw broker calendar into bull and bear currency
// lists.
type CalendarEngine struct {
	src        CalendarSource
	store      TitleStore
	currencies map[string]bool
	policy     AmbiguityPolicy
	now        func() time.Time
	log        *zap.Logger
}

func NewCalendarEngine(src CalendarSource, store TitleStore, currencies []string, policy AmbiguityPolicy, log *zap.Logger) *CalendarEngine {
	if policy == "" {
		policy = AmbiguityDrop
	}
	if log == nil {
		log = zap.NewNop()
	}
	set := make(map[string]bool, len(currencies))
	for _, c := range currencies {
		set[c] = true
	}
	return &CalendarEngine{
		src:        src,
		store:      store,
		currencies: set,
		policy:     policy,
		now:        time.Now,
		log:        log,
	}
}

// Snapshot fetches and filters the calendar: impact 2 or 3, country mapped
// to a tracked currency, event time between three hours ago and tomorrow's
// end of day.
func (e *CalendarEngine) Snapshot(ctx context.Context) ([]Event, error) {
	raw, err := e.src.Calendar(ctx)
	if err != nil {
		return nil, err
	}
	countries, err := e.store.CountryCurrencies()
	if err != nil {
		return nil, err
	}

	now := e.now()
	start := now.Add(-lookbehind)
	tomorrow := now.AddDate(0, 0, 1)
	end := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 23, 59, 59, 0, now.Location())

	var events []Event
	for _, ev := range raw {
		if ev.Impact != "2" && ev.Impact != "3" {
			continue
		}
		currency, ok := countries[ev.Country]
		if !ok || !e.currencies[currency] {
			continue
		}
		at := time.UnixMilli(ev.Time)
		if at.Before(start) || !at.Before(end) {
			continue
		}
		forecast := ev.Forecast
		if forecast == "" {
			forecast = ev.Previous
		}
		events = append(events, Event{
			Currency: currency,
			Title:    ev.Title,
			Time:     at,
			Current:  ev.Current,
			Forecast: forecast,
		})
	}
	return events, nil
}

// Classify builds the bull/bear lists from a snapshot. Titles missing from
// the store are persisted as UpdateNeeded so they can be classified later;
// until then they contribute nothing.
func (e *CalendarEngine) Classify(events []Event) (BullBear, error) {
	titles, err := e.store.TitleDirections()
	if err != nil {
		return BullBear{}, err
	}
	if titles == nil {
		titles = map[string]string{}
	}

	newTitles := map[string]string{}
	for _, ev := range events {
		if _, known := titles[ev.Title]; !known {
			newTitles[ev.Title] = TitleUpdateNeeded
		}
	}
	if len(newTitles) > 0 {
		e.log.Info("unclassified calendar titles", zap.Int("count", len(newTitles)))
		if err := e.store.SaveNewTitles(newTitles); err != nil {
			return BullBear{}, err
		}
		for title, dir := range newTitles {
			titles[title] = dir
		}
		if err := e.store.SaveTitleDirections(titles); err != nil {
			return BullBear{}, err
		}
	}

	minimums, err := e.store.TitleMinimums()
	if err != nil {
		return BullBear{}, err
	}

	var bulls, bears []string
	for _, ev := range events {
		if ev.Current == "" {
			continue
		}
		current, ok := parseValue(ev.Current)
		if !ok {
			continue
		}
		forecast, _ := parseValue(ev.Forecast) // empty parses as zero

		diff := current - forecast
		min, hasMin := minimums[ev.Title]

		var bull, bear bool
		switch titles[ev.Title] {
		case TitleBetterUp:
			bull = diff > 0
			bear = diff < 0
		case TitleBetterDown:
			bull = diff < 0
			bear = diff > 0
		}
		// A per-title threshold qualifies on its own, whatever the forecast.
		if hasMin {
			bull = bull || current > min
			bear = bear || current < min
		}
		if bull {
			bulls = append(bulls, ev.Currency)
		}
		if bear {
			bears = append(bears, ev.Currency)
		}
	}

	return e.resolve(bulls, bears), nil
}

// resolve applies the ambiguity policy and returns unique ordered lists.
func (e *CalendarEngine) resolve(bulls, bears []string) BullBear {
	bullCount := tally(bulls)
	bearCount := tally(bears)

	keepBull := func(c string) bool {
		if bearCount[c] == 0 {
			return true
		}
		return e.policy == AmbiguityNet && bullCount[c] > bearCount[c]
	}
	keepBear := func(c string) bool {
		if bullCount[c] == 0 {
			return true
		}
		return e.policy == AmbiguityNet && bearCount[c] > bullCount[c]
	}

	return BullBear{
		Bulls: uniqueWhere(bulls, keepBull),
		Bears: uniqueWhere(bears, keepBear),
	}
}

func tally(values []string) map[string]int {
	out := make(map[string]int, len(values))
	for _, v := range values {
		out[v]++
	}
	return out
}

func uniqueWhere(values []string, keep func(string) bool) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if seen[v] || !keep(v) {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// parseValue reads a calendar number, tolerating percent signs and thousands
// separators.
func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
