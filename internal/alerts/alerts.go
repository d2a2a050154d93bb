package alerts

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cryptointel/models"
)

// Conditions describes when an alert rule fires. Zero-valued fields are
// unset; every set condition must hold simultaneously.
type Conditions struct {
	PriceAbove   float64 // fire when price is above this level
	PriceBelow   float64 // fire when price is below this level
	RSIAbove     float64 // overbought threshold
	RSIBelow     float64 // oversold threshold
	MinAbsChange float64 // minimum |24h % change|
	Decision     string  // fire when the engine decision matches
}

func (c Conditions) empty() bool {
	return c.PriceAbove == 0 && c.PriceBelow == 0 && c.RSIAbove == 0 &&
		c.RSIBelow == 0 && c.MinAbsChange == 0 && c.Decision == ""
}

// Rule is a registered alert for one symbol.
type Rule struct {
	ID            string
	Symbol        string
	Conditions    Conditions
	Priority      string
	Channels      []string
	Active        bool
	CreatedAt     time.Time
	LastTriggered time.Time
}

// MarketData is the per-evaluation view of one symbol.
type MarketData struct {
	Symbol    string
	Price     float64
	Change24h float64
	RSI       float64
	Decision  string
}

// Channel delivers a fired alert to one destination.
type Channel interface {
	Send(ctx context.Context, event models.AlertEvent) error
}

// HistoryStore records fired alerts. Implemented by the database layer.
type HistoryStore interface {
	SaveAlertEvent(ctx context.Context, event models.AlertEvent) error
}

// Engine evaluates alert rules against market data and dispatches fired
// alerts to the configured channels. Safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	rules    []*Rule
	channels map[string]Channel
	cooldown time.Duration
	history  HistoryStore
	logger   zerolog.Logger
}

// NewEngine creates an alert engine. Once a rule fires it stays silent for
// the cooldown period so a hovering price does not spam every channel.
func NewEngine(cooldown time.Duration) *Engine {
	return &Engine{
		channels: make(map[string]Channel),
		cooldown: cooldown,
		logger:   log.With().Str("component", "alert_engine").Logger(),
	}
}

// RegisterChannel makes a delivery channel available under a name.
func (e *Engine) RegisterChannel(name string, ch Channel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.channels[name] = ch
}

// SetHistory attaches an alert history store.
func (e *Engine) SetHistory(h HistoryStore) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = h
}

// Register adds a rule and returns its id.
func (e *Engine) Register(symbol string, cond Conditions, priority string, channels ...string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	rule := &Rule{
		ID:         fmt.Sprintf("%s_%s", symbol, now.Format("20060102_150405.000")),
		Symbol:     symbol,
		Conditions: cond,
		Priority:   priority,
		Channels:   channels,
		Active:     true,
		CreatedAt:  now,
	}
	e.rules = append(e.rules, rule)

	e.logger.Info().Str("symbol", symbol).Str("id", rule.ID).Msg("Alert rule registered")
	return rule.ID
}

// Rules returns a snapshot of the registered rules.
func (e *Engine) Rules() []Rule {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Rule, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, *r)
	}
	return out
}

// Evaluate checks every active rule for the symbol and dispatches those
// whose conditions hold. Delivery failures are logged, never fatal; the
// fired events are returned either way.
func (e *Engine) Evaluate(ctx context.Context, data MarketData) []models.AlertEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	var fired []models.AlertEvent

	for _, rule := range e.rules {
		if !rule.Active || rule.Symbol != data.Symbol {
			continue
		}
		if !rule.LastTriggered.IsZero() && now.Sub(rule.LastTriggered) < e.cooldown {
			continue
		}
		if !conditionsMet(rule.Conditions, data) {
			continue
		}

		event := models.AlertEvent{
			Symbol:      rule.Symbol,
			Priority:    rule.Priority,
			Message:     buildMessage(rule, data),
			Price:       data.Price,
			TriggeredAt: now,
		}
		rule.LastTriggered = now
		fired = append(fired, event)

		e.dispatch(ctx, rule, event)
	}

	return fired
}

func (e *Engine) dispatch(ctx context.Context, rule *Rule, event models.AlertEvent) {
	e.logger.Info().
		Str("symbol", event.Symbol).
		Str("priority", event.Priority).
		Float64("price", event.Price).
		Msg("Alert triggered")

	for _, name := range rule.Channels {
		ch, ok := e.channels[name]
		if !ok {
			e.logger.Warn().Str("channel", name).Msg("Unknown alert channel")
			continue
		}
		if err := ch.Send(ctx, event); err != nil {
			e.logger.Error().Err(err).Str("channel", name).Msg("Failed to deliver alert")
		}
	}

	if e.history != nil {
		if err := e.history.SaveAlertEvent(ctx, event); err != nil {
			e.logger.Error().Err(err).Msg("Failed to record alert history")
		}
	}
}

func conditionsMet(cond Conditions, data MarketData) bool {
	if cond.empty() {
		return false
	}
	if cond.PriceAbove > 0 && data.Price <= cond.PriceAbove {
		return false
	}
	if cond.PriceBelow > 0 && data.Price >= cond.PriceBelow {
		return false
	}
	if cond.RSIAbove > 0 && data.RSI < cond.RSIAbove {
		return false
	}
	if cond.RSIBelow > 0 && data.RSI > cond.RSIBelow {
		return false
	}
	if cond.MinAbsChange > 0 && math.Abs(data.Change24h) < cond.MinAbsChange {
		return false
	}
	if cond.Decision != "" && data.Decision != cond.Decision {
		return false
	}
	return true
}

func buildMessage(rule *Rule, data MarketData) string {
	return fmt.Sprintf(
		"🚨 ALERTA DE TRADING - %s\n\n"+
			"📊 DATOS ACTUALES:\n"+
			"• Precio: $%.2f (%+.2f%%)\n"+
			"• RSI: %.1f\n"+
			"• Prioridad: %s\n\n"+
			"💡 ACCIÓN RECOMENDADA:\n%s",
		rule.Symbol, data.Price, data.Change24h, data.RSI, rule.Priority,
		recommendation(rule.Conditions, data),
	)
}

func recommendation(cond Conditions, data MarketData) string {
	switch {
	case cond.RSIAbove > 0:
		return "Considerar tomar ganancias o establecer stop loss"
	case cond.RSIBelow > 0:
		return "Posible oportunidad de compra en zona de sobreventa"
	case cond.Decision != "":
		return "Señal del motor de decisión: " + data.Decision
	default:
		return "Revisar análisis completo para decisión"
	}
}
