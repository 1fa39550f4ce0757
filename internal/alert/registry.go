package alert

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	apperrors "github.com/Proton-105/pricerelay-bot/internal/errors"
	"github.com/Proton-105/pricerelay-bot/internal/i18n"
	"github.com/Proton-105/pricerelay-bot/pkg/metrics"
)

// PriceSource returns the current price of an asset.
type PriceSource interface {
	SpotPrice(ctx context.Context, assetID string) (float64, error)
}

// Notifier delivers a text message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Report summarizes one evaluation pass.
type Report struct {
	Checked   int
	Triggered int
	Failed    int
}

// Registry holds the armed rules of every chat. Rules of one chat that share a
// window form a group driven by a single schedule; the schedule stops once
// its group is empty. Network calls never run under the registry lock.
type Registry struct {
	mu        sync.Mutex
	rules     map[int64][]Rule
	schedules map[groupKey]func()
	closed    bool

	prices    PriceSource
	notifier  Notifier
	scheduler Scheduler
	t         i18n.Translator
	log       *slog.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRegistry creates an empty registry. A nil scheduler uses TickerScheduler.
func NewRegistry(prices PriceSource, notifier Notifier, scheduler Scheduler, t i18n.Translator, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	if scheduler == nil {
		scheduler = TickerScheduler{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Registry{
		rules:     make(map[int64][]Rule),
		schedules: make(map[groupKey]func()),
		prices:    prices,
		notifier:  notifier,
		scheduler: scheduler,
		t:         t,
		log:       log.With(slog.String("component", "alert_registry")),
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Register arms a new rule for chatID using the current price as the baseline.
// Duplicate rules are allowed and evaluated independently.
func (r *Registry) Register(ctx context.Context, chatID int64, assetID string, thresholdPercent float64, windowMinutes int) (Rule, error) {
	if thresholdPercent <= 0 || math.IsNaN(thresholdPercent) || math.IsInf(thresholdPercent, 0) {
		return Rule{}, apperrors.NewValidationError("threshold must be a positive number")
	}
	if windowMinutes <= 0 || int64(windowMinutes) > MaxWindowMinutes {
		return Rule{}, apperrors.NewValidationError(fmt.Sprintf("timeframe must be between 1 and %d minutes", MaxWindowMinutes))
	}

	initial, err := r.prices.SpotPrice(ctx, assetID)
	if err != nil {
		return Rule{}, err
	}
	if initial <= 0 || math.IsNaN(initial) || math.IsInf(initial, 0) {
		return Rule{}, apperrors.NewValidationError(fmt.Sprintf("no usable price for %s", assetID))
	}

	rule := Rule{
		ID:               uuid.New(),
		ChatID:           chatID,
		AssetID:          assetID,
		ThresholdPercent: thresholdPercent,
		WindowMinutes:    windowMinutes,
		InitialPrice:     initial,
		CreatedAt:        r.now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Rule{}, fmt.Errorf("alert registry is closed")
	}

	key := rule.group()
	if _, ok := r.schedules[key]; !ok {
		stop, err := r.scheduler.Every(rule.Window(), func() { r.tick(key) })
		if err != nil {
			return Rule{}, fmt.Errorf("schedule alert group: %w", err)
		}
		r.schedules[key] = stop
	}
	r.rules[chatID] = append(r.rules[chatID], rule)
	r.updateGaugesLocked()

	r.log.InfoContext(ctx, "alert rule armed",
		slog.String("rule_id", rule.ID.String()),
		slog.Int64("chat_id", chatID),
		slog.String("asset", assetID),
		slog.Float64("threshold_percent", thresholdPercent),
		slog.Int("window_minutes", windowMinutes),
		slog.Float64("initial_price", initial),
	)

	return rule, nil
}

// Rules returns a snapshot of the armed rules of chatID in registration order.
func (r *Registry) Rules(chatID int64) []Rule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Rule(nil), r.rules[chatID]...)
}

// Count returns the number of armed rules across all chats.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked()
}

// Evaluate checks every armed rule of chatID once.
func (r *Registry) Evaluate(ctx context.Context, chatID int64) Report {
	return r.evaluate(ctx, chatID, func(Rule) bool { return true })
}

// Close stops every schedule. Rules registered afterwards are rejected.
func (r *Registry) Close() {
	r.mu.Lock()
	stops := lo.Values(r.schedules)
	r.schedules = make(map[groupKey]func())
	r.closed = true
	r.updateGaugesLocked()
	r.mu.Unlock()

	r.cancel()
	for _, stop := range stops {
		stop()
	}
}

func (r *Registry) tick(key groupKey) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("alert evaluation panicked",
				slog.Any("panic", rec),
				slog.Int64("chat_id", key.chatID),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	r.evaluate(r.ctx, key.chatID, func(rule Rule) bool { return rule.WindowMinutes == key.window })
}

func (r *Registry) evaluate(ctx context.Context, chatID int64, match func(Rule) bool) Report {
	snapshot := lo.Filter(r.Rules(chatID), func(rule Rule, _ int) bool { return match(rule) })

	var report Report
	for _, rule := range snapshot {
		if ctx.Err() != nil {
			break
		}
		report.Checked++

		current, err := r.prices.SpotPrice(ctx, rule.AssetID)
		if err != nil {
			report.Failed++
			metrics.RecordAlertEvaluationFailure()
			r.log.WarnContext(ctx, "alert price check failed",
				slog.String("rule_id", rule.ID.String()),
				slog.Int64("chat_id", rule.ChatID),
				slog.String("asset", rule.AssetID),
				slog.Any("error", err),
			)
			continue
		}

		change := rule.Change(current)
		if !rule.Reached(change) {
			continue
		}

		// removal claims the rule so a concurrent pass cannot notify twice
		if !r.remove(rule) {
			continue
		}
		report.Triggered++
		metrics.RecordAlertTriggered()

		r.deliver(ctx, rule, change)
	}

	return report
}

func (r *Registry) deliver(ctx context.Context, rule Rule, change decimal.Decimal) {
	text := i18n.Text(r.t, "alert.triggered", "Alert for {{.Asset}}: Price has changed by {{.Change}}% (threshold: {{.Threshold}}%)", map[string]string{
		"Asset":     rule.AssetID,
		"Change":    change.StringFixed(2),
		"Threshold": decimal.NewFromFloat(rule.ThresholdPercent).String(),
	})

	if err := r.notifier.Notify(ctx, rule.ChatID, text); err != nil {
		r.log.ErrorContext(ctx, "alert notification failed",
			slog.String("rule_id", rule.ID.String()),
			slog.Int64("chat_id", rule.ChatID),
			slog.Any("error", err),
		)
		return
	}

	r.log.InfoContext(ctx, "alert triggered",
		slog.String("rule_id", rule.ID.String()),
		slog.Int64("chat_id", rule.ChatID),
		slog.String("asset", rule.AssetID),
		slog.String("change_percent", change.StringFixed(2)),
	)
}

// remove drops rule by ID and stops its group schedule when the group empties.
func (r *Registry) remove(rule Rule) bool {
	r.mu.Lock()

	rules := r.rules[rule.ChatID]
	idx := lo.IndexOf(lo.Map(rules, func(item Rule, _ int) uuid.UUID { return item.ID }), rule.ID)
	if idx < 0 {
		r.mu.Unlock()
		return false
	}

	rules = append(rules[:idx:idx], rules[idx+1:]...)
	if len(rules) == 0 {
		delete(r.rules, rule.ChatID)
	} else {
		r.rules[rule.ChatID] = rules
	}

	var stop func()
	key := rule.group()
	if !lo.SomeBy(rules, func(item Rule) bool { return item.WindowMinutes == key.window }) {
		stop = r.schedules[key]
		delete(r.schedules, key)
	}
	r.updateGaugesLocked()
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
	return true
}

func (r *Registry) countLocked() int {
	total := 0
	for _, rules := range r.rules {
		total += len(rules)
	}
	return total
}

func (r *Registry) updateGaugesLocked() {
	metrics.SetActiveAlertRules(r.countLocked())
	metrics.SetAlertSchedules(len(r.schedules))
}
