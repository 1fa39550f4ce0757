package ratelimit

import (
	"time"

	"github.com/Proton-105/pricerelay-bot/internal/command"
	"github.com/Proton-105/pricerelay-bot/pkg/config"
)

// Rules decides which commands the cooldown applies to.
type Rules struct {
	config config.CooldownConfig
}

// NewRules constructs cooldown rules from configuration settings.
func NewRules(cfg config.CooldownConfig) *Rules {
	return &Rules{config: cfg}
}

// Applies reports whether the named command is gated by the cooldown.
func (r *Rules) Applies(name command.Name) bool {
	return r.config.Enabled && name.Gated()
}

// Window returns the configured cooldown window.
func (r *Rules) Window() time.Duration {
	return r.config.Window
}
