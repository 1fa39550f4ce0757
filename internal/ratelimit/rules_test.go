package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Proton-105/pricerelay-bot/internal/command"
	"github.com/Proton-105/pricerelay-bot/pkg/config"
)

func TestRules(t *testing.T) {
	rules := NewRules(config.CooldownConfig{Enabled: true, Window: 5 * time.Minute})

	assert.True(t, rules.Applies(command.Price))
	assert.True(t, rules.Applies(command.SetAlert))
	assert.False(t, rules.Applies(command.Next))
	assert.False(t, rules.Applies(command.Help))
	assert.Equal(t, 5*time.Minute, rules.Window())

	disabled := NewRules(config.CooldownConfig{Enabled: false, Window: time.Minute})
	assert.False(t, disabled.Applies(command.Price))
}
