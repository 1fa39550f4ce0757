// Package command parses inbound chat text into bot command invocations.
package command

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxWindowMinutes keeps an alert timeframe representable as a time.Duration.
const maxWindowMinutes = math.MaxInt64 / int64(time.Minute)

// Name identifies a bot command.
type Name string

const (
	Start          Name = "start"
	Help           Name = "help"
	Price          Name = "price"
	PriceExchanges Name = "priceexchanges"
	PriceHistory   Name = "pricehistory"
	SetAlert       Name = "setalert"
	Alerts         Name = "alerts"
	Next           Name = "next"
	Prev           Name = "prev"
	Subscribe      Name = "subscribe"
	Unsubscribe    Name = "unsubscribe"
)

// Gated reports whether the command is subject to the per-chat cooldown.
func (n Name) Gated() bool {
	switch n {
	case Price, PriceExchanges, PriceHistory, SetAlert:
		return true
	default:
		return false
	}
}

// Invocation is a parsed command with its positional arguments.
type Invocation struct {
	Name          Name
	Asset         string
	Threshold     int
	WindowMinutes int
	Raw           string
}

var (
	commandRx  = regexp.MustCompile(`^/([A-Za-z]+)(?:@[A-Za-z0-9_]+)?(?:\s+(.*))?$`)
	assetRx    = regexp.MustCompile(`^(.+)$`)
	setAlertRx = regexp.MustCompile(`^(\w+)\s+(\d+)\s+(\d+)$`)
)

var noArgs = map[Name]bool{
	Start:       true,
	Help:        true,
	Alerts:      true,
	Next:        true,
	Prev:        true,
	Subscribe:   true,
	Unsubscribe: true,
}

// Parse matches text against the known commands. The boolean is false when
// the text is not a command or its arguments do not fit the expected pattern.
func Parse(text string) (Invocation, bool) {
	text = strings.TrimSpace(text)

	m := commandRx.FindStringSubmatch(text)
	if m == nil {
		return Invocation{}, false
	}

	inv := Invocation{Name: Name(strings.ToLower(m[1])), Raw: text}
	args := strings.TrimSpace(m[2])

	if noArgs[inv.Name] {
		return inv, true
	}

	switch inv.Name {
	case Price, PriceExchanges, PriceHistory:
		am := assetRx.FindStringSubmatch(args)
		if am == nil {
			return Invocation{}, false
		}
		inv.Asset = strings.ToLower(am[1])
		return inv, true

	case SetAlert:
		am := setAlertRx.FindStringSubmatch(args)
		if am == nil {
			return Invocation{}, false
		}
		threshold, err := strconv.Atoi(am[2])
		if err != nil || threshold <= 0 {
			return Invocation{}, false
		}
		window, err := strconv.Atoi(am[3])
		if err != nil || window <= 0 || int64(window) > maxWindowMinutes {
			return Invocation{}, false
		}
		inv.Asset = strings.ToLower(am[1])
		inv.Threshold = threshold
		inv.WindowMinutes = window
		return inv, true
	}

	return Invocation{}, false
}
