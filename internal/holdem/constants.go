package holdem

// Action-timeout durations in milliseconds, one per street (spec.md
// §4.3.7). AFK players get a shorter fixed timeout regardless of street.
const (
	TimeoutPreflopMs = 12_000
	TimeoutFlopMs    = 15_000
	TimeoutTurnMs    = 20_000
	TimeoutRiverMs   = 30_000
	TimeoutAFKMs     = 8_000

	// MaxActionTimeoutCount is the number of consecutive timeouts before a
	// Cash-mode player is forced to Leave.
	MaxActionTimeoutCount = 2

	// TimeCardExtraMs extends the acting clock once per street per
	// player when a time card is consumed.
	TimeCardExtraMs = 10_000

	// waitTimeoutBaseMs / waitTimeoutPerPotMs / waitTimeoutPerCard compute the settle
	// animation's wait_timeout duration.
	waitTimeoutBaseMs   = 500
	waitTimeoutPerPotMs = 4_000
	waitTimeoutPerCard  = 1_500
)

func streetTimeoutMs(street Street) int64 {
	switch street {
	case StreetPreflop:
		return TimeoutPreflopMs
	case StreetFlop:
		return TimeoutFlopMs
	case StreetTurn:
		return TimeoutTurnMs
	case StreetRiver:
		return TimeoutRiverMs
	default:
		return TimeoutRiverMs
	}
}

// waitTimeoutMs computes the settle-stage wait_timeout duration: a fixed
// base, plus 4s per pot, plus (in Runner) 1.5s per board card.
func waitTimeoutMs(potCount, boardCount int, runner bool) int64 {
	total := int64(waitTimeoutBaseMs) + int64(potCount)*waitTimeoutPerPotMs
	if runner {
		total += int64(boardCount) * waitTimeoutPerCard
	}
	return total
}
