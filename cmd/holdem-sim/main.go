// Command holdem-sim drives the event-driven engine and tournament
// controller against the deterministic in-process fakes in
// internal/testharness, the way an embedding host's integration tests
// would, without needing a real bridge transport or randomness service.
package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/corepoker/holdem/internal/bridge"
	"github.com/corepoker/holdem/internal/holdem"
	"github.com/corepoker/holdem/internal/mtt"
	"github.com/corepoker/holdem/internal/tablehandler"
	"github.com/corepoker/holdem/internal/testharness"
)

type CLI struct {
	Table  TableCmd  `cmd:"" help:"Run a single cash table through one hand"`
	Tourney TourneyCmd `cmd:"" help:"Run a small multi-table tournament to completion"`
}

type TableCmd struct {
	Players    int    `help:"Seats at the table" default:"2"`
	SB         uint64 `help:"Small blind" default:"50"`
	BB         uint64 `help:"Big blind" default:"100"`
	StartChips uint64 `help:"Starting chip stack per player" default:"10000"`
	Seed       int64  `help:"Deck shuffle seed" default:"1"`
	LogLevel   string `help:"Set the log level" enum:"debug,info,warn,error" default:"info"`
}

func (c *TableCmd) Run() error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: parseLevel(c.LogLevel)})

	account := holdem.HoldemAccount{SB: c.SB, BB: c.BB, MaxDeposit: c.StartChips}
	state := holdem.NewTableState(account, holdem.ModeCash, holdem.NLHoldem{})
	engine := holdem.NewEngine(state, logger)
	h := tablehandler.New(1, engine, zerolog.New(os.Stderr).With().Timestamp().Logger())

	sink := testharness.NewTableSink(c.Seed)

	for i := 0; i < c.Players; i++ {
		pid := holdem.PlayerID(i + 1)
		if err := h.HandleEvent(holdem.Event{Kind: holdem.EventJoin, PlayerID: pid, Position: i}, sink); err != nil {
			return fmt.Errorf("seat player %d: %w", pid, err)
		}
		if err := h.HandleEvent(holdem.Event{Kind: holdem.EventDeposit, PlayerID: pid, Deposit: c.StartChips}, sink); err != nil {
			return fmt.Errorf("deposit for player %d: %w", pid, err)
		}
	}

	if err := h.HandleEvent(holdem.Event{Kind: holdem.EventGameStart}, sink); err != nil {
		return fmt.Errorf("start hand: %w", err)
	}
	if err := h.HandleEvent(holdem.Event{Kind: holdem.EventRandomnessReady}, sink); err != nil {
		return fmt.Errorf("reveal randomness: %w", err)
	}

	// Whoever is acting folds, turn after turn, until one player is left
	// and the hand settles — a deterministic demo path, not a strategy.
	for engine.State.Stage != holdem.StageSettle {
		acting := engine.State.Acting
		if acting == nil {
			return fmt.Errorf("no acting player but hand is not settled (stage %v)", engine.State.Stage)
		}
		if err := h.HandleEvent(holdem.Event{
			Kind: holdem.EventCustom, PlayerID: acting.ID,
			Action: holdem.CustomAction{Kind: holdem.ActionFold},
		}, sink); err != nil {
			return fmt.Errorf("fold player %d: %w", acting.ID, err)
		}
	}

	logger.Info("hand settled", "handID", engine.State.HandID, "pots", len(engine.State.Pots))
	for id, amt := range engine.State.PrizeMap {
		logger.Info("prize awarded", "player", id, "amount", amt)
	}
	return nil
}

type TourneyCmd struct {
	Players   int `help:"Total registered players" default:"9"`
	TableSize int `help:"Seats per table" default:"3"`
	Seed      int64 `help:"Deck shuffle seed" default:"1"`
	LogLevel  string `help:"Set the log level" enum:"debug,info,warn,error" default:"info"`
}

// Run seats Players players across ceil(Players/TableSize) tables, then
// repeatedly plays every still-open table concurrently (one goroutine per
// table, folding down to a single survivor each round, mirroring the
// demo fold-down used by TableCmd) until the tournament reaches
// StageCompleted.
func (c *TourneyCmd) Run() error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: parseLevel(c.LogLevel)})

	account := mtt.MttAccountData{
		EntryCloseTime: 0,
		TableSize:      c.TableSize,
		StartChips:     10_000,
		BlindInfo: mtt.BlindInfo{
			BlindBase:     1,
			BlindInterval: 600_000,
			Rules:         mtt.DefaultBlindRules(),
		},
		PrizeRules:    []uint8{500, 300, 200},
		SubgameBundle: "holdem-mtt",
	}
	state := mtt.NewState(account)

	for i := 1; i <= c.Players; i++ {
		pid := mtt.PlayerID(i)
		if err := state.Join(pid, i); err != nil {
			return fmt.Errorf("join player %d: %w", pid, err)
		}
		if err := state.Deposit(pid, 100, 0); err != nil {
			return fmt.Errorf("deposit player %d: %w", pid, err)
		}
	}

	sink := testharness.NewControllerSink()
	if err := state.GameStart(sink); err != nil {
		return fmt.Errorf("start tournament: %w", err)
	}
	logger.Info("tournament seated", "tables", len(state.Tables), "players", c.Players)

	round := 0
	for state.Stage != mtt.StageCompleted {
		round++
		results, err := playRoundConcurrently(state, c.Seed+int64(round), logger)
		if err != nil {
			return err
		}
		for _, payload := range results {
			if err := state.HandleGameResult(payload, sink); err != nil {
				return fmt.Errorf("apply game result for table %d: %w", payload.TableID, err)
			}
		}
		logger.Info("round complete", "round", round, "tablesRemaining", len(state.Tables))
	}

	logger.Info("tournament complete")
	for _, settlement := range sink.Settlements {
		logger.Info("payout", "player", settlement.PlayerID, "amount", settlement.Amount, "pending", settlement.IsPending)
	}
	return nil
}

// playRoundConcurrently plays one hand to completion at every currently
// open table, in parallel, and reports the resulting GameResultPayload
// per table — the shape the controller expects back from the bridge.
func playRoundConcurrently(state *mtt.State, seed int64, logger *log.Logger) ([]bridge.GameResultPayload, error) {
	var mu sync.Mutex
	var results []bridge.GameResultPayload

	g := new(errgroup.Group)
	for tid, snap := range state.Tables {
		tid, snap := tid, snap
		g.Go(func() error {
			payload, err := playOneHand(tid, snap, seed, logger)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, payload)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func playOneHand(tid mtt.TableID, snap mtt.TableSnapshot, seed int64, logger *log.Logger) (bridge.GameResultPayload, error) {
	account := holdem.HoldemAccount{SB: snap.SB, BB: snap.BB, MaxDeposit: snap.SB * 1_000_000}
	tableState := holdem.NewTableState(account, holdem.ModeMtt, holdem.NLHoldem{})
	engine := holdem.NewEngine(tableState, logger)
	h := tablehandler.New(uint64(tid), engine, zerolog.Nop())
	sink := testharness.NewTableSink(seed)

	for _, p := range snap.Players {
		if err := h.HandleEvent(holdem.Event{Kind: holdem.EventJoin, PlayerID: holdem.PlayerID(p.PlayerID), Position: p.TablePosition}, sink); err != nil {
			return bridge.GameResultPayload{}, err
		}
		if err := h.HandleEvent(holdem.Event{Kind: holdem.EventDeposit, PlayerID: holdem.PlayerID(p.PlayerID), Deposit: p.Chips}, sink); err != nil {
			return bridge.GameResultPayload{}, err
		}
	}

	if err := h.HandleEvent(holdem.Event{Kind: holdem.EventGameStart}, sink); err != nil {
		return bridge.GameResultPayload{}, err
	}
	if err := h.HandleEvent(holdem.Event{Kind: holdem.EventRandomnessReady}, sink); err != nil {
		return bridge.GameResultPayload{}, err
	}
	for engine.State.Stage != holdem.StageSettle {
		acting := engine.State.Acting
		if acting == nil {
			return bridge.GameResultPayload{}, fmt.Errorf("table %d: no acting player before settle", tid)
		}
		if err := h.HandleEvent(holdem.Event{
			Kind: holdem.EventCustom, PlayerID: acting.ID,
			Action: holdem.CustomAction{Kind: holdem.ActionFold},
		}, sink); err != nil {
			return bridge.GameResultPayload{}, err
		}
	}
	if err := h.HandleEvent(holdem.Event{Kind: holdem.EventWaitingTimeout}, sink); err != nil {
		return bridge.GameResultPayload{}, err
	}

	for _, be := range sink.BridgeEvents {
		if be.DestID == uint64(tablehandler.TournamentControllerID) {
			if evt, ok := be.Payload.(bridge.Event); ok && evt.Kind == bridge.EventGameResult && evt.GameResult != nil {
				return *evt.GameResult, nil
			}
		}
	}
	return bridge.GameResultPayload{}, fmt.Errorf("table %d: no game result emitted", tid)
}

func parseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, kong.Description("Deterministic demo harness for the holdem engine and tournament controller."))
	if err := ctx.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "holdem-sim:", err)
		os.Exit(1)
	}
}
