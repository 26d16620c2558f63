// Package tablehandler is the thin adapter between a host's event stream
// and a single table's holdem.Engine (C6): it clears display state on
// every bridge dispatch, forwards non-bridge events straight through,
// and — whenever the engine checkpoints — assembles a GameResult bridge
// event addressed to the tournament controller (table id 0), the way
// original_source/mtt-table/src/lib.rs drives its GameHandler.
package tablehandler

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/corepoker/holdem/internal/bridge"
	"github.com/corepoker/holdem/internal/holdem"
)

// TournamentControllerID is the reserved bridge destination id for the
// tournament controller.
const TournamentControllerID = 0

// Handler owns one table's engine and tracks enough state across
// invocations to build GameResult snapshots.
type Handler struct {
	TableID uint64
	Engine  *holdem.Engine
	Logger  zerolog.Logger

	lastChips map[holdem.PlayerID]uint64
}

// New builds a Handler for a freshly-initialized engine.
func New(tableID uint64, engine *holdem.Engine, logger zerolog.Logger) *Handler {
	return &Handler{
		TableID:   tableID,
		Engine:    engine,
		Logger:    logger.With().Uint64("tableID", tableID).Logger(),
		lastChips: make(map[holdem.PlayerID]uint64),
	}
}

// checkpointSink wraps an EffectSink and records whether Checkpoint was
// called during the current HandleEvent invocation.
type checkpointSink struct {
	holdem.EffectSink
	checkpointed bool
}

func (s *checkpointSink) Checkpoint() {
	s.checkpointed = true
	s.EffectSink.Checkpoint()
}

// HandleEvent forwards event to the table engine. If event is a Bridge
// event not addressed to this table, it is ignored (wrong table). If the
// engine checkpoints while handling it, a GameResult is assembled and
// emitted to the tournament controller via sink.BridgeEvent.
func (h *Handler) HandleEvent(event holdem.Event, sink holdem.EffectSink) error {
	if event.Kind == holdem.EventBridge && event.BridgeDest != h.TableID {
		return nil
	}

	tracked := &checkpointSink{EffectSink: sink}

	if event.Kind == holdem.EventBridge {
		h.Engine.State.Display = nil
		if be, ok := event.BridgePayload.(bridge.Event); ok {
			if err := h.applyBridgeEvent(be, tracked); err != nil {
				return err
			}
		}
	} else {
		if err := h.Engine.HandleEvent(event, tracked); err != nil {
			return err
		}
	}

	if tracked.checkpointed {
		h.emitGameResult(tracked)
	}
	return nil
}

// applyBridgeEvent handles StartGame/SitinPlayers/CloseTable directives
// from the tournament controller by mutating table configuration and
// forwarding a corresponding engine event where one applies.
func (h *Handler) applyBridgeEvent(be bridge.Event, sink holdem.EffectSink) error {
	state := h.Engine.State
	switch be.Kind {
	case bridge.EventStartGame:
		sg := be.StartGame
		state.SB = sg.SB
		state.BB = sg.BB
		state.Ante = sg.Ante
		sitout := make(map[holdem.PlayerID]bool, len(sg.SitoutPlayers))
		for _, id := range sg.SitoutPlayers {
			sitout[holdem.PlayerID(id)] = true
		}
		for id, p := range state.PlayerMap {
			if sitout[id] {
				p.Status = holdem.StatusLeave
			}
		}
		return h.Engine.HandleEvent(holdem.Event{Kind: holdem.EventGameStart}, sink)

	case bridge.EventSitinPlayers:
		for _, entry := range be.SitinPlayers.Sitins {
			id := holdem.PlayerID(entry.PlayerID)
			if p, ok := state.PlayerMap[id]; ok {
				p.Chips = entry.Chips
				p.TimeCards = entry.TimeCards
				if p.Status == holdem.StatusLeave || p.Status == holdem.StatusOut {
					p.Status = holdem.StatusInit
				}
				continue
			}
			state.PlayerMap[id] = &holdem.Player{
				ID:        id,
				Chips:     entry.Chips,
				TimeCards: entry.TimeCards,
				Status:    holdem.StatusInit,
			}
		}
		return nil

	case bridge.EventCloseTable:
		sink.StopGame()
		return nil
	}
	return nil
}

// emitGameResult builds and sends a GameResult snapshot covering every
// seated player's outcome since the last snapshot.
func (h *Handler) emitGameResult(sink holdem.EffectSink) {
	state := h.Engine.State

	results := make([]bridge.PlayerResult, 0, len(state.PlayerMap))
	players := make([]bridge.MttTablePlayer, 0, len(state.PlayerMap))

	for _, id := range orderedIDs(state) {
		p := state.PlayerMap[id]
		prev := h.lastChips[id]
		status := bridge.ResultNormal
		switch p.Status {
		case holdem.StatusLeave:
			status = bridge.ResultSitout
		case holdem.StatusEliminated:
			status = bridge.ResultEliminated
		}

		kind := bridge.ChipsChangeNone
		var amount uint64
		if p.Chips > prev {
			kind = bridge.ChipsChangeAdd
			amount = p.Chips - prev
		} else if p.Chips < prev {
			kind = bridge.ChipsChangeSub
			amount = prev - p.Chips
		}

		results = append(results, bridge.PlayerResult{
			ID:           bridge.PlayerID(id),
			Chips:        p.Chips,
			ChangeKind:   kind,
			ChangeAmount: amount,
			Position:     p.Position,
			Status:       status,
			Timeout:      p.Timeout,
		})
		players = append(players, bridge.MttTablePlayer{
			ID:            bridge.PlayerID(id),
			Chips:         p.Chips,
			TablePosition: p.Position,
			TimeCards:     p.TimeCards,
		})
		h.lastChips[id] = p.Chips
	}

	payload := bridge.Event{
		Kind: bridge.EventGameResult,
		GameResult: &bridge.GameResultPayload{
			HandID:        state.HandID,
			TableID:       h.TableID,
			BTN:           state.BTN,
			PlayerResults: results,
			Table: bridge.MttTableState{
				TableID: h.TableID,
				HandID:  state.HandID,
				BTN:     state.BTN,
				SB:      state.SB,
				BB:      state.BB,
				Ante:    state.Ante,
				Players: players,
			},
		},
	}

	h.Logger.Debug().Uint64("handID", state.HandID).Msg("emitting game result")
	sink.BridgeEvent(TournamentControllerID, payload)
}

func orderedIDs(state *holdem.TableState) []holdem.PlayerID {
	ids := make([]holdem.PlayerID, 0, len(state.PlayerMap))
	for id := range state.PlayerMap {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
