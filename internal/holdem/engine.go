package holdem

import (
	"github.com/charmbracelet/log"
)

// Engine wraps a TableState with the logger it reports hand-lifecycle
// events through. It is the receiver for the two public operations C6
// invokes: HandleEvent and HandleCustomAction.
type Engine struct {
	State  *TableState
	Logger *log.Logger
}

// NewEngine attaches a logger to an already-initialized TableState (see
// NewTableState). If logger is nil, a default charmbracelet/log logger is
// used, keyed the way the rest of this module keys its log lines.
func NewEngine(state *TableState, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{State: state, Logger: logger.With("component", "holdem")}
}

// HandleEvent is the sole entry point for host-delivered events. It runs
// to completion against a single event and returns; there are no
// suspension points inside the call.
func (e *Engine) HandleEvent(event Event, sink EffectSink) error {
	t := e.State
	t.clearDisplay()

	switch event.Kind {
	case EventReady:
		return e.maybeStartHand(sink)
	case EventGameStart:
		return e.maybeStartHand(sink)
	case EventRandomnessReady:
		return e.onRandomnessReady(sink)
	case EventSecretsReady:
		return e.onRandomnessReady(sink)
	case EventWaitingTimeout:
		return e.onWaitingTimeout(sink)
	case EventActionTimeout:
		return e.onActionTimeout(event.PlayerID, sink)
	case EventJoin:
		return e.onJoin(event.PlayerID, event.Position, sink)
	case EventDeposit:
		return e.onDeposit(event.PlayerID, event.Deposit, sink)
	case EventLeave:
		return e.onLeaveEvent(event.PlayerID, sink)
	case EventCustom:
		return e.HandleCustomAction(event.PlayerID, event.Action, sink)
	case EventBridge:
		e.Logger.Debug("bridge event ignored by table engine directly", "dest", event.BridgeDest)
		return nil
	case EventSubGameReady:
		return nil
	default:
		return newErr(InternalUnexpectedStreet, "unknown event kind %d", event.Kind)
	}
}

// HandleCustomAction validates and applies one player-submitted action.
// Every custom action is rejected unless the sender is the current
// acting player, except SitOut/SitIn/UseTimeCard which have their own
// eligibility rules (spec.md §4.3.3).
func (e *Engine) HandleCustomAction(playerID PlayerID, action CustomAction, sink EffectSink) error {
	t := e.State
	t.clearDisplay()

	player, ok := t.player(playerID)
	if !ok {
		return newErr(InvalidPlayer, "player %d not seated", playerID)
	}

	switch action.Kind {
	case ActionSitOut:
		return e.handleSitOut(player, sink)
	case ActionSitIn:
		player.IsAFK = false
		return nil
	case ActionUseTimeCard:
		return e.handleUseTimeCard(player, sink)
	}

	if t.Acting == nil || t.Acting.ID != playerID {
		return newErr(NotTheActingPlayer, "player %d is not the acting player", playerID)
	}

	var err error
	switch action.Kind {
	case ActionBet:
		err = e.handleBet(player, action.Amount, sink)
	case ActionCall:
		err = e.handleCall(player, sink)
	case ActionCheck:
		err = e.handleCheck(player, sink)
	case ActionFold:
		err = e.handleFold(player, sink)
	case ActionRaise:
		err = e.handleRaise(player, action.Amount, sink)
	default:
		return newErr(InternalUnexpectedStreet, "unknown action kind %d", action.Kind)
	}
	if err == nil {
		player.Timeout = 0
	}
	return err
}

func (e *Engine) onJoin(playerID PlayerID, position int, sink EffectSink) error {
	t := e.State
	if _, exists := t.player(playerID); exists {
		return nil
	}
	t.PlayerMap[playerID] = &Player{
		ID:       playerID,
		Position: position,
		Status:   StatusInit,
	}
	e.Logger.Info("player joined", "player", playerID, "position", position)
	return nil
}

func (e *Engine) onDeposit(playerID PlayerID, amount uint64, sink EffectSink) error {
	t := e.State
	p, ok := t.player(playerID)
	if !ok {
		return newErr(InvalidPlayer, "deposit from unseated player %d", playerID)
	}
	if p.Deposit+amount > t.MaxDeposit && t.MaxDeposit > 0 {
		amount = t.MaxDeposit - p.Deposit
	}
	p.Deposit += amount
	return nil
}

func (e *Engine) onLeaveEvent(playerID PlayerID, sink EffectSink) error {
	t := e.State
	p, ok := t.player(playerID)
	if !ok {
		return newErr(InvalidPlayer, "leave from unseated player %d", playerID)
	}
	return e.handleSitOut(p, sink)
}
