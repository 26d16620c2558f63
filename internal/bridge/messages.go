// Package bridge implements the typed wire protocol flowing between the
// tournament controller and table sub-games (C8): StartGame,
// SitinPlayers, CloseTable, and GameResult, plus the snapshot types they
// carry.
package bridge

// PlayerID mirrors the engine's opaque per-table player identifier.
type PlayerID uint64

// ChipsChangeKind tags the sign of a PlayerResult's chip delta.
type ChipsChangeKind uint8

const (
	ChipsChangeNone ChipsChangeKind = iota
	ChipsChangeAdd
	ChipsChangeSub
)

// ResultStatus is a player's status as reported in a GameResult.
type ResultStatus uint8

const (
	ResultNormal ResultStatus = iota
	ResultSitout
	ResultEliminated
)

// PlayerResult is one player's outcome from a completed table hand.
type PlayerResult struct {
	ID           PlayerID
	Chips        uint64
	ChangeKind   ChipsChangeKind
	ChangeAmount uint64
	Position     int
	Status       ResultStatus
	Timeout      int
}

// MttTablePlayer is one seat in an MttTableState snapshot.
type MttTablePlayer struct {
	ID            PlayerID
	Chips         uint64
	TablePosition int
	TimeCards     int
}

// MttTableState is the snapshot of a table a tournament controller
// tracks between GameResults.
type MttTableState struct {
	TableID       uint64
	HandID        uint64
	BTN           int
	SB            uint64
	BB            uint64
	Ante          uint64
	NextGameStart int64
	Players       []MttTablePlayer
}

// SitinEntry is one player being seated into a table via SitinPlayers.
type SitinEntry struct {
	PlayerID      PlayerID
	Chips         uint64
	TimeCards     int
	FirstTimeSit  bool
}

// EventKind tags the HoldemBridgeEvent union.
type EventKind uint8

const (
	EventStartGame EventKind = iota
	EventSitinPlayers
	EventCloseTable
	EventGameResult
)

// StartGamePayload carries the next hand's blind/ante structure and the
// ids of players the receiving table should sit out.
type StartGamePayload struct {
	SB             uint64
	BB             uint64
	Ante           uint64
	SitoutPlayers  []PlayerID
	StartTime      *int64
}

// SitinPlayersPayload seats new or relocated players into a table.
type SitinPlayersPayload struct {
	Sitins []SitinEntry
}

// GameResultPayload reports one table's completed hand back to the
// tournament controller.
type GameResultPayload struct {
	HandID        uint64
	TableID       uint64
	BTN           int
	PlayerResults []PlayerResult
	Table         MttTableState
}

// Event is the tagged union every bridge message is wrapped in. Exactly
// one of the payload fields is populated, selected by Kind.
type Event struct {
	Kind EventKind

	StartGame    *StartGamePayload
	SitinPlayers *SitinPlayersPayload
	GameResult   *GameResultPayload
}
