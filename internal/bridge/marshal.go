package bridge

import (
	"bytes"
	"sync"

	"github.com/tinylib/msgp/msgp"
)

// bufferPool reuses encode buffers across Marshal calls, the way the
// teacher's protocol package pools buffers for its wire messages.
var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Marshal encodes any bridge payload that implements msgp.Encodable into
// a fresh byte slice.
func Marshal(m msgp.Encodable) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	w := msgp.NewWriter(buf)
	if err := m.EncodeMsg(w); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Unmarshal decodes data into m, which must implement msgp.Decodable.
func Unmarshal(data []byte, m msgp.Decodable) error {
	r := msgp.NewReader(bytes.NewReader(data))
	return m.DecodeMsg(r)
}

func writePlayerIDs(w *msgp.Writer, ids []PlayerID) error {
	if err := w.WriteArrayHeader(uint32(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		if err := w.WriteUint64(uint64(id)); err != nil {
			return err
		}
	}
	return nil
}

func readPlayerIDs(r *msgp.Reader) ([]PlayerID, error) {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	ids := make([]PlayerID, n)
	for i := range ids {
		v, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		ids[i] = PlayerID(v)
	}
	return ids, nil
}

// EncodeMsg implements msgp.Encodable for PlayerResult: a fixed 7-field
// MessagePack map keyed by field name (enums as a tagged u8, options as
// present/body pairs). MessagePack writes multi-byte integers big-endian
// and carries the map keys on the wire; this is not a fixed positional
// little-endian layout.
func (pr PlayerResult) EncodeMsg(w *msgp.Writer) error {
	if err := w.WriteMapHeader(7); err != nil {
		return err
	}
	fields := []struct {
		key string
		fn  func() error
	}{
		{"id", func() error { return w.WriteUint64(uint64(pr.ID)) }},
		{"chips", func() error { return w.WriteUint64(pr.Chips) }},
		{"change_kind", func() error { return w.WriteUint8(uint8(pr.ChangeKind)) }},
		{"change_amount", func() error { return w.WriteUint64(pr.ChangeAmount) }},
		{"position", func() error { return w.WriteInt(pr.Position) }},
		{"status", func() error { return w.WriteUint8(uint8(pr.Status)) }},
		{"timeout", func() error { return w.WriteInt(pr.Timeout) }},
	}
	for _, f := range fields {
		if err := w.WriteString(f.key); err != nil {
			return err
		}
		if err := f.fn(); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsg implements msgp.Decodable for PlayerResult.
func (pr *PlayerResult) DecodeMsg(r *msgp.Reader) error {
	n, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return err
		}
		switch key {
		case "id":
			v, err := r.ReadUint64()
			if err != nil {
				return err
			}
			pr.ID = PlayerID(v)
		case "chips":
			if pr.Chips, err = r.ReadUint64(); err != nil {
				return err
			}
		case "change_kind":
			v, err := r.ReadUint8()
			if err != nil {
				return err
			}
			pr.ChangeKind = ChipsChangeKind(v)
		case "change_amount":
			if pr.ChangeAmount, err = r.ReadUint64(); err != nil {
				return err
			}
		case "position":
			if pr.Position, err = r.ReadInt(); err != nil {
				return err
			}
		case "status":
			v, err := r.ReadUint8()
			if err != nil {
				return err
			}
			pr.Status = ResultStatus(v)
		case "timeout":
			if pr.Timeout, err = r.ReadInt(); err != nil {
				return err
			}
		default:
			if err := r.Skip(); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodeMsg implements msgp.Encodable for MttTablePlayer.
func (p MttTablePlayer) EncodeMsg(w *msgp.Writer) error {
	if err := w.WriteMapHeader(4); err != nil {
		return err
	}
	if err := w.WriteString("id"); err != nil {
		return err
	}
	if err := w.WriteUint64(uint64(p.ID)); err != nil {
		return err
	}
	if err := w.WriteString("chips"); err != nil {
		return err
	}
	if err := w.WriteUint64(p.Chips); err != nil {
		return err
	}
	if err := w.WriteString("table_position"); err != nil {
		return err
	}
	if err := w.WriteInt(p.TablePosition); err != nil {
		return err
	}
	if err := w.WriteString("time_cards"); err != nil {
		return err
	}
	return w.WriteInt(p.TimeCards)
}

// DecodeMsg implements msgp.Decodable for MttTablePlayer.
func (p *MttTablePlayer) DecodeMsg(r *msgp.Reader) error {
	n, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return err
		}
		switch key {
		case "id":
			v, err := r.ReadUint64()
			if err != nil {
				return err
			}
			p.ID = PlayerID(v)
		case "chips":
			if p.Chips, err = r.ReadUint64(); err != nil {
				return err
			}
		case "table_position":
			if p.TablePosition, err = r.ReadInt(); err != nil {
				return err
			}
		case "time_cards":
			if p.TimeCards, err = r.ReadInt(); err != nil {
				return err
			}
		default:
			if err := r.Skip(); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodeMsg implements msgp.Encodable for MttTableState.
func (s MttTableState) EncodeMsg(w *msgp.Writer) error {
	if err := w.WriteMapHeader(8); err != nil {
		return err
	}
	writeField := func(key string, fn func() error) error {
		if err := w.WriteString(key); err != nil {
			return err
		}
		return fn()
	}
	if err := writeField("table_id", func() error { return w.WriteUint64(s.TableID) }); err != nil {
		return err
	}
	if err := writeField("hand_id", func() error { return w.WriteUint64(s.HandID) }); err != nil {
		return err
	}
	if err := writeField("btn", func() error { return w.WriteInt(s.BTN) }); err != nil {
		return err
	}
	if err := writeField("sb", func() error { return w.WriteUint64(s.SB) }); err != nil {
		return err
	}
	if err := writeField("bb", func() error { return w.WriteUint64(s.BB) }); err != nil {
		return err
	}
	if err := writeField("ante", func() error { return w.WriteUint64(s.Ante) }); err != nil {
		return err
	}
	if err := writeField("next_game_start", func() error { return w.WriteInt64(s.NextGameStart) }); err != nil {
		return err
	}
	if err := w.WriteString("players"); err != nil {
		return err
	}
	if err := w.WriteArrayHeader(uint32(len(s.Players))); err != nil {
		return err
	}
	for _, p := range s.Players {
		if err := p.EncodeMsg(w); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsg implements msgp.Decodable for MttTableState.
func (s *MttTableState) DecodeMsg(r *msgp.Reader) error {
	n, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return err
		}
		switch key {
		case "table_id":
			if s.TableID, err = r.ReadUint64(); err != nil {
				return err
			}
		case "hand_id":
			if s.HandID, err = r.ReadUint64(); err != nil {
				return err
			}
		case "btn":
			if s.BTN, err = r.ReadInt(); err != nil {
				return err
			}
		case "sb":
			if s.SB, err = r.ReadUint64(); err != nil {
				return err
			}
		case "bb":
			if s.BB, err = r.ReadUint64(); err != nil {
				return err
			}
		case "ante":
			if s.Ante, err = r.ReadUint64(); err != nil {
				return err
			}
		case "next_game_start":
			if s.NextGameStart, err = r.ReadInt64(); err != nil {
				return err
			}
		case "players":
			count, err := r.ReadArrayHeader()
			if err != nil {
				return err
			}
			s.Players = make([]MttTablePlayer, count)
			for j := range s.Players {
				if err := s.Players[j].DecodeMsg(r); err != nil {
					return err
				}
			}
		default:
			if err := r.Skip(); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodeMsg implements msgp.Encodable for Event, the tagged union every
// bridge message travels as.
func (e Event) EncodeMsg(w *msgp.Writer) error {
	if err := w.WriteUint8(uint8(e.Kind)); err != nil {
		return err
	}
	switch e.Kind {
	case EventStartGame:
		sg := e.StartGame
		if err := w.WriteMapHeader(5); err != nil {
			return err
		}
		if err := w.WriteString("sb"); err != nil {
			return err
		}
		if err := w.WriteUint64(sg.SB); err != nil {
			return err
		}
		if err := w.WriteString("bb"); err != nil {
			return err
		}
		if err := w.WriteUint64(sg.BB); err != nil {
			return err
		}
		if err := w.WriteString("ante"); err != nil {
			return err
		}
		if err := w.WriteUint64(sg.Ante); err != nil {
			return err
		}
		if err := w.WriteString("sitout_players"); err != nil {
			return err
		}
		if err := writePlayerIDs(w, sg.SitoutPlayers); err != nil {
			return err
		}
		if err := w.WriteString("start_time"); err != nil {
			return err
		}
		if sg.StartTime == nil {
			return w.WriteInt64(0)
		}
		return w.WriteInt64(*sg.StartTime)

	case EventSitinPlayers:
		sp := e.SitinPlayers
		if err := w.WriteArrayHeader(uint32(len(sp.Sitins))); err != nil {
			return err
		}
		for _, entry := range sp.Sitins {
			if err := w.WriteMapHeader(4); err != nil {
				return err
			}
			if err := w.WriteString("player_id"); err != nil {
				return err
			}
			if err := w.WriteUint64(uint64(entry.PlayerID)); err != nil {
				return err
			}
			if err := w.WriteString("chips"); err != nil {
				return err
			}
			if err := w.WriteUint64(entry.Chips); err != nil {
				return err
			}
			if err := w.WriteString("time_cards"); err != nil {
				return err
			}
			if err := w.WriteInt(entry.TimeCards); err != nil {
				return err
			}
			if err := w.WriteString("first_time_sit"); err != nil {
				return err
			}
			if err := w.WriteBool(entry.FirstTimeSit); err != nil {
				return err
			}
		}
		return nil

	case EventCloseTable:
		return nil

	case EventGameResult:
		gr := e.GameResult
		if err := w.WriteMapHeader(5); err != nil {
			return err
		}
		if err := w.WriteString("hand_id"); err != nil {
			return err
		}
		if err := w.WriteUint64(gr.HandID); err != nil {
			return err
		}
		if err := w.WriteString("table_id"); err != nil {
			return err
		}
		if err := w.WriteUint64(gr.TableID); err != nil {
			return err
		}
		if err := w.WriteString("btn"); err != nil {
			return err
		}
		if err := w.WriteInt(gr.BTN); err != nil {
			return err
		}
		if err := w.WriteString("player_results"); err != nil {
			return err
		}
		if err := w.WriteArrayHeader(uint32(len(gr.PlayerResults))); err != nil {
			return err
		}
		for _, pr := range gr.PlayerResults {
			if err := pr.EncodeMsg(w); err != nil {
				return err
			}
		}
		if err := w.WriteString("table"); err != nil {
			return err
		}
		return gr.Table.EncodeMsg(w)
	}
	return nil
}

// DecodeMsg implements msgp.Decodable for Event.
func (e *Event) DecodeMsg(r *msgp.Reader) error {
	kind, err := r.ReadUint8()
	if err != nil {
		return err
	}
	e.Kind = EventKind(kind)

	switch e.Kind {
	case EventStartGame:
		sg := &StartGamePayload{}
		n, err := r.ReadMapHeader()
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			key, err := r.ReadString()
			if err != nil {
				return err
			}
			switch key {
			case "sb":
				if sg.SB, err = r.ReadUint64(); err != nil {
					return err
				}
			case "bb":
				if sg.BB, err = r.ReadUint64(); err != nil {
					return err
				}
			case "ante":
				if sg.Ante, err = r.ReadUint64(); err != nil {
					return err
				}
			case "sitout_players":
				if sg.SitoutPlayers, err = readPlayerIDs(r); err != nil {
					return err
				}
			case "start_time":
				v, err := r.ReadInt64()
				if err != nil {
					return err
				}
				if v != 0 {
					sg.StartTime = &v
				}
			default:
				if err := r.Skip(); err != nil {
					return err
				}
			}
		}
		e.StartGame = sg

	case EventSitinPlayers:
		count, err := r.ReadArrayHeader()
		if err != nil {
			return err
		}
		sp := &SitinPlayersPayload{Sitins: make([]SitinEntry, count)}
		for i := range sp.Sitins {
			n, err := r.ReadMapHeader()
			if err != nil {
				return err
			}
			entry := &sp.Sitins[i]
			for j := uint32(0); j < n; j++ {
				key, err := r.ReadString()
				if err != nil {
					return err
				}
				switch key {
				case "player_id":
					v, err := r.ReadUint64()
					if err != nil {
						return err
					}
					entry.PlayerID = PlayerID(v)
				case "chips":
					if entry.Chips, err = r.ReadUint64(); err != nil {
						return err
					}
				case "time_cards":
					if entry.TimeCards, err = r.ReadInt(); err != nil {
						return err
					}
				case "first_time_sit":
					if entry.FirstTimeSit, err = r.ReadBool(); err != nil {
						return err
					}
				default:
					if err := r.Skip(); err != nil {
						return err
					}
				}
			}
		}
		e.SitinPlayers = sp

	case EventCloseTable:
		// no payload

	case EventGameResult:
		gr := &GameResultPayload{}
		n, err := r.ReadMapHeader()
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			key, err := r.ReadString()
			if err != nil {
				return err
			}
			switch key {
			case "hand_id":
				if gr.HandID, err = r.ReadUint64(); err != nil {
					return err
				}
			case "table_id":
				if gr.TableID, err = r.ReadUint64(); err != nil {
					return err
				}
			case "btn":
				if gr.BTN, err = r.ReadInt(); err != nil {
					return err
				}
			case "player_results":
				count, err := r.ReadArrayHeader()
				if err != nil {
					return err
				}
				gr.PlayerResults = make([]PlayerResult, count)
				for j := range gr.PlayerResults {
					if err := gr.PlayerResults[j].DecodeMsg(r); err != nil {
						return err
					}
				}
			case "table":
				if err := gr.Table.DecodeMsg(r); err != nil {
					return err
				}
			default:
				if err := r.Skip(); err != nil {
					return err
				}
			}
		}
		e.GameResult = gr
	}
	return nil
}

var (
	_ msgp.Encodable = Event{}
	_ msgp.Decodable = (*Event)(nil)
)
