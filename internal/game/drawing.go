package game

import (
	"time"

	"github.com/scythe504/skribbl-roomrt/internal/protocol"
)

// brushSizeFor maps a frontend numeric pixel size to the categorical
// brush size spec.md §6 defines.
func brushSizeFor(px int) BrushSize {
	switch px {
	case 2:
		return BrushSmall
	case 8:
		return BrushLarge
	default:
		return BrushMedium
	}
}

var hexToNamedColor = map[string]string{
	"#ff0000": "Red",
	"#00ff00": "Green",
	"#0000ff": "Blue",
	"#ffff00": "Yellow",
	"#800080": "Purple",
	"#ffa500": "Orange",
	"#a52a2a": "Brown",
	"#ffc0cb": "Pink",
	"#808080": "Gray",
}

func namedColorFor(hex string) string {
	if name, ok := hexToNamedColor[hex]; ok {
		return name
	}
	return "Black"
}

func normalizeStroke(in protocol.FrontendDrawStroke) DrawStroke {
	alpha := in.Alpha
	if alpha == 0 {
		alpha = 1.0
	}
	return DrawStroke{
		X:         in.X,
		Y:         in.Y,
		ColorHex:  in.Color,
		Alpha:     alpha,
		IsEraser:  in.IsEraser,
		BrushSize: brushSizeFor(in.BrushSize),
		BrushPx:   in.BrushPx,
		Timestamp: time.Now().UnixMilli(),
	}
}

// HandleDrawPath validates the sender is the current drawer and appends
// a full path (client-supplied id reused for dedup; regenerated only if
// empty — a non-empty id is used as sent, with no format check) to the
// round's drawing state, then fans it out to everyone but the sender.
func (e *Engine) HandleDrawPath(code, playerId string, in protocol.FrontendDrawPath) error {
	pathId := in.Id
	if pathId == "" {
		pathId = newPlayerId()
	}
	var path DrawPath
	err := e.Store.MutateRoom(code, func(r *Room) error {
		if r.GameState != StatePlaying || r.CurrentDrawer != playerId {
			return nil
		}
		for _, existing := range r.DrawingPaths {
			if existing.Id == pathId {
				return nil // already recorded, idempotent dedup
			}
		}
		strokes := make([]DrawStroke, len(in.Strokes))
		var colorHex string
		var brush BrushSize
		for i, s := range in.Strokes {
			strokes[i] = normalizeStroke(s)
			colorHex = strokes[i].ColorHex
			brush = strokes[i].BrushSize
		}
		path = DrawPath{
			Id:        pathId,
			PlayerId:  playerId,
			Color:     namedColorFor(colorHex),
			ColorHex:  colorHex,
			BrushSize: brush,
			Strokes:   strokes,
			CreatedAt: time.Now(),
		}
		r.DrawingPaths = append(r.DrawingPaths, path)
		r.UpdatedAt = time.Now()
		return nil
	})
	if err != nil || path.Id == "" {
		return err
	}
	e.Broadcast.BroadcastToRoomExcluding(code, playerId, protocol.TypeOutDrawUpdate, struct {
		RoomCode string   `json:"room_code"`
		Path     DrawPath `json:"path"`
	}{RoomCode: code, Path: path})
	return nil
}

// HandleDrawStroke is the incremental, single-stroke variant fanned out
// live as the drawer's pen moves, without waiting for a full path.
func (e *Engine) HandleDrawStroke(code, playerId string, in protocol.FrontendDrawStroke) error {
	room := e.Store.GetRoom(code)
	if room == nil {
		return ErrRoomNotFound
	}
	if room.GameState != StatePlaying || room.CurrentDrawer != playerId {
		return nil
	}
	stroke := normalizeStroke(in)
	e.Broadcast.BroadcastToRoomExcluding(code, playerId, protocol.TypeOutDrawStroke, struct {
		RoomCode string     `json:"room_code"`
		Stroke   DrawStroke `json:"stroke"`
	}{RoomCode: code, Stroke: stroke})
	return nil
}
