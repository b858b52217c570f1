package game

import "time"

// scheduleRoundTimer starts the one pending deadline task for this round.
// It captures (drawerId, word) and the room's timer generation at
// schedule time; at wake-up it re-validates game_state, current_drawer
// and word before calling RoundEnd. Any later WordSelected bumps the
// generation before scheduling its own timer, which makes this wake-up a
// silent no-op — this is cancellation-by-superseding-state, not an
// explicit cancellation handle.
func (e *Engine) scheduleRoundTimer(code, capturedDrawerId, capturedWord string) {
	room := e.Store.GetRoom(code)
	if room == nil {
		return
	}
	duration := time.Duration(room.RoundDuration) * time.Second
	capturedGen := room.timerGen

	go func() {
		time.Sleep(duration)
		stale := false
		_ = e.Store.MutateRoom(code, func(r *Room) error {
			if r.timerGen != capturedGen ||
				r.GameState != StatePlaying ||
				r.CurrentDrawer != capturedDrawerId ||
				r.Word != capturedWord {
				stale = true
			}
			return nil
		})
		if stale {
			return
		}
		e.RoundEnd(code, "timer_expired")
	}()
}
