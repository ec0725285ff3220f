package table

import "time"

// armActionTimerLocked schedules the auto-fold (or auto-check) for
// whoever is currently active. Must be called with the mutex held.
func (t *Table) armActionTimerLocked() {
	if t.activeUserID == "" {
		return
	}
	deadline := time.Now().Add(t.cfg.ActionTimeout)
	t.activeDeadline = deadline
	guard := actionGuard{stage: t.stage, userID: t.activeUserID, deadline: deadline}
	t.actionGuard = guard

	t.runGuarded(t.cfg.ActionTimeout, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.closed || !t.handInProgress {
			return
		}
		if t.actionGuard != guard {
			return // stale: player already acted or round moved on
		}
		p := t.playerByID(guard.userID)
		if p == nil {
			return
		}
		if t.recorder != nil {
			t.recorder.RecordActionTimeout(t.id)
		}
		if p.streetContribution == t.currentBet {
			t.applyBettingAction(p, Action{Command: CmdCheck})
		} else {
			t.applyBettingAction(p, Action{Command: CmdFold})
		}
		t.afterActionLocked()
		t.broadcastLocked()
	})
}

func (t *Table) cancelActionTimer() {
	t.actionGuard = actionGuard{}
}

// scheduleRoundTransition fires dealNextStage after the betting-round
// delay, guarded by handSeq so a new hand starting in the meantime
// cancels the stale callback, and by the stage it was armed at so a
// street already dealt (e.g. by advance_stage) is not dealt twice.
func (t *Table) scheduleRoundTransition(guardSeq int) {
	guardStage := t.stage
	t.runGuarded(t.cfg.RoundDelay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.closed || t.handSeq != guardSeq || t.stage != guardStage || !t.handInProgress {
			return
		}
		t.dealNextStage()
		t.broadcastLocked()
	})
}

// scheduleNewHand starts the next hand after the showdown/fold delay,
// guarded by handSeq. If fewer than two non-busted seats remain, no
// new hand starts; the table simply goes idle until AddPlayer/rebuy.
func (t *Table) scheduleNewHand(guardSeq int) {
	t.runGuarded(t.cfg.NewHandDelay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.closed || t.handSeq != guardSeq || t.handInProgress {
			return
		}
		if len(t.participantsForNewHand()) >= 2 {
			t.startHandLocked()
		}
		t.broadcastLocked()
	})
}

// armBustoutTimerLocked starts the countdown after which a zero-stack
// player is removed from the table for good, unless they rebuy first.
// Cancelling on rebuy is handled in handleRebuyLocked via bustoutGuard
// deletion.
func (t *Table) armBustoutTimerLocked(userID string) {
	deadline := time.Now().Add(t.cfg.BustoutTimeout)
	token := bustoutGuardToken{deadline: deadline}
	t.bustoutGuard[userID] = token

	t.runGuarded(t.cfg.BustoutTimeout, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.closed {
			return
		}
		cur, ok := t.bustoutGuard[userID]
		if !ok || cur != token {
			return // rebought, or already removed
		}
		delete(t.bustoutGuard, userID)
		if p := t.playerByID(userID); p != nil && p.Busted {
			t.removePlayerLocked(userID)
			t.broadcastLocked()
		}
	})
}

// runGuarded spawns a tracked, cancellable-by-closed-flag delayed task.
// The table's WaitGroup lets Close() wait for all in-flight timers to
// either fire or observe the closed flag and return.
func (t *Table) runGuarded(delay time.Duration, fn func()) {
	t.wg.Add(1)
	time.AfterFunc(delay, func() {
		defer t.wg.Done()
		fn()
	})
}
