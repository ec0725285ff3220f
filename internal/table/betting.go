package table

import (
	"fmt"
	"sort"

	"pokerserver/internal/poker"
)

// HandResult summarizes the outcome of the hand that just finished, for
// the session layer to turn into handComplete / showdownComplete frames.
type HandResult struct {
	WinType  string   `json:"winType"` // "fold" or "showdown"
	Winners  []string `json:"winners"`
	Losers   []string `json:"losers"`
	Pot      int64    `json:"pot"`
	Category string   `json:"category,omitempty"`
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// startHandLocked begins a new hand. Caller must hold the mutex and have
// already verified there are >= 2 occupied, non-busted seats.
func (t *Table) startHandLocked() {
	participants := t.participantsForNewHand()
	if len(participants) < 2 {
		return
	}

	for _, p := range participants {
		p.Folded = false
		p.HasActed = false
		p.AllIn = false
		p.IsSmallBlind = false
		p.IsBigBlind = false
		p.BlindPosted = 0
		p.HoleCards = nil
		p.savedCards = nil
		p.cardsRevealed = false
		p.streetContribution = 0
		p.handContribution = 0
	}

	t.handSeq++
	t.handInProgress = true
	t.communityCards = nil
	t.centralPot = 0
	t.currentBet = 0
	t.potLevels = nil
	t.lastHand = nil

	t.buttonSeat = t.nextButtonSeat(participants)
	order := t.seatsClockwiseFrom(t.buttonSeat - 1)
	// order excludes seats not participating (busted, empty); filter.
	var ring []int
	for _, idx := range order {
		if t.seats[idx] != nil && !t.seats[idx].Busted {
			ring = append(ring, idx)
		}
	}
	buttonIdx := t.buttonSeat - 1

	var sbIdx, bbIdx, firstToActIdx int
	if len(ring) == 2 {
		sbIdx = buttonIdx
		bbIdx = ring[0]
		if ring[0] == buttonIdx {
			bbIdx = ring[1]
		}
		firstToActIdx = sbIdx
	} else {
		sbIdx = ring[0]
		bbIdx = ring[1]
		firstToActIdx = ring[2]
	}

	sb := t.seats[sbIdx]
	bb := t.seats[bbIdx]

	sbAmt := minInt64(sb.Stack, t.cfg.SmallBlind)
	sb.Stack -= sbAmt
	sb.streetContribution = sbAmt
	sb.handContribution = sbAmt
	sb.BlindPosted = sbAmt
	sb.IsSmallBlind = true
	if sb.Stack == 0 {
		sb.AllIn = true
	}
	t.logEvent("%s posts small blind $%d", sb.DisplayName, sbAmt)

	bbAmt := minInt64(bb.Stack, t.cfg.BigBlind)
	bb.Stack -= bbAmt
	bb.streetContribution = bbAmt
	bb.handContribution = bbAmt
	bb.BlindPosted = bbAmt
	bb.IsBigBlind = true
	if bb.Stack == 0 {
		bb.AllIn = true
	}
	t.logEvent("%s posts big blind $%d", bb.DisplayName, bbAmt)

	t.currentBet = bbAmt
	t.lastRaiseIncrement = t.cfg.BigBlind
	t.bbUserID = bb.UserID
	t.bbOptionPending = bbAmt == t.cfg.BigBlind

	deck := t.shuffler.ShuffledDeck()
	pos := 0
	for _, idx := range ring {
		t.seats[idx].HoleCards = []poker.Card{deck[pos], deck[pos+1]}
		pos += 2
	}
	t.deck = deck[pos:]

	t.stage = StagePreflop
	t.activeUserID = t.seats[firstToActIdx].UserID
	t.logEvent("hand begins, button on seat %d", t.buttonSeat)

	if t.recorder != nil {
		t.recorder.RecordHandStarted(t.id)
	}
	t.armActionTimerLocked()
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// participantsForNewHand returns occupied, non-busted seats.
func (t *Table) participantsForNewHand() []*Player {
	var out []*Player
	for _, p := range t.seats {
		if p != nil && !p.Busted {
			out = append(out, p)
		}
	}
	return out
}

// nextButtonSeat rotates the button to the next occupied, non-busted
// seat after the current button.
func (t *Table) nextButtonSeat(participants []*Player) int {
	if t.buttonSeat == 0 {
		return participants[0].Seat
	}
	order := t.seatsClockwiseFrom(t.buttonSeat - 1)
	for _, idx := range order {
		if t.seats[idx] != nil && !t.seats[idx].Busted {
			return t.seats[idx].Seat
		}
	}
	return participants[0].Seat
}

// HandleAction dispatches one inbound command from userID. Invalid
// actions (wrong turn, wrong stage, illegal amount) are silently
// ignored: no state change, no error returned.
func (t *Table) HandleAction(userID string, action Action) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.playerByID(userID)
	if p == nil {
		return ErrPlayerNotFound
	}

	if t.recorder != nil {
		t.recorder.RecordAction(t.id, action.Command)
	}

	switch action.Command {
	case CmdFold, CmdCheck, CmdCall, CmdBet, CmdRaise, CmdAllIn:
		if !t.handInProgress || t.stage == StageShowdown || userID != t.activeUserID {
			return nil
		}
		wasBB := p.UserID == t.bbUserID
		if t.applyBettingAction(p, action) {
			if t.stage == StagePreflop && wasBB {
				t.bbOptionPending = false
			}
			t.afterActionLocked()
			t.broadcastLocked()
		}
	case CmdRebuy:
		if t.handleRebuyLocked(p, action.Amount) {
			t.broadcastLocked()
		}
	case CmdLeaveTable:
		_ = t.removePlayerLocked(userID)
	case CmdShowCards:
		if t.handleShowCardsLocked(p) {
			t.broadcastLocked()
		}
	case CmdChat:
		t.logEvent("%s: %s", p.DisplayName, action.Message)
		t.broadcastLocked()
	case CmdStartHand:
		if !t.handInProgress && len(t.participantsForNewHand()) >= 2 {
			t.startHandLocked()
			t.broadcastLocked()
		}
	case CmdAdvanceStage:
		if t.handInProgress && t.roundComplete() {
			t.dealNextStage()
			t.broadcastLocked()
		}
	}
	return nil
}

func (t *Table) applyBettingAction(p *Player, action Action) bool {
	switch action.Command {
	case CmdFold:
		p.Folded = true
		p.HasActed = true
		t.logEvent("%s folds", p.DisplayName)
		return true
	case CmdCheck:
		if p.streetContribution != t.currentBet {
			return false
		}
		p.HasActed = true
		t.logEvent("%s checks", p.DisplayName)
		return true
	case CmdCall:
		return t.applyCall(p)
	case CmdBet, CmdRaise, CmdAllIn:
		return t.applyRaise(p, action)
	}
	return false
}

func (t *Table) applyCall(p *Player) bool {
	delta := t.currentBet - p.streetContribution
	if delta <= 0 {
		return false
	}
	if delta > p.Stack {
		delta = p.Stack
	}
	t.commit(p, delta)
	p.HasActed = true
	if p.Stack == 0 {
		p.AllIn = true
	}
	t.logEvent("%s calls $%d", p.DisplayName, delta)
	return true
}

func (t *Table) commit(p *Player, delta int64) {
	p.Stack -= delta
	p.streetContribution += delta
	p.handContribution += delta
}

func (t *Table) applyRaise(p *Player, action Action) bool {
	isAllIn := action.Command == CmdAllIn
	var target int64
	if isAllIn {
		target = p.streetContribution + p.Stack
	} else {
		target = action.Amount
	}

	if target <= t.currentBet {
		if !isAllIn {
			return false
		}
		return t.applyCall(p)
	}

	delta := target - p.streetContribution
	if delta <= 0 || delta > p.Stack {
		return false
	}

	minRaiseNeeded := t.currentBet + maxInt64(t.lastRaiseIncrement, t.cfg.BigBlind)
	fullRaise := target >= minRaiseNeeded
	if !fullRaise && !isAllIn {
		return false
	}

	raiseDelta := target - t.currentBet
	t.commit(p, delta)
	p.HasActed = true
	if p.Stack == 0 {
		p.AllIn = true
	}
	t.currentBet = target

	if fullRaise {
		t.lastRaiseIncrement = raiseDelta
		for _, other := range t.seats {
			if other != nil && other.UserID != p.UserID && !other.Folded && !other.AllIn {
				other.HasActed = false
			}
		}
		t.logEvent("%s raises to $%d", p.DisplayName, target)
	} else {
		t.logEvent("%s goes all-in for $%d (short of a full raise)", p.DisplayName, target)
	}
	return true
}

func (t *Table) handleRebuyLocked(p *Player, amount int64) bool {
	if !p.Busted && p.Stack > 0 {
		return false
	}
	if amount <= 0 {
		return false
	}
	p.Stack += amount
	p.Busted = false
	delete(t.bustoutGuard, p.UserID)
	t.logEvent("%s rebuys for $%d", p.DisplayName, amount)
	if !t.handInProgress && len(t.participantsForNewHand()) >= 2 {
		t.startHandLocked()
	}
	return true
}

func (t *Table) handleShowCardsLocked(p *Player) bool {
	if t.stage != StageShowdown || len(p.savedCards) == 0 || p.cardsRevealed {
		return false
	}
	p.cardsRevealed = true
	t.logEvent("%s shows %v", p.DisplayName, p.savedCards)
	return true
}

// afterActionLocked checks whether the betting round just completed and
// either advances the active player or begins the round transition.
func (t *Table) afterActionLocked() {
	if t.roundComplete() {
		t.beginRoundTransition()
		return
	}
	t.advanceActive()
}

func (t *Table) roundComplete() bool {
	nonFolded := t.nonFoldedPlayers()
	if len(nonFolded) <= 1 {
		return true
	}
	for _, p := range nonFolded {
		if p.AllIn {
			continue
		}
		if !p.HasActed || p.streetContribution != t.currentBet {
			return false
		}
	}
	if t.stage == StagePreflop && t.bbOptionPending {
		if bb := t.playerByID(t.bbUserID); bb != nil && !bb.Folded && !bb.AllIn {
			return false
		}
	}
	return true
}

func (t *Table) advanceActive() {
	cur := t.seatIndexOf(t.activeUserID)
	if cur == -1 {
		return
	}
	for _, idx := range t.seatsClockwiseFrom(cur) {
		p := t.seats[idx]
		if p != nil && !p.Folded && !p.AllIn && p.Stack > 0 {
			t.activeUserID = p.UserID
			t.armActionTimerLocked()
			return
		}
	}
	t.activeUserID = ""
}

func (t *Table) advanceActiveAfterRemoval() {
	t.cancelActionTimer()
	if t.handInProgress {
		t.advanceActive()
		if t.roundComplete() {
			t.beginRoundTransition()
		}
	}
}

func (t *Table) beginRoundTransition() {
	t.cancelActionTimer()
	t.activeUserID = ""
	for _, p := range t.seats {
		if p != nil {
			t.centralPot += p.streetContribution
			p.streetContribution = 0
		}
	}
	t.currentBet = 0
	t.lastRaiseIncrement = t.cfg.BigBlind

	if len(t.nonFoldedPlayers()) <= 1 {
		t.dealNextStage()
		return
	}

	t.logEvent("betting round complete")
	t.scheduleRoundTransition(t.handSeq)
}

func (t *Table) resetStreetActingFlags() {
	for _, p := range t.seats {
		if p != nil && !p.Folded && !p.AllIn {
			p.HasActed = false
		}
	}
}

func (t *Table) setFirstToActPostflop() {
	for _, idx := range t.seatsClockwiseFrom(t.buttonSeat - 1) {
		p := t.seats[idx]
		if p != nil && !p.Folded && !p.AllIn && p.Stack > 0 {
			t.activeUserID = p.UserID
			t.armActionTimerLocked()
			return
		}
	}
	t.activeUserID = ""
}

func (t *Table) dealCommunity(n int) {
	for i := 0; i < n && len(t.deck) > 0; i++ {
		t.communityCards = append(t.communityCards, t.deck[0])
		t.deck = t.deck[1:]
	}
}

// dealNextStage fires after the round-transition delay's guard confirms
// the table is still on the same hand. It deals the next street (or
// resolves the hand, at or before showdown).
func (t *Table) dealNextStage() {
	nonFolded := t.nonFoldedPlayers()
	if len(nonFolded) <= 1 {
		t.resolveByFold(nonFolded)
		return
	}

	switch t.stage {
	case StagePreflop:
		t.dealCommunity(3)
		t.stage = StageFlop
		t.logEvent("flop: %v", t.communityCards)
	case StageFlop:
		t.dealCommunity(1)
		t.stage = StageTurn
		t.logEvent("turn: %v", t.communityCards[len(t.communityCards)-1])
	case StageTurn:
		t.dealCommunity(1)
		t.stage = StageRiver
		t.logEvent("river: %v", t.communityCards[len(t.communityCards)-1])
	case StageRiver:
		t.stage = StageShowdown
		t.runShowdown()
		return
	default:
		return
	}

	t.resetStreetActingFlags()
	t.setFirstToActPostflop()

	if len(t.canActPlayers()) == 0 {
		t.scheduleRoundTransition(t.handSeq)
	}
}

func (t *Table) resolveByFold(nonFolded []*Player) {
	winner := nonFolded[0]
	amount := t.centralPot
	winner.Stack += amount
	t.logEvent("%s wins $%d uncontested", winner.DisplayName, amount)

	t.stage = StageShowdown
	t.lastHand = &HandResult{WinType: "fold", Winners: []string{winner.UserID}, Pot: amount}
	t.centralPot = 0

	if t.recorder != nil {
		t.recorder.RecordHandComplete(t.id, "fold")
	}
	if t.analytics != nil {
		t.analytics.PublishHandComplete(t.id, fmt.Sprintf("%s won $%d uncontested", winner.DisplayName, amount))
	}
	t.finishHandLocked()
}

func (t *Table) runShowdown() {
	nonFolded := t.nonFoldedPlayers()
	contributions := make(map[string]int64, len(t.seats))
	folded := make(map[string]bool, len(t.seats))
	for _, p := range t.seats {
		if p == nil {
			continue
		}
		contributions[p.UserID] = p.handContribution
		folded[p.UserID] = p.Folded
	}
	levels := computeSidePots(contributions, folded)
	t.potLevels = levels

	hands := make(map[string]*poker.EvaluatedHand, len(nonFolded))
	for _, p := range nonFolded {
		cards := append(append([]poker.Card{}, p.HoleCards...), t.communityCards...)
		hand, _ := t.evaluator.Evaluate(cards)
		hands[p.UserID] = hand
		p.savedCards = p.HoleCards
		p.HoleCards = nil
		p.cardsRevealed = true
	}

	buttonOrder := t.seatsClockwiseFrom(t.buttonSeat - 1)
	seatRank := make(map[string]int, len(buttonOrder))
	for rank, idx := range buttonOrder {
		if t.seats[idx] != nil {
			seatRank[t.seats[idx].UserID] = rank
		}
	}

	winnerSet := map[string]bool{}
	var topCategory poker.Category
	var haveTopCategory bool
	var totalPot int64
	for _, level := range levels {
		totalPot += level.Amount
		var eligible []*Player
		for _, p := range nonFolded {
			if level.Eligible[p.UserID] {
				eligible = append(eligible, p)
			}
		}
		if len(eligible) == 0 {
			continue
		}
		best := eligible[0]
		for _, p := range eligible[1:] {
			if poker.Compare(hands[p.UserID], hands[best.UserID]) > 0 {
				best = p
			}
		}
		var winners []*Player
		for _, p := range eligible {
			if poker.Compare(hands[p.UserID], hands[best.UserID]) == 0 {
				winners = append(winners, p)
			}
		}
		sort.Slice(winners, func(i, j int) bool {
			return seatRank[winners[i].UserID] < seatRank[winners[j].UserID]
		})
		share := level.Amount / int64(len(winners))
		remainder := level.Amount % int64(len(winners))
		for i, w := range winners {
			amt := share
			if int64(i) < remainder {
				amt++
			}
			w.Stack += amt
			winnerSet[w.UserID] = true
		}
		if !haveTopCategory || poker.Compare(hands[best.UserID], &poker.EvaluatedHand{Category: topCategory}) > 0 {
			topCategory = hands[best.UserID].Category
			haveTopCategory = true
		}
	}

	var winners, losers []string
	for _, p := range nonFolded {
		if winnerSet[p.UserID] {
			winners = append(winners, p.UserID)
		} else {
			losers = append(losers, p.UserID)
		}
	}

	t.lastHand = &HandResult{
		WinType:  "showdown",
		Winners:  winners,
		Losers:   losers,
		Pot:      totalPot,
		Category: topCategory.String(),
	}
	t.centralPot = 0
	t.logEvent("showdown complete: %s wins with %s", displayNames(t, winners), topCategory)

	if t.recorder != nil {
		t.recorder.RecordHandComplete(t.id, "showdown")
	}
	if t.analytics != nil {
		t.analytics.PublishHandComplete(t.id, fmt.Sprintf("showdown on table %s: %s", t.id, displayNames(t, winners)))
	}
	t.finishHandLocked()
}

func displayNames(t *Table, userIDs []string) string {
	names := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if p := t.playerByID(id); p != nil {
			names = append(names, p.DisplayName)
		}
	}
	return fmt.Sprint(names)
}

func (t *Table) finishHandLocked() {
	t.handInProgress = false
	for _, p := range t.seats {
		if p != nil && p.Stack == 0 && !p.Busted {
			p.Busted = true
			t.armBustoutTimerLocked(p.UserID)
		}
	}
	t.scheduleNewHand(t.handSeq)
}
