package table

import "pokerserver/internal/poker"

// SeatView is the per-seat projection sent to one viewer. HoleCards is
// populated only for the viewer's own seat, or, at showdown, for every
// seat whose cards were revealed there (each player still in the hand
// when it went to showdown); otherwise only CardCount is set so the
// client can still draw face-down cards.
type SeatView struct {
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	Seat         int    `json:"seat"`
	Stack        int64  `json:"stack"`
	StreetBet    int64  `json:"streetBet"`
	Folded       bool   `json:"folded"`
	AllIn        bool   `json:"allIn"`
	Busted       bool   `json:"busted"`
	IsSmallBlind bool   `json:"isSmallBlind"`
	IsBigBlind   bool   `json:"isBigBlind"`
	CardCount    int    `json:"cardCount"`
	HoleCards    []poker.Card `json:"holeCards,omitempty"`
}

// PotLevelView is the wire representation of one side-pot level.
type PotLevelView struct {
	Amount   int64    `json:"amount"`
	Eligible []string `json:"eligible"`
}

// Snapshot is the full, per-viewer-projected table state sent after
// every state change.
type Snapshot struct {
	TableID         string         `json:"tableId"`
	Stage           Stage          `json:"stage"`
	Seats           []SeatView     `json:"seats"`
	CommunityCards  []poker.Card   `json:"communityCards"`
	Pot             int64          `json:"pot"`
	CurrentBet      int64          `json:"currentBet"`
	MinRaiseTotal   int64          `json:"minRaiseTotal"`
	SmallBlind      int64          `json:"smallBlind"`
	BigBlind        int64          `json:"bigBlind"`
	ButtonSeat      int            `json:"buttonSeat"`
	ActiveUserID    string         `json:"activeUserId,omitempty"`
	TurnDeadlineMs  int64          `json:"turnDeadlineMs,omitempty"`
	ActionTimeoutMs int64          `json:"actionTimeoutMs"`
	PotLevels       []PotLevelView `json:"potLevels,omitempty"`
	LastHand        *HandResult    `json:"lastHand,omitempty"`
	Events          []Event        `json:"events"`
}

// snapshotLocked builds the state projection for one viewer. Must be
// called with the mutex held.
func (t *Table) snapshotLocked(viewerID string) Snapshot {
	seats := make([]SeatView, 0, len(t.seats))
	for _, p := range t.seats {
		if p == nil {
			continue
		}
		sv := SeatView{
			UserID:       p.UserID,
			DisplayName:  p.DisplayName,
			Seat:         p.Seat,
			Stack:        p.Stack,
			StreetBet:    p.streetContribution,
			Folded:       p.Folded,
			AllIn:        p.AllIn,
			Busted:       p.Busted,
			IsSmallBlind: p.IsSmallBlind,
			IsBigBlind:   p.IsBigBlind,
		}

		switch {
		case p.UserID == viewerID && len(p.HoleCards) > 0:
			sv.HoleCards = p.HoleCards
			sv.CardCount = len(p.HoleCards)
		case t.stage == StageShowdown && p.cardsRevealed && len(p.savedCards) > 0:
			sv.HoleCards = p.savedCards
			sv.CardCount = len(p.savedCards)
		case len(p.HoleCards) > 0:
			sv.CardCount = len(p.HoleCards)
		case len(p.savedCards) > 0:
			sv.CardCount = len(p.savedCards)
		}
		seats = append(seats, sv)
	}

	var potLevels []PotLevelView
	for _, level := range t.potLevels {
		names := make([]string, 0, len(level.Eligible))
		for userID := range level.Eligible {
			names = append(names, userID)
		}
		potLevels = append(potLevels, PotLevelView{Amount: level.Amount, Eligible: names})
	}

	var turnDeadlineMs int64
	if t.activeUserID != "" && !t.activeDeadline.IsZero() {
		turnDeadlineMs = t.activeDeadline.UnixMilli()
	}

	minRaiseTotal := t.currentBet + maxIfZero(t.lastRaiseIncrement, t.cfg.BigBlind)

	events := append([]Event{}, t.events...)

	community := append([]poker.Card{}, t.communityCards...)

	return Snapshot{
		TableID:         t.id,
		Stage:           t.stage,
		Seats:           seats,
		CommunityCards:  community,
		Pot:             t.currentHandPot(),
		CurrentBet:      t.currentBet,
		MinRaiseTotal:   minRaiseTotal,
		SmallBlind:      t.cfg.SmallBlind,
		BigBlind:        t.cfg.BigBlind,
		ButtonSeat:      t.buttonSeat,
		ActiveUserID:    t.activeUserID,
		TurnDeadlineMs:  turnDeadlineMs,
		ActionTimeoutMs: t.cfg.ActionTimeout.Milliseconds(),
		PotLevels:       potLevels,
		LastHand:        t.lastHand,
		Events:          events,
	}
}

func maxIfZero(increment, fallback int64) int64 {
	if increment == 0 {
		return fallback
	}
	return increment
}

func (t *Table) currentHandPot() int64 {
	pot := t.centralPot
	for _, p := range t.seats {
		if p != nil {
			pot += p.streetContribution
		}
	}
	return pot
}
