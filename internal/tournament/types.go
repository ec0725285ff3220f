// Package tournament implements multi-table tournament, bounty-hunter
// (PKO), and sit & go lifecycles layered on top of the table engine:
// registration, seating, blind-level escalation, elimination with
// bounty splitting, table rebalancing, and payout distribution.
package tournament

import (
	"errors"
	"time"
)

// Mode selects the tournament variant.
type Mode string

const (
	ModeTournament  Mode = "tournament"
	ModeBountyHunter Mode = "bounty"
	ModeSitAndGo    Mode = "sitgo"
)

// Status is the tournament lifecycle stage.
type Status string

const (
	StatusRegistering Status = "registering"
	StatusLateReg     Status = "late_reg"
	StatusRunning     Status = "running"
	StatusFinalTable  Status = "final_table"
	StatusFinished    Status = "finished"
	StatusCancelled   Status = "cancelled"
)

// SnGFormat selects the payout shape for a sit & go.
type SnGFormat string

const (
	SnGWinnerTakesAll SnGFormat = "winner_takes_all"
	SnGTop3Paid       SnGFormat = "top_3"
	SnGTop2Paid       SnGFormat = "top_2"
	SnGDoubleOrNothing SnGFormat = "double_or_nothing"
)

var (
	ErrNotFound         = errors.New("tournament: not found")
	ErrRegistrationClosed = errors.New("tournament: registration is closed")
	ErrFull             = errors.New("tournament: full")
	ErrAlreadyStarted   = errors.New("tournament: already started")
	ErrNotEnoughPlayers = errors.New("tournament: not enough players")
	ErrPlayerNotFound   = errors.New("tournament: player not found")
	ErrAlreadyEliminated = errors.New("tournament: player already eliminated")
)

// BlindLevel is one step of a blind structure.
type BlindLevel struct {
	SmallBlind int64
	BigBlind   int64
	Ante       int64
	Duration   time.Duration
}

// BlindStructures mirrors the standard/turbo/hyper-turbo ladders used
// across cash-game-adjacent tournament products.
var BlindStructures = map[string][]BlindLevel{
	"standard": {
		{25, 50, 0, 900 * time.Second},
		{50, 100, 0, 900 * time.Second},
		{75, 150, 0, 900 * time.Second},
		{100, 200, 0, 900 * time.Second},
		{150, 300, 25, 900 * time.Second},
		{200, 400, 50, 900 * time.Second},
		{300, 600, 75, 900 * time.Second},
		{400, 800, 100, 900 * time.Second},
		{600, 1200, 150, 900 * time.Second},
		{800, 1600, 200, 900 * time.Second},
		{1000, 2000, 250, 900 * time.Second},
		{1500, 3000, 400, 900 * time.Second},
		{2000, 4000, 500, 900 * time.Second},
		{3000, 6000, 750, 900 * time.Second},
		{4000, 8000, 1000, 900 * time.Second},
	},
	"turbo": {
		{10, 20, 0, 300 * time.Second},
		{15, 30, 0, 300 * time.Second},
		{25, 50, 0, 300 * time.Second},
		{50, 100, 0, 300 * time.Second},
		{75, 150, 15, 300 * time.Second},
		{100, 200, 20, 300 * time.Second},
		{150, 300, 30, 300 * time.Second},
		{200, 400, 40, 300 * time.Second},
		{300, 600, 60, 300 * time.Second},
		{400, 800, 80, 300 * time.Second},
		{600, 1200, 120, 300 * time.Second},
		{800, 1600, 160, 300 * time.Second},
	},
	"hyper_turbo": {
		{10, 20, 0, 180 * time.Second},
		{20, 40, 0, 180 * time.Second},
		{30, 60, 0, 180 * time.Second},
		{50, 100, 10, 180 * time.Second},
		{75, 150, 15, 180 * time.Second},
		{100, 200, 20, 180 * time.Second},
		{150, 300, 30, 180 * time.Second},
		{200, 400, 40, 180 * time.Second},
		{300, 600, 60, 180 * time.Second},
		{500, 1000, 100, 180 * time.Second},
	},
}

// Player is one registrant's tournament-scoped state, distinct from the
// cash-table Player struct since chips here are tournament units, not
// dollars, and survive across table reassignment.
type Player struct {
	UserID         string
	DisplayName    string
	Chips          int64
	Bounty         float64
	StartingBounty float64
	TableID        string
	Seat           int
	Position       int
	EliminatedAt   time.Time
	EliminatedBy   string
	TotalBountyWon float64
	RegisteredAt   time.Time
}

func (p *Player) IsEliminated() bool { return !p.EliminatedAt.IsZero() }

// Tournament is one running or pending tournament instance.
type Tournament struct {
	ID             string
	Name           string
	Mode           Mode
	BuyIn          float64
	StartingChips  int64
	MinPlayers     int
	MaxPlayers     int
	Status         Status
	BlindStructure string
	CurrentLevel   int
	LevelStartedAt time.Time

	PrizePool     float64
	RakePercent   float64
	BountyPercent float64

	SnGFormat       SnGFormat
	PlayersPerTable int
	LateRegLevels   int

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time

	Players map[string]*Player
	Tables  map[string]*TableSeating

	Payouts        map[int]float64
	FinalPositions map[string]int
}

// TableSeating is the minimal tournament-table bookkeeping: which
// players sit where. Actual betting happens in the table package; this
// package only tracks assignment and rebalancing.
type TableSeating struct {
	TableID string
	Seats   map[int]string // seat -> userID, "" if empty
	Active  bool
}

func (ts *TableSeating) playerCount() int {
	n := 0
	for _, id := range ts.Seats {
		if id != "" {
			n++
		}
	}
	return n
}

func (ts *TableSeating) emptySeats() []int {
	var out []int
	for seat, id := range ts.Seats {
		if id == "" {
			out = append(out, seat)
		}
	}
	return out
}

func (ts *TableSeating) removePlayer(userID string) {
	for seat, id := range ts.Seats {
		if id == userID {
			ts.Seats[seat] = ""
		}
	}
}

func (t *Tournament) currentBlinds() BlindLevel {
	structure := BlindStructures[t.BlindStructure]
	if structure == nil {
		structure = BlindStructures["standard"]
	}
	if t.CurrentLevel >= len(structure) {
		return structure[len(structure)-1]
	}
	return structure[t.CurrentLevel]
}

func (t *Tournament) playersRemaining() int {
	n := 0
	for _, p := range t.Players {
		if !p.IsEliminated() {
			n++
		}
	}
	return n
}

func (t *Tournament) averageStack() int64 {
	var total int64
	var n int64
	for _, p := range t.Players {
		if !p.IsEliminated() {
			total += p.Chips
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / n
}
