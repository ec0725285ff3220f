// Package table implements the per-table Texas Hold'em state machine:
// seating, blinds, betting rounds, side pots, showdown, and the timers
// that drive auto-fold, street transitions, and bustout removal.
package table

import (
	"errors"
	"time"

	"pokerserver/internal/poker"
)

// Stage is the wire-level stage name for a hand, or "waiting" between hands.
type Stage string

const (
	StageWaiting  Stage = "waiting"
	StagePreflop  Stage = "preflop"
	StageFlop     Stage = "flop"
	StageTurn     Stage = "turn"
	StageRiver    Stage = "river"
	StageShowdown Stage = "showdown"
)

// Cash-table constants, bit-exact per the external interface contract.
const (
	MaxPlayers            = 9
	SmallBlind      int64 = 10
	BigBlind        int64 = 20
	StartBalance    int64 = 1000
	ActionTimeout         = 30 * time.Second
	RoundDelay            = 1500 * time.Millisecond
	NewHandDelay          = 5000 * time.Millisecond
	BustoutTimeout        = 30 * time.Second
	eventLogCapacity      = 30
)

var (
	ErrTableFull      = errors.New("table: no seats available")
	ErrAlreadySeated  = errors.New("table: player already seated")
	ErrPlayerNotFound = errors.New("table: player not found")
)

// Player is one seat at a table.
type Player struct {
	UserID       string
	DisplayName  string
	Seat         int
	Stack        int64
	HoleCards    []poker.Card
	Folded       bool
	HasActed     bool
	AllIn        bool
	Busted       bool
	IsSmallBlind bool
	IsBigBlind   bool
	BlindPosted  int64

	streetContribution int64
	handContribution   int64
	bustoutDeadline    time.Time
	savedCards         []poker.Card
	cardsRevealed      bool
}

// PotLevel is one level of the side-pot partition.
type PotLevel struct {
	Amount   int64
	Eligible map[string]bool
}

// Event is one human-readable, totally-ordered log entry.
type Event struct {
	Seq     int       `json:"seq"`
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Config holds the per-table betting parameters. Zero value is not valid;
// use DefaultCashConfig for the spec's bit-exact cash-table constants.
type Config struct {
	MaxPlayers     int
	SmallBlind     int64
	BigBlind       int64
	ActionTimeout  time.Duration
	RoundDelay     time.Duration
	NewHandDelay   time.Duration
	BustoutTimeout time.Duration
}

// DefaultCashConfig returns the standard cash-table configuration.
func DefaultCashConfig() Config {
	return Config{
		MaxPlayers:     MaxPlayers,
		SmallBlind:     SmallBlind,
		BigBlind:       BigBlind,
		ActionTimeout:  ActionTimeout,
		RoundDelay:     RoundDelay,
		NewHandDelay:   NewHandDelay,
		BustoutTimeout: BustoutTimeout,
	}
}

// Command is one of the verbs HandleAction dispatches.
type Command string

const (
	CmdFold        Command = "fold"
	CmdCheck       Command = "check"
	CmdCall        Command = "call"
	CmdBet         Command = "bet"
	CmdRaise       Command = "raise"
	CmdAllIn       Command = "all_in"
	CmdRebuy       Command = "rebuy"
	CmdLeaveTable  Command = "leave_table"
	CmdShowCards   Command = "show_cards"
	CmdChat        Command = "chat"
	CmdStartHand   Command = "start_hand"
	CmdAdvanceStage Command = "advance_stage"
)

// Action is one inbound player command.
type Action struct {
	Command Command
	Amount  int64
	Message string
	Show    bool
}

// Recorder is the optional metrics collaborator; nil is a valid no-op value.
type Recorder interface {
	RecordHandStarted(tableID string)
	RecordHandComplete(tableID, winType string)
	RecordAction(tableID string, command Command)
	RecordActionTimeout(tableID string)
}

// AnalyticsSink is the optional fire-and-forget event-publishing
// collaborator (Kafka); nil is a valid no-op value.
type AnalyticsSink interface {
	PublishHandComplete(tableID, handSummary string)
}
