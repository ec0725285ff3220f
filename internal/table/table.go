package table

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"pokerserver/internal/poker"
	"pokerserver/internal/rng"
)

// ViewerSink delivers one projected Snapshot to a connected viewer. It
// returns an error if the send failed, in which case the viewer is
// pruned from the table with no retry.
type ViewerSink func(Snapshot) error

type viewerConn struct {
	userID string
	sink   ViewerSink
}

// Table is a single No-Limit Hold'em table. Every exported method other
// than ID takes the table mutex: one action in, one broadcast out, no
// I/O performed while holding it except the broadcast send itself
// (matching the teacher's single coarse per-table mutex). Subscribe
// releases it before sending the new viewer its first snapshot.
type Table struct {
	mu sync.Mutex

	id        string
	cfg       Config
	shuffler  *rng.Shuffler
	evaluator *poker.Evaluator
	recorder  Recorder
	analytics AnalyticsSink

	seats []*Player // index i = seat i+1

	communityCards     []poker.Card
	centralPot         int64
	currentBet         int64
	lastRaiseIncrement int64
	buttonSeat         int
	activeUserID       string
	deck               []poker.Card
	stage              Stage
	handInProgress     bool
	handSeq            int
	bbOptionPending    bool // preflop: big blind has not yet acted on an unraised pot
	bbUserID           string
	potLevels          []PotLevel
	lastHand           *HandResult

	events   []Event
	eventSeq int

	activeDeadline time.Time
	actionGuard    actionGuard

	closed bool
	wg     sync.WaitGroup

	viewers      map[string]*viewerConn
	bustoutGuard map[string]bustoutGuardToken
}

type actionGuard struct {
	stage    Stage
	userID   string
	deadline time.Time
}

type bustoutGuardToken struct {
	deadline time.Time
}

// New creates an idle table with no players. shuffler and evaluator are
// required; recorder and analytics may be nil.
func New(id string, cfg Config, shuffler *rng.Shuffler, evaluator *poker.Evaluator, recorder Recorder, analytics AnalyticsSink) *Table {
	return &Table{
		id:           id,
		cfg:          cfg,
		shuffler:     shuffler,
		evaluator:    evaluator,
		recorder:     recorder,
		analytics:    analytics,
		seats:        make([]*Player, cfg.MaxPlayers),
		stage:        StageWaiting,
		viewers:      make(map[string]*viewerConn),
		bustoutGuard: make(map[string]bustoutGuardToken),
	}
}

// ID returns the table's identifier.
func (t *Table) ID() string { return t.id }

// Subscribe attaches a viewer's sink under connID, then immediately sends
// it a snapshot. connID must be unique per connection (a user may have
// more than one).
func (t *Table) Subscribe(connID, userID string, sink ViewerSink) {
	t.mu.Lock()
	t.viewers[connID] = &viewerConn{userID: userID, sink: sink}
	snap := t.snapshotLocked(userID)
	t.mu.Unlock()
	_ = sink(snap)
}

// Unsubscribe detaches a viewer's sink.
func (t *Table) Unsubscribe(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.viewers, connID)
}

// Close stops all background timers owned by this table. Safe to call
// more than once.
func (t *Table) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()
	t.wg.Wait()
}

func (t *Table) logEvent(format string, args ...interface{}) {
	t.eventSeq++
	t.events = append(t.events, Event{
		Seq:     t.eventSeq,
		At:      time.Now(),
		Message: fmt.Sprintf(format, args...),
	})
	if len(t.events) > eventLogCapacity {
		t.events = t.events[len(t.events)-eventLogCapacity:]
	}
}

// broadcastLocked fans the current state out to every connected viewer.
// Must be called with the mutex held; sends happen synchronously and a
// failed send evicts that viewer with no retry, per the spec's broadcast
// discipline.
func (t *Table) broadcastLocked() {
	for connID, v := range t.viewers {
		snap := t.snapshotLocked(v.userID)
		if err := v.sink(snap); err != nil {
			delete(t.viewers, connID)
		}
	}
}

// AddPlayer seats a new player at the lowest free seat. If this brings
// the occupied count to 2 and no hand is running, a hand starts
// automatically.
func (t *Table) AddPlayer(userID, displayName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.seats {
		if p != nil && p.UserID == userID {
			return ErrAlreadySeated
		}
	}

	seatIdx := -1
	for i, p := range t.seats {
		if p == nil {
			seatIdx = i
			break
		}
	}
	if seatIdx == -1 {
		return ErrTableFull
	}

	t.seats[seatIdx] = &Player{
		UserID:      userID,
		DisplayName: displayName,
		Seat:        seatIdx + 1,
		Stack:       StartBalance,
	}
	t.logEvent("%s takes seat %d", displayName, seatIdx+1)

	if !t.handInProgress && t.occupiedCount() == 2 {
		t.startHandLocked()
	}
	t.broadcastLocked()
	return nil
}

// RemovePlayer detaches a player from the table. If they held the button
// or were active, the engine re-derives. Any pending bustout timer for
// them is cancelled.
func (t *Table) RemovePlayer(userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removePlayerLocked(userID)
}

func (t *Table) removePlayerLocked(userID string) error {
	idx := t.seatIndexOf(userID)
	if idx == -1 {
		return ErrPlayerNotFound
	}
	p := t.seats[idx]
	delete(t.bustoutGuard, userID)
	t.seats[idx] = nil
	t.logEvent("%s leaves the table", p.DisplayName)

	if t.activeUserID == userID {
		t.advanceActiveAfterRemoval()
	}
	t.broadcastLocked()
	return nil
}

func (t *Table) seatIndexOf(userID string) int {
	for i, p := range t.seats {
		if p != nil && p.UserID == userID {
			return i
		}
	}
	return -1
}

func (t *Table) playerByID(userID string) *Player {
	if idx := t.seatIndexOf(userID); idx != -1 {
		return t.seats[idx]
	}
	return nil
}

func (t *Table) occupiedCount() int {
	n := 0
	for _, p := range t.seats {
		if p != nil {
			n++
		}
	}
	return n
}

// seatsClockwiseFrom returns occupied seat indices starting just after
// `from` (exclusive), wrapping around, ending with `from` itself last if
// it is occupied.
func (t *Table) seatsClockwiseFrom(from int) []int {
	n := len(t.seats)
	var order []int
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if t.seats[idx] != nil {
			order = append(order, idx)
		}
	}
	return order
}

func (t *Table) nonFoldedPlayers() []*Player {
	var out []*Player
	for _, p := range t.seats {
		if p != nil && !p.Folded {
			out = append(out, p)
		}
	}
	return out
}

func (t *Table) canActPlayers() []*Player {
	var out []*Player
	for _, p := range t.seats {
		if p != nil && !p.Folded && !p.AllIn && p.Stack > 0 {
			out = append(out, p)
		}
	}
	return out
}

func (t *Table) sortedSeatIndices(idxs []int) []int {
	sort.Ints(idxs)
	return idxs
}
