package tournament

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// AnalyticsSink is the optional fire-and-forget event-publishing
// collaborator; nil is a valid no-op value.
type AnalyticsSink interface {
	PublishTournamentFinished(tournamentID, summary string)
}

// LedgerSink is the optional durable-results collaborator; nil is a
// valid no-op value. It is a write-behind audit trail only, never
// consulted to recover tournament state.
type LedgerSink interface {
	RecordPlacement(tournamentID, userID string, placement int, payout, bountyWon float64)
}

// Manager owns every tournament's lifecycle: creation, registration,
// blind-clock escalation, elimination/bounty handling, rebalancing, and
// payout on finish. One coarse mutex guards the whole registry, mirroring
// the table package's per-table locking discipline at the next level up.
type Manager struct {
	mu          sync.Mutex
	tournaments map[string]*Tournament
	seq         int
	analytics   AnalyticsSink
	ledger      LedgerSink
	blindTimers map[string]*time.Timer
}

// NewManager returns an empty tournament registry. analytics and ledger
// may each be nil independently.
func NewManager(analytics AnalyticsSink, ledger LedgerSink) *Manager {
	return &Manager{
		tournaments: make(map[string]*Tournament),
		blindTimers: make(map[string]*time.Timer),
		analytics:   analytics,
		ledger:      ledger,
	}
}

// CreateOptions configures a new tournament at creation time.
type CreateOptions struct {
	Name            string
	Mode            Mode
	BuyIn           float64
	StartingChips   int64
	MinPlayers      int
	MaxPlayers      int
	BlindStructure  string
	LateRegLevels   int
	BountyPercent   float64
	SnGFormat       SnGFormat
	PlayersPerTable int
}

// CreateTournament registers a new tournament in the REGISTERING state.
func (m *Manager) CreateTournament(opts CreateOptions) *Tournament {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	id := fmt.Sprintf("t_%s_%d", opts.Mode, m.seq)

	blindStructure := opts.BlindStructure
	if blindStructure == "" {
		blindStructure = "standard"
	}
	playersPerTable := opts.PlayersPerTable
	if playersPerTable == 0 {
		playersPerTable = 9
	}

	t := &Tournament{
		ID:              id,
		Name:            opts.Name,
		Mode:            opts.Mode,
		BuyIn:           opts.BuyIn,
		StartingChips:   opts.StartingChips,
		MinPlayers:      opts.MinPlayers,
		MaxPlayers:      opts.MaxPlayers,
		Status:          StatusRegistering,
		BlindStructure:  blindStructure,
		RakePercent:     10.0,
		BountyPercent:   opts.BountyPercent,
		SnGFormat:       opts.SnGFormat,
		PlayersPerTable: playersPerTable,
		LateRegLevels:   opts.LateRegLevels,
		CreatedAt:       time.Now(),
		Players:         make(map[string]*Player),
		Tables:          make(map[string]*TableSeating),
		Payouts:         make(map[int]float64),
		FinalPositions:  make(map[string]int),
	}

	if t.Mode == ModeSitAndGo {
		t.MinPlayers = playersPerTable
		t.MaxPlayers = playersPerTable
		if t.SnGFormat == "" {
			t.SnGFormat = SnGTop3Paid
		}
	}
	if t.Mode == ModeBountyHunter && t.BountyPercent == 0 {
		t.BountyPercent = 50.0
	}

	m.tournaments[id] = t
	return t
}

// CreateSitAndGo is a convenience wrapper matching the quick-create
// path for single-table sit & go games.
func (m *Manager) CreateSitAndGo(buyIn float64, playersPerTable int, format SnGFormat, blindStructure string, startingChips int64) *Tournament {
	if blindStructure == "" {
		blindStructure = "turbo"
	}
	return m.CreateTournament(CreateOptions{
		Name:            fmt.Sprintf("Sit & Go $%.2f (%d-max)", buyIn, playersPerTable),
		Mode:            ModeSitAndGo,
		BuyIn:           buyIn,
		StartingChips:   startingChips,
		MinPlayers:      playersPerTable,
		MaxPlayers:      playersPerTable,
		BlindStructure:  blindStructure,
		SnGFormat:       format,
		PlayersPerTable: playersPerTable,
	})
}

// CreateBountyTournament is a convenience wrapper for PKO-mode setup.
func (m *Manager) CreateBountyTournament(name string, buyIn, bountyPercent float64, minPlayers, maxPlayers int, blindStructure string) *Tournament {
	return m.CreateTournament(CreateOptions{
		Name:           name,
		Mode:           ModeBountyHunter,
		BuyIn:          buyIn,
		StartingChips:  10000,
		MinPlayers:     minPlayers,
		MaxPlayers:     maxPlayers,
		BlindStructure: blindStructure,
		BountyPercent:  bountyPercent,
		LateRegLevels:  4,
	})
}

func (m *Manager) Get(id string) (*Tournament, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tournaments[id]
	return t, ok
}

// RegisterPlayer adds a player to a tournament's registration list. A
// second registration from the same user is a harmless no-op, matching
// the idempotent behavior of the original registration flow.
func (m *Manager) RegisterPlayer(tournamentID, userID, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tournaments[tournamentID]
	if !ok {
		return ErrNotFound
	}
	if t.Status != StatusRegistering && t.Status != StatusLateReg {
		return ErrRegistrationClosed
	}
	if _, already := t.Players[userID]; already {
		return nil
	}
	if len(t.Players) >= t.MaxPlayers {
		return ErrFull
	}

	startingBounty := 0.0
	if t.Mode == ModeBountyHunter {
		startingBounty = t.BuyIn * (t.BountyPercent / 100)
	}

	t.Players[userID] = &Player{
		UserID:         userID,
		DisplayName:    displayName,
		Chips:          t.StartingChips,
		Bounty:         startingBounty,
		StartingBounty: startingBounty,
		RegisteredAt:   time.Now(),
	}
	t.PrizePool += t.BuyIn

	if t.Mode == ModeSitAndGo && len(t.Players) >= t.MaxPlayers {
		return m.startLocked(t)
	}
	return nil
}

// UnregisterPlayer withdraws a player while registration is still open.
func (m *Manager) UnregisterPlayer(tournamentID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tournaments[tournamentID]
	if !ok {
		return ErrNotFound
	}
	if t.Status != StatusRegistering {
		return ErrRegistrationClosed
	}
	if _, ok := t.Players[userID]; !ok {
		return ErrPlayerNotFound
	}
	delete(t.Players, userID)
	t.PrizePool -= t.BuyIn
	return nil
}

// StartTournament transitions REGISTERING -> RUNNING: seats players
// across freshly created tables, calculates the payout ladder, and
// starts the blind clock.
func (m *Manager) StartTournament(tournamentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tournaments[tournamentID]
	if !ok {
		return ErrNotFound
	}
	return m.startLocked(t)
}

func (m *Manager) startLocked(t *Tournament) error {
	if t.Status != StatusRegistering {
		return ErrAlreadyStarted
	}
	if len(t.Players) < t.MinPlayers {
		return ErrNotEnoughPlayers
	}

	t.Status = StatusRunning
	t.StartedAt = time.Now()
	t.LevelStartedAt = time.Now()
	t.CurrentLevel = 0
	t.calculatePrizeStructure()

	m.seatPlayersLocked(t)
	m.armBlindTimerLocked(t)
	return nil
}

func (m *Manager) seatPlayersLocked(t *Tournament) {
	players := make([]*Player, 0, len(t.Players))
	for _, p := range t.Players {
		players = append(players, p)
	}
	rand.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })

	seatsPerTable := t.PlayersPerTable
	numTables := (len(players) + seatsPerTable - 1) / seatsPerTable
	tables := make([]*TableSeating, numTables)
	for i := 0; i < numTables; i++ {
		tableID := fmt.Sprintf("%s_table_%d", t.ID, i+1)
		seats := make(map[int]string, seatsPerTable)
		for s := 1; s <= seatsPerTable; s++ {
			seats[s] = ""
		}
		ts := &TableSeating{TableID: tableID, Seats: seats, Active: true}
		tables[i] = ts
		t.Tables[tableID] = ts
	}

	for i, p := range players {
		ts := tables[i%len(tables)]
		empty := ts.emptySeats()
		seat := empty[rand.Intn(len(empty))]
		ts.Seats[seat] = p.UserID
		p.TableID = ts.TableID
		p.Seat = seat
	}
}

// armBlindTimerLocked schedules the next blind-level escalation. Each
// firing re-arms itself for the following level unless the tournament
// has already finished, avoiding the need for a persistent background
// loop goroutine.
func (m *Manager) armBlindTimerLocked(t *Tournament) {
	blinds := t.currentBlinds()
	timer := time.AfterFunc(blinds.Duration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if t.Status == StatusFinished || t.Status == StatusCancelled {
			return
		}
		t.CurrentLevel++
		t.LevelStartedAt = time.Now()
		if t.CurrentLevel > t.LateRegLevels && t.Status == StatusLateReg {
			t.Status = StatusRunning
		}
		m.armBlindTimerLocked(t)
	})
	m.blindTimers[t.ID] = timer
}

// EliminatePlayer records a bust-out, splits the bounty (PKO mode),
// assigns the finishing position, and triggers table rebalancing or
// tournament finish as appropriate. No payout is assigned here; the
// ladder in Payouts is looked up by position when the tournament
// finishes.
func (m *Manager) EliminatePlayer(tournamentID, eliminatedID, eliminatorID string) (*BountyResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tournaments[tournamentID]
	if !ok {
		return nil, ErrNotFound
	}
	eliminated, ok := t.Players[eliminatedID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	eliminator, ok := t.Players[eliminatorID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if eliminated.IsEliminated() {
		return nil, ErrAlreadyEliminated
	}

	remaining := t.playersRemaining()
	eliminated.EliminatedAt = time.Now()
	eliminated.EliminatedBy = eliminatorID
	eliminated.Position = remaining
	t.FinalPositions[eliminatedID] = remaining

	var bountyResult *BountyResult
	if t.Mode == ModeBountyHunter && eliminated.Bounty > 0 {
		cash := eliminated.Bounty / 2
		added := eliminated.Bounty / 2
		eliminator.TotalBountyWon += cash
		eliminator.Bounty += added
		bountyResult = &BountyResult{
			CashBounty: cash,
			AddedBounty: added,
			NewBounty:   eliminator.Bounty,
			Eliminated:  eliminated.DisplayName,
			Eliminator:  eliminator.DisplayName,
		}
	}

	if ts, ok := t.Tables[eliminated.TableID]; ok {
		ts.removePlayer(eliminatedID)
	}
	eliminated.TableID = ""
	eliminated.Seat = 0

	remainingNow := t.playersRemaining()
	if remainingNow == 1 {
		m.finishLocked(t)
	} else if remainingNow <= t.PlayersPerTable {
		t.Status = StatusFinalTable
		m.balanceTablesLocked(t)
	} else {
		m.balanceTablesLocked(t)
	}

	return bountyResult, nil
}

// BountyResult describes a single PKO bounty split.
type BountyResult struct {
	CashBounty  float64
	AddedBounty float64
	NewBounty   float64
	Eliminated  string
	Eliminator  string
}

func (m *Manager) balanceTablesLocked(t *Tournament) {
	var active []*TableSeating
	for _, ts := range t.Tables {
		if ts.Active {
			active = append(active, ts)
		}
	}
	if len(active) <= 1 {
		return
	}

	totalPlayers := t.playersRemaining()
	targetPerTable := totalPlayers / len(active)

	for _, ts := range active {
		if ts.playerCount() < 3 {
			for seat, userID := range ts.Seats {
				if userID != "" {
					m.movePlayerToTableLocked(t, userID)
					ts.Seats[seat] = ""
				}
			}
			ts.Active = false
		}
	}

	var remaining []*TableSeating
	for _, ts := range t.Tables {
		if ts.Active {
			remaining = append(remaining, ts)
		}
	}
	for _, ts := range remaining {
		for ts.playerCount() > targetPerTable+1 {
			var moved bool
			for _, userID := range ts.Seats {
				if userID != "" {
					m.movePlayerToTableLocked(t, userID)
					moved = true
					break
				}
			}
			if !moved {
				break
			}
		}
	}
}

func (m *Manager) movePlayerToTableLocked(t *Tournament, userID string) {
	p, ok := t.Players[userID]
	if !ok {
		return
	}
	if old, ok := t.Tables[p.TableID]; ok {
		old.removePlayer(userID)
	}

	var candidates []*TableSeating
	for _, ts := range t.Tables {
		if ts.Active && ts.TableID != p.TableID {
			candidates = append(candidates, ts)
		}
	}
	if len(candidates) == 0 {
		return
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].playerCount() < candidates[j].playerCount()
	})
	target := candidates[0]
	empty := target.emptySeats()
	if len(empty) == 0 {
		return
	}
	seat := empty[rand.Intn(len(empty))]
	target.Seats[seat] = userID
	p.TableID = target.TableID
	p.Seat = seat
}

// FinishTournament marks a tournament finished and stops its blind clock.
func (m *Manager) FinishTournament(tournamentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tournaments[tournamentID]
	if !ok {
		return ErrNotFound
	}
	m.finishLocked(t)
	return nil
}

func (m *Manager) finishLocked(t *Tournament) {
	t.Status = StatusFinished
	t.FinishedAt = time.Now()

	var winner *Player
	for _, p := range t.Players {
		if !p.IsEliminated() {
			winner = p
			p.Position = 1
			t.FinalPositions[p.UserID] = 1
			break
		}
	}

	if timer, ok := m.blindTimers[t.ID]; ok {
		timer.Stop()
		delete(m.blindTimers, t.ID)
	}

	if m.analytics != nil {
		name := "no one"
		if winner != nil {
			name = winner.DisplayName
		}
		m.analytics.PublishTournamentFinished(t.ID, fmt.Sprintf("%s won %s", name, t.Name))
	}

	if m.ledger != nil {
		for userID, placement := range t.FinalPositions {
			p := t.Players[userID]
			if p == nil {
				continue
			}
			m.ledger.RecordPlacement(t.ID, userID, placement, t.Payouts[placement], p.TotalBountyWon)
		}
	}
}

// Leaderboard returns the top-N active players by chip count.
func (m *Manager) Leaderboard(tournamentID string, limit int) []*Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tournaments[tournamentID]
	if !ok {
		return nil
	}
	var active []*Player
	for _, p := range t.Players {
		if !p.IsEliminated() {
			active = append(active, p)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Chips > active[j].Chips })
	if len(active) > limit {
		active = active[:limit]
	}
	return active
}

// ActiveTournaments returns every tournament not finished or cancelled,
// most recently created first.
func (m *Manager) ActiveTournaments() []*Tournament {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Tournament
	for _, t := range m.tournaments {
		if t.Status != StatusFinished && t.Status != StatusCancelled {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
